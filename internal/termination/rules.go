package termination

import (
	"github.com/spigell/interviewer/internal/textutil"
)

// Rule is a single termination check. Rules are evaluated in order and the first match wins.
type Rule interface {
	Name() string
	Check(text string, counters Counters) (Reason, bool)
}

type suspiciousActivityRule struct {
	limit int
}

// NewSuspiciousActivity terminates once the out-of-band counter reaches limit, whatever the text says.
func NewSuspiciousActivity(limit int) Rule {
	return &suspiciousActivityRule{limit: limit}
}

func (r *suspiciousActivityRule) Name() string { return "suspicious_activity" }

func (r *suspiciousActivityRule) Check(_ string, counters Counters) (Reason, bool) {
	if r.limit <= 0 || counters.SuspiciousActivity < r.limit {
		return "", false
	}
	return ReasonMisconduct, true
}

type misconductSignalRule struct {
	signals []string
}

// NewMisconductSignal matches texts injected by an upstream misconduct monitor.
func NewMisconductSignal(signals []string) Rule {
	return &misconductSignalRule{signals: signals}
}

func (r *misconductSignalRule) Name() string { return "misconduct_signal" }

func (r *misconductSignalRule) Check(text string, _ Counters) (Reason, bool) {
	for _, s := range r.signals {
		if textutil.ContainsFold(text, s) {
			return ReasonMisconduct, true
		}
	}
	return "", false
}

type abusiveLanguageRule struct {
	keywords []string
}

// NewAbusiveLanguage matches any configured keyword as a substring.
func NewAbusiveLanguage(keywords []string) Rule {
	return &abusiveLanguageRule{keywords: keywords}
}

func (r *abusiveLanguageRule) Name() string { return "abusive_language" }

func (r *abusiveLanguageRule) Check(text string, _ Counters) (Reason, bool) {
	for _, k := range r.keywords {
		if textutil.ContainsFold(text, k) {
			return ReasonMisconduct, true
		}
	}
	return "", false
}

type quitRequestRule struct {
	keywords []string
}

// NewQuitRequest matches quit keywords as whole words only.
func NewQuitRequest(keywords []string) Rule {
	return &quitRequestRule{keywords: keywords}
}

func (r *quitRequestRule) Name() string { return "quit_request" }

func (r *quitRequestRule) Check(text string, _ Counters) (Reason, bool) {
	for _, k := range r.keywords {
		if textutil.ContainsWord(text, k) {
			return ReasonCandidateRequest, true
		}
	}
	return "", false
}

type minimumWordsRule struct {
	min  int
	skip func(string) bool
}

// NewMinimumWords rejects answers shorter than min words unless they are the skip command.
func NewMinimumWords(min int, skip func(string) bool) Rule {
	return &minimumWordsRule{min: min, skip: skip}
}

func (r *minimumWordsRule) Name() string { return "minimum_words" }

func (r *minimumWordsRule) Check(text string, _ Counters) (Reason, bool) {
	if r.min <= 0 || textutil.WordCount(text) >= r.min {
		return "", false
	}
	if r.skip != nil && r.skip(text) {
		return "", false
	}
	return ReasonPoorResponse, true
}
