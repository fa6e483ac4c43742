package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/metrics"
	"github.com/spigell/interviewer/internal/textutil"
)

// DefaultTimeout bounds a single collaborator call.
const DefaultTimeout = 20 * time.Second

const (
	collaboratorQuestions  = "questions"
	collaboratorBehavioral = "behavioral"
	collaboratorEvaluator  = "evaluator"
	collaboratorIntro      = "intro"
	collaboratorSummarizer = "summarizer"

	causeDisabled = "disabled"
	causeTimeout  = "timeout"
	causeError    = "error"
	causeInvalid  = "invalid"
	causeShort    = "short"
)

// Guard calls the primary collaborators with a bounded timeout and answers
// with the heuristics whenever a call fails, times out or returns nothing usable.
// Guard methods never fail.
type Guard struct {
	primary    ai.Collaborators
	heuristics *Heuristics
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *metrics.InterviewMetrics
}

// NewGuard wraps primary. Nil primary collaborators are replaced by the heuristics.
func NewGuard(primary ai.Collaborators, heuristics *Heuristics, timeout time.Duration, logger *zap.Logger, m *metrics.InterviewMetrics) *Guard {
	if heuristics == nil {
		heuristics = NewHeuristics(nil)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Guard{
		primary:    primary,
		heuristics: heuristics,
		timeout:    timeout,
		logger:     logger,
		metrics:    m,
	}
}

// Questions returns exactly count technical questions for domain.
// A short primary result is completed with filler questions.
func (g *Guard) Questions(ctx context.Context, domain string, level ai.Level, count int) ([]string, bool) {
	if count <= 0 {
		return []string{}, false
	}
	if g.primary.Questions == nil {
		g.observeFallback(collaboratorQuestions, causeDisabled, nil)
		return FillQuestions(nil, domain, count), true
	}

	returned, err := call(ctx, g, collaboratorQuestions, func(ctx context.Context) ([]string, error) {
		return g.primary.Questions.GenerateQuestions(ctx, domain, level, count)
	})
	if err != nil {
		g.observeFallback(collaboratorQuestions, causeOf(err), err)
		return FillQuestions(nil, domain, count), true
	}

	questions := FillQuestions(returned, domain, count)
	if usable := distinct(returned); usable < count {
		g.observeFallback(collaboratorQuestions, causeShort,
			fmt.Errorf("generator returned %d of %d questions", usable, count))
		return questions, true
	}
	return questions, false
}

// Behavioral returns the behavioral question for profile.
func (g *Guard) Behavioral(ctx context.Context, profile ai.SkillProfile) (string, bool) {
	fallback := BehavioralQuestion(profile.PrimarySkill)
	if g.primary.Questions == nil {
		g.observeFallback(collaboratorBehavioral, causeDisabled, nil)
		return fallback, true
	}

	question, err := call(ctx, g, collaboratorBehavioral, func(ctx context.Context) (string, error) {
		return g.primary.Questions.GenerateBehavioralQuestion(ctx, profile)
	})
	if err != nil {
		g.observeFallback(collaboratorBehavioral, causeOf(err), err)
		return fallback, true
	}
	if question = strings.TrimSpace(question); question == "" {
		g.observeFallback(collaboratorBehavioral, causeInvalid, errors.New("empty behavioral question"))
		return fallback, true
	}
	return question, false
}

// Evaluate returns a rubric within the valid range for the answer.
func (g *Guard) Evaluate(ctx context.Context, question, answer string) (ai.Rubric, bool) {
	if g.primary.Evaluator != nil {
		rubric, err := call(ctx, g, collaboratorEvaluator, func(ctx context.Context) (*ai.Rubric, error) {
			return g.primary.Evaluator.EvaluateAnswer(ctx, question, answer)
		})
		switch {
		case err != nil:
			g.observeFallback(collaboratorEvaluator, causeOf(err), err)
		case rubric == nil:
			g.observeFallback(collaboratorEvaluator, causeInvalid, errors.New("evaluator returned no rubric"))
		default:
			out := *rubric
			out.Clamp()
			return out, false
		}
	} else {
		g.observeFallback(collaboratorEvaluator, causeDisabled, nil)
	}

	rubric, _ := g.heuristics.EvaluateAnswer(ctx, question, answer)
	rubric.Clamp()
	return *rubric, true
}

// Intro analyzes the introduction. Skills always come from the catalogue;
// the primary analyzer only contributes the qualitative signals.
func (g *Guard) Intro(ctx context.Context, text string) (ai.IntroAnalysis, bool) {
	base, _ := g.heuristics.AnalyzeIntroduction(ctx, text)

	if g.primary.Intro == nil {
		g.observeFallback(collaboratorIntro, causeDisabled, nil)
		return *base, true
	}

	analysis, err := call(ctx, g, collaboratorIntro, func(ctx context.Context) (*ai.IntroAnalysis, error) {
		return g.primary.Intro.AnalyzeIntroduction(ctx, text)
	})
	switch {
	case err != nil:
		g.observeFallback(collaboratorIntro, causeOf(err), err)
		return *base, true
	case analysis == nil:
		g.observeFallback(collaboratorIntro, causeInvalid, errors.New("intro analyzer returned no analysis"))
		return *base, true
	}

	out := *base
	out.Experience = pickLevel(analysis.Experience, base.Experience, ai.ExperienceJunior, ai.ExperienceMid, ai.ExperienceSenior)
	out.Confidence = pickLevel(analysis.Confidence, base.Confidence, ai.ConfidenceLow, ai.ConfidenceMedium, ai.ConfidenceHigh)
	out.Communication = pickLevel(analysis.Communication, base.Communication, ai.CommunicationWeak, ai.CommunicationAdequate, ai.CommunicationStrong)
	if analysis.IntroScore > 0 {
		out.IntroScore = clampInt(analysis.IntroScore)
	}
	if analysis.ProjectsMentioned > out.ProjectsMentioned {
		out.ProjectsMentioned = analysis.ProjectsMentioned
	}
	return out, false
}

// Summary returns the narrative for a finished interview.
func (g *Guard) Summary(ctx context.Context, transcript ai.Transcript) (string, bool) {
	if g.primary.Summarizer == nil {
		g.observeFallback(collaboratorSummarizer, causeDisabled, nil)
		return UnavailableSummary, true
	}

	summary, err := call(ctx, g, collaboratorSummarizer, func(ctx context.Context) (string, error) {
		return g.primary.Summarizer.Summarize(ctx, transcript)
	})
	if err != nil {
		g.observeFallback(collaboratorSummarizer, causeOf(err), err)
		return UnavailableSummary, true
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		g.observeFallback(collaboratorSummarizer, causeInvalid, errors.New("empty summary"))
		return UnavailableSummary, true
	}
	return summary, false
}

func (g *Guard) observeFallback(collaborator, cause string, err error) {
	g.metrics.ObserveFallback(collaborator, cause)
	if err == nil {
		g.logger.Debug("collaborator disabled, using heuristic", zap.String("collaborator", collaborator))
		return
	}
	g.logger.Warn("collaborator failed, using heuristic",
		zap.String("collaborator", collaborator),
		zap.String("cause", cause),
		zap.Error(err),
	)
}

type result[T any] struct {
	value T
	err   error
}

// call runs fn with the guard timeout. A collaborator that ignores its context
// is abandoned once the deadline passes.
func call[T any](ctx context.Context, g *Guard, name string, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result[T]{value: zero, err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(callCtx)
		done <- result[T]{value: v, err: err}
	}()

	var res result[T]
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}
	g.metrics.ObserveCollaboratorLatency(name, time.Since(start).Seconds())

	if res.err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ai.ErrCollaboratorUnavailable, name, res.err)
	}
	return res.value, nil
}

func distinct(questions []string) int {
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if textutil.IsBlank(q) {
			continue
		}
		seen[strings.ToLower(strings.TrimSpace(q))] = struct{}{}
	}
	return len(seen)
}

func causeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return causeTimeout
	}
	return causeError
}

func pickLevel(got, fallback ai.Level, allowed ...ai.Level) ai.Level {
	normalized := ai.Level(strings.ToLower(strings.TrimSpace(string(got))))
	for _, l := range allowed {
		if normalized == l {
			return l
		}
	}
	return fallback
}
