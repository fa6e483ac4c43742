// Package termination decides whether a candidate submission ends the interview.
package termination

import (
	"strings"
)

// Reason tags why a session was terminated.
type Reason string

const (
	ReasonMisconduct       Reason = "misconduct"
	ReasonCandidateRequest Reason = "candidate_request"
	ReasonPoorResponse     Reason = "poor_response"
	ReasonTabSwitch        Reason = "tab_switch"
)

// Valid reports whether r is one of the known reasons.
func (r Reason) Valid() bool {
	switch r {
	case ReasonMisconduct, ReasonCandidateRequest, ReasonPoorResponse, ReasonTabSwitch:
		return true
	}
	return false
}

// Message is the candidate-facing explanation for a reason tag.
func (r Reason) Message() string {
	switch r {
	case ReasonMisconduct:
		return "The interview was terminated due to misconduct."
	case ReasonCandidateRequest:
		return "The interview was ended at your request."
	case ReasonPoorResponse:
		return "The interview was terminated because the response was insufficient."
	case ReasonTabSwitch:
		return "The interview was terminated because you left the interview window repeatedly."
	default:
		return "The interview was terminated."
	}
}

// Counters are the out-of-band session counters the policy looks at.
type Counters struct {
	SuspiciousActivity int
}

// Verdict is the outcome of evaluating one submission.
type Verdict struct {
	Terminate bool
	Reason    Reason
	// Rule is the name of the rule that fired.
	Rule string
}

// Continue is the verdict for a submission that does not end the session.
var Continue = Verdict{}

// Config holds the keyword lists and thresholds of the policy.
type Config struct {
	// MisconductSignals are texts injected by an upstream monitor that already decided to end the session.
	MisconductSignals []string `mapstructure:"misconduct-signals"`
	AbusiveKeywords   []string `mapstructure:"abusive-keywords"`
	QuitKeywords      []string `mapstructure:"quit-keywords"`
	MinWords          int      `mapstructure:"min-words"`
	SkipCommand       string   `mapstructure:"skip-command"`
	// SuspiciousActivityLimit terminates the session once the counter reaches it. Zero disables the guard.
	SuspiciousActivityLimit int `mapstructure:"suspicious-activity-limit"`
}

const (
	DefaultMinWords                = 5
	DefaultSkipCommand             = "skip"
	DefaultSuspiciousActivityLimit = 2
)

// DefaultConfig returns the reference keyword lists and thresholds.
func DefaultConfig() Config {
	return Config{
		MisconductSignals:       []string{"session terminated due to tab switching"},
		AbusiveKeywords:         []string{"tab switching", "stupid", "idiot", "dumb", "worthless", "hate", "useless"},
		QuitKeywords:            []string{"quit", "exit", "stop", "end", "terminate", "abort"},
		MinWords:                DefaultMinWords,
		SkipCommand:             DefaultSkipCommand,
		SuspiciousActivityLimit: DefaultSuspiciousActivityLimit,
	}
}

// IsSkip reports whether text is the literal escape command.
func (c Config) IsSkip(text string) bool {
	cmd := strings.TrimSpace(c.SkipCommand)
	if cmd == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(text), cmd)
}
