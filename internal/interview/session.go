// Package interview drives a single screening interview from the introduction
// to the final score.
package interview

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/sequence"
	"github.com/spigell/interviewer/internal/termination"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted          Phase = "not_started"
	PhaseIntroductionPending Phase = "introduction_pending"
	PhaseInProgress          Phase = "in_progress"
	PhaseCompleted           Phase = "completed"
	PhaseTerminated          Phase = "terminated"
)

// Terminal reports whether no further submission changes the session.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseTerminated
}

// IntroductionPrompt is the first thing the candidate is asked.
const IntroductionPrompt = "Please introduce yourself. Tell me about your background, skills, experience, " +
	"and the type of projects you have worked on."

var (
	ErrInvalidSubmission  = errors.New("submission must not be empty")
	ErrSessionTerminated  = errors.New("session already terminated")
	ErrSessionNotStarted  = errors.New("session not started")
	ErrSubmissionInFlight = errors.New("another submission is being processed")
	ErrUnknownReason      = errors.New("unknown termination reason")
)

// TerminationRecord tells why and when a session ended early.
type TerminationRecord struct {
	Reason termination.Reason `json:"reason"`
	At     time.Time          `json:"at"`
	Text   string             `json:"text,omitempty"`
	Rule   string             `json:"rule,omitempty"`
}

// Introduction is the analyzed first answer.
type Introduction struct {
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// Session is one interview attempt. It is only changed through an Orchestrator.
type Session struct {
	id       string
	inFlight atomic.Bool

	mu    sync.Mutex
	state state
}

type state struct {
	phase       Phase
	profile     *ai.SkillProfile
	intro       *Introduction
	questions   sequence.Sequence
	scores      scoring.Aggregator
	turns       int
	termination *TerminationRecord
	suspicious  int
	startedAt   time.Time
	finishedAt  time.Time
	finalized   bool
	// version grows with every commit.
	version uint64
}

func (s state) clone() state {
	s.scores = s.scores.Clone()
	if s.profile != nil {
		p := *s.profile
		p.Skills = append([]string(nil), p.Skills...)
		s.profile = &p
	}
	if s.intro != nil {
		i := *s.intro
		s.intro = &i
	}
	if s.termination != nil {
		t := *s.termination
		s.termination = &t
	}
	return s
}

func (s *state) terminate(reason termination.Reason, rule, text string, at time.Time) {
	s.phase = PhaseTerminated
	s.termination = &TerminationRecord{Reason: reason, At: at, Text: text, Rule: rule}
	s.finishedAt = at
}

func newSession() *Session {
	return &Session{
		id:    uuid.NewString(),
		state: state{phase: PhaseNotStarted},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.phase
}

func (s *Session) load() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID                 string             `json:"id"`
	Phase              Phase              `json:"phase"`
	Profile            *ai.SkillProfile   `json:"profile,omitempty"`
	Introduction       *Introduction      `json:"introduction,omitempty"`
	Slots              []sequence.Slot    `json:"slots"`
	Turns              int                `json:"turns"`
	Scores             []float64          `json:"scores"`
	Overall            float64            `json:"overall"`
	Final              float64            `json:"final"`
	Finalized          bool               `json:"finalized"`
	Termination        *TerminationRecord `json:"termination,omitempty"`
	SuspiciousActivity int                `json:"suspicious_activity"`
	StartedAt          time.Time          `json:"started_at"`
	FinishedAt         time.Time          `json:"finished_at"`
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	st := s.load()
	final, finalized := st.scores.Final()
	return Snapshot{
		ID:                 s.id,
		Phase:              st.phase,
		Profile:            st.profile,
		Introduction:       st.intro,
		Slots:              st.questions.Slots(),
		Turns:              st.turns,
		Scores:             st.scores.Scores(),
		Overall:            st.scores.Current(),
		Final:              final,
		Finalized:          finalized,
		Termination:        st.termination,
		SuspiciousActivity: st.suspicious,
		StartedAt:          st.startedAt,
		FinishedAt:         st.finishedAt,
	}
}

// Prompt is the question the candidate should answer next.
type Prompt struct {
	Position int           `json:"position"`
	Total    int           `json:"total"`
	Kind     sequence.Kind `json:"kind"`
	Text     string        `json:"text"`
}

// Turn is what the candidate sees after an operation.
type Turn struct {
	SessionID   string             `json:"session_id"`
	Phase       Phase              `json:"phase"`
	Prompt      *Prompt            `json:"prompt,omitempty"`
	Termination *TerminationRecord `json:"termination,omitempty"`
	Message     string             `json:"message,omitempty"`
	Answered    int                `json:"answered"`
	Total       int                `json:"total"`
}

func (s *Session) view(st state) *Turn {
	turn := &Turn{
		SessionID: s.id,
		Phase:     st.phase,
		Answered:  st.questions.Answered(),
		Total:     st.questions.Len(),
	}

	switch st.phase {
	case PhaseIntroductionPending:
		turn.Prompt = &Prompt{Kind: sequence.KindIntroduction, Text: IntroductionPrompt}
	case PhaseInProgress:
		if slot, ok := st.questions.Current(); ok {
			turn.Prompt = &Prompt{Position: slot.Position, Total: st.questions.Len(), Kind: slot.Kind, Text: slot.Text}
		}
	case PhaseCompleted:
		turn.Message = "The interview is complete. Thank you for your time."
	case PhaseTerminated:
		turn.Termination = st.termination
		if st.termination != nil {
			turn.Message = st.termination.Reason.Message()
		}
	}
	return turn
}
