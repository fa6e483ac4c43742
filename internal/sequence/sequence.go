// Package sequence holds the fixed, ordered question list of one interview.
package sequence

import (
	"errors"
	"strings"
	"time"

	"github.com/spigell/interviewer/internal/ai"
)

// Kind is the category of a question.
type Kind string

const (
	KindIntroduction Kind = "introduction"
	KindTechnical    Kind = "technical"
	KindBehavioral   Kind = "behavioral"
)

// Answer is the candidate's reply to one slot. It is never modified once recorded.
type Answer struct {
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
	Rubric      ai.Rubric `json:"rubric"`
	Skipped     bool      `json:"skipped,omitempty"`
	// Fallback is set when the rubric comes from the deterministic heuristic.
	Fallback bool `json:"fallback,omitempty"`
}

// Slot is one position of the question sequence.
type Slot struct {
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Kind     Kind    `json:"kind"`
	Answer   *Answer `json:"answer,omitempty"`
}

// Answered reports whether the slot already holds an answer.
func (s Slot) Answered() bool {
	return s.Answer != nil
}

var (
	ErrEmptySequence = errors.New("question sequence must not be empty")
	ErrExhausted     = errors.New("no unanswered question left")
)

// Sequence is the ordered slot list. The zero value is an empty sequence.
// Slots are fixed at construction; recording an answer returns a new Sequence.
type Sequence struct {
	slots []Slot
}

// New builds the slot list in interview order: every technical question first, the behavioral one last.
// Blank questions are dropped.
func New(technical []string, behavioral string) (Sequence, error) {
	slots := make([]Slot, 0, len(technical)+1)
	for _, q := range technical {
		if q = strings.TrimSpace(q); q == "" {
			continue
		}
		slots = append(slots, Slot{Position: len(slots) + 1, Text: q, Kind: KindTechnical})
	}
	if behavioral = strings.TrimSpace(behavioral); behavioral != "" {
		slots = append(slots, Slot{Position: len(slots) + 1, Text: behavioral, Kind: KindBehavioral})
	}

	if len(slots) == 0 {
		return Sequence{}, ErrEmptySequence
	}
	return Sequence{slots: slots}, nil
}

// Len returns the number of slots.
func (s Sequence) Len() int {
	return len(s.slots)
}

// Current returns the first slot without an answer.
func (s Sequence) Current() (Slot, bool) {
	for _, slot := range s.slots {
		if !slot.Answered() {
			return slot, true
		}
	}
	return Slot{}, false
}

// Done reports whether every slot holds an answer. An empty sequence is never done.
func (s Sequence) Done() bool {
	if len(s.slots) == 0 {
		return false
	}
	_, ok := s.Current()
	return !ok
}

// Answered returns the number of answered slots.
func (s Sequence) Answered() int {
	n := 0
	for _, slot := range s.slots {
		if slot.Answered() {
			n++
		}
	}
	return n
}

// Remaining returns the number of unanswered slots.
func (s Sequence) Remaining() int {
	return len(s.slots) - s.Answered()
}

// Record attaches the answer to the current slot and returns the resulting sequence.
// The receiver is left untouched.
func (s Sequence) Record(answer Answer) (Sequence, Slot, error) {
	current, ok := s.Current()
	if !ok {
		return s, Slot{}, ErrExhausted
	}

	next := s.Slots()
	a := answer
	next[current.Position-1].Answer = &a
	return Sequence{slots: next}, next[current.Position-1], nil
}

// Slots returns a copy of the slot list.
func (s Sequence) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// AnsweredOfKind returns the answers recorded for slots of the given kind, in order.
func (s Sequence) AnsweredOfKind(kind Kind) []Answer {
	out := make([]Answer, 0)
	for _, slot := range s.slots {
		if slot.Kind == kind && slot.Answered() {
			out = append(out, *slot.Answer)
		}
	}
	return out
}
