// Package report turns finalized interview sessions into persisted reports.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/sequence"
)

const maxHighlights = 5

// Entry is one answered question.
type Entry struct {
	Position int           `json:"position"`
	Kind     sequence.Kind `json:"kind"`
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Rubric   ai.Rubric     `json:"rubric"`
	Skipped  bool          `json:"skipped,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
}

// Report is the persisted outcome of an interview.
type Report struct {
	ID                 string                       `json:"id"`
	SessionID          string                       `json:"session_id"`
	Phase              interview.Phase              `json:"phase"`
	Profile            *ai.SkillProfile             `json:"profile,omitempty"`
	Introduction       string                       `json:"introduction,omitempty"`
	Entries            []Entry                      `json:"entries"`
	Overall            float64                      `json:"overall"`
	Final              float64                      `json:"final"`
	IntroScore         int                          `json:"intro_score"`
	TechnicalAverage   float64                      `json:"technical_average"`
	BehavioralAverage  float64                      `json:"behavioral_average"`
	Recommendation     scoring.Recommendation       `json:"recommendation"`
	Performance        string                       `json:"performance"`
	Strengths          []string                     `json:"strengths,omitempty"`
	Weaknesses         []string                     `json:"weaknesses,omitempty"`
	Summary            string                       `json:"summary,omitempty"`
	Termination        *interview.TerminationRecord `json:"termination,omitempty"`
	SuspiciousActivity int                          `json:"suspicious_activity"`
	StartedAt          time.Time                    `json:"started_at"`
	FinishedAt         time.Time                    `json:"finished_at"`
	DurationSeconds    float64                      `json:"duration_seconds"`
	CreatedAt          time.Time                    `json:"created_at"`
}

// Build assembles the report of a session snapshot. Terminated snapshots are
// accepted too: their final score is the mean of the answers given so far.
func Build(snap interview.Snapshot, now time.Time) *Report {
	r := &Report{
		ID:                 uuid.NewString(),
		SessionID:          snap.ID,
		Phase:              snap.Phase,
		Profile:            snap.Profile,
		Entries:            make([]Entry, 0, len(snap.Slots)),
		Overall:            snap.Overall,
		Final:              snap.Final,
		Termination:        snap.Termination,
		SuspiciousActivity: snap.SuspiciousActivity,
		StartedAt:          snap.StartedAt,
		FinishedAt:         snap.FinishedAt,
		CreatedAt:          now,
	}
	if snap.Introduction != nil {
		r.Introduction = snap.Introduction.Text
	}
	if snap.Profile != nil {
		r.IntroScore = snap.Profile.IntroScore
	}
	if !snap.Finalized {
		r.Final = snap.Overall
	}
	if !snap.StartedAt.IsZero() && !snap.FinishedAt.IsZero() {
		r.DurationSeconds = snap.FinishedAt.Sub(snap.StartedAt).Seconds()
	}

	var technical, behavioral []float64
	for _, slot := range snap.Slots {
		if !slot.Answered() {
			continue
		}
		a := slot.Answer
		r.Entries = append(r.Entries, Entry{
			Position: slot.Position,
			Kind:     slot.Kind,
			Question: slot.Text,
			Answer:   a.Text,
			Rubric:   a.Rubric,
			Skipped:  a.Skipped,
			Fallback: a.Fallback,
		})

		switch slot.Kind {
		case sequence.KindTechnical:
			technical = append(technical, a.Rubric.Overall)
		case sequence.KindBehavioral:
			behavioral = append(behavioral, a.Rubric.Overall)
		}
		r.Strengths = appendUnique(r.Strengths, a.Rubric.Strengths...)
		r.Weaknesses = appendUnique(r.Weaknesses, a.Rubric.Weaknesses...)
	}

	r.TechnicalAverage = scoring.Mean(technical)
	r.BehavioralAverage = scoring.Mean(behavioral)
	r.Recommendation = scoring.Recommend(r.Final, r.TechnicalAverage, len(r.Entries))
	r.Performance = scoring.Band(r.Final)
	return r
}

// Transcript returns what the summarizer needs to know about the interview.
func (r *Report) Transcript() ai.Transcript {
	t := ai.Transcript{Exchanges: make([]ai.Exchange, 0, len(r.Entries))}
	if r.Profile != nil {
		t.Skills = r.Profile.Skills
		t.Experience = r.Profile.Experience
	}
	for _, e := range r.Entries {
		t.Exchanges = append(t.Exchanges, ai.Exchange{Question: e.Question, Answer: e.Answer})
	}
	return t
}

// PrimarySkill returns the locked domain, or an empty string.
func (r *Report) PrimarySkill() string {
	if r.Profile == nil {
		return ""
	}
	return r.Profile.PrimarySkill
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || len(dst) >= maxHighlights {
			continue
		}
		dup := false
		for _, existing := range dst {
			if strings.EqualFold(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
