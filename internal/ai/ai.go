// Package ai declares the model-backed collaborators the interview depends on
// and the values they exchange.
package ai

import (
	"context"
	"errors"
)

// ErrCollaboratorUnavailable marks a failed or timed out collaborator call.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// Level is a coarse qualitative grade.
type Level string

const (
	ExperienceJunior Level = "junior"
	ExperienceMid    Level = "mid"
	ExperienceSenior Level = "senior"

	ConfidenceLow    Level = "low"
	ConfidenceMedium Level = "medium"
	ConfidenceHigh   Level = "high"

	CommunicationWeak     Level = "weak"
	CommunicationAdequate Level = "adequate"
	CommunicationStrong   Level = "strong"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Rubric is the structured score of one answer. Numeric fields are within [MinScore, MaxScore].
type Rubric struct {
	TechnicalAccuracy float64  `mapstructure:"technical_accuracy" json:"technical_accuracy"`
	Completeness      float64  `mapstructure:"completeness" json:"completeness"`
	Clarity           float64  `mapstructure:"clarity" json:"clarity"`
	Depth             float64  `mapstructure:"depth" json:"depth"`
	Practicality      float64  `mapstructure:"practicality" json:"practicality"`
	Overall           float64  `mapstructure:"overall" json:"overall"`
	Strengths         []string `mapstructure:"strengths" json:"strengths,omitempty"`
	Weaknesses        []string `mapstructure:"weaknesses" json:"weaknesses,omitempty"`
}

// Clamp forces every numeric field into the valid range.
func (r *Rubric) Clamp() {
	for _, v := range []*float64{&r.TechnicalAccuracy, &r.Completeness, &r.Clarity, &r.Depth, &r.Practicality, &r.Overall} {
		*v = ClampScore(*v)
	}
}

// ClampScore forces s into [MinScore, MaxScore].
func ClampScore(s float64) float64 {
	if s != s || s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// UniformRubric returns a rubric with every sub-score set to score.
func UniformRubric(score float64) Rubric {
	score = ClampScore(score)
	return Rubric{
		TechnicalAccuracy: score,
		Completeness:      score,
		Clarity:           score,
		Depth:             score,
		Practicality:      score,
		Overall:           score,
	}
}

// IntroAnalysis is what the introduction analyzer extracts from the first answer.
type IntroAnalysis struct {
	Skills            []string `mapstructure:"skills" json:"skills"`
	Experience        Level    `mapstructure:"experience" json:"experience"`
	Confidence        Level    `mapstructure:"confidence" json:"confidence"`
	Communication     Level    `mapstructure:"communication" json:"communication"`
	IntroScore        int      `mapstructure:"intro_score" json:"intro_score"`
	ProjectsMentioned int      `mapstructure:"projects_mentioned" json:"projects_mentioned"`
	WordCount         int      `mapstructure:"word_count" json:"word_count"`
}

// SkillProfile is the candidate profile derived from the introduction.
// PrimarySkill is the locked domain.
type SkillProfile struct {
	Skills            []string `json:"skills"`
	PrimarySkill      string   `json:"primary_skill"`
	Experience        Level    `json:"experience"`
	Confidence        Level    `json:"confidence"`
	Communication     Level    `json:"communication"`
	IntroScore        int      `json:"intro_score"`
	ProjectsMentioned int      `json:"projects_mentioned"`
	WordCount         int      `json:"word_count"`
}

// QuestionGenerator produces interview questions for a locked domain.
// It may return fewer questions than requested.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, domain string, level Level, count int) ([]string, error)
	GenerateBehavioralQuestion(ctx context.Context, profile SkillProfile) (string, error)
}

// Evaluator scores one answer against its question.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, question, answer string) (*Rubric, error)
}

// IntroAnalyzer extracts the skill profile signals from the introduction text.
type IntroAnalyzer interface {
	AnalyzeIntroduction(ctx context.Context, text string) (*IntroAnalysis, error)
}

// Exchange is one answered question of a finished interview.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Transcript is what the summarizer sees of a finished interview.
type Transcript struct {
	Skills     []string   `json:"skills"`
	Experience Level      `json:"experience"`
	Exchanges  []Exchange `json:"exchanges"`
}

// Summarizer writes a short narrative of a finished interview for the report.
type Summarizer interface {
	Summarize(ctx context.Context, transcript Transcript) (string, error)
}

// Collaborators groups the model-backed collaborators. Any of them may be nil.
type Collaborators struct {
	Questions  QuestionGenerator
	Evaluator  Evaluator
	Intro      IntroAnalyzer
	Summarizer Summarizer
}
