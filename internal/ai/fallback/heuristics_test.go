package fallback

import (
	"context"
	"strings"
	"testing"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/skills"
)

func TestFillQuestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		returned []string
		quota    int
		want     []string
	}{
		{
			name:  "zero quota",
			quota: 0,
			want:  []string{},
		},
		{
			name:     "enough returned questions are truncated",
			returned: []string{"Q1", "Q2", "Q3"},
			quota:    2,
			want:     []string{"Q1", "Q2"},
		},
		{
			name:     "blank and duplicate questions are dropped before filling",
			returned: []string{"Q1", " ", "q1", "Q2"},
			quota:    3,
			want:     []string{"Q1", "Q2", "Explain a core concept in go."},
		},
		{
			name:  "filler only",
			quota: 2,
			want: []string{
				"Explain a core concept in go.",
				"Describe a real-world problem you solved using go.",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FillQuestions(tt.returned, "go", tt.quota)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("FillQuestions() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFillQuestionsBeyondTemplates(t *testing.T) {
	t.Parallel()

	got := FillQuestions(nil, "sql", 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(got))
	}

	seen := make(map[string]struct{})
	for _, q := range got {
		if _, ok := seen[q]; ok {
			t.Fatalf("duplicate question %q", q)
		}
		seen[q] = struct{}{}
	}

	again := FillQuestions(nil, "sql", 10)
	if strings.Join(got, "|") != strings.Join(again, "|") {
		t.Fatal("filler is not deterministic")
	}
}

func TestBehavioralQuestion(t *testing.T) {
	t.Parallel()

	if got := BehavioralQuestion("backend"); got != GenericBehavioralQuestion {
		t.Fatalf("unexpected behavioral question: %q", got)
	}
	if got := BehavioralQuestion("aec_bim"); !strings.Contains(got, "BIM") {
		t.Fatalf("expected BIM specific question, got %q", got)
	}
}

func TestEvaluateAnswerHeuristic(t *testing.T) {
	t.Parallel()

	h := NewHeuristics(nil)
	ctx := context.Background()

	short, err := h.EvaluateAnswer(ctx, "What is Go?", "A language.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short.Overall != 4 {
		t.Fatalf("expected short answer to score 4, got %v", short.Overall)
	}
	if len(short.Weaknesses) != 2 {
		t.Fatalf("expected two weaknesses, got %v", short.Weaknesses)
	}

	rich := strings.Repeat("word ", 120) +
		"For example the api talks to the database because latency matters."
	scored, err := h.EvaluateAnswer(ctx, "How would you design a cache?", rich+" The architecture has components.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 7 for length, +1 examples, +1 technical terms, +1 explanation, +1 design bonus, clamped to 10.
	if scored.Overall != 10 {
		t.Fatalf("expected clamped score 10, got %v", scored.Overall)
	}
	if scored.TechnicalAccuracy != scored.Overall || scored.Practicality != scored.Overall {
		t.Fatalf("expected uniform rubric, got %+v", scored)
	}
	if len(scored.Strengths) != 2 {
		t.Fatalf("expected two strengths, got %v", scored.Strengths)
	}
}

func TestEvaluateAnswerDeterministic(t *testing.T) {
	t.Parallel()

	h := NewHeuristics(nil)
	a, _ := h.EvaluateAnswer(context.Background(), "q", "some reasonably short answer here")
	b, _ := h.EvaluateAnswer(context.Background(), "q", "some reasonably short answer here")
	if a.Overall != b.Overall {
		t.Fatalf("expected identical scores, got %v and %v", a.Overall, b.Overall)
	}
}

func TestAnalyzeIntroductionHeuristic(t *testing.T) {
	t.Parallel()

	h := NewHeuristics(skills.Default())
	intro := "I am a backend engineer working with Python, SQL and Docker. " +
		"I built a billing project and developed an internal tool."

	analysis, err := h.AnalyzeIntroduction(context.Background(), intro)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Python", "SQL", "Docker"} {
		found := false
		for _, s := range analysis.Skills {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected skill %q in %v", want, analysis.Skills)
		}
	}

	if analysis.Experience != ai.ExperienceJunior || analysis.Confidence != ai.ConfidenceLow {
		t.Fatalf("expected junior/low for a short intro, got %s/%s", analysis.Experience, analysis.Confidence)
	}
	if analysis.Communication != ai.CommunicationWeak {
		t.Fatalf("expected weak communication under 50 words, got %s", analysis.Communication)
	}
	if analysis.ProjectsMentioned != 3 {
		t.Fatalf("expected 3 project markers, got %d", analysis.ProjectsMentioned)
	}
	// 6 base, +1 for three skills, +1 for two projects.
	if analysis.IntroScore != 8 {
		t.Fatalf("expected intro score 8, got %d", analysis.IntroScore)
	}
}
