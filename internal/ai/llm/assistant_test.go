package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/skills"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func newTestAssistant(t *testing.T, stub *stubGenerator) *Assistant {
	t.Helper()
	a, err := New(stub, skills.Default(), zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("new assistant: %v", err)
	}
	a.focus = func() string { return "architecture and design" }
	return a
}

func TestNewRequiresGenerator(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil, nil, 0); err == nil {
		t.Fatal("expected error without generator")
	}
}

func TestGenerateQuestions(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "```json\n{\"questions\": [\"1. What is a goroutine?\", \"How do channels work?\", \"Why use context?\"]}\n```"}
	a := newTestAssistant(t, stub)

	got, err := a.GenerateQuestions(context.Background(), "backend", ai.ExperienceMid, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, "|") != "What is a goroutine?|How do channels work?" {
		t.Fatalf("unexpected questions: %q", got)
	}

	for _, want := range []string{"Domain: backend", "Candidate level: mid", "Python, Java", "Focus on: architecture and design", "exactly 2 questions"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, stub.lastPrompt)
		}
	}
	if stub.lastSystem != questionsSystem {
		t.Fatalf("unexpected system prompt %q", stub.lastSystem)
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("unrendered placeholder in prompt:\n%s", stub.lastPrompt)
	}
}

func TestGenerateQuestionsPlainList(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "Here are your questions:\n1) What is REST?\n2. Explain indexes.\n- How do you scale a database?"}
	a := newTestAssistant(t, stub)

	got, err := a.GenerateQuestions(context.Background(), "backend", ai.ExperienceJunior, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, "|") != "What is REST?|How do you scale a database?" {
		t.Fatalf("unexpected questions: %q", got)
	}
}

func TestGenerateQuestionsPropagatesError(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: errors.New("boom")}
	a := newTestAssistant(t, stub)

	if _, err := a.GenerateQuestions(context.Background(), "backend", ai.ExperienceMid, 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateBehavioralQuestion(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "\n\"Tell me about a time you disagreed with a design decision?\"\nExtra commentary."}
	a := newTestAssistant(t, stub)

	got, err := a.GenerateBehavioralQuestion(context.Background(), ai.SkillProfile{
		PrimarySkill:      "devops",
		Experience:        ai.ExperienceSenior,
		ProjectsMentioned: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Tell me about a time you disagreed with a design decision?" {
		t.Fatalf("unexpected question %q", got)
	}
	if !strings.Contains(stub.lastPrompt, "Skills: DevOps, AWS") {
		t.Fatalf("expected catalogue skills in prompt:\n%s", stub.lastPrompt)
	}
}

func TestEvaluateAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, r *ai.Rubric)
		wantErr  bool
	}{
		{
			name:     "json with strings and clamping",
			response: `{"technical_accuracy": "8", "completeness": 7, "clarity": 12, "depth": 6, "practicality": 0, "overall": 7.5, "strengths": "clear", "weaknesses": ["no examples"]}`,
			check: func(t *testing.T, r *ai.Rubric) {
				if r.TechnicalAccuracy != 8 || r.Clarity != 10 || r.Practicality != 1 || r.Overall != 7.5 {
					t.Fatalf("unexpected rubric %+v", r)
				}
				if len(r.Strengths) != 1 || r.Strengths[0] != "clear" {
					t.Fatalf("unexpected strengths %v", r.Strengths)
				}
				if len(r.Weaknesses) != 1 {
					t.Fatalf("unexpected weaknesses %v", r.Weaknesses)
				}
			},
		},
		{
			name:     "missing overall is averaged",
			response: "Result:\n{\"technical_accuracy\": 6, \"completeness\": 6, \"clarity\": 8, \"depth\": 6, \"practicality\": 4}",
			check: func(t *testing.T, r *ai.Rubric) {
				if r.Overall != 6 {
					t.Fatalf("expected averaged overall 6, got %v", r.Overall)
				}
			},
		},
		{
			name:     "not json",
			response: "The answer is pretty good.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubGenerator{response: tt.response}
			a := newTestAssistant(t, stub)

			rubric, err := a.EvaluateAnswer(context.Background(), "What is a mutex?", "A lock that serializes access.")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, rubric)

			if !strings.Contains(stub.lastPrompt, "Word count: 5") {
				t.Fatalf("expected word count in prompt:\n%s", stub.lastPrompt)
			}
		})
	}
}

func TestAnalyzeIntroduction(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"skills": ["Go", "Kubernetes"], "experience": "Senior", "confidence": "HIGH", "communication": "strong", "intro_score": "8", "projects_mentioned": 2}`}
	a := newTestAssistant(t, stub)

	intro := "I am a platform engineer building Kubernetes operators in Go."
	analysis, err := a.AnalyzeIntroduction(context.Background(), intro)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Experience != ai.ExperienceSenior || analysis.Confidence != ai.ConfidenceHigh {
		t.Fatalf("expected normalized levels, got %+v", analysis)
	}
	if analysis.IntroScore != 8 || analysis.ProjectsMentioned != 2 {
		t.Fatalf("unexpected scores %+v", analysis)
	}
	if analysis.WordCount != 10 {
		t.Fatalf("expected word count 10, got %d", analysis.WordCount)
	}
	if !strings.Contains(stub.lastPrompt, intro) {
		t.Fatal("expected introduction in prompt")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "  Strong fundamentals, limited production depth.  "}
	a := newTestAssistant(t, stub)

	got, err := a.Summarize(context.Background(), ai.Transcript{
		Skills:     []string{"Go", "SQL"},
		Experience: ai.ExperienceMid,
		Exchanges: []ai.Exchange{
			{Question: "What is a goroutine?", Answer: strings.Repeat("x", 300)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Strong fundamentals, limited production depth." {
		t.Fatalf("unexpected summary %q", got)
	}
	if !strings.Contains(stub.lastPrompt, "Q1: What is a goroutine?") {
		t.Fatalf("expected history in prompt:\n%s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, strings.Repeat("x", 101)) {
		t.Fatal("expected long answers to be truncated")
	}
}

func TestCandidateTextIsNotExpanded(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"technical_accuracy": 5, "completeness": 5, "clarity": 5, "depth": 5, "practicality": 5}`}
	a := newTestAssistant(t, stub)

	answer := "I would print {{QUESTION}} and {{WORD_COUNT}} literally"
	if _, err := a.EvaluateAnswer(context.Background(), "What is templating?", answer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.lastPrompt, "Answer: "+answer) {
		t.Fatalf("expected answer to be kept verbatim:\n%s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "Question: What is templating?") {
		t.Fatalf("expected question in prompt:\n%s", stub.lastPrompt)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	got := render("{{A}} then {{B}}\n", map[string]string{"A": "{{B}}", "B": "{{A}}"})
	if got != "{{B}} then {{A}}" {
		t.Fatalf("unexpected render result %q", got)
	}
}
