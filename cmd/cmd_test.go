package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/report"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/termination"
)

func TestLineReader(t *testing.T) {
	t.Parallel()

	r := newAnswerReader(strings.NewReader("first\r\n\nsecond"), false)
	for _, want := range []string{"first", "", "second"} {
		got, err := r.ReadAnswer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, err := r.ReadAnswer(); !errors.Is(err, promptui.ErrEOF) {
		t.Fatalf("expected ErrEOF, got %v", err)
	}
}

func TestLineReaderLongAnswer(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 40*1024)
	r := newAnswerReader(strings.NewReader(long+"\nnext"), false)

	got, err := r.ReadAnswer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != long {
		t.Fatalf("expected %d bytes, got %d", len(long), len(got))
	}
	if got, _ := r.ReadAnswer(); got != "next" {
		t.Fatalf("expected next line, got %q", got)
	}
}

func newTestOrchestrator(t *testing.T, total int) *interview.Orchestrator {
	t.Helper()

	cfg := interview.DefaultConfig()
	cfg.TotalQuestions = total
	o, err := interview.New(cfg, interview.Deps{
		Policy:    termination.New(termination.DefaultConfig(), zap.NewNop()),
		Catalogue: skills.Default(),
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	return o
}

func TestConverse(t *testing.T) {
	t.Parallel()

	const intro = "I build React frontends with TypeScript and care about accessibility and testing"

	tests := []struct {
		name     string
		input    string
		phase    interview.Phase
		reason   termination.Reason
		answered int
	}{
		{
			name:     "piped answers complete the interview",
			input:    intro + "\n\nI would profile the render path first and memoize the expensive components\nskip\n",
			phase:    interview.PhaseCompleted,
			answered: 2,
		},
		{
			name:   "end of input ends the interview",
			input:  intro + "\n",
			phase:  interview.PhaseTerminated,
			reason: termination.ReasonCandidateRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := newTestOrchestrator(t, 2)
			s := o.NewSession()
			turn, err := o.Start(s)
			if err != nil {
				t.Fatalf("Start failed: %v", err)
			}

			got := converse(context.Background(), o, s, turn, newAnswerReader(strings.NewReader(tt.input), false), zap.NewNop())
			if got.Phase != tt.phase {
				t.Fatalf("expected phase %s, got %s", tt.phase, got.Phase)
			}
			if got.Answered != tt.answered {
				t.Fatalf("expected %d answers, got %d", tt.answered, got.Answered)
			}
			if tt.reason != "" && (got.Termination == nil || got.Termination.Reason != tt.reason) {
				t.Fatalf("expected termination %s, got %+v", tt.reason, got.Termination)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	r := &report.Report{SessionID: "s1", Final: 7.5}

	var buf bytes.Buffer
	if err := printReport(&buf, r, "yaml"); err != nil {
		t.Fatalf("yaml output failed: %v", err)
	}
	if !strings.Contains(buf.String(), "session_id: s1") || !strings.Contains(buf.String(), "final: 7.5") {
		t.Fatalf("unexpected yaml output:\n%s", buf.String())
	}

	buf.Reset()
	if err := printReport(&buf, r, "json"); err != nil {
		t.Fatalf("json output failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"session_id": "s1"`) {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}

	if err := printReport(&buf, r, "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestPrintOutcomeTerminated(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, 2)
	s := o.NewSession()
	if _, err := o.Start(s); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := o.Submit(context.Background(), s, "I build React frontends with TypeScript and care about accessibility"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	turn, err := o.Terminate(s, termination.ReasonCandidateRequest, "")
	if err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}

	var buf bytes.Buffer
	printOutcome(&buf, turn, report.Build(s.Snapshot(), time.Now()))
	if !strings.Contains(buf.String(), "Stopped after 0 of 2 questions (candidate_request)") {
		t.Fatalf("unexpected outcome:\n%s", buf.String())
	}
}
