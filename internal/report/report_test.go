package report

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/termination"
)

type fixedEvaluator struct {
	overall float64
}

func (f fixedEvaluator) EvaluateAnswer(context.Context, string, string) (*ai.Rubric, error) {
	r := ai.UniformRubric(f.overall)
	r.Strengths = []string{"Clear structure"}
	r.Weaknesses = []string{"Few examples"}
	return &r, nil
}

type stubSummarizer struct {
	got ai.Transcript
}

func (s *stubSummarizer) Summary(_ context.Context, t ai.Transcript) (string, bool) {
	s.got = t
	return "Consistent answers.", false
}

type failingSink struct{}

func (failingSink) Save(context.Context, *Report) error {
	return errors.New("read-only")
}

type memorySink struct {
	reports []*Report
}

func (m *memorySink) Save(_ context.Context, r *Report) error {
	m.reports = append(m.reports, r)
	return nil
}

func completedSession(t *testing.T, finalizer interview.Finalizer, overall float64) *interview.Session {
	t.Helper()

	o, err := interview.New(interview.Config{TotalQuestions: 3}, interview.Deps{
		Policy:        termination.New(termination.DefaultConfig(), nil),
		Collaborators: ai.Collaborators{Evaluator: fixedEvaluator{overall: overall}},
		Finalizer:     finalizer,
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	s := o.NewSession()
	if _, err := o.Start(s); err != nil {
		t.Fatalf("start: %v", err)
	}
	inputs := []string{
		"I am a devops engineer running Kubernetes and Terraform in production",
		"Pods are scheduled onto nodes by the scheduler based on resources.",
		"Terraform keeps a state file describing the managed infrastructure resources.",
		"I once owned a failed release and coordinated the rollback with the team.",
	}
	for _, in := range inputs {
		if _, err := o.Submit(context.Background(), s, in); err != nil {
			t.Fatalf("submit %q: %v", in, err)
		}
	}
	if s.Phase() != interview.PhaseCompleted {
		t.Fatalf("expected completed session, got %s", s.Phase())
	}
	return s
}

func TestBuild(t *testing.T) {
	t.Parallel()

	s := completedSession(t, nil, 8)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Build(s.Snapshot(), now)

	if r.SessionID != s.ID() || r.ID == "" {
		t.Fatalf("unexpected ids %q %q", r.SessionID, r.ID)
	}
	if r.PrimarySkill() != "devops" {
		t.Fatalf("expected devops, got %q", r.PrimarySkill())
	}
	if len(r.Entries) != 3 || r.Entries[2].Kind != "behavioral" {
		t.Fatalf("unexpected entries %+v", r.Entries)
	}
	if r.Final != 8 || r.TechnicalAverage != 8 || r.BehavioralAverage != 8 {
		t.Fatalf("unexpected scores final=%v tech=%v beh=%v", r.Final, r.TechnicalAverage, r.BehavioralAverage)
	}
	if r.Recommendation != scoring.RecommendStrongAccept {
		t.Fatalf("unexpected recommendation %s", r.Recommendation)
	}
	if !strings.HasPrefix(r.Performance, "Good") {
		t.Fatalf("unexpected performance band %q", r.Performance)
	}
	if len(r.Strengths) != 1 || len(r.Weaknesses) != 1 {
		t.Fatalf("expected deduplicated highlights, got %v / %v", r.Strengths, r.Weaknesses)
	}
	if !r.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created at %v", r.CreatedAt)
	}
	if r.Introduction == "" {
		t.Fatal("expected introduction text")
	}

	transcript := r.Transcript()
	if len(transcript.Exchanges) != 3 || transcript.Exchanges[0].Answer != r.Entries[0].Answer {
		t.Fatalf("unexpected transcript %+v", transcript)
	}
}

func TestBuildTerminated(t *testing.T) {
	t.Parallel()

	o, err := interview.New(interview.Config{TotalQuestions: 3}, interview.Deps{
		Policy:        termination.New(termination.DefaultConfig(), nil),
		Collaborators: ai.Collaborators{Evaluator: fixedEvaluator{overall: 6}},
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	s := o.NewSession()
	if _, err := o.Start(s); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, in := range []string{
		"I am a devops engineer running Kubernetes and Terraform in production",
		"Pods are scheduled onto nodes by the scheduler based on resources.",
		"I want to quit now",
	} {
		if _, err := o.Submit(context.Background(), s, in); err != nil {
			t.Fatalf("submit %q: %v", in, err)
		}
	}

	r := Build(s.Snapshot(), time.Now().UTC())
	if r.Phase != interview.PhaseTerminated {
		t.Fatalf("expected terminated report, got %s", r.Phase)
	}
	if r.Termination == nil || r.Termination.Reason != termination.ReasonCandidateRequest {
		t.Fatalf("unexpected termination %+v", r.Termination)
	}
	if len(r.Entries) != 1 || r.Final != 6 {
		t.Fatalf("expected one answer with partial score 6, got %d entries final=%v", len(r.Entries), r.Final)
	}
}

func TestWriterStoresOnFinalize(t *testing.T) {
	t.Parallel()

	mem := &memorySink{}
	summarizer := &stubSummarizer{}
	w := NewWriter(summarizer, zap.NewNop(), mem)

	s := completedSession(t, w, 6)

	if len(mem.reports) != 1 {
		t.Fatalf("expected one stored report, got %d", len(mem.reports))
	}
	r := mem.reports[0]
	if r.SessionID != s.ID() || r.Summary != "Consistent answers." {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(summarizer.got.Exchanges) != 3 {
		t.Fatalf("expected summarizer to see all exchanges, got %d", len(summarizer.got.Exchanges))
	}
	if w.Last() != r {
		t.Fatal("expected Last to return the stored report")
	}
}

func TestWriterJoinsSinkErrors(t *testing.T) {
	t.Parallel()

	mem := &memorySink{}
	w := NewWriter(nil, nil, failingSink{}, mem)
	s := completedSession(t, nil, 5)

	err := w.OnSessionFinalized(context.Background(), s)
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(mem.reports) != 1 {
		t.Fatal("a failing sink must not stop the others")
	}
}

func TestFileSink(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("new file sink: %v", err)
	}

	r := Build(completedSession(t, nil, 7).Snapshot(), time.Now().UTC())
	path, err := sink.Write(r)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.Contains(path, r.SessionID) {
		t.Fatalf("unexpected path %q", path)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.SessionID != r.SessionID || got.Final != r.Final || len(got.Entries) != len(r.Entries) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	older := Build(completedSession(t, nil, 4).Snapshot(), time.Now().UTC().Add(-time.Hour))
	newer := Build(completedSession(t, nil, 9).Snapshot(), time.Now().UTC())

	for _, r := range []*Report{older, newer} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.Get(ctx, newer.SessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Final != 9 || got.PrimarySkill() != "devops" {
		t.Fatalf("unexpected report %+v", got)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil report for unknown session, got %+v %v", missing, err)
	}

	list, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].SessionID != newer.SessionID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].Recommendation != string(scoring.RecommendReject) {
		t.Fatalf("unexpected recommendation %q", list[1].Recommendation)
	}

	newer.Summary = "updated"
	if err := store.Save(ctx, newer); err != nil {
		t.Fatalf("Save (replace) failed: %v", err)
	}
	list, _ = store.List(ctx, 10)
	if len(list) != 2 {
		t.Fatalf("expected replace, got %d rows", len(list))
	}
}
