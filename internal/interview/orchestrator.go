package interview

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/ai/fallback"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/metrics"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/sequence"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/termination"
	"github.com/spigell/interviewer/internal/textutil"
)

const (
	DefaultTotalQuestions        = 5
	DefaultPoorPerformanceWindow = 2

	rulePoorPerformance = "poor_performance"
	ruleExternal        = "external"
)

// Config holds the orchestrator settings.
type Config struct {
	// TotalQuestions is the number of slots: all technical but the last, which is behavioral.
	TotalQuestions      int           `mapstructure:"total-questions"`
	CollaboratorTimeout time.Duration `mapstructure:"collaborator-timeout"`
	// PoorPerformanceFloor ends the interview when the mean of the last
	// PoorPerformanceWindow technical scores falls below it. Zero disables the check.
	PoorPerformanceFloor  float64 `mapstructure:"poor-performance-floor"`
	PoorPerformanceWindow int     `mapstructure:"poor-performance-window"`
}

// DefaultConfig returns the reference settings.
func DefaultConfig() Config {
	return Config{
		TotalQuestions:        DefaultTotalQuestions,
		CollaboratorTimeout:   fallback.DefaultTimeout,
		PoorPerformanceWindow: DefaultPoorPerformanceWindow,
	}
}

// Finalizer receives every session that reaches the completed phase, exactly once.
type Finalizer interface {
	OnSessionFinalized(ctx context.Context, s *Session) error
}

// Deps are the collaborators of the orchestrator. Only Policy is required.
type Deps struct {
	Policy        *termination.Policy
	Catalogue     *skills.Catalogue
	Collaborators ai.Collaborators
	Finalizer     Finalizer
	Logger        *zap.Logger
	Metrics       *metrics.InterviewMetrics
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs the interview state machine. It keeps no per-session
// state and is safe for concurrent use across sessions.
type Orchestrator struct {
	config    Config
	policy    *termination.Policy
	catalogue *skills.Catalogue
	guard     *fallback.Guard
	finalizer Finalizer
	logger    *zap.Logger
	metrics   *metrics.InterviewMetrics
	now       func() time.Time
}

func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if deps.Policy == nil {
		return nil, fmt.Errorf("termination policy is required")
	}
	if cfg.TotalQuestions <= 0 {
		return nil, fmt.Errorf("total questions must be positive, got %d", cfg.TotalQuestions)
	}
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = fallback.DefaultTimeout
	}
	if cfg.PoorPerformanceWindow <= 0 {
		cfg.PoorPerformanceWindow = DefaultPoorPerformanceWindow
	}
	if deps.Catalogue == nil {
		deps.Catalogue = skills.Default()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Orchestrator{
		config:    cfg,
		policy:    deps.Policy,
		catalogue: deps.Catalogue,
		guard: fallback.NewGuard(deps.Collaborators, fallback.NewHeuristics(deps.Catalogue),
			cfg.CollaboratorTimeout, deps.Logger, deps.Metrics),
		finalizer: deps.Finalizer,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		now:       deps.Now,
	}, nil
}

// NewSession returns a session that has not started yet.
func (o *Orchestrator) NewSession() *Session {
	s := newSession()
	o.metrics.ObserveTransition(string(PhaseNotStarted), "")
	return s
}

// Start opens the session and returns the introduction prompt.
// On a started session it only returns the current view.
func (o *Orchestrator) Start(s *Session) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.phase != PhaseNotStarted {
		return s.view(s.state), nil
	}

	s.state.phase = PhaseIntroductionPending
	s.state.startedAt = o.now()
	s.state.version++
	o.metrics.ObserveTransition(string(PhaseIntroductionPending), "")
	o.sessionLogger(s.id, s.state).Info("interview started")
	return s.view(s.state), nil
}

// Submit processes one candidate submission. Collaborator failures are
// absorbed; the returned errors are the session-level rejections only.
func (o *Orchestrator) Submit(ctx context.Context, s *Session, text string) (*Turn, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	cur := s.load()
	switch cur.phase {
	case PhaseNotStarted:
		return s.view(cur), ErrSessionNotStarted
	case PhaseTerminated:
		return s.view(cur), ErrSessionTerminated
	case PhaseCompleted:
		return s.view(cur), nil
	}

	if textutil.IsBlank(text) {
		o.metrics.ObserveTurn(string(currentKind(cur)), "rejected")
		return s.view(cur), ErrInvalidSubmission
	}

	log := o.sessionLogger(s.id, cur)
	now := o.now()
	next := cur.clone()
	next.turns++

	counters := termination.Counters{SuspiciousActivity: cur.suspicious}
	verdict := o.policy.Guard(counters)
	if !verdict.Terminate {
		verdict = o.policy.Evaluate(text, counters)
	}

	switch {
	case verdict.Terminate:
		o.metrics.ObserveTurn(string(currentKind(cur)), "terminated")
		next.terminate(verdict.Reason, verdict.Rule, text, now)
	case cur.phase == PhaseIntroductionPending:
		o.introduce(ctx, &next, text, now)
	default:
		o.answer(ctx, &next, text, now)
	}

	committed, err := o.commit(s, cur, next)
	if err != nil {
		log.Info("submission discarded, session changed while it was processed", zap.Error(err))
		return s.view(committed), err
	}

	o.observeCommit(cur, committed, log)
	if committed.phase == PhaseCompleted && !cur.finalized && committed.finalized {
		o.finalize(ctx, s, log)
	}
	return s.view(committed), nil
}

func (o *Orchestrator) introduce(ctx context.Context, next *state, text string, now time.Time) {
	analysis, introFallback := o.guard.Intro(ctx, text)

	profile := &ai.SkillProfile{
		Skills:            analysis.Skills,
		PrimarySkill:      o.catalogue.Classify(analysis.Skills),
		Experience:        analysis.Experience,
		Confidence:        analysis.Confidence,
		Communication:     analysis.Communication,
		IntroScore:        analysis.IntroScore,
		ProjectsMentioned: analysis.ProjectsMentioned,
		WordCount:         analysis.WordCount,
	}

	technical, _ := o.guard.Questions(ctx, profile.PrimarySkill, profile.Experience, o.config.TotalQuestions-1)
	behavioral, _ := o.guard.Behavioral(ctx, *profile)

	questions, err := sequence.New(technical, behavioral)
	if err != nil {
		questions, _ = sequence.New(nil, fallback.BehavioralQuestion(profile.PrimarySkill))
	}

	next.profile = profile
	next.intro = &Introduction{Text: textutil.Normalize(text), SubmittedAt: now, Fallback: introFallback}
	next.questions = questions
	next.phase = PhaseInProgress
	o.metrics.ObserveTurn(string(sequence.KindIntroduction), "answered")
}

func (o *Orchestrator) answer(ctx context.Context, next *state, text string, now time.Time) {
	slot, ok := next.questions.Current()
	if !ok {
		o.complete(next, now)
		return
	}

	answer := sequence.Answer{Text: text, SubmittedAt: now}
	outcome := "answered"
	if o.policy.Config().IsSkip(text) {
		answer.Rubric = ai.UniformRubric(ai.MinScore)
		answer.Skipped = true
		outcome = "skipped"
	} else {
		answer.Rubric, answer.Fallback = o.guard.Evaluate(ctx, slot.Text, text)
	}

	questions, _, err := next.questions.Record(answer)
	if err != nil {
		o.complete(next, now)
		return
	}
	next.questions = questions
	next.scores.Add(answer.Rubric.Overall)
	o.metrics.ObserveTurn(string(slot.Kind), outcome)
	o.metrics.ObserveAnswerScore(answer.Rubric.Overall)

	if next.questions.Done() {
		o.complete(next, now)
		return
	}
	if slot.Kind == sequence.KindTechnical && o.underperforming(next.questions) {
		next.terminate(termination.ReasonPoorResponse, rulePoorPerformance, text, now)
	}
}

func (o *Orchestrator) underperforming(questions sequence.Sequence) bool {
	if o.config.PoorPerformanceFloor <= 0 {
		return false
	}
	answers := questions.AnsweredOfKind(sequence.KindTechnical)
	window := o.config.PoorPerformanceWindow
	if len(answers) < window {
		return false
	}

	recent := make([]float64, 0, window)
	for _, a := range answers[len(answers)-window:] {
		recent = append(recent, a.Rubric.Overall)
	}
	return scoring.Mean(recent) < o.config.PoorPerformanceFloor
}

func (o *Orchestrator) complete(next *state, now time.Time) {
	next.phase = PhaseCompleted
	next.scores.Finalize()
	next.finishedAt = now
	next.finalized = true
}

// commit swaps next in unless the session moved on while next was built.
// Only out-of-band signals can change a session during a submission: a
// termination discards next, a suspicious activity count is carried over.
func (o *Orchestrator) commit(s *Session, base, next state) (state, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.version != base.version {
		if s.state.phase.Terminal() {
			return s.state.clone(), ErrSessionTerminated
		}
		next.suspicious = s.state.suspicious
	}

	next.version = s.state.version + 1
	s.state = next
	return next.clone(), nil
}

func (o *Orchestrator) finalize(ctx context.Context, s *Session, log *zap.Logger) {
	if o.finalizer == nil {
		return
	}
	if err := o.finalizer.OnSessionFinalized(ctx, s); err != nil {
		log.Error("session finalizer failed", zap.Error(err))
	}
}

// RecordSuspiciousActivity counts one out-of-band suspicious event, such as the
// candidate leaving the interview window. Reaching the configured limit ends the session.
func (o *Orchestrator) RecordSuspiciousActivity(s *Session) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.phase {
	case PhaseNotStarted:
		return s.view(s.state), ErrSessionNotStarted
	case PhaseTerminated:
		return s.view(s.state), ErrSessionTerminated
	case PhaseCompleted:
		return s.view(s.state), nil
	}

	prev := s.state
	s.state.suspicious++
	s.state.version++

	log := o.sessionLogger(s.id, s.state)
	verdict := o.policy.Guard(termination.Counters{SuspiciousActivity: s.state.suspicious})
	if verdict.Terminate {
		s.state.terminate(termination.ReasonTabSwitch, verdict.Rule, "", o.now())
		o.observeCommit(prev, s.state, log)
		return s.view(s.state), nil
	}

	log.Warn("suspicious activity recorded", zap.Int("count", s.state.suspicious))
	return s.view(s.state), nil
}

// Terminate ends the session on an external signal.
func (o *Orchestrator) Terminate(s *Session, reason termination.Reason, text string) (*Turn, error) {
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.phase {
	case PhaseNotStarted:
		return s.view(s.state), ErrSessionNotStarted
	case PhaseTerminated:
		return s.view(s.state), ErrSessionTerminated
	case PhaseCompleted:
		return s.view(s.state), nil
	}

	prev := s.state
	s.state.terminate(reason, ruleExternal, text, o.now())
	s.state.version++
	o.observeCommit(prev, s.state, o.sessionLogger(s.id, s.state))
	return s.view(s.state), nil
}

func (o *Orchestrator) observeCommit(prev, next state, log *zap.Logger) {
	if prev.phase == next.phase {
		return
	}

	reason := ""
	if next.termination != nil {
		reason = string(next.termination.Reason)
	}
	o.metrics.ObserveTransition(string(next.phase), reason)

	switch next.phase {
	case PhaseInProgress:
		log.Info("skill domain locked",
			zap.String("domain", next.profile.PrimarySkill),
			zap.Strings("skills", next.profile.Skills),
			zap.Int("questions", next.questions.Len()),
		)
	case PhaseCompleted:
		final, _ := next.scores.Final()
		log.Info("interview completed", zap.Float64("final_score", final), zap.Int("answers", next.scores.Count()))
	case PhaseTerminated:
		log.Info("interview terminated", zap.String("reason", reason), zap.String("rule", next.termination.Rule))
	}
}

func (o *Orchestrator) sessionLogger(id string, st state) *zap.Logger {
	domain := ""
	if st.profile != nil {
		domain = st.profile.PrimarySkill
	}
	return logger.WithFields(o.logger, logger.SessionFields(id, string(st.phase), domain)...)
}

func currentKind(st state) sequence.Kind {
	if st.phase == PhaseIntroductionPending {
		return sequence.KindIntroduction
	}
	if slot, ok := st.questions.Current(); ok {
		return slot.Kind
	}
	return sequence.KindTechnical
}
