package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
)

// Sink persists a report.
type Sink interface {
	Save(ctx context.Context, r *Report) error
}

// Summarizer produces the narrative of a report. The boolean reports a fallback text.
type Summarizer interface {
	Summary(ctx context.Context, transcript ai.Transcript) (string, bool)
}

// Writer builds the report of every finalized session and hands it to the sinks.
type Writer struct {
	sinks      []Sink
	summarizer Summarizer
	logger     *zap.Logger
	now        func() time.Time

	mu   sync.Mutex
	last *Report
}

func NewWriter(summarizer Summarizer, logger *zap.Logger, sinks ...Sink) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		sinks:      sinks,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// OnSessionFinalized builds and stores the report of s.
func (w *Writer) OnSessionFinalized(ctx context.Context, s *interview.Session) error {
	r := Build(s.Snapshot(), w.now().UTC())
	if w.summarizer != nil {
		r.Summary, _ = w.summarizer.Summary(ctx, r.Transcript())
	}
	w.mu.Lock()
	w.last = r
	w.mu.Unlock()

	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Save(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", sink, err))
		}
	}

	w.logger.Info("interview report stored",
		zap.String("session_id", r.SessionID),
		zap.Float64("final_score", r.Final),
		zap.String("recommendation", string(r.Recommendation)),
		zap.Int("sinks", len(w.sinks)-len(errs)),
	)
	return errors.Join(errs...)
}

// Last returns the most recent report built by the writer.
func (w *Writer) Last() *Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
