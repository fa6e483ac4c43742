// Package metrics exposes Prometheus instrumentation for interview sessions.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// InterviewMetrics exposes counters/histograms for interview sessions and their collaborators.
type InterviewMetrics struct {
	sessionsTotal       *prometheus.CounterVec
	turnsTotal          *prometheus.CounterVec
	fallbacksTotal      *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
	answerScore         prometheus.Histogram
}

func NewInterviewMetrics(reg prometheus.Registerer) *InterviewMetrics {
	m := &InterviewMetrics{
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interviewer",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Total session phase transitions",
		}, []string{"phase", "reason"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interviewer",
			Subsystem: "session",
			Name:      "turns_total",
			Help:      "Total processed candidate submissions",
		}, []string{"kind", "outcome"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interviewer",
			Subsystem: "collaborator",
			Name:      "fallbacks_total",
			Help:      "Total collaborator calls answered by the deterministic fallback",
		}, []string{"collaborator", "cause"}),
		collaboratorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "interviewer",
			Subsystem: "collaborator",
			Name:      "latency_seconds",
			Help:      "Latency of model-backed collaborator calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator"}),
		answerScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "interviewer",
			Subsystem: "scoring",
			Name:      "answer_overall",
			Help:      "Overall rubric score of evaluated answers",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.turnsTotal, m.fallbacksTotal, m.collaboratorLatency, m.answerScore)
	return m
}

// ObserveTransition counts a session entering phase. reason is empty unless the session was terminated.
func (m *InterviewMetrics) ObserveTransition(phase, reason string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(phase, reason).Inc()
}

func (m *InterviewMetrics) ObserveTurn(kind, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *InterviewMetrics) ObserveFallback(collaborator, cause string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(collaborator, cause).Inc()
}

func (m *InterviewMetrics) ObserveCollaboratorLatency(collaborator string, seconds float64) {
	if m == nil {
		return
	}
	m.collaboratorLatency.WithLabelValues(collaborator).Observe(seconds)
}

func (m *InterviewMetrics) ObserveAnswerScore(overall float64) {
	if m == nil {
		return
	}
	m.answerScore.Observe(overall)
}
