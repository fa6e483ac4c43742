// Package scoring aggregates per-answer rubric scores into the interview score.
package scoring

// Aggregator keeps the overall score of every recorded answer.
// The zero value is ready to use. Copies share nothing once Clone is used.
type Aggregator struct {
	overall   []float64
	finalized bool
	final     float64
}

// Add records the overall score of one answer. It is ignored after Finalize.
func (a *Aggregator) Add(overall float64) {
	if a.finalized {
		return
	}
	a.overall = append(a.overall, overall)
}

// Count returns the number of recorded scores.
func (a *Aggregator) Count() int {
	return len(a.overall)
}

// Current returns the arithmetic mean of every recorded score, or 0 without scores.
// The mean is recomputed from all values on each call.
func (a *Aggregator) Current() float64 {
	return Mean(a.overall)
}

// Finalize freezes the aggregator and fixes the final score.
func (a *Aggregator) Finalize() float64 {
	if !a.finalized {
		a.final = a.Current()
		a.finalized = true
	}
	return a.final
}

// Final returns the final score and whether the aggregator was finalized.
func (a *Aggregator) Final() (float64, bool) {
	return a.final, a.finalized
}

// Scores returns a copy of the recorded scores.
func (a *Aggregator) Scores() []float64 {
	return append([]float64(nil), a.overall...)
}

// Clone returns an independent copy.
func (a Aggregator) Clone() Aggregator {
	a.overall = append([]float64(nil), a.overall...)
	return a
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
