package ai

import (
	"math"
	"testing"
)

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, expect float64
	}{
		{in: 0, expect: 1},
		{in: -3, expect: 1},
		{in: 11, expect: 10},
		{in: 7.5, expect: 7.5},
		{in: math.NaN(), expect: 1},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.expect {
			t.Fatalf("ClampScore(%v) = %v, want %v", tt.in, got, tt.expect)
		}
	}
}

func TestRubricClamp(t *testing.T) {
	t.Parallel()

	r := Rubric{TechnicalAccuracy: 12, Completeness: 0, Clarity: 5, Depth: -1, Practicality: 10, Overall: 42}
	r.Clamp()
	if r.TechnicalAccuracy != 10 || r.Completeness != 1 || r.Clarity != 5 || r.Depth != 1 || r.Practicality != 10 || r.Overall != 10 {
		t.Fatalf("unexpected clamped rubric: %+v", r)
	}

	u := UniformRubric(7)
	if u.Overall != 7 || u.Depth != 7 {
		t.Fatalf("unexpected uniform rubric: %+v", u)
	}
}
