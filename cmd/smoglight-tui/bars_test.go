package main

import (
	"math"
	"testing"
)

func TestScaledBarFraction_Direct(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{0, 0},
		{50, 0.5},
		{100, 1},
		{150, 1}, // clamped
		{-10, 0}, // clamped
	}
	for _, tt := range tests {
		if got := scaledBarFraction(tt.value, true); got != tt.want {
			t.Errorf("scaledBarFraction(%v, direct) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestScaledBarFraction_Saturating(t *testing.T) {
	if got := scaledBarFraction(0, false); got != 0 {
		t.Errorf("scaledBarFraction(0) = %v, want 0", got)
	}

	// 40 units is one scale constant: 1 - 1/e.
	want := 1.0 - math.Exp(-1)
	if got := scaledBarFraction(40, false); math.Abs(got-want) > 1e-12 {
		t.Errorf("scaledBarFraction(40) = %v, want %v", got, want)
	}

	// Monotonic and bounded below 1.
	prev := -1.0
	for v := 0.0; v <= 300; v += 10 {
		got := scaledBarFraction(v, false)
		if got <= prev {
			t.Fatalf("scale not strictly increasing at %v", v)
		}
		if got >= 1 {
			t.Fatalf("scale reached 1 at %v", v)
		}
		prev = got
	}
}
