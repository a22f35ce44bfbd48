package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{1.0, 2.5, 3.0}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.5) > 1e-12 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float32{1}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float32{1, 2}, []float32{1, 2.0000001}, 1e-6)
	RequireFinite(t, []float32{0, 1, -1})
	RequireSilent(t, make([]float32, 4))
}
