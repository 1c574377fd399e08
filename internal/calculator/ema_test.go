package calculator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateEMA_ShortSeriesDefaultsToNeutral(t *testing.T) {
	closes := []float64{2030.5, 2031.2, 2029.8}
	out := CalculateEMA(closes, 5)
	if len(out) != len(closes) {
		t.Fatalf("expected length %d, got %d", len(closes), len(out))
	}
	for i, v := range out {
		if v != NeutralValue {
			t.Errorf("index %d: expected neutral %v, got %v", i, NeutralValue, v)
		}
	}
}

func TestCalculateEMA_SeedAndSmoothing(t *testing.T) {
	closes := []float64{10, 12, 14, 16, 18}
	period := 3
	out := CalculateEMA(closes, period)

	// Before the seed index the raw close passes through.
	if !almostEqual(out[0], 10) || !almostEqual(out[1], 12) {
		t.Errorf("expected raw closes before seed, got %v", out[:2])
	}
	// Seed = SMA of first 3 closes.
	if !almostEqual(out[2], 12) {
		t.Errorf("expected seed 12, got %v", out[2])
	}
	// k = 2/(3+1) = 0.5
	want3 := 16*0.5 + 12*0.5
	if !almostEqual(out[3], want3) {
		t.Errorf("expected %v at index 3, got %v", want3, out[3])
	}
	want4 := 18*0.5 + want3*0.5
	if !almostEqual(out[4], want4) {
		t.Errorf("expected %v at index 4, got %v", want4, out[4])
	}
}

func TestCalculateEMA_ExactPeriodLength(t *testing.T) {
	closes := []float64{1, 2, 3}
	out := CalculateEMA(closes, 3)
	if !almostEqual(out[2], 2) {
		t.Errorf("expected SMA seed 2 at last index, got %v", out[2])
	}
}
