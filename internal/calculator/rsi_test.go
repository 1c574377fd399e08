package calculator

import "testing"

func TestCalculateRSI_ShortSeriesDefaultsToNeutral(t *testing.T) {
	closes := []float64{10, 11, 12}
	out := CalculateRSI(closes, DefaultRSIPeriod)
	for i, v := range out {
		if v != NeutralValue {
			t.Errorf("index %d: expected %v, got %v", i, NeutralValue, v)
		}
	}
}

func TestCalculateRSI_StrictlyIncreasingWindow(t *testing.T) {
	// 21 closes, 10..30: first 14 entries neutral. The trailing windows
	// contain no losses, so rs caps at 100 and every value is 100-100/101.
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = float64(10 + i)
	}
	out := CalculateRSI(closes, DefaultRSIPeriod)
	if len(out) != 21 {
		t.Fatalf("expected length 21, got %d", len(out))
	}
	for i := 0; i < DefaultRSIPeriod; i++ {
		if out[i] != NeutralValue {
			t.Errorf("index %d: expected %v, got %v", i, NeutralValue, out[i])
		}
	}
	for i := DefaultRSIPeriod; i < len(out); i++ {
		want := 100.0 - 100.0/(1.0+100.0)
		if !almostEqual(out[i], want) {
			t.Errorf("index %d: expected %v, got %v", i, want, out[i])
		}
	}
}

func TestCalculateRSI_Deterministic(t *testing.T) {
	closes := []float64{
		2030, 2032, 2031, 2035, 2033, 2036, 2038, 2034,
		2037, 2040, 2039, 2042, 2041, 2045, 2043, 2047,
		2046, 2050, 2048, 2052,
	}
	first := CalculateRSI(closes, DefaultRSIPeriod)
	second := CalculateRSI(closes, DefaultRSIPeriod)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("index %d: %v != %v", i, first[i], second[i])
		}
	}
}

func TestCalculateRSI_Bounded(t *testing.T) {
	closes := []float64{
		100, 98, 101, 97, 103, 96, 105, 95, 107, 94,
		109, 93, 111, 92, 113, 91, 115, 90, 117, 89,
	}
	out := CalculateRSI(closes, DefaultRSIPeriod)
	for i, v := range out {
		if v < 0 || v > 100 {
			t.Errorf("index %d: RSI %v out of [0,100]", i, v)
		}
	}
}
