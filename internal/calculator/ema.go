package calculator

// NeutralValue is returned for every index when a series is too short for
// the requested indicator. Callers must treat it as "indicator unavailable".
const NeutralValue = 50.0

// CalculateEMA computes an exponential moving average series over closes.
// The output has the same length as the input. Indices before period-1 carry
// the raw close (no smoothing available yet), index period-1 is seeded with
// the simple average of the first period closes, and later indices apply the
// standard smoothing factor k = 2/(period+1).
func CalculateEMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if period <= 0 || len(closes) < period {
		for i := range out {
			out[i] = NeutralValue
		}
		return out
	}

	k := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
		if i < period-1 {
			out[i] = closes[i]
		}
	}
	out[period-1] = sum / float64(period)

	for i := period; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1.0-k)
	}
	return out
}
