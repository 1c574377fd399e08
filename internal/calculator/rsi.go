package calculator

// DefaultRSIPeriod is the standard RSI lookback.
const DefaultRSIPeriod = 14

// CalculateRSI computes a relative strength index series over closes.
// Each output index i >= period is recomputed over the trailing window of
// period+1 closes ending at i, so identical input always yields identical
// output regardless of call history. Indices below period, or every index
// when the series is shorter than period+1, carry the neutral value 50.
func CalculateRSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = NeutralValue
	}
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	for i := period; i < len(closes); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		rs := 100.0 // maximal strength when there are no losses in the window
		if avgLoss != 0 {
			rs = avgGain / avgLoss
		}
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}
