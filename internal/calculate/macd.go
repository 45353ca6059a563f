package calculate

// MACD computes the moving average convergence/divergence line, its signal
// line and the histogram. The MACD line is EMA(fast) - EMA(slow) over the
// given values, the signal line is EMA(MACD, signalPeriod) and the histogram
// is their difference. All EMAs are seeded at index 0, so the series carry
// no NaN warmup; callers needing a settled value should respect the
// slow+signal history requirement instead.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, hist []float64) {
	fast := EMA(values, fastPeriod)
	slow := EMA(values, slowPeriod)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fast[i] - slow[i]
	}

	signal = EMA(macd, signalPeriod)
	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}
