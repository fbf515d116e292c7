package indicator

// MACD returns the difference of the fast and slow EMAs of the
// forward-filled values, and the signal EMA of that difference. Each EMA
// is undefined until its span has been observed.
func MACD(values []float64, fast, slow, signal int) (macd, sig []float64) {
	filled := ForwardFill(values)
	fastEMA := EMAStrict(filled, fast)
	slowEMA := EMAStrict(filled, slow)

	macd = make([]float64, len(filled))
	for i := range filled {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig = EMAStrict(macd, signal)
	return macd, sig
}
