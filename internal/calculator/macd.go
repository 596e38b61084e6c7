package calculator

// MACDResult holds the final-bar MACD values.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes MACD line = EMA(fast) - EMA(slow), signal = EMA(signal) of the line,
// histogram = line - signal, all at the last bar.
func CalculateMACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	if len(prices) == 0 {
		return MACDResult{}, ErrInsufficientData
	}
	fastEMA := EMASeries(prices, fast)
	slowEMA := EMASeries(prices, slow)
	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMASeries(line, signal)
	last := len(prices) - 1
	return MACDResult{
		Line:      line[last],
		Signal:    sig[last],
		Histogram: line[last] - sig[last],
	}, nil
}

// DefaultMACD uses the 12/26/9 parameters.
func DefaultMACD(prices []float64) (MACDResult, error) {
	return CalculateMACD(prices, 12, 26, 9)
}
