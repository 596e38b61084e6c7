package calculator

import (
	"errors"

	talib "github.com/markcheno/go-talib"
)

// ErrInsufficientData is returned when a series is shorter than the required lookback.
var ErrInsufficientData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the last `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sma := talib.Sma(prices[len(prices)-period:], period)
	return sma[len(sma)-1], nil
}

// EMASeries returns the exponentially weighted average of every prefix of prices,
// with smoothing 2/(period+1), seeded by the first price.
func EMASeries(prices []float64, period int) []float64 {
	if len(prices) == 0 || period <= 0 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}

// CalculateEMA returns the last value of EMASeries.
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) == 0 {
		return 0, ErrInsufficientData
	}
	s := EMASeries(prices, period)
	return s[len(s)-1], nil
}
