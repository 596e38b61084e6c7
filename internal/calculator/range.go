package calculator

import (
	"errors"

	talib "github.com/markcheno/go-talib"

	"MarketPulse/internal/model"
)

// CalculateSupportResistance returns the lowest low and highest high of the trailing
// `lookback` bars (or all bars when fewer exist or lookback is not positive).
func CalculateSupportResistance(bars []model.OHLCV, lookback int) (support, resistance float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := len(bars) - lookback
	if start < 0 || lookback <= 0 {
		start = 0
	}
	window := bars[start:]
	if len(window) == 1 {
		return window[0].Low, window[0].High, nil
	}
	lows := make([]float64, len(window))
	highs := make([]float64, len(window))
	for i, b := range window {
		lows[i] = b.Low
		highs[i] = b.High
	}
	// talib fills the trailing slot once a full window has been seen.
	support = talib.Min(lows, len(window))[len(window)-1]
	resistance = talib.Max(highs, len(window))[len(window)-1]
	return support, resistance, nil
}

// CalculateVolumeRatio divides the latest volume by the mean volume of the trailing period.
// Returns 1.0 when fewer than `period` bars exist or the mean is zero.
func CalculateVolumeRatio(bars []model.OHLCV, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 1.0
	}
	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Volume
	}
	avg := sum / float64(period)
	if avg <= 0 {
		return 1.0
	}
	return bars[len(bars)-1].Volume / avg
}
