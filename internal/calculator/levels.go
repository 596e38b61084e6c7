package calculator

import (
	"math"

	"MarketPulse/internal/model"
)

// CalculatePivotPoints computes classic pivots from the most recent bar.
func CalculatePivotPoints(bars []model.OHLCV) (model.PivotLevels, error) {
	if len(bars) == 0 {
		return model.PivotLevels{}, ErrInsufficientData
	}
	last := bars[len(bars)-1]
	h, l, c := last.High, last.Low, last.Close
	p := (h + l + c) / 3
	return model.PivotLevels{
		Pivot: p,
		R1:    2*p - l,
		R2:    p + (h - l),
		R3:    h + 2*(p-l),
		S1:    2*p - h,
		S2:    p - (h - l),
		S3:    l - 2*(h-p),
	}, nil
}

// CalculateFibonacciLevels measures the high-low range of the trailing lookback window.
// When the window's last close is above its first close the levels retrace down from the high
// and carry 127.2%/161.8% extensions; otherwise they project up from the low, capped at the high.
func CalculateFibonacciLevels(bars []model.OHLCV, lookback int) (model.FibonacciLevels, error) {
	if len(bars) == 0 || lookback <= 0 {
		return model.FibonacciLevels{}, ErrInsufficientData
	}
	if lookback > len(bars) {
		lookback = len(bars)
	}
	window := bars[len(bars)-lookback:]
	high := math.Inf(-1)
	low := math.Inf(1)
	for _, b := range window {
		high = math.Max(high, b.High)
		low = math.Min(low, b.Low)
	}
	diff := high - low

	if window[len(window)-1].Close > window[0].Close {
		return model.FibonacciLevels{
			Uptrend: true,
			L0:      high,
			L236:    high - diff*0.236,
			L382:    high - diff*0.382,
			L500:    high - diff*0.5,
			L618:    high - diff*0.618,
			L786:    high - diff*0.786,
			L1000:   low,
			Ext1272: high + diff*0.272,
			Ext1618: high + diff*0.618,
		}, nil
	}
	return model.FibonacciLevels{
		L0:    low,
		L236:  low + diff*0.236,
		L382:  low + diff*0.382,
		L500:  low + diff*0.5,
		L618:  low + diff*0.618,
		L786:  low + diff*0.786,
		L1000: high,
	}, nil
}
