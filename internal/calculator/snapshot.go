package calculator

import (
	"fmt"

	"MarketPulse/internal/model"
)

// Standard lookback windows.
const (
	ShortWindow  = 5
	MediumWindow = 20
	LongWindow   = 60
	RSIPeriod    = 14
	VolumePeriod = 20
	LevelWindow  = 20
)

// Snapshot computes the final-bar indicator set. longWindow is the SMA window used for the
// long moving average; it must not exceed the number of bars.
func Snapshot(bars []model.OHLCV, longWindow int) (model.IndicatorSnapshot, error) {
	var snap model.IndicatorSnapshot
	if len(bars) < MediumWindow {
		return snap, fmt.Errorf("%d bars, need %d: %w", len(bars), MediumWindow, ErrInsufficientData)
	}
	closes := model.Closes(bars)
	n := len(closes)

	snap.CurrentPrice = closes[n-1]
	snap.PrevClose = closes[n-2]
	snap.PriceChange = snap.CurrentPrice - snap.PrevClose
	if snap.PrevClose != 0 {
		snap.PriceChangePct = snap.PriceChange / snap.PrevClose * 100
	}

	var err error
	if snap.SMA5, err = CalculateSMA(closes, ShortWindow); err != nil {
		return snap, fmt.Errorf("sma5: %w", err)
	}
	if snap.SMA20, err = CalculateSMA(closes, MediumWindow); err != nil {
		return snap, fmt.Errorf("sma20: %w", err)
	}
	if snap.SMA60, err = CalculateSMA(closes, longWindow); err != nil {
		return snap, fmt.Errorf("sma%d: %w", longWindow, err)
	}
	if snap.RSI, err = CalculateRSI(closes, RSIPeriod); err != nil {
		return snap, fmt.Errorf("rsi: %w", err)
	}
	macd, err := DefaultMACD(closes)
	if err != nil {
		return snap, fmt.Errorf("macd: %w", err)
	}
	snap.MACD, snap.MACDSignal, snap.MACDHistogram = macd.Line, macd.Signal, macd.Histogram

	if snap.Support, snap.Resistance, err = CalculateSupportResistance(bars, LevelWindow); err != nil {
		return snap, fmt.Errorf("support/resistance: %w", err)
	}
	snap.VolumeRatio = CalculateVolumeRatio(bars, VolumePeriod)
	return snap, nil
}
