package predictor

import (
	"fmt"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/model"
)

// Pattern names.
const (
	PatternGoldenCross = "golden cross"
	PatternDeathCross  = "death cross"
	PatternBreakout    = "breakout"
	PatternBreakdown   = "breakdown"
	PatternUpStreak    = "up streak"
	PatternDownStreak  = "down streak"
)

const (
	breakoutWindow = 20
	streakWindow   = 5
	streakMinDays  = 4
)

// DetectPatterns looks for an SMA5/SMA20 crossover on the last bar, a
// breakout or breakdown against the 20-bar range, and a 5-session streak.
func DetectPatterns(bars []model.OHLCV) []model.PatternSignal {
	var out []model.PatternSignal
	closes := model.Closes(bars)
	n := len(closes)

	if n > calculator.MediumWindow {
		prev, errPrev := smaDiff(closes[:n-1])
		curr, errCurr := smaDiff(closes)
		if errPrev == nil && errCurr == nil {
			switch {
			case prev < 0 && curr > 0:
				out = append(out, model.PatternSignal{Pattern: PatternGoldenCross, Bullish: true,
					Description: "SMA5 crossed above SMA20, short-term bullish"})
			case prev > 0 && curr < 0:
				out = append(out, model.PatternSignal{Pattern: PatternDeathCross,
					Description: "SMA5 crossed below SMA20, short-term bearish"})
			}
		}
	}

	if support, resistance, err := calculator.CalculateSupportResistance(bars, breakoutWindow); err == nil {
		price := closes[n-1]
		switch {
		case price >= resistance*0.98:
			out = append(out, model.PatternSignal{Pattern: PatternBreakout, Bullish: true,
				Description: "price breaking out at the 20-day high"})
		case price <= support*1.02:
			out = append(out, model.PatternSignal{Pattern: PatternBreakdown,
				Description: "price breaking down at the 20-day low"})
		}
	}

	returns := calculator.DailyReturns(closes)
	if len(returns) > streakWindow {
		returns = returns[len(returns)-streakWindow:]
	}
	up, down := 0, 0
	for _, r := range returns {
		switch {
		case r > 0:
			up++
		case r < 0:
			down++
		}
	}
	switch {
	case up >= streakMinDays:
		out = append(out, model.PatternSignal{Pattern: PatternUpStreak, Bullish: true,
			Description: fmt.Sprintf("%d of the last 5 sessions closed up", up)})
	case down >= streakMinDays:
		out = append(out, model.PatternSignal{Pattern: PatternDownStreak,
			Description: fmt.Sprintf("%d of the last 5 sessions closed down", down)})
	}
	return out
}

func smaDiff(closes []float64) (float64, error) {
	fast, err := calculator.CalculateSMA(closes, calculator.ShortWindow)
	if err != nil {
		return 0, err
	}
	slow, err := calculator.CalculateSMA(closes, calculator.MediumWindow)
	if err != nil {
		return 0, err
	}
	return fast - slow, nil
}
