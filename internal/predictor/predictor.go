package predictor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/model"
)

const (
	// MinBars is the shortest series a prediction accepts.
	MinBars = calculator.LongWindow
	// TimeHorizon is the horizon every prediction targets.
	TimeHorizon = "1 week"

	maxKeyFactors = 5
	maxLevels     = 3
	fibLookback   = 60
	volWindow     = 20
	weeksPerYear  = 52
)

// Predictor fetches bars and produces price predictions.
type Predictor struct {
	fetcher  collector.Fetcher
	period   string
	interval string
}

func New(f collector.Fetcher, period string) *Predictor {
	if period == "" {
		period = "6mo"
	}
	return &Predictor{fetcher: f, period: period, interval: "1d"}
}

// PredictStock fetches the symbol's bars and predicts the coming week.
func (p *Predictor) PredictStock(ctx context.Context, symbol, name string) (*model.PricePrediction, error) {
	bars, err := p.fetcher.FetchBars(ctx, symbol, p.period, p.interval)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	if name == "" {
		if n, err := p.fetcher.FetchName(ctx, symbol); err == nil && n != "" {
			name = n
		} else {
			name = symbol
		}
	}
	return Predict(symbol, name, bars)
}

// Predict combines moving averages, RSI, MACD, detected patterns and
// volatility into a directional call with a one-week target band.
func Predict(symbol, name string, bars []model.OHLCV) (*model.PricePrediction, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("predict %s: %d bars, need %d: %w", symbol, len(bars), MinBars, calculator.ErrInsufficientData)
	}
	snap, err := calculator.Snapshot(bars, calculator.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	closes := model.Closes(bars)
	pivots, err := calculator.CalculatePivotPoints(bars)
	if err != nil {
		return nil, fmt.Errorf("predict %s pivots: %w", symbol, err)
	}
	fib, err := calculator.CalculateFibonacciLevels(bars, fibLookback)
	if err != nil {
		return nil, fmt.Errorf("predict %s fibonacci: %w", symbol, err)
	}
	vol, err := calculator.CalculateVolatility(closes, volWindow)
	if err != nil {
		return nil, fmt.Errorf("predict %s volatility: %w", symbol, err)
	}

	patterns := DetectPatterns(bars)
	score, factors := evaluate(snap, patterns)
	dir := directionFor(score)
	low, high := targetBand(snap.CurrentPrice, dir, vol, pivots)

	return &model.PricePrediction{
		Symbol:           symbol,
		Name:             name,
		CurrentPrice:     snap.CurrentPrice,
		Direction:        dir,
		Confidence:       confidenceFor(score, vol),
		Score:            score,
		Volatility:       vol,
		TargetPriceLow:   low,
		TargetPriceHigh:  high,
		SupportLevels:    supportLevels(pivots, fib),
		ResistanceLevels: resistanceLevels(pivots, fib),
		KeyFactors:       factors,
		Patterns:         patterns,
		RiskWarning:      riskWarning(snap.RSI, vol, dir),
		TimeHorizon:      TimeHorizon,
	}, nil
}

// evaluate scores the evidence and returns the first explanations in evaluation order.
func evaluate(s model.IndicatorSnapshot, patterns []model.PatternSignal) (float64, []string) {
	var score float64
	var factors []string

	switch {
	case s.CurrentPrice > s.SMA20 && s.SMA20 > s.SMA60:
		score += 2
		factors = append(factors, "price above rising averages, bullish alignment")
	case s.CurrentPrice < s.SMA20 && s.SMA20 < s.SMA60:
		score -= 2
		factors = append(factors, "price below falling averages, bearish alignment")
	case s.CurrentPrice > s.SMA20:
		score++
		factors = append(factors, "price above the 20-day average")
	default:
		score--
		factors = append(factors, "price below the 20-day average")
	}

	switch {
	case s.RSI > 70:
		score--
		factors = append(factors, fmt.Sprintf("RSI(%.0f) overbought, pullback possible", s.RSI))
	case s.RSI < 30:
		score++
		factors = append(factors, fmt.Sprintf("RSI(%.0f) oversold, rebound possible", s.RSI))
	case s.RSI > 50:
		score += 0.5
		factors = append(factors, fmt.Sprintf("RSI(%.0f) leaning bullish", s.RSI))
	}

	if s.MACDHistogram > 0 {
		score++
		factors = append(factors, "MACD momentum up")
	} else {
		score--
		factors = append(factors, "MACD momentum down")
	}

	for _, p := range patterns {
		if p.Bullish {
			score++
		} else {
			score--
		}
		factors = append(factors, p.Description)
	}

	if len(factors) > maxKeyFactors {
		factors = factors[:maxKeyFactors]
	}
	return score, factors
}

func directionFor(score float64) model.Direction {
	switch {
	case score >= 3:
		return model.DirStrongUp
	case score >= 1:
		return model.DirUp
	case score <= -3:
		return model.DirStrongDown
	case score <= -1:
		return model.DirDown
	default:
		return model.DirNeutral
	}
}

func confidenceFor(score, volatility float64) model.Confidence {
	switch {
	case math.Abs(score) >= 3 && volatility < 30:
		return model.ConfidenceHigh
	case math.Abs(score) >= 2:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// targetBand projects one week of annualized volatility around the price,
// skewed toward the predicted direction and capped by pivot levels.
func targetBand(price float64, dir model.Direction, volatility float64, p model.PivotLevels) (low, high float64) {
	weekly := volatility / math.Sqrt(weeksPerYear)
	move := price * weekly / 100

	switch {
	case dir.IsUp():
		high = math.Min(price+1.5*move, p.R2)
		low = math.Max(price-0.5*move, p.S1)
	case dir.IsDown():
		high = math.Min(price+0.5*move, p.R1)
		low = math.Max(price-1.5*move, p.S2)
	default:
		high = price + move
		low = price - move
	}
	return round2(low), round2(high)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func supportLevels(p model.PivotLevels, fib model.FibonacciLevels) []float64 {
	levels := []float64{p.S1, p.S2, fib.L382, fib.L500}
	sort.Float64s(levels)
	return levels[:maxLevels]
}

func resistanceLevels(p model.PivotLevels, fib model.FibonacciLevels) []float64 {
	levels := []float64{p.R1, p.R2, fib.L382, fib.L500}
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))
	return levels[:maxLevels]
}

func riskWarning(rsi, volatility float64, dir model.Direction) string {
	var warnings []string
	switch {
	case volatility > 40:
		warnings = append(warnings, "high volatility")
	case volatility > 25:
		warnings = append(warnings, "elevated volatility")
	}
	switch {
	case rsi > 75:
		warnings = append(warnings, "severe overbought")
	case rsi < 25:
		warnings = append(warnings, "severe oversold")
	}
	if dir == model.DirNeutral {
		warnings = append(warnings, "direction unclear, observe")
	}
	if len(warnings) == 0 {
		return "moderate risk"
	}
	return "⚠️ " + strings.Join(warnings, "; ")
}
