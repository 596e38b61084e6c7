package predictor

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/model"
)

func barsFromCloses(closes []float64) []model.OHLCV {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: c, High: c * 1.01, Low: c * 0.99, Close: c, Volume: 1000}
	}
	return bars
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestPredict_RisingSeries(t *testing.T) {
	p, err := Predict("UP", "Up Corp", barsFromCloses(linear(90, 50, 0.5)))
	require.NoError(t, err)

	assert.Equal(t, model.DirStrongUp, p.Direction)
	assert.Equal(t, model.ConfidenceHigh, p.Confidence)
	assert.InDelta(t, 4.0, p.Score, 1e-9)
	assert.Len(t, p.KeyFactors, 5)
	assert.Equal(t, "price above rising averages, bullish alignment", p.KeyFactors[0])
	assert.Contains(t, p.RiskWarning, "severe overbought")
	assert.Equal(t, TimeHorizon, p.TimeHorizon)

	assert.LessOrEqual(t, p.TargetPriceLow, p.CurrentPrice)
	assert.GreaterOrEqual(t, p.TargetPriceHigh, p.TargetPriceLow)
	assert.Equal(t, math.Round(p.TargetPriceHigh*100)/100, p.TargetPriceHigh)

	require.Len(t, p.SupportLevels, 3)
	require.Len(t, p.ResistanceLevels, 3)
	assert.IsNonDecreasing(t, p.SupportLevels)
	assert.IsNonIncreasing(t, p.ResistanceLevels)
}

func TestPredict_FallingSeries(t *testing.T) {
	p, err := Predict("DN", "Down Corp", barsFromCloses(linear(90, 100, -0.5)))
	require.NoError(t, err)
	assert.Equal(t, model.DirStrongDown, p.Direction)
	assert.InDelta(t, -4.0, p.Score, 1e-9)
	assert.Contains(t, p.RiskWarning, "severe oversold")
}

func TestPredict_InsufficientData(t *testing.T) {
	_, err := Predict("X", "X", barsFromCloses(linear(59, 10, 0.1)))
	assert.ErrorIs(t, err, calculator.ErrInsufficientData)
}

func TestPredictStock_FallsBackToSymbolName(t *testing.T) {
	mock := collector.NewMockFetcher()
	mock.Bars["AAPL"] = barsFromCloses(linear(120, 150, 0.2))
	p, err := New(mock, "").PredictStock(context.Background(), "AAPL", "")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", p.Name)
}

func TestDetectPatterns_GoldenCrossAndBreakout(t *testing.T) {
	closes := linear(60, 100, 0)
	for i := 55; i < 59; i++ {
		closes[i] = 98
	}
	closes[59] = 120

	got := DetectPatterns(barsFromCloses(closes))
	names := patternNames(got)
	assert.Equal(t, []string{PatternGoldenCross, PatternBreakout}, names)
	assert.True(t, got[0].Bullish)
}

func TestDetectPatterns_DeathCrossAndBreakdown(t *testing.T) {
	closes := linear(60, 100, 0)
	for i := 55; i < 59; i++ {
		closes[i] = 102
	}
	closes[59] = 80

	got := DetectPatterns(barsFromCloses(closes))
	assert.Equal(t, []string{PatternDeathCross, PatternBreakdown}, patternNames(got))
	assert.False(t, got[0].Bullish)
}

func TestDetectPatterns_Streak(t *testing.T) {
	// Range-bound series ending with four up days of five.
	closes := []float64{}
	for i := 0; i < 55; i++ {
		closes = append(closes, 100+5*math.Sin(float64(i)))
	}
	last := closes[len(closes)-1]
	closes = append(closes, last+0.1, last+0.2, last+0.1, last+0.3, last+0.4)

	got := DetectPatterns(barsFromCloses(closes))
	assert.Contains(t, patternNames(got), PatternUpStreak)
}

func TestTargetBand(t *testing.T) {
	pivots := model.PivotLevels{R1: 105, R2: 110, S1: 95, S2: 90}

	low, high := targetBand(100, model.DirNeutral, math.Sqrt(52)*10, pivots) // move = 10
	assert.InDelta(t, 90.0, low, 1e-9)
	assert.InDelta(t, 110.0, high, 1e-9)

	low, high = targetBand(100, model.DirUp, math.Sqrt(52)*10, pivots)
	assert.InDelta(t, 95.0, low, 1e-9, "capped by S1")
	assert.InDelta(t, 110.0, high, 1e-9, "capped by R2")

	low, high = targetBand(100, model.DirStrongDown, math.Sqrt(52)*2, pivots) // move = 2
	assert.InDelta(t, 97.0, low, 1e-9)
	assert.InDelta(t, 101.0, high, 1e-9)
}

func TestRiskWarning(t *testing.T) {
	assert.Equal(t, "moderate risk", riskWarning(50, 10, model.DirUp))
	assert.Equal(t, "⚠️ high volatility; severe overbought", riskWarning(80, 45, model.DirUp))
	assert.Equal(t, "⚠️ elevated volatility; direction unclear, observe", riskWarning(50, 30, model.DirNeutral))
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, model.ConfidenceHigh, confidenceFor(3, 20))
	assert.Equal(t, model.ConfidenceMedium, confidenceFor(3, 35), "volatile markets cap confidence")
	assert.Equal(t, model.ConfidenceMedium, confidenceFor(-2, 10))
	assert.Equal(t, model.ConfidenceLow, confidenceFor(1.5, 10))
}

func TestOutlookDirection(t *testing.T) {
	tests := []struct {
		b, r     int
		dir      model.Direction
		conf     model.Confidence
		strategy string
		risk     string
	}{
		{3, 0, model.DirStrongUp, model.ConfidenceHigh, "aggressive accumulation", "low"},
		{2, 1, model.DirUp, model.ConfidenceMedium, "accumulate on dips", "medium-low"},
		{1, 1, model.DirNeutral, model.ConfidenceLow, "range-trade", "medium"},
		{1, 2, model.DirDown, model.ConfidenceMedium, "cautious, reduce exposure", "medium-high"},
		{0, 2, model.DirStrongDown, model.ConfidenceHigh, "defensive/stand aside", "high"},
	}
	for _, tt := range tests {
		dir, conf, strategy, risk := OutlookDirection(tt.b, tt.r)
		assert.Equal(t, tt.dir, dir, "b=%d r=%d", tt.b, tt.r)
		assert.Equal(t, tt.conf, conf)
		assert.Equal(t, tt.strategy, strategy)
		assert.Equal(t, tt.risk, risk)
	}
}

func TestOutlook_ThreeBullishFactors(t *testing.T) {
	index := &model.IndexAnalysis{
		Name:              "TAIEX",
		IndicatorSnapshot: model.IndicatorSnapshot{CurrentPrice: 21000, PriceChangePct: 1.2, RSI: 28},
		Trend:             model.TrendResult{Score: 30, Label: model.Bullish},
	}
	sectors := []model.SectorAnalysis{
		{Name: "Semis", StrengthScore: 72},
		{Name: "Shipping", StrengthScore: 65},
		{Name: "Finance", StrengthScore: 35},
	}
	o := Outlook("Taiwan", index, sectors)
	assert.Len(t, o.BullishFactors, 3)
	assert.Empty(t, o.BearishFactors)
	assert.Equal(t, model.DirStrongUp, o.OverallDirection)
	assert.Equal(t, model.ConfidenceHigh, o.Confidence)
	assert.Contains(t, o.KeyObservations, "strong sectors: Semis, Shipping")
	assert.Contains(t, o.KeyObservations, "index closed at 21000.00, +1.20%")
}

func TestOutlook_BalancedIsNeutral(t *testing.T) {
	index := &model.IndexAnalysis{
		Name:              "S&P 500",
		IndicatorSnapshot: model.IndicatorSnapshot{RSI: 75},
		Trend:             model.TrendResult{Score: 25, Label: model.Bullish},
	}
	o := Outlook("US", index, nil)
	assert.Equal(t, []string{"S&P 500 trend is bullish"}, o.BullishFactors)
	assert.Equal(t, []string{"index RSI overheated"}, o.BearishFactors)
	assert.Equal(t, model.DirNeutral, o.OverallDirection)
	assert.Equal(t, model.ConfidenceLow, o.Confidence)

	empty := Outlook("Nowhere", nil, nil)
	assert.Equal(t, model.DirNeutral, empty.OverallDirection)
	assert.Empty(t, empty.KeyObservations)
}

func patternNames(ps []model.PatternSignal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Pattern
	}
	return out
}
