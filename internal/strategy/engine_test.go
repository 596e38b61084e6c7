package strategy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/model"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name  string
		snap  model.IndicatorSnapshot
		score int
		label model.TrendLabel
	}{
		{
			name: "full bullish stack",
			snap: model.IndicatorSnapshot{
				CurrentPrice: 110, SMA5: 105, SMA20: 100, SMA60: 90,
				RSI: 60, MACDHistogram: 0.123, PriceChangePct: 2.5,
			},
			score: 30 + 10 + 12 + 12,
			label: model.StrongBullish,
		},
		{
			name: "full bearish stack with capped terms",
			snap: model.IndicatorSnapshot{
				CurrentPrice: 80, SMA5: 85, SMA20: 90, SMA60: 100,
				RSI: 25, MACDHistogram: -0.3, PriceChangePct: -5,
			},
			score: -30 - 15 - 25 - 20,
			label: model.StrongBearish,
		},
		{
			name: "flat with sub-unit terms truncated",
			snap: model.IndicatorSnapshot{
				CurrentPrice: 100, SMA5: 100, SMA20: 100, SMA60: 100,
				RSI: 50, MACDHistogram: 0.0099, PriceChangePct: 0.19,
			},
			score: 0,
			label: model.Neutral,
		},
		{
			name: "bullish lower bound",
			snap: model.IndicatorSnapshot{
				CurrentPrice: 101, SMA5: 102, SMA20: 100, SMA60: 100,
				RSI: 55, MACDHistogram: -0.05,
			},
			score: 15 + 10 - 5,
			label: model.Bullish,
		},
		{
			name: "bearish upper bound",
			snap: model.IndicatorSnapshot{
				CurrentPrice: 99, SMA5: 98, SMA20: 100, SMA60: 100,
				RSI: 45, MACDHistogram: 0.05,
			},
			score: -15 - 10 + 5,
			label: model.Bearish,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTrend(tt.snap)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.label, got.Label)
		})
	}
}

func TestScoreMACD_TruncatesTowardZero(t *testing.T) {
	assert.Equal(t, 0, scoreMACD(0.0099))
	assert.Equal(t, 0, scoreMACD(-0.0099))
	assert.Equal(t, -1, scoreMACD(-0.019))
	assert.Equal(t, 25, scoreMACD(1e300))
	assert.Equal(t, -25, scoreMACD(-1e300))
	assert.Equal(t, 12, scorePriceChange(2.5))
	assert.Equal(t, -12, scorePriceChange(-2.5))
}

func TestLabelForScore_Buckets(t *testing.T) {
	cases := map[int]model.TrendLabel{
		100: model.StrongBullish, 50: model.StrongBullish, 49: model.Bullish,
		20: model.Bullish, 19: model.Neutral, 0: model.Neutral, -19: model.Neutral,
		-20: model.Bearish, -49: model.Bearish, -50: model.StrongBearish, -100: model.StrongBearish,
	}
	for score, want := range cases {
		assert.Equal(t, want, LabelForScore(score), "score %d", score)
	}
}

func TestSectorTrend_Buckets(t *testing.T) {
	cases := map[float64]model.TrendLabel{
		70: model.StrongBullish, 69.9: model.Bullish, 55: model.Bullish,
		54.9: model.Neutral, 45.1: model.Neutral, 45: model.Bearish,
		30.1: model.Bearish, 30: model.StrongBearish, 0: model.StrongBearish,
	}
	for strength, want := range cases {
		assert.Equal(t, want, SectorTrend(strength), "strength %.1f", strength)
	}
}

func TestScoresStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		s := model.IndicatorSnapshot{
			CurrentPrice:   rng.Float64() * 200,
			SMA5:           rng.Float64() * 200,
			SMA20:          rng.Float64() * 200,
			SMA60:          rng.Float64() * 200,
			RSI:            rng.Float64() * 100,
			MACDHistogram:  rng.NormFloat64() * 5,
			PriceChangePct: rng.NormFloat64() * 20,
			VolumeRatio:    rng.Float64() * 10,
		}
		tr := ClassifyTrend(s)
		require.GreaterOrEqual(t, tr.Score, MinTrendScore)
		require.LessOrEqual(t, tr.Score, MaxTrendScore)

		strength := StrengthScore(s, tr.Score)
		require.GreaterOrEqual(t, strength, 0.0)
		require.LessOrEqual(t, strength, 100.0)
	}
}

func TestClassifyTrend_RisingSeriesNotBearish(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 90)
	for i := range bars {
		c := 50 + float64(i)*0.5
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	snap, err := calculator.Snapshot(bars, calculator.LongWindow)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.MACDHistogram, 0.0)

	tr := ClassifyTrend(snap)
	assert.False(t, tr.Label.IsBearish(), "got %s", tr.Label)
}

func TestStrengthScore(t *testing.T) {
	t.Run("sums bounded terms", func(t *testing.T) {
		s := model.IndicatorSnapshot{CurrentPrice: 110, SMA20: 100, RSI: 55, VolumeRatio: 1.5, PriceChangePct: 2}
		assert.InDelta(t, 50+8+5+10+6+10, StrengthScore(s, 40), 1e-9)
	})
	t.Run("clamps the total high", func(t *testing.T) {
		s := model.IndicatorSnapshot{CurrentPrice: 110, SMA20: 100, RSI: 60, VolumeRatio: 5, PriceChangePct: 10}
		assert.Equal(t, 100.0, StrengthScore(s, 100))
	})
	t.Run("weak stock", func(t *testing.T) {
		s := model.IndicatorSnapshot{CurrentPrice: 90, SMA20: 100, RSI: 20, VolumeRatio: 0.5, PriceChangePct: -10}
		assert.InDelta(t, 50-20-5-15-5, StrengthScore(s, -100), 1e-9)
	})
	t.Run("overheated RSI", func(t *testing.T) {
		s := model.IndicatorSnapshot{CurrentPrice: 100, SMA20: 100, RSI: 75, VolumeRatio: 1}
		assert.InDelta(t, 50+5-5, StrengthScore(s, 0), 1e-9)
	})
}

func TestBuySignal_AllCombinations(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		on := func(bit int) bool { return mask&(1<<bit) != 0 }
		s := model.IndicatorSnapshot{
			CurrentPrice: 100, SMA5: 105, SMA20: 100,
			RSI: 80, MACDHistogram: -0.5, VolumeRatio: 1.0, PriceChangePct: 10,
		}
		if on(0) {
			s.CurrentPrice, s.SMA5, s.SMA20 = 110, 105, 100
		}
		if on(1) {
			s.RSI = 55
		}
		if on(2) {
			s.MACDHistogram = 0.5
		}
		if on(3) {
			s.VolumeRatio = 1.5
		}
		if on(4) {
			s.PriceChangePct = 3
		}

		count := 0
		for bit := 0; bit < 5; bit++ {
			if on(bit) {
				count++
			}
		}
		conds := BuyConditions(s)
		for bit := 0; bit < 5; bit++ {
			assert.Equal(t, on(bit), conds[bit], "mask %05b condition %d", mask, bit)
		}
		assert.Equal(t, count >= 3, BuySignal(s), "mask %05b", mask)
	}
}

func TestBuyConditions_Boundaries(t *testing.T) {
	s := model.IndicatorSnapshot{RSI: 40, VolumeRatio: 1.2, PriceChangePct: 1}
	c := BuyConditions(s)
	assert.True(t, c[1])
	assert.False(t, c[3])
	assert.True(t, c[4])

	s.RSI, s.PriceChangePct = 70, 7
	c = BuyConditions(s)
	assert.True(t, c[1])
	assert.True(t, c[4])
}

func TestStockNote(t *testing.T) {
	s := model.IndicatorSnapshot{PriceChangePct: 4.31, VolumeRatio: 2.5, RSI: 75}
	assert.Equal(t, "buy setup | strong rally +4.3% | volume surge 2.5x | RSI overheated",
		StockNote(s, model.Bullish, true))

	s = model.IndicatorSnapshot{PriceChangePct: 0.5, VolumeRatio: 1.6, RSI: 25}
	assert.Equal(t, "mild gain | volume rising | RSI oversold", StockNote(s, model.Bearish, false))

	s = model.IndicatorSnapshot{PriceChangePct: -1, VolumeRatio: 1, RSI: 50}
	assert.Equal(t, model.Bearish.Text(), StockNote(s, model.Bearish, false))
}

func TestIndexSummary(t *testing.T) {
	s := model.IndicatorSnapshot{RSI: 72, MACDHistogram: 0.3, VolumeRatio: 1.8}
	got := IndexSummary(model.TrendResult{Score: 55, Label: model.StrongBullish}, s)
	assert.Equal(t,
		"trend: strong bullish (score 55) | RSI overbought, pullback risk | MACD histogram positive, momentum up | volume expanded 1.8x",
		got)

	s = model.IndicatorSnapshot{RSI: 45, MACDHistogram: -0.1, VolumeRatio: 0.5}
	got = IndexSummary(model.TrendResult{Score: -10}, s)
	assert.Contains(t, got, "RSI leaning bearish")
	assert.Contains(t, got, "momentum down")
	assert.Contains(t, got, "volume contracting")
}
