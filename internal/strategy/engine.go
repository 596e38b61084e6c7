package strategy

import (
	"fmt"
	"math"
	"strings"

	"MarketPulse/internal/model"
)

// Trend score bounds and label thresholds.
const (
	MaxTrendScore = 100
	MinTrendScore = -100

	strongBullishScore = 50
	bullishScore       = 20
	strongBearishScore = -50
	bearishScore       = -20
)

// ClassifyTrend scores the indicator snapshot in [-100, 100] and buckets it.
func ClassifyTrend(s model.IndicatorSnapshot) model.TrendResult {
	score := scoreMAAlignment(s.CurrentPrice, s.SMA5, s.SMA20, s.SMA60) +
		scoreRSI(s.RSI) +
		scoreMACD(s.MACDHistogram) +
		scorePriceChange(s.PriceChangePct)

	if score > MaxTrendScore {
		score = MaxTrendScore
	}
	if score < MinTrendScore {
		score = MinTrendScore
	}
	return model.TrendResult{Score: score, Label: LabelForScore(score)}
}

// LabelForScore buckets a trend score, evaluated top-down.
func LabelForScore(score int) model.TrendLabel {
	switch {
	case score >= strongBullishScore:
		return model.StrongBullish
	case score >= bullishScore:
		return model.Bullish
	case score <= strongBearishScore:
		return model.StrongBearish
	case score <= bearishScore:
		return model.Bearish
	default:
		return model.Neutral
	}
}

// SectorTrend buckets a 0-100 sector strength score.
func SectorTrend(strength float64) model.TrendLabel {
	switch {
	case strength >= 70:
		return model.StrongBullish
	case strength >= 55:
		return model.Bullish
	case strength <= 30:
		return model.StrongBearish
	case strength <= 45:
		return model.Bearish
	default:
		return model.Neutral
	}
}

// StrengthScore is the 0-100 composite momentum score of one instrument.
// Terms are bounded individually; only the total is clamped.
func StrengthScore(s model.IndicatorSnapshot, trendScore int) float64 {
	score := 50.0
	score += strengthPriceChange(s.PriceChangePct)
	score += strengthVolume(s.VolumeRatio)
	score += strengthRSI(s.RSI)
	score += float64(trendScore) * 0.15
	score += strengthPosition(s.CurrentPrice, s.SMA20)
	return math.Max(0, math.Min(100, score))
}

// BuyConditions evaluates the five buy-setup checks in fixed order:
// price above a rising short stack, healthy RSI, positive MACD histogram,
// expanding volume, and a moderate gain.
func BuyConditions(s model.IndicatorSnapshot) [5]bool {
	return [5]bool{
		s.CurrentPrice > s.SMA5 && s.SMA5 > s.SMA20,
		s.RSI >= 40 && s.RSI <= 70,
		s.MACDHistogram > 0,
		s.VolumeRatio > 1.2,
		s.PriceChangePct >= 1 && s.PriceChangePct <= 7,
	}
}

// BuySignal is a majority vote: at least 3 of the 5 conditions hold.
func BuySignal(s model.IndicatorSnapshot) bool {
	n := 0
	for _, ok := range BuyConditions(s) {
		if ok {
			n++
		}
	}
	return n >= 3
}

// StockNote summarizes the notable traits of one stock. Falls back to the
// trend label text when nothing stands out.
func StockNote(s model.IndicatorSnapshot, label model.TrendLabel, buy bool) string {
	var notes []string
	if buy {
		notes = append(notes, "buy setup")
	}

	switch {
	case s.PriceChangePct > 3:
		notes = append(notes, fmt.Sprintf("strong rally +%.1f%%", s.PriceChangePct))
	case s.PriceChangePct > 0:
		notes = append(notes, "mild gain")
	}

	switch {
	case s.VolumeRatio > 2:
		notes = append(notes, fmt.Sprintf("volume surge %.1fx", s.VolumeRatio))
	case s.VolumeRatio > 1.5:
		notes = append(notes, "volume rising")
	}

	switch {
	case s.RSI > 70:
		notes = append(notes, "RSI overheated")
	case s.RSI < 30:
		notes = append(notes, "RSI oversold")
	}

	if len(notes) == 0 {
		return label.Text()
	}
	return strings.Join(notes, " | ")
}

// IndexSummary describes an index's trend, RSI state, MACD momentum and volume.
func IndexSummary(trend model.TrendResult, s model.IndicatorSnapshot) string {
	parts := []string{fmt.Sprintf("trend: %s (score %d)", trend.Label.Text(), trend.Score)}

	switch {
	case s.RSI > 70:
		parts = append(parts, "RSI overbought, pullback risk")
	case s.RSI < 30:
		parts = append(parts, "RSI oversold, rebound possible")
	case s.RSI > 50:
		parts = append(parts, "RSI leaning bullish")
	default:
		parts = append(parts, "RSI leaning bearish")
	}

	if s.MACDHistogram > 0 {
		parts = append(parts, "MACD histogram positive, momentum up")
	} else {
		parts = append(parts, "MACD histogram negative, momentum down")
	}

	switch {
	case s.VolumeRatio > 1.5:
		parts = append(parts, fmt.Sprintf("volume expanded %.1fx", s.VolumeRatio))
	case s.VolumeRatio < 0.7:
		parts = append(parts, "volume contracting")
	}
	return strings.Join(parts, " | ")
}
