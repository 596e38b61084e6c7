package strategy

import "math"

// Trend score contributions. Each factor is bounded on its own before the
// total is clamped to [-100, 100].

// scoreMAAlignment rewards a full moving-average stack (±30), otherwise the
// side of SMA20 the price sits on (±15).
func scoreMAAlignment(price, sma5, sma20, sma60 float64) int {
	switch {
	case price > sma5 && sma5 > sma20 && sma20 > sma60:
		return 30
	case price < sma5 && sma5 < sma20 && sma20 < sma60:
		return -30
	case price > sma20:
		return 15
	case price < sma20:
		return -15
	default:
		return 0
	}
}

// scoreRSI buckets RSI into ±15 / ±10. Exactly 50 contributes nothing.
func scoreRSI(rsi float64) int {
	switch {
	case rsi > 70:
		return 15
	case rsi > 50:
		return 10
	case rsi < 30:
		return -15
	case rsi < 50:
		return -10
	default:
		return 0
	}
}

// scoreMACD is the histogram ×100 truncated toward zero, capped at ±25.
func scoreMACD(histogram float64) int {
	return truncClamp(histogram*100, 25)
}

// scorePriceChange is the percent change ×5 truncated toward zero, capped at ±20.
func scorePriceChange(changePct float64) int {
	return truncClamp(changePct*5, 20)
}

// truncClamp clamps before converting so out-of-range floats never reach int().
func truncClamp(v, limit float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-limit, math.Min(limit, v)))
}

// Strength score terms, on top of a base of 50.

func strengthPriceChange(changePct float64) float64 {
	return math.Max(-20, math.Min(20, changePct*4))
}

func strengthVolume(volumeRatio float64) float64 {
	if volumeRatio > 1 {
		return math.Min(15, (volumeRatio-1)*10)
	}
	return 0
}

func strengthRSI(rsi float64) float64 {
	switch {
	case rsi >= 40 && rsi <= 70:
		return 10
	case rsi > 70:
		return 5
	default:
		return -5
	}
}

func strengthPosition(price, sma20 float64) float64 {
	if price > sma20 {
		return 10
	}
	return -5
}
