package predictor

import (
	"fmt"
	"strings"

	"MarketPulse/internal/model"
)

const (
	strongSectorScore = 60
	weakSectorScore   = 40
)

// Outlook combines the market's primary index analysis and its sector
// analyses into a qualitative outlook. index may be nil.
func Outlook(marketName string, index *model.IndexAnalysis, sectors []model.SectorAnalysis) model.MarketOutlook {
	var bullish, bearish, observations []string

	if index != nil {
		switch {
		case index.Trend.Label.IsBullish():
			bullish = append(bullish, fmt.Sprintf("%s trend is %s", index.Name, index.Trend.Label.Text()))
		case index.Trend.Label.IsBearish():
			bearish = append(bearish, fmt.Sprintf("%s trend is %s", index.Name, index.Trend.Label.Text()))
		}
		switch {
		case index.RSI > 70:
			bearish = append(bearish, "index RSI overheated")
		case index.RSI < 30:
			bullish = append(bullish, "index RSI oversold")
		}
		observations = append(observations,
			fmt.Sprintf("index closed at %.2f, %+.2f%%", index.CurrentPrice, index.PriceChangePct))
	}

	if len(sectors) > 0 {
		var strong []string
		weak := 0
		for _, s := range sectors {
			if s.StrengthScore >= strongSectorScore {
				strong = append(strong, s.Name)
			}
			if s.StrengthScore <= weakSectorScore {
				weak++
			}
		}
		if 2*len(strong) > len(sectors) {
			bullish = append(bullish, fmt.Sprintf("%d sectors showing strength", len(strong)))
		}
		if 2*weak > len(sectors) {
			bearish = append(bearish, fmt.Sprintf("%d sectors weak", weak))
		}
		if len(strong) > 0 {
			if len(strong) > 3 {
				strong = strong[:3]
			}
			observations = append(observations, "strong sectors: "+strings.Join(strong, ", "))
		}
	}

	dir, conf, strategy, risk := OutlookDirection(len(bullish), len(bearish))
	return model.MarketOutlook{
		MarketName:          marketName,
		OverallDirection:    dir,
		Confidence:          conf,
		KeyObservations:     observations,
		BullishFactors:      bullish,
		BearishFactors:      bearish,
		RecommendedStrategy: strategy,
		RiskLevel:           risk,
	}
}

// OutlookDirection maps bullish and bearish factor counts to a direction,
// confidence, recommended strategy and risk level.
func OutlookDirection(b, r int) (model.Direction, model.Confidence, string, string) {
	switch {
	case b >= r+2:
		return model.DirStrongUp, model.ConfidenceHigh, "aggressive accumulation", "low"
	case b > r:
		return model.DirUp, model.ConfidenceMedium, "accumulate on dips", "medium-low"
	case r >= b+2:
		return model.DirStrongDown, model.ConfidenceHigh, "defensive/stand aside", "high"
	case r > b:
		return model.DirDown, model.ConfidenceMedium, "cautious, reduce exposure", "medium-high"
	default:
		return model.DirNeutral, model.ConfidenceLow, "range-trade", "medium"
	}
}
