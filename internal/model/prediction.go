package model

// PatternSignal is one detected price-action pattern.
type PatternSignal struct {
	Pattern     string
	Bullish     bool
	Description string
}

// PricePrediction is the directional outlook for a single instrument.
type PricePrediction struct {
	Symbol           string
	Name             string
	CurrentPrice     float64
	Direction        Direction
	Confidence       Confidence
	Score            float64
	Volatility       float64
	TargetPriceLow   float64
	TargetPriceHigh  float64
	SupportLevels    []float64 // ascending, at most 3
	ResistanceLevels []float64 // descending, at most 3
	KeyFactors       []string  // at most 5, evaluation order
	Patterns         []PatternSignal
	RiskWarning      string
	TimeHorizon      string
}

// MarketOutlook is the qualitative outlook of one market.
type MarketOutlook struct {
	MarketName          string
	OverallDirection    Direction
	Confidence          Confidence
	KeyObservations     []string
	BullishFactors      []string
	BearishFactors      []string
	RecommendedStrategy string
	RiskLevel           string
}
