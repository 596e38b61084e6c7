package model

// IndexAnalysis is the trend analysis of a market index.
type IndexAnalysis struct {
	Symbol string
	Name   string
	IndicatorSnapshot
	Trend   TrendResult
	Summary string
}

// StockAnalysis is the per-instrument strength result. Immutable once built.
type StockAnalysis struct {
	Symbol         string
	Name           string
	Sector         string
	CurrentPrice   float64
	PriceChangePct float64
	VolumeRatio    float64
	RSI            float64
	TrendScore     int
	StrengthScore  float64
	BuySignal      bool
	Note           string
}

// SectorAnalysis aggregates the stocks of one sector that produced a usable analysis.
type SectorAnalysis struct {
	Name          string
	AvgChangePct  float64
	StrengthScore float64
	Trend         TrendLabel
	TopStocks     []StockAnalysis
	StockCount    int
	BullishCount  int
}
