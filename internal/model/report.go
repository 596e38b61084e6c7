package model

import "time"

// MarketReport is everything one market run produced. Quick runs carry
// indices only.
type MarketReport struct {
	MarketKey   string
	MarketName  string
	GeneratedAt time.Time
	Quick       bool
	Indices     []IndexAnalysis
	Outlook     *MarketOutlook
	Sectors     []SectorAnalysis
	TopStocks   []StockAnalysis
	BuySignals  []StockAnalysis
	Predictions []PricePrediction
	Discovered  []StockAnalysis
}
