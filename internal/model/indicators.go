package model

// IndicatorSnapshot holds the most recent bar's indicator values.
// It is recomputed on every analysis call and never cached.
type IndicatorSnapshot struct {
	CurrentPrice   float64
	PrevClose      float64
	PriceChange    float64
	PriceChangePct float64
	SMA5           float64
	SMA20          float64
	SMA60          float64
	RSI            float64
	MACD           float64
	MACDSignal     float64
	MACDHistogram  float64
	VolumeRatio    float64
	Support        float64
	Resistance     float64
}

// PivotLevels are classic floor-trader pivots from one bar's high/low/close.
type PivotLevels struct {
	Pivot float64
	R1    float64
	R2    float64
	R3    float64
	S1    float64
	S2    float64
	S3    float64
}

// FibonacciLevels are retracement (uptrend) or rebound (downtrend) levels over a lookback window.
// Ext1272 and Ext1618 are only set in an uptrend.
type FibonacciLevels struct {
	Uptrend bool
	L0      float64
	L236    float64
	L382    float64
	L500    float64
	L618    float64
	L786    float64
	L1000   float64
	Ext1272 float64
	Ext1618 float64
}
