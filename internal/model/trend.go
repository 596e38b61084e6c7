package model

// TrendLabel is the discrete bucket of a trend or sector strength score.
type TrendLabel int

const (
	Neutral TrendLabel = iota
	StrongBullish
	Bullish
	Bearish
	StrongBearish
)

func (t TrendLabel) String() string {
	switch t {
	case StrongBullish:
		return "STRONG_BULLISH"
	case Bullish:
		return "BULLISH"
	case Bearish:
		return "BEARISH"
	case StrongBearish:
		return "STRONG_BEARISH"
	default:
		return "NEUTRAL"
	}
}

// Text is the human-readable form used in notes and reports.
func (t TrendLabel) Text() string {
	switch t {
	case StrongBullish:
		return "strong bullish"
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	case StrongBearish:
		return "strong bearish"
	default:
		return "consolidating"
	}
}

func (t TrendLabel) IsBullish() bool { return t == StrongBullish || t == Bullish }
func (t TrendLabel) IsBearish() bool { return t == StrongBearish || t == Bearish }

// TrendResult is a bounded trend score in [-100, 100] and its label.
type TrendResult struct {
	Score int
	Label TrendLabel
}

// Direction is the predicted or outlook direction.
type Direction int

const (
	DirNeutral Direction = iota
	DirStrongUp
	DirUp
	DirDown
	DirStrongDown
)

func (d Direction) String() string {
	switch d {
	case DirStrongUp:
		return "STRONG_UP"
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirStrongDown:
		return "STRONG_DOWN"
	default:
		return "NEUTRAL"
	}
}

// Text is the human-readable form used in reports.
func (d Direction) Text() string {
	switch d {
	case DirStrongUp:
		return "strong rally"
	case DirUp:
		return "leaning up"
	case DirDown:
		return "leaning down"
	case DirStrongDown:
		return "strong decline"
	default:
		return "range-bound"
	}
}

func (d Direction) IsUp() bool   { return d == DirStrongUp || d == DirUp }
func (d Direction) IsDown() bool { return d == DirStrongDown || d == DirDown }

// Confidence grades a prediction or outlook.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
