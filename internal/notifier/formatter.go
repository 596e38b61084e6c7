package notifier

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"MarketPulse/internal/model"
)

// WebhookPayload is a Discord webhook message.
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Embed is a Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is one name/value block of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the small text under an embed.
type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

// Rows shown per list embed.
const (
	maxListStocks = 10
	maxSectorRows = 8
)

// Embed colours.
const (
	ColorStrongBullish = 0x00C853
	ColorBullish       = 0x64DD17
	ColorNeutral       = 0x9E9E9E
	ColorBearish       = 0xFF6D00
	ColorStrongBearish = 0xD50000
	ColorInfo          = 0x2979FF
	ColorDiscovery     = 0xAA00FF
)

// TrendColor maps a trend label to its embed colour.
func TrendColor(l model.TrendLabel) int {
	switch l {
	case model.StrongBullish:
		return ColorStrongBullish
	case model.Bullish:
		return ColorBullish
	case model.Bearish:
		return ColorBearish
	case model.StrongBearish:
		return ColorStrongBearish
	default:
		return ColorNeutral
	}
}

// DirectionColor maps a direction to its embed colour.
func DirectionColor(d model.Direction) int {
	switch d {
	case model.DirStrongUp:
		return ColorStrongBullish
	case model.DirUp:
		return ColorBullish
	case model.DirDown:
		return ColorBearish
	case model.DirStrongDown:
		return ColorStrongBearish
	default:
		return ColorNeutral
	}
}

func trendEmoji(l model.TrendLabel) string {
	switch {
	case l.IsBullish():
		return "🟢"
	case l.IsBearish():
		return "🔴"
	default:
		return "⚪"
	}
}

// BuildReportEmbeds lays out a market report: indices, outlook, sector
// ranking, top stocks, buy signals, predictions, then discoveries. Empty
// sections are omitted.
func BuildReportEmbeds(r model.MarketReport) []Embed {
	ts := r.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format(time.RFC3339)
	footer := &EmbedFooter{Text: fmt.Sprintf("MarketPulse · %s · %s", r.MarketName, ts.Format("2006-01-02 15:04"))}

	var embeds []Embed
	for _, idx := range r.Indices {
		embeds = append(embeds, IndexEmbed(idx))
	}
	if r.Outlook != nil {
		embeds = append(embeds, OutlookEmbed(*r.Outlook))
	}
	if len(r.Sectors) > 0 {
		embeds = append(embeds, SectorsEmbed(r.Sectors))
	}
	if len(r.TopStocks) > 0 {
		embeds = append(embeds, StockListEmbed("🏆 Top stocks", r.TopStocks, ColorInfo))
	}
	if len(r.BuySignals) > 0 {
		embeds = append(embeds, StockListEmbed("🎯 Buy signals", r.BuySignals, ColorStrongBullish))
	}
	for _, p := range r.Predictions {
		embeds = append(embeds, PredictionEmbed(p))
	}
	if len(r.Discovered) > 0 {
		embeds = append(embeds, StockListEmbed("🔍 Discovered outside the watchlist", r.Discovered, ColorDiscovery))
	}
	for i := range embeds {
		embeds[i].Timestamp = stamp
		embeds[i].Footer = footer
	}
	return embeds
}

// IndexEmbed renders one index analysis.
func IndexEmbed(a model.IndexAnalysis) Embed {
	return Embed{
		Title:       fmt.Sprintf("%s %s (%s)", trendEmoji(a.Trend.Label), a.Name, a.Symbol),
		Description: truncate(a.Summary, maxDescription),
		Color:       TrendColor(a.Trend.Label),
		Fields: []EmbedField{
			{Name: "Close", Value: fmt.Sprintf("%.2f", a.CurrentPrice), Inline: true},
			{Name: "Change", Value: fmt.Sprintf("%+.2f (%+.2f%%)", a.PriceChange, a.PriceChangePct), Inline: true},
			{Name: "Trend", Value: fmt.Sprintf("%s (%d)", a.Trend.Label.Text(), a.Trend.Score), Inline: true},
			{Name: "RSI", Value: fmt.Sprintf("%.1f", a.RSI), Inline: true},
			{Name: "MACD hist", Value: fmt.Sprintf("%+.3f", a.MACDHistogram), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%.2fx", a.VolumeRatio), Inline: true},
			{Name: "MA 5/20/60", Value: fmt.Sprintf("%.2f / %.2f / %.2f", a.SMA5, a.SMA20, a.SMA60), Inline: false},
			{Name: "Support / Resistance", Value: fmt.Sprintf("%.2f / %.2f", a.Support, a.Resistance), Inline: false},
		},
	}
}

// OutlookEmbed renders a market outlook.
func OutlookEmbed(o model.MarketOutlook) Embed {
	e := Embed{
		Title: fmt.Sprintf("🔭 %s outlook: %s", o.MarketName, o.OverallDirection.Text()),
		Description: truncate(fmt.Sprintf("Confidence **%s** · Risk **%s**\n%s",
			o.Confidence, o.RiskLevel, o.RecommendedStrategy), maxDescription),
		Color: DirectionColor(o.OverallDirection),
	}
	if len(o.KeyObservations) > 0 {
		e.Fields = append(e.Fields, EmbedField{Name: "Observations", Value: bullets(o.KeyObservations)})
	}
	if len(o.BullishFactors) > 0 {
		e.Fields = append(e.Fields, EmbedField{Name: "Bullish", Value: bullets(o.BullishFactors), Inline: true})
	}
	if len(o.BearishFactors) > 0 {
		e.Fields = append(e.Fields, EmbedField{Name: "Bearish", Value: bullets(o.BearishFactors), Inline: true})
	}
	return e
}

// SectorsEmbed renders the leading sectors in the order given, one field each.
func SectorsEmbed(sectors []model.SectorAnalysis) Embed {
	e := Embed{Title: "📊 Sector ranking", Color: TrendColor(sectors[0].Trend)}
	for i, s := range sectors {
		if i == maxSectorRows {
			break
		}
		value := fmt.Sprintf("strength %.1f · avg %+.2f%% · %d/%d bullish",
			s.StrengthScore, s.AvgChangePct, s.BullishCount, s.StockCount)
		if len(s.TopStocks) > 0 {
			value += fmt.Sprintf("\nleader %s (%s)", s.TopStocks[0].Symbol, s.TopStocks[0].Name)
		}
		e.Fields = append(e.Fields, EmbedField{
			Name:  fmt.Sprintf("%d. %s %s %s", i+1, trendEmoji(s.Trend), s.Name, s.Trend.Text()),
			Value: truncate(value, maxFieldValue),
		})
	}
	return e
}

// StockListEmbed renders the first maxListStocks stocks as the embed
// description, noting how many were left out.
func StockListEmbed(title string, stocks []model.StockAnalysis, color int) Embed {
	shown := stocks
	if len(shown) > maxListStocks {
		shown = shown[:maxListStocks]
	}
	lines := make([]string, 0, len(shown)+1)
	for i, s := range shown {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, StockLine(s)))
	}
	if rest := len(stocks) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("… and %d more", rest))
	}
	return Embed{
		Title:       title,
		Description: truncate(strings.Join(lines, "\n"), maxDescription),
		Color:       color,
	}
}

// StockLine is the one-line summary of a stock analysis.
func StockLine(s model.StockAnalysis) string {
	line := fmt.Sprintf("**%s** %s · %.2f (%+.2f%%) · strength %.1f · vol %.1fx · RSI %.0f",
		s.Symbol, s.Name, s.CurrentPrice, s.PriceChangePct, s.StrengthScore, s.VolumeRatio, s.RSI)
	if s.BuySignal {
		line += " 🎯"
	}
	if s.Note != "" {
		line += "\n   " + s.Note
	}
	return line
}

// PredictionEmbed renders one price prediction.
func PredictionEmbed(p model.PricePrediction) Embed {
	e := Embed{
		Title: fmt.Sprintf("🔮 %s (%s): %s", p.Name, p.Symbol, p.Direction.Text()),
		Description: fmt.Sprintf("Confidence **%s** · score %+.1f · horizon %s",
			p.Confidence, p.Score, p.TimeHorizon),
		Color: DirectionColor(p.Direction),
		Fields: []EmbedField{
			{Name: "Price", Value: fmt.Sprintf("%.2f", p.CurrentPrice), Inline: true},
			{Name: "Target", Value: fmt.Sprintf("%.2f ~ %.2f", p.TargetPriceLow, p.TargetPriceHigh), Inline: true},
			{Name: "Volatility", Value: fmt.Sprintf("%.1f%%", p.Volatility), Inline: true},
			{Name: "Support", Value: levels(p.SupportLevels), Inline: true},
			{Name: "Resistance", Value: levels(p.ResistanceLevels), Inline: true},
		},
	}
	if len(p.KeyFactors) > 0 {
		e.Fields = append(e.Fields, EmbedField{Name: "Key factors", Value: bullets(p.KeyFactors)})
	}
	if len(p.Patterns) > 0 {
		names := make([]string, len(p.Patterns))
		for i, ps := range p.Patterns {
			names[i] = ps.Description
		}
		e.Fields = append(e.Fields, EmbedField{Name: "Patterns", Value: bullets(names)})
	}
	e.Fields = append(e.Fields, EmbedField{Name: "Risk", Value: truncate(p.RiskWarning, maxFieldValue)})
	return e
}

// FailureEmbed is the notice sent when a market run fails.
func FailureEmbed(market string, cause error, at time.Time) Embed {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return Embed{
		Title:       fmt.Sprintf("❌ %s report failed", market),
		Description: truncate(msg, maxDescription),
		Color:       ColorStrongBearish,
		Timestamp:   at.Format(time.RFC3339),
	}
}

func bullets(items []string) string {
	return truncate("• "+strings.Join(items, "\n• "), maxFieldValue)
}

func levels(v []float64) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.2f", x)
	}
	return strings.Join(parts, " / ")
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
