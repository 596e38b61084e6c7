package notifier

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"MarketPulse/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func trendStyle(l model.TrendLabel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%06X", TrendColor(l))))
}

func directionStyle(d model.Direction) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%06X", DirectionColor(d)))).Bold(true)
}

// Console renders reports to a terminal.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// SendReport writes the rendered report.
func (c *Console) SendReport(_ context.Context, r model.MarketReport) error {
	_, err := fmt.Fprintln(c.w, RenderReport(r))
	return err
}

// SendFailure writes a failure line.
func (c *Console) SendFailure(_ context.Context, market string, cause error) error {
	_, err := fmt.Fprintln(c.w, errorStyle.Render(fmt.Sprintf("%s report failed: %v", market, cause)))
	return err
}

// RenderReport renders a full market report as styled text.
func RenderReport(r model.MarketReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("MarketPulse · %s · %s",
		r.MarketName, r.GeneratedAt.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	for _, idx := range r.Indices {
		b.WriteString(renderIndex(idx))
		b.WriteString("\n")
	}
	if r.Outlook != nil {
		b.WriteString(renderOutlook(*r.Outlook))
		b.WriteString("\n")
	}
	if len(r.Sectors) > 0 {
		b.WriteString(sectionStyle.Render("Sector ranking"))
		b.WriteString("\n")
		for i, s := range r.Sectors {
			fmt.Fprintf(&b, "%2d. %-24s %s  strength %5.1f  avg %+6.2f%%  %d/%d bullish\n",
				i+1, s.Name, trendStyle(s.Trend).Render(fmt.Sprintf("%-15s", s.Trend.Text())),
				s.StrengthScore, s.AvgChangePct, s.BullishCount, s.StockCount)
		}
	}
	writeStocks(&b, "Top stocks", r.TopStocks)
	writeStocks(&b, "Buy signals", r.BuySignals)
	for _, p := range r.Predictions {
		b.WriteString(RenderPrediction(p))
		b.WriteString("\n")
	}
	writeStocks(&b, "Discovered", r.Discovered)
	return b.String()
}

func renderIndex(a model.IndexAnalysis) string {
	body := fmt.Sprintf("%s (%s)  %.2f  %+.2f (%+.2f%%)\n%s\n%s",
		a.Name, a.Symbol, a.CurrentPrice, a.PriceChange, a.PriceChangePct,
		trendStyle(a.Trend.Label).Render(fmt.Sprintf("%s (%d)", a.Trend.Label.Text(), a.Trend.Score)),
		mutedStyle.Render(a.Summary))
	return boxStyle.Render(body)
}

func renderOutlook(o model.MarketOutlook) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(o.MarketName + " outlook"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  confidence %s  risk %s\n",
		directionStyle(o.OverallDirection).Render(o.OverallDirection.Text()), o.Confidence, o.RiskLevel)
	fmt.Fprintf(&b, "%s\n", o.RecommendedStrategy)
	for _, s := range o.KeyObservations {
		fmt.Fprintf(&b, "  · %s\n", s)
	}
	for _, s := range o.BullishFactors {
		fmt.Fprintf(&b, "  + %s\n", s)
	}
	for _, s := range o.BearishFactors {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	return b.String()
}

func writeStocks(b *strings.Builder, title string, stocks []model.StockAnalysis) {
	if len(stocks) == 0 {
		return
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for i, s := range stocks {
		mark := ""
		if s.BuySignal {
			mark = " *"
		}
		fmt.Fprintf(b, "%2d. %-10s %-20s %10.2f %+6.2f%%  strength %5.1f  vol %.1fx%s\n",
			i+1, s.Symbol, s.Name, s.CurrentPrice, s.PriceChangePct, s.StrengthScore, s.VolumeRatio, mark)
		if s.Note != "" {
			fmt.Fprintf(b, "    %s\n", mutedStyle.Render(s.Note))
		}
	}
}

// RenderPrediction renders one price prediction.
func RenderPrediction(p model.PricePrediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)  %.2f\n", p.Name, p.Symbol, p.CurrentPrice)
	fmt.Fprintf(&b, "%s  confidence %s  score %+.1f  horizon %s\n",
		directionStyle(p.Direction).Render(p.Direction.Text()), p.Confidence, p.Score, p.TimeHorizon)
	fmt.Fprintf(&b, "target %.2f ~ %.2f  volatility %.1f%%\n", p.TargetPriceLow, p.TargetPriceHigh, p.Volatility)
	fmt.Fprintf(&b, "support %s  resistance %s\n", levels(p.SupportLevels), levels(p.ResistanceLevels))
	for _, f := range p.KeyFactors {
		fmt.Fprintf(&b, "  · %s\n", f)
	}
	for _, ps := range p.Patterns {
		fmt.Fprintf(&b, "  pattern: %s\n", ps.Description)
	}
	b.WriteString(p.RiskWarning)
	return boxStyle.Render(b.String())
}
