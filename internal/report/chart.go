// Package report renders a computed dashboard as SVG charts, a Markdown
// report, a standalone HTML page and styled terminal output.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// withDefaults fills a zero config and sets the title when none is given.
func (c ChartConfig) withDefaults(title string) ChartConfig {
	if c.Width == 0 {
		c = DefaultChartConfig()
	}
	if c.Title == "" {
		c.Title = title
	}
	return c
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
// NaN values are gaps: no point is drawn and the line joins the
// neighbouring points.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

// LineChart generates an SVG line chart with one or more series. Labels
// are X-axis labels corresponding to data points. yFormat formats the
// Y-axis ticks and defaults to "%.2f".
func LineChart(series []LineChartSeries, labels []string, yFormat string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Line Chart")
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	if yFormat == "" {
		yFormat = "%.2f"
	}

	px, py, pw, ph := cfg.plotArea()

	// Find global min/max
	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen, points := 0, 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			points++
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if points == 0 {
		return emptySVG(cfg, "No data points")
	}

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.1
	maxVal += vRange * 0.1
	vRange = maxVal - minVal

	xAt := func(i int) float64 {
		if maxLen == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, fmt.Sprintf(yFormat, val))
	}

	// Draw series
	defaultColors := []string{"#2563eb", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = defaultColors[si%len(defaultColors)]
		}

		var pathParts []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, xAt(i), yAt(v)))
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s</title></circle>`,
				xAt(i), yAt(v), color, escapeXML(fmt.Sprintf(yFormat, v)))
		}
		if len(pathParts) > 1 {
			fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), color)
		}

		if len(series) > 1 {
			ly := py + 10 + si*16
			fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
				px+10, ly, px+30, ly, color)
			fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
				px+35, ly+4, cfg.TextColor, escapeXML(s.Name))
		}
	}

	// X-axis labels
	for i := 0; i < len(labels) && i < maxLen; i++ {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xAt(i), py+ph+18, cfg.FontSize, cfg.TextColor, escapeXML(labels[i]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// YieldCurveChart plots the entered tenors in maturity order. Tenors left
// unset are skipped so the line joins the entered points.
func YieldCurveChart(a models.CurveAnalysis, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Yield Curve")
	if !a.HasData {
		return emptySVG(cfg, "No yield curve entered")
	}

	values := make([]float64, len(a.Points))
	labels := make([]string, len(a.Points))
	for i, p := range a.Points {
		labels[i] = string(p.Tenor)
		values[i] = math.NaN()
		if p.Set {
			values[i] = p.Yield
		}
	}
	return LineChart([]LineChartSeries{{Name: "Yield (%)", Values: values, Color: "#2563eb"}},
		labels, "%.2f%%", cfg)
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Horizontal)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a horizontal bar chart.
type BarItem struct {
	Label   string
	Value   float64
	Display string // value label (optional, "%.1f" of Value if empty)
	Color   string // optional
}

// HorizontalBarChart generates an SVG horizontal bar chart. Negative
// values extend left of a zero line.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Comparison")
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}
	cfg.MarginLeft = 120 // wider for labels
	cfg.MarginRight = 130

	px, py, pw, ph := cfg.plotArea()

	maxVal, minVal := 0.0, 0.0
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
		minVal = math.Min(minVal, item.Value)
	}

	hasNegative := minVal < 0
	valRange := maxVal - minVal
	if valRange < 0.001 {
		valRange = 1
	}

	barH := float64(ph) / float64(len(items)) * 0.7
	if barH > 30 {
		barH = 30
	}
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	writeFrame(&sb, cfg)

	// Zero line for mixed positive/negative
	zeroX := float64(px)
	if hasNegative {
		zeroX = float64(px) + (-minVal/valRange)*float64(pw)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
			zeroX, py, zeroX, py+ph)
	}

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			color = "#4caf50"
			if item.Value < 0 {
				color = "#ef5350"
			}
		}

		bx := zeroX
		bw := math.Abs(item.Value) / valRange * float64(pw)
		if item.Value < 0 {
			bx = zeroX - bw
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			bx, by, bw, barH, color)

		// Label
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label))

		// Value
		display := item.Display
		if display == "" {
			display = fmt.Sprintf("%.1f", item.Value)
		}
		valueX, anchor := bx+bw+5, "start"
		if item.Value < 0 {
			valueX, anchor = bx-5, "end"
			if bx-5 < float64(px) {
				valueX, anchor = zeroX+5, "start"
			}
		}
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="%s">%s</text>`,
			valueX, by+barH/2+4, cfg.FontSize, cfg.TextColor, anchor, escapeXML(display))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// LadderChart draws market value per maturity bucket.
func LadderChart(l models.LiquidityLadder, currency string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Liquidity Ladder")
	items := make([]BarItem, 0, len(l.Buckets)+1)
	for _, b := range l.Buckets {
		items = append(items, BarItem{
			Label:   b.Label,
			Value:   b.MarketValue,
			Display: utils.FormatCurrency(b.MarketValue, currency),
			Color:   "#2563eb",
		})
	}
	if l.Matured.Count > 0 {
		items = append(items, BarItem{
			Label:   "Matured",
			Value:   l.Matured.MarketValue,
			Display: utils.FormatCurrency(l.Matured.MarketValue, currency),
			Color:   "#9ca3af",
		})
	}
	return HorizontalBarChart(items, cfg)
}

// riskColors maps risk levels to bar colors.
var riskColors = map[models.RiskLevel]string{
	models.RiskLow:      "#16a34a",
	models.RiskModerate: "#ea580c",
	models.RiskHigh:     "#dc2626",
}

// ShockChart draws the value change of each rate shock, colored by risk level.
func ShockChart(results []models.ShockResult, currency string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Rate Shock Impact")
	items := make([]BarItem, 0, len(results))
	for _, r := range results {
		items = append(items, BarItem{
			Label:   r.Label,
			Value:   r.ValueChange,
			Display: utils.FormatSignedCurrency(r.ValueChange, currency),
			Color:   riskColors[r.RiskLevel],
		})
	}
	return HorizontalBarChart(items, cfg)
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
