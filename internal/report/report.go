package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/seenimoa/treasuryrisk/internal/dashboard"
	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: chart and template rendering
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatTerminal Format = "terminal"
)

// ParseFormat resolves a report format name. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "terminal", "term", "text":
		return FormatTerminal, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q (want markdown, html or terminal)", models.ErrInvalidInput, s)
}

// Config controls report generation behaviour.
type Config struct {
	Title    string      // report title (default: "Treasury Risk Report")
	Currency string      // ISO 4217 code for amounts (default: USD)
	ChartCfg ChartConfig // chart rendering config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Title:    "Treasury Risk Report",
		Currency: utils.DefaultCurrency,
		ChartCfg: DefaultChartConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Currency == "" {
		c.Currency = def.Currency
	}
	if c.ChartCfg.Width == 0 {
		c.ChartCfg = def.ChartCfg
	}
	return c
}

// section is one titled block of the report with an optional chart.
type section struct {
	Title    string
	Markdown string
	Chart    string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

// GenerateMarkdown renders the dashboard as a Markdown document.
func GenerateMarkdown(d *dashboard.Dashboard, cfg Config) (string, error) {
	if d == nil {
		return "", fmt.Errorf("dashboard is nil")
	}
	cfg = cfg.withDefaults()

	var sb strings.Builder
	sb.WriteString(header(d, cfg))
	for _, s := range buildSections(d, cfg, false) {
		fmt.Fprintf(&sb, "\n## %s\n\n%s", s.Title, s.Markdown)
	}
	return sb.String(), nil
}

// GenerateHTML renders the dashboard as a standalone HTML page with the
// yield-curve, ladder and shock charts inlined as SVG.
func GenerateHTML(d *dashboard.Dashboard, cfg Config) (string, error) {
	if d == nil {
		return "", fmt.Errorf("dashboard is nil")
	}
	cfg = cfg.withDefaults()

	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	type htmlSection struct {
		Title string
		Body  template.HTML
		Chart template.HTML
	}
	data := struct {
		Title       string
		GeneratedAt string
		BondCount   int
		Sections    []htmlSection
	}{
		Title:       cfg.Title,
		GeneratedAt: utils.FormatTimestamp(d.GeneratedAt),
		BondCount:   len(d.Bonds),
	}

	for _, s := range buildSections(d, cfg, true) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(s.Markdown), &buf); err != nil {
			return "", fmt.Errorf("rendering %s: %w", s.Title, err)
		}
		data.Sections = append(data.Sections, htmlSection{
			Title: s.Title,
			// Generated from our own Markdown and SVG, never from raw user HTML.
			Body:  template.HTML(buf.String()),
			Chart: template.HTML(s.Chart),
		})
	}

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// RenderTerminal styles Markdown for a terminal. style is a glamour style
// name ("dark", "light", "notty", ...) or "auto" to follow the terminal.
func RenderTerminal(markdown string, width int, style string) (string, error) {
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: section builders
// ════════════════════════════════════════════════════════════════════

func header(d *dashboard.Dashboard, cfg Config) string {
	return fmt.Sprintf("# %s\n\n_Generated %s for %d bond(s)._\n",
		cfg.Title, utils.FormatTimestamp(d.GeneratedAt), len(d.Bonds))
}

func buildSections(d *dashboard.Dashboard, cfg Config, charts bool) []section {
	sections := []section{
		{Title: "Portfolio Overview", Markdown: overviewMarkdown(d, cfg.Currency)},
		{Title: "Interest Rate Risk Engine", Markdown: shocksMarkdown(d.Shocks, cfg.Currency)},
		{Title: "Liquidity Ladder", Markdown: ladderMarkdown(d.Ladder, cfg.Currency)},
		{Title: "Yield Curve Monitor", Markdown: curveMarkdown(d.Curve)},
		{Title: "Decision Intelligence Layer", Markdown: recommendationsMarkdown(d.Recommendations)},
	}
	if charts {
		sections[1].Chart = ShockChart(d.Shocks, cfg.Currency, cfg.ChartCfg)
		sections[2].Chart = LadderChart(d.Ladder, cfg.Currency, cfg.ChartCfg)
		if d.Curve.HasData {
			sections[3].Chart = YieldCurveChart(d.Curve, cfg.ChartCfg)
		}
	}
	return sections
}

func overviewMarkdown(d *dashboard.Dashboard, currency string) string {
	m := d.Metrics
	var sb strings.Builder
	sb.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Total Market Value | %s |\n", utils.FormatCurrency(m.TotalMarketValue, currency))
	fmt.Fprintf(&sb, "| Weighted Yield | %s |\n", utils.FormatPercent(m.WeightedYield))
	fmt.Fprintf(&sb, "| Weighted Duration | %s |\n", utils.FormatFixed(m.WeightedDuration, 2))
	fmt.Fprintf(&sb, "| DV01 | %s |\n", utils.FormatCurrency(m.DV01, currency))
	fmt.Fprintf(&sb, "| Convexity | %s |\n", utils.FormatFixed(m.Convexity, 4))

	sb.WriteString("\n### Holdings\n\n")
	sb.WriteString("| ISIN | Maturity | Coupon | Yield | Market Value | Duration |\n")
	sb.WriteString("|---|---|---:|---:|---:|---:|\n")
	for _, b := range d.Bonds {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(b.ISIN), b.Maturity, utils.FormatPercent(b.Coupon), utils.FormatPercent(b.Yield),
			utils.FormatCurrency(b.MarketValue, currency), utils.FormatFixed(b.Duration, 2))
	}
	return sb.String()
}

func shocksMarkdown(results []models.ShockResult, currency string) string {
	if len(results) == 0 {
		return "_No rate shocks selected._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Shock | Value Change | Impact | Risk Level |\n|---|---:|---:|---|\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			r.Label, utils.FormatSignedCurrency(r.ValueChange, currency), utils.FormatPct(r.PercentImpact), r.RiskLevel)
	}
	return sb.String()
}

func ladderMarkdown(l models.LiquidityLadder, currency string) string {
	var sb strings.Builder
	sb.WriteString("| Bucket | Market Value | Bonds |\n|---|---:|---:|\n")
	for _, b := range l.Buckets {
		fmt.Fprintf(&sb, "| %s | %s | %d |\n", b.Label, utils.FormatCurrency(b.MarketValue, currency), b.Count)
	}
	if l.Matured.Count > 0 {
		isins := make([]string, len(l.Matured.ISINs))
		for i, s := range l.Matured.ISINs {
			isins[i] = escapeCell(s)
		}
		fmt.Fprintf(&sb, "\n_%d matured bond(s) worth %s are outside the ladder: %s._\n",
			l.Matured.Count, utils.FormatCurrency(l.Matured.MarketValue, currency), strings.Join(isins, ", "))
	}
	return sb.String()
}

func curveMarkdown(a models.CurveAnalysis) string {
	if !a.HasData {
		return "_No yield curve entered._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Tenor | Yield |\n|---|---:|\n")
	for _, p := range a.Points {
		y := "n/a"
		if p.Set {
			y = utils.FormatPercent(p.Yield)
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", p.Tenor, y)
	}

	sb.WriteString("\n| Measure | Value |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Short slope (1Y-3M) | %s |\n", optional(a.SlopeShort))
	fmt.Fprintf(&sb, "| Long slope (10Y-1Y) | %s |\n", optional(a.SlopeLong))
	for _, s := range a.SpreadChanges {
		fmt.Fprintf(&sb, "| %s spread | %s |\n", s.Label, optional(s.Value))
	}
	fmt.Fprintf(&sb, "| Curve signal | %s |\n", CurveSignal(a))
	return sb.String()
}

func recommendationsMarkdown(recs []string) string {
	var sb strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&sb, "- %s\n", r)
	}
	return sb.String()
}

// CurveSignal names the steepening flag: Steepening, Flattening or Undetermined.
func CurveSignal(a models.CurveAnalysis) string {
	switch {
	case a.Steepening == nil:
		return "Undetermined"
	case *a.Steepening:
		return "Steepening"
	default:
		return "Flattening"
	}
}

func optional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatFixed(*v, 2)
}

// escapeCell keeps user-supplied text from breaking a Markdown table.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
