package report

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/dashboard"
	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

var reportTime = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func sampleDashboard(t *testing.T, curve models.YieldCurve) *dashboard.Dashboard {
	t.Helper()
	bonds := []models.BondRecord{
		{ISIN: "US1234567890", Maturity: models.NewDate(2027, 6, 15), Coupon: 2.5, Yield: 2.7, MarketValue: 1_000_000, Duration: 4.2},
		{ISIN: "US0987654321", Maturity: models.NewDate(2029, 12, 1), Coupon: 3.0, Yield: 3.1, MarketValue: 500_000, Duration: 6.1},
		{ISIN: "OLD0000000001", Maturity: models.NewDate(2024, 6, 1), Coupon: 1.0, Yield: 1.0, MarketValue: 10_000, Duration: 0.1},
	}
	d, err := dashboard.Build(bonds, dashboard.Options{Now: reportTime, Curve: curve, MaturedPolicy: liquidity.MaturedReport})
	if err != nil {
		t.Fatalf("dashboard.Build: %v", err)
	}
	return d
}

var exampleCurve = models.YieldCurve{models.Tenor3M: 5.0, models.Tenor1Y: 5.2, models.Tenor10Y: 5.5}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

func TestLineChart_Basic(t *testing.T) {
	series := []LineChartSeries{
		{Name: "Today", Values: []float64{4.1, 4.3, 4.6}, Color: "#2196f3"},
		{Name: "Last Week", Values: []float64{4.0, 4.2, 4.4}},
	}
	cfg := DefaultChartConfig()
	cfg.Title = "Curve Comparison"

	svg := LineChart(series, []string{"1Y", "2Y", "5Y"}, "%.1f%%", cfg)
	for _, want := range []string{"Curve Comparison", "Today", "Last Week", "5Y", "<path"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in chart", want)
		}
	}
}

func TestLineChart_Empty(t *testing.T) {
	if svg := LineChart(nil, nil, "", DefaultChartConfig()); !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
	allNaN := []LineChartSeries{{Name: "A", Values: []float64{math.NaN(), math.NaN()}}}
	if svg := LineChart(allNaN, nil, "", DefaultChartConfig()); !strings.Contains(svg, "No data points") {
		t.Error("expected empty message for all-NaN series")
	}
}

func TestLineChart_SinglePoint(t *testing.T) {
	svg := LineChart([]LineChartSeries{{Name: "A", Values: []float64{42}}}, nil, "", DefaultChartConfig())
	if !strings.Contains(svg, "<circle") {
		t.Error("expected a marker for a single point")
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("coordinates must be finite")
	}
}

func TestLineChart_NaNGaps(t *testing.T) {
	series := []LineChartSeries{{Name: "Test", Values: []float64{10, math.NaN(), 20, math.NaN(), 30}}}
	svg := LineChart(series, nil, "", DefaultChartConfig())
	if !strings.Contains(svg, "<path") {
		t.Error("expected path joining the defined points")
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 markers, got %d", got)
	}
}

func TestYieldCurveChart(t *testing.T) {
	svg := YieldCurveChart(models.CurveAnalysis{}, ChartConfig{})
	if !strings.Contains(svg, "No yield curve entered") {
		t.Error("expected empty message without data")
	}

	d := sampleDashboard(t, exampleCurve)
	svg = YieldCurveChart(d.Curve, ChartConfig{})
	if !strings.Contains(svg, "Yield Curve") {
		t.Error("expected default title")
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 entered tenors plotted, got %d", got)
	}
	for _, tenor := range []string{"3M", "6M", "10Y"} {
		if !strings.Contains(svg, ">"+tenor+"<") {
			t.Errorf("expected axis label %s", tenor)
		}
	}
}

func TestHorizontalBarChart_Basic(t *testing.T) {
	cfg := DefaultChartConfig()
	cfg.Title = "Buckets"
	svg := HorizontalBarChart([]BarItem{{Label: "A", Value: 10}, {Label: "B", Value: 5, Display: "five"}}, cfg)
	for _, want := range []string{"Buckets", ">A<", ">five<", ">10.0<"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in chart", want)
		}
	}
}

func TestHorizontalBarChart_WithNegative(t *testing.T) {
	svg := HorizontalBarChart([]BarItem{{Label: "Up", Value: 500}, {Label: "Down", Value: -200}}, DefaultChartConfig())
	if !strings.Contains(svg, `stroke="#999"`) {
		t.Error("expected zero line for mixed positive/negative")
	}
	if !strings.Contains(svg, "#ef5350") {
		t.Error("expected default red for negative bar")
	}
}

func TestHorizontalBarChart_Empty(t *testing.T) {
	if svg := HorizontalBarChart(nil, DefaultChartConfig()); !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
}

func TestLadderChart(t *testing.T) {
	d := sampleDashboard(t, nil)
	svg := LadderChart(d.Ladder, "USD", ChartConfig{})
	for _, want := range []string{"Liquidity Ladder", "0–30 days", "1 year+", "$1,500,000.00", "Matured", "$10,000.00"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in ladder chart", want)
		}
	}
}

func TestShockChart(t *testing.T) {
	d := sampleDashboard(t, nil)
	svg := ShockChart(d.Shocks, "USD", ChartConfig{})
	for _, want := range []string{"Rate Shock Impact", "+1.0%", "-2.0%", riskColors[models.RiskHigh]} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in shock chart", want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"a & b", "a &amp; b"},
		{"<b>test</b>", "&lt;b&gt;test&lt;/b&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
	}
	for _, tt := range tests {
		if result := escapeXML(tt.input); result != tt.expected {
			t.Errorf("escapeXML(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestPlotArea(t *testing.T) {
	cfg := DefaultChartConfig()
	x, y, w, h := cfg.plotArea()
	if x != cfg.MarginLeft || y != cfg.MarginTop {
		t.Errorf("origin: got (%d, %d)", x, y)
	}
	if w != cfg.Width-cfg.MarginLeft-cfg.MarginRight || h != cfg.Height-cfg.MarginTop-cfg.MarginBottom {
		t.Errorf("size: got (%d, %d)", w, h)
	}
}

func TestEmptySVG(t *testing.T) {
	svg := emptySVG(ChartConfig{}, "Test message")
	if !strings.Contains(svg, "Test message") || !strings.Contains(svg, `width="400"`) {
		t.Errorf("unexpected empty SVG: %s", svg)
	}
}

// ════════════════════════════════════════════════════════════════════
// Markdown / HTML / Terminal
// ════════════════════════════════════════════════════════════════════

func TestGenerateMarkdown(t *testing.T) {
	md, err := GenerateMarkdown(sampleDashboard(t, exampleCurve), Config{})
	if err != nil {
		t.Fatalf("GenerateMarkdown error: %v", err)
	}
	for _, want := range []string{
		"# Treasury Risk Report",
		"Generated 2025-01-01 09:30 UTC for 3 bond(s)",
		"## Portfolio Overview",
		"## Interest Rate Risk Engine",
		"## Liquidity Ladder",
		"## Yield Curve Monitor",
		"## Decision Intelligence Layer",
		"| Total Market Value | $1,510,000.00 |",
		"| +1.0% |",
		"| 0–30 days |",
		"1 matured bond(s) worth $10,000.00",
		"OLD0000000001",
		"| 6M | n/a |",
		"| Short slope (1Y-3M) | 0.20 |",
		"| 5Y-1Y spread | n/a |",
		"| Curve signal | Steepening |",
		"- Yield curve steepening detected.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown", want)
		}
	}
}

func TestGenerateMarkdown_NoCurve(t *testing.T) {
	md, err := GenerateMarkdown(sampleDashboard(t, nil), Config{Title: "Desk Report", Currency: "EUR"})
	if err != nil {
		t.Fatalf("GenerateMarkdown error: %v", err)
	}
	if !strings.Contains(md, "# Desk Report") {
		t.Error("expected custom title")
	}
	if !strings.Contains(md, "_No yield curve entered._") {
		t.Error("expected curve placeholder")
	}
	if !strings.Contains(md, "€") {
		t.Error("expected amounts in EUR")
	}
}

func TestGenerateMarkdown_Nil(t *testing.T) {
	if _, err := GenerateMarkdown(nil, Config{}); err == nil {
		t.Error("expected error for nil dashboard")
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleDashboard(t, exampleCurve), DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateHTML error: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Treasury Risk Report</title>",
		"<h2>Portfolio Overview</h2>",
		"<table>",
		"$1,510,000.00",
		"<svg",
		"Rate Shock Impact",
		"Liquidity Ladder",
		"<li>Yield curve steepening detected.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in HTML", want)
		}
	}
	if got := strings.Count(html, "<svg"); got != 3 {
		t.Errorf("expected 3 charts, got %d", got)
	}
}

func TestGenerateHTML_EscapesUserText(t *testing.T) {
	bonds := []models.BondRecord{
		{ISIN: "<SCRIPT>X</SCRIPT>", Maturity: models.NewDate(2030, 1, 1), Yield: 3, MarketValue: 100, Duration: 2},
	}
	d, err := dashboard.Build(bonds, dashboard.Options{Now: reportTime})
	if err != nil {
		t.Fatal(err)
	}
	html, err := GenerateHTML(d, Config{})
	if err != nil {
		t.Fatalf("GenerateHTML error: %v", err)
	}
	if strings.Contains(html, "<SCRIPT>") {
		t.Error("raw HTML from input must not reach the page")
	}
}

func TestGenerateHTML_Nil(t *testing.T) {
	if _, err := GenerateHTML(nil, Config{}); err == nil {
		t.Error("expected error for nil dashboard")
	}
}

func TestRenderTerminal(t *testing.T) {
	md, err := GenerateMarkdown(sampleDashboard(t, nil), Config{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderTerminal(md, 120, "notty")
	if err != nil {
		t.Fatalf("RenderTerminal error: %v", err)
	}
	for _, want := range []string{"Portfolio Overview", "Liquidity Ladder", "No actionable recommendations"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in terminal output", want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatMarkdown},
		{"md", FormatMarkdown},
		{"HTML", FormatHTML},
		{"terminal", FormatTerminal},
	}
	for _, tt := range tests {
		if got, err := ParseFormat(tt.in); err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("pdf: got %v", err)
	}
}

func TestCurveSignal(t *testing.T) {
	yes, no := true, false
	if got := CurveSignal(models.CurveAnalysis{Steepening: &yes}); got != "Steepening" {
		t.Errorf("got %s", got)
	}
	if got := CurveSignal(models.CurveAnalysis{Steepening: &no}); got != "Flattening" {
		t.Errorf("got %s", got)
	}
	if got := CurveSignal(models.CurveAnalysis{}); got != "Undetermined" {
		t.Errorf("got %s", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Export
// ════════════════════════════════════════════════════════════════════

func TestWriteFile_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.md")
	written, err := WriteFile(context.Background(), "# hi\n", FormatMarkdown, path)
	if err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if written != path {
		t.Errorf("written %s, want %s", written, path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# hi\n" {
		t.Errorf("content: %q, %v", data, err)
	}
}

func TestWriteFile_PDFFallsBackToHTML(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	defer func() { lookPath = orig }()

	if DetectPDFEngine() != EngineNone {
		t.Fatal("expected no engine")
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	written, err := WriteFile(context.Background(), "<html></html>", FormatHTML, path)
	if err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if !strings.HasSuffix(written, "report.html") {
		t.Errorf("expected .html fallback, got %s", written)
	}
	if _, err := os.Stat(written); err != nil {
		t.Errorf("fallback file missing: %v", err)
	}
}

func TestWriteFile_NoPath(t *testing.T) {
	if _, err := WriteFile(context.Background(), "x", FormatMarkdown, ""); err == nil {
		t.Error("expected error for empty path")
	}
}
