package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/analysis/rates"
	"github.com/seenimoa/treasuryrisk/internal/dashboard"
	"github.com/seenimoa/treasuryrisk/internal/datasource"
	"github.com/seenimoa/treasuryrisk/internal/report"
	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// --- Metrics Command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics [portfolio-file]",
	Short: "Show portfolio overview metrics",
	Long:  "Load a portfolio (.csv, .txt/.tsv or .html) and print total market value, weighted yield and duration, DV01 and convexity.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bonds, err := datasource.LoadFile(args[0])
		if err != nil {
			return err
		}
		m, err := rates.ComputeMetrics(bonds)
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), m)
		}

		cur := cfg.Analysis.Currency
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Portfolio Overview (%d bonds)\n", len(bonds))
		fmt.Fprintf(out, "  Total Market Value:  %s\n", utils.FormatCurrency(m.TotalMarketValue, cur))
		fmt.Fprintf(out, "  Weighted Yield:      %s\n", utils.FormatPercent(m.WeightedYield))
		fmt.Fprintf(out, "  Weighted Duration:   %s\n", utils.FormatFixed(m.WeightedDuration, 2))
		fmt.Fprintf(out, "  DV01:                %s\n", utils.FormatCurrency(m.DV01, cur))
		fmt.Fprintf(out, "  Convexity:           %s\n", utils.FormatFixed(m.Convexity, 4))
		return nil
	},
}

// --- Shock Command ---

var shockCmd = &cobra.Command{
	Use:   "shock [portfolio-file]",
	Short: "Simulate parallel interest rate shocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shocks, err := shocksFlag(cmd)
		if err != nil {
			return err
		}
		bonds, err := datasource.LoadFile(args[0])
		if err != nil {
			return err
		}
		results, err := rates.SimulateShocks(bonds, shocks)
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), results)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No rate shocks selected.")
			return nil
		}
		fmt.Fprintf(out, "%-8s %20s %10s  %s\n", "Shock", "Value Change", "Impact", "Risk")
		for _, r := range results {
			fmt.Fprintf(out, "%-8s %20s %10s  %s\n", r.Label,
				utils.FormatSignedCurrency(r.ValueChange, cfg.Analysis.Currency), utils.FormatPct(r.PercentImpact), r.RiskLevel)
		}
		return nil
	},
}

// --- Ladder Command ---

var ladderCmd = &cobra.Command{
	Use:   "ladder [portfolio-file]",
	Short: "Group market value by time to maturity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := maturedFlag(cmd)
		if err != nil {
			return err
		}
		now, err := asOfFlag(cmd)
		if err != nil {
			return err
		}
		bonds, err := datasource.LoadFile(args[0])
		if err != nil {
			return err
		}
		l := liquidity.BuildLadder(bonds, now, policy)
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), l)
		}

		cur := cfg.Analysis.Currency
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Liquidity Ladder as of %s\n", now.Format(models.DateFormat))
		for _, b := range l.Buckets {
			fmt.Fprintf(out, "  %-12s %20s  (%d)\n", b.Label, utils.FormatCurrency(b.MarketValue, cur), b.Count)
		}
		if l.Matured.Count > 0 {
			fmt.Fprintf(out, "  %-12s %20s  (%d: %s)\n", "Matured", utils.FormatCurrency(l.Matured.MarketValue, cur),
				l.Matured.Count, strings.Join(l.Matured.ISINs, ", "))
		}
		return nil
	},
}

// --- Curve Command ---

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Analyse a yield curve",
	Long: `Analyse a yield curve entered with --3m ... --10y or loaded with --csv
(a Tenor,Yield file). Prints slopes, spreads and the steepening signal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := curveFlags(cmd, "csv")
		if err != nil {
			return err
		}
		a := curve.Analyze(c)

		if svgPath, _ := cmd.Flags().GetString("svg"); svgPath != "" {
			svg := report.YieldCurveChart(a, report.DefaultChartConfig())
			if err := os.WriteFile(svgPath, []byte(svg), 0o644); err != nil {
				return fmt.Errorf("writing chart: %w", err)
			}
		}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), a)
		}

		out := cmd.OutOrStdout()
		if !a.HasData {
			fmt.Fprintln(out, "No yield curve entered.")
			return nil
		}
		fmt.Fprintln(out, "Yield Curve Monitor")
		for _, p := range a.Points {
			y := "n/a"
			if p.Set {
				y = utils.FormatPercent(p.Yield)
			}
			fmt.Fprintf(out, "  %-4s %8s\n", p.Tenor, y)
		}
		fmt.Fprintf(out, "  Short slope (1Y-3M):  %s\n", optional(a.SlopeShort))
		fmt.Fprintf(out, "  Long slope (10Y-1Y):  %s\n", optional(a.SlopeLong))
		for _, s := range a.SpreadChanges {
			fmt.Fprintf(out, "  %-7s spread:       %s\n", s.Label, optional(s.Value))
		}
		fmt.Fprintf(out, "  Curve signal:         %s\n", report.CurveSignal(a))
		return nil
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [portfolio-file]...",
	Short: "Generate the full dashboard report",
	Long: `Build every dashboard section for one or more portfolio files and
render it for the terminal, as Markdown or as HTML. Several files are
analysed in parallel and reported in the order given. With --out, a single
file is written to that path; several files are written into that
directory. An HTML report written to a .pdf path is converted when
wkhtmltopdf or Chromium is installed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		shocks, err := shocksFlag(cmd)
		if err != nil {
			return err
		}
		c, err := curveFlags(cmd, "curve-csv")
		if err != nil {
			return err
		}
		policy, err := maturedFlag(cmd)
		if err != nil {
			return err
		}
		now, err := asOfFlag(cmd)
		if err != nil {
			return err
		}
		opts := dashboard.Options{Shocks: shocks, Curve: c, Now: now, MaturedPolicy: policy}

		outPath, _ := cmd.Flags().GetString("out")
		dests, err := reportPaths(args, outPath, format)
		if err != nil {
			return err
		}

		dashboards := make([]*dashboard.Dashboard, len(args))
		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, path := range args {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				bonds, err := datasource.LoadFile(path)
				if err != nil {
					return err
				}
				d, err := dashboard.Build(bonds, opts)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				dashboards[i] = d
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		style, _ := cmd.Flags().GetString("style")
		title, _ := cmd.Flags().GetString("title")

		for i, d := range dashboards {
			rcfg := report.DefaultConfig()
			rcfg.Currency = cfg.Analysis.Currency
			if title != "" {
				rcfg.Title = title
			}
			if len(args) > 1 {
				rcfg.Title = fmt.Sprintf("%s: %s", rcfg.Title, filepath.Base(args[i]))
			}

			content, err := render(d, rcfg, format, outPath == "", width, style)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), content)
				continue
			}

			written, err := report.WriteFile(cmd.Context(), content, format, dests[i])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", written)
		}
		return nil
	},
}

// reportPaths picks one destination per input. A single input goes to out
// itself; several go into the out directory named after each input, and
// two inputs mapping to the same file are rejected.
func reportPaths(args []string, out string, f report.Format) ([]string, error) {
	dests := make([]string, len(args))
	if out == "" {
		return dests, nil
	}
	if len(args) == 1 {
		dests[0] = out
		return dests, nil
	}
	seen := make(map[string]string, len(args))
	for i, path := range args {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dest := filepath.Join(out, base+extension(f))
		if prev, ok := seen[dest]; ok {
			return nil, fmt.Errorf("%w: %s and %s would both be written to %s; rename one of them",
				models.ErrInvalidInput, prev, path, dest)
		}
		seen[dest] = path
		dests[i] = dest
	}
	return dests, nil
}

// render produces the report text. Terminal styling is applied only when
// printing; files get the Markdown source.
func render(d *dashboard.Dashboard, rcfg report.Config, f report.Format, toTerminal bool, width int, style string) (string, error) {
	if f == report.FormatHTML {
		return report.GenerateHTML(d, rcfg)
	}
	md, err := report.GenerateMarkdown(d, rcfg)
	if err != nil {
		return "", err
	}
	if f == report.FormatTerminal && toTerminal {
		return report.RenderTerminal(md, width, style)
	}
	return md, nil
}

func extension(f report.Format) string {
	if f == report.FormatHTML {
		return ".html"
	}
	return ".md"
}

func init() {
	for _, c := range []*cobra.Command{metricsCmd, shockCmd, ladderCmd, curveCmd} {
		c.Flags().Bool("json", false, "print JSON instead of a table")
	}
	for _, c := range []*cobra.Command{shockCmd, reportCmd} {
		c.Flags().Float64Slice("shocks", nil, "parallel shocks in percent, e.g. --shocks -2,-1,1,2 (default: analysis.default_shocks)")
	}
	for _, c := range []*cobra.Command{ladderCmd, reportCmd} {
		c.Flags().String("matured", "", "matured bonds: report (separate line) or floor (first bucket) (default: analysis.matured_policy)")
		c.Flags().String("as-of", "", "ladder reference date, YYYY-MM-DD (default: today)")
	}

	curveCmd.Flags().String("csv", "", "yield curve CSV file with Tenor,Yield columns")
	curveCmd.Flags().String("svg", "", "also write the yield curve chart to this SVG file")
	addTenorFlags(curveCmd)

	reportCmd.Flags().String("curve-csv", "", "yield curve CSV file with Tenor,Yield columns")
	addTenorFlags(reportCmd)
	reportCmd.Flags().String("format", "terminal", "output format: terminal, markdown or html")
	reportCmd.Flags().String("out", "", "write the report to this file (directory for several inputs)")
	reportCmd.Flags().String("title", "", "report title")
	reportCmd.Flags().Int("width", 100, "terminal word-wrap width")
	reportCmd.Flags().String("style", "auto", "terminal style: auto, dark, light or notty")
}

// ============================================================
// Flag helpers
// ============================================================

func addTenorFlags(cmd *cobra.Command) {
	for _, t := range models.Tenors() {
		name := strings.ToLower(string(t))
		cmd.Flags().Float64(name, 0, fmt.Sprintf("%s yield in percent (0 = not entered)", t))
	}
}

// curveFlags reads the curve from the CSV flag or from the tenor flags.
func curveFlags(cmd *cobra.Command, csvFlag string) (models.YieldCurve, error) {
	entered := models.YieldCurve{}
	for _, t := range models.Tenors() {
		name := strings.ToLower(string(t))
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			entered[t] = v
		}
	}

	if path, _ := cmd.Flags().GetString(csvFlag); path != "" {
		if len(entered) > 0 {
			return nil, fmt.Errorf("%w: use --%s or the tenor flags, not both", models.ErrInvalidInput, csvFlag)
		}
		return datasource.LoadCurveFile(path)
	}
	if err := curve.Validate(entered); err != nil {
		return nil, err
	}
	return entered, nil
}

// shocksFlag returns --shocks when given, otherwise the configured
// defaults. Any finite shock is accepted here.
func shocksFlag(cmd *cobra.Command) ([]float64, error) {
	if !cmd.Flags().Changed("shocks") {
		return append([]float64(nil), cfg.Analysis.DefaultShocks...), nil
	}
	shocks, err := cmd.Flags().GetFloat64Slice("shocks")
	if err != nil {
		return nil, err
	}
	for _, s := range shocks {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: shock must be a finite number", models.ErrInvalidInput)
		}
	}
	return shocks, nil
}

func maturedFlag(cmd *cobra.Command) (liquidity.MaturedPolicy, error) {
	p, _ := cmd.Flags().GetString("matured")
	if p == "" {
		p = cfg.Analysis.MaturedPolicy
	}
	return liquidity.ParseMaturedPolicy(p)
}

func asOfFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("as-of")
	if s == "" {
		return time.Now(), nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --as-of: %v", models.ErrInvalidInput, err)
	}
	return d.Time, nil
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatFixed(*v, 2)
}
