// Treasury Risk Intelligence Dashboard
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/treasuryrisk/api"
	"github.com/seenimoa/treasuryrisk/internal/config"
	"github.com/seenimoa/treasuryrisk/internal/logging"
	"github.com/seenimoa/treasuryrisk/internal/report"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var (
	cfg       *config.Config
	logCloser io.Closer
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "treasuryrisk",
	Short: "Treasury Risk Intelligence Dashboard",
	Long: `Treasury Risk Intelligence Dashboard
Analyses a fixed-income portfolio: weighted metrics and DV01, parallel
rate shocks, a liquidity ladder, a hand-entered yield curve and rule-based
recommendations. Run "serve" for the web dashboard or use the analysis
commands directly on portfolio files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logCloser, err = logging.Setup(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(shockCmd)
	rootCmd.AddCommand(ladderCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(reportCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "treasuryrisk %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			cfg.Web.ServeUI = false
		}

		api.Version = version
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Treasury risk dashboard listening on http://%s\n", cfg.Addr())
		return srv.ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
	serveCmd.Flags().Bool("no-ui", false, "serve the API only, without the web dashboard")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		source := cfg.Source()
		if source == "" {
			source = "(defaults and environment)"
		}
		logFile := cfg.Logging.File
		if logFile == "" {
			logFile = "stderr only"
		}

		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  Treasury Risk Dashboard - Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:        %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time:           %s\n", utils.FormatTimestamp(time.Now()))
		fmt.Fprintf(out, "  PDF engine:     %s\n", report.DetectPDFEngine())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Config file:    %s\n", source)
		fmt.Fprintf(out, "    API server:     %s (UI: %t)\n", cfg.Addr(), cfg.Web.ServeUI)
		fmt.Fprintf(out, "    Currency:       %s\n", cfg.Analysis.Currency)
		fmt.Fprintf(out, "    Default shocks: %s\n", joinShocks(cfg.Analysis.DefaultShocks))
		fmt.Fprintf(out, "    Shock options:  %s\n", joinShocks(cfg.Analysis.ShockOptions))
		fmt.Fprintf(out, "    Matured bonds:  %s\n", cfg.Analysis.MaturedPolicy)
		fmt.Fprintf(out, "    Logging:        %s/%s, %s\n", cfg.Logging.Level, cfg.Logging.Format, logFile)
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func joinShocks(shocks []float64) string {
	if len(shocks) == 0 {
		return "none"
	}
	parts := make([]string, len(shocks))
	for i, s := range shocks {
		parts[i] = fmt.Sprintf("%+.1f%%", s)
	}
	return strings.Join(parts, ", ")
}
