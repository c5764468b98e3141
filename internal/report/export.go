package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// Export: write reports to disk, HTML to PDF when an engine exists
// ════════════════════════════════════════════════════════════════════

// PDFEngine specifies which engine converts HTML to PDF.
type PDFEngine string

const (
	EngineWKHTML   PDFEngine = "wkhtmltopdf"
	EngineChromium PDFEngine = "chromium"
	EngineNone     PDFEngine = "none"
)

var chromiumBinaries = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DetectPDFEngine checks which PDF engine is available on the system.
func DetectPDFEngine() PDFEngine {
	if _, err := lookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML
	}
	for _, name := range chromiumBinaries {
		if _, err := lookPath(name); err == nil {
			return EngineChromium
		}
	}
	return EngineNone
}

// WriteFile writes a rendered report to path. An HTML report written to a
// ".pdf" path is converted with the detected engine; without one, the HTML
// is written next to it with an ".html" extension. The path actually
// written is returned.
func WriteFile(ctx context.Context, content string, f Format, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if f != FormatHTML || !strings.EqualFold(filepath.Ext(path), ".pdf") {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		return path, nil
	}

	switch engine := DetectPDFEngine(); engine {
	case EngineWKHTML, EngineChromium:
		if err := convertPDF(ctx, engine, content, path); err != nil {
			return "", err
		}
		return path, nil
	default:
		fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
		slog.Warn("no PDF engine found, writing HTML instead", "path", fallback)
		if err := os.WriteFile(fallback, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing HTML fallback: %w", err)
		}
		return fallback, nil
	}
}

func convertPDF(ctx context.Context, engine PDFEngine, html, out string) error {
	tmp, err := os.CreateTemp("", "treasuryrisk-report-*.html")
	if err != nil {
		return fmt.Errorf("creating temp HTML: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp HTML: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing temp HTML: %w", err)
	}

	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}

	var cmd *exec.Cmd
	switch engine {
	case EngineWKHTML:
		cmd = exec.CommandContext(ctx, "wkhtmltopdf",
			"--page-size", "A4",
			"--margin-top", "15mm", "--margin-bottom", "15mm",
			"--margin-left", "10mm", "--margin-right", "10mm",
			"--encoding", "UTF-8", "--enable-local-file-access", "--quiet",
			tmp.Name(), absOut)
	case EngineChromium:
		var bin string
		for _, name := range chromiumBinaries {
			if p, err := lookPath(name); err == nil {
				bin = p
				break
			}
		}
		if bin == "" {
			return fmt.Errorf("chromium not found in PATH")
		}
		cmd = exec.CommandContext(ctx, bin,
			"--headless", "--disable-gpu", "--no-sandbox",
			"--print-to-pdf="+absOut, "--print-to-pdf-no-header",
			"file://"+tmp.Name())
	default:
		return fmt.Errorf("unsupported PDF engine: %s", engine)
	}

	slog.Debug("converting report to PDF", "engine", engine, "out", absOut)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", engine, err, string(output))
	}
	return nil
}
