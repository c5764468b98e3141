// Package api provides the HTTP REST API server for the treasury risk
// dashboard.
//
// It exposes one endpoint per dashboard section, a combined dashboard
// endpoint, rendered reports, the running configuration and a WebSocket
// channel for live analysis.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/internal/analysis/decision"
	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/analysis/rates"
	"github.com/seenimoa/treasuryrisk/internal/config"
	"github.com/seenimoa/treasuryrisk/internal/dashboard"
	"github.com/seenimoa/treasuryrisk/internal/logging"
	"github.com/seenimoa/treasuryrisk/internal/report"
	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
	"github.com/seenimoa/treasuryrisk/web"
)

// Version is reported by the health endpoint. The CLI overrides it with
// the build version.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	wsHub   *WSHub
	serveUI bool // when true, serve the embedded web UI at /
	now     func() time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	srv := &Server{
		cfg:     cfg,
		wsHub:   NewWSHub(),
		serveUI: cfg.Web.ServeUI,
		now:     time.Now,
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, addr)
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "ui", s.serveUI)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Sections
		r.Group(func(r chi.Router) {
			r.Use(s.limitBody)

			r.Post("/portfolio", s.handlePortfolio)
			r.Post("/shocks", s.handleShocks)
			r.Post("/ladder", s.handleLadder)
			r.Post("/curve", s.handleCurve)
			r.Post("/curve/chart", s.handleCurveChart)
			r.Post("/recommendations", s.handleRecommendations)
			r.Post("/dashboard", s.handleDashboard)
			r.Post("/report", s.handleReport)
		})

		// Configuration
		r.Get("/config", s.handleGetConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// limitBody caps request bodies at the configured upload size.
func (s *Server) limitBody(next http.Handler) http.Handler {
	limit := int64(s.cfg.API.MaxUploadMB) << 20
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// mountSPA serves the embedded dashboard UI. Unknown paths fall back to
// index.html.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MetricsDisplay holds the overview figures formatted for display.
type MetricsDisplay struct {
	TotalMarketValue string `json:"total_market_value"`
	WeightedYield    string `json:"weighted_yield"`
	WeightedDuration string `json:"weighted_duration"`
	DV01             string `json:"dv01"`
	Convexity        string `json:"convexity"`
}

// PortfolioResponse is returned by POST /api/v1/portfolio.
type PortfolioResponse struct {
	Bonds   []models.BondRecord     `json:"bonds"`
	Metrics models.PortfolioMetrics `json:"metrics"`
	Display MetricsDisplay          `json:"display"`
}

// ShocksResponse is returned by POST /api/v1/shocks.
type ShocksResponse struct {
	Shocks  []models.ShockResult `json:"shocks"`
	Options []float64            `json:"options"`
}

// LadderResponse is returned by POST /api/v1/ladder.
type LadderResponse struct {
	Ladder models.LiquidityLadder `json:"ladder"`
	Chart  string                 `json:"chart"` // SVG
}

// CurveResponse is returned by POST /api/v1/curve.
type CurveResponse struct {
	Analysis models.CurveAnalysis `json:"analysis"`
	Signal   string               `json:"signal"`
	Chart    string               `json:"chart"` // SVG
}

// RecommendationsResponse is returned by POST /api/v1/recommendations.
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"time":       utils.FormatTimestamp(s.now()),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	in, err := s.acquirePortfolio(sectionOverview, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	m, err := rates.ComputeMetrics(in.Bonds)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: PortfolioResponse{
			Bonds:   in.Bonds,
			Metrics: m,
			Display: s.display(m),
		},
	})
}

func (s *Server) handleShocks(w http.ResponseWriter, r *http.Request) {
	in, err := s.acquirePortfolio(sectionShocks, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	results, err := rates.SimulateShocks(in.Bonds, in.Shocks)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ShocksResponse{Shocks: results, Options: s.cfg.Analysis.ShockOptions},
	})
}

func (s *Server) handleLadder(w http.ResponseWriter, r *http.Request) {
	in, err := s.acquirePortfolio(sectionLadder, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	l := liquidity.BuildLadder(in.Bonds, s.now(), in.Policy)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: LadderResponse{
			Ladder: l,
			Chart:  report.LadderChart(l, s.cfg.Analysis.Currency, report.DefaultChartConfig()),
		},
	})
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	c, err := s.acquireCurve(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	a := curve.Analyze(c)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: CurveResponse{
			Analysis: a,
			Signal:   report.CurveSignal(a),
			Chart:    report.YieldCurveChart(a, report.DefaultChartConfig()),
		},
	})
}

func (s *Server) handleCurveChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.acquireCurve(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	svg := report.YieldCurveChart(curve.Analyze(c), report.DefaultChartConfig())
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	in, err := s.acquirePortfolio(sectionRecommendations, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	m, err := rates.ComputeMetrics(in.Bonds)
	if err != nil {
		writeErr(w, err)
		return
	}
	a := curve.Analyze(in.Curve)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    RecommendationsResponse{Recommendations: decision.Recommend(m, &a)},
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	in, err := s.acquirePortfolio(sectionDashboard, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := s.buildDashboard(in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: d})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if format == report.FormatTerminal {
		writeError(w, http.StatusBadRequest, "terminal reports are only available from the CLI")
		return
	}

	in, err := s.acquirePortfolio(sectionReport, r)
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := s.buildDashboard(in)
	if err != nil {
		writeErr(w, err)
		return
	}

	cfg := report.DefaultConfig()
	cfg.Currency = s.cfg.Analysis.Currency

	var body, contentType string
	if format == report.FormatHTML {
		body, err = report.GenerateHTML(d, cfg)
		contentType = "text/html; charset=utf-8"
	} else {
		body, err = report.GenerateMarkdown(d, cfg)
		contentType = "text/markdown; charset=utf-8"
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body)) //nolint:errcheck
}

// buildDashboard runs every section and announces the result to WebSocket
// subscribers.
func (s *Server) buildDashboard(in *analysisInput) (*dashboard.Dashboard, error) {
	opts := in.options()
	opts.Now = s.now()
	d, err := dashboard.Build(in.Bonds, opts)
	if err != nil {
		return nil, err
	}
	s.wsHub.Broadcast(WSMessage{
		Type: "dashboard_built",
		Data: map[string]interface{}{
			"bonds":              len(d.Bonds),
			"total_market_value": d.Metrics.TotalMarketValue,
		},
	})
	return d, nil
}

func (s *Server) display(m models.PortfolioMetrics) MetricsDisplay {
	cur := s.cfg.Analysis.Currency
	return MetricsDisplay{
		TotalMarketValue: utils.FormatCurrency(m.TotalMarketValue, cur),
		WeightedYield:    utils.FormatPercent(m.WeightedYield),
		WeightedDuration: utils.FormatFixed(m.WeightedDuration, 2),
		DV01:             utils.FormatCurrency(m.DV01, cur),
		Convexity:        utils.FormatFixed(m.Convexity, 4),
	}
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeErr maps err to a status code: bad input is 400, oversized bodies
// are 413, anything else is 500.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrParse):
		return http.StatusBadRequest
	}
	slog.Error("request failed", "error", err)
	return http.StatusInternalServerError
}
