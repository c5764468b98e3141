// Package dashboard assembles every section of the risk dashboard for one
// portfolio in a single call.
package dashboard

import (
	"fmt"
	"time"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/internal/analysis/decision"
	"github.com/seenimoa/treasuryrisk/internal/analysis/liquidity"
	"github.com/seenimoa/treasuryrisk/internal/analysis/rates"
	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// Options control how a dashboard is built. Zero values pick defaults:
// the standard shock set, no curve, the current time and the "report"
// matured-bond policy.
type Options struct {
	Shocks        []float64
	Curve         models.YieldCurve
	Now           time.Time
	MaturedPolicy liquidity.MaturedPolicy
}

// Dashboard holds the five sections computed from one portfolio.
type Dashboard struct {
	Bonds           []models.BondRecord     `json:"bonds"`
	Metrics         models.PortfolioMetrics `json:"metrics"`
	Shocks          []models.ShockResult    `json:"shocks"`
	Ladder          models.LiquidityLadder  `json:"ladder"`
	Curve           models.CurveAnalysis    `json:"curve"`
	Recommendations []string                `json:"recommendations"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// Build computes every section. Any failure aborts the whole build so a
// caller never sees a partial dashboard.
func Build(bonds []models.BondRecord, opts Options) (*Dashboard, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Shocks == nil {
		opts.Shocks = rates.DefaultShocks()
	}
	if opts.MaturedPolicy == "" {
		opts.MaturedPolicy = liquidity.MaturedReport
	}

	metrics, err := rates.ComputeMetrics(bonds)
	if err != nil {
		return nil, fmt.Errorf("portfolio metrics: %w", err)
	}

	shocks, err := rates.SimulateShocks(bonds, opts.Shocks)
	if err != nil {
		return nil, fmt.Errorf("rate shocks: %w", err)
	}

	if err := curve.Validate(opts.Curve); err != nil {
		return nil, fmt.Errorf("yield curve: %w", err)
	}
	analysis := curve.Analyze(opts.Curve)

	return &Dashboard{
		Bonds:           bonds,
		Metrics:         metrics,
		Shocks:          shocks,
		Ladder:          liquidity.BuildLadder(bonds, opts.Now, opts.MaturedPolicy),
		Curve:           analysis,
		Recommendations: decision.Recommend(metrics, &analysis),
		GeneratedAt:     opts.Now,
	}, nil
}
