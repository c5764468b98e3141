// Package rates computes portfolio interest-rate risk: market-value weighted
// yield, duration and convexity, DV01, and parallel yield shocks.
package rates

import (
	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// bp is one basis point expressed as a fraction.
const bp = 0.0001

// ════════════════════════════════════════════════════════════════════
// Portfolio Metrics
// ════════════════════════════════════════════════════════════════════

// ComputeMetrics returns the aggregate metrics of a bond table. It fails with
// ErrEmptyPortfolio or ErrZeroMarketValue rather than returning NaN.
func ComputeMetrics(bonds []models.BondRecord) (models.PortfolioMetrics, error) {
	w, err := weigh(bonds)
	if err != nil {
		return models.PortfolioMetrics{}, err
	}

	return models.PortfolioMetrics{
		TotalMarketValue: w.total,
		WeightedYield:    w.yield,
		WeightedDuration: w.duration,
		DV01:             DV01(w.total, w.duration),
		Convexity:        w.convexity,
	}, nil
}

// DV01 is the dollar value of a one basis point parallel move under the
// linear duration approximation.
func DV01(totalMarketValue, weightedDuration float64) float64 {
	return totalMarketValue * weightedDuration * bp
}

// weights holds the market-value weighted averages of a portfolio.
type weights struct {
	total     float64
	yield     float64
	duration  float64
	convexity float64
}

// weigh computes market-value weighted averages in one pass.
func weigh(bonds []models.BondRecord) (weights, error) {
	if len(bonds) == 0 {
		return weights{}, models.ErrEmptyPortfolio
	}

	var w weights
	var sumYield, sumDuration, sumConvexity float64
	for _, b := range bonds {
		w.total += b.MarketValue
		sumYield += b.Yield * b.MarketValue
		sumDuration += b.Duration * b.MarketValue
		sumConvexity += b.Convexity * b.MarketValue
	}
	if w.total == 0 {
		return weights{}, models.ErrZeroMarketValue
	}

	w.yield = sumYield / w.total
	w.duration = sumDuration / w.total
	w.convexity = sumConvexity / w.total
	return w, nil
}
