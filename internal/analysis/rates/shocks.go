package rates

import (
	"fmt"
	"math"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// Risk classification cutoffs on |percent impact|.
const (
	lowRiskCutoff      = 1.0
	moderateRiskCutoff = 3.0
)

// DefaultShocks are the parallel shocks offered by the dashboard, in percent.
func DefaultShocks() []float64 {
	return []float64{-2, -1, 1, 2}
}

// ════════════════════════════════════════════════════════════════════
// Rate Shock Simulator
// ════════════════════════════════════════════════════════════════════

// SimulateShocks applies each parallel shock (in percent) to the portfolio
// and returns one result per shock in input order.
//
// The value change is the first-order approximation
// -duration * marketValue * shock/100, so a positive shock loses value when
// duration is positive.
func SimulateShocks(bonds []models.BondRecord, shocks []float64) ([]models.ShockResult, error) {
	results := make([]models.ShockResult, 0, len(shocks))
	for _, s := range shocks {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: shock must be a finite number", models.ErrInvalidInput)
		}

		// Recomputed per shock, independent of DV01.
		w, err := weigh(bonds)
		if err != nil {
			return nil, err
		}

		change := -w.duration * w.total * (s / 100)
		impact := change / w.total * 100

		results = append(results, models.ShockResult{
			ShockPercent:  s,
			Label:         ShockLabel(s),
			ValueChange:   change,
			PercentImpact: impact,
			RiskLevel:     ClassifyRisk(impact),
		})
	}
	return results, nil
}

// ClassifyRisk maps a percentage impact to a risk level. Cutoffs are strict:
// exactly 1.0 is Moderate and exactly 3.0 is High.
func ClassifyRisk(percentImpact float64) models.RiskLevel {
	abs := math.Abs(percentImpact)
	switch {
	case abs < lowRiskCutoff:
		return models.RiskLow
	case abs < moderateRiskCutoff:
		return models.RiskModerate
	default:
		return models.RiskHigh
	}
}

// ShockLabel formats a shock for display, e.g. "+1.0%".
func ShockLabel(shock float64) string {
	return fmt.Sprintf("%+.1f%%", shock)
}
