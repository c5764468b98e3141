// Package decision turns portfolio metrics and the yield-curve signal into
// plain-language recommendations.
package decision

import (
	"fmt"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// Rule thresholds.
const (
	HighDurationYears = 5.0
	LowYieldPercent   = 2.0
)

// NoAction is returned when no rule fires.
const NoAction = "No actionable recommendations at this time."

// Recommend applies the threshold rules in order: duration, yield, curve.
// The curve rule fires whenever a curve was entered; anything short of a
// defined steepening flag counts as flattening. The result is never empty.
func Recommend(m models.PortfolioMetrics, c *models.CurveAnalysis) []string {
	var recs []string

	if m.WeightedDuration > HighDurationYears {
		// A 1% move is 100 basis points.
		recs = append(recs, fmt.Sprintf(
			"Portfolio duration is high (%.2f). If rates rise 1%%, estimated loss = %.2f. Consider reducing long maturity exposure.",
			m.WeightedDuration, m.DV01*100))
	}
	if m.WeightedYield < LowYieldPercent {
		recs = append(recs, "Portfolio yield is low. Consider increasing exposure to higher-yielding assets.")
	}
	if c != nil && c.HasData {
		if c.Steepening != nil && *c.Steepening {
			recs = append(recs, "Yield curve steepening detected. Long bonds may outperform if rate cuts expected.")
		} else {
			recs = append(recs, "Yield curve flattening detected. Consider short duration positioning.")
		}
	}

	if len(recs) == 0 {
		return []string{NoAction}
	}
	return recs
}
