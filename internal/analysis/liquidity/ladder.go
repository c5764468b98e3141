// Package liquidity buckets portfolio market value by time to maturity.
package liquidity

import (
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

const day = 24 * time.Hour

// MaturedPolicy decides where bonds maturing before "now" go.
type MaturedPolicy string

const (
	// MaturedReport keeps matured bonds out of every bucket and reports them separately.
	MaturedReport MaturedPolicy = "report"
	// MaturedFloor places matured bonds in the first bucket.
	MaturedFloor MaturedPolicy = "floor"
)

// ParseMaturedPolicy validates a policy name. An empty name selects MaturedReport.
func ParseMaturedPolicy(s string) (MaturedPolicy, error) {
	switch p := MaturedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MaturedReport, nil
	case MaturedReport, MaturedFloor:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown matured policy %q (want %q or %q)",
			models.ErrInvalidInput, s, MaturedReport, MaturedFloor)
	}
}

// bucketSpec is a half-open [from, to) day range; to == 0 means unbounded.
type bucketSpec struct {
	label    string
	from, to int
}

var buckets = []bucketSpec{
	{models.Bucket0To30, 0, 30},
	{models.Bucket30To90, 30, 90},
	{models.Bucket90To180, 90, 180},
	{models.Bucket1YPlus, 180, 0},
}

// Labels returns the ladder bucket labels in order.
func Labels() []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.label
	}
	return out
}

// Build reads the current time once and builds the ladder against it.
func Build(bonds []models.BondRecord, policy MaturedPolicy) models.LiquidityLadder {
	return BuildLadder(bonds, time.Now(), policy)
}

// BuildLadder assigns every bond to exactly one bucket by its maturity date
// relative to now. Each bucket holds maturities in [now+from, now+to).
func BuildLadder(bonds []models.BondRecord, now time.Time, policy MaturedPolicy) models.LiquidityLadder {
	ladder := models.LiquidityLadder{
		AsOf:    now,
		Buckets: make([]models.LadderBucket, len(buckets)),
	}
	for i, b := range buckets {
		ladder.Buckets[i] = models.LadderBucket{Label: b.label, FromDays: b.from, ToDays: b.to}
	}

	for _, bond := range bonds {
		idx := bucketIndex(bond.Maturity.Time, now)
		if idx < 0 {
			if policy != MaturedFloor {
				ladder.Matured.MarketValue += bond.MarketValue
				ladder.Matured.Count++
				ladder.Matured.ISINs = append(ladder.Matured.ISINs, bond.ISIN)
				continue
			}
			idx = 0
		}
		ladder.Buckets[idx].MarketValue += bond.MarketValue
		ladder.Buckets[idx].Count++
	}
	return ladder
}

// bucketIndex returns the bucket holding maturity, or -1 if it is before now.
func bucketIndex(maturity, now time.Time) int {
	if maturity.Before(now) {
		return -1
	}
	for i, b := range buckets {
		if b.to == 0 || maturity.Before(now.Add(time.Duration(b.to)*day)) {
			return i
		}
	}
	return len(buckets) - 1
}
