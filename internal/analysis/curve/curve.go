// Package curve analyses a hand-entered yield curve: short and long slopes,
// fixed tenor spreads, and a steepening/flattening signal.
package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// Yield bounds accepted for a tenor, in percent.
const (
	MinYield = 0.0
	MaxYield = 20.0
)

// spreadPairs are the reported tenor spreads, later tenor first.
var spreadPairs = [][2]models.Tenor{
	{models.Tenor10Y, models.Tenor3M},
	{models.Tenor5Y, models.Tenor1Y},
}

// Analyze computes slopes, spreads and the steepening flag. A tenor with a
// zero yield counts as not entered, and any slope or spread touching it is
// left undefined (nil).
func Analyze(c models.YieldCurve) models.CurveAnalysis {
	a := models.CurveAnalysis{HasData: c.HasData()}

	for _, t := range models.Tenors() {
		a.Points = append(a.Points, models.CurvePoint{Tenor: t, Yield: c[t], Set: c[t] != 0})
	}

	a.SlopeShort = diff(c, models.Tenor1Y, models.Tenor3M)
	a.SlopeLong = diff(c, models.Tenor10Y, models.Tenor1Y)
	if a.SlopeShort != nil && a.SlopeLong != nil {
		steep := *a.SlopeLong > *a.SlopeShort
		a.Steepening = &steep
	}

	for _, p := range spreadPairs {
		a.SpreadChanges = append(a.SpreadChanges, models.Spread{
			Label: string(p[0]) + "-" + string(p[1]),
			Value: diff(c, p[0], p[1]),
		})
	}
	return a
}

// diff returns c[a]-c[b], or nil when either tenor is unset.
func diff(c models.YieldCurve, a, b models.Tenor) *float64 {
	if c[a] == 0 || c[b] == 0 {
		return nil
	}
	v := c[a] - c[b]
	return &v
}

// ParseTenor matches a tenor label case-insensitively.
func ParseTenor(s string) (models.Tenor, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range models.Tenors() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// FromMap builds a curve from tenor labels. Unknown labels are rejected.
func FromMap(m map[string]float64) (models.YieldCurve, error) {
	c := make(models.YieldCurve, len(m))
	for label, v := range m {
		t, ok := ParseTenor(label)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tenor %q (want one of 3M, 6M, 1Y, 2Y, 5Y, 10Y)",
				models.ErrInvalidInput, label)
		}
		c[t] = v
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every entered yield lies within [MinYield, MaxYield].
func Validate(c models.YieldCurve) error {
	for _, t := range models.Tenors() {
		v, ok := c[t]
		if !ok {
			continue
		}
		if math.IsNaN(v) || v < MinYield || v > MaxYield {
			return fmt.Errorf("%w: %s yield %v outside [%g, %g]", models.ErrInvalidInput, t, v, MinYield, MaxYield)
		}
	}
	return nil
}
