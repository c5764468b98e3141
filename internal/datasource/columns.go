package datasource

import (
	"strings"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// columnAliases maps normalized header keys to canonical column names.
var columnAliases = map[string]string{
	"isin":        models.ColISIN,
	"maturity":    models.ColMaturity,
	"coupon":      models.ColCoupon,
	"yield":       models.ColYield,
	"marketvalue": models.ColMarketValue,
	"value":       models.ColMarketValue,
	"duration":    models.ColDuration,
	"convexity":   models.ColConvexity,
}

var headerStripper = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "\ufeff", "")

func headerKey(name string) string {
	return headerStripper.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// NormalizeColumn maps a header to its canonical column name, e.g.
// "market_value" and "Market-Value" both become "Market Value". Headers
// that match no known column are returned trimmed.
func NormalizeColumn(name string) string {
	if c, ok := columnAliases[headerKey(name)]; ok {
		return c
	}
	return strings.TrimSpace(name)
}

// columnIndex maps canonical column names to cell positions.
type columnIndex map[string]int

// indexColumns normalizes a header row. When a column appears twice the
// first occurrence wins. Missing required columns are reported together,
// in canonical order.
func indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		c := NormalizeColumn(h)
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}
	if missing := MissingColumns(idx); len(missing) > 0 {
		return nil, &models.MissingColumnsError{Missing: missing}
	}
	return idx, nil
}

// MissingColumns lists the required columns absent from idx.
func MissingColumns(idx map[string]int) []string {
	var missing []string
	for _, c := range models.RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// canonicalIndex is the positional layout of a headerless paste.
func canonicalIndex(n int) columnIndex {
	idx := make(columnIndex, n)
	for i, c := range models.RequiredColumns {
		idx[c] = i
	}
	if n > len(models.RequiredColumns) {
		idx[models.ColConvexity] = len(models.RequiredColumns)
	}
	return idx
}

// looksLikeHeader reports whether at least two cells name known columns.
func looksLikeHeader(cells []string) bool {
	n := 0
	for _, c := range cells {
		if _, ok := columnAliases[headerKey(c)]; ok {
			n++
		}
	}
	return n >= 2
}
