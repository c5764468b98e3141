package datasource

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seenimoa/treasuryrisk/internal/analysis/curve"
	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// Curve CSV headers.
const (
	ColTenor      = "Tenor"
	ColCurveYield = "Yield"
)

// ParseCurveCSV reads a "Tenor,Yield" table. Headers and tenors match
// case-insensitively, the first row for a tenor wins, and unknown tenors
// are skipped. Tenors absent from the file stay unset.
func ParseCurveCSV(r io.Reader) (models.YieldCurve, error) {
	rows, err := readDelimited(r, ',')
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &models.MissingColumnsError{Missing: []string{ColTenor, ColCurveYield}}
	}

	tenorCol, yieldCol := -1, -1
	for i, h := range rows[0].cells {
		switch headerKey(h) {
		case "tenor":
			if tenorCol < 0 {
				tenorCol = i
			}
		case "yield":
			if yieldCol < 0 {
				yieldCol = i
			}
		}
	}
	var missing []string
	if tenorCol < 0 {
		missing = append(missing, ColTenor)
	}
	if yieldCol < 0 {
		missing = append(missing, ColCurveYield)
	}
	if len(missing) > 0 {
		return nil, &models.MissingColumnsError{Missing: missing}
	}

	c := make(models.YieldCurve)
	for _, r := range rows[1:] {
		label := r.cell(tenorCol)
		t, ok := curve.ParseTenor(label)
		if !ok {
			slog.Debug("skipping unknown tenor", "tenor", label, "line", r.line)
			continue
		}
		if _, seen := c[t]; seen {
			continue
		}
		raw := r.cell(yieldCol)
		v, err := utils.ParseNumber(raw)
		if err != nil {
			return nil, &models.ParseError{Line: r.line, Column: ColCurveYield, Value: raw, Err: err}
		}
		c[t] = v
	}

	if err := curve.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCurveFile reads a yield-curve CSV file.
func LoadCurveFile(path string) (models.YieldCurve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curve: %w", err)
	}
	defer f.Close()

	c, err := ParseCurveCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return c, nil
}
