// Package datasource loads bond portfolios and yield curves from the inputs
// the dashboard accepts: CSV uploads, pasted text and HTML tables.
//
// Every loader normalizes headers to the canonical column names, rejects
// tables missing a required column, and reports malformed cells as
// *models.ParseError with the offending line.
package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/seenimoa/treasuryrisk/pkg/models"
	"github.com/seenimoa/treasuryrisk/pkg/utils"
)

// Format identifies the encoding of a portfolio input.
type Format string

// Supported portfolio formats.
const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat resolves a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "text", "txt", "paste":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unknown portfolio format %q", models.ErrInvalidInput, s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".tsv":
		return FormatText
	}
	return FormatCSV
}

// Parse reads a portfolio in the given format.
func Parse(r io.Reader, f Format) ([]models.BondRecord, error) {
	switch f {
	case FormatCSV:
		return ParseCSV(r)
	case FormatHTML:
		return ParseHTML(r)
	case FormatText:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read portfolio: %w", err)
		}
		return ParseText(string(b))
	}
	return nil, fmt.Errorf("%w: unknown portfolio format %q", models.ErrInvalidInput, f)
}

// LoadFile reads a portfolio file, picking the format from its extension.
func LoadFile(path string) ([]models.BondRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer f.Close()

	bonds, err := Parse(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return bonds, nil
}

// row is one table row with its 1-based line in the source.
type row struct {
	line  int
	cells []string
}

func (r row) cell(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) blank() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readDelimited splits delimited text into rows. Blank lines are skipped.
func readDelimited(r io.Reader, comma rune) ([]row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &models.ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("read table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rw := row{line: line, cells: rec}
		if rw.blank() {
			continue
		}
		rows = append(rows, rw)
	}
	if len(rows) > 0 {
		rows[0].cells[0] = strings.TrimPrefix(rows[0].cells[0], "\ufeff")
	}
	return rows, nil
}

// bondsFromTable converts rows into bonds. The first row is the header.
func bondsFromTable(rows []row) ([]models.BondRecord, error) {
	if len(rows) == 0 {
		return nil, &models.MissingColumnsError{Missing: append([]string(nil), models.RequiredColumns...)}
	}
	idx, err := indexColumns(rows[0].cells)
	if err != nil {
		return nil, err
	}
	return bondsFromRows(rows[1:], idx)
}

func bondsFromRows(rows []row, idx columnIndex) ([]models.BondRecord, error) {
	bonds := make([]models.BondRecord, 0, len(rows))
	for _, r := range rows {
		if r.blank() {
			continue
		}
		b, err := toBond(r, idx)
		if err != nil {
			return nil, err
		}
		bonds = append(bonds, b)
	}
	return bonds, nil
}

func toBond(r row, idx columnIndex) (models.BondRecord, error) {
	var b models.BondRecord

	b.ISIN = utils.NormalizeISIN(r.cell(idx[models.ColISIN]))
	if b.ISIN == "" {
		return b, &models.ParseError{Line: r.line, Column: models.ColISIN, Err: errors.New("empty identifier")}
	}
	if !utils.IsValidISIN(b.ISIN) {
		slog.Debug("identifier is not a well-formed ISIN", "line", r.line, "isin", b.ISIN)
	}

	raw := r.cell(idx[models.ColMaturity])
	d, err := models.ParseDate(raw)
	if err != nil {
		return b, &models.ParseError{Line: r.line, Column: models.ColMaturity, Value: raw, Err: err}
	}
	b.Maturity = d

	fields := []struct {
		col string
		dst *float64
	}{
		{models.ColCoupon, &b.Coupon},
		{models.ColYield, &b.Yield},
		{models.ColMarketValue, &b.MarketValue},
		{models.ColDuration, &b.Duration},
	}
	for _, f := range fields {
		v, err := number(r, f.col, r.cell(idx[f.col]))
		if err != nil {
			return b, err
		}
		*f.dst = v
	}

	if i, ok := idx[models.ColConvexity]; ok {
		if raw := r.cell(i); raw != "" {
			v, err := number(r, models.ColConvexity, raw)
			if err != nil {
				return b, err
			}
			b.Convexity = v
		}
	}

	if b.MarketValue < 0 {
		return b, fmt.Errorf("%w: line %d: market value of %s is negative (%v)",
			models.ErrInvalidInput, r.line, b.ISIN, b.MarketValue)
	}
	return b, nil
}

func number(r row, col, raw string) (float64, error) {
	v, err := utils.ParseNumber(raw)
	if err != nil {
		return 0, &models.ParseError{Line: r.line, Column: col, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &models.ParseError{Line: r.line, Column: col, Value: raw, Err: errors.New("not a finite number")}
	}
	return v, nil
}
