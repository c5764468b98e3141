package datasource

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/treasuryrisk/pkg/models"
)

// ParseCSV reads a comma-separated portfolio. The first row must be a header.
func ParseCSV(r io.Reader) ([]models.BondRecord, error) {
	rows, err := readDelimited(r, ',')
	if err != nil {
		return nil, err
	}
	return bondsFromTable(rows)
}

// ParseText reads a pasted portfolio. Tabs, commas or semicolons separate
// fields, whichever the first line uses. A header row is detected
// automatically; without one every row must list ISIN, Maturity, Coupon,
// Yield, Market Value, Duration and optionally Convexity, in that order.
func ParseText(s string) ([]models.BondRecord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: no portfolio data entered", models.ErrInvalidInput)
	}

	rows, err := readDelimited(strings.NewReader(s), detectDelimiter(s))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no portfolio data entered", models.ErrInvalidInput)
	}
	if looksLikeHeader(rows[0].cells) {
		return bondsFromTable(rows)
	}

	lo, hi := len(models.RequiredColumns), len(models.RequiredColumns)+1
	for _, r := range rows {
		if n := len(r.cells); n < lo || n > hi {
			return nil, &models.ParseError{
				Line: r.line,
				Err:  fmt.Errorf("expected %d or %d fields (ISIN, Maturity, Coupon, Yield, Market Value, Duration[, Convexity]), got %d", lo, hi, n),
			}
		}
	}
	return bondsFromRows(rows, canonicalIndex(hi))
}

func detectDelimiter(s string) rune {
	first, _, _ := strings.Cut(s, "\n")
	switch {
	case strings.Contains(first, "\t"):
		return '\t'
	case strings.Contains(first, ","):
		return ','
	case strings.Contains(first, ";"):
		return ';'
	}
	return ','
}

// ParseHTML reads the first <table> of an HTML document, such as a
// portfolio exported from a spreadsheet or copied from a custodian page.
// Header cells come from the first row; <th> and <td> are both accepted.
func ParseHTML(r io.Reader) ([]models.BondRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no <table> found in document", models.ErrInvalidInput)
	}

	var rows []row
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		// Rows of nested tables belong to their own table.
		if tr.Closest("table").Get(0) != table.Get(0) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		rw := row{line: len(rows) + 1, cells: cells}
		if rw.blank() {
			return
		}
		rows = append(rows, rw)
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table has no rows", models.ErrInvalidInput)
	}
	return bondsFromTable(rows)
}
