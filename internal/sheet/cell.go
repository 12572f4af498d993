// Package sheet models the raw cell matrix delivered by a spreadsheet
// export and the sources it can be read from.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is one raw spreadsheet value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Cell struct {
	Kind Kind
	text string
	num  float64
	date time.Time
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: KindNumber, num: f} }

// Date returns a date cell.
func Date(t time.Time) Cell { return Cell{Kind: KindDate, date: t} }

// IsEmpty reports whether the cell has no value, including whitespace-only text.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(c.text) == ""
	default:
		return false
	}
}

// TextValue returns the cell's text and true only for text cells.
func (c Cell) TextValue() (string, bool) {
	if c.Kind != KindText {
		return "", false
	}
	return c.text, true
}

// String renders any cell as plain text. Numbers use the shortest
// representation and dates are formatted as YYYY-MM-DD.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindDate:
		return c.date.Format("2006-01-02")
	default:
		return ""
	}
}

// DateRangeText returns the trimmed text to hand to the date-range parser.
// Only text cells carry ranges; every other kind yields "".
func (c Cell) DateRangeText() string {
	s, ok := c.TextValue()
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// ScopeName returns the trimmed value used to name an entity (a country).
// Numeric names are accepted, dates are not.
func (c Cell) ScopeName() string {
	if c.Kind == KindDate {
		return ""
	}
	return strings.TrimSpace(c.String())
}

// Row is one spreadsheet row.
type Row []Cell

// At returns the cell at index i, or an empty cell when i is out of range.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Empty()
	}
	return r[i]
}

// Matrix is the full decoded sheet.
type Matrix []Row

// TextRow is a convenience for building rows of text cells; "" becomes an
// empty cell.
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = Empty()
			continue
		}
		row[i] = Text(v)
	}
	return row
}
