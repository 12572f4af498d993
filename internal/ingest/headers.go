package ingest

import (
	"errors"
	"strings"

	"github.com/joshharrison/ganttloom/internal/sheet"
)

const (
	// NameHeader is the exact text of the country name column header.
	NameHeader = "Name of Country"
	// TaskHeaderSentinel identifies the task header row.
	TaskHeaderSentinel = "Malaria Program Reviews"

	taskHeaderWindow = 4
)

var (
	ErrEmptyMatrix     = errors.New("source matrix is empty")
	ErrHeadersNotFound = errors.New("could not find both header rows")
)

// Headers locates the header rows of a sheet.
type Headers struct {
	Main       int // row holding NameHeader
	Task       int // row holding the task sentinels
	NameColumn int
}

// LocateHeaders finds the first row with a cell equal to NameHeader and
// then, within the next four rows, the first row with a text cell
// containing TaskHeaderSentinel.
func LocateHeaders(m sheet.Matrix) (Headers, error) {
	if len(m) == 0 {
		return Headers{}, ErrEmptyMatrix
	}

	h := Headers{Main: -1, Task: -1, NameColumn: -1}
	for i, row := range m {
		if col := indexWhere(row, func(s string) bool { return s == NameHeader }); col >= 0 {
			h.Main, h.NameColumn = i, col
			break
		}
	}
	if h.Main < 0 {
		return Headers{}, ErrHeadersNotFound
	}

	last := min(h.Main+taskHeaderWindow, len(m)-1)
	for i := h.Main + 1; i <= last; i++ {
		if indexWhere(m[i], containing(TaskHeaderSentinel)) >= 0 {
			h.Task = i
			break
		}
	}
	if h.Task < 0 {
		return Headers{}, ErrHeadersNotFound
	}
	return h, nil
}

// ResolveColumns returns a copy of mappings with each Column set to the
// first task header cell containing its sentinel, or NotFound.
func ResolveColumns(taskHeader sheet.Row, mappings []Mapping) []Mapping {
	out := make([]Mapping, len(mappings))
	for i, mp := range mappings {
		mp.Column = indexWhere(taskHeader, containing(mp.Sentinel))
		out[i] = mp
	}
	return out
}

func containing(sub string) func(string) bool {
	return func(s string) bool { return sub != "" && strings.Contains(s, sub) }
}

// indexWhere returns the index of the first text cell satisfying pred.
func indexWhere(row sheet.Row, pred func(string) bool) int {
	for i, c := range row {
		if s, ok := c.TextValue(); ok && pred(s) {
			return i
		}
	}
	return NotFound
}
