package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// ReadCSV decodes a CSV export. CSV carries no types, so every non-empty
// value becomes a text cell. Ragged rows are kept as-is.
func ReadCSV(r io.Reader) (Matrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var m Matrix
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		m = append(m, TextRow(record...))
	}
	return m, nil
}

// ReadJSON decodes a JSON array of row arrays. Strings become text cells,
// numbers become numeric cells, null becomes empty and booleans are kept as
// their text form.
func ReadJSON(data []byte) (Matrix, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("read json: invalid document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("read json: expected an array of rows")
	}

	var (
		m      Matrix
		rowErr error
	)
	root.ForEach(func(idx, value gjson.Result) bool {
		if value.Type == gjson.Null {
			m = append(m, nil)
			return true
		}
		if !value.IsArray() {
			rowErr = fmt.Errorf("read json: row %d is not an array", idx.Int())
			return false
		}
		var row Row
		value.ForEach(func(_, v gjson.Result) bool {
			row = append(row, cellFromJSON(v))
			return true
		})
		m = append(m, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return m, nil
}

func cellFromJSON(v gjson.Result) Cell {
	switch v.Type {
	case gjson.String:
		if v.Str == "" {
			return Empty()
		}
		return Text(v.Str)
	case gjson.Number:
		return Number(v.Num)
	case gjson.True, gjson.False:
		return Text(v.Raw)
	default:
		return Empty()
	}
}
