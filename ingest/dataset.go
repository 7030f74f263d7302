package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/melkeydev/datadesk/types"
)

// Kind is the uniform kind of every value held by a dataset column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column holds the values of one named column. Values are int64, float64,
// time.Time or string according to Kind; a nil value is an empty cell.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Dataset is tabular data with named columns of equal length.
type Dataset struct {
	Columns []Column
}

// NewDataset builds a dataset from a header row and string cells, deciding
// the kind of each column from all of its non-empty cells. Rows shorter than
// the header are padded with empty cells.
func NewDataset(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, types.ErrEmptyDataset
	}

	seen := make(map[string]bool, len(header))
	ds := &Dataset{Columns: make([]Column, len(header))}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", types.ErrInvalidDataset, name)
		}
		seen[name] = true
		ds.Columns[i].Name = name
	}

	cells := make([][]string, len(header))
	for r, row := range rows {
		if len(row) > len(header) {
			for _, extra := range row[len(header):] {
				if strings.TrimSpace(extra) != "" {
					return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", types.ErrInvalidDataset, r+1, len(row), len(header))
				}
			}
		}
		for c := range header {
			var cell string
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			cells[c] = append(cells[c], cell)
		}
	}

	for c := range ds.Columns {
		kind := detectKind(cells[c])
		ds.Columns[c].Kind = kind
		ds.Columns[c].Values = convert(cells[c], kind)
	}

	return ds, nil
}

// Validate reports a dataset whose columns differ in length, which can only
// happen when Columns is built by hand.
func (d *Dataset) Validate() error {
	for _, c := range d.Columns {
		if len(c.Values) != len(d.Columns[0].Values) {
			return fmt.Errorf("%w: column %q has %d values, column %q has %d",
				types.ErrInvalidDataset, c.Name, len(c.Values), d.Columns[0].Name, len(d.Columns[0].Values))
		}
	}
	return nil
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// Row returns the values at index i, in column order.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.Columns))
	for c := range d.Columns {
		row[c] = d.Columns[c].Values[i]
	}
	return row
}

func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func detectKind(cells []string) Kind {
	isInt, isFloat, isTime := true, true, true
	nonEmpty := false

	for _, cell := range cells {
		if cell == "" {
			continue
		}
		nonEmpty = true
		if isInt {
			_, err := strconv.ParseInt(cell, 10, 64)
			isInt = err == nil
		}
		if isFloat {
			_, ok := parseFloat(cell)
			isFloat = ok
		}
		if isTime {
			_, ok := parseTimestamp(cell)
			isTime = ok
		}
		if !isInt && !isFloat && !isTime {
			return KindText
		}
	}

	switch {
	case !nonEmpty:
		return KindText
	case isInt:
		return KindInteger
	case isFloat:
		return KindFloat
	case isTime:
		return KindTimestamp
	default:
		return KindText
	}
}

func convert(cells []string, kind Kind) []any {
	values := make([]any, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		switch kind {
		case KindInteger:
			values[i], _ = strconv.ParseInt(cell, 10, 64)
		case KindFloat:
			values[i], _ = parseFloat(cell)
		case KindTimestamp:
			values[i], _ = parseTimestamp(cell)
		default:
			values[i] = cell
		}
	}
	return values
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range types.TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
