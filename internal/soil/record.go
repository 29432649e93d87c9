package soil

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField means a schema column had no value in the snapshot.
	ErrMissingField = errors.New("missing required field")

	// ErrLabelCell means a numeric view was requested of a record holding a
	// raw class label.
	ErrLabelCell = errors.New("record holds a non-numeric label")
)

// Cell is one column of a Record. Label cells carry a raw class string.
type Cell struct {
	Column  string
	Num     float64
	Label   string
	IsLabel bool
}

// Value returns the cell as the model sees it: the label or the number.
func (c Cell) Value() any {
	if c.IsLabel {
		return c.Label
	}
	return c.Num
}

// Record is the single-row table handed to a model.
type Record struct {
	Variant string
	Cells   []Cell
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		cols[i] = c.Column
	}
	return cols
}

// Float64s returns the row as numbers.
func (r Record) Float64s() ([]float64, error) {
	row := make([]float64, len(r.Cells))
	for i, c := range r.Cells {
		if c.IsLabel {
			return nil, fmt.Errorf("%w: column %s = %q", ErrLabelCell, c.Column, c.Label)
		}
		row[i] = c.Num
	}
	return row, nil
}

// Get returns the cell for column.
func (r Record) Get(column string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Column == column {
			return c, true
		}
	}
	return Cell{}, false
}

// Map returns column → value, for JSON output.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Cells))
	for _, c := range r.Cells {
		m[c.Column] = c.Value()
	}
	return m
}

// Swap returns a copy with the cells at i and j exchanged.
func (r Record) Swap(i, j int) Record {
	cells := append([]Cell(nil), r.Cells...)
	cells[i], cells[j] = cells[j], cells[i]
	return Record{Variant: r.Variant, Cells: cells}
}

// Assemble maps a snapshot onto the variant's model schema. Values whose keys
// are not part of the schema are dropped.
func Assemble(v Variant, s Snapshot) (Record, error) {
	rec := Record{Variant: v.Name, Cells: make([]Cell, 0, len(v.Columns))}
	for _, col := range v.Columns {
		if col == ColumnSoilClass {
			cell, err := classCell(v, s.Class())
			if err != nil {
				return Record{}, err
			}
			rec.Cells = append(rec.Cells, cell)
			continue
		}
		f, ok := v.FieldForColumn(col)
		if !ok {
			return Record{}, fmt.Errorf("%w: variant %s has no field for column %s", ErrMissingField, v.Name, col)
		}
		val, ok := s.Value(f.Key)
		if !ok {
			return Record{}, fmt.Errorf("%w: %s", ErrMissingField, f.Key)
		}
		rec.Cells = append(rec.Cells, Cell{Column: col, Num: val})
	}
	return rec, nil
}

func classCell(v Variant, label string) (Cell, error) {
	if label == "" {
		return Cell{}, fmt.Errorf("%w: %s", ErrMissingField, KeySoilClass)
	}
	switch v.Class {
	case ClassIndex:
		code, err := EncodeClass(label)
		if err != nil {
			return Cell{}, err
		}
		return Cell{Column: ColumnSoilClass, Num: float64(code)}, nil
	case ClassLabel:
		return Cell{Column: ColumnSoilClass, Label: label, IsLabel: true}, nil
	}
	return Cell{}, fmt.Errorf("variant %s has no soil class column", v.Name)
}
