package domain

import (
	"strconv"
)

// CellKind identifies the type held by a Cell
type CellKind uint8

const (
	CellNull CellKind = iota
	CellText
	CellNumber
	CellInteger
)

// Cell is a single typed value of a cleaned table
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Int    int64
}

// NullCell returns an empty cell
func NullCell() Cell { return Cell{Kind: CellNull} }

// TextCell wraps a string value
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell wraps a float value
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// IntCell wraps an integer value
func IntCell(i int64) Cell { return Cell{Kind: CellInteger, Int: i} }

// IsNull reports whether the cell carries no value
func (c Cell) IsNull() bool { return c.Kind == CellNull }

// String renders the cell the way exports expect: NULL becomes empty,
// floats use the shortest round-trip representation.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellInteger:
		return strconv.FormatInt(c.Int, 10)
	default:
		return ""
	}
}

// Float returns the numeric value of the cell, if any
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellInteger:
		return float64(c.Int), true
	default:
		return 0, false
	}
}

// Table is a header plus rows of typed cells. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Index returns the position of a column or -1
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries the named column
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Clone returns a deep copy so callers can transform without touching the source
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}
