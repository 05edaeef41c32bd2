// Package analysis classifies dataset columns and summarizes them for charting.
package analysis

import "fmt"

// ColumnType is the semantic type assigned to a column.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Date        ColumnType = "date"
	Categorical ColumnType = "categorical"
)

// ParseColumnType validates a wire token.
func ParseColumnType(s string) (ColumnType, error) {
	switch t := ColumnType(s); t {
	case Numeric, Date, Categorical:
		return t, nil
	}
	return "", fmt.Errorf("unknown column type %q", s)
}

// ColumnInfo pairs a column name with its inferred type.
type ColumnInfo struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Is reports whether c has one of the given types.
func (c ColumnInfo) Is(types ...ColumnType) bool {
	for _, t := range types {
		if c.Type == t {
			return true
		}
	}
	return false
}

// Counts tallies columns per type.
type Counts struct {
	Numeric     int
	Date        int
	Categorical int
}

// CountTypes counts the classified columns.
func CountTypes(cols []ColumnInfo) Counts {
	var n Counts
	for _, c := range cols {
		switch c.Type {
		case Numeric:
			n.Numeric++
		case Date:
			n.Date++
		case Categorical:
			n.Categorical++
		}
	}
	return n
}

// FirstOf returns the first column, in column order, having any of types.
func FirstOf(cols []ColumnInfo, types ...ColumnType) (string, bool) {
	for _, c := range cols {
		if c.Is(types...) {
			return c.Name, true
		}
	}
	return "", false
}

// NamesOf returns up to limit column names of type t in column order.
// limit <= 0 means no limit.
func NamesOf(cols []ColumnInfo, t ColumnType, limit int) []string {
	var out []string
	for _, c := range cols {
		if c.Type != t {
			continue
		}
		out = append(out, c.Name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// TypeOf looks up the type of the named column.
func TypeOf(cols []ColumnInfo, name string) (ColumnType, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}
