// Package dataset holds uniform-keyed tabular rows and their ingestion rules.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Row maps column name to cell. A missing key reads as Null.
type Row map[string]Value

// Get returns the value for col, Null when absent.
func (r Row) Get(col string) Value { return r[col] }

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of rows sharing one key set.
type Dataset struct {
	Name     string
	Columns  []string
	Rows     []Row
	Warnings []string
}

// ErrInconsistentKeys is returned by Validate when a row's key set differs
// from the dataset columns.
var ErrInconsistentKeys = errors.New("inconsistent row keys")

// New builds a dataset and normalizes rows against columns. When columns is
// empty they are taken from the first row in sorted order.
func New(columns []string, rows []Row) *Dataset {
	if len(columns) == 0 && len(rows) > 0 {
		columns = ColumnsOf(rows[0])
	}
	d := &Dataset{Columns: columns, Rows: rows}
	d.Normalize()
	return d
}

// ColumnsOf lists a row's keys in sorted order.
func ColumnsOf(r Row) []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Len returns the row count.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether there is nothing to classify.
func (d *Dataset) Empty() bool { return d.Len() == 0 || len(d.Columns) == 0 }

// Normalize fills missing keys with Null and drops keys that are not columns.
// Both are reported once in Warnings.
func (d *Dataset) Normalize() {
	if d == nil {
		return
	}
	known := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		known[c] = struct{}{}
	}
	filled := 0
	dropped := map[string]int{}
	for i, r := range d.Rows {
		if r == nil {
			r = make(Row, len(d.Columns))
			d.Rows[i] = r
		}
		for _, c := range d.Columns {
			if _, ok := r[c]; !ok {
				r[c] = Null()
				filled++
			}
		}
		if len(r) == len(d.Columns) {
			continue
		}
		for k := range r {
			if _, ok := known[k]; !ok {
				dropped[k]++
				delete(r, k)
			}
		}
	}
	if filled > 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("filled %d missing value(s) with null", filled))
	}
	if len(dropped) > 0 {
		keys := make([]string, 0, len(dropped))
		for k := range dropped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d.Warnings = append(d.Warnings, fmt.Sprintf("dropped unknown key(s) not present in the first record: %s", strings.Join(keys, ", ")))
	}
}

// Validate checks that every row has exactly the dataset's columns.
func (d *Dataset) Validate() error {
	if d == nil {
		return nil
	}
	for i, r := range d.Rows {
		if len(r) != len(d.Columns) {
			return fmt.Errorf("row %d: %w: has %d keys, want %d", i+1, ErrInconsistentKeys, len(r), len(d.Columns))
		}
		for _, c := range d.Columns {
			if _, ok := r[c]; !ok {
				return fmt.Errorf("row %d: %w: missing %q", i+1, ErrInconsistentKeys, c)
			}
		}
	}
	return nil
}

// WithRows returns a dataset sharing d's columns over a different row set.
func (d *Dataset) WithRows(rows []Row) *Dataset {
	return &Dataset{Name: d.Name, Columns: d.Columns, Rows: rows, Warnings: d.Warnings}
}

// Column returns every value of col in row order.
func (d *Dataset) Column(col string) []Value {
	out := make([]Value, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[col]
	}
	return out
}

// Distinct lists the non-empty string forms of col in first-seen order.
func Distinct(rows []Row, col string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows {
		v := r[col]
		if v.IsEmpty() {
			continue
		}
		s := v.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
