// Package ingest reads CSV, TSV, XLSX and JSON files into datasets.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

// ErrUnsupported indicates a file format has no registered parser.
var ErrUnsupported = errors.New("unsupported data format")

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension and first line.
	Delimiter rune
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
}

// Parser reads one file format into a dataset.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, opt Options) (*dataset.Dataset, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}

// Supported reports whether a parser is registered for filename.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

// Parse selects a parser by filename and reads r with it.
func Parse(filename string, r io.Reader, opt Options) (*dataset.Dataset, error) {
	p := lookup(filename)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
	}
	ds, err := p.Parse(r, opt)
	if err != nil {
		return nil, err
	}
	ds.Name = filepath.Base(filename)
	return ds, nil
}

// ParseFile opens path and parses it with the matching parser.
func ParseFile(path string, opt Options) (*dataset.Dataset, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return Parse(path, f, opt)
}

func lookup(filename string) Parser {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// table accumulates header-plus-records input into a dataset.
type table struct {
	columns []string
	rows    []dataset.Row
	seen    int
	maxRows int
}

func newTable(header []string, maxRows int) *table {
	return &table{columns: headerNames(header), maxRows: maxRows}
}

// add appends one record. Short records are padded with nulls; extra cells
// beyond the header are ignored.
func (t *table) add(cells []dataset.Value) {
	t.seen++
	if t.maxRows > 0 && len(t.rows) >= t.maxRows {
		return
	}
	r := make(dataset.Row, len(t.columns))
	for i, col := range t.columns {
		if i < len(cells) {
			r[col] = cells[i]
		} else {
			r[col] = dataset.Null()
		}
	}
	t.rows = append(t.rows, r)
}

func (t *table) dataset() *dataset.Dataset {
	ds := dataset.New(t.columns, t.rows)
	if len(t.rows) < t.seen {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(t.rows), t.seen))
	}
	return ds
}

// headerNames trims header cells, names blank ones column_N and suffixes
// duplicates with _2, _3 and so on.
func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := map[string]bool{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// textCell maps a raw text cell to a value; blank cells are null.
func textCell(s string) dataset.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return dataset.Null()
	}
	return dataset.String(s)
}
