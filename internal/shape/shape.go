// Package shape turns rows into the per-chart data a renderer consumes.
//
// Every shaper re-resolves its own roles from the column list and reports a
// *ConfigError instead of failing when a role cannot be filled.
package shape

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
)

var (
	// ErrInvalidConfig marks a chart whose roles cannot be resolved.
	ErrInvalidConfig = errors.New("invalid chart configuration")
	// ErrUnknownKind is returned by Shape for kinds with no shaper.
	ErrUnknownKind = errors.New("unknown chart kind")
)

// ConfigError explains which role is missing for a chart kind.
type ConfigError struct {
	Kind   recommend.ChartKind
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s chart configuration is invalid: %s", e.Kind, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Placeholder is the text shown in place of the chart.
func (e *ConfigError) Placeholder() string {
	return fmt.Sprintf("%s chart configuration is invalid.", e.Kind.Title())
}

// Series is shaped chart data ready for JSON encoding.
type Series interface {
	Kind() recommend.ChartKind
	Len() int
}

// Shaper builds one chart kind's series.
type Shaper func(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error)

var shapers = map[recommend.ChartKind]Shaper{
	recommend.Line:    Line,
	recommend.Area:    Area,
	recommend.Bar:     Bar,
	recommend.Pie:     Pie,
	recommend.Scatter: Scatter,
	recommend.Radar:   Radar,
}

// Shape dispatches to the shaper registered for kind.
func Shape(kind recommend.ChartKind, rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	fn, ok := shapers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fn(rows, cols)
}

// Result is the outcome of shaping one kind.
type Result struct {
	Kind   recommend.ChartKind
	Series Series
	Err    error
}

// ShapeAll shapes each kind independently; one kind failing leaves the
// others intact.
func ShapeAll(kinds []recommend.ChartKind, rows []dataset.Row, cols []analysis.ColumnInfo) []Result {
	out := make([]Result, 0, len(kinds))
	for _, k := range kinds {
		s, err := Shape(k, rows, cols)
		out = append(out, Result{Kind: k, Series: s, Err: err})
	}
	return out
}

func invalid(kind recommend.ChartKind, format string, args ...any) error {
	return &ConfigError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}
