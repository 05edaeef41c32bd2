// Package recommend decides which chart kinds fit a set of classified columns
// and which columns fill each chart's roles.
package recommend

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
)

// ChartKind names a rendering strategy.
type ChartKind string

const (
	Line    ChartKind = "line"
	Area    ChartKind = "area"
	Bar     ChartKind = "bar"
	Pie     ChartKind = "pie"
	Scatter ChartKind = "scatter"
	Radar   ChartKind = "radar"
)

// MaxRadarKeys caps the numeric columns a radar chart plots.
const MaxRadarKeys = 5

// Kinds lists every chart kind in suggestion order.
func Kinds() []ChartKind {
	return []ChartKind{Line, Area, Bar, Pie, Scatter, Radar}
}

// ParseKind validates a chart kind token, ignoring case.
func ParseKind(s string) (ChartKind, error) {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown chart kind %q (use one of %s)", s, kindList())
	}
	return k, nil
}

// Valid reports whether k is a known kind.
func (k ChartKind) Valid() bool {
	switch k {
	case Line, Area, Bar, Pie, Scatter, Radar:
		return true
	}
	return false
}

// Title is the display name, e.g. "Line".
func (k ChartKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

func kindList() string {
	parts := make([]string, 0, 6)
	for _, k := range Kinds() {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ", ")
}

// Suggest returns the applicable chart kinds, each at most once, in the
// order of Kinds. No applicable kind yields an empty, non-nil slice.
func Suggest(cols []analysis.ColumnInfo) []ChartKind {
	n := analysis.CountTypes(cols)
	out := []ChartKind{}
	if n.Numeric >= 1 && (n.Date >= 1 || n.Categorical >= 1) {
		out = append(out, Line, Area)
	}
	if n.Numeric >= 1 && n.Categorical >= 1 {
		out = append(out, Bar, Pie)
	}
	if n.Numeric >= 2 {
		out = append(out, Scatter)
	}
	if n.Categorical >= 1 && n.Numeric >= 2 {
		out = append(out, Radar)
	}
	return out
}

// Bind returns a role-bound suggestion for every kind Suggest returns.
func Bind(cols []analysis.ColumnInfo) []Suggestion {
	kinds := Suggest(cols)
	out := make([]Suggestion, 0, len(kinds))
	for _, k := range kinds {
		b, err := BindKind(k, cols)
		if err != nil {
			continue
		}
		out = append(out, Suggestion{Kind: k, Binding: b})
	}
	return out
}

// BindKind resolves the roles of a single chart kind. Each role takes the
// first matching column in column order.
func BindKind(k ChartKind, cols []analysis.ColumnInfo) (Binding, error) {
	numeric := analysis.NamesOf(cols, analysis.Numeric, 0)
	category, hasCategory := analysis.FirstOf(cols, analysis.Categorical)
	switch k {
	case Line, Area:
		x, ok := analysis.FirstOf(cols, analysis.Date, analysis.Categorical)
		if !ok {
			return nil, &RoleError{Kind: k, Role: "xAxis", Want: "a date or categorical column"}
		}
		if len(numeric) == 0 {
			return nil, &RoleError{Kind: k, Role: "yAxis", Want: "a numeric column"}
		}
		return AxisBinding{XAxis: x, YAxis: numeric[:1]}, nil
	case Scatter:
		if len(numeric) < 2 {
			return nil, &RoleError{Kind: k, Role: "yAxis", Want: "two numeric columns"}
		}
		return AxisBinding{XAxis: numeric[0], YAxis: numeric[1:2]}, nil
	case Bar:
		if !hasCategory {
			return nil, &RoleError{Kind: k, Role: "categoryKey", Want: "a categorical column"}
		}
		if len(numeric) == 0 {
			return nil, &RoleError{Kind: k, Role: "valueKey", Want: "a numeric column"}
		}
		return BarBinding{CategoryKey: category, ValueKey: numeric[0]}, nil
	case Pie:
		if !hasCategory {
			return nil, &RoleError{Kind: k, Role: "nameKey", Want: "a categorical column"}
		}
		if len(numeric) == 0 {
			return nil, &RoleError{Kind: k, Role: "valueKey", Want: "a numeric column"}
		}
		return PieBinding{NameKey: category, ValueKey: numeric[0]}, nil
	case Radar:
		if !hasCategory {
			return nil, &RoleError{Kind: k, Role: "categoryKey", Want: "a categorical column"}
		}
		if len(numeric) < 2 {
			return nil, &RoleError{Kind: k, Role: "valueKeys", Want: "at least two numeric columns"}
		}
		return RadarBinding{CategoryKey: category, ValueKeys: numeric[:min(len(numeric), MaxRadarKeys)]}, nil
	}
	return nil, fmt.Errorf("unknown chart kind %q", k)
}

// RoleError reports a chart role no column can fill.
type RoleError struct {
	Kind ChartKind
	Role string
	Want string
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s chart: %s needs %s", e.Kind, e.Role, e.Want)
}
