package shape

import (
	"encoding/json"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
)

// dateLabelLayout renders dates like "Jan 5".
const dateLabelLayout = "Jan 2"

// AxisSeries is row-shaped data for line, area and scatter charts.
type AxisSeries struct {
	ChartKind recommend.ChartKind
	XKey      string
	YKeys     []string
	Rows      []dataset.Row
}

func (s *AxisSeries) Kind() recommend.ChartKind { return s.ChartKind }
func (s *AxisSeries) Len() int                  { return len(s.Rows) }

func (s *AxisSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ChartType recommend.ChartKind `json:"chartType"`
		XAxis     string              `json:"xAxis"`
		YAxis     []string            `json:"yAxis"`
		Data      []dataset.Row       `json:"data"`
	}{s.ChartKind, s.XKey, s.YKeys, nonNilRows(s.Rows)})
}

// BarSeries is one bar per row.
type BarSeries struct {
	CategoryKey string
	ValueKey    string
	Rows        []dataset.Row
}

func (s *BarSeries) Kind() recommend.ChartKind { return recommend.Bar }
func (s *BarSeries) Len() int                  { return len(s.Rows) }

func (s *BarSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ChartType   recommend.ChartKind `json:"chartType"`
		CategoryKey string              `json:"categoryKey"`
		ValueKey    string              `json:"valueKey"`
		Data        []dataset.Row       `json:"data"`
	}{recommend.Bar, s.CategoryKey, s.ValueKey, nonNilRows(s.Rows)})
}

// Line plots the first numeric column against the first date-or-categorical
// column. Date x values become short labels; rows keep their order.
func Line(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	return timeline(recommend.Line, rows, cols)
}

// Area shapes exactly like Line.
func Area(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	return timeline(recommend.Area, rows, cols)
}

func timeline(kind recommend.ChartKind, rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	x, ok := analysis.FirstOf(cols, analysis.Date, analysis.Categorical)
	if !ok {
		return nil, invalid(kind, "no date or categorical column for the x axis")
	}
	y, ok := analysis.FirstOf(cols, analysis.Numeric)
	if !ok {
		return nil, invalid(kind, "no numeric column for the y axis")
	}
	isDate := false
	if t, ok := analysis.TypeOf(cols, x); ok && t == analysis.Date {
		isDate = true
	}
	out := make([]dataset.Row, len(rows))
	for i, r := range rows {
		if !isDate {
			out[i] = r
			continue
		}
		c := r.Clone()
		if t, ok := analysis.ParseDate(r[x]); ok {
			c[x] = dataset.String(t.UTC().Format(dateLabelLayout))
		}
		out[i] = c
	}
	return &AxisSeries{ChartKind: kind, XKey: x, YKeys: []string{y}, Rows: out}, nil
}

// Bar draws one bar per row, first categorical column against first numeric.
func Bar(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	c, ok := analysis.FirstOf(cols, analysis.Categorical)
	if !ok {
		return nil, invalid(recommend.Bar, "no categorical column for the category axis")
	}
	v, ok := analysis.FirstOf(cols, analysis.Numeric)
	if !ok {
		return nil, invalid(recommend.Bar, "no numeric column for the values")
	}
	return &BarSeries{CategoryKey: c, ValueKey: v, Rows: append([]dataset.Row(nil), rows...)}, nil
}

// Scatter plots the second numeric column against the first, one point per row.
func Scatter(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	nums := analysis.NamesOf(cols, analysis.Numeric, 2)
	if len(nums) < 2 {
		return nil, invalid(recommend.Scatter, "needs two numeric columns, found %d", len(nums))
	}
	return &AxisSeries{
		ChartKind: recommend.Scatter,
		XKey:      nums[0],
		YKeys:     nums[1:2],
		Rows:      append([]dataset.Row(nil), rows...),
	}, nil
}

func nonNilRows(rows []dataset.Row) []dataset.Row {
	if rows == nil {
		return []dataset.Row{}
	}
	return rows
}
