package shape

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
)

const (
	// MaxPieSlices is the slice count above which small groups fold into OtherSlice.
	MaxPieSlices = 6
	// MaxRadarItems caps the categories drawn on a radar chart.
	MaxRadarItems = 7
	// OtherSlice names the folded pie slice.
	OtherSlice = "Other"
)

var leadingFloatRe = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// Slice is one pie wedge.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MarshalJSON writes a non-finite sum as null.
func (s Slice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string        `json:"name"`
		Value dataset.Value `json:"value"`
	}{s.Name, dataset.Number(s.Value)})
}

// PieSeries is grouped and summed pie data.
type PieSeries struct {
	NameKey  string
	ValueKey string
	Slices   []Slice
}

func (s *PieSeries) Kind() recommend.ChartKind { return recommend.Pie }
func (s *PieSeries) Len() int                  { return len(s.Slices) }

func (s *PieSeries) MarshalJSON() ([]byte, error) {
	slices := s.Slices
	if slices == nil {
		slices = []Slice{}
	}
	return json.Marshal(struct {
		ChartType recommend.ChartKind `json:"chartType"`
		NameKey   string              `json:"nameKey"`
		ValueKey  string              `json:"valueKey"`
		Data      []Slice             `json:"data"`
	}{recommend.Pie, s.NameKey, s.ValueKey, slices})
}

// Pie groups rows by the first categorical column and sums the first numeric
// column. Rows with a falsy name or an unparseable value are skipped. Groups
// keep first-seen order unless there are more than MaxPieSlices, in which
// case they are sorted by value, descending, and everything past the top
// MaxPieSlices-1 folds into an OtherSlice entry.
func Pie(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	nameKey, ok := analysis.FirstOf(cols, analysis.Categorical)
	if !ok {
		return nil, invalid(recommend.Pie, "no categorical column for slice names")
	}
	valueKey, ok := analysis.FirstOf(cols, analysis.Numeric)
	if !ok {
		return nil, invalid(recommend.Pie, "no numeric column for slice values")
	}
	index := map[string]int{}
	var groups []Slice
	for _, r := range rows {
		name := r[nameKey]
		if !truthy(name) {
			continue
		}
		v := leadingFloat(r[valueKey])
		if math.IsNaN(v) {
			continue
		}
		key := name.String()
		if i, ok := index[key]; ok {
			groups[i].Value += v
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Slice{Name: key, Value: v})
	}
	if len(groups) > MaxPieSlices {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
		var other float64
		for _, g := range groups[MaxPieSlices-1:] {
			other += g.Value
		}
		groups = append(groups[:MaxPieSlices-1:MaxPieSlices-1], Slice{Name: OtherSlice, Value: other})
	}
	return &PieSeries{NameKey: nameKey, ValueKey: valueKey, Slices: groups}, nil
}

// RadarPoint is the per-category mean of each value key.
type RadarPoint struct {
	Category dataset.Value
	Values   map[string]float64
	Count    int
}

// RadarSeries is averaged radar data.
type RadarSeries struct {
	CategoryKey string
	ValueKeys   []string
	Points      []RadarPoint
}

func (s *RadarSeries) Kind() recommend.ChartKind { return recommend.Radar }
func (s *RadarSeries) Len() int                  { return len(s.Points) }

// MarshalJSON emits each point as a flat record keyed by column name, the
// category first, then the value keys, then "count".
func (s *RadarSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"chartType":"radar","categoryKey":`)
	if err := writeJSON(&buf, s.CategoryKey); err != nil {
		return nil, err
	}
	buf.WriteString(`,"valueKeys":`)
	if err := writeJSON(&buf, nonNilStrings(s.ValueKeys)); err != nil {
		return nil, err
	}
	buf.WriteString(`,"data":[`)
	for i, p := range s.Points {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeField(&buf, s.CategoryKey, p.Category); err != nil {
			return nil, err
		}
		seen := map[string]bool{s.CategoryKey: true}
		for _, k := range s.ValueKeys {
			if seen[k] {
				continue
			}
			seen[k] = true
			buf.WriteByte(',')
			if err := writeField(&buf, k, dataset.Number(p.Values[k])); err != nil {
				return nil, err
			}
		}
		if !seen["count"] {
			buf.WriteByte(',')
			if err := writeField(&buf, "count", p.Count); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// Radar groups rows by the first categorical column and averages up to
// MaxRadarKeys numeric columns. A value that does not parse counts as zero
// but still counts toward the mean. Points are sorted by the first value
// key, descending, and cut to MaxRadarItems.
func Radar(rows []dataset.Row, cols []analysis.ColumnInfo) (Series, error) {
	catKey, ok := analysis.FirstOf(cols, analysis.Categorical)
	if !ok {
		return nil, invalid(recommend.Radar, "no categorical column for the categories")
	}
	keys := analysis.NamesOf(cols, analysis.Numeric, recommend.MaxRadarKeys)
	if len(keys) < 2 {
		return nil, invalid(recommend.Radar, "needs at least two numeric columns, found %d", len(keys))
	}
	index := map[string]int{}
	var points []RadarPoint
	for _, r := range rows {
		cat := r[catKey]
		if !truthy(cat) {
			continue
		}
		id := cat.String()
		i, ok := index[id]
		if !ok {
			i = len(points)
			index[id] = i
			points = append(points, RadarPoint{Category: cat, Values: make(map[string]float64, len(keys))})
		}
		for _, k := range keys {
			v := leadingFloat(r[k])
			if math.IsNaN(v) {
				v = 0
			}
			points[i].Values[k] += v
		}
		points[i].Count++
	}
	for _, p := range points {
		for _, k := range keys {
			p.Values[k] /= float64(p.Count)
		}
	}
	first := keys[0]
	sort.SliceStable(points, func(i, j int) bool { return points[i].Values[first] > points[j].Values[first] })
	if len(points) > MaxRadarItems {
		points = points[:MaxRadarItems]
	}
	return &RadarSeries{CategoryKey: catKey, ValueKeys: keys, Points: points}, nil
}

// leadingFloat reads the longest numeric prefix of v's text, NaN when there
// is none. Numbers pass through unchanged.
func leadingFloat(v dataset.Value) float64 {
	switch v.Kind() {
	case dataset.KindNumber:
		f, _ := v.Float()
		return f
	case dataset.KindString:
		s, _ := v.Text()
		m := leadingFloatRe.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
		if m == "" {
			return math.NaN()
		}
		switch strings.TrimLeft(m, "+-") {
		case "Infinity":
			if strings.HasPrefix(m, "-") {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil && !math.IsInf(f, 0) {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// truthy treats null, false, "", zero and NaN as false.
func truthy(v dataset.Value) bool {
	switch v.Kind() {
	case dataset.KindNull:
		return false
	case dataset.KindBool:
		b, _ := v.Boolean()
		return b
	case dataset.KindString:
		s, _ := v.Text()
		return s != ""
	case dataset.KindNumber:
		f, _ := v.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func writeField(buf *bytes.Buffer, key string, v any) error {
	if err := writeJSON(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return writeJSON(buf, v)
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
