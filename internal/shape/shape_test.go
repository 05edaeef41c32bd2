package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
)

var salesCols = []analysis.ColumnInfo{
	{Name: "region", Type: analysis.Categorical},
	{Name: "sales", Type: analysis.Numeric},
}

func row(kv ...any) dataset.Row {
	r := dataset.Row{}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = dataset.FromAny(kv[i+1])
	}
	return r
}

func TestPie_Aggregates(t *testing.T) {
	rows := []dataset.Row{
		row("region", "A", "sales", 10.0),
		row("region", "A", "sales", 5.0),
		row("region", "B", "sales", 3.0),
	}
	s, err := Pie(rows, salesCols)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	got := s.(*PieSeries).Slices
	want := []Slice{{Name: "A", Value: 15}, {Name: "B", Value: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slices = %v, want %v", got, want)
	}
}

func TestPie_OverflowFoldsIntoOther(t *testing.T) {
	var rows []dataset.Row
	for i := 1; i <= 8; i++ {
		rows = append(rows, row("region", fmt.Sprintf("r%d", i), "sales", float64(i*10)))
	}
	s, err := Pie(rows, salesCols)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	got := s.(*PieSeries).Slices
	if len(got) != MaxPieSlices {
		t.Fatalf("slices = %d, want %d", len(got), MaxPieSlices)
	}
	last := got[len(got)-1]
	if last.Name != OtherSlice || last.Value != 10+20+30 {
		t.Fatalf("other slice = %+v, want sum of three smallest (60)", last)
	}
	if got[0].Name != "r8" || got[0].Value != 80 {
		t.Fatalf("largest slice should lead, got %+v", got[0])
	}
}

func TestPie_SkipsFalsyNamesAndBadValues(t *testing.T) {
	rows := []dataset.Row{
		row("region", "", "sales", 1.0),
		row("region", nil, "sales", 1.0),
		row("region", 0.0, "sales", 1.0),
		row("region", "A", "sales", "n/a"),
		row("region", "A", "sales", "12kg"),
		row("region", "B", "sales", " 2.5"),
	}
	s, err := Pie(rows, salesCols)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	want := []Slice{{Name: "A", Value: 12}, {Name: "B", Value: 2.5}}
	if got := s.(*PieSeries).Slices; !reflect.DeepEqual(got, want) {
		t.Fatalf("slices = %v, want %v", got, want)
	}
}

func TestPie_SkipsFalseNames(t *testing.T) {
	rows := []dataset.Row{
		row("region", false, "sales", 4.0),
		row("region", true, "sales", 1.0),
		row("region", "false", "sales", 2.0),
	}
	s, err := Pie(rows, salesCols)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	want := []Slice{{Name: "true", Value: 1}, {Name: "false", Value: 2}}
	if got := s.(*PieSeries).Slices; !reflect.DeepEqual(got, want) {
		t.Fatalf("slices = %v, want %v", got, want)
	}
}

func TestPie_InfiniteSumEncodesAsNull(t *testing.T) {
	rows := []dataset.Row{
		row("region", "A", "sales", "1e400"),
		row("region", "B", "sales", "3"),
	}
	cols := analysis.ClassifyRows([]string{"region", "sales"}, rows)
	if cols[1].Type != analysis.Numeric {
		t.Fatalf("sales classified %s, want numeric", cols[1].Type)
	}
	s, err := Pie(rows, cols)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if v := s.(*PieSeries).Slices[0].Value; !math.IsInf(v, 1) {
		t.Fatalf("slice A = %v, want +Inf", v)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"chartType":"pie","nameKey":"region","valueKey":"sales","data":[{"name":"A","value":null},{"name":"B","value":3}]}`
	if string(b) != want {
		t.Fatalf("json = %s\nwant  %s", b, want)
	}
}

func TestRadar_AveragesPerCategory(t *testing.T) {
	cols := []analysis.ColumnInfo{
		{Name: "team", Type: analysis.Categorical},
		{Name: "v", Type: analysis.Numeric},
		{Name: "w", Type: analysis.Numeric},
	}
	rows := []dataset.Row{
		row("team", "X", "v", 10.0, "w", 1.0),
		row("team", "X", "v", 20.0, "w", "bad"),
		row("team", "Y", "v", 30.0, "w", 4.0),
	}
	s, err := Radar(rows, cols)
	if err != nil {
		t.Fatalf("radar: %v", err)
	}
	pts := s.(*RadarSeries).Points
	if len(pts) != 2 {
		t.Fatalf("points = %d, want 2", len(pts))
	}
	if pts[0].Category.String() != "Y" {
		t.Fatalf("expected Y first (higher mean), got %v", pts[0].Category)
	}
	x := pts[1]
	if x.Values["v"] != 15 || x.Values["w"] != 0.5 || x.Count != 2 {
		t.Fatalf("X point = %+v, want v=15 w=0.5 count=2", x)
	}
}

func TestRadar_TruncatesAndNeedsTwoNumeric(t *testing.T) {
	cols := []analysis.ColumnInfo{
		{Name: "c", Type: analysis.Categorical},
		{Name: "a", Type: analysis.Numeric},
		{Name: "b", Type: analysis.Numeric},
	}
	var rows []dataset.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, row("c", fmt.Sprintf("k%d", i), "a", float64(i), "b", 1.0))
	}
	s, err := Radar(rows, cols)
	if err != nil {
		t.Fatalf("radar: %v", err)
	}
	if s.Len() != MaxRadarItems {
		t.Fatalf("points = %d, want %d", s.Len(), MaxRadarItems)
	}
	_, err = Radar(rows, cols[:2])
	var ce *ConfigError
	if !errors.As(err, &ce) || !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Placeholder() != "Radar chart configuration is invalid." {
		t.Fatalf("placeholder = %q", ce.Placeholder())
	}
}

func TestRadar_JSONIsFlat(t *testing.T) {
	s := &RadarSeries{
		CategoryKey: "team",
		ValueKeys:   []string{"v", "w"},
		Points:      []RadarPoint{{Category: dataset.String("X"), Values: map[string]float64{"v": 15, "w": 0.5}, Count: 2}},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"chartType":"radar","categoryKey":"team","valueKeys":["v","w"],"data":[{"team":"X","v":15,"w":0.5,"count":2}]}`
	if string(b) != want {
		t.Fatalf("json = %s\nwant  %s", b, want)
	}
}

func TestLine_FormatsDatesWithoutReordering(t *testing.T) {
	cols := []analysis.ColumnInfo{
		{Name: "day", Type: analysis.Date},
		{Name: "sales", Type: analysis.Numeric},
	}
	rows := []dataset.Row{
		row("day", "2024-01-06", "sales", 2.0),
		row("day", "2024-01-05", "sales", 1.0),
		row("day", "2024-01-05", "sales", 3.0),
		row("day", "soon", "sales", 4.0),
	}
	s, err := Line(rows, cols)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	as := s.(*AxisSeries)
	var labels []string
	for _, r := range as.Rows {
		labels = append(labels, r["day"].String())
	}
	if strings.Join(labels, ",") != "Jan 6,Jan 5,Jan 5,soon" {
		t.Fatalf("labels = %v", labels)
	}
	if rows[0]["day"].String() != "2024-01-06" {
		t.Fatalf("input rows must not be modified")
	}
	if as.XKey != "day" || as.YKeys[0] != "sales" {
		t.Fatalf("roles = %s/%v", as.XKey, as.YKeys)
	}
}

func TestArea_CategoricalAxisUnchanged(t *testing.T) {
	rows := []dataset.Row{row("region", "2024-01-06", "sales", 2.0)}
	s, err := Area(rows, salesCols)
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	if s.Kind() != recommend.Area {
		t.Fatalf("kind = %s", s.Kind())
	}
	if got := s.(*AxisSeries).Rows[0]["region"].String(); got != "2024-01-06" {
		t.Fatalf("categorical x must not be relabelled, got %q", got)
	}
}

func TestBarAndScatter_OnePerRow(t *testing.T) {
	rows := []dataset.Row{
		row("region", "A", "sales", 1.0, "profit", 2.0),
		row("region", "A", "sales", 3.0, "profit", 4.0),
	}
	cols := append(append([]analysis.ColumnInfo(nil), salesCols...), analysis.ColumnInfo{Name: "profit", Type: analysis.Numeric})
	bar, err := Bar(rows, cols)
	if err != nil || bar.Len() != 2 {
		t.Fatalf("bar: %v len=%d", err, bar.Len())
	}
	sc, err := Scatter(rows, cols)
	if err != nil {
		t.Fatalf("scatter: %v", err)
	}
	as := sc.(*AxisSeries)
	if as.XKey != "sales" || as.YKeys[0] != "profit" || as.Len() != 2 {
		t.Fatalf("scatter = %+v", as)
	}
	if _, err := Scatter(rows, salesCols); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config with one numeric column, got %v", err)
	}
}

func TestShapeAll_IsolatesFailures(t *testing.T) {
	rows := []dataset.Row{row("region", "A", "sales", 1.0)}
	res := ShapeAll([]recommend.ChartKind{recommend.Bar, recommend.Radar, recommend.Pie}, rows, salesCols)
	if res[0].Err != nil || res[2].Err != nil {
		t.Fatalf("bar/pie should succeed: %v / %v", res[0].Err, res[2].Err)
	}
	if !errors.Is(res[1].Err, ErrInvalidConfig) {
		t.Fatalf("radar should be invalid, got %v", res[1].Err)
	}
	if _, err := Shape("donut", rows, salesCols); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestShape_Idempotent(t *testing.T) {
	rows := []dataset.Row{row("region", "A", "sales", 1.0), row("region", "B", "sales", 2.0)}
	for _, k := range recommend.Kinds() {
		a, errA := Shape(k, rows, salesCols)
		b, errB := Shape(k, rows, salesCols)
		if (errA == nil) != (errB == nil) {
			t.Fatalf("%s: errors differ", k)
		}
		if errA != nil {
			continue
		}
		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Fatalf("%s: output differs between calls", k)
		}
	}
}

func TestLeadingFloat(t *testing.T) {
	tests := map[string]float64{
		"12kg":  12,
		"  3.5": 3.5,
		"-1e2x": -100,
		".5":    0.5,
		"1e":    1,
	}
	for in, want := range tests {
		if got := leadingFloat(dataset.String(in)); got != want {
			t.Errorf("leadingFloat(%q) = %v, want %v", in, got, want)
		}
	}
	if !math.IsNaN(leadingFloat(dataset.String("abc"))) || !math.IsNaN(leadingFloat(dataset.Null())) {
		t.Fatalf("expected NaN for non-numeric input")
	}
}
