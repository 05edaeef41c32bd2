package analysis

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

func column(vals ...any) []dataset.Value {
	out := make([]dataset.Value, len(vals))
	for i, v := range vals {
		out[i] = dataset.FromAny(v)
	}
	return out
}

func TestClassify_EmptyDataset(t *testing.T) {
	if got := Classify(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil dataset: got %#v, want empty slice", got)
	}
	ds := dataset.New([]string{"a"}, nil)
	if got := Classify(ds); len(got) != 0 {
		t.Fatalf("zero rows: got %v", got)
	}
}

func TestClassify_PreservesColumnOrder(t *testing.T) {
	ds, err := dataset.ParseRecords([]byte(`[
		{"region":"North","date":"2024-01-05","sales":"120","units":3},
		{"region":"South","date":"2024-01-06","sales":"80.5","units":4}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := Classify(ds)
	want := []ColumnInfo{
		{Name: "region", Type: Categorical},
		{Name: "date", Type: Date},
		{Name: "sales", Type: Numeric},
		{Name: "units", Type: Numeric},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify = %v, want %v", got, want)
	}
}

func TestClassifyValues(t *testing.T) {
	tests := []struct {
		name string
		vals []dataset.Value
		want ColumnType
	}{
		{"all empty", column(nil, "", nil), Categorical},
		{"numeric strings", column("1", "2.5", " 3 ", "-4e2"), Numeric},
		{"numbers", column(1.0, 2.0, 3.0), Numeric},
		{"nine of ten numeric", column("1", "2", "3", "4", "5", "6", "7", "8", "9", "N/A"), Numeric},
		{"eight of ten numeric", column("1", "2", "3", "4", "5", "6", "7", "8", "x", "y"), Numeric},
		{"seven of ten numeric", column("1", "2", "3", "4", "5", "6", "7", "x", "y", "z"), Categorical},
		{"empties do not count", column("1", "", nil, "2", "3"), Numeric},
		{"iso dates", column("2023-01-05", "2023-01-06", "2023-02-01"), Date},
		{"epoch strings stay numeric", column("1672531200", "1672617600", "1672704000"), Numeric},
		{"years stay numeric", column("2021", "2022", "2023"), Numeric},
		{"epoch numbers are dates", column(1672531200000.0, 1672617600000.0), Date},
		{"small numbers stay numeric", column(10000.0, 25000.0, 12345.0), Numeric},
		{"words", column("red", "green", "blue"), Categorical},
		{"long dates", column("Jan 5, 2024", "Feb 10, 2024"), Date},
		{"time values", column(time.Now(), time.Now()), Date},
		{"whitespace is not numeric", column(" ", " ", "1"), Categorical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyValues(tt.vals); got != tt.want {
				t.Fatalf("ClassifyValues = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_SamplesLeadingRows(t *testing.T) {
	rows := make([]dataset.Row, 0, 40)
	for i := 0; i < SampleSize; i++ {
		rows = append(rows, dataset.Row{"v": dataset.String(fmt.Sprint(i))})
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, dataset.Row{"v": dataset.String("text")})
	}
	got := ClassifyRows([]string{"v"}, rows)
	if got[0].Type != Numeric {
		t.Fatalf("expected rows beyond the sample to be ignored, got %s", got[0].Type)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{
		{"a": "x", "b": 1.0}, {"a": "y", "b": "2"},
	}, "a", "b")
	first := Classify(ds)
	second := Classify(ds)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification changed between calls: %v vs %v", first, second)
	}
}

func TestColumnHelpers(t *testing.T) {
	cols := []ColumnInfo{
		{Name: "region", Type: Categorical},
		{Name: "when", Type: Date},
		{Name: "a", Type: Numeric},
		{Name: "b", Type: Numeric},
		{Name: "c", Type: Numeric},
	}
	if x, ok := FirstOf(cols, Date, Categorical); !ok || x != "region" {
		t.Fatalf("FirstOf = %q", x)
	}
	if got := NamesOf(cols, Numeric, 2); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("NamesOf limited = %v", got)
	}
	n := CountTypes(cols)
	if n.Numeric != 3 || n.Date != 1 || n.Categorical != 1 {
		t.Fatalf("CountTypes = %+v", n)
	}
	if _, err := ParseColumnType("text"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
