package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
)

func salesData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ParseRecords([]byte(`[
		{"date":"2024-01-05","region":"North","sales":100,"profit":10},
		{"date":"2024-01-06","region":"South","sales":200,"profit":25},
		{"date":"2024-01-07","region":"North","sales":150,"profit":12}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ds.Name = "sales.json"
	return ds
}

func TestBuild_AllSuggestedChartsShaped(t *testing.T) {
	r := Build(salesData(t), Options{})
	if r.Rows != 3 || r.Filtered != 3 {
		t.Fatalf("rows = %d/%d", r.Rows, r.Filtered)
	}
	if len(r.Charts) != len(recommend.Kinds()) {
		t.Fatalf("charts = %d, want all six kinds", len(r.Charts))
	}
	for _, c := range r.Charts {
		if c.Kind == recommend.Radar {
			if c.Err != nil {
				t.Fatalf("radar should shape with two numeric columns: %v", c.Err)
			}
			continue
		}
		if c.Err != nil || c.Series == nil {
			t.Fatalf("%s: %v", c.Kind, c.Err)
		}
	}
	if len(r.KPIs) != 2 || r.KPIs[0].Value != "$450" {
		t.Fatalf("kpis = %+v", r.KPIs)
	}
	if len(r.Slicers) != 1 || r.Slicers[0].Column != "region" {
		t.Fatalf("slicers = %+v", r.Slicers)
	}
}

func TestBuild_FiltersApplyToChartsAndKPIs(t *testing.T) {
	r := Build(salesData(t), Options{Filters: map[string]string{"region": "North", "date": "all"}})
	if r.Filtered != 2 {
		t.Fatalf("filtered = %d, want 2", r.Filtered)
	}
	if r.KPIs[0].Total != 250 {
		t.Fatalf("sales total = %v, want 250", r.KPIs[0].Total)
	}
	if len(r.Filters) != 1 || r.Filters["region"] != "North" {
		t.Fatalf("active filters = %v", r.Filters)
	}
	// slicers still offer every region
	if got := r.Slicers[0].Values; len(got) != 2 {
		t.Fatalf("slicer values = %v", got)
	}
	none := Build(salesData(t), Options{Filters: map[string]string{"region": "West"}})
	if !strings.Contains(none.Markdown(), "no rows match the active filters") {
		t.Fatalf("expected empty-filter note")
	}
}

func TestBuild_InvalidChartBecomesPlaceholder(t *testing.T) {
	ds := dataset.FromRecords([]map[string]any{{"region": "A", "sales": 1}}, "region", "sales")
	r := Build(ds, Options{Kinds: []recommend.ChartKind{recommend.Scatter}})
	if len(r.Charts) != 1 || r.Charts[0].Err == nil {
		t.Fatalf("expected scatter error, got %+v", r.Charts)
	}
	b, err := json.Marshal(r.Charts[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"placeholder":"Scatter chart configuration is invalid."`) {
		t.Fatalf("json = %s", b)
	}
	if !strings.Contains(r.Markdown(), "- Scatter: Scatter chart configuration is invalid.") {
		t.Fatalf("markdown missing placeholder:\n%s", r.Markdown())
	}
}

func TestJSON_InfiniteValuesDoNotDropCharts(t *testing.T) {
	ds, err := dataset.ParseRecords([]byte(`[{"region":"A","sales":"1e400"},{"region":"B","sales":"3"}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := Build(ds, Options{})
	b, err := r.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var back struct {
		Charts []struct {
			Kind string `json:"kind"`
		} `json:"charts"`
		KPIs []struct {
			Total *float64 `json:"total"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Charts) != len(r.Charts) || len(back.Charts) == 0 {
		t.Fatalf("charts = %+v, want %d", back.Charts, len(r.Charts))
	}
	if !strings.Contains(string(b), `{"name":"A","value":null}`) {
		t.Fatalf("pie slice for A should encode as null:\n%s", b)
	}
	if len(back.KPIs) != 1 || back.KPIs[0].Total != nil {
		t.Fatalf("kpi total should be null, got %+v", back.KPIs)
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Build(salesData(t), Options{}).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: sales.json",
		"Rows: 3",
		"[SCHEMA]",
		"- date: date",
		"- region: categorical",
		"- sales: numeric",
		"[SUGGESTED CHARTS]",
		"- Line: x=date, y=sales",
		"- Pie: name=region, value=sales",
		"[CHART DATA]",
		"- Pie: 2 slices (North=250, South=200)",
		"[KPIS]",
		"[SLICERS]",
		"[HEAD AND SAMPLE ROWS]",
		"| date | region | sales | profit |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuild_EmptyDataset(t *testing.T) {
	r := Build(nil, Options{})
	if len(r.Columns) != 0 || len(r.Charts) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
	b, err := r.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back["suggestions"].([]any); !ok {
		t.Fatalf("suggestions should be an empty array, got %v", back["suggestions"])
	}
	if !strings.Contains(r.Markdown(), "- none:") {
		t.Fatalf("expected none line")
	}
}
