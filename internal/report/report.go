// Package report assembles a dataset's column types, chart suggestions,
// shaped series, KPIs and slicers into one document.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
	"github.com/KaramelBytes/chartly-cli/internal/shape"
)

// sampleRows is how many rows the Markdown head table shows.
const sampleRows = 5

// Options controls report assembly.
type Options struct {
	// Filters narrows the rows used for charts and KPIs; see dataset.Filter.
	Filters map[string]string
	// Kinds restricts which charts are shaped. Empty means all suggested kinds.
	Kinds []recommend.ChartKind
}

// Chart is one shaped suggestion, or the reason it could not be drawn.
type Chart struct {
	Kind   recommend.ChartKind
	Series shape.Series
	Err    error
}

func (c Chart) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind        recommend.ChartKind `json:"kind"`
		Series      shape.Series        `json:"series,omitempty"`
		Placeholder string              `json:"placeholder,omitempty"`
		Error       string              `json:"error,omitempty"`
	}{Kind: c.Kind, Series: c.Series}
	if c.Err != nil {
		out.Error = c.Err.Error()
		out.Placeholder = placeholder(c.Kind, c.Err)
	}
	return json.Marshal(out)
}

// Report is the full chart analysis of a dataset.
type Report struct {
	Name        string                   `json:"name,omitempty"`
	Rows        int                      `json:"rows"`
	Filtered    int                      `json:"filtered_rows"`
	Filters     map[string]string        `json:"filters,omitempty"`
	Columns     []analysis.ColumnInfo    `json:"columns"`
	Profiles    []analysis.ColumnProfile `json:"profiles"`
	Suggestions []recommend.Suggestion   `json:"suggestions"`
	Charts      []Chart                  `json:"charts"`
	KPIs        []analysis.KPI           `json:"kpis"`
	Slicers     []analysis.Slicer        `json:"slicers"`
	Warnings    []string                 `json:"warnings,omitempty"`

	samples []dataset.Row
}

// Build classifies ds, recommends charts and shapes each of them. Column
// types and slicers come from the full dataset; charts and KPIs from the
// filtered rows.
func Build(ds *dataset.Dataset, opt Options) *Report {
	if ds == nil {
		ds = &dataset.Dataset{}
	}
	cols := analysis.Classify(ds)
	rows := dataset.Filter(ds.Rows, opt.Filters)

	r := &Report{
		Name:        ds.Name,
		Rows:        ds.Len(),
		Filtered:    len(rows),
		Columns:     cols,
		Profiles:    analysis.Profiles(ds.Rows, cols),
		Suggestions: recommend.Bind(cols),
		KPIs:        analysis.KPIs(rows, cols),
		Slicers:     analysis.Slicers(ds.Rows, cols),
		Warnings:    append([]string(nil), ds.Warnings...),
	}
	if active := activeFilters(opt.Filters); len(active) > 0 {
		r.Filters = active
	}
	if r.Suggestions == nil {
		r.Suggestions = []recommend.Suggestion{}
	}

	kinds := recommend.Suggest(cols)
	if len(opt.Kinds) > 0 {
		kinds = opt.Kinds
	}
	r.Charts = make([]Chart, 0, len(kinds))
	for _, res := range shape.ShapeAll(kinds, rows, cols) {
		r.Charts = append(r.Charts, Chart{Kind: res.Kind, Series: res.Series, Err: res.Err})
	}
	if len(rows) == 0 && ds.Len() > 0 {
		r.Warnings = append(r.Warnings, "no rows match the active filters")
	}
	if len(rows) > sampleRows {
		r.samples = rows[:sampleRows]
	} else {
		r.samples = rows
	}
	return r
}

// Markdown renders the report in bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Filtered != r.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (%d after filters)\n", r.Rows, r.Filtered))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	if len(r.Filters) > 0 {
		keys := sortedKeys(r.Filters)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%s", safeName(k), safeVal(r.Filters[k]))
		}
		b.WriteString(fmt.Sprintf("Filters: %s\n", strings.Join(parts, ", ")))
	}

	b.WriteString("\n[SCHEMA]\n")
	for _, p := range r.Profiles {
		total := p.NonNull + p.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(p.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(p.Name), p.Type, p.NonNull, missPct))
		switch p.Type {
		case analysis.Numeric:
			if p.NonNull > 0 {
				b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", p.Min, p.Max, p.Mean, p.Std))
			}
		case analysis.Date:
			if !p.First.IsZero() {
				b.WriteString(fmt.Sprintf(": %s to %s", p.First.Format("2006-01-02"), p.Last.Format("2006-01-02")))
			}
		case analysis.Categorical:
			if len(p.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range p.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if p.Unique > len(p.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", p.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[SUGGESTED CHARTS]\n")
	if len(r.Suggestions) == 0 {
		b.WriteString("- none: add a numeric column alongside a date or categorical one\n")
	}
	for _, s := range r.Suggestions {
		b.WriteString(fmt.Sprintf("- %s: %s\n", s.Kind.Title(), describeBinding(s.Binding)))
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n[CHART DATA]\n")
		for _, c := range r.Charts {
			if c.Err != nil {
				b.WriteString(fmt.Sprintf("- %s: %s\n", c.Kind.Title(), placeholder(c.Kind, c.Err)))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", c.Kind.Title(), describeSeries(c.Series)))
		}
	}

	if len(r.KPIs) > 0 {
		b.WriteString("\n[KPIS]\n")
		for _, k := range r.KPIs {
			b.WriteString(fmt.Sprintf("- %s: %s (%s)\n", safeName(k.Title), k.Value, k.Description))
		}
	}

	if len(r.Slicers) > 0 {
		b.WriteString("\n[SLICERS]\n")
		for _, s := range r.Slicers {
			vals := make([]string, len(s.Values))
			for i, v := range s.Values {
				vals[i] = safeVal(v)
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(s.Column), strings.Join(vals, ", ")))
		}
	}

	if len(r.samples) > 0 && len(r.Columns) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(safeName(c.Name)))
		}
		b.WriteString(" |\n| ")
		for i := range r.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.samples {
			b.WriteString("| ")
			for i, c := range r.Columns {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := row[c.Name].String()
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func describeBinding(b recommend.Binding) string {
	switch v := b.(type) {
	case recommend.AxisBinding:
		return fmt.Sprintf("x=%s, y=%s", v.XAxis, strings.Join(v.YAxis, ", "))
	case recommend.BarBinding:
		return fmt.Sprintf("category=%s, value=%s", v.CategoryKey, v.ValueKey)
	case recommend.PieBinding:
		return fmt.Sprintf("name=%s, value=%s", v.NameKey, v.ValueKey)
	case recommend.RadarBinding:
		return fmt.Sprintf("category=%s, values=%s", v.CategoryKey, strings.Join(v.ValueKeys, ", "))
	}
	return "no roles"
}

func describeSeries(s shape.Series) string {
	switch v := s.(type) {
	case *shape.PieSeries:
		parts := make([]string, len(v.Slices))
		for i, sl := range v.Slices {
			parts[i] = fmt.Sprintf("%s=%s", safeVal(sl.Name), dataset.FormatNumber(sl.Value))
		}
		return fmt.Sprintf("%d slices (%s)", len(v.Slices), strings.Join(parts, ", "))
	case *shape.RadarSeries:
		return fmt.Sprintf("%d categories over %s", len(v.Points), strings.Join(v.ValueKeys, ", "))
	}
	return fmt.Sprintf("%d points", s.Len())
}

func placeholder(kind recommend.ChartKind, err error) string {
	var ce *shape.ConfigError
	if errors.As(err, &ce) {
		return ce.Placeholder()
	}
	return fmt.Sprintf("%s chart could not be drawn: %v", kind.Title(), err)
}

func activeFilters(f map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range f {
		if v == "" || v == dataset.FilterAll {
			continue
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
