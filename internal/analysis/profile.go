package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

// maxTopValues bounds the categorical top-N list.
const maxTopValues = 8

// ColumnProfile captures whole-column statistics for a classified column.
type ColumnProfile struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
	// Numeric stats
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	// Date range
	First time.Time `json:"first,omitzero"`
	Last  time.Time `json:"last,omitzero"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type profileJSON ColumnProfile

// MarshalJSON writes non-finite statistics as null.
func (p ColumnProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		profileJSON
		Min  dataset.Value `json:"min"`
		Max  dataset.Value `json:"max"`
		Mean dataset.Value `json:"mean"`
		Std  dataset.Value `json:"std"`
	}{profileJSON(p), dataset.Number(p.Min), dataset.Number(p.Max), dataset.Number(p.Mean), dataset.Number(p.Std)})
}

// CategoryCount is a value and how often it occurs.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Profiles computes statistics over all rows, not just the sample.
func Profiles(rows []dataset.Row, cols []ColumnInfo) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(cols))
	for _, c := range cols {
		out = append(out, profileColumn(rows, c))
	}
	return out
}

func profileColumn(rows []dataset.Row, c ColumnInfo) ColumnProfile {
	p := ColumnProfile{Name: c.Name, Type: c.Type}
	cats := map[string]int{}
	// numeric stats via Welford
	var (
		n        int
		mean, m2 float64
		lo, hi   = math.Inf(1), math.Inf(-1)
	)
	for _, r := range rows {
		v := r[c.Name]
		if v.IsEmpty() {
			p.Missing++
			continue
		}
		p.NonNull++
		if len(cats) <= 10000 {
			cats[v.String()]++
		}
		switch c.Type {
		case Numeric:
			x, ok := numericValue(v)
			if !ok {
				continue
			}
			n++
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
		case Date:
			t, ok := ParseDate(v)
			if !ok {
				continue
			}
			if p.First.IsZero() || t.Before(p.First) {
				p.First = t
			}
			if p.Last.IsZero() || t.After(p.Last) {
				p.Last = t
			}
		}
	}
	p.Unique = len(cats)
	if n > 0 {
		p.Min, p.Max, p.Mean = lo, hi, mean
		if n > 1 {
			p.Std = math.Sqrt(m2 / float64(n-1))
		}
	}
	if c.Type == Categorical && len(cats) > 0 {
		tops := make([]CategoryCount, 0, len(cats))
		for k, v := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > maxTopValues {
			tops = tops[:maxTopValues]
		}
		p.TopValues = tops
	}
	return p
}

func numericValue(v dataset.Value) (float64, bool) {
	if !LooksNumeric(v) {
		return 0, false
	}
	if f, ok := v.Float(); ok {
		return f, true
	}
	s, _ := v.Text()
	f, ok := ParseNumber(s)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
