package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// FilterAll is the filter value that disables a column filter.
const FilterAll = "all"

// Filter keeps rows whose value in every filtered column renders exactly as
// the filter value. Empty filters and FilterAll are ignored. With no active
// filter the input slice is returned unchanged.
func Filter(rows []Row, filters map[string]string) []Row {
	active := activeFilters(filters)
	if len(active) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		keep := true
		for _, f := range active {
			v, ok := r[f[0]]
			if !ok || v.IsNull() || v.String() != f[1] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// ParseFilters turns "col=value" pairs into a filter map.
func ParseFilters(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid filter %q (use column=value)", p)
		}
		out[col] = val
	}
	return out, nil
}

func activeFilters(filters map[string]string) [][2]string {
	var active [][2]string
	for col, val := range filters {
		if val == "" || val == FilterAll {
			continue
		}
		active = append(active, [2]string{col, val})
	}
	sort.Slice(active, func(i, j int) bool { return active[i][0] < active[j][0] })
	return active
}
