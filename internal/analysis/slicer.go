package analysis

import "github.com/KaramelBytes/chartly-cli/internal/dataset"

// MaxSlicerValues caps how many distinct values a slicer may offer.
const MaxSlicerValues = 20

// Slicer is a categorical column usable as a dashboard filter.
type Slicer struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Slicers lists categorical columns with between 2 and MaxSlicerValues
// distinct non-empty values over all rows.
func Slicers(rows []dataset.Row, cols []ColumnInfo) []Slicer {
	var out []Slicer
	for _, c := range cols {
		if c.Type != Categorical {
			continue
		}
		vals := dataset.Distinct(rows, c.Name)
		if len(vals) < 2 || len(vals) > MaxSlicerValues {
			continue
		}
		out = append(out, Slicer{Column: c.Name, Values: vals})
	}
	return out
}
