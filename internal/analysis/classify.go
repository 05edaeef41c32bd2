package analysis

import "github.com/KaramelBytes/chartly-cli/internal/dataset"

// SampleSize bounds how many leading rows are inspected per column.
const SampleSize = 20

// Classify assigns a type to every column of ds, in column order. Empty or
// nil datasets yield an empty, non-nil slice.
func Classify(ds *dataset.Dataset) []ColumnInfo {
	if ds.Empty() {
		return []ColumnInfo{}
	}
	return ClassifyRows(ds.Columns, ds.Rows)
}

// ClassifyRows classifies columns over the first SampleSize rows.
func ClassifyRows(columns []string, rows []dataset.Row) []ColumnInfo {
	out := make([]ColumnInfo, 0, len(columns))
	if len(rows) == 0 {
		return out
	}
	sample := rows[:min(len(rows), SampleSize)]
	vals := make([]dataset.Value, len(sample))
	for _, col := range columns {
		for i, r := range sample {
			vals[i] = r[col]
		}
		out = append(out, ColumnInfo{Name: col, Type: ClassifyValues(vals)})
	}
	return out
}

// ClassifyValues decides a column type from sampled values. Empty values are
// ignored. A type wins when at least 80% of the remaining values match it;
// date is tested before numeric. A column with no values is categorical.
func ClassifyValues(vals []dataset.Value) ColumnType {
	var numericCount, dateCount, nonNull int
	for _, v := range vals {
		if v.IsEmpty() {
			continue
		}
		nonNull++
		if LooksNumeric(v) {
			numericCount++
		}
		if LooksDate(v) {
			dateCount++
		}
	}
	switch {
	case nonNull == 0:
		return Categorical
	case meetsThreshold(dateCount, nonNull):
		return Date
	case meetsThreshold(numericCount, nonNull):
		return Numeric
	default:
		return Categorical
	}
}

// meetsThreshold reports count/total >= 0.8 without floating point.
func meetsThreshold(count, total int) bool {
	return count*5 >= total*4
}
