package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// Parse reads an array of objects; key order follows the first object.
func (jsonParser) Parse(r io.Reader, opt Options) (*dataset.Dataset, error) {
	ds, err := dataset.DecodeJSON(r)
	if err != nil {
		return nil, err
	}
	if opt.MaxRows > 0 && ds.Len() > opt.MaxRows {
		total := ds.Len()
		ds.Rows = ds.Rows[:opt.MaxRows]
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", opt.MaxRows, total))
	}
	return ds, nil
}
