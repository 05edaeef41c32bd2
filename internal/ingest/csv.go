package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Parse reads a header row followed by records. Without an explicit
// delimiter, the one appearing most often in the first line among ',', ';'
// and tab wins.
func (csvParser) Parse(r io.Reader, opt Options) (*dataset.Dataset, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		first, _ := br.Peek(4096)
		delim = sniffDelimiter(string(first))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New(nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := newTable(header, opt.MaxRows)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if blankRecord(rec) {
			continue
		}
		cells := make([]dataset.Value, len(rec))
		for i, s := range rec {
			cells[i] = textCell(s)
		}
		t.add(cells)
	}
	return t.dataset(), nil
}

func sniffDelimiter(sample string) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(sample, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func blankRecord(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
