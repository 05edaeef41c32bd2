package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/ingest"
	"github.com/KaramelBytes/chartly-cli/internal/logging"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
	"github.com/KaramelBytes/chartly-cli/internal/report"
	"github.com/spf13/cobra"
)

// readFlags are the ingestion flags shared by commands that read a file.
type readFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (r *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (sniffed if omitted)")
	cmd.Flags().StringVar(&r.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	cmd.Flags().IntVar(&r.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&r.maxRows, "max-rows", 0, "maximum rows to process (0 = config max_rows)")
}

func (r *readFlags) options() (ingest.Options, error) {
	opt := ingest.Options{
		SheetName:  r.sheetName,
		SheetIndex: r.sheetIndex,
		MaxRows:    effectiveConfig().MaxRows,
	}
	if r.maxRows > 0 {
		opt.MaxRows = r.maxRows
	}
	switch r.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", r.delimiter)
	}
	return opt, nil
}

// load reads a dataset file and reports ingestion warnings on stderr.
func (r *readFlags) load(path string) (*dataset.Dataset, error) {
	opt, err := r.options()
	if err != nil {
		return nil, err
	}
	ds, err := ingest.ParseFile(path, opt)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Add(logging.Component("cli")).
		Add(logging.File(path)).
		Add(logging.Rows(ds.Len())).
		Add(logging.Columns(len(ds.Columns))).
		Msg("dataset loaded")
	return ds, nil
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "⚠ Warning: %s\n", msg)
	}
}

func parseKinds(names []string) ([]recommend.ChartKind, error) {
	var kinds []recommend.ChartKind
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			k, err := recommend.ParseKind(part)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "md", "markdown", "json":
		return nil
	}
	return fmt.Errorf("unsupported --format: %s (use md|json)", format)
}

// render formats a report as Markdown or JSON.
func render(rep *report.Report, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	if strings.EqualFold(format, "json") {
		return rep.JSON()
	}
	return []byte(rep.Markdown()), nil
}

func formatExt(format string) string {
	if strings.EqualFold(format, "json") {
		return ".charts.json"
	}
	return ".charts.md"
}

// expandGlobs resolves patterns to a sorted, de-duplicated file list.
// Arguments with no glob match are kept when they name an existing file.
func expandGlobs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}
