package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/chartly-cli/internal/report"
	"github.com/KaramelBytes/chartly-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abRead    readFlags
	abOutDir  string
	abFormat  string
	abFilters []string
	abCharts  []string
	abQuiet   bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX/JSON files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandGlobs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := reportOptions(abFilters, abCharts)
		if err != nil {
			return err
		}
		if err := checkFormat(abFormat); err != nil {
			return err
		}
		if abOutDir != "" {
			if err := os.MkdirAll(abOutDir, 0o755); err != nil {
				return fmt.Errorf("create --out-dir: %w", err)
			}
		}

		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		used := map[string]bool{}
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(stdout, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := abRead.load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			rep := report.Build(ds, opt)
			out, err := render(rep, abFormat)
			if err != nil {
				return err
			}
			if !abQuiet {
				printWarnings(stderr, rep.Warnings)
			}

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(stdout, string(out))
				}
				continue
			}

			base := utils.BaseName(path)
			if abRead.sheetName != "" {
				base += "__sheet-" + sheetSlug(abRead.sheetName)
			}
			outFile := utils.UniquePath(abOutDir, base, formatExt(abFormat), used)
			for {
				if _, statErr := os.Stat(outFile); os.IsNotExist(statErr) {
					break
				}
				outFile = utils.UniquePath(abOutDir, base, formatExt(abFormat), used)
			}
			if !abQuiet && filepath.Base(outFile) != base+formatExt(abFormat) {
				fmt.Fprintf(stdout, "⚠ Name already taken, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, out); err != nil {
				return fmt.Errorf("write analysis: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(stdout, "✓ Wrote analysis to %s\n", outFile)
			}
		}
		return nil
	},
}

// sheetSlug lowercases a sheet name and keeps only [a-z0-9-].
func sheetSlug(name string) string {
	var b []rune
	for _, r := range []rune(name) {
		switch {
		case r >= 'A' && r <= 'Z':
			b = append(b, r+'a'-'A')
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b = append(b, r)
		case r == ' ' || r == '-' || r == '_':
			if len(b) > 0 && b[len(b)-1] != '-' {
				b = append(b, '-')
			}
		}
	}
	for len(b) > 0 && b[len(b)-1] == '-' {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return "sheet"
	}
	return string(b)
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abRead.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one <name>.charts.md (or .json) per input")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "md", "output format: md|json")
	analyzeBatchCmd.Flags().StringArrayVar(&abFilters, "filter", nil, "keep rows where column equals value, as col=value (repeatable)")
	analyzeBatchCmd.Flags().StringSliceVar(&abCharts, "chart", nil, "only shape these chart kinds")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
