package cmd

import (
	"fmt"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/report"
	"github.com/KaramelBytes/chartly-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaRead       readFlags
	anaOutputPath string
	anaFormat     string
	anaFilters    []string
	anaCharts     []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify columns, suggest charts and shape chart data for one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := reportOptions(anaFilters, anaCharts)
		if err != nil {
			return err
		}
		ds, err := anaRead.load(args[0])
		if err != nil {
			return err
		}
		rep := report.Build(ds, opt)
		out, err := render(rep, anaFormat)
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), rep.Warnings)

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// reportOptions parses --filter and --chart values.
func reportOptions(filters, charts []string) (report.Options, error) {
	var opt report.Options
	f, err := dataset.ParseFilters(filters)
	if err != nil {
		return opt, err
	}
	kinds, err := parseKinds(charts)
	if err != nil {
		return opt, err
	}
	opt.Filters = f
	opt.Kinds = kinds
	return opt, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaRead.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "md", "output format: md|json")
	analyzeCmd.Flags().StringArrayVar(&anaFilters, "filter", nil, "keep rows where column equals value, as col=value (repeatable)")
	analyzeCmd.Flags().StringSliceVar(&anaCharts, "chart", nil, "only shape these chart kinds (line,area,bar,pie,scatter,radar)")
}
