package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/logging"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
	"github.com/KaramelBytes/chartly-cli/internal/shape"
	"github.com/KaramelBytes/chartly-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	shpRead    readFlags
	shpChart   string
	shpFilters []string
	shpOutput  string
)

var shapeCmd = &cobra.Command{
	Use:   "shape <file>",
	Short: "Print the data one chart kind needs, as JSON",
	Long: `Shape classifies the columns of a file and prints the series for one chart kind.
Column types come from all rows; --filter narrows the rows that are shaped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := recommend.ParseKind(shpChart)
		if err != nil {
			return err
		}
		filters, err := dataset.ParseFilters(shpFilters)
		if err != nil {
			return err
		}
		ds, err := shpRead.load(args[0])
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), ds.Warnings)

		cols := analysis.Classify(ds)
		series, err := shape.Shape(kind, dataset.Filter(ds.Rows, filters), cols)
		if err != nil {
			var ce *shape.ConfigError
			if errors.As(err, &ce) {
				fmt.Fprintln(cmd.OutOrStdout(), ce.Placeholder())
			}
			return err
		}
		logging.Debug().
			Add(logging.Component("cli")).
			Add(logging.Chart(string(kind))).
			Add(logging.Rows(series.Len())).
			Msg("shaped")

		b, err := utils.PrettyJSON(series)
		if err != nil {
			return err
		}
		if shpOutput != "" {
			if err := utils.SafeWriteFile(shpOutput, b); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s series to %s\n", kind, shpOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shapeCmd)
	shpRead.register(shapeCmd)
	shapeCmd.Flags().StringVarP(&shpChart, "chart", "c", "", "chart kind: line|area|bar|pie|scatter|radar")
	shapeCmd.Flags().StringArrayVar(&shpFilters, "filter", nil, "keep rows where column equals value, as col=value (repeatable)")
	shapeCmd.Flags().StringVarP(&shpOutput, "output", "o", "", "optional path to write the series JSON")
	_ = shapeCmd.MarkFlagRequired("chart")
}
