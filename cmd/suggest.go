package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/analysis"
	"github.com/KaramelBytes/chartly-cli/internal/client"
	"github.com/KaramelBytes/chartly-cli/internal/recommend"
	"github.com/KaramelBytes/chartly-cli/internal/server"
	"github.com/KaramelBytes/chartly-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sugRead     readFlags
	sugRemote   string
	sugLocal    bool
	sugBindings bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Print column types and suggested chart kinds as JSON",
	Long: `Suggest classifies each column and lists the chart kinds that fit. With --remote (or
remote_url in config) the rows are posted to a chartly server instead of computed locally;
the result is the same either way.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := sugRead.load(args[0])
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), ds.Warnings)

		c := effectiveConfig()
		remote := c.RemoteURL
		if cmd.Flags().Changed("remote") {
			remote = sugRemote
		}
		if sugLocal {
			remote = ""
		}

		var out any
		if remote == "" {
			cols := analysis.Classify(ds)
			if sugBindings {
				out = server.BindingsResponse{Suggestions: recommend.Bind(cols), ColumnInfo: cols}
			} else {
				out = server.SuggestResponse{Suggestions: recommend.Suggest(cols), ColumnInfo: cols}
			}
		} else {
			cl, err := client.New(client.Config{
				BaseURL:     remote,
				Timeout:     time.Duration(c.HTTPTimeoutSec) * time.Second,
				MaxAttempts: c.RetryMaxAttempts,
				RetryDelay:  time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
			})
			if err != nil {
				return err
			}
			if sugBindings {
				out, err = cl.Bindings(cmd.Context(), ds)
			} else {
				out, err = cl.Suggest(cmd.Context(), ds)
			}
			if err != nil {
				return fmt.Errorf("remote suggest: %w", err)
			}
		}

		b, err := utils.PrettyJSON(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	sugRead.register(suggestCmd)
	suggestCmd.Flags().StringVar(&sugRemote, "remote", "", "base URL of a chartly server (overrides config remote_url)")
	suggestCmd.Flags().BoolVar(&sugLocal, "local", false, "compute locally even when remote_url is configured")
	suggestCmd.Flags().BoolVar(&sugBindings, "bindings", false, "include the columns bound to each chart's roles")
}
