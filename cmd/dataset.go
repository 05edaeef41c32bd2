package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartly-cli/internal/logging"
	"github.com/KaramelBytes/chartly-cli/internal/report"
	"github.com/KaramelBytes/chartly-cli/internal/store"
)

var (
	dsRead    readFlags
	dsKey     string
	dsBackend string
	dsFormat  string
	dsFilters []string
	dsCharts  []string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Save, load, list and remove stored datasets",
}

var datasetSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Read a file and store it under a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dsRead.load(args[0])
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), ds.Warnings)

		key := dsKey
		if key == "" {
			key = uuid.NewString()
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(cmd.Context(), key, ds); err != nil {
			return err
		}
		logging.Debug().
			Add(logging.Component("store")).
			Add(logging.Key(key)).
			Add(logging.Rows(ds.Len())).
			Msg("dataset saved")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s (%d rows) as %s\n", ds.Name, ds.Len(), key)
		return nil
	},
}

var datasetLoadCmd = &cobra.Command{
	Use:   "load <key>",
	Short: "Load a stored dataset and print its chart analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := reportOptions(dsFilters, dsCharts)
		if err != nil {
			return err
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ds, err := st.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rep := report.Build(ds, opt)
		out, err := render(rep, dsFormat)
		if err != nil {
			return err
		}
		printWarnings(cmd.ErrOrStderr(), rep.Warnings)
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored dataset keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		keys, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No datasets stored")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var datasetRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Remove a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
		return nil
	},
}

// openStore opens the configured backend, honoring --backend.
func openStore(cmd *cobra.Command) (store.Store, error) {
	c := *effectiveConfig()
	if cmd.Flags().Changed("backend") {
		c.StoreBackend = dsBackend
	}
	st, err := store.Open(&c)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.StoreBackend, err)
	}
	logging.Debug().Add(logging.Backend(c.StoreBackend)).Msg("store opened")
	return st, nil
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetSaveCmd, datasetLoadCmd, datasetListCmd, datasetRmCmd)

	datasetCmd.PersistentFlags().StringVar(&dsBackend, "backend", "", "store backend: file|badger|redis (overrides config store_backend)")

	dsRead.register(datasetSaveCmd)
	datasetSaveCmd.Flags().StringVarP(&dsKey, "key", "k", "", "key to store under (default: a new UUID)")

	datasetLoadCmd.Flags().StringVarP(&dsFormat, "format", "f", "md", "output format: md|json")
	datasetLoadCmd.Flags().StringArrayVar(&dsFilters, "filter", nil, "keep rows where column equals value, as col=value (repeatable)")
	datasetLoadCmd.Flags().StringSliceVar(&dsCharts, "chart", nil, "only shape these chart kinds")
}
