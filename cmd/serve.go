package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/logging"
	"github.com/KaramelBytes/chartly-cli/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvAddr   string
	srvNoCORS bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chart suggestion HTTP service",
	Long: `Serve exposes:
  GET  /                          health check
  POST /api/charts/suggestions    {data: Row[]} -> {suggestions, columnInfo}
  POST /api/charts/bindings       {data: Row[]} -> role-bound suggestions
  POST /api/charts/shape?kind=K   {data: Row[], filters?} -> {kind, series}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		addr := c.ServerAddr
		if cmd.Flags().Changed("addr") {
			addr = srvAddr
		}
		srv, err := server.New(server.Config{
			Address:      addr,
			EnableCORS:   c.CORS && !srvNoCORS,
			ReadTimeout:  time.Duration(c.ServerReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(c.ServerWriteTimeoutSec) * time.Second,
			Logger:       logging.Get(),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s (Ctrl+C to stop)\n", srv.Addr())

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", ":8080", "listen address (overrides config server_addr)")
	serveCmd.Flags().BoolVar(&srvNoCORS, "no-cors", false, "disable CORS headers")
}
