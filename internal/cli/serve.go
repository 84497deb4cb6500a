package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depharvest/internal/api"
)

// newServeCmd creates the serve command running the HTTP API.
func newServeCmd(root *rootOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the harvest HTTP API server",
		Long: `Serve exposes the harvest pipeline over HTTP.

Endpoints:
  POST /v1/harvests    run a harvest for a project
  GET  /v1/registry    list supported languages and patterns
  GET  /healthz        health probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			backend, err := root.openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			server := api.NewServer(addr, cfg.Token, backend, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
