package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Long: `Serve starts the HTTP API on the configured address (server.addr, default
:8080). It runs until interrupted and then drains in-flight requests.

Endpoints:
  GET /healthz
  GET /v1/resolve?pkg=NAME[&pkg=NAME...][&unique=true]
  GET /v1/providers?dep=NAME
  GET /v1/graph?pkg=NAME[&format=dot|svg|pdf|png]
  GET /v1/history[?limit=N]
  GET /v1/history/{id}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			return api.New(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
