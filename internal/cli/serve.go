package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/internal/server"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over an HTTP JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			srv := server.New(r, server.Options{
				AllowedOrigins: c.Config.Server.AllowedOrigins,
				Logger:         c.Logger,
			})
			printInfo("Listening on http://%s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
