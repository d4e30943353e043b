package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/signet/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the development server with live reload",
		Long: `Build every page, serve the compiled modules and reload connected
browsers whenever a template changes. Compile errors are shown as an overlay.

Examples:
  signet serve
  signet serve --port 3000
  signet serve --host 0.0.0.0 --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(cfg, a.logger(cmd))
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}

	AddStandardFlags(a, cmd, "server", "build")
	return cmd
}
