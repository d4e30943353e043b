package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/signet/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags *StandardFlags

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Build, then rebuild pages as templates change",
		Long: `Build every page, then watch routes.dirs and rebuild only the templates
that change. Removing or adding a template rewrites the route module.

Examples:
  signet watch
  signet watch -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.ValidateFlags(); err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger := a.logger(cmd)
			out := cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc, builder, err := buildAll(ctx, cfg, logger, out, flags)
			if err != nil {
				logger.Error(ctx, err, "Initial build failed")
				if sc == nil {
					return err
				}
			}

			fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, cfg.Watch.Ignore, logger)
			if err != nil {
				return err
			}
			defer fileWatcher.Stop()

			fileWatcher.AddFilter(watcher.ExtensionFilter(cfg.Routes.Extensions))
			fileWatcher.AddFilter(watcher.IgnoreFilter(cfg.Watch.Ignore))
			fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
				if !flags.Quiet {
					for _, event := range events {
						fmt.Fprintf(out, "%s: %s\n", event.Type, event.Path)
					}
				}
				results, err := builder.Rebuild(ctx, sc, events)
				if !flags.Quiet {
					printResults(out, results, flags.Verbose)
					printFileDiagnostics(out, builder.Errors(), results)
				}
				return err
			})

			for _, dir := range cfg.Routes.Dirs {
				if err := fileWatcher.AddRecursive(dir); err != nil {
					logger.Warn(ctx, err, "Failed to watch directory", "dir", dir)
				}
			}

			fileWatcher.Start(ctx)
			if !flags.Quiet {
				fmt.Fprintln(out, "Watching for changes... (Press Ctrl+C to stop)")
			}
			<-ctx.Done()
			return nil
		},
	}

	flags = AddStandardFlags(a, cmd, "build", "verbosity")
	return cmd
}
