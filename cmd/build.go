package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/conneroisu/signet/internal/build"
	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
	"github.com/conneroisu/signet/internal/registry"
	"github.com/conneroisu/signet/internal/scanner"
	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	var clean bool
	var flags *StandardFlags

	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Compile every page and write the route module",
		Long: `Scan routes.dirs for templates, compile each into build.output_dir and
write the route module. Unchanged templates are served from the build cache.

Examples:
  signet build
  signet build --workers 4 --debug
  signet build --clean -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.ValidateFlags(); err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if clean {
				if err := os.RemoveAll(cfg.Build.OutputDir); err != nil {
					return errors.WrapIO(err, errors.ErrCodeBuildFailed, "failed to clean output directory")
				}
			}
			_, _, err = buildAll(cmd.Context(), cfg, a.logger(cmd), cmd.OutOrStdout(), flags)
			return err
		},
	}

	flags = AddStandardFlags(a, cmd, "build", "verbosity")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory before building")
	return cmd
}

// buildAll scans and builds every page, printing a summary to out.
func buildAll(ctx context.Context, cfg *config.Config, logger logging.Logger, out io.Writer, flags *StandardFlags) (*scanner.Scanner, *build.Builder, error) {
	start := time.Now()
	sc := scanner.New(registry.New(), cfg.Routes, logger)
	modules, err := sc.ScanAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	builder := build.New(cfg, errors.NewErrorCollector(), logger)
	results, err := builder.Build(ctx, modules)

	if !flags.Quiet {
		printResults(out, results, flags.Verbose)
		printDiagnostics(out, builder.Errors())
		cached, failed := 0, 0
		for _, r := range results {
			if r.CacheHit {
				cached++
			}
			if r.Err != nil {
				failed++
			}
		}
		fmt.Fprintf(out, "Built %d pages in %s (%d cached, %d with errors)\n",
			len(results), time.Since(start).Round(time.Millisecond), cached, failed)
	}
	return sc, builder, err
}

func printResults(out io.Writer, results []build.Result, verbose bool) {
	if !verbose {
		return
	}
	for _, r := range results {
		status := "built"
		switch {
		case r.Err != nil:
			status = "error"
		case r.CacheHit:
			status = "cached"
		}
		fmt.Fprintf(out, "  %-7s %-30s -> %s\n", status, r.Module.Route, r.OutputPath)
	}
}

func printDiagnostics(out io.Writer, collector *errors.ErrorCollector) {
	for _, e := range collector.GetErrors() {
		fmt.Fprintf(out, "%s: %s\n", e.File, e.Message)
	}
}

// printFileDiagnostics prints diagnostics only for the files in results.
func printFileDiagnostics(out io.Writer, collector *errors.ErrorCollector, results []build.Result) {
	for _, r := range results {
		for _, e := range collector.GetErrorsByFile(r.Module.FilePath) {
			fmt.Fprintf(out, "%s: %s\n", e.File, e.Message)
		}
	}
}
