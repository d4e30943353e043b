package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/signet/internal/registry"
	"github.com/conneroisu/signet/internal/scanner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRoutesCmd(a *app) *cobra.Command {
	var flags *StandardFlags

	cmd := &cobra.Command{
		Use:     "routes",
		Aliases: []string{"r", "list"},
		Short:   "List the routes discovered under routes.dirs",
		Long: `Scan routes.dirs and list every page with its route, component name,
source file and output module.

Examples:
  signet routes
  signet routes -o json
  signet routes -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.ValidateFlags(); err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			sc := scanner.New(registry.New(), cfg.Routes, a.logger(cmd))
			if _, err := sc.ScanAll(cmd.Context()); err != nil {
				return err
			}
			return outputRoutes(cmd.OutOrStdout(), sc.Registry().All(), flags.OutputFormat)
		},
	}

	flags = AddStandardFlags(a, cmd, "output")
	return cmd
}

func outputRoutes(out io.Writer, modules []*registry.Module, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if modules == nil {
			modules = []*registry.Module{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(modules)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(modules); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(modules) == 0 {
			fmt.Fprintln(out, "No pages found.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ROUTE\tCOMPONENT\tSOURCE\tOUTPUT")
		for _, m := range modules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Route, m.Name, m.FilePath, m.OutputPath)
		}
		return w.Flush()
	}
}
