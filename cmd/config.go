package cmd

import (
	"fmt"

	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration signet would use after merging defaults, the
config file, SIGNET_* environment variables and flags.

Examples:
  signet config
  signet config validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report errors and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Decode(a.viper)
			if err != nil {
				return err
			}

			result := config.ValidateConfigWithDetails(cfg)
			out := cmd.OutOrStdout()
			if !result.HasErrors() && !result.HasWarnings() {
				fmt.Fprintln(out, "✅ Configuration is valid")
				return nil
			}
			fmt.Fprint(out, result.String())
			if result.HasErrors() {
				return errors.NewConfigError(errors.ErrCodeConfigInvalid,
					fmt.Sprintf("configuration has %d error(s)", len(result.Errors)))
			}
			return nil
		},
	})

	return cmd
}
