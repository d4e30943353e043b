package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags
	Port int
	Host string

	// Build flags
	Workers   int
	Debug     bool
	OutputDir string

	// Output flags
	OutputFormat string
	Verbose      bool
	Quiet        bool
}

var outputFormats = []string{"table", "json", "yaml"}

// AddStandardFlags adds the named flag groups to a command and binds the
// configuration-backed ones into the app's viper instance.
func AddStandardFlags(a *app, cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(a, cmd, flags)
		case "build":
			addBuildFlags(a, cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		case "verbosity":
			addVerbosityFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(a *app, cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&flags.Host, "host", "localhost", "Host to bind to")
	AddFlagValidation(cmd, "port", ValidatePort)
	a.bind(cmd, map[string]string{
		"port": "server.port",
		"host": "server.host",
	})
}

func addBuildFlags(a *app, cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Workers, "workers", "j", 0, "Parallel compile workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "Write per-page debug artifacts")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "dist", "Directory for compiled modules")
	a.bind(cmd, map[string]string{
		"workers":    "build.workers",
		"debug":      "build.debug",
		"output-dir": "build.output_dir",
	})
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	AddFlagValidation(cmd, "output", ValidateFormat)
}

func addVerbosityFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}
	if f.OutputFormat != "" {
		if err := ValidateFormat(f.OutputFormat); err != nil {
			return err
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort accepts 0 (any free port) through 65535.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateFormat accepts the output formats of listing commands.
func ValidateFormat(format string) error {
	for _, valid := range outputFormats {
		if strings.EqualFold(format, valid) {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s",
		format, strings.Join(outputFormats, ", "))
}
