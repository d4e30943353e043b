// Package cmd provides the signet command-line interface.
//
// Configuration is resolved by viper with this precedence (highest first):
//
//  1. Command-line flags (--port, --workers, ...)
//  2. SIGNET_<SECTION>_<KEY> environment variables (SIGNET_SERVER_PORT)
//  3. The config file: --config, else SIGNET_CONFIG_FILE, else .signet.yml
//  4. Built-in defaults
package cmd

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by one command tree.
type app struct {
	viper      *viper.Viper
	cfgFile    string
	bindings   map[*cobra.Command]map[string]string
	fileLogger *logging.FileLogger
}

// NewRootCmd builds the signet command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{viper: viper.New(), bindings: map[*cobra.Command]map[string]string{}}

	rootCmd := &cobra.Command{
		Use:   "signet",
		Short: "Compile JSX-like templates into reactive JavaScript modules",
		Long: `signet compiles JSX-like page templates into JavaScript modules that build
the DOM through a small reactive runtime.

Quick Start:
  signet compile page.jsx     Compile one template to stdout
  signet build                Build every page under routes.dirs
  signet serve                Start the dev server with live reload
  signet routes               List discovered routes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.bindFlags(cmd)
			return a.initConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.fileLogger != nil {
				return a.fileLogger.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .signet.yml, can also use SIGNET_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-dir", "", "also write JSON logs to a dated file in this directory")
	_ = a.viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.viper.BindPFlag("log-dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	rootCmd.AddCommand(
		newCompileCmd(a),
		newBuildCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newRoutesCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the signet CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// initConfig points viper at the config file and environment.
func (a *app) initConfig() error {
	v := a.viper
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else if envConfigFile := os.Getenv("SIGNET_CONFIG_FILE"); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".signet")
	}

	v.SetEnvPrefix("SIGNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to read config file")
		}
	}

	if _, err := logging.ParseLevel(v.GetString("log-level")); err != nil {
		return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid --log-level")
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.LoadFrom(a.viper)
}

func (a *app) logger(cmd *cobra.Command) logging.Logger {
	level, _ := logging.ParseLevel(a.viper.GetString("log-level"))
	var logger logging.Logger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	if dir := a.viper.GetString("log-dir"); dir != "" {
		if a.fileLogger == nil {
			fileLogger, err := logging.NewFileLogger(&logging.LoggerConfig{Level: level, Format: "json"}, dir)
			if err != nil {
				logger.Warn(cmd.Context(), err, "File logging disabled", "dir", dir)
			} else {
				a.fileLogger = fileLogger
			}
		}
		if a.fileLogger != nil {
			logger = logging.NewMultiLogger(logger, a.fileLogger)
		}
	}

	if used := a.viper.ConfigFileUsed(); used != "" {
		logger.Debug(cmd.Context(), "Using config file", "path", used)
	}
	return logger
}

// bind records config keys backed by cmd's flags. Several commands share
// keys, so the flags are only bound once the executing command is known.
func (a *app) bind(cmd *cobra.Command, bindings map[string]string) {
	if a.bindings[cmd] == nil {
		a.bindings[cmd] = map[string]string{}
	}
	for flagName, key := range bindings {
		a.bindings[cmd][flagName] = key
	}
}

// bindFlags routes the executing command's flag values into viper so they
// override file and env values and go through config validation.
func (a *app) bindFlags(cmd *cobra.Command) {
	for flagName, key := range a.bindings[cmd] {
		if flag := cmd.Flags().Lookup(flagName); flag != nil {
			_ = a.viper.BindPFlag(key, flag)
		}
	}
}
