// Package config loads signet's configuration from .signet.yml, SIGNET_*
// environment variables and command-line flags through viper.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/conneroisu/signet/internal/compiler"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/spf13/viper"
)

// Config is the effective signet configuration.
type Config struct {
	Compiler CompilerConfig `yaml:"compiler" mapstructure:"compiler"`
	Routes   RoutesConfig   `yaml:"routes" mapstructure:"routes"`
	Build    BuildConfig    `yaml:"build" mapstructure:"build"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

type CompilerConfig struct {
	Wrap     bool   `yaml:"wrap" mapstructure:"wrap"`
	Name     string `yaml:"name" mapstructure:"name"`
	MaxDepth int    `yaml:"max_depth" mapstructure:"max_depth"`
}

// Options converts the section to compiler options.
func (c CompilerConfig) Options() compiler.Options {
	return compiler.Options{Wrap: c.Wrap, Name: c.Name, MaxDepth: c.MaxDepth}
}

type RoutesConfig struct {
	Dirs            []string `yaml:"dirs" mapstructure:"dirs"`
	Extensions      []string `yaml:"extensions" mapstructure:"extensions"`
	ExcludePatterns []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
	Module          string   `yaml:"module" mapstructure:"module"`
}

type BuildConfig struct {
	OutputDir     string        `yaml:"output_dir" mapstructure:"output_dir"`
	CacheDir      string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheMaxBytes int64         `yaml:"cache_max_bytes" mapstructure:"cache_max_bytes"`
	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Debug         bool          `yaml:"debug" mapstructure:"debug"`
	DebugDir      string        `yaml:"debug_dir" mapstructure:"debug_dir"`
	Workers       int           `yaml:"workers" mapstructure:"workers"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	Ignore   []string      `yaml:"ignore" mapstructure:"ignore"`
}

// SetDefaults registers every key with its default so that environment
// overrides apply to keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("compiler.wrap", false)
	v.SetDefault("compiler.name", compiler.DefaultName)
	v.SetDefault("compiler.max_depth", 0)

	v.SetDefault("routes.dirs", []string{"./pages"})
	v.SetDefault("routes.extensions", []string{".jsx"})
	v.SetDefault("routes.exclude_patterns", []string{"*_test.jsx"})
	v.SetDefault("routes.module", "routes.js")

	v.SetDefault("build.output_dir", "dist")
	v.SetDefault("build.cache_dir", ".signet/cache")
	v.SetDefault("build.cache_max_bytes", int64(64<<20))
	v.SetDefault("build.cache_ttl", time.Hour)
	v.SetDefault("build.debug", false)
	v.SetDefault("build.debug_dir", ".signet/debug")
	v.SetDefault("build.workers", runtime.NumCPU())

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("watch.debounce", 100*time.Millisecond)
	v.SetDefault("watch.ignore", []string{"node_modules", ".git", "dist"})
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Decode(v)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}

	return config, nil
}

// Decode reads the configuration held by v without validating it.
func Decode(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to unmarshal config")
	}

	if config.Build.Workers <= 0 {
		config.Build.Workers = runtime.NumCPU()
	}
	if config.Compiler.Name == "" {
		config.Compiler.Name = compiler.DefaultName
	}

	return &config, nil
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

func validateConfig(config *Config) error {
	if err := validateCompilerConfig(&config.Compiler); err != nil {
		return fmt.Errorf("compiler config: %w", err)
	}
	if err := validateRoutesConfig(&config.Routes); err != nil {
		return fmt.Errorf("routes config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch config: negative debounce %s", config.Watch.Debounce)
	}
	return nil
}

func validateCompilerConfig(config *CompilerConfig) error {
	if !identifierRegex.MatchString(config.Name) {
		return fmt.Errorf("name %q is not a valid identifier", config.Name)
	}
	if config.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative: %d", config.MaxDepth)
	}
	return nil
}

func validateRoutesConfig(config *RoutesConfig) error {
	if len(config.Dirs) == 0 {
		return fmt.Errorf("at least one route directory is required")
	}
	for _, dir := range config.Dirs {
		if err := validatePath(dir); err != nil {
			return fmt.Errorf("invalid route dir '%s': %w", dir, err)
		}
	}
	if len(config.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	for _, ext := range config.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}
	for _, pattern := range config.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
	}
	if config.Module == "" || strings.ContainsAny(config.Module, `/\`) {
		return fmt.Errorf("module %q must be a plain file name", config.Module)
	}
	return nil
}

func validateBuildConfig(config *BuildConfig) error {
	for field, dir := range map[string]string{
		"output_dir": config.OutputDir,
		"cache_dir":  config.CacheDir,
		"debug_dir":  config.DebugDir,
	} {
		if dir == "" {
			continue
		}
		if err := validateRelativeDir(dir); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if config.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if config.CacheMaxBytes < 0 {
		return fmt.Errorf("cache_max_bytes must not be negative")
	}
	if config.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 lets the system pick a port.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}
	return nil
}

// validateRelativeDir accepts only relative paths that stay inside the
// project directory.
func validateRelativeDir(dir string) error {
	cleanPath := filepath.Clean(dir)
	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("should be relative path: %s", dir)
	}
	return validatePath(dir)
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}
