package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"runtime"
	"strings"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	if len(vr.Errors) > 0 {
		write("❌ Validation Errors", vr.Errors)
		builder.WriteString("\n")
	}
	if len(vr.Warnings) > 0 {
		write("⚠️  Validation Warnings", vr.Warnings)
	}

	return builder.String()
}

// ValidateConfigWithDetails checks config and reports every problem found,
// plus warnings for settings that are valid but likely mistakes.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateCompilerConfigDetails(&config.Compiler, result)
	validateRoutesConfigDetails(&config.Routes, result)
	validateBuildConfigDetails(&config.Build, result)
	validateServerConfigDetails(&config.Server, result)
	validateWatchConfigDetails(&config.Watch, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateCompilerConfigDetails(config *CompilerConfig, result *ValidationResult) {
	if err := validateCompilerConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "compiler",
			Value:   *config,
			Message: err.Error(),
			Suggestions: []string{
				"Component names must be valid JavaScript identifiers, e.g. 'App'",
				"Use max_depth 0 to disable the nesting limit",
			},
		})
	}
	if config.Name != "" && strings.ToUpper(config.Name[:1]) != config.Name[:1] {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "compiler.name",
			Value:   config.Name,
			Message: "component names conventionally start with an uppercase letter",
		})
	}
}

func validateRoutesConfigDetails(config *RoutesConfig, result *ValidationResult) {
	if err := validateRoutesConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "routes",
			Value:   *config,
			Message: err.Error(),
			Suggestions: []string{
				"Use relative directories like './pages'",
				"Extensions must include the leading dot, e.g. '.jsx'",
			},
		})
		return
	}

	for _, dir := range config.Dirs {
		if !pathExists(dir) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "routes.dirs",
				Value:   dir,
				Message: fmt.Sprintf("route directory '%s' does not exist", dir),
				Suggestions: []string{
					fmt.Sprintf("Create it with: mkdir -p %s", dir),
				},
			})
		}
	}
}

func validateBuildConfigDetails(config *BuildConfig, result *ValidationResult) {
	if err := validateBuildConfig(config); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build",
			Value:   *config,
			Message: err.Error(),
			Suggestions: []string{
				"Use relative paths like '.signet/cache'",
				"Avoid parent directory references (..)",
			},
		})
		return
	}

	if config.CacheMaxBytes == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.cache_max_bytes",
			Value:   config.CacheMaxBytes,
			Message: "cache size is 0 - compiled output will never be cached",
		})
	}
	if config.Workers > 4*runtime.NumCPU() {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.workers",
			Value:   config.Workers,
			Message: fmt.Sprintf("%d workers is far above the %d available CPUs", config.Workers, runtime.NumCPU()),
		})
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
		})
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.host",
				Value:   config.Host,
				Message: err.Error(),
				Suggestions: []string{
					"Use 'localhost' for local development",
					"Use '0.0.0.0' to bind to all interfaces",
				},
			})
		}
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "server.allowed_origins",
				Value:   origin,
				Message: "'*' lets any page connect to the reload socket",
			})
		}
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Debounce,
			Message: "debounce must not be negative",
		})
	}

	for _, recommended := range []string{"node_modules", ".git"} {
		if !contains(config.Ignore, recommended) {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "watch.ignore",
				Value:   config.Ignore,
				Message: fmt.Sprintf("consider ignoring '%s' for better performance", recommended),
			})
		}
	}
}

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil || host == "localhost" {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}
	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
