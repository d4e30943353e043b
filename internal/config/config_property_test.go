//go:build property
// +build property

package config

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/viper"
)

func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ports in range load", prop.ForAll(
		func(port int) bool {
			v := viper.New()
			v.Set("server.port", port)
			cfg, err := LoadFrom(v)
			return err == nil && cfg.Server.Port == port
		},
		gen.IntRange(0, 65535),
	))

	properties.Property("ports out of range are rejected", prop.ForAll(
		func(port int) bool {
			v := viper.New()
			v.Set("server.port", port)
			_, err := LoadFrom(v)
			return err != nil
		},
		gen.OneGenOf(gen.IntRange(-100000, -1), gen.IntRange(65536, 1000000)),
	))

	properties.Property("identifiers are accepted as component names", prop.ForAll(
		func(name string) bool {
			return validateCompilerConfig(&CompilerConfig{Name: name}) == nil
		},
		gen.Identifier(),
	))

	properties.Property("parent references are always rejected", prop.ForAll(
		func(segments []string) bool {
			path := strings.Join(append(segments, "..", ".."), "/")
			return validatePath(path) != nil
		},
		gen.SliceOfN(1, gen.Identifier()),
	))

	properties.Property("path validation is deterministic", prop.ForAll(
		func(path string) bool {
			first := validatePath(path) == nil
			second := validatePath(path) == nil
			return first == second
		},
		gen.AnyString(),
	))

	properties.Property("dotted extensions are accepted", prop.ForAll(
		func(ext string) bool {
			cfg := RoutesConfig{
				Dirs:       []string{"./pages"},
				Extensions: []string{fmt.Sprintf(".%s", ext)},
				Module:     "routes.js",
			}
			return validateRoutesConfig(&cfg) == nil
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
