package build

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/registry"
)

// RoutesHeader starts every generated route module.
const RoutesHeader = "// Code generated by signet. DO NOT EDIT.\n"

// GenerateRoutes returns the route module source: one default import per
// page and an exported routes array sorted by path.
func GenerateRoutes(modules []*registry.Module) string {
	sorted := make([]*registry.Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Route != sorted[j].Route {
			return sorted[i].Route < sorted[j].Route
		}
		return sorted[i].FilePath < sorted[j].FilePath
	})

	var b strings.Builder
	b.WriteString(RoutesHeader)
	if len(sorted) > 0 {
		b.WriteString("\n")
	}
	for i, m := range sorted {
		fmt.Fprintf(&b, "import Page%d from %s;\n", i, jsString("./"+m.OutputPath))
	}

	b.WriteString("\nexport const routes = [")
	if len(sorted) > 0 {
		b.WriteString("\n")
	}
	for i, m := range sorted {
		fmt.Fprintf(&b, "  { path: %s, component: Page%d },\n", jsString(m.Route), i)
	}
	b.WriteString("];\n\nexport default routes;\n")
	return b.String()
}

// WriteRoutes writes the route module into the output directory.
func (b *Builder) WriteRoutes(modules []*registry.Module) error {
	path := filepath.Join(b.config.Build.OutputDir, b.config.Routes.Module)
	if err := writeFile(path, []byte(GenerateRoutes(modules))); err != nil {
		return errors.WrapIO(err, errors.ErrCodeBuildFailed, "write route module")
	}
	return nil
}

func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
