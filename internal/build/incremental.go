package build

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/scanner"
	"github.com/conneroisu/signet/internal/watcher"
)

// Rebuild applies a batch of file changes: removed templates lose their
// output, changed ones are rescanned and rebuilt. The route module is
// rewritten only when the set of routes changed.
func (b *Builder) Rebuild(ctx context.Context, sc *scanner.Scanner, events []watcher.ChangeEvent) ([]Result, error) {
	reg := sc.Registry()
	routesChanged := false
	var results []Result
	var failures []error

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !sc.Match(event.Path) {
			continue
		}

		previous, known := reg.Get(filepath.Clean(event.Path))

		if event.Gone() {
			if !known {
				continue
			}
			sc.Forget(event.Path)
			b.errors.ClearFile(previous.FilePath)
			output := filepath.Join(b.config.Build.OutputDir, filepath.FromSlash(previous.OutputPath))
			if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
				failures = append(failures, errors.WrapIO(err, errors.ErrCodeBuildFailed, "remove module output"))
			}
			b.logger.Info(ctx, "Removed module", "route", previous.Route)
			routesChanged = true
			continue
		}

		module, err := sc.ScanFile(event.Path)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if !known || previous.Route != module.Route {
			routesChanged = true
		}

		result := b.BuildOne(ctx, module)
		if result.Err != nil && !errors.IsCompileError(result.Err) {
			failures = append(failures, result.Err)
		}
		results = append(results, result)
	}

	if routesChanged {
		if err := b.WriteRoutes(reg.All()); err != nil {
			failures = append(failures, err)
		}
	}
	if dir := b.config.Build.CacheDir; dir != "" && len(results) > 0 {
		if err := b.cache.Save(dir); err != nil {
			b.logger.Warn(ctx, err, "Failed to persist cache", "dir", dir)
		}
	}

	return results, errors.CombineErrors(failures...)
}
