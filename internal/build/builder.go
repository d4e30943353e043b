// Package build compiles discovered templates into JavaScript modules,
// writes the route module that ties them together, and records compile
// diagnostics for the dev server.
package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/signet/internal/cache"
	"github.com/conneroisu/signet/internal/compiler"
	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
	"github.com/conneroisu/signet/internal/registry"
	"gopkg.in/yaml.v3"
)

// Result is the outcome of building one module.
type Result struct {
	Module     *registry.Module
	OutputPath string
	CacheHit   bool
	Duration   time.Duration
	// Err is a compile diagnostic (the fallback output was still written)
	// or an I/O failure.
	Err error
}

// Callback is called after every module build.
type Callback func(result Result)

// Builder turns registered modules into compiled output.
type Builder struct {
	config    *config.Config
	cache     *cache.Cache
	errors    *errors.ErrorCollector
	logger    logging.Logger
	metrics   metrics
	callbacks []Callback
	cbMutex   sync.RWMutex
	restore   sync.Once
}

// New creates a builder. A nil collector or logger gets a private one.
func New(cfg *config.Config, collector *errors.ErrorCollector, logger logging.Logger) *Builder {
	if collector == nil {
		collector = errors.NewErrorCollector()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		config: cfg,
		cache:  cache.New(cfg.Build.CacheMaxBytes, cfg.Build.CacheTTL),
		errors: collector,
		logger: logger.WithComponent("build"),
	}
}

// OnBuild registers a callback for every module result.
func (b *Builder) OnBuild(cb Callback) {
	b.cbMutex.Lock()
	defer b.cbMutex.Unlock()
	b.callbacks = append(b.callbacks, cb)
}

// Cache returns the compiled-output cache.
func (b *Builder) Cache() *cache.Cache {
	return b.cache
}

// Errors returns the collector holding compile diagnostics.
func (b *Builder) Errors() *errors.ErrorCollector {
	return b.errors
}

// Metrics returns a snapshot of build metrics.
func (b *Builder) Metrics() Metrics {
	return b.metrics.snapshot()
}

// ResetMetrics zeroes the build metrics.
func (b *Builder) ResetMetrics() {
	b.metrics.reset()
}

// Build compiles modules on a pool of workers, writes each output file and
// the route module, and persists the cache. Compile diagnostics never fail
// the build; the returned error joins I/O failures only.
func (b *Builder) Build(ctx context.Context, modules []*registry.Module) ([]Result, error) {
	op := logging.StartOperation(b.logger, "build")
	b.restoreCache(ctx)

	results := b.compileAll(ctx, modules)
	if err := ctx.Err(); err != nil {
		return results, err
	}

	var failures []error
	for _, r := range results {
		if r.Err != nil && !errors.IsCompileError(r.Err) {
			failures = append(failures, r.Err)
		}
	}

	if err := b.WriteRoutes(modules); err != nil {
		failures = append(failures, err)
	}
	if dir := b.config.Build.CacheDir; dir != "" {
		if err := b.cache.Save(dir); err != nil {
			b.logger.Warn(ctx, err, "Failed to persist cache", "dir", dir)
		}
	}

	err := errors.CombineErrors(failures...)
	if err != nil {
		op.EndWithError(ctx, err)
	} else {
		op.End(ctx, "modules", len(modules))
	}
	return results, err
}

// BuildOne compiles and writes a single module without touching the route
// module, for incremental rebuilds.
func (b *Builder) BuildOne(ctx context.Context, module *registry.Module) Result {
	b.restoreCache(ctx)
	return b.buildModule(ctx, module)
}

func (b *Builder) restoreCache(ctx context.Context) {
	b.restore.Do(func() {
		dir := b.config.Build.CacheDir
		if dir == "" {
			return
		}
		n, err := b.cache.Load(dir)
		if err != nil {
			b.logger.Warn(ctx, err, "Ignoring unreadable cache", "dir", dir)
			return
		}
		b.logger.Debug(ctx, "Restored cache", "entries", n)
	})
}

// compileAll fans modules out to the worker pool, keeping input order in
// the results.
func (b *Builder) compileAll(ctx context.Context, modules []*registry.Module) []Result {
	results := make([]Result, len(modules))
	jobs := make(chan int)

	workers := b.config.Build.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(modules) {
		workers = len(modules)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.buildModule(ctx, modules[i])
			}
		}()
	}

feed:
	for i := range modules {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (b *Builder) buildModule(ctx context.Context, module *registry.Module) Result {
	start := time.Now()
	result := Result{
		Module:     module,
		OutputPath: filepath.Join(b.config.Build.OutputDir, filepath.FromSlash(module.OutputPath)),
	}
	defer func() {
		result.Duration = time.Since(start)
		b.metrics.record(result)
		b.notify(result)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	source, err := os.ReadFile(module.FilePath)
	if err != nil {
		result.Err = errors.WrapIO(err, errors.ErrCodeFileNotFound, "read template").
			WithLocation(module.FilePath, 0, 0)
		b.logger.Error(ctx, result.Err, "Build failed", "file", module.FilePath)
		return result
	}

	opts := b.options(module)
	key := cache.Key(contentHash(source), fingerprint(opts))
	b.errors.ClearFile(module.FilePath)

	code, hit := b.cache.Get(key)
	result.CacheHit = hit
	if !hit {
		out, compileErr := compiler.CompileWithDiagnostics(string(source), opts)
		code = []byte(out)
		if compileErr != nil {
			result.Err = errors.Wrap(compileErr, errors.ErrorTypeCompile, errors.ErrCodeCompileFailed, "compile failed").
				WithLocation(module.FilePath, 0, 0).
				WithComponent(module.Name)
			b.errors.Add(errors.FromError(result.Err, module.Name, module.FilePath))
			b.logger.Warn(ctx, compileErr, "Compile fell back to diagnostic output",
				"file", module.FilePath, "route", module.Route)
		} else {
			b.cache.Set(key, code)
		}
	}

	if err := writeFile(result.OutputPath, code); err != nil {
		result.Err = errors.ErrBuildFailed(module.Name, err).WithLocation(result.OutputPath, 0, 0)
		b.logger.Error(ctx, result.Err, "Build failed", "output", result.OutputPath)
		return result
	}

	if b.config.Build.Debug {
		if err := b.writeDebug(module, string(source), opts); err != nil {
			b.logger.Warn(ctx, err, "Failed to write debug artifacts", "file", module.FilePath)
		}
	}

	b.logger.Debug(ctx, "Built module", "route", module.Route, "cache_hit", hit)
	return result
}

func (b *Builder) options(module *registry.Module) compiler.Options {
	opts := b.config.Compiler.Options()
	opts.IsPage = true
	opts.Wrap = false
	opts.Name = module.Name
	return opts
}

// writeDebug stores every pipeline stage for module as YAML.
func (b *Builder) writeDebug(module *registry.Module, source string, opts compiler.Options) error {
	data, err := yaml.Marshal(compiler.Debug(source, opts))
	if err != nil {
		return fmt.Errorf("failed to encode debug artifacts: %w", err)
	}
	name := strings.TrimSuffix(filepath.FromSlash(module.OutputPath), ".js") + ".yaml"
	return writeFile(filepath.Join(b.config.Build.DebugDir, name), data)
}

func (b *Builder) notify(result Result) {
	b.cbMutex.RLock()
	defer b.cbMutex.RUnlock()
	for _, cb := range b.callbacks {
		cb(result)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// fingerprint encodes the options that change compiled output.
func fingerprint(opts compiler.Options) string {
	return fmt.Sprintf("wrap=%t,name=%s,page=%t,depth=%d", opts.Wrap, opts.Name, opts.IsPage, opts.MaxDepth)
}
