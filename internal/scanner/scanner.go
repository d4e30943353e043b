// Package scanner discovers template files under the configured route
// directories, derives their routes and component names, and keeps the
// module registry in sync with the file system.
//
// Routes follow the file layout: pages/index.jsx serves "/",
// pages/blog/post.jsx serves "/blog/post", and a bracketed segment such as
// pages/blog/[id].jsx becomes a parameter, "/blog/:id". A bracketed
// rest segment, [...slug], becomes "*slug".
package scanner

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
	"github.com/conneroisu/signet/internal/registry"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scanner walks route directories and registers what it finds.
type Scanner struct {
	registry *registry.Registry
	config   config.RoutesConfig
	logger   logging.Logger
}

// New creates a scanner feeding reg.
func New(reg *registry.Registry, cfg config.RoutesConfig, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{
		registry: reg,
		config:   cfg,
		logger:   logger.WithComponent("scanner"),
	}
}

// Registry returns the registry the scanner writes to.
func (s *Scanner) Registry() *registry.Registry {
	return s.registry
}

// ScanAll scans every route directory and drops registered modules whose
// files no longer exist. Missing route directories are skipped.
func (s *Scanner) ScanAll(ctx context.Context) ([]*registry.Module, error) {
	seen := make(map[string]bool)
	var modules []*registry.Module

	for _, dir := range s.config.Dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			s.logger.Warn(ctx, err, "Route directory not found", "dir", dir)
			continue
		}

		found, err := s.ScanDirectory(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			seen[m.FilePath] = true
		}
		modules = append(modules, found...)
	}

	for _, m := range s.registry.All() {
		if !seen[m.FilePath] {
			s.registry.Remove(m.FilePath)
		}
	}

	s.logger.Debug(ctx, "Scan complete", "modules", len(modules))
	return modules, nil
}

// ScanDirectory registers every template under dir.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) ([]*registry.Module, error) {
	root, err := validatePath(dir)
	if err != nil {
		return nil, errors.ErrInvalidPath(dir).WithContext("reason", err.Error())
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && s.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.matchRel(root, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, fmt.Sprintf("scanning %s", dir))
	}

	modules := make([]*registry.Module, 0, len(files))
	for _, path := range files {
		m, err := s.scanFile(root, path)
		if err != nil {
			s.logger.Warn(ctx, err, "Skipping unreadable template", "file", path)
			continue
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// ScanFile registers a single template. The file must live under one of the
// route directories.
func (s *Scanner) ScanFile(path string) (*registry.Module, error) {
	root, ok := s.RootFor(path)
	if !ok {
		return nil, errors.ErrInvalidPath(path).WithContext("reason", "not under a route directory")
	}
	if !s.matchRel(root, path) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidPath, fmt.Sprintf("%s is not a template", path))
	}
	return s.scanFile(root, path)
}

// Forget removes the module for path, reporting whether it was registered.
func (s *Scanner) Forget(path string) bool {
	return s.registry.Remove(filepath.Clean(path))
}

// Match reports whether path names a template the scanner would register.
func (s *Scanner) Match(path string) bool {
	root, ok := s.RootFor(path)
	return ok && s.matchRel(root, path)
}

// RootFor returns the route directory containing path.
func (s *Scanner) RootFor(path string) (string, bool) {
	clean := filepath.Clean(path)
	for _, dir := range s.config.Dirs {
		root := filepath.Clean(dir)
		rel, err := filepath.Rel(root, clean)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return root, true
	}
	return "", false
}

func (s *Scanner) scanFile(root, path string) (*registry.Module, error) {
	clean, err := validatePath(path)
	if err != nil {
		return nil, errors.ErrPathTraversal(path)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "stat template")
	}
	content, err := os.ReadFile(clean)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeFileNotFound, "read template")
	}

	rel, err := filepath.Rel(root, clean)
	if err != nil {
		return nil, errors.ErrInvalidPath(path)
	}
	rel = filepath.ToSlash(rel)

	module := &registry.Module{
		Name:       ComponentName(rel),
		Route:      Route(rel),
		FilePath:   clean,
		OutputPath: OutputPath(rel),
		Hash:       fmt.Sprintf("%x", crc32.ChecksumIEEE(content)),
		Size:       info.Size(),
		LastMod:    info.ModTime(),
	}
	s.registry.Register(module)
	return module, nil
}

func (s *Scanner) matchRel(root, path string) bool {
	if !s.hasExtension(path) {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/")[:strings.Count(rel, "/")] {
		if s.skipDir(part) {
			return false
		}
	}
	return !s.excluded(rel)
}

func (s *Scanner) hasExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range s.config.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// excluded matches exclude patterns against both the base name and the
// path relative to the route directory.
func (s *Scanner) excluded(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range s.config.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// skipDir reports directories never scanned: hidden ones, node_modules, and
// underscore-prefixed private folders.
func (s *Scanner) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules"
}

// Route derives the URL path for a template path relative to its route
// directory.
func Route(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	segments := strings.Split(rel, "/")
	if segments[len(segments)-1] == "index" {
		segments = segments[:len(segments)-1]
	}

	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]") {
			param := seg[1 : len(seg)-1]
			if rest, ok := strings.CutPrefix(param, "..."); ok {
				seg = "*" + rest
			} else {
				seg = ":" + param
			}
		}
		out = append(out, seg)
	}
	return "/" + strings.Join(out, "/")
}

// OutputPath returns the compiled module path for a template path relative
// to its route directory.
func OutputPath(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".js"
}

// ComponentName derives a component identifier from a template's file name:
// user-card.jsx becomes UserCard, [id].jsx becomes Id. An index file takes
// its directory's name; the root index is Index.
func ComponentName(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	segments := strings.Split(rel, "/")
	base := segments[len(segments)-1]
	if base == "index" && len(segments) > 1 {
		base = segments[len(segments)-2]
	}

	words := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	title := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	name := b.String()
	if name == "" {
		return "Page"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		return "Page" + name
	}
	return name
}

// validatePath cleans path and rejects parent-directory references.
func validatePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return "", fmt.Errorf("path contains directory traversal: %s", path)
		}
	}
	return cleanPath, nil
}
