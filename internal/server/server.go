// Package server runs the development server: it builds every page, serves
// the compiled modules, and pushes reload or error messages to the browser
// whenever a watched template changes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/conneroisu/signet/internal/build"
	"github.com/conneroisu/signet/internal/config"
	"github.com/conneroisu/signet/internal/errors"
	"github.com/conneroisu/signet/internal/logging"
	"github.com/conneroisu/signet/internal/registry"
	"github.com/conneroisu/signet/internal/scanner"
	"github.com/conneroisu/signet/internal/watcher"
	"github.com/conneroisu/signet/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// Server serves built pages with live reload.
type Server struct {
	config   *config.Config
	registry *registry.Registry
	scanner  *scanner.Scanner
	builder  *build.Builder
	watcher  *watcher.FileWatcher
	reload   *websocket.Manager
	logger   logging.Logger

	httpServer  *http.Server
	listener    net.Listener
	serverMutex sync.RWMutex

	shutdownOnce sync.Once
}

// New wires the scanner, builder, watcher and reload hub for cfg.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, cfg.Watch.Ignore, logger)
	if err != nil {
		return nil, errors.WrapBuild(err, errors.ErrCodeInternalError, "failed to create file watcher", "server")
	}

	reg := registry.New()
	s := &Server{
		config:   cfg,
		registry: reg,
		scanner:  scanner.New(reg, cfg.Routes, logger),
		builder:  build.New(cfg, errors.NewErrorCollector(), logger),
		watcher:  fileWatcher,
		logger:   logger.WithComponent("server"),
	}
	s.reload = websocket.NewManager(s, logger)
	s.builder.OnBuild(s.handleBuildResult)
	return s, nil
}

// Builder returns the server's build pipeline.
func (s *Server) Builder() *build.Builder {
	return s.builder
}

// Build scans every route directory and builds all pages.
func (s *Server) Build(ctx context.Context) error {
	modules, err := s.scanner.ScanAll(ctx)
	if err != nil {
		return err
	}
	_, err = s.builder.Build(ctx, modules)
	return err
}

// Start builds, watches and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Build(ctx); err != nil {
		s.logger.Error(ctx, err, "Initial build failed")
	}

	s.setupFileWatcher(ctx)
	go s.logRouteChanges(ctx, s.registry.Watch())

	listener, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeInternalError, "failed to listen on "+s.config.Server.Addr())
	}

	s.serverMutex.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Dev server listening", "url", "http://"+listener.Addr().String(), "pages", s.registry.Count())

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(listener) }()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// logRouteChanges reports pages appearing or disappearing while serving.
func (s *Server) logRouteChanges(ctx context.Context, events <-chan registry.Event) {
	defer s.registry.UnWatch(events)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case registry.EventAdded, registry.EventRemoved:
				s.logger.Info(ctx, "Route "+event.Type.String(), "route", event.Module.Route, "file", event.Module.FilePath)
			default:
				s.logger.Debug(ctx, "Route updated", "route", event.Module.Route)
			}
		}
	}
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) setupFileWatcher(ctx context.Context) {
	s.watcher.AddFilter(watcher.ExtensionFilter(s.config.Routes.Extensions))
	s.watcher.AddFilter(watcher.IgnoreFilter(s.config.Watch.Ignore))
	s.watcher.AddHandler(s.handleFileChange)

	for _, dir := range s.config.Routes.Dirs {
		if err := s.watcher.AddRecursive(dir); err != nil {
			s.logger.Warn(ctx, err, "Failed to watch directory", "dir", dir)
		}
	}

	s.watcher.Start(ctx)
}

// handleFileChange rebuilds changed pages. Per-page reload and error
// messages come from handleBuildResult; removed pages force a full reload.
func (s *Server) handleFileChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(ctx, "File changed", "path", event.Path, "type", event.Type)
	}

	_, err := s.builder.Rebuild(ctx, s.scanner, events)
	if err != nil {
		s.reload.BroadcastMessage(websocket.UpdateMessage{
			Type:    websocket.MessageError,
			Content: templ.EscapeString(err.Error()),
		})
		return err
	}

	for _, event := range events {
		if event.Gone() && s.scanner.Match(event.Path) {
			s.reload.BroadcastMessage(websocket.UpdateMessage{Type: websocket.MessageReload})
			break
		}
	}
	return nil
}

func (s *Server) handleBuildResult(result build.Result) {
	switch {
	case result.Err == nil:
		s.reload.BroadcastMessage(websocket.UpdateMessage{
			Type:   websocket.MessageReload,
			Target: result.Module.Route,
		})
	case errors.IsCompileError(result.Err):
		s.reload.BroadcastMessage(websocket.UpdateMessage{
			Type:    websocket.MessageError,
			Target:  result.Module.Route,
			Content: s.builder.Errors().ErrorOverlay(),
		})
	default:
		s.reload.BroadcastMessage(websocket.UpdateMessage{
			Type:    websocket.MessageError,
			Target:  result.Module.Route,
			Content: templ.EscapeString(result.Err.Error()),
		})
	}
}

// IsAllowedOrigin accepts the server's own address, its loopback aliases
// and the configured allowed origins.
func (s *Server) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	port := s.config.Server.Port
	allowedHosts := []string{
		s.config.Server.Addr(),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	if addr := s.Addr(); addr != "" {
		allowedHosts = append(allowedHosts, addr)
	}
	for _, host := range allowedHosts {
		if originURL.Host == host {
			return true
		}
	}
	return false
}

// Shutdown stops the watcher, disconnects reload clients and closes the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down dev server")

		var errs []error
		if err := s.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
		if err := s.reload.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		shutdownErr = errors.CombineErrors(errs...)
	})

	return shutdownErr
}
