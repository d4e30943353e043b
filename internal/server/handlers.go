package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/conneroisu/signet/internal/build"
	"github.com/conneroisu/signet/internal/version"
)

// Handler returns the dev server's HTTP routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/dist/", http.StripPrefix("/dist/", http.FileServer(http.Dir(s.config.Build.OutputDir))))
	mux.HandleFunc("/_signet/page/", s.handlePage)
	mux.HandleFunc("/_signet/errors", s.handleErrors)
	mux.HandleFunc("/_signet/health", s.handleHealth)
	mux.HandleFunc("/_signet/ws", s.reload.HandleWebSocket)
	return s.addMiddleware(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := indexPage(indexData{
		Modules: s.registry.All(),
		Version: version.Get().Short(),
		Overlay: s.builder.Errors().ErrorOverlay(),
	})
	templ.Handler(page).ServeHTTP(w, r)
}

// handlePage serves a document that mounts one compiled page, looked up by
// route: /_signet/page/blog/:id previews the "/blog/:id" page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	route := "/" + strings.Trim(strings.TrimPrefix(r.URL.Path, "/_signet/page"), "/")
	module, ok := s.registry.ByRoute(route)
	if !ok {
		http.NotFound(w, r)
		return
	}

	templ.Handler(previewPage(module, s.builder.Errors().ErrorOverlay())).ServeHTTP(w, r)
}

// handleErrors returns the current error overlay, empty when every page
// compiled.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(s.builder.Errors().ErrorOverlay()))
}

type healthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Pages     int           `json:"pages"`
	Errors    int           `json:"errors"`
	Clients   int           `json:"clients"`
	Build     build.Metrics `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	errs := len(s.builder.Errors().GetErrors())
	status := "healthy"
	if errs > 0 {
		status = "error"
	}

	health := healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   version.Get().Short(),
		Pages:     s.registry.Count(),
		Errors:    errs,
		Clients:   s.reload.ConnectedClients(),
		Build:     s.builder.Metrics(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

// addMiddleware adds CORS headers for allowed origins and request logging.
func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); s.IsAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "Request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
