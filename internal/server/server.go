// Package server wires the HTTP mux: Huma REST API, Datastar panel SSE
// and the static viewer page.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/geovraag/internal/api"
	"github.com/joeblew999/geovraag/internal/api/panel"
	"github.com/joeblew999/geovraag/internal/backend"
	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/config"
	"github.com/joeblew999/geovraag/internal/feature"
	"github.com/joeblew999/geovraag/internal/session"
	"github.com/joeblew999/geovraag/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	Service *config.Config // service config (backend endpoint, bounds, colors)
	WebDir  string         // optional path to web/ for the viewer page and restyled fragments
}

// Server is the geovraag HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	humaAPI huma.API
	session *session.Session
}

// New creates a new server. An invalid color override is a startup error.
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		cfg.Service = config.Default()
	}

	classifier, err := classify.NewWithColors(cfg.Service.Colors)
	if err != nil {
		return nil, fmt.Errorf("apply color overrides: %w", err)
	}

	normalizer := feature.NewNormalizer(cfg.Service.Bound())
	client := backend.NewClient(cfg.Service.Backend.URL,
		backend.WithTimeout(cfg.Service.Backend.Timeout()))

	sess := session.New(session.Config{
		Client:     client,
		Normalizer: normalizer,
		Classifier: classifier,
		MapZoom:    cfg.Service.MapZoom,
	})

	renderer, err := rendererFor(cfg.WebDir)
	if err != nil {
		return nil, fmt.Errorf("load fragment templates: %w", err)
	}

	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("geovraag API", "1.0.0")
	humaConfig.Info.Description = "Natural-language query service for Dutch geospatial data: chat turns, map features, legend and statistics."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		session: sess,
	}

	api.NewHandler(sess).RegisterRoutes(humaAPI)
	panel.NewHandler(sess, renderer).RegisterRoutes(humaAPI)

	s.routes()
	return s, nil
}

// rendererFor prefers restyled fragments from the web dir and falls back
// to the embedded set.
func rendererFor(webDir string) (*templates.Renderer, error) {
	if webDir != "" {
		dir := filepath.Join(webDir, "templates", "fragments")
		if r, err := templates.NewFromDir(dir); err == nil {
			return r, nil
		}
	}
	return templates.New()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the API description for the spec export subcommand.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Session exposes the chat session, used by tests.
func (s *Server) Session() *session.Session {
	return s.session
}

// BackendURL reports the configured query backend endpoint.
func (s *Server) BackendURL() string {
	return s.config.Service.Backend.URL
}

func (s *Server) routes() {
	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handleViewer)
	}
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"service": "geovraag", "status": "running"}`)
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	http.ServeFile(w, r, templatePath)
}
