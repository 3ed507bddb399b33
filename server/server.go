package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-catalog-server/catalog"
	"github.com/jrsteele09/go-catalog-server/internal/config"
	"github.com/jrsteele09/go-catalog-server/token"
	"github.com/rs/zerolog/log"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	catalog      *catalog.Service
	verifier     *token.Verifier
	healthChecks map[string]HealthCheck
}

type Option func(*Server)

// WithHealthCheck adds a named dependency check to the health endpoint
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.healthChecks[name] = check
	}
}

func New(config config.Config, catalogService *catalog.Service, verifier *token.Verifier, opts ...Option) *Server {
	s := &Server{
		env:          config.GetEnv(),
		mux:          http.NewServeMux(),
		config:       config,
		catalog:      catalogService,
		verifier:     verifier,
		healthChecks: make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colouredMethod(method), path))
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
