// Package server serves the casos views over HTTP: the case dashboard and
// the case detail page bound by the route table, a live event stream fed
// from the bus, and health and metrics endpoints.
package server

import (
	"html/template"
	"io"
	"log/slog"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/metrics"
	"github.com/alfredjeanlab/casos/internal/presence"
)

// Server renders the casos views from a CasosClient.
type Server struct {
	client   client.CasosClient
	modes    client.ModeProvider
	metrics  *metrics.Manager
	logger   *slog.Logger
	pages    *template.Template
	sseHub   *sseHub
	presence *presence.Tracker
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records view renders on m and serves m at GET /metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithModes shows the current mode in the page header. It should be the
// same provider the client was built with.
func WithModes(p client.ModeProvider) Option {
	return func(s *Server) { s.modes = p }
}

// WithPresence records event stream viewers on t, shows the viewer count on
// the case page and serves the roster at GET /presence.
func WithPresence(t *presence.Tracker) Option {
	return func(s *Server) { s.presence = t }
}

// New returns a Server backed by c.
func New(c client.CasosClient, opts ...Option) *Server {
	s := &Server{
		client: c,
		modes:  client.StaticMode(""),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		pages:  parsePages(),
		sseHub: newSSEHub(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
