package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/navify/internal/adapters/web"
	"github.com/lcalzada-xor/navify/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/navify/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

const (
	RouteRateLimit  = 30
	RouteRateWindow = time.Minute
)

// Deps are the collaborators the HTTP surface reads from.
type Deps struct {
	Store    ports.AreaReader
	Hub      ports.SubscriptionHub
	Routes   ports.RouteService
	Transit  ports.TransitService
	Sessions ports.SessionService
	Exporter handlers.ReportExporter
}

// Options configure the listener and the public surface.
type Options struct {
	Addr           string
	StaticDir      string
	AllowedOrigins []string
	MapsAPIKey     *string
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr           string
	StaticDir      string
	AllowedOrigins []string

	WSManager      *web.WSManager
	TrafficHandler *handlers.TrafficHandler
	QueryHandler   *handlers.QueryHandler
	ConfigHandler  *handlers.ConfigHandler
	SessionHandler *handlers.SessionHandler
	RouteLimiter   *middleware.RateLimiter

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(opts Options, deps Deps) *Server {
	return &Server{
		Addr:           opts.Addr,
		StaticDir:      opts.StaticDir,
		AllowedOrigins: opts.AllowedOrigins,

		WSManager:      web.NewWSManager(deps.Hub, deps.Sessions, opts.AllowedOrigins),
		TrafficHandler: handlers.NewTrafficHandler(deps.Store, deps.Exporter),
		QueryHandler:   handlers.NewQueryHandler(deps.Routes, deps.Transit),
		ConfigHandler:  handlers.NewConfigHandler(opts.MapsAPIKey),
		SessionHandler: handlers.NewSessionHandler(deps.Sessions),
		RouteLimiter:   middleware.NewRateLimiter(RouteRateLimit, RouteRateWindow, nil),
	}
}

// Run listens on Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.RouteLimiter.Run(ctx)

	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "navify-server")

	s.srv = &http.Server{
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", lis.Addr())
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
