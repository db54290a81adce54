package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/navify/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/navify/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Realtime channel
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket).Methods(http.MethodGet)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Read-only API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CORSMiddleware(s.AllowedOrigins))
	api.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	get := []string{http.MethodGet, http.MethodOptions}
	limitRoutes := middleware.RateLimitMiddleware(s.RouteLimiter)

	api.HandleFunc("/traffic", s.TrafficHandler.HandleGetTraffic).Methods(get...)
	api.HandleFunc("/traffic/summary", s.TrafficHandler.HandleGetSummary).Methods(get...)
	api.HandleFunc("/traffic/report.pdf", s.TrafficHandler.HandleReport).Methods(get...)
	api.HandleFunc("/areas/{id}", s.TrafficHandler.HandleGetArea).Methods(get...)
	api.Handle("/routes", limitRoutes(http.HandlerFunc(s.QueryHandler.HandleRoutes))).Methods(get...)
	api.HandleFunc("/transit", s.QueryHandler.HandleTransit).Methods(get...)
	api.HandleFunc("/config", s.ConfigHandler.HandleGetConfig).Methods(get...)
	api.HandleFunc("/sessions", s.SessionHandler.HandleGetSessions).Methods(get...)

	// Dashboard static files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}
