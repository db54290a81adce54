package handlers

import (
	"net/http"

	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// QueryHandler serves the mocked route and transit lookups.
type QueryHandler struct {
	Routes  ports.RouteService
	Transit ports.TransitService
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(routes ports.RouteService, transit ports.TransitService) *QueryHandler {
	return &QueryHandler{
		Routes:  routes,
		Transit: transit,
	}
}

// HandleRoutes answers GET /api/routes?origin=&dest=
func (h *QueryHandler) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.Routes.Search(r.Context(), q.Get("origin"), q.Get("dest")))
}

// HandleTransit answers GET /api/transit
func (h *QueryHandler) HandleTransit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Transit.Board(r.Context()))
}
