package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// ReportExporter renders a snapshot as a document.
type ReportExporter interface {
	ExportTrafficReport(snap domain.TrafficSnapshot) ([]byte, error)
}

// TrafficHandler serves read-only views of the traffic store.
type TrafficHandler struct {
	Source   ports.AreaReader
	Exporter ReportExporter
}

// NewTrafficHandler creates a new TrafficHandler
func NewTrafficHandler(source ports.AreaReader, exporter ReportExporter) *TrafficHandler {
	return &TrafficHandler{
		Source:   source,
		Exporter: exporter,
	}
}

// HandleGetTraffic returns the current snapshot.
func (h *TrafficHandler) HandleGetTraffic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Source.Snapshot())
}

// HandleGetSummary returns dashboard analytics for the current snapshot.
func (h *TrafficHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Summarize(h.Source.Snapshot()))
}

// HandleGetArea returns one area by id.
func (h *TrafficHandler) HandleGetArea(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	area, ok := h.Source.Area(id)
	if !ok {
		slog.DebugContext(r.Context(), "Unknown area requested", "id", id)
		writeError(w, http.StatusNotFound, domain.ErrAreaNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, area)
}

// HandleReport streams a PDF report of the current snapshot.
func (h *TrafficHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if h.Exporter == nil {
		writeError(w, http.StatusNotImplemented, "reporting disabled")
		return
	}

	snap := h.Source.Snapshot()
	data, err := h.Exporter.ExportTrafficReport(snap)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to generate traffic report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	filename := "traffic-" + strconv.FormatInt(snap.Timestamp.UnixMilli(), 10) + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
