package handlers

import (
	"net/http"
)

// ConfigHandler exposes client-side integration settings.
type ConfigHandler struct {
	MapsAPIKey *string
}

// NewConfigHandler creates a new ConfigHandler. A nil key is reported as null.
func NewConfigHandler(mapsAPIKey *string) *ConfigHandler {
	return &ConfigHandler{MapsAPIKey: mapsAPIKey}
}

// HandleGetConfig returns current configuration
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]*string{
		"mapsApiKey": h.MapsAPIKey,
	})
}
