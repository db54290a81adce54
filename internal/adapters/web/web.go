package web

// Re-export types from subpackages for backward compatibility
import (
	"github.com/lcalzada-xor/navify/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// WSManager is re-exported from the websocket subpackage
type WSManager = websocket.WSManager

// WSMessage is the realtime envelope.
type WSMessage = websocket.WSMessage

// NewWSManager creates a new WSManager
func NewWSManager(hub ports.SubscriptionHub, sessions ports.SessionService, allowedOrigins []string) *WSManager {
	return websocket.NewWSManager(hub, sessions, allowedOrigins)
}
