package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/lcalzada-xor/navify/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// Realtime event names.
const (
	EventTrafficUpdate = "traffic_update"
	EventRequestUpdate = "request_update"
)

const (
	DefaultPingInterval = 30 * time.Second
	DefaultPongWait     = 60 * time.Second
	writeWait           = 10 * time.Second
	maxMessageSize      = 4096
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inbound keeps the payload raw; request_update ignores it.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSManager upgrades /ws requests and attaches each connection to the hub.
type WSManager struct {
	Hub      ports.SubscriptionHub
	Sessions ports.SessionService

	PingInterval time.Duration
	PongWait     time.Duration

	upgrader ws.Upgrader
}

// NewWSManager creates a manager accepting connections from allowedOrigins.
// sessions may be nil.
func NewWSManager(hub ports.SubscriptionHub, sessions ports.SessionService, allowedOrigins []string) *WSManager {
	m := &WSManager{
		Hub:          hub,
		Sessions:     sessions,
		PingInterval: DefaultPingInterval,
		PongWait:     DefaultPongWait,
	}
	m.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin (no Origin header)
			if origin == "" || middleware.OriginAllowed(allowedOrigins, origin) {
				return true
			}

			slog.Warn("WebSocket: rejected origin", "origin", origin)
			return false
		},
	}
	return m
}

// HandleWebSocket serves one realtime connection until it disconnects.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	sub := newSubscriber(conn, r.RemoteAddr, m.PingInterval, writeWait)
	go sub.writePump()

	if err := m.Hub.Subscribe(ctx, sub); err != nil {
		slog.Debug("WebSocket subscribe failed", "subscriber", sub.ID(), "error", err)
		sub.Close()
		return
	}

	slog.Info("WebSocket connected", "subscriber", sub.ID(), "remote", r.RemoteAddr)
	m.record(ctx, sub.ID(), domain.SessionConnected, r.RemoteAddr, "")

	m.readPump(ctx, sub)

	m.Hub.Unsubscribe(sub.ID())
	sub.Close()
	slog.Info("WebSocket disconnected", "subscriber", sub.ID())
	m.record(ctx, sub.ID(), domain.SessionDisconnected, r.RemoteAddr, "")
}

// readPump consumes client frames until the transport fails or the peer
// stays silent for longer than PongWait.
func (m *WSManager) readPump(ctx context.Context, sub *wsSubscriber) {
	conn := sub.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(m.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(m.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				slog.Debug("WebSocket read failed", "subscriber", sub.ID(), "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(m.PongWait))

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("WebSocket: ignoring malformed frame", "subscriber", sub.ID(), "error", err)
			continue
		}

		switch msg.Type {
		case EventRequestUpdate:
			m.Hub.RequestRefresh(sub.ID())
			m.record(ctx, sub.ID(), domain.SessionRefreshed, sub.remoteAddr, "")
		default:
			slog.Debug("WebSocket: ignoring event", "subscriber", sub.ID(), "type", msg.Type)
		}
	}
}

// RecordDrops returns a hub drop callback that audits dropped subscribers.
// The hub invokes it on its own goroutine, so the write happens asynchronously.
func RecordDrops(sessions ports.SessionService) func(id uuid.UUID, trigger string, err error) {
	return func(id uuid.UUID, trigger string, err error) {
		slog.Debug("Subscriber dropped", "subscriber", id, "trigger", trigger, "error", err)
		if sessions == nil {
			return
		}
		details := trigger
		if err != nil {
			details = trigger + ": " + err.Error()
		}
		go func() {
			if err := sessions.Record(context.Background(), id.String(), domain.SessionDropped, "", details); err != nil {
				slog.Warn("Failed to record session event", "subscriber", id, "action", domain.SessionDropped, "error", err)
			}
		}()
	}
}

func (m *WSManager) record(ctx context.Context, id uuid.UUID, action domain.SessionAction, remoteAddr, details string) {
	if m.Sessions == nil {
		return
	}
	if err := m.Sessions.Record(ctx, id.String(), action, remoteAddr, details); err != nil {
		slog.Warn("Failed to record session event", "subscriber", id, "action", action, "error", err)
	}
}
