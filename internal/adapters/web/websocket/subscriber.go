package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

// SendBufferSize bounds the queued frames per connection; a full buffer is a
// delivery failure.
const SendBufferSize = 16

// wsSubscriber adapts one websocket connection to ports.Subscriber. Frames are
// queued by Send and written by a dedicated writer goroutine.
type wsSubscriber struct {
	id         uuid.UUID
	conn       *ws.Conn
	remoteAddr string

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	pingInterval time.Duration
	writeWait    time.Duration
}

func newSubscriber(conn *ws.Conn, remoteAddr string, pingInterval, writeWait time.Duration) *wsSubscriber {
	return &wsSubscriber{
		id:           uuid.New(),
		conn:         conn,
		remoteAddr:   remoteAddr,
		sendCh:       make(chan []byte, SendBufferSize),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeWait:    writeWait,
	}
}

func (s *wsSubscriber) ID() uuid.UUID { return s.id }

// Send queues a traffic_update frame without blocking.
func (s *wsSubscriber) Send(snap domain.TrafficSnapshot) error {
	select {
	case <-s.done:
		return domain.ErrSubscriberClosed
	default:
	}

	data, err := json.Marshal(WSMessage{Type: EventTrafficUpdate, Payload: snap})
	if err != nil {
		return err
	}

	select {
	case s.sendCh <- data:
		return nil
	case <-s.done:
		return domain.ErrSubscriberClosed
	default:
		return domain.ErrSubscriberLagging
	}
}

// Close stops the writer, which closes the connection.
func (s *wsSubscriber) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// writePump owns all writes on the connection.
func (s *wsSubscriber) writePump() {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
		s.conn.Close()
	}()

	for {
		select {
		case data := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := s.conn.WriteMessage(ws.TextMessage, data); err != nil {
				slog.Debug("WebSocket write failed", "subscriber", s.id, "error", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := s.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				slog.Debug("WebSocket ping failed", "subscriber", s.id, "error", err)
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			_ = s.conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
			return
		}
	}
}

var _ ports.Subscriber = (*wsSubscriber)(nil)
