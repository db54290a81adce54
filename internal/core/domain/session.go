package domain

import (
	"time"
)

// SessionAction identifies a realtime subscriber lifecycle event.
type SessionAction string

const (
	SessionConnected    SessionAction = "CONNECTED"
	SessionRefreshed    SessionAction = "REFRESHED"
	SessionDisconnected SessionAction = "DISCONNECTED"
	SessionDropped      SessionAction = "DROPPED"
)

// SessionEvent records one lifecycle transition of a realtime subscriber.
type SessionEvent struct {
	ID           uint          `json:"id"`
	SubscriberID string        `json:"subscriber_id"`
	Action       SessionAction `json:"action"`
	RemoteAddr   string        `json:"remote_addr"`
	Details      string        `json:"details,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NewSessionEvent is the designated factory for SessionEvent.
func NewSessionEvent(subscriberID string, action SessionAction, remoteAddr, details string) (*SessionEvent, error) {
	if subscriberID == "" {
		return nil, ErrMissingSubscriber
	}
	if !isValidSessionAction(action) {
		return nil, ErrInvalidAction
	}

	return &SessionEvent{
		SubscriberID: subscriberID,
		Action:       action,
		RemoteAddr:   remoteAddr,
		Details:      details,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func isValidSessionAction(action SessionAction) bool {
	switch action {
	case SessionConnected, SessionRefreshed, SessionDisconnected, SessionDropped:
		return true
	}
	return false
}
