package storage

import (
	"time"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

// SessionEventModel is the GORM model for session events.
type SessionEventModel struct {
	ID           uint   `gorm:"primaryKey"`
	SubscriberID string `gorm:"size:36"`
	Action       string `gorm:"size:16;index"`
	RemoteAddr   string
	Details      string
	Timestamp    time.Time `gorm:"index"`
}

// toDomain converts a database model to a domain entity.
func toDomain(m SessionEventModel) domain.SessionEvent {
	return domain.SessionEvent{
		ID:           m.ID,
		SubscriberID: m.SubscriberID,
		Action:       domain.SessionAction(m.Action),
		RemoteAddr:   m.RemoteAddr,
		Details:      m.Details,
		Timestamp:    m.Timestamp.UTC(),
	}
}

// toModel converts a domain entity to a database model.
func toModel(ev domain.SessionEvent) SessionEventModel {
	return SessionEventModel{
		ID:           ev.ID,
		SubscriberID: ev.SubscriberID,
		Action:       string(ev.Action),
		RemoteAddr:   ev.RemoteAddr,
		Details:      ev.Details,
		Timestamp:    ev.Timestamp,
	}
}
