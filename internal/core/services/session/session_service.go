package session

import (
	"context"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// SessionService keeps the audit trail of realtime subscribers.
type SessionService struct {
	repo ports.SessionRepository
}

func NewSessionService(repo ports.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Record(ctx context.Context, subscriberID string, action domain.SessionAction, remoteAddr, details string) error {
	// Use Domain Factory to ensure business rules
	ev, err := domain.NewSessionEvent(subscriberID, action, remoteAddr, details)
	if err != nil {
		return err
	}
	return s.repo.SaveSessionEvent(ctx, *ev)
}

// Recent returns the newest events. Non-positive limits fall back to
// DefaultLimit; larger ones are capped at MaxLimit.
func (s *SessionService) Recent(ctx context.Context, limit int) ([]domain.SessionEvent, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.ListSessionEvents(ctx, limit)
}

var _ ports.SessionService = (*SessionService)(nil)
