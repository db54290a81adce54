package ports

import (
	"context"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

// RouteService produces mocked, congestion-weighted route options.
type RouteService interface {
	Search(ctx context.Context, origin, dest string) domain.RouteSearch
}

// TransitService produces the mocked departure board.
type TransitService interface {
	Board(ctx context.Context) domain.TransitBoard
}

// SessionService records and lists realtime subscriber lifecycle events.
type SessionService interface {
	Record(ctx context.Context, subscriberID string, action domain.SessionAction, remoteAddr, details string) error
	Recent(ctx context.Context, limit int) ([]domain.SessionEvent, error)
}

// SessionRepository handles the persistence of session events.
type SessionRepository interface {
	SaveSessionEvent(ctx context.Context, ev domain.SessionEvent) error
	ListSessionEvents(ctx context.Context, limit int) ([]domain.SessionEvent, error)
}
