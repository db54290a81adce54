package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

// SnapshotSource is the read-only view of the traffic store.
type SnapshotSource interface {
	// Snapshot returns a self-consistent, freshly stamped copy of all areas.
	Snapshot() domain.TrafficSnapshot
}

// AreaReader looks up a single area without exposing write access.
type AreaReader interface {
	SnapshotSource
	Area(id string) (domain.Area, bool)
}

// SnapshotPublisher runs a mutation tick on its event queue and broadcasts the
// result, so the mutation and its fan-out are ordered against subscriber events.
type SnapshotPublisher interface {
	Publish(ctx context.Context, produce func() domain.TrafficSnapshot) domain.TrafficSnapshot
}

// Subscriber is one realtime connection receiving snapshot pushes.
type Subscriber interface {
	// ID is an opaque handle, unique per connection and never reused.
	ID() uuid.UUID
	// Send delivers a snapshot. A non-nil error means the subscriber is gone.
	Send(snap domain.TrafficSnapshot) error
	// Close releases the underlying transport. Safe to call more than once.
	Close()
}

// SubscriptionHub fans snapshots out to subscribers.
type SubscriptionHub interface {
	SnapshotPublisher
	Broadcast(ctx context.Context, snap domain.TrafficSnapshot)
	Subscribe(ctx context.Context, sub Subscriber) error
	Unsubscribe(id uuid.UUID)
	RequestRefresh(id uuid.UUID)
	Count() int
}
