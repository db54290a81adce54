package traffic

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

// Store owns the monitored areas and their congestion values.
//
// The area set is fixed at construction. Reads go through Snapshot and Area;
// writes are unexported and only reachable through Mutator.
type Store struct {
	clock clockwork.Clock

	mu       sync.RWMutex
	areas    []domain.Area
	index    map[string]int
	lastTick time.Time
}

// NewStore validates the seed and builds a store. Areas keep their seed order.
func NewStore(seed []domain.Area, clock clockwork.Clock) (*Store, error) {
	if len(seed) == 0 {
		return nil, domain.ErrNoAreas
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Store{
		clock: clock,
		areas: make([]domain.Area, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	for i, a := range seed {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("area %d (%q): %w", i, a.ID, err)
		}
		if _, dup := s.index[a.ID]; dup {
			return nil, fmt.Errorf("area %q: %w", a.ID, domain.ErrDuplicateArea)
		}
		s.areas[i] = a
		s.index[a.ID] = i
	}
	return s, nil
}

// Snapshot returns the current areas with a freshly stamped timestamp.
func (s *Store) Snapshot() domain.TrafficSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Area returns a copy of a single area.
func (s *Store) Area(id string) (domain.Area, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Area{}, false
	}
	return s.areas[i], true
}

// Len returns the fixed number of areas.
func (s *Store) Len() int {
	return len(s.index)
}

// IDs returns the area ids in store order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.areas))
	for i, a := range s.areas {
		ids[i] = a.ID
	}
	return ids
}

// applyDelta adds delta to an area and clamps the result. Unknown ids are a no-op.
func (s *Store) applyDelta(id string, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applyDeltaLocked(id, delta) {
		slog.Debug("Delta for unknown area ignored", "area", id)
		return false
	}
	return true
}

// mutate applies deltaFor to every area in store order and captures the resulting
// snapshot before releasing the lock, so readers never observe a partial pass.
func (s *Store) mutate(deltaFor func(id string) int) domain.TrafficSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.areas {
		s.applyDeltaLocked(a.ID, deltaFor(a.ID))
	}
	return s.snapshotLocked()
}

func (s *Store) applyDeltaLocked(id string, delta int) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.areas[i].Congestion = domain.ClampCongestion(s.areas[i].Congestion + delta)
	return true
}

// snapshotLocked requires s.mu held for writing: it advances lastTick.
func (s *Store) snapshotLocked() domain.TrafficSnapshot {
	now := s.clock.Now()
	if now.Before(s.lastTick) {
		now = s.lastTick
	}
	s.lastTick = now

	areas := make([]domain.Area, len(s.areas))
	copy(areas, s.areas)
	return domain.TrafficSnapshot{Timestamp: now, Areas: areas}
}
