package traffic

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

func newTestStore(t *testing.T, clock clockwork.Clock, areas ...domain.Area) *Store {
	t.Helper()
	s, err := NewStore(areas, clock)
	require.NoError(t, err)
	return s
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoAreas)

	_, err = NewStore([]domain.Area{{ID: "A1", Congestion: 120}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArea)

	_, err = NewStore([]domain.Area{{ID: "A1", Congestion: 10}, {ID: "A1", Congestion: 20}}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateArea)
}

func TestStore_SnapshotPreservesOrderAndCopies(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_000))
	s := newTestStore(t, clock,
		domain.Area{ID: "B", Name: "Bravo", Congestion: 20},
		domain.Area{ID: "A", Name: "Alpha", Congestion: 10},
	)

	snap := s.Snapshot()
	require.Len(t, snap.Areas, 2)
	assert.Equal(t, "B", snap.Areas[0].ID)
	assert.Equal(t, "A", snap.Areas[1].ID)
	assert.Equal(t, int64(1_000), snap.Timestamp.UnixMilli())

	// Mutating the copy must not leak into the store.
	snap.Areas[0].Congestion = 99
	a, ok := s.Area("B")
	require.True(t, ok)
	assert.Equal(t, 20, a.Congestion)
}

func TestStore_ApplyDeltaClamps(t *testing.T) {
	s := newTestStore(t, nil,
		domain.Area{ID: "A1", Congestion: 30},
		domain.Area{ID: "A2", Congestion: 90},
		domain.Area{ID: "A3", Congestion: 8},
	)

	assert.True(t, s.applyDelta("A1", 10))
	assert.True(t, s.applyDelta("A2", 10))
	assert.True(t, s.applyDelta("A3", -10))

	snap := s.Snapshot()
	assert.Equal(t, 40, snap.Areas[0].Congestion)
	assert.Equal(t, 95, snap.Areas[1].Congestion)
	assert.Equal(t, 5, snap.Areas[2].Congestion)
}

func TestStore_ApplyDeltaUnknownAreaIsNoop(t *testing.T) {
	s := newTestStore(t, nil, domain.Area{ID: "A1", Congestion: 30})
	before := s.Snapshot().Areas

	assert.False(t, s.applyDelta("missing", 10))
	assert.Equal(t, before, s.Snapshot().Areas)
}

func TestStore_TimestampNeverDecreases(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(5_000))
	s := newTestStore(t, clock, domain.Area{ID: "A1", Congestion: 30})

	first := s.Snapshot()

	// Simulate a wall clock step backwards.
	s.clock = clockwork.NewFakeClockAt(time.UnixMilli(1_000))
	second := s.Snapshot()

	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestStore_AreaLookup(t *testing.T) {
	s := newTestStore(t, nil, domain.Area{ID: "A1", Name: "Downtown", Congestion: 30})

	a, ok := s.Area("A1")
	assert.True(t, ok)
	assert.Equal(t, "Downtown", a.Name)

	_, ok = s.Area("A9")
	assert.False(t, ok)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"A1"}, s.IDs())
}
