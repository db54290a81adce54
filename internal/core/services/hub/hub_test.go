package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/services/traffic"
)

var errBroken = errors.New("broken pipe")

type fakeSubscriber struct {
	id uuid.UUID

	mu       sync.Mutex
	received []domain.TrafficSnapshot
	broken   bool
	closed   bool
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{id: uuid.New()}
}

func (f *fakeSubscriber) ID() uuid.UUID { return f.id }

func (f *fakeSubscriber) Send(snap domain.TrafficSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken || f.closed {
		return errBroken
	}
	f.received = append(f.received, snap)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSubscriber) setBroken() {
	f.mu.Lock()
	f.broken = true
	f.mu.Unlock()
}

func (f *fakeSubscriber) snapshots() []domain.TrafficSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.TrafficSnapshot, len(f.received))
	copy(out, f.received)
	return out
}

func (f *fakeSubscriber) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testStore(t *testing.T, clock clockwork.Clock) *traffic.Store {
	t.Helper()
	store, err := traffic.NewStore([]domain.Area{
		{ID: "A1", Name: "Downtown", Congestion: 30},
		{ID: "A2", Name: "Harbor", Congestion: 90},
	}, clock)
	require.NoError(t, err)
	return store
}

func testHub(t *testing.T, store *traffic.Store, onDrop DropFunc) *Hub {
	t.Helper()
	h := New(store, onDrop)
	t.Cleanup(h.Stop)
	return h
}

func TestHub_ScenarioC_SubscribeThenRefresh(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	store := testStore(t, clock)
	h := testHub(t, store, nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))

	got := sub.snapshots()
	require.Len(t, got, 1, "subscribe delivers one snapshot synchronously")
	assert.Equal(t, store.Snapshot().Areas, got[0].Areas)

	h.RequestRefresh(sub.ID())

	got = sub.snapshots()
	require.Len(t, got, 2)
	assert.Equal(t, got[0], got[1], "no mutation between the two deliveries")
}

func TestHub_ScenarioD_TickFanOutIsIdentical(t *testing.T) {
	store := testStore(t, nil)
	h := testHub(t, store, nil)
	m := traffic.NewMutator(store, h, traffic.WithDeltaSource(traffic.FixedDelta(3)))

	h1, h2 := newFakeSubscriber(), newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), h1))
	require.NoError(t, h.Subscribe(context.Background(), h2))

	tick := m.Tick(context.Background())

	s1, s2 := h1.snapshots(), h2.snapshots()
	require.Len(t, s1, 2)
	require.Len(t, s2, 2)
	assert.Equal(t, s1[1], s2[1])
	assert.Equal(t, tick, s1[1])
	assert.Equal(t, 33, s1[1].Areas[0].Congestion)
	assert.Equal(t, 93, s1[1].Areas[1].Congestion)
}

func TestHub_BroadcastIsolatesBrokenSubscriber(t *testing.T) {
	var (
		mu      sync.Mutex
		dropped []uuid.UUID
	)
	h := testHub(t, testStore(t, nil), func(id uuid.UUID, trigger string, err error) {
		mu.Lock()
		defer mu.Unlock()
		dropped = append(dropped, id)
		assert.Equal(t, "tick", trigger)
		assert.ErrorIs(t, err, errBroken)
	})

	a, b, c := newFakeSubscriber(), newFakeSubscriber(), newFakeSubscriber()
	for _, s := range []*fakeSubscriber{a, b, c} {
		require.NoError(t, h.Subscribe(context.Background(), s))
	}
	b.setBroken()

	snap := domain.TrafficSnapshot{Timestamp: time.UnixMilli(42), Areas: []domain.Area{{ID: "A1", Congestion: 50}}}
	h.Broadcast(context.Background(), snap)

	assert.Len(t, a.snapshots(), 2)
	assert.Len(t, c.snapshots(), 2)
	assert.Equal(t, snap, a.snapshots()[1])
	assert.Equal(t, snap, c.snapshots()[1])

	assert.Equal(t, 2, h.Count())
	assert.True(t, b.isClosed())
	assert.False(t, a.isClosed())
	assert.False(t, c.isClosed())

	mu.Lock()
	assert.Equal(t, []uuid.UUID{b.ID()}, dropped)
	mu.Unlock()
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))
	require.Equal(t, 1, h.Count())

	h.Unsubscribe(sub.ID())
	assert.Equal(t, 0, h.Count())
	assert.True(t, sub.isClosed())

	assert.NotPanics(t, func() {
		h.Unsubscribe(sub.ID())
		h.Unsubscribe(uuid.New())
	})
	assert.Equal(t, 0, h.Count())

	h.Broadcast(context.Background(), domain.TrafficSnapshot{})
	assert.Len(t, sub.snapshots(), 1, "unsubscribed handle receives nothing more")
}

func TestHub_RefreshTargetsOnlyRequester(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	a, b := newFakeSubscriber(), newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), a))
	require.NoError(t, h.Subscribe(context.Background(), b))

	h.RequestRefresh(a.ID())

	assert.Len(t, a.snapshots(), 2)
	assert.Len(t, b.snapshots(), 1)
}

func TestHub_RefreshUnknownIsIgnored(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)
	assert.NotPanics(t, func() { h.RequestRefresh(uuid.New()) })
	assert.Equal(t, 0, h.Count())
}

func TestHub_RefreshFailureDropsSubscriber(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))
	sub.setBroken()

	h.RequestRefresh(sub.ID())
	assert.Equal(t, 0, h.Count())
}

func TestHub_SubscribeFailsWhenFirstSendFails(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	sub := newFakeSubscriber()
	sub.setBroken()

	err := h.Subscribe(context.Background(), sub)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, 0, h.Count())
	assert.True(t, sub.isClosed())
}

func TestHub_DuplicateSubscribeIsNoop(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))
	require.NoError(t, h.Subscribe(context.Background(), sub))

	assert.Equal(t, 1, h.Count())
	assert.Len(t, sub.snapshots(), 1)
}

func TestHub_SnapshotsArriveInTickOrder(t *testing.T) {
	store := testStore(t, nil)
	h := testHub(t, store, nil)
	m := traffic.NewMutator(store, h, traffic.WithDeltaSource(traffic.FixedDelta(-1)))

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))

	for i := 0; i < 10; i++ {
		m.Tick(context.Background())
	}

	got := sub.snapshots()
	require.Len(t, got, 11)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].Areas[0].Congestion-1, got[i].Areas[0].Congestion)
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
}

func TestHub_ConcurrentSubscribersDuringTicks(t *testing.T) {
	store := testStore(t, nil)
	h := testHub(t, store, nil)
	m := traffic.NewMutator(store, h, traffic.WithDeltaSource(traffic.NewRandomWalk(1)))

	var wg sync.WaitGroup
	subs := make([]*fakeSubscriber, 20)
	for i := range subs {
		subs[i] = newFakeSubscriber()
		wg.Add(1)
		go func(s *fakeSubscriber) {
			defer wg.Done()
			assert.NoError(t, h.Subscribe(context.Background(), s))
		}(subs[i])
	}
	for i := 0; i < 20; i++ {
		m.Tick(context.Background())
	}
	wg.Wait()

	assert.Equal(t, len(subs), h.Count())
	for _, s := range subs {
		got := s.snapshots()
		require.NotEmpty(t, got)
		for i := 1; i < len(got); i++ {
			assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
		}
	}
}

func TestHub_StopClosesSubscribers(t *testing.T) {
	h := New(testStore(t, nil), nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))

	h.Stop()
	h.Stop()

	assert.True(t, sub.isClosed())
	assert.ErrorIs(t, h.Subscribe(context.Background(), newFakeSubscriber()), domain.ErrHubStopped)
	assert.Equal(t, 0, h.Count())

	assert.NotPanics(t, func() {
		h.Broadcast(context.Background(), domain.TrafficSnapshot{})
		h.Unsubscribe(sub.ID())
		h.RequestRefresh(sub.ID())
	})
}

func TestHub_SubscribeHonorsContext(t *testing.T) {
	h := testHub(t, testStore(t, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Subscribe(ctx, newFakeSubscriber())
	// Either the command was accepted and processed, or the context won the race.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestHub_PublishRunsTickOnQueue(t *testing.T) {
	store := testStore(t, nil)
	h := testHub(t, store, nil)

	sub := newFakeSubscriber()
	require.NoError(t, h.Subscribe(context.Background(), sub))

	calls := 0
	snap := h.Publish(context.Background(), func() domain.TrafficSnapshot {
		calls++
		return store.Snapshot()
	})

	assert.Equal(t, 1, calls)
	got := sub.snapshots()
	require.Len(t, got, 2)
	assert.Equal(t, snap, got[1])
}

func TestHub_PublishAfterStopStillProduces(t *testing.T) {
	store := testStore(t, nil)
	h := New(store, nil)
	h.Stop()

	calls := 0
	snap := h.Publish(context.Background(), func() domain.TrafficSnapshot {
		calls++
		return store.Snapshot()
	})
	assert.Equal(t, 1, calls)
	assert.Len(t, snap.Areas, 2)
}
