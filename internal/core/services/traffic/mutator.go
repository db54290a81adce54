package traffic

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
	"github.com/lcalzada-xor/navify/internal/telemetry"
)

const (
	// DefaultInterval is the period between two random-walk passes.
	DefaultInterval = 8 * time.Second

	// MaxStep bounds a single per-area delta to [-MaxStep, +MaxStep].
	MaxStep = 10
)

// DeltaSource draws the per-area congestion change for one tick.
type DeltaSource interface {
	Delta() int
}

// RandomWalk draws round((U(0,1) - 0.5) * 2*MaxStep), rounding half away from zero.
type RandomWalk struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWalk creates a delta source seeded with seed.
func NewRandomWalk(seed int64) *RandomWalk {
	return &RandomWalk{rng: rand.New(rand.NewSource(seed))}
}

// Delta implements DeltaSource.
func (w *RandomWalk) Delta() int {
	w.mu.Lock()
	u := w.rng.Float64()
	w.mu.Unlock()
	return stepFor(u)
}

func stepFor(u float64) int {
	return int(math.Round((u - 0.5) * 2 * MaxStep))
}

// FixedDelta always returns the same step. Useful for deterministic runs.
type FixedDelta int

// Delta implements DeltaSource.
func (d FixedDelta) Delta() int { return int(d) }

// Mutator advances the store on a fixed schedule and publishes one snapshot per tick.
// It is the only holder of the store's write capability.
type Mutator struct {
	store     *Store
	publisher ports.SnapshotPublisher
	deltas    DeltaSource
	clock     clockwork.Clock
	interval  time.Duration
	tracer    trace.Tracer
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithDeltaSource replaces the default random walk.
func WithDeltaSource(src DeltaSource) MutatorOption {
	return func(m *Mutator) { m.deltas = src }
}

// WithClock drives the ticker from clock instead of wall time.
func WithClock(clock clockwork.Clock) MutatorOption {
	return func(m *Mutator) { m.clock = clock }
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) MutatorOption {
	return func(m *Mutator) {
		if d > 0 {
			m.interval = d
		}
	}
}

// NewMutator wires a mutator to its store and publisher.
func NewMutator(store *Store, publisher ports.SnapshotPublisher, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		store:     store,
		publisher: publisher,
		clock:     clockwork.NewRealClock(),
		interval:  DefaultInterval,
		tracer:    otel.Tracer("navify/traffic"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.deltas == nil {
		m.deltas = NewRandomWalk(m.clock.Now().UnixNano())
	}
	return m
}

// Interval returns the configured tick period.
func (m *Mutator) Interval() time.Duration {
	return m.interval
}

// Run ticks until ctx is cancelled. The ticker is released on return.
func (m *Mutator) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("Traffic mutator started", "interval", m.interval, "areas", m.store.Len())
	for {
		select {
		case <-ctx.Done():
			slog.Info("Traffic mutator stopped")
			return
		case <-ticker.Chan():
			m.Tick(ctx)
		}
	}
}

// Tick performs one mutation pass and broadcasts the resulting snapshot once.
// Publish returns only after the broadcast has been dispatched, so a subsequent
// tick never interleaves with it.
func (m *Mutator) Tick(ctx context.Context) domain.TrafficSnapshot {
	ctx, span := m.tracer.Start(ctx, "traffic.tick")
	defer span.End()

	produce := func() domain.TrafficSnapshot {
		return m.store.mutate(func(string) int {
			return m.deltas.Delta()
		})
	}

	var snap domain.TrafficSnapshot
	if m.publisher != nil {
		snap = m.publisher.Publish(ctx, produce)
	} else {
		snap = produce()
	}

	telemetry.TicksTotal.Inc()
	for _, a := range snap.Areas {
		telemetry.AreaCongestion.WithLabelValues(a.ID).Set(float64(a.Congestion))
	}
	span.SetAttributes(
		attribute.Int("traffic.areas", len(snap.Areas)),
		attribute.Int("traffic.avg_congestion", snap.AverageCongestion()),
	)
	slog.DebugContext(ctx, "Traffic tick", "avgCongestion", snap.AverageCongestion(), "timestamp", snap.Timestamp.UnixMilli())
	return snap
}
