package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
	"github.com/lcalzada-xor/navify/internal/telemetry"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdSubscribe struct {
	sub   ports.Subscriber
	errCh chan error
}

func (cmdSubscribe) hubCmd() {}

type cmdUnsubscribe struct {
	id   uuid.UUID
	done chan struct{}
}

func (cmdUnsubscribe) hubCmd() {}

type cmdRefresh struct {
	id   uuid.UUID
	done chan struct{}
}

func (cmdRefresh) hubCmd() {}

type cmdBroadcast struct {
	snap domain.TrafficSnapshot
	done chan struct{}
}

func (cmdBroadcast) hubCmd() {}

type cmdTick struct {
	produce func() domain.TrafficSnapshot
	reply   chan domain.TrafficSnapshot
}

func (cmdTick) hubCmd() {}

type cmdCount struct {
	replyCh chan int
}

func (cmdCount) hubCmd() {}

// DropFunc is notified when a subscriber is removed after a failed delivery.
// It runs on the hub goroutine and must not call back into the hub.
type DropFunc func(id uuid.UUID, trigger string, err error)

// Hub fans traffic snapshots out to realtime subscribers.
//
// Every operation is a command processed in arrival order by a single goroutine,
// so subscribe, unsubscribe, refresh and tick broadcasts never interleave.
type Hub struct {
	source ports.SnapshotSource
	onDrop DropFunc

	cmdCh    chan hubCmd
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
	clients  map[uuid.UUID]ports.Subscriber
}

// New starts a hub reading current state from source. onDrop may be nil.
func New(source ports.SnapshotSource, onDrop DropFunc) *Hub {
	h := &Hub{
		source:  source,
		onDrop:  onDrop,
		cmdCh:   make(chan hubCmd, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		clients: make(map[uuid.UUID]ports.Subscriber),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.doneCh)
	for {
		select {
		case <-h.stopCh:
			h.handleStop()
			return
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case cmdSubscribe:
				c.errCh <- h.handleSubscribe(c.sub)
			case cmdUnsubscribe:
				h.remove(c.id)
				close(c.done)
			case cmdRefresh:
				h.handleRefresh(c.id)
				close(c.done)
			case cmdBroadcast:
				h.handleBroadcast(c.snap)
				close(c.done)
			case cmdTick:
				snap := c.produce()
				h.handleBroadcast(snap)
				c.reply <- snap
			case cmdCount:
				c.replyCh <- len(h.clients)
			}
		}
	}
}

func (h *Hub) handleSubscribe(sub ports.Subscriber) error {
	id := sub.ID()
	if _, exists := h.clients[id]; exists {
		return nil
	}
	h.clients[id] = sub
	telemetry.Subscribers.Set(float64(len(h.clients)))
	slog.Debug("Subscriber registered", "subscriber", id, "total", len(h.clients))

	return h.deliver(id, sub, h.source.Snapshot(), telemetry.TriggerSubscribe)
}

func (h *Hub) handleRefresh(id uuid.UUID) {
	sub, ok := h.clients[id]
	if !ok {
		slog.Debug("Refresh for unknown subscriber ignored", "subscriber", id)
		return
	}
	_ = h.deliver(id, sub, h.source.Snapshot(), telemetry.TriggerRefresh)
}

func (h *Hub) handleBroadcast(snap domain.TrafficSnapshot) {
	for id, sub := range h.clients {
		// deliver removes failed subscribers; deleting during range is safe
		_ = h.deliver(id, sub, snap, telemetry.TriggerTick)
	}
}

// deliver sends one snapshot; on failure the subscriber is dropped and the error returned.
func (h *Hub) deliver(id uuid.UUID, sub ports.Subscriber, snap domain.TrafficSnapshot, trigger string) error {
	if err := sub.Send(snap); err != nil {
		telemetry.DeliveryFailures.WithLabelValues(trigger).Inc()
		slog.Debug("Dropping subscriber after failed delivery", "subscriber", id, "trigger", trigger, "error", err)
		h.remove(id)
		if h.onDrop != nil {
			h.onDrop(id, trigger, err)
		}
		return err
	}
	telemetry.Deliveries.WithLabelValues(trigger).Inc()
	return nil
}

func (h *Hub) remove(id uuid.UUID) {
	sub, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	sub.Close()
	telemetry.Subscribers.Set(float64(len(h.clients)))
	slog.Debug("Subscriber removed", "subscriber", id, "remaining", len(h.clients))
}

func (h *Hub) handleStop() {
	for id, sub := range h.clients {
		sub.Close()
		delete(h.clients, id)
	}
	telemetry.Subscribers.Set(0)
}

// enqueue hands a command to the loop. It returns false once the hub has stopped.
func (h *Hub) enqueue(ctx context.Context, cmd hubCmd) bool {
	select {
	case h.cmdCh <- cmd:
		return true
	case <-h.doneCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// wait blocks until done is closed, the hub stops, or ctx ends.
func (h *Hub) wait(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-h.doneCh:
	case <-ctx.Done():
	}
}

// --- Public API ---

// Subscribe registers sub and immediately sends it the current snapshot.
// It returns after that first snapshot has been dispatched. If the first delivery
// fails the subscriber is dropped and the error returned.
func (h *Hub) Subscribe(ctx context.Context, sub ports.Subscriber) error {
	errCh := make(chan error, 1)
	if !h.enqueue(ctx, cmdSubscribe{sub: sub, errCh: errCh}) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrHubStopped
	}
	select {
	case err := <-errCh:
		return err
	case <-h.doneCh:
		return domain.ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unsubscribe removes a subscriber. Unknown or already removed ids are a no-op.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	done := make(chan struct{})
	if h.enqueue(context.Background(), cmdUnsubscribe{id: id, done: done}) {
		h.wait(context.Background(), done)
	}
}

// RequestRefresh re-sends the current snapshot to one subscriber only.
// Unknown ids are ignored.
func (h *Hub) RequestRefresh(id uuid.UUID) {
	done := make(chan struct{})
	if h.enqueue(context.Background(), cmdRefresh{id: id, done: done}) {
		h.wait(context.Background(), done)
	}
}

// Broadcast sends snap to every current subscriber and returns once all sends
// have been dispatched. One failing subscriber never blocks the others.
func (h *Hub) Broadcast(ctx context.Context, snap domain.TrafficSnapshot) {
	done := make(chan struct{})
	if h.enqueue(ctx, cmdBroadcast{snap: snap, done: done}) {
		h.wait(ctx, done)
	}
}

// Publish runs produce on the hub goroutine and broadcasts its snapshot, so a
// subscriber joining mid-tick sees either the pre-tick state followed by this
// broadcast, or the post-tick state only. If the hub has stopped, produce still
// runs but nothing is delivered.
func (h *Hub) Publish(ctx context.Context, produce func() domain.TrafficSnapshot) domain.TrafficSnapshot {
	reply := make(chan domain.TrafficSnapshot, 1)
	if !h.enqueue(ctx, cmdTick{produce: produce, reply: reply}) {
		return produce()
	}
	select {
	case snap := <-reply:
		return snap
	case <-h.doneCh:
		// the loop may have consumed the command before stopping
		select {
		case snap := <-reply:
			return snap
		default:
			return produce()
		}
	}
}

// Count returns the number of subscribed handles.
func (h *Hub) Count() int {
	replyCh := make(chan int, 1)
	if !h.enqueue(context.Background(), cmdCount{replyCh: replyCh}) {
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.doneCh:
		return 0
	}
}

// Stop closes every subscriber and terminates the loop. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.doneCh
}

var _ ports.SubscriptionHub = (*Hub)(nil)
