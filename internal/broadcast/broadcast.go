// Package broadcast owns the per-channel subscriber registry for sync
// progress events. Every published event is durably appended to the log
// store first, then fanned out to live subscribers; late subscribers get
// no replay (the durable log, read separately, covers history).
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"commentpulse/internal/domain"
)

// LogStore is the durable append-only sink behind the broadcaster.
type LogStore interface {
	Append(ctx context.Context, event *domain.LogEvent) error
}

// Forwarder pushes events to an external transport (AMQP). Optional.
type Forwarder interface {
	Forward(ctx context.Context, event *domain.LogEvent) error
}

// Subscription is one live listener on a channel's event stream. Events
// arrive on C; a subscriber that stops draining only loses its own
// events, never anyone else's.
type Subscription struct {
	C <-chan domain.LogEvent

	id        uint64
	channelID string
	ch        chan domain.LogEvent
}

// Broadcaster fans sync progress events out to registered subscribers.
// It is an injected instance, not process-global; all registry access
// goes through the mutex because subscribe/unsubscribe race with
// publishes from concurrent workers.
type Broadcaster struct {
	store     LogStore
	forwarder Forwarder
	logger    *slog.Logger
	bufSize   int

	mu     sync.Mutex
	nextID uint64
	subs   map[string][]*Subscription
}

// New creates a broadcaster. forwarder may be nil; bufSize is the
// per-subscriber queue depth.
func New(store LogStore, forwarder Forwarder, bufSize int, logger *slog.Logger) *Broadcaster {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Broadcaster{
		store:     store,
		forwarder: forwarder,
		logger:    logger,
		bufSize:   bufSize,
		subs:      make(map[string][]*Subscription),
	}
}

// Subscribe registers a listener for one channel's events.
func (b *Broadcaster) Subscribe(channelID string) *Subscription {
	ch := make(chan domain.LogEvent, b.bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:         ch,
		id:        b.nextID,
		channelID: channelID,
		ch:        ch,
	}
	b.subs[channelID] = append(b.subs[channelID], sub)
	return sub
}

// Unsubscribe removes a listener and closes its event channel. Removing
// the last listener drops the registry entry; that is bookkeeping only,
// publish works fine with zero subscribers.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.channelID]
	for i, s := range subs {
		if s.id == sub.id {
			subs = append(subs[:i], subs[i+1:]...)
			close(s.ch)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.subs, sub.channelID)
	} else {
		b.subs[sub.channelID] = subs
	}
}

// Publish durably appends the event, then pushes a copy to every live
// subscriber for its channel. The append failure is the only error
// path: fan-out is best-effort and a full subscriber buffer drops the
// event for that subscriber alone.
func (b *Broadcaster) Publish(ctx context.Context, event *domain.LogEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if err := b.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append log event: %w", err)
	}

	// Sends happen under the lock: they are non-blocking, and holding it
	// keeps an unsubscribe from closing a channel mid-send.
	b.mu.Lock()
	for _, sub := range b.subs[event.ChannelID] {
		select {
		case sub.ch <- *event:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				"channel_id", event.ChannelID,
				"level", event.Level,
			)
		}
	}
	b.mu.Unlock()

	if b.forwarder != nil {
		if err := b.forwarder.Forward(ctx, event); err != nil {
			b.logger.Warn("forward event failed",
				"channel_id", event.ChannelID,
				"error", err,
			)
		}
	}

	return nil
}
