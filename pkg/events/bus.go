package events

import (
	"context"
	"sync"
)

// Bus fans push events out to subscribers. Publish never blocks; a
// subscriber that falls behind loses messages rather than stalling the
// stream.
type Bus struct {
	subscribers map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription is one subscriber's handle on the bus.
type Subscription struct {
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe registers a new subscriber. The subscription ends when ctx is
// cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		channel: make(chan Event, 256),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	b.mu.Lock()
	b.subscribers[sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub
}

// Publish delivers an event to every subscriber without blocking. A snapshot
// of the subscriber set is taken under lock so a concurrent Unsubscribe
// cannot break iteration.
func (b *Bus) Publish(ev Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
			// Subscriber is full; drop rather than block the stream.
		}
	}
}

// Shutdown closes every subscription and stops the bus.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for sub := range b.subscribers {
		sub.close()
		delete(b.subscribers, sub)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription from the bus.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	delete(s.bus.subscribers, s)
	s.bus.mu.Unlock()

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
