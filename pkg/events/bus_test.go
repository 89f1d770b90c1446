package events

import (
	"context"
	"testing"
	"time"

	"github.com/netobserve/topoview/pkg/model"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	ctx := context.Background()
	a := bus.Subscribe(ctx)
	b := bus.Subscribe(ctx)

	bus.Publish(StatusUpdate{ID: 1, Status: model.StatusUp})

	for name, sub := range map[string]*Subscription{"a": a, "b": b} {
		select {
		case ev := <-sub.Channel():
			if ev.Kind() != TypeStatusUpdate {
				t.Errorf("Subscriber %s: unexpected event kind %s", name, ev.Kind())
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %s: no event delivered", name)
		}
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub := bus.Subscribe(context.Background())

	// Overflow the subscriber buffer; publishes must drop, not stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.Publish(DeviceDeleted{ID: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	// The subscriber still holds a full buffer of the earliest events.
	ev := <-sub.Channel()
	if ev.(DeviceDeleted).ID != 0 {
		t.Errorf("Expected earliest event first, got %+v", ev)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	sub := bus.Subscribe(context.Background())
	sub.Unsubscribe()

	// Channel closes on unsubscribe.
	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("Expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after unsubscribe")
	}

	// Publishing afterwards must not panic.
	bus.Publish(TopologyUpdated{})
}

func TestBusContextCancellation(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub := bus.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("Expected closed channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after context cancel")
	}
}

func TestBusShutdown(t *testing.T) {
	bus := NewBus()

	sub := bus.Subscribe(context.Background())
	bus.Shutdown()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("Expected closed channel after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after shutdown")
	}

	if bus.Subscribe(context.Background()) != nil {
		t.Error("Subscribe after shutdown should return nil")
	}

	// Idempotent.
	bus.Shutdown()
}
