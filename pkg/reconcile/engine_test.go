package reconcile

import (
	"testing"

	"github.com/netobserve/topoview/pkg/events"
	"github.com/netobserve/topoview/pkg/graph"
	"github.com/netobserve/topoview/pkg/model"
)

func snap(ids ...uint64) Snapshot {
	s := Snapshot{}
	for _, id := range ids {
		s.Devices = append(s.Devices, model.Device{
			ID:         id,
			Name:       "dev",
			DeviceType: "router",
			Status:     model.StatusUp,
		})
	}
	return s
}

func TestApplySnapshotIdempotent(t *testing.T) {
	e := New(graph.New(nil), nil)

	s := snap(1, 2, 3)
	s.Connections = []model.Connection{{ID: 1, DeviceID: 1, ConnectedTo: 2, ViewType: model.ViewStandard}}

	first, err := e.ApplySnapshot(s)
	if err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	if first.Empty() {
		t.Fatal("First apply should carry the full device set")
	}

	second, err := e.ApplySnapshot(s)
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if !second.Empty() {
		t.Errorf("Expected empty diff on repeat snapshot, got %+v", second)
	}
}

func TestApplySnapshotRejectsInvalidConnections(t *testing.T) {
	m := graph.New(nil)
	e := New(m, nil)

	s := snap(1, 2)
	s.Connections = []model.Connection{
		{ID: 1, DeviceID: 7, ConnectedTo: 7, ViewType: model.ViewStandard}, // self-loop
		{ID: 2, DeviceID: 1, ConnectedTo: 2, ViewType: "mesh"},             // unknown view
		{ID: 3, DeviceID: 1, ConnectedTo: 2},                               // absent view defaults to standard
		{ID: 4, DeviceID: 1, ConnectedTo: 2, ViewType: model.ViewWireless},
	}

	if _, err := e.ApplySnapshot(s); err != nil {
		t.Fatalf("ApplySnapshot failed: %v", err)
	}

	conns := m.Connections()
	if len(conns) != 2 {
		t.Fatalf("Expected 2 connections to survive sanitization, got %d: %+v", len(conns), conns)
	}
	if conns[0].ViewType != model.ViewStandard {
		t.Errorf("Absent view type not normalized to standard: %q", conns[0].ViewType)
	}
	if conns[1].ViewType != model.ViewWireless {
		t.Errorf("Valid wireless connection lost: %+v", conns[1])
	}
	for _, c := range conns {
		if c.DeviceID == c.ConnectedTo {
			t.Errorf("Self-loop reached the model: %+v", c)
		}
	}

	// Re-applying the same raw snapshot must still be a no-op.
	second, err := e.ApplySnapshot(s)
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if !second.Empty() {
		t.Errorf("Sanitization broke idempotence: %+v", second)
	}
}

func TestStatusEventMutatesOnlyTarget(t *testing.T) {
	m := graph.New(nil)
	e := New(m, nil)
	if _, err := e.ApplySnapshot(snap(1, 2, 3)); err != nil {
		t.Fatalf("ApplySnapshot failed: %v", err)
	}

	sig1 := m.Node(1).Signature
	sig3 := m.Node(3).Signature

	out := e.HandleEvent(events.StatusUpdate{ID: 2, Status: model.StatusDown})
	if out != OutcomeStatusApplied {
		t.Fatalf("Expected OutcomeStatusApplied, got %d", out)
	}

	if m.Device(2).Status != model.StatusDown {
		t.Errorf("Device 2 status not applied")
	}
	if m.Node(1).Signature != sig1 || m.Node(3).Signature != sig3 {
		t.Error("Untouched nodes were re-signatured")
	}
	if m.Device(1).Status != model.StatusUp || m.Device(3).Status != model.StatusUp {
		t.Error("Other devices mutated")
	}
}

func TestStaleStatusEvent(t *testing.T) {
	e := New(graph.New(nil), nil)

	out := e.HandleEvent(events.StatusUpdate{ID: 99, Status: model.StatusDown})
	if out != OutcomeStale {
		t.Errorf("Expected OutcomeStale for unknown device, got %d", out)
	}
}

func TestDeviceDeletedEvent(t *testing.T) {
	m := graph.New(nil)
	e := New(m, nil)
	e.ApplySnapshot(snap(1, 2))

	out := e.HandleEvent(events.DeviceDeleted{ID: 1})
	if out != OutcomeNodeRemoved {
		t.Fatalf("Expected OutcomeNodeRemoved, got %d", out)
	}
	if m.Has(1) {
		t.Error("Device 1 still in model")
	}

	// Second delivery of the same delete is a no-op, not an error.
	out = e.HandleEvent(events.DeviceDeleted{ID: 1})
	if out != OutcomeNone {
		t.Errorf("Expected OutcomeNone for repeated delete, got %d", out)
	}
}

func TestTopologyUpdatedEvent(t *testing.T) {
	e := New(graph.New(nil), nil)

	out := e.HandleEvent(events.TopologyUpdated{})
	if out != OutcomeRefetch {
		t.Errorf("Expected OutcomeRefetch, got %d", out)
	}
}

func TestSnapshotRemovesVanishedDevices(t *testing.T) {
	m := graph.New(nil)
	e := New(m, nil)
	e.ApplySnapshot(snap(1, 2, 3))

	diff, err := e.ApplySnapshot(snap(1, 3))
	if err != nil {
		t.Fatalf("ApplySnapshot failed: %v", err)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != 2 {
		t.Errorf("Expected device 2 removed, got %v", diff.Removed)
	}
	if m.Has(2) {
		t.Error("Device 2 still in model")
	}
}
