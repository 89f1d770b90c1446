package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/netobserve/topoview/pkg/model"
)

func testDevice(id uint64, name string) model.Device {
	return model.Device{
		ID:           id,
		Name:         name,
		DeviceType:   "router",
		LocationType: model.LocationOnPremise,
		Status:       model.StatusUp,
	}
}

func TestAddDeviceCreatesNode(t *testing.T) {
	m := New(nil)

	if err := m.AddDevice(testDevice(1, "core-1")); err != nil {
		t.Fatalf("AddDevice failed: %v", err)
	}

	if !m.Has(1) {
		t.Error("Expected device 1 in model")
	}
	n := m.Node(1)
	if n == nil {
		t.Fatal("Expected render node for device 1")
	}
	if n.Fixed {
		t.Error("New node must not be fixed")
	}
	if n.Signature == "" {
		t.Error("New node must carry a render signature")
	}
}

func TestAddDeviceOverwriteKeepsOrderAndPosition(t *testing.T) {
	m := New(nil)

	m.AddDevice(testDevice(1, "a"))
	m.AddDevice(testDevice(2, "b"))
	m.SetPosition(1, model.Position{X: 10, Y: 20}, true)

	// Re-adding device 1 with new attributes keeps its slot and pinned position.
	updated := testDevice(1, "a-renamed")
	if err := m.AddDevice(updated); err != nil {
		t.Fatalf("AddDevice overwrite failed: %v", err)
	}

	ids := m.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Expected stable insertion order [1 2], got %v", ids)
	}
	n := m.Node(1)
	if n.Position == nil || n.Position.X != 10 || n.Position.Y != 20 || !n.Fixed {
		t.Errorf("Expected pinned position to survive overwrite, got %+v", n)
	}
	if m.Device(1).Name != "a-renamed" {
		t.Errorf("Expected device attributes replaced, got %q", m.Device(1).Name)
	}
}

func TestRemoveDeviceStripsEdges(t *testing.T) {
	m := New(nil)

	m.AddDevice(testDevice(1, "a"))
	m.AddDevice(testDevice(2, "b"))
	m.AddDevice(testDevice(3, "c"))
	m.SetEdges([]model.CanonicalEdge{
		{ID: "1-2:standard", From: 1, To: 2, ViewType: model.ViewStandard},
		{ID: "2-3:standard", From: 2, To: 3, ViewType: model.ViewStandard},
	})

	if err := m.RemoveDevice(1); err != nil {
		t.Fatalf("RemoveDevice failed: %v", err)
	}

	if m.Has(1) {
		t.Error("Device 1 still present after removal")
	}
	edges := m.Edges()
	if len(edges) != 1 || edges[0].ID != "2-3:standard" {
		t.Errorf("Expected edges touching device 1 removed, got %v", edges)
	}
}

func TestRemoveDeviceUnknown(t *testing.T) {
	m := New(nil)

	err := m.RemoveDevice(99)
	if !errors.Is(err, model.ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	m := New(nil)
	m.AddDevice(testDevice(1, "a"))

	before := m.Node(1).Signature

	rt := 12.5
	now := time.Now()
	if err := m.UpdateStatus(1, model.StatusDown, &rt, &now); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	d := m.Device(1)
	if d.Status != model.StatusDown {
		t.Errorf("Expected status down, got %s", d.Status)
	}
	if d.ResponseTimeMs == nil || *d.ResponseTimeMs != 12.5 {
		t.Errorf("Expected response time applied, got %v", d.ResponseTimeMs)
	}
	if m.Node(1).Signature == before {
		t.Error("Expected render signature to change with status")
	}
}

func TestUpdateStatusStaleReference(t *testing.T) {
	m := New(nil)

	err := m.UpdateStatus(42, model.StatusDown, nil, nil)
	if !errors.Is(err, model.ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound for stale id, got %v", err)
	}
}

func TestDisposeRejectsMutation(t *testing.T) {
	m := New(nil)
	m.AddDevice(testDevice(1, "a"))
	m.Dispose()

	if err := m.AddDevice(testDevice(2, "b")); !errors.Is(err, model.ErrModelDisposed) {
		t.Errorf("Expected ErrModelDisposed, got %v", err)
	}
	if err := m.UpdateStatus(1, model.StatusUp, nil, nil); !errors.Is(err, model.ErrModelDisposed) {
		t.Errorf("Expected ErrModelDisposed, got %v", err)
	}
	if err := m.SetConnections(nil); !errors.Is(err, model.ErrModelDisposed) {
		t.Errorf("Expected ErrModelDisposed from SetConnections, got %v", err)
	}
	if err := m.SetEdges(nil); !errors.Is(err, model.ErrModelDisposed) {
		t.Errorf("Expected ErrModelDisposed from SetEdges, got %v", err)
	}
	if err := m.SetPosition(1, model.Position{X: 1, Y: 1}, false); !errors.Is(err, model.ErrModelDisposed) {
		t.Errorf("Expected ErrModelDisposed from SetPosition, got %v", err)
	}
}

func TestClearFixed(t *testing.T) {
	m := New(nil)
	m.AddDevice(testDevice(1, "a"))
	m.AddDevice(testDevice(2, "b"))
	m.SetPosition(1, model.Position{X: 1, Y: 1}, true)
	m.SetPosition(2, model.Position{X: 2, Y: 2}, true)

	m.ClearFixed()

	for _, n := range m.Nodes() {
		if n.Fixed {
			t.Errorf("Node %d still fixed after ClearFixed", n.ID)
		}
		if n.Position == nil {
			t.Errorf("Node %d lost its position", n.ID)
		}
	}
}

func TestPositions(t *testing.T) {
	m := New(nil)
	m.AddDevice(testDevice(1, "a"))
	m.AddDevice(testDevice(2, "b"))
	m.SetPosition(1, model.Position{X: 5, Y: 6}, false)

	pos := m.Positions()
	if len(pos) != 1 {
		t.Fatalf("Expected only positioned nodes, got %d entries", len(pos))
	}
	if pos[1] != (model.Position{X: 5, Y: 6}) {
		t.Errorf("Unexpected position %+v", pos[1])
	}
}
