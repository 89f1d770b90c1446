package graph

import (
	"github.com/netobserve/topoview/pkg/model"
)

// Diff describes the minimal set of mutations needed to bring the model in
// line with a snapshot. Applying a diff never clears and rebuilds the store,
// so fixed positions survive and the renderer sees no flicker.
type Diff struct {
	Added   []model.Device
	Removed []uint64
	Updated []model.Device

	// ConnectionsChanged is set when the raw connection list differs and the
	// canonical edge set must be recomputed.
	ConnectionsChanged bool
	Connections        []model.Connection
}

// Empty reports whether the diff carries no mutations.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0 && !d.ConnectionsChanged
}

// NodesChanged reports whether the node set itself grew or shrank, which is
// what forces a fresh layout pass.
func (d *Diff) NodesChanged() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// ComputeDiff diffs a snapshot against the current model state.
func ComputeDiff(m *Model, devices []model.Device, connections []model.Connection) *Diff {
	diff := &Diff{}

	seen := make(map[uint64]bool, len(devices))
	for _, d := range devices {
		seen[d.ID] = true
		cur := m.Device(d.ID)
		if cur == nil {
			diff.Added = append(diff.Added, d)
			continue
		}
		if deviceChanged(cur, &d) {
			diff.Updated = append(diff.Updated, d)
		}
	}
	for _, id := range m.IDs() {
		if !seen[id] {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if connectionsChanged(m.Connections(), connections) {
		diff.ConnectionsChanged = true
		diff.Connections = connections
	}
	return diff
}

// Apply mutates the model according to the diff.
func (m *Model) Apply(diff *Diff) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	for _, id := range diff.Removed {
		if err := m.RemoveDevice(id); err != nil {
			return err
		}
	}
	for _, d := range diff.Added {
		if err := m.AddDevice(d); err != nil {
			return err
		}
	}
	for _, d := range diff.Updated {
		if err := m.AddDevice(d); err != nil {
			return err
		}
	}
	if diff.ConnectionsChanged {
		if err := m.SetConnections(diff.Connections); err != nil {
			return err
		}
	}
	return nil
}

func deviceChanged(a, b *model.Device) bool {
	if a.Name != b.Name || a.IPAddress != b.IPAddress ||
		a.DeviceType != b.DeviceType || a.Location != b.Location ||
		a.LocationType != b.LocationType.Normalize() || a.Status != b.Status {
		return true
	}
	if (a.ResponseTimeMs == nil) != (b.ResponseTimeMs == nil) {
		return true
	}
	if a.ResponseTimeMs != nil && *a.ResponseTimeMs != *b.ResponseTimeMs {
		return true
	}
	if (a.LastCheck == nil) != (b.LastCheck == nil) {
		return true
	}
	if a.LastCheck != nil && !a.LastCheck.Equal(*b.LastCheck) {
		return true
	}
	return false
}

func connectionsChanged(a, b []model.Connection) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
