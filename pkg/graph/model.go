// Package graph holds the canonical in-memory representation of the
// topology: devices, their render nodes, raw connections, and the
// deduplicated edge set. The model is the single mutable resource in the
// engine and is accessed from one logical thread only (see the session
// controller), so it carries no locking.
package graph

import (
	"fmt"
	"time"

	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
)

// Model is the canonical graph store with lifecycle New → Apply → Dispose.
type Model struct {
	devices     map[uint64]*model.Device
	nodes       map[uint64]*model.GraphNode
	order       []uint64 // insertion order, kept stable for deterministic layout
	connections []model.Connection
	edges       []model.CanonicalEdge
	disposed    bool
	logger      logging.Logger
}

// New creates an empty graph model.
func New(logger logging.Logger) *Model {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Model{
		devices: make(map[uint64]*model.Device),
		nodes:   make(map[uint64]*model.GraphNode),
		logger:  logger.With(logging.Component("graph")),
	}
}

// Dispose releases the model. Further mutations return ErrModelDisposed.
func (m *Model) Dispose() {
	m.devices = nil
	m.nodes = nil
	m.order = nil
	m.connections = nil
	m.edges = nil
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Model) Disposed() bool { return m.disposed }

// AddDevice inserts a device and its render node. Existing devices are
// overwritten in place without disturbing insertion order.
func (m *Model) AddDevice(d model.Device) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	d.LocationType = d.LocationType.Normalize()
	if _, ok := m.devices[d.ID]; !ok {
		m.order = append(m.order, d.ID)
		m.nodes[d.ID] = &model.GraphNode{
			ID:       d.ID,
			SizeTier: model.SizeTierFor(d.DeviceType),
		}
	}
	dd := d
	m.devices[d.ID] = &dd
	m.nodes[d.ID].Signature = Signature(&dd)
	return nil
}

// RemoveDevice deletes a device, its node, and every canonical edge that
// references it.
func (m *Model) RemoveDevice(id uint64) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	if _, ok := m.devices[id]; !ok {
		return model.NewError("RemoveDevice").Device(id).Cause(model.ErrDeviceNotFound)
	}
	delete(m.devices, id)
	delete(m.nodes, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

// UpdateStatus applies a status-change event to a device already in the
// model. Returns ErrDeviceNotFound for stale references so the caller can
// fall back to a full reconciliation.
func (m *Model) UpdateStatus(id uint64, status model.DeviceStatus, responseTimeMs *float64, lastCheck *time.Time) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	d, ok := m.devices[id]
	if !ok {
		return model.NewError("UpdateStatus").Device(id).Cause(model.ErrDeviceNotFound)
	}
	d.Status = status
	d.ResponseTimeMs = responseTimeMs
	d.LastCheck = lastCheck
	m.nodes[id].Signature = Signature(d)
	return nil
}

// Device returns the device with the given id, or nil.
func (m *Model) Device(id uint64) *model.Device {
	return m.devices[id]
}

// Node returns the render node for the given id, or nil.
func (m *Model) Node(id uint64) *model.GraphNode {
	return m.nodes[id]
}

// Devices returns all devices in stable insertion order.
func (m *Model) Devices() []model.Device {
	out := make([]model.Device, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.devices[id])
	}
	return out
}

// Nodes returns all render nodes in stable insertion order.
func (m *Model) Nodes() []model.GraphNode {
	out := make([]model.GraphNode, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.nodes[id])
	}
	return out
}

// Has reports whether a device with the given id is in the model.
func (m *Model) Has(id uint64) bool {
	_, ok := m.devices[id]
	return ok
}

// Count returns the number of devices in the model.
func (m *Model) Count() int { return len(m.order) }

// IDs returns the device id set in insertion order.
func (m *Model) IDs() []uint64 {
	out := make([]uint64, len(m.order))
	copy(out, m.order)
	return out
}

// SetConnections replaces the raw connection list.
func (m *Model) SetConnections(conns []model.Connection) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	m.connections = append(m.connections[:0:0], conns...)
	return nil
}

// Connections returns the raw connection list.
func (m *Model) Connections() []model.Connection {
	return m.connections
}

// SetEdges replaces the canonical edge set.
func (m *Model) SetEdges(edges []model.CanonicalEdge) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	m.edges = append(m.edges[:0:0], edges...)
	return nil
}

// Edges returns the canonical edge set.
func (m *Model) Edges() []model.CanonicalEdge {
	return m.edges
}

// SetPosition places a node and optionally pins it against recomputation.
func (m *Model) SetPosition(id uint64, pos model.Position, fixed bool) error {
	if m.disposed {
		return model.ErrModelDisposed
	}
	n, ok := m.nodes[id]
	if !ok {
		return model.NewError("SetPosition").Device(id).Cause(model.ErrDeviceNotFound)
	}
	p := pos
	n.Position = &p
	n.Fixed = fixed
	return nil
}

// ClearFixed unpins every node, handing position authority back to layout.
func (m *Model) ClearFixed() {
	for _, n := range m.nodes {
		n.Fixed = false
	}
}

// Positions extracts the current coordinates of every positioned node.
func (m *Model) Positions() map[uint64]model.Position {
	out := make(map[uint64]model.Position, len(m.nodes))
	for id, n := range m.nodes {
		if n.Position != nil {
			out[id] = *n.Position
		}
	}
	return out
}

// Signature computes a render signature for a device. Nodes are re-rendered
// only when their signature changes.
func Signature(d *model.Device) string {
	rt := ""
	if d.ResponseTimeMs != nil {
		rt = fmt.Sprintf("%.0f", *d.ResponseTimeMs)
	}
	return fmt.Sprintf("%s|%s|%s|%s", d.Name, d.Status, d.DeviceType, rt)
}
