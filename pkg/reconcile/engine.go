// Package reconcile keeps the graph model consistent with periodic full
// snapshots and discrete push events, applying only minimal diffs so fixed
// positions survive and the renderer never sees a full rebuild.
package reconcile

import (
	"errors"

	"github.com/netobserve/topoview/pkg/events"
	"github.com/netobserve/topoview/pkg/graph"
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
	"github.com/netobserve/topoview/pkg/validation"
)

// Snapshot is one full topology fetch from the monitoring backend.
type Snapshot struct {
	Devices     []model.Device     `json:"devices"`
	Connections []model.Connection `json:"connections"`
}

// Outcome tells the caller what a handled event requires downstream.
type Outcome int

const (
	// OutcomeNone means nothing changed.
	OutcomeNone Outcome = iota
	// OutcomeStatusApplied means a node's status mutated in place; a
	// debounced render pass is enough.
	OutcomeStatusApplied
	// OutcomeNodeRemoved means the node set shrank; layout must rerun.
	OutcomeNodeRemoved
	// OutcomeStale means the event referenced an unknown device; the model
	// is behind and a full reconciliation is needed.
	OutcomeStale
	// OutcomeRefetch means the topology changed upstream; fetch a fresh
	// snapshot immediately.
	OutcomeRefetch
)

// Engine applies snapshots and events to a graph model.
type Engine struct {
	model  *graph.Model
	logger logging.Logger
}

// New creates a reconciliation engine over the given model.
func New(m *graph.Model, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		model:  m,
		logger: logger.With(logging.Component("reconcile")),
	}
}

// ApplySnapshot diffs the snapshot against current state and applies only
// the difference. Applying the same snapshot twice yields an empty second
// diff.
func (e *Engine) ApplySnapshot(snap Snapshot) (*graph.Diff, error) {
	conns := e.sanitizeConnections(snap.Connections)
	diff := graph.ComputeDiff(e.model, snap.Devices, conns)
	if diff.Empty() {
		return diff, nil
	}
	if err := e.model.Apply(diff); err != nil {
		return nil, model.NewError("ApplySnapshot").Context("apply diff").Cause(err)
	}
	e.logger.Info("snapshot reconciled",
		logging.Int("added", len(diff.Added)),
		logging.Int("removed", len(diff.Removed)),
		logging.Int("updated", len(diff.Updated)),
		logging.Bool("connections_changed", diff.ConnectionsChanged))
	return diff, nil
}

// sanitizeConnections drops invalid connections before they reach the model.
// Self-loops and malformed view types are rejected here rather than silently
// drawn; an absent view type means the standard view.
func (e *Engine) sanitizeConnections(conns []model.Connection) []model.Connection {
	out := make([]model.Connection, 0, len(conns))
	for _, c := range conns {
		c.ViewType = c.ViewType.Normalize()
		if err := validation.ValidateConnection(c); err != nil {
			e.logger.Warn("rejected connection from snapshot",
				logging.Uint64("connection_id", c.ID),
				logging.DeviceID(c.DeviceID),
				logging.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out
}

// HandleEvent applies one push event and reports what the caller must do
// next. A status update for an unknown device is not fatal; it signals that
// the model is stale and a full reconciliation should follow.
func (e *Engine) HandleEvent(ev events.Event) Outcome {
	switch ev := ev.(type) {
	case events.StatusUpdate:
		err := e.model.UpdateStatus(ev.ID, ev.Status, ev.ResponseTimeMs, ev.LastCheck)
		if err != nil {
			if errors.Is(err, model.ErrDeviceNotFound) {
				e.logger.Warn("status update for unknown device, model is stale",
					logging.DeviceID(ev.ID))
				return OutcomeStale
			}
			e.logger.Error("status update failed", logging.DeviceID(ev.ID), logging.Error(err))
			return OutcomeNone
		}
		return OutcomeStatusApplied

	case events.DeviceDeleted:
		if err := e.model.RemoveDevice(ev.ID); err != nil {
			if errors.Is(err, model.ErrDeviceNotFound) {
				// Already gone; nothing to do.
				return OutcomeNone
			}
			e.logger.Error("device removal failed", logging.DeviceID(ev.ID), logging.Error(err))
			return OutcomeNone
		}
		return OutcomeNodeRemoved

	case events.TopologyUpdated:
		return OutcomeRefetch

	default:
		return OutcomeNone
	}
}
