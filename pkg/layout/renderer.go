// Package layout drives the free-mode force-directed layout through its
// lifecycle and keeps simulated nodes inside their logical containers.
package layout

import (
	"github.com/netobserve/topoview/pkg/model"
)

// Renderer is the narrow surface the engine needs from a rendering/physics
// capability. Any concrete graph-rendering library can implement it; the
// in-process SimRenderer is the default. The renderer owns its internal
// integration state; the engine only toggles physics, reads positions back,
// and asks for a fit.
type Renderer interface {
	// SetNodes replaces the node set. Nodes with a position are seeded
	// there; fixed nodes are never moved by the simulation.
	SetNodes(nodes []model.GraphNode)

	// SetEdges replaces the edge set used for attraction forces.
	SetEdges(edges []model.CanonicalEdge)

	// EnablePhysics starts or freezes the simulation.
	EnablePhysics(enabled bool)

	// OnTick registers a callback invoked once per simulation step.
	OnTick(cb func())

	// OnStabilized registers a callback invoked when the simulation settles.
	OnStabilized(cb func())

	// GetPosition returns the current simulated position of a node.
	GetPosition(id uint64) (model.Position, bool)

	// SetPosition overrides a node's simulated position. When dampVelocity
	// is set the node's velocity is bled off to prevent clamp oscillation.
	SetPosition(id uint64, pos model.Position, dampVelocity bool)

	// Fit asks the renderer to bring all visible nodes into view.
	Fit()
}

// Stepper marks renderers that integrate in-process and need an external
// clock. A rendering shell with its own animation loop does not implement
// it; the SimRenderer does, and the session drives it while physics runs.
type Stepper interface {
	// Step runs one integration step, firing tick and stabilization
	// callbacks as appropriate.
	Step()
}
