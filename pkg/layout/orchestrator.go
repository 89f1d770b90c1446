package layout

import (
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/model"
)

// State is the orchestrator lifecycle state.
type State int

const (
	// StateSeeded means nodes and edges are loaded but physics is not running.
	StateSeeded State = iota
	// StateSimulating means the external simulation is active.
	StateSimulating
	// StateStabilized means positions are frozen.
	StateStabilized
	// StateRefitting means a fit-to-view has been requested on frozen positions.
	StateRefitting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateSimulating:
		return "simulating"
	case StateStabilized:
		return "stabilized"
	case StateRefitting:
		return "refitting"
	default:
		return "unknown"
	}
}

// Config tunes the orchestrator.
type Config struct {
	// IterationBudget bounds how many ticks the simulation may run before
	// stabilization is forced. An unstabilized layout beats a busy loop.
	IterationBudget int

	// SoftPullFraction is the share of the distance back toward the
	// container center applied to an escaping node each tick.
	SoftPullFraction float64

	// ClampMargin keeps hard-clamped nodes off the container border.
	ClampMargin float64
}

// DefaultConfig returns the tuned orchestrator parameters.
func DefaultConfig() Config {
	return Config{
		IterationBudget:  600,
		SoftPullFraction: 0.08,
		ClampMargin:      18,
	}
}

// BoundsFunc maps a node id to its logical container, when it has one.
type BoundsFunc func(id uint64) (model.Rect, bool)

// Orchestrator drives a Renderer through
// Seeded -> Simulating -> Stabilized -> Refitting.
type Orchestrator struct {
	renderer Renderer
	cfg      Config
	logger   logging.Logger

	state    State
	ticks    int
	disabled bool
	bounds   BoundsFunc
	ids      []uint64
	fixed    map[uint64]bool
	metrics  *metrics.Registry
}

// New creates an orchestrator bound to a renderer.
func New(renderer Renderer, cfg Config, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	o := &Orchestrator{
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With(logging.Component("layout")),
		state:    StateSeeded,
		fixed:    make(map[uint64]bool),
	}
	renderer.OnTick(o.handleTick)
	renderer.OnStabilized(o.handleStabilized)
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// SetBounds installs the logical-container lookup used for boundary
// correction. A nil func disables correction.
func (o *Orchestrator) SetBounds(fn BoundsFunc) { o.bounds = fn }

// SetMetrics installs the instrumentation registry. Optional.
func (o *Orchestrator) SetMetrics(r *metrics.Registry) { o.metrics = r }

// Seed loads nodes and edges into the renderer without starting physics.
func (o *Orchestrator) Seed(nodes []model.GraphNode, edges []model.CanonicalEdge) {
	o.ids = o.ids[:0]
	o.fixed = make(map[uint64]bool, len(nodes))
	for _, n := range nodes {
		o.ids = append(o.ids, n.ID)
		if n.Fixed {
			o.fixed[n.ID] = true
		}
	}
	o.renderer.SetNodes(nodes)
	o.renderer.SetEdges(edges)
	o.state = StateSeeded
	o.ticks = 0
}

// Start transitions Seeded -> Simulating. When the orchestrator has been
// disabled (a fully manual layout is loaded) it skips straight to a fit.
func (o *Orchestrator) Start() {
	if o.disabled {
		o.state = StateStabilized
		o.renderer.Fit()
		return
	}
	o.state = StateSimulating
	o.ticks = 0
	o.renderer.EnablePhysics(true)
	o.logger.Debug("simulation started")
}

// Invalidate re-enters Simulating after a reconciliation changed the node or
// edge set. Only an explicit invalidation or mode toggle may leave Stabilized.
func (o *Orchestrator) Invalidate(nodes []model.GraphNode, edges []model.CanonicalEdge) {
	o.Seed(nodes, edges)
	o.Start()
}

// Refit asks for a fit-to-view over frozen positions.
func (o *Orchestrator) Refit() {
	if o.state != StateStabilized {
		return
	}
	o.state = StateRefitting
	o.renderer.Fit()
	o.state = StateStabilized
}

// Disable freezes the orchestrator entirely; used when every visible node
// has a stored manual position.
func (o *Orchestrator) Disable() {
	o.disabled = true
	o.renderer.EnablePhysics(false)
	o.state = StateStabilized
}

// Enable lifts Disable, e.g. when the manual layout is discarded.
func (o *Orchestrator) Enable() {
	o.disabled = false
}

// handleTick runs once per simulation step: boundary correction first, then
// the iteration-budget check.
func (o *Orchestrator) handleTick() {
	if o.state != StateSimulating {
		return
	}
	o.correctBoundaries()

	o.ticks++
	if o.cfg.IterationBudget > 0 && o.ticks >= o.cfg.IterationBudget {
		o.logger.Warn("iteration budget exhausted, forcing stabilization",
			logging.Int("ticks", o.ticks))
		if o.metrics != nil {
			o.metrics.ForcedStabilization.Inc()
		}
		o.renderer.EnablePhysics(false)
		o.handleStabilized()
	}
}

// handleStabilized freezes positions and fits the view.
func (o *Orchestrator) handleStabilized() {
	if o.state != StateSimulating {
		return
	}
	o.renderer.EnablePhysics(false)
	o.state = StateStabilized
	o.renderer.Fit()
	if o.metrics != nil {
		o.metrics.SimulationTicks.Observe(float64(o.ticks))
	}
	o.logger.Debug("simulation stabilized", logging.Int("ticks", o.ticks))
}

// correctBoundaries nudges escaping nodes a small fraction back toward their
// container center (soft pull, not a hard reset, to avoid jitter) and
// hard-clamps anything past the border, damping velocity on clamp so nodes
// do not oscillate against the wall.
func (o *Orchestrator) correctBoundaries() {
	if o.bounds == nil {
		return
	}
	for _, id := range o.ids {
		if o.fixed[id] {
			continue
		}
		box, ok := o.bounds(id)
		if !ok {
			continue
		}
		pos, ok := o.renderer.GetPosition(id)
		if !ok {
			continue
		}
		if box.Contains(pos, o.cfg.ClampMargin) {
			continue
		}

		center := box.Center()
		pos.X += (center.X - pos.X) * o.cfg.SoftPullFraction
		pos.Y += (center.Y - pos.Y) * o.cfg.SoftPullFraction

		clamped := false
		if pos.X < box.X+o.cfg.ClampMargin {
			pos.X = box.X + o.cfg.ClampMargin
			clamped = true
		} else if pos.X > box.X+box.Width-o.cfg.ClampMargin {
			pos.X = box.X + box.Width - o.cfg.ClampMargin
			clamped = true
		}
		if pos.Y < box.Y+o.cfg.ClampMargin {
			pos.Y = box.Y + o.cfg.ClampMargin
			clamped = true
		} else if pos.Y > box.Y+box.Height-o.cfg.ClampMargin {
			pos.Y = box.Y + box.Height - o.cfg.ClampMargin
			clamped = true
		}

		o.renderer.SetPosition(id, pos, clamped)
	}
}
