package layout

import (
	"math"
	"math/rand"

	"github.com/netobserve/topoview/pkg/model"
)

// SimConfig tunes the in-process force simulation.
type SimConfig struct {
	Width       float64 // layout area width, centered on the origin
	Height      float64 // layout area height, centered on the origin
	Cooling     float64 // temperature decay per step
	MinMovement float64 // max displacement below which the layout is settled
	Padding     float64 // viewport padding applied by Fit
	Seed        int64   // rng seed for initial placement
}

// DefaultSimConfig returns the tuned simulation parameters.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Width:       1600,
		Height:      1200,
		Cooling:     0.95,
		MinMovement: 0.5,
		Padding:     50,
		Seed:        1,
	}
}

type simNode struct {
	pos   model.Position
	vel   model.Position
	fixed bool
}

// SimRenderer is a stepped Fruchterman-Reingold simulation implementing the
// Renderer interface. Each ExternalStep runs one integration step and fires
// the tick callbacks; when the maximum displacement falls below the settle
// threshold it fires the stabilization callbacks once.
type SimRenderer struct {
	cfg SimConfig

	nodes map[uint64]*simNode
	order []uint64
	adj   map[uint64]map[uint64]bool

	physics     bool
	temperature float64
	settled     bool

	tickCbs []func()
	stabCbs []func()

	viewport model.Rect
	rng      *rand.Rand
}

// NewSimRenderer creates the default in-process renderer.
func NewSimRenderer(cfg SimConfig) *SimRenderer {
	return &SimRenderer{
		cfg:   cfg,
		nodes: make(map[uint64]*simNode),
		adj:   make(map[uint64]map[uint64]bool),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SetNodes replaces the node set. Positioned nodes are seeded where they
// stand; the rest scatter across the layout area.
func (s *SimRenderer) SetNodes(nodes []model.GraphNode) {
	fresh := make(map[uint64]*simNode, len(nodes))
	order := make([]uint64, 0, len(nodes))
	for _, n := range nodes {
		order = append(order, n.ID)
		sn := &simNode{fixed: n.Fixed}
		switch {
		case n.Position != nil:
			sn.pos = *n.Position
		case s.nodes[n.ID] != nil:
			sn.pos = s.nodes[n.ID].pos
		default:
			sn.pos = model.Position{
				X: (s.rng.Float64() - 0.5) * (s.cfg.Width - 2*s.cfg.Padding),
				Y: (s.rng.Float64() - 0.5) * (s.cfg.Height - 2*s.cfg.Padding),
			}
		}
		fresh[n.ID] = sn
	}
	s.nodes = fresh
	s.order = order
	s.resetTemperature()
}

// SetEdges replaces the attraction edges.
func (s *SimRenderer) SetEdges(edges []model.CanonicalEdge) {
	s.adj = make(map[uint64]map[uint64]bool, len(edges))
	add := func(a, b uint64) {
		if s.adj[a] == nil {
			s.adj[a] = make(map[uint64]bool)
		}
		s.adj[a][b] = true
	}
	for _, e := range edges {
		add(e.From, e.To)
		add(e.To, e.From)
	}
	s.resetTemperature()
}

// EnablePhysics starts or freezes the simulation.
func (s *SimRenderer) EnablePhysics(enabled bool) {
	s.physics = enabled
	if enabled {
		s.settled = false
		s.resetTemperature()
	}
}

// OnTick registers a per-step callback.
func (s *SimRenderer) OnTick(cb func()) {
	s.tickCbs = append(s.tickCbs, cb)
}

// OnStabilized registers a settle callback.
func (s *SimRenderer) OnStabilized(cb func()) {
	s.stabCbs = append(s.stabCbs, cb)
}

// GetPosition returns a node's current position.
func (s *SimRenderer) GetPosition(id uint64) (model.Position, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return model.Position{}, false
	}
	return n.pos, true
}

// SetPosition overrides a node's position, optionally bleeding off velocity.
func (s *SimRenderer) SetPosition(id uint64, pos model.Position, dampVelocity bool) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	n.pos = pos
	if dampVelocity {
		n.vel.X *= 0.1
		n.vel.Y *= 0.1
	}
}

// Fit recomputes the viewport to cover every node plus padding.
func (s *SimRenderer) Fit() {
	if len(s.order) == 0 {
		s.viewport = model.Rect{}
		return
	}
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, id := range s.order {
		p := s.nodes[id].pos
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	s.viewport = model.Rect{
		X:      minX - s.cfg.Padding,
		Y:      minY - s.cfg.Padding,
		Width:  maxX - minX + 2*s.cfg.Padding,
		Height: maxY - minY + 2*s.cfg.Padding,
	}
}

// Viewport returns the last fitted view rectangle.
func (s *SimRenderer) Viewport() model.Rect { return s.viewport }

// Step runs one integration step while physics is enabled, firing tick and
// stabilization callbacks as appropriate.
func (s *SimRenderer) Step() {
	if !s.physics || s.settled {
		return
	}
	maxDisp := s.integrate()
	for _, cb := range s.tickCbs {
		cb()
	}
	if maxDisp < s.cfg.MinMovement {
		s.settled = true
		for _, cb := range s.stabCbs {
			cb()
		}
	}
}

// Run steps the simulation until it settles or maxSteps is reached.
func (s *SimRenderer) Run(maxSteps int) {
	for i := 0; i < maxSteps && s.physics && !s.settled; i++ {
		s.Step()
	}
}

func (s *SimRenderer) resetTemperature() {
	s.temperature = s.cfg.Width / 10.0
	s.settled = false
}

// integrate applies one round of repulsive and attractive forces with the
// current temperature cap, returning the largest node displacement.
func (s *SimRenderer) integrate() float64 {
	n := len(s.order)
	if n < 2 {
		return 0
	}
	k := math.Sqrt((s.cfg.Width * s.cfg.Height) / float64(n))

	forces := make(map[uint64]model.Position, n)

	// Repulsion between all pairs.
	for i, a := range s.order {
		for j := i + 1; j < n; j++ {
			b := s.order[j]
			dx := s.nodes[a].pos.X - s.nodes[b].pos.X
			dy := s.nodes[a].pos.Y - s.nodes[b].pos.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < 0.01 {
				dist = 0.01
			}
			force := (k * k) / dist
			fx := (dx / dist) * force
			fy := (dy / dist) * force
			fa := forces[a]
			fa.X += fx
			fa.Y += fy
			forces[a] = fa
			fb := forces[b]
			fb.X -= fx
			fb.Y -= fy
			forces[b] = fb
		}
	}

	// Attraction along edges. Neighbors are visited in node order so force
	// accumulation is reproducible.
	for _, a := range s.order {
		for _, b := range s.order {
			if !s.adj[a][b] {
				continue
			}
			dx := s.nodes[a].pos.X - s.nodes[b].pos.X
			dy := s.nodes[a].pos.Y - s.nodes[b].pos.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < 0.01 {
				continue
			}
			force := (dist * dist) / k
			fa := forces[a]
			fa.X -= (dx / dist) * force
			fa.Y -= (dy / dist) * force
			forces[a] = fa
		}
	}

	maxDisp := 0.0
	for _, id := range s.order {
		node := s.nodes[id]
		if node.fixed {
			continue
		}
		f := forces[id]
		mag := math.Sqrt(f.X*f.X + f.Y*f.Y)
		if mag == 0 {
			continue
		}
		step := math.Min(mag, s.temperature)
		dx := (f.X / mag) * step
		dy := (f.Y / mag) * step
		node.vel.X = dx
		node.vel.Y = dy
		node.pos.X += dx
		node.pos.Y += dy
		if d := math.Sqrt(dx*dx + dy*dy); d > maxDisp {
			maxDisp = d
		}
	}

	s.temperature *= s.cfg.Cooling
	if s.temperature < 0.1 {
		s.temperature = 0.1
	}
	return maxDisp
}
