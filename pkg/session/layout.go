package session

import (
	"time"

	"github.com/netobserve/topoview/pkg/layout"
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
)

// relayout recomputes coordinates for the current mode and pushes the
// result to the shell.
func (s *Session) relayout() {
	start := time.Now()
	edges := s.router.Build(s.model.Connections(), s.visibleFunc(), s.mode)
	if err := s.model.SetEdges(edges); err != nil {
		s.logger.Warn("layout pass skipped", logging.Error(err))
		return
	}

	switch s.mode {
	case model.ModeZoned:
		s.layoutZoned()
	case model.ModeFree:
		s.layoutFree(edges)
	}

	nodes := s.visibleNodes()
	if s.metrics != nil {
		s.metrics.RecordLayoutPass(string(s.mode), len(nodes), len(edges), time.Since(start))
	}
	if s.apply != nil {
		s.apply(nodes, edges, s.mode)
	}
	s.logger.Debug("layout pass complete",
		logging.Mode(string(s.mode)),
		logging.Count(len(nodes)),
		logging.Latency(time.Since(start)))
}

// layoutZoned runs the deterministic partitioner. Every device lands on its
// grid cell with an authoritative position; physics never touches it.
func (s *Session) layoutZoned() {
	devices := s.visibleDevices()
	s.lastZones = s.partitioner.Partition(devices)
	for id, pos := range s.lastZones.Positions {
		if err := s.model.SetPosition(id, pos, true); err != nil {
			s.logger.Warn("partitioner produced position for unknown device",
				logging.DeviceID(id), logging.Error(err))
		}
	}
}

// layoutFree seeds the orchestrator with the visible nodes. Manual
// positions, when loaded, pin their nodes before the simulation starts, so
// new devices still land sensibly relative to the fixed ones.
func (s *Session) layoutFree(edges []model.CanonicalEdge) {
	nodes := s.visibleNodes()

	if s.manual != nil {
		covered := 0
		for i := range nodes {
			if pos, ok := s.manual.NodePositions[nodes[i].ID]; ok {
				p := pos
				nodes[i].Position = &p
				nodes[i].Fixed = true
				s.model.SetPosition(nodes[i].ID, pos, true)
				covered++
			}
		}
		if covered == len(nodes) && len(nodes) > 0 {
			// Fully manual layout: no physics at all, straight to a fit.
			s.orch.Seed(nodes, edges)
			s.orch.Disable()
			return
		}
	}

	s.orch.Enable()
	s.orch.Invalidate(nodes, edges)
	s.syncFromRenderer(nodes)
}

// stepSimulation advances a self-driven renderer by one integration step
// while the simulation is live, then mirrors the new coordinates into the
// model. When the step settles the layout (or exhausts the iteration
// budget) the result is pushed to the shell immediately.
func (s *Session) stepSimulation() {
	if s.stepper == nil || s.mode != model.ModeFree {
		return
	}
	if s.orch.State() != layout.StateSimulating {
		return
	}
	s.stepper.Step()
	s.syncFromRenderer(s.visibleNodes())
	if s.orch.State() == layout.StateStabilized {
		s.scheduleRenderPass()
	}
}

// syncFromRenderer copies simulated coordinates back into the model so
// saves and reads observe current positions.
func (s *Session) syncFromRenderer(nodes []model.GraphNode) {
	for _, n := range nodes {
		if n.Fixed {
			continue
		}
		if pos, ok := s.renderer.GetPosition(n.ID); ok {
			s.model.SetPosition(n.ID, pos, false)
		}
	}
}

// visibleFunc reports display membership under the active filter.
func (s *Session) visibleFunc() func(uint64) bool {
	if !s.wirelessOnly {
		return func(id uint64) bool { return s.model.Has(id) }
	}
	wireless := make(map[uint64]bool)
	for _, c := range s.model.Connections() {
		if c.ViewType == model.ViewWireless {
			wireless[c.DeviceID] = true
			wireless[c.ConnectedTo] = true
		}
	}
	return func(id uint64) bool { return wireless[id] && s.model.Has(id) }
}

// visibleDevices returns the devices under the active filter, in model
// insertion order.
func (s *Session) visibleDevices() []model.Device {
	visible := s.visibleFunc()
	all := s.model.Devices()
	out := make([]model.Device, 0, len(all))
	for _, d := range all {
		if visible(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

// visibleNodes returns the render nodes under the active filter.
func (s *Session) visibleNodes() []model.GraphNode {
	visible := s.visibleFunc()
	all := s.model.Nodes()
	out := make([]model.GraphNode, 0, len(all))
	for _, n := range all {
		if visible(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// currentEdges returns the canonical edge set already stored on the model.
func (s *Session) currentEdges() []model.CanonicalEdge {
	return s.model.Edges()
}

// boundsFor returns the logical container for a device while physics runs,
// enabling the orchestrator's soft boundary correction when zone geometry
// exists.
func (s *Session) boundsFor(id uint64) (model.Rect, bool) {
	if s.lastZones == nil {
		return model.Rect{}, false
	}
	d := s.model.Device(id)
	if d == nil {
		return model.Rect{}, false
	}
	return s.lastZones.ZoneFor(d)
}
