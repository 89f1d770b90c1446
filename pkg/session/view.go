package session

import (
	"github.com/netobserve/topoview/pkg/model"
)

// View is a read-only copy of the session's current render state, safe to
// hand to other goroutines.
type View struct {
	Mode    model.LayoutMode      `json:"mode"`
	Devices []model.Device        `json:"devices"`
	Nodes   []model.GraphNode     `json:"nodes"`
	Edges   []model.CanonicalEdge `json:"edges"`
	Zones   []model.Zone          `json:"zones,omitempty"`
}

// Snapshot captures a View on the session loop and returns it. Must not be
// called from the loop itself. After the loop has exited the returned view
// is empty rather than blocking the caller.
func (s *Session) Snapshot() View {
	out := make(chan View, 1)
	accepted := s.Post(func() {
		v := View{
			Mode:    s.mode,
			Devices: s.visibleDevices(),
			Nodes:   s.visibleNodes(),
			Edges:   s.currentEdges(),
		}
		if s.mode == model.ModeZoned && s.lastZones != nil {
			v.Zones = s.lastZones.Zones
		}
		out <- v
	})
	if !accepted {
		return View{}
	}
	select {
	case v := <-out:
		return v
	case <-s.done:
		return View{}
	}
}
