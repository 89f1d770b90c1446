// Package router collapses the raw connection list into the canonical edge
// set and assigns the curvature metadata that keeps parallel edges readable.
package router

import (
	"fmt"

	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
)

// Router builds canonical edges from raw connections.
type Router struct {
	logger logging.Logger
}

// New creates a Router.
func New(logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Router{logger: logger.With(logging.Component("router"))}
}

type pairKey struct {
	lo, hi uint64
	view   model.ViewType
}

func keyFor(c model.Connection) pairKey {
	lo, hi := c.DeviceID, c.ConnectedTo
	if lo > hi {
		lo, hi = hi, lo
	}
	return pairKey{lo: lo, hi: hi, view: c.ViewType}
}

// Canonicalize deduplicates connections into at most one edge per unordered
// device pair per view type. The first occurrence of a pair wins, except
// that a later standard-view duplicate replaces a kept non-standard one.
// Pairs with an endpoint outside the visible device set produce no edge,
// and self-loops are dropped outright.
func (r *Router) Canonicalize(conns []model.Connection, visible func(uint64) bool) []model.CanonicalEdge {
	kept := make(map[pairKey]int) // key -> index into edges
	edges := make([]model.CanonicalEdge, 0, len(conns))

	for _, c := range conns {
		if c.DeviceID == c.ConnectedTo {
			r.logger.Warn("dropping self-loop connection", logging.DeviceID(c.DeviceID))
			continue
		}
		if visible != nil && (!visible(c.DeviceID) || !visible(c.ConnectedTo)) {
			continue
		}
		k := keyFor(c)
		if i, ok := kept[k]; ok {
			// Standard view always wins over a kept non-standard duplicate;
			// otherwise first-seen stays.
			if c.ViewType == model.ViewStandard && edges[i].ViewType != model.ViewStandard {
				edges[i] = edgeFrom(c, k)
			}
			continue
		}
		kept[k] = len(edges)
		edges = append(edges, edgeFrom(c, k))
	}
	return edges
}

func edgeFrom(c model.Connection, k pairKey) model.CanonicalEdge {
	return model.CanonicalEdge{
		ID:       fmt.Sprintf("%d-%d:%s", k.lo, k.hi, c.ViewType),
		From:     k.lo,
		To:       k.hi,
		ViewType: c.ViewType,
	}
}

// AssignRouting computes curvature for edges that share an endpoint so they
// do not visually overlap in free mode. Curve direction alternates with the
// per-endpoint occurrence index and roundness grows with it; a small offset
// derived from the endpoint ids desynchronizes visually similar edges.
func (r *Router) AssignRouting(edges []model.CanonicalEdge) {
	occurrences := make(map[uint64]int)
	for i := range edges {
		e := &edges[i]
		idx := occurrences[e.From]
		if o := occurrences[e.To]; o > idx {
			idx = o
		}
		occurrences[e.From]++
		occurrences[e.To]++

		if idx == 0 {
			e.Routing = model.Routing{}
			continue
		}
		curve := model.CurveClockwise
		if idx%2 == 0 {
			curve = model.CurveCounterClockwise
		}
		offset := float64((e.From*7+e.To*13)%20) / 200.0
		roundness := 0.15 + 0.10*float64((idx-1)/2) + offset
		if roundness > 0.9 {
			roundness = 0.9
		}
		e.Routing = model.Routing{CurveType: curve, Roundness: roundness}
	}
}

// Build canonicalizes and, in free mode, routes. Zoned mode suppresses edge
// rendering entirely, but the canonical set is still produced for callers
// that need it.
func (r *Router) Build(conns []model.Connection, visible func(uint64) bool, mode model.LayoutMode) []model.CanonicalEdge {
	edges := r.Canonicalize(conns, visible)
	if mode == model.ModeFree {
		r.AssignRouting(edges)
	}
	r.logger.Debug("canonical edges built",
		logging.Count(len(edges)),
		logging.Mode(string(mode)),
		logging.Int("raw_connections", len(conns)))
	return edges
}
