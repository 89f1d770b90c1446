package router

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/netobserve/topoview/pkg/model"
)

func conn(id, from, to uint64, view model.ViewType) model.Connection {
	return model.Connection{ID: id, DeviceID: from, ConnectedTo: to, ViewType: view}
}

func TestCanonicalizeDeduplicatesPairs(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 2, 1, model.ViewStandard), // reversed duplicate
		conn(3, 1, 2, model.ViewStandard), // exact duplicate
	}

	edges := r.Canonicalize(conns, nil)
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge after dedup, got %d", len(edges))
	}
	if edges[0].From != 1 || edges[0].To != 2 {
		t.Errorf("Expected normalized endpoints 1-2, got %d-%d", edges[0].From, edges[0].To)
	}
	if edges[0].ID != "1-2:standard" {
		t.Errorf("Expected edge id 1-2:standard, got %q", edges[0].ID)
	}
}

func TestCanonicalizeDropsSelfLoops(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 7, 7, model.ViewStandard),
		conn(2, 1, 2, model.ViewStandard),
	}

	edges := r.Canonicalize(conns, nil)
	if len(edges) != 1 {
		t.Fatalf("Expected self-loop to be dropped, got %d edges", len(edges))
	}
	if edges[0].ID != "1-2:standard" {
		t.Errorf("Wrong surviving edge: %q", edges[0].ID)
	}
}

func TestCanonicalizeKeepsDistinctViewTypes(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 1, 2, model.ViewWireless),
	}

	edges := r.Canonicalize(conns, nil)
	if len(edges) != 2 {
		t.Fatalf("Expected one edge per view type, got %d", len(edges))
	}
}

func TestCanonicalizeMixedViews(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 2, 1, model.ViewWireless),
		conn(3, 1, 2, model.ViewWireless),
	}
	edges := r.Canonicalize(conns, nil)
	if len(edges) != 2 {
		t.Fatalf("Expected exactly 2 canonical edges, got %d", len(edges))
	}

	byView := map[model.ViewType]int{}
	for _, e := range edges {
		byView[e.ViewType]++
	}
	if byView[model.ViewStandard] != 1 || byView[model.ViewWireless] != 1 {
		t.Errorf("Expected one standard and one wireless edge, got %v", byView)
	}
}

func TestCanonicalizeFirstSeenWins(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 5, 9, model.ViewStandard),
		conn(2, 9, 5, model.ViewStandard),
	}
	edges := r.Canonicalize(conns, nil)
	if len(edges) != 1 {
		t.Fatalf("Expected 1 edge, got %d", len(edges))
	}
	// The kept edge derives from the first occurrence.
	if edges[0].From != 5 || edges[0].To != 9 {
		t.Errorf("Expected endpoints 5-9, got %d-%d", edges[0].From, edges[0].To)
	}
}

func TestCanonicalizeFiltersHiddenEndpoints(t *testing.T) {
	r := New(nil)

	visible := func(id uint64) bool { return id != 3 }
	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 2, 3, model.ViewStandard),
		conn(3, 3, 1, model.ViewStandard),
	}

	edges := r.Canonicalize(conns, visible)
	if len(edges) != 1 {
		t.Fatalf("Expected edges touching device 3 dropped, got %d edges", len(edges))
	}
	if edges[0].From != 1 || edges[0].To != 2 {
		t.Errorf("Expected surviving edge 1-2, got %d-%d", edges[0].From, edges[0].To)
	}
}

func TestAssignRoutingFirstEdgeStraight(t *testing.T) {
	r := New(nil)

	edges := r.Canonicalize([]model.Connection{conn(1, 1, 2, model.ViewStandard)}, nil)
	r.AssignRouting(edges)

	if edges[0].Routing.CurveType != "" {
		t.Errorf("Expected sole edge to render straight, got curve %s", edges[0].Routing.CurveType)
	}
	if edges[0].Routing.Roundness != 0 {
		t.Errorf("Expected zero roundness, got %f", edges[0].Routing.Roundness)
	}
}

func TestAssignRoutingAlternatesAndOffsets(t *testing.T) {
	r := New(nil)

	// Fan of edges sharing device 1.
	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 1, 3, model.ViewStandard),
		conn(3, 1, 4, model.ViewStandard),
	}
	edges := r.Build(conns, nil, model.ModeFree)
	if len(edges) != 3 {
		t.Fatalf("Expected 3 edges, got %d", len(edges))
	}

	if edges[0].Routing.CurveType != "" {
		t.Errorf("First edge at an endpoint should be straight")
	}
	if edges[1].Routing.CurveType != model.CurveClockwise {
		t.Errorf("Second edge should curve clockwise, got %s", edges[1].Routing.CurveType)
	}
	if edges[2].Routing.CurveType != model.CurveCounterClockwise {
		t.Errorf("Third edge should curve counter-clockwise, got %s", edges[2].Routing.CurveType)
	}

	// idx=1 for edge 1-3: roundness = 0.15 + offset((1*7+3*13)%20)/200
	wantOffset := float64((1*7+3*13)%20) / 200.0
	want := 0.15 + wantOffset
	if math.Abs(edges[1].Routing.Roundness-want) > 1e-9 {
		t.Errorf("Expected roundness %f, got %f", want, edges[1].Routing.Roundness)
	}
}

func TestBuildZonedModeSkipsRouting(t *testing.T) {
	r := New(nil)

	conns := []model.Connection{
		conn(1, 1, 2, model.ViewStandard),
		conn(2, 1, 3, model.ViewStandard),
	}
	edges := r.Build(conns, nil, model.ModeZoned)
	for _, e := range edges {
		if e.Routing.CurveType != "" || e.Routing.Roundness != 0 {
			t.Errorf("Zoned mode must not assign routing, edge %s got %+v", e.ID, e.Routing)
		}
	}
}

func TestRoundnessCapped(t *testing.T) {
	r := New(nil)

	// Enough parallel-ish edges through one hub to push roundness past the cap.
	conns := make([]model.Connection, 0, 30)
	for i := uint64(2); i < 32; i++ {
		conns = append(conns, conn(i, 1, i, model.ViewStandard))
	}
	edges := r.Build(conns, nil, model.ModeFree)
	for _, e := range edges {
		if e.Routing.Roundness > 0.9 {
			t.Errorf("Roundness %f exceeds cap on edge %s", e.Routing.Roundness, e.ID)
		}
	}
}

// TestDedupProperty verifies that canonicalization never leaves two edges for
// the same unordered pair and view type, regardless of input order.
func TestDedupProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	genConns := gen.SliceOf(gopter.CombineGens(
		gen.UInt64Range(1, 8),
		gen.UInt64Range(1, 8),
		gen.Bool(),
	).Map(func(vals []interface{}) model.Connection {
		view := model.ViewStandard
		if vals[2].(bool) {
			view = model.ViewWireless
		}
		return model.Connection{
			DeviceID:    vals[0].(uint64),
			ConnectedTo: vals[1].(uint64),
			ViewType:    view,
		}
	}))

	properties.Property("at most one edge per pair per view", prop.ForAll(
		func(conns []model.Connection) bool {
			r := New(nil)
			edges := r.Canonicalize(conns, nil)

			seen := make(map[string]bool)
			for _, e := range edges {
				if e.From >= e.To {
					return false // endpoints normalized, self-loops dropped
				}
				if seen[e.ID] {
					return false
				}
				seen[e.ID] = true
			}
			return true
		},
		genConns,
	))

	properties.Property("every edge traces back to an input connection", prop.ForAll(
		func(conns []model.Connection) bool {
			r := New(nil)
			edges := r.Canonicalize(conns, nil)

			inputs := make(map[pairKey]bool)
			for _, c := range conns {
				inputs[keyFor(c)] = true
			}
			for _, e := range edges {
				if !inputs[pairKey{lo: e.From, hi: e.To, view: e.ViewType}] {
					return false
				}
			}
			return true
		},
		genConns,
	))

	properties.TestingRun(t)
}
