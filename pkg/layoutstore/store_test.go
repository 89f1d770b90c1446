package layoutstore

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/netobserve/topoview/pkg/model"
)

func TestParseDocumentObjectForm(t *testing.T) {
	raw := []byte(`{"nodePositions":{"1":{"x":10,"y":20},"2":{"x":-5,"y":0}},"background":{"imageRef":"floor.png","zoomPercent":80}}`)

	doc := ParseDocument(raw)

	if len(doc.NodePositions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(doc.NodePositions))
	}
	if doc.NodePositions[1] != (model.Position{X: 10, Y: 20}) {
		t.Errorf("Position 1 wrong: %+v", doc.NodePositions[1])
	}
	if doc.Background.ImageRef != "floor.png" || doc.Background.ZoomPercent != 80 {
		t.Errorf("Background wrong: %+v", doc.Background)
	}
}

func TestParseDocumentStringForm(t *testing.T) {
	// Older writers double-encoded the document as a JSON string.
	inner := `{"nodePositions":{"7":{"x":1,"y":2}}}`
	raw, _ := json.Marshal(inner)

	doc := ParseDocument(raw)

	if doc.NodePositions[7] != (model.Position{X: 1, Y: 2}) {
		t.Errorf("String-form document not parsed: %+v", doc)
	}
}

func TestParseDocumentDegradesToEmpty(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("garbage"),
		[]byte(`"also garbage"`),
		[]byte(`{}`),
	}
	for _, raw := range cases {
		doc := ParseDocument(raw)
		if doc.NodePositions == nil {
			t.Errorf("ParseDocument(%q): nil position map, want empty", raw)
		}
		if len(doc.NodePositions) != 0 {
			t.Errorf("ParseDocument(%q): unexpected positions %v", raw, doc.NodePositions)
		}
	}
}

func testSubTopology(id string) *model.SubTopology {
	return &model.SubTopology{
		ID:        id,
		Name:      "server room",
		DeviceIDs: []uint64{1, 2, 3},
		Layout: model.LayoutDocument{
			NodePositions: map[uint64]model.Position{
				1: {X: 10, Y: 20},
				2: {X: 30, Y: 40},
			},
		},
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	st := testSubTopology("a")
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got.Layout.NodePositions, st.Layout.NodePositions) {
		t.Errorf("Positions mismatch: %v", got.Layout.NodePositions)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, model.ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound after delete, got %v", err)
	}

	// Deleting a missing id is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing id failed: %v", err)
	}
}

func TestMemoryStoreLastSaveWins(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.Save(ctx, testSubTopology("a"))

	replacement := testSubTopology("a")
	replacement.Layout.NodePositions = map[uint64]model.Position{9: {X: 1, Y: 1}}
	s.Save(ctx, replacement)

	got, _ := s.Get(ctx, "a")
	if len(got.Layout.NodePositions) != 1 {
		t.Errorf("Expected wholesale replacement, got %v", got.Layout.NodePositions)
	}
	if _, ok := got.Layout.NodePositions[1]; ok {
		t.Error("Old positions merged into replacement")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	st := testSubTopology("a")
	s.Save(ctx, st)

	// Mutating the caller's copy after save must not affect the stored one.
	st.Layout.NodePositions[1] = model.Position{X: -999, Y: -999}

	got, _ := s.Get(ctx, "a")
	if got.Layout.NodePositions[1] != (model.Position{X: 10, Y: 20}) {
		t.Error("Store shares memory with caller")
	}

	// Mutating a returned copy must not affect subsequent reads.
	got.Layout.NodePositions[2] = model.Position{}
	again, _ := s.Get(ctx, "a")
	if again.Layout.NodePositions[2] != (model.Position{X: 30, Y: 40}) {
		t.Error("Returned document shares memory with store")
	}
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.Save(ctx, testSubTopology("b"))
	s.Save(ctx, testSubTopology("a"))
	s.Save(ctx, testSubTopology("c"))

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Errorf("List[%d] = %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	s.Close()

	if err := s.Save(context.Background(), testSubTopology("a")); !errors.Is(err, model.ErrStoreClosed) {
		t.Errorf("Expected ErrStoreClosed, got %v", err)
	}
}

func TestLayoutDocumentRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	orig := testSubTopology("rt")
	s.Save(ctx, orig)

	loaded, err := s.Get(ctx, "rt")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	s.Save(ctx, loaded)

	again, _ := s.Get(ctx, "rt")
	if !reflect.DeepEqual(again.Layout.NodePositions, orig.Layout.NodePositions) {
		t.Errorf("Save/load/save changed positions: %v", again.Layout.NodePositions)
	}
}
