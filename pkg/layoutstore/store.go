// Package layoutstore persists user-authored layout documents. The store is
// an opaque document write from the engine's point of view: a full save
// supersedes the previous document, and loads degrade to an empty position
// map instead of failing.
package layoutstore

import (
	"context"
	"encoding/json"

	"github.com/netobserve/topoview/pkg/model"
)

// Store is the persistence surface for sub-topologies.
type Store interface {
	// Save creates or wholesale-replaces a sub-topology. Last full save wins.
	Save(ctx context.Context, st *model.SubTopology) error

	// Get returns a sub-topology by id, or ErrDocumentNotFound.
	Get(ctx context.Context, id string) (*model.SubTopology, error)

	// List returns all stored sub-topologies.
	List(ctx context.Context) ([]*model.SubTopology, error)

	// Delete removes a sub-topology. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// ParseDocument decodes a persisted layout document. Older writers stored
// the document as a pre-serialized string rather than a structured object;
// both forms are accepted. Any parse failure degrades to an empty position
// map: automatic placement is an acceptable fallback, a load error is not.
func ParseDocument(raw []byte) model.LayoutDocument {
	empty := model.LayoutDocument{NodePositions: map[uint64]model.Position{}}
	if len(raw) == 0 {
		return empty
	}

	var doc model.LayoutDocument
	if err := json.Unmarshal(raw, &doc); err == nil {
		if doc.NodePositions == nil {
			doc.NodePositions = map[uint64]model.Position{}
		}
		return doc
	}

	// Double-encoded form: a JSON string holding the serialized document.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &doc); err == nil {
			if doc.NodePositions == nil {
				doc.NodePositions = map[uint64]model.Position{}
			}
			return doc
		}
	}
	return empty
}
