package session

import (
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
)

// LoadManualLayout installs a persisted layout document. Nodes with a
// stored position are pinned there; when every visible device is covered,
// the orchestrator is disabled entirely and the view fits immediately.
// Must run on the session loop (use Post from other goroutines).
func (s *Session) LoadManualLayout(doc model.LayoutDocument) {
	if doc.NodePositions == nil {
		doc.NodePositions = map[uint64]model.Position{}
	}
	s.manual = &doc
	s.logger.Info("manual layout loaded",
		logging.Count(len(doc.NodePositions)))
	s.relayout()
}

// ClearManualLayout discards the manual layout and hands position authority
// back to the automatic layout.
func (s *Session) ClearManualLayout() {
	s.manual = nil
	s.model.ClearFixed()
	s.relayout()
}

// SaveManualLayout captures every node's current coordinates, regardless of
// layout mode, together with the given background calibration. The returned
// document is a full replacement for whatever was stored before.
func (s *Session) SaveManualLayout(background model.Background) model.LayoutDocument {
	if s.mode == model.ModeFree {
		s.syncFromRenderer(s.visibleNodes())
	}
	return model.LayoutDocument{
		NodePositions: s.model.Positions(),
		Background:    background,
	}
}
