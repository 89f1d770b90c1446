// Package session ties the engine together: one LayoutSession per rendered
// topology owns a graph model, the edge router, the zone partitioner, the
// free-layout orchestrator, and the reconciliation engine. All mutation runs
// on the session's single event loop, so the model needs no locking and
// events are processed strictly in arrival order.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/netobserve/topoview/pkg/events"
	"github.com/netobserve/topoview/pkg/graph"
	"github.com/netobserve/topoview/pkg/layout"
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/model"
	"github.com/netobserve/topoview/pkg/reconcile"
	"github.com/netobserve/topoview/pkg/router"
	"github.com/netobserve/topoview/pkg/zones"
)

// ApplyFunc pushes a full or incremental layout to the rendering shell.
type ApplyFunc func(nodes []model.GraphNode, edges []model.CanonicalEdge, mode model.LayoutMode)

// Config assembles a session.
type Config struct {
	Zones         zones.Config
	Orchestrator  layout.Config
	Renderer      layout.Renderer // defaults to an in-process SimRenderer
	DebounceQuiet time.Duration
	Mode          model.LayoutMode

	// StepInterval is the drive clock for a renderer that integrates
	// in-process (implements layout.Stepper). Defaults to ~60 steps/s.
	StepInterval time.Duration

	// Apply receives layout output. Optional.
	Apply ApplyFunc
	// OnActivate surfaces node hit-tests upward. Optional.
	OnActivate func(id uint64)
	// RequestRefetch asks for an immediate snapshot refetch. Optional.
	RequestRefetch func()

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Session is one independently rendered topology.
type Session struct {
	id      string
	logger  logging.Logger
	metrics *metrics.Registry

	model       *graph.Model
	router      *router.Router
	partitioner *zones.Partitioner
	renderer    layout.Renderer
	orch        *layout.Orchestrator
	engine      *reconcile.Engine
	debouncer   *reconcile.Debouncer

	mode         model.LayoutMode
	wirelessOnly bool
	manual       *model.LayoutDocument
	lastZones    *zones.Result

	apply          ApplyFunc
	onActivate     func(id uint64)
	requestRefetch func()

	stepper   layout.Stepper // non-nil when the renderer needs driving
	stepEvery time.Duration

	tasks      chan func()
	renderPass chan struct{}
	done       chan struct{} // closed when Run exits
}

// New creates a session. Run must be called for it to process anything.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Mode == "" {
		cfg.Mode = model.ModeZoned
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = layout.NewSimRenderer(layout.DefaultSimConfig())
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = 16 * time.Millisecond
	}

	id := uuid.NewString()
	logger = logger.With(logging.SessionID(id))

	m := graph.New(logger)
	s := &Session{
		id:             id,
		logger:         logger.With(logging.Component("session")),
		metrics:        cfg.Metrics,
		model:          m,
		router:         router.New(logger),
		partitioner:    zones.New(cfg.Zones),
		renderer:       renderer,
		orch:           layout.New(renderer, cfg.Orchestrator, logger),
		engine:         reconcile.New(m, logger),
		mode:           cfg.Mode,
		apply:          cfg.Apply,
		onActivate:     cfg.OnActivate,
		requestRefetch: cfg.RequestRefetch,
		stepEvery:      cfg.StepInterval,
		tasks:          make(chan func(), 64),
		renderPass:     make(chan struct{}, 1),
		done:           make(chan struct{}),
	}
	if st, ok := renderer.(layout.Stepper); ok {
		s.stepper = st
	}
	s.debouncer = reconcile.NewDebouncer(cfg.DebounceQuiet, s.scheduleRenderPass)
	s.orch.SetBounds(s.boundsFor)
	if cfg.Metrics != nil {
		s.orch.SetMetrics(cfg.Metrics)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Model exposes the graph model for read-side consumers (API, TUI). Reads
// must happen through Post to stay on the session loop.
func (s *Session) Model() *graph.Model { return s.model }

// Mode returns the current layout mode.
func (s *Session) Mode() model.LayoutMode { return s.mode }

// Run processes snapshots, push events, debounce fires and posted tasks
// until ctx is cancelled. This loop is the engine's single logical thread.
func (s *Session) Run(ctx context.Context, snapshots <-chan *reconcile.Snapshot, evs <-chan events.Event) {
	defer close(s.done)
	defer s.debouncer.Stop()

	// A self-contained renderer gets its clock from the loop itself; an
	// external rendering shell ticks on its own and this channel stays nil.
	var stepC <-chan time.Time
	if s.stepper != nil {
		ticker := time.NewTicker(s.stepEvery)
		defer ticker.Stop()
		stepC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.model.Dispose()
			return
		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			s.applySnapshot(snap)
		case ev, ok := <-evs:
			if !ok {
				evs = nil
				continue
			}
			s.handleEvent(ev)
		case <-stepC:
			s.stepSimulation()
		case <-s.renderPass:
			s.pushToRenderer()
		case task := <-s.tasks:
			task()
		}
	}
}

// Post runs fn on the session loop and reports whether it was accepted.
// Use it for mode toggles and manual layout operations arriving from other
// goroutines. Once Run has exited, fn is dropped and Post returns false.
func (s *Session) Post(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.tasks <- fn:
		return true
	case <-s.done:
		return false
	}
}

// SetZonedMode switches to the deterministic zone grid.
func (s *Session) SetZonedMode() {
	s.Post(func() {
		if s.mode == model.ModeZoned {
			return
		}
		s.mode = model.ModeZoned
		s.relayout()
	})
}

// SetFreeMode switches to force-directed layout.
func (s *Session) SetFreeMode() {
	s.Post(func() {
		if s.mode == model.ModeFree {
			return
		}
		s.mode = model.ModeFree
		s.relayout()
	})
}

// SetWirelessFilter restricts the display to devices with wireless links.
func (s *Session) SetWirelessFilter(enabled bool) {
	s.Post(func() {
		if s.wirelessOnly == enabled {
			return
		}
		s.wirelessOnly = enabled
		s.relayout()
	})
}

// NodeActivated surfaces a hit-test on a node upward for navigation.
func (s *Session) NodeActivated(id uint64) {
	if s.onActivate != nil {
		s.onActivate(id)
	}
}

// RequestFit asks the renderer to bring all nodes into view.
func (s *Session) RequestFit() {
	s.Post(func() {
		s.orch.Refit()
	})
}

// applySnapshot reconciles one snapshot and relayouts only when the node or
// edge set actually changed; pure status churn goes through the debounced
// render pass instead.
func (s *Session) applySnapshot(snap *reconcile.Snapshot) {
	diff, err := s.engine.ApplySnapshot(*snap)
	if err != nil {
		s.logger.Error("snapshot apply failed", logging.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordReconcilePass("snapshot", len(diff.Added), len(diff.Removed), len(diff.Updated))
	}
	if diff.Empty() {
		return
	}
	if diff.NodesChanged() || diff.ConnectionsChanged {
		s.relayout()
		return
	}
	s.debouncer.Trigger()
}

// handleEvent applies a push event and acts on the reconciliation outcome.
func (s *Session) handleEvent(ev events.Event) {
	if s.metrics != nil {
		s.metrics.EventsTotal.WithLabelValues(string(ev.Kind())).Inc()
	}
	switch s.engine.HandleEvent(ev) {
	case reconcile.OutcomeStatusApplied:
		if s.metrics != nil {
			s.metrics.EventsCoalesced.Inc()
		}
		s.debouncer.Trigger()
	case reconcile.OutcomeNodeRemoved:
		s.relayout()
	case reconcile.OutcomeStale:
		if s.metrics != nil {
			s.metrics.StaleFallbacksTotal.Inc()
		}
		if s.requestRefetch != nil {
			s.requestRefetch()
		}
	case reconcile.OutcomeRefetch:
		if s.requestRefetch != nil {
			s.requestRefetch()
		}
	}
}

func (s *Session) scheduleRenderPass() {
	select {
	case s.renderPass <- struct{}{}:
	default:
	}
}

// pushToRenderer applies the current model to the shell without recomputing
// the layout; used for coalesced status updates.
func (s *Session) pushToRenderer() {
	if s.apply == nil {
		return
	}
	s.apply(s.visibleNodes(), s.currentEdges(), s.mode)
}
