package backend

import (
	"context"
	"time"

	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/reconcile"
)

// Poller fetches topology snapshots on a fixed interval and hands them to a
// consumer. A failed fetch keeps the last-known-good model; the next
// scheduled poll retries. There is no immediate retry, which avoids request
// storms against an unhealthy backend.
type Poller struct {
	client   *Client
	interval time.Duration
	logger   logging.Logger
	metrics  *metrics.Registry

	refetch chan struct{}
	handler func(*reconcile.Snapshot)
}

// NewPoller creates a poller that delivers snapshots to handler.
func NewPoller(client *Client, interval time.Duration, handler func(*reconcile.Snapshot), logger logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:   client,
		interval: interval,
		logger:   logger.With(logging.Component("poller")),
		refetch:  make(chan struct{}, 1),
		handler:  handler,
	}
}

// SetMetrics installs fetch-outcome instrumentation. Optional.
func (p *Poller) SetMetrics(r *metrics.Registry) { p.metrics = r }

// ForceRefetch schedules an immediate fetch, used when a topology_updated
// event arrives. Multiple requests before the fetch runs coalesce into one.
func (p *Poller) ForceRefetch() {
	select {
	case p.refetch <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. The first fetch happens immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.refetch:
			p.fetch(ctx)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) {
	snap, err := p.client.TopologySnapshot(ctx)
	if err != nil {
		// Transient failure: keep last-known-good, retry on schedule.
		p.logger.Warn("snapshot fetch failed, keeping last-known-good", logging.Error(err))
		if p.metrics != nil {
			p.metrics.SnapshotFetchesTotal.WithLabelValues("error").Inc()
		}
		return
	}
	if p.metrics != nil {
		p.metrics.SnapshotFetchesTotal.WithLabelValues("ok").Inc()
	}
	p.handler(snap)
}
