package events

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netobserve/topoview/pkg/logging"
)

// WSSource consumes the backend's websocket push stream and republishes
// decoded events on the bus. Connection drops trigger reconnects with
// capped backoff; malformed frames are logged and skipped.
type WSSource struct {
	url    string
	bus    *Bus
	logger logging.Logger

	dialTimeout time.Duration
	maxBackoff  time.Duration
}

// NewWSSource creates a websocket event source.
func NewWSSource(url string, bus *Bus, logger logging.Logger) *WSSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &WSSource{
		url:         url,
		bus:         bus,
		logger:      logger.With(logging.Component("ws-source")),
		dialTimeout: 10 * time.Second,
		maxBackoff:  30 * time.Second,
	}
}

// Run reads the stream until ctx is cancelled.
func (s *WSSource) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.readLoop(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("event stream disconnected",
				logging.Error(err),
				logging.Duration("retry_in", backoff))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

func (s *WSSource) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.Info("event stream connected", logging.String("url", s.url))

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		ev, err := Parse(data)
		if err != nil {
			s.logger.Warn("dropping malformed event", logging.Error(err))
			continue
		}
		s.bus.Publish(ev)
	}
}
