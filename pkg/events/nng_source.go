package events

import (
	"context"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/netobserve/topoview/pkg/logging"
)

// NNGSource consumes push events over a mangos SUB socket, for deployments
// where the backend broadcasts on an NNG bus instead of websockets.
type NNGSource struct {
	addr   string
	bus    *Bus
	logger logging.Logger
}

// NewNNGSource creates a mangos SUB event source.
func NewNNGSource(addr string, bus *Bus, logger logging.Logger) *NNGSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NNGSource{
		addr:   addr,
		bus:    bus,
		logger: logger.With(logging.Component("nng-source")),
	}
}

// Run receives events until ctx is cancelled.
func (s *NNGSource) Run(ctx context.Context) error {
	sock, err := sub.NewSocket()
	if err != nil {
		return err
	}
	defer sock.Close()

	if err := sock.SetOption(mangos.OptionSubscribe, []byte("")); err != nil {
		return err
	}
	// Short receive deadline so ctx cancellation is observed promptly.
	if err := sock.SetOption(mangos.OptionRecvDeadline, time.Second); err != nil {
		return err
	}
	if err := sock.Dial(s.addr); err != nil {
		return err
	}
	s.logger.Info("event stream connected", logging.String("addr", s.addr))

	for {
		if ctx.Err() != nil {
			return nil
		}
		data, err := sock.Recv()
		if err != nil {
			if err == mangos.ErrRecvTimeout {
				continue
			}
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
