package mqtt

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/events"
)

// Forwarder republishes emitted events on <prefix>/events/<name>.
type Forwarder struct {
	pub    Publisher
	prefix string
	log    *zap.Logger
}

func NewForwarder(pub Publisher, prefix string, log *zap.Logger) *Forwarder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Forwarder{pub: pub, prefix: prefix, log: log}
}

// Start subscribes to events and forwards them until ctx is done. The
// returned channel closes once forwarding stopped. Publish failures are
// logged and never emitted as events, so a broker outage cannot feed back
// into itself.
func (f *Forwarder) Start(ctx context.Context) <-chan struct{} {
	sub := events.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-sub:
				if !ok {
					return
				}
				f.forward(e)
			}
		}
	}()
	return done
}

func (f *Forwarder) forward(e events.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		f.log.Warn("failed to marshal event", zap.String("event", e.Name), zap.Error(err))
		return
	}
	topic := f.prefix + "/events/" + e.Name
	if err := f.pub.Publish(topic, false, b); err != nil {
		f.log.Warn("failed to forward event", zap.String("topic", topic), zap.Error(err))
	}
}
