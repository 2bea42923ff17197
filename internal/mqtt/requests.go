package mqtt

import (
	"encoding/json"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/printer"
)

// Subscriber registers message handlers. *Client implements it.
type Subscriber interface {
	Subscribe(topic string, handler paho.MessageHandler) error
}

// RequestSubscriber turns messages on <prefix>/render/request into render
// targets. Subscribing again after a reconnect is a no-op until
// ClearSubscriptions is called.
type RequestSubscriber struct {
	mu         sync.RWMutex
	client     Subscriber
	topic      string
	handle     func(printer.Target)
	subscribed bool
}

func NewRequestSubscriber(client Subscriber, prefix string, handle func(printer.Target)) *RequestSubscriber {
	return &RequestSubscriber{
		client: client,
		topic:  prefix + "/render/request",
		handle: handle,
	}
}

// Topic is the request topic.
func (s *RequestSubscriber) Topic() string { return s.topic }

// Subscribe subscribes to the request topic once.
func (s *RequestSubscriber) Subscribe() error {
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.client.Subscribe(s.topic, s.Handler()); err != nil {
		return err
	}

	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()
	return nil
}

// Handler decodes a request payload. Malformed payloads are reported as
// render.rejected and dropped.
func (s *RequestSubscriber) Handler() paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		var t printer.Target
		if err := json.Unmarshal(msg.Payload(), &t); err != nil {
			events.Emit("warn", "render.rejected", "malformed render request", map[string]interface{}{
				"topic": msg.Topic(),
				"error": err.Error(),
			})
			return
		}

		events.Emit("info", "render.requested", "", map[string]interface{}{
			"topic": msg.Topic(),
			"kind":  string(t.Kind),
			"id":    t.ID,
		})
		s.handle(t)
	}
}

// IsSubscribed reports whether the request topic is subscribed.
func (s *RequestSubscriber) IsSubscribed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribed
}

// ClearSubscriptions forgets the subscription so the next Subscribe
// re-registers it. Call this on reconnect.
func (s *RequestSubscriber) ClearSubscriptions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = false
}
