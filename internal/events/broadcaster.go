package events

import (
	"sync"
)

// Subscriber receives events as they are emitted.
type Subscriber chan Event

// Broadcaster fans emitted events out to subscribers such as the MQTT
// event forwarder.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
}

var broadcaster = &Broadcaster{
	subscribers: make(map[Subscriber]struct{}),
}

// Subscribe adds a new subscriber and returns its channel.
// The channel is buffered so Emit never waits on a slow reader.
func Subscribe() Subscriber {
	ch := make(Subscriber, 64)
	broadcaster.mu.Lock()
	broadcaster.subscribers[ch] = struct{}{}
	broadcaster.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func Unsubscribe(sub Subscriber) {
	broadcaster.mu.Lock()
	if _, ok := broadcaster.subscribers[sub]; ok {
		delete(broadcaster.subscribers, sub)
		close(sub)
	}
	broadcaster.mu.Unlock()
}

// broadcast sends an event to all subscribers, dropping it for any whose
// buffer is full.
func broadcast(e Event) {
	broadcaster.mu.RLock()
	defer broadcaster.mu.RUnlock()

	for sub := range broadcaster.subscribers {
		select {
		case sub <- e:
		default:
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func SubscriberCount() int {
	broadcaster.mu.RLock()
	defer broadcaster.mu.RUnlock()
	return len(broadcaster.subscribers)
}
