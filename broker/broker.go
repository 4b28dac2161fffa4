// Package broker provides a topic based pub/sub bus for in-process events.
package broker

import (
	"fmt"
	"sync"

	"meshroom/broker/channel"
	"meshroom/broker/subscription"
)

// Topics group channels by the component that publishes on them.
const (
	// Record carries newly appended signaling store records. The detail is
	// the collection key.
	Record = iota

	// Roster carries room roster snapshots. The detail is the room ID.
	Roster
)

// Topic identifies one class of events on the bus.
type Topic int

// Detail narrows a topic to one channel, e.g. one collection or one room.
type Detail string

// Broker routes published messages to the subscribers of (topic, detail).
type Broker struct {
	mu       sync.RWMutex
	channels map[Topic]map[Detail]*channel.Channel
}

// New creates a new Broker instance.
func New() *Broker {
	return &Broker{
		channels: make(map[Topic]map[Detail]*channel.Channel),
	}
}

// Publish sends a message to every subscriber of the given topic and detail.
// Publishing to a channel with no subscribers is not an error.
func (b *Broker) Publish(topic Topic, detail Detail, message any) error {
	b.mu.RLock()
	ch := b.channels[topic][detail]
	b.mu.RUnlock()
	if ch == nil {
		return nil
	}
	if dropped := ch.SendAll(message); dropped > 0 {
		return fmt.Errorf("dropped message for %d slow subscriber(s) on %d/%s", dropped, topic, detail)
	}
	return nil
}

// Subscribe registers a new subscriber for the given topic and detail.
func (b *Broker) Subscribe(topic Topic, detail Detail) *subscription.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.channels[topic] == nil {
		b.channels[topic] = make(map[Detail]*channel.Channel)
	}
	ch := b.channels[topic][detail]
	if ch == nil {
		ch = channel.New()
		b.channels[topic][detail] = ch
	}
	sub := subscription.New()
	ch.AddSubscription(sub)
	return sub
}

// Unsubscribe removes the subscription and closes its receive channel.
func (b *Broker) Unsubscribe(topic Topic, detail Detail, sub *subscription.Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := b.channels[topic][detail]
	if ch == nil {
		return fmt.Errorf("no channel for %d/%s", topic, detail)
	}
	if !ch.RemoveSubscription(sub) {
		return fmt.Errorf("subscription not found on %d/%s", topic, detail)
	}
	if ch.Empty() {
		delete(b.channels[topic], detail)
	}
	return nil
}
