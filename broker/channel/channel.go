// Package channel provides the fan-out of messages to subscribers.
package channel

import (
	"meshroom/broker/subscription"
	"sync"
)

// Channel represents a message channel that can have multiple subscribers.
type Channel struct {
	mu   sync.RWMutex
	subs []*subscription.Subscription
}

// New creates and initializes a new Channel instance.
func New() *Channel {
	return &Channel{
		subs: make([]*subscription.Subscription, 0),
	}
}

// SendAll sends a message to every subscriber of the channel. Delivery is
// synchronous so that one publisher's messages are observed in publish
// order by each subscriber.
func (c *Channel) SendAll(message any) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dropped := 0
	for _, sub := range c.subs {
		if !sub.Send(message) {
			dropped++
		}
	}
	return dropped
}

// AddSubscription adds a new Subscription to the channel.
func (c *Channel) AddSubscription(sub *subscription.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs = append(c.subs, sub)
}

// RemoveSubscription removes a Subscription from the channel and closes it.
func (c *Channel) RemoveSubscription(sub *subscription.Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			sub.Close()
			return true
		}
	}
	return false
}

// Empty reports whether the channel has no subscribers left.
func (c *Channel) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs) == 0
}
