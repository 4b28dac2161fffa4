// Package subscription provides the receive side of a broker channel.
package subscription

import "sync"

// DefaultQueueSize is the number of undelivered messages one subscriber
// may fall behind before new messages are dropped for it.
const DefaultQueueSize = 64

// Subscription is a buffered queue of messages delivered to one subscriber.
type Subscription struct {
	once  sync.Once
	queue chan any
}

// New creates and initializes a new Subscription instance.
func New() *Subscription {
	return &Subscription{
		queue: make(chan any, DefaultQueueSize),
	}
}

// Send enqueues a message without blocking. If the subscriber is too far
// behind, the message is dropped and false is returned.
func (s *Subscription) Send(message any) bool {
	select {
	case s.queue <- message:
		return true
	default:
		return false
	}
}

// Receive returns the channel messages are delivered on. The channel is
// closed when the subscription is closed.
func (s *Subscription) Receive() <-chan any {
	return s.queue
}

// Close closes the subscription. It is safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
}
