// Package signaling provides typed publish/subscribe for connection setup
// messages over the shared signaling store.
package signaling

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"meshroom/broker/subscription"
	"meshroom/store"
	"meshroom/types/message"
)

// Collection name suffixes under rooms/<roomID>/.
const (
	offers     = "offers"
	answers    = "answers"
	candidates = "candidates"
	messages   = "messages"
)

// Channel is a thin typed adapter over the store for one participant in
// one room. Offers, answers and candidates delivered through it are
// filtered to those addressed to the local participant; chat is broadcast.
type Channel struct {
	config  Config
	store   store.Store
	roomID  string
	localID string

	mu   sync.Mutex
	raw  map[*subscription.Subscription]string
	done bool
}

// New creates a new signaling channel for the given participant.
func New(config Config, s store.Store, roomID, localID string) *Channel {
	return &Channel{
		config:  config.withDefaults(),
		store:   s,
		roomID:  roomID,
		localID: localID,
		raw:     make(map[*subscription.Subscription]string),
	}
}

// collection returns the store collection key for one message kind.
func (c *Channel) collection(suffix string) string {
	return fmt.Sprintf("rooms/%s/%s", c.roomID, suffix)
}

// PublishOffer publishes an SDP offer addressed to one participant.
// Retried with backoff: a lost offer stalls that link with no recovery.
func (c *Channel) PublishOffer(to, sdp string) error {
	record, err := message.Marshal(message.OFFER, message.Offer{
		From: c.localID,
		To:   to,
		SDP:  sdp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal offer: %w", err)
	}
	return c.appendWithRetry(c.collection(offers), record)
}

// PublishAnswer publishes an SDP answer addressed to one participant.
func (c *Channel) PublishAnswer(to, sdp string) error {
	record, err := message.Marshal(message.ANSWER, message.Answer{
		From: c.localID,
		To:   to,
		SDP:  sdp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	return c.appendWithRetry(c.collection(answers), record)
}

// PublishIce publishes one trickled ICE candidate. Candidates are
// supplementary: when retries exhaust the candidate is dropped silently,
// connectivity can still succeed through the candidates that got through.
func (c *Channel) PublishIce(to string, candidate webrtc.ICECandidateInit) error {
	record, err := message.Marshal(message.ICE, message.Ice{
		From:      c.localID,
		To:        to,
		Candidate: candidate,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}
	if err := c.appendWithRetry(c.collection(candidates), record); err != nil {
		log.Printf("dropping candidate for %s: %v", to, err)
	}
	return nil
}

// PublishChat persists a chat broadcast. This is the durability fallback
// for recipients with no connected direct channel.
func (c *Channel) PublishChat(chat message.Chat) error {
	record, err := message.Marshal(message.CHAT, chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	return c.appendWithRetry(c.collection(messages), record)
}

// SubscribeOffers delivers message.Offer values addressed to the local
// participant, published after subscription time.
func (c *Channel) SubscribeOffers() (*subscription.Subscription, error) {
	return c.subscribe(offers, func(env message.Envelope) (any, bool) {
		var p message.Offer
		if !decodePayload(env, message.OFFER, &p) || p.To != c.localID {
			return nil, false
		}
		return p, true
	})
}

// SubscribeAnswers delivers message.Answer values addressed to the local
// participant.
func (c *Channel) SubscribeAnswers() (*subscription.Subscription, error) {
	return c.subscribe(answers, func(env message.Envelope) (any, bool) {
		var p message.Answer
		if !decodePayload(env, message.ANSWER, &p) || p.To != c.localID {
			return nil, false
		}
		return p, true
	})
}

// SubscribeIce delivers message.Ice values addressed to the local
// participant, preserving per-sender append order.
func (c *Channel) SubscribeIce() (*subscription.Subscription, error) {
	return c.subscribe(candidates, func(env message.Envelope) (any, bool) {
		var p message.Ice
		if !decodePayload(env, message.ICE, &p) || p.To != c.localID {
			return nil, false
		}
		return p, true
	})
}

// SubscribeChat delivers every message.Chat broadcast in the room,
// including the local participant's own copies. Deduplication against the
// direct channel is the caller's concern.
func (c *Channel) SubscribeChat() (*subscription.Subscription, error) {
	return c.subscribe(messages, func(env message.Envelope) (any, bool) {
		var p message.Chat
		if !decodePayload(env, message.CHAT, &p) {
			return nil, false
		}
		return p, true
	})
}

// Close tears down every subscription created by this channel. Safe to
// call multiple times; pending deliveries after Close are dropped.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	for raw, collection := range c.raw {
		if err := c.store.Unsubscribe(collection, raw); err != nil {
			log.Printf("error occurs in unsubscribing from %s %v", collection, err)
		}
	}
	c.raw = nil
}

// subscribe opens a raw store tail and pumps decoded values into a typed
// subscription until the tail closes.
func (c *Channel) subscribe(suffix string, decode func(message.Envelope) (any, bool)) (*subscription.Subscription, error) {
	collection := c.collection(suffix)
	raw, err := c.store.SubscribeNew(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		_ = c.store.Unsubscribe(collection, raw)
		return nil, fmt.Errorf("channel already closed")
	}
	c.raw[raw] = collection
	c.mu.Unlock()

	out := subscription.New()
	go func() {
		defer out.Close()
		for msg := range raw.Receive() {
			record, ok := msg.([]byte)
			if !ok {
				log.Printf("unexpected record type on %s: %T", collection, msg)
				continue
			}
			var env message.Envelope
			if err := json.Unmarshal(record, &env); err != nil {
				log.Printf("error occurs in decoding record on %s %v", collection, err)
				continue
			}
			if v, ok := decode(env); ok {
				out.Send(v)
			}
		}
	}()
	return out, nil
}

// appendWithRetry retries a failed append with capped exponential backoff.
func (c *Channel) appendWithRetry(collection string, record []byte) error {
	var err error
	interval := c.config.RetryInterval
	for attempt := 0; attempt <= c.config.MaxPublishRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(interval)
			interval *= 2
		}
		if err = c.store.Append(collection, record); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to append to %s after %d retries: %w",
		collection, c.config.MaxPublishRetries, err)
}

// decodePayload checks the envelope kind and unmarshals the payload.
// Records of any other kind on the collection are logged and dropped, the
// store performs no validation of what writers append.
func decodePayload(env message.Envelope, kind string, v any) bool {
	switch env.Kind {
	case kind:
	case message.OFFER, message.ANSWER, message.ICE, message.CHAT:
		log.Printf("record kind %s does not belong on this collection", env.Kind)
		return false
	default:
		log.Printf("unrecognized record kind %s", env.Kind)
		return false
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		log.Printf("error occurs in decoding %s payload %v", kind, err)
		return false
	}
	return true
}
