// Package ws provides a signaling store client backed by a websocket relay.
// The relay is expected to broadcast every appended record to all connected
// clients; filtering happens on the subscriber side.
package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"meshroom/broker"
	"meshroom/broker/subscription"
)

// Path is the websocket endpoint exposed by the relay.
const Path = "/store"

// envelope is the wire frame exchanged with the relay.
type envelope struct {
	Collection string          `json:"collection"`
	Record     json.RawMessage `json:"record"`
}

// Store is a relay-backed signaling store. Incoming frames are fanned out
// to collection subscribers through an internal broker, so the subscribe
// side behaves exactly like the memory store.
type Store struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
	broker  *broker.Broker
	once    sync.Once
	done    chan struct{}

	subMu sync.Mutex
	subs  map[*subscription.Subscription]string
}

// Dial connects to the relay at the given host and starts the read pump.
func Dial(host string) (*Store, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: Path}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}
	s := &Store{
		conn:   conn,
		broker: broker.New(),
		done:   make(chan struct{}),
		subs:   make(map[*subscription.Subscription]string),
	}
	go s.readPump()
	return s, nil
}

// Append sends the record to the relay. The relay owns durability; a write
// that cannot reach it reports the store as unavailable so the caller can
// decide whether to retry.
func (s *Store) Append(collection string, record []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.conn.WriteJSON(envelope{
		Collection: collection,
		Record:     record,
	})
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", collection, err)
	}
	return nil
}

// SubscribeNew subscribes to records appended to the collection from now on.
func (s *Store) SubscribeNew(collection string) (*subscription.Subscription, error) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	select {
	case <-s.done:
		return nil, fmt.Errorf("relay connection closed")
	default:
	}
	sub := s.broker.Subscribe(broker.Record, broker.Detail(collection))
	s.subs[sub] = collection
	return sub, nil
}

// Unsubscribe removes a subscription created by SubscribeNew.
func (s *Store) Unsubscribe(collection string, sub *subscription.Subscription) error {
	s.subMu.Lock()
	delete(s.subs, sub)
	s.subMu.Unlock()
	return s.broker.Unsubscribe(broker.Record, broker.Detail(collection), sub)
}

// Close tears down the relay connection and closes every live
// subscription, so subscribers observe the loss of the relay instead of
// waiting on a silent channel. Safe to call multiple times.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.Close()

		s.subMu.Lock()
		subs := s.subs
		s.subs = nil
		s.subMu.Unlock()
		for sub, collection := range subs {
			if unsubErr := s.broker.Unsubscribe(broker.Record, broker.Detail(collection), sub); unsubErr != nil {
				log.Printf("error occurs in closing subscription to %s %v", collection, unsubErr)
			}
		}
	})
	return err
}

// readPump dispatches relay frames to collection subscribers until the
// connection drops. The session layer notices the silence through its own
// connection state handling; reconnecting is not this client's job.
func (s *Store) readPump() {
	for {
		var env envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			select {
			case <-s.done:
			default:
				log.Printf("error occurs in reading from relay %v", err)
				_ = s.Close()
			}
			return
		}
		if err := s.broker.Publish(broker.Record, broker.Detail(env.Collection), []byte(env.Record)); err != nil {
			log.Printf("error occurs in dispatching relay record %v", err)
		}
	}
}
