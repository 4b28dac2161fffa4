// Package memory provides an in-process signaling store implementation.
package memory

import (
	"sync"

	"meshroom/broker"
	"meshroom/broker/subscription"
)

// DB is a memory-backed signaling store. Appended records are retained for
// the lifetime of the process and fanned out to live subscribers through
// the broker. It exists so that several sessions in one process can
// rendezvous without a remote relay, which is also what the tests use.
type DB struct {
	mu      sync.Mutex
	broker  *broker.Broker
	history map[string][][]byte
}

// New creates a new memory-backed signaling store.
func New(b *broker.Broker) *DB {
	return &DB{
		broker:  b,
		history: make(map[string][][]byte),
	}
}

// Append durably stores the record and delivers it to live subscribers of
// the collection. Records already appended are never redelivered to a
// subscriber that arrives later.
func (d *DB) Append(collection string, record []byte) error {
	buf := make([]byte, len(record))
	copy(buf, record)

	d.mu.Lock()
	d.history[collection] = append(d.history[collection], buf)
	d.mu.Unlock()

	return d.broker.Publish(broker.Record, broker.Detail(collection), buf)
}

// SubscribeNew subscribes to records appended to the collection from now on.
func (d *DB) SubscribeNew(collection string) (*subscription.Subscription, error) {
	return d.broker.Subscribe(broker.Record, broker.Detail(collection)), nil
}

// Unsubscribe removes a subscription created by SubscribeNew.
func (d *DB) Unsubscribe(collection string, sub *subscription.Subscription) error {
	return d.broker.Unsubscribe(broker.Record, broker.Detail(collection), sub)
}

// History returns a copy of every record appended to the collection so far.
// The live session core never reads it back; it exists for the surrounding
// application and for tests asserting durability.
func (d *DB) History(collection string) [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	records := make([][]byte, len(d.history[collection]))
	copy(records, d.history[collection])
	return records
}

// Close is a no-op for the memory store.
func (d *DB) Close() error {
	return nil
}
