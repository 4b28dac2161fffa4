// Package store defines the shared signaling store used as the rendezvous
// side-channel between participants.
package store

import (
	"errors"

	"meshroom/broker/subscription"
)

// ErrStoreUnavailable is returned when a write to the store cannot be
// completed. Callers decide whether the write is worth retrying.
var ErrStoreUnavailable = errors.New("store unavailable")

// Store is an append-only, key-addressed record store with live tail
// subscriptions. Records are immutable and never deleted. A subscriber
// only observes records appended after it subscribed; there is no
// historical catch-up. Delivery is at-least-once, so readers must
// tolerate duplicates.
//
//go:generate mockgen -destination=mock_store.go -package=store . Store
type Store interface {
	Append(collection string, record []byte) error
	SubscribeNew(collection string) (*subscription.Subscription, error)
	Unsubscribe(collection string, sub *subscription.Subscription) error
	Close() error
}
