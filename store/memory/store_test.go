package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meshroom/broker"
	"meshroom/broker/subscription"
	"meshroom/store/memory"
)

func receive(t *testing.T, sub *subscription.Subscription) []byte {
	t.Helper()
	select {
	case msg := <-sub.Receive():
		record, ok := msg.([]byte)
		require.True(t, ok)
		return record
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for record")
		return nil
	}
}

func TestAppendDeliversToLiveSubscribers(t *testing.T) {
	db := memory.New(broker.New())
	sub, err := db.SubscribeNew("rooms/r1/offers")
	require.NoError(t, err)

	assert.NoError(t, db.Append("rooms/r1/offers", []byte("one")))
	assert.NoError(t, db.Append("rooms/r1/offers", []byte("two")))

	assert.Equal(t, []byte("one"), receive(t, sub))
	assert.Equal(t, []byte("two"), receive(t, sub))
	assert.NoError(t, db.Unsubscribe("rooms/r1/offers", sub))
}

func TestLateSubscriberSeesNoHistory(t *testing.T) {
	db := memory.New(broker.New())
	assert.NoError(t, db.Append("rooms/r1/messages", []byte("hello")))

	sub, err := db.SubscribeNew("rooms/r1/messages")
	require.NoError(t, err)

	select {
	case msg := <-sub.Receive():
		t.Fatalf("late subscriber received historical record: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}

	assert.NoError(t, db.Append("rooms/r1/messages", []byte("after")))
	assert.Equal(t, []byte("after"), receive(t, sub))
}

func TestHistoryIsRetained(t *testing.T) {
	db := memory.New(broker.New())
	assert.NoError(t, db.Append("rooms/r1/messages", []byte("a")))
	assert.NoError(t, db.Append("rooms/r1/messages", []byte("b")))

	history := db.History("rooms/r1/messages")
	require.Len(t, history, 2)
	assert.Equal(t, []byte("a"), history[0])
	assert.Equal(t, []byte("b"), history[1])
}
