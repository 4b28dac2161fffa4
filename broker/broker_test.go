package broker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"meshroom/broker"
)

func TestPublishSubscribe(t *testing.T) {
	tests := []struct {
		name     string
		topic    broker.Topic
		detail   broker.Detail
		messages []string
	}{
		{
			name:     "given one subscriber when published then messages arrive in order",
			topic:    broker.Record,
			detail:   "rooms/r1/offers",
			messages: []string{"a", "b", "c"},
		},
		{
			name:     "given roster topic when published then messages arrive",
			topic:    broker.Roster,
			detail:   "r1",
			messages: []string{"snapshot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := broker.New()
			sub := b.Subscribe(tt.topic, tt.detail)

			for _, msg := range tt.messages {
				assert.NoError(t, b.Publish(tt.topic, tt.detail, msg))
			}
			for _, want := range tt.messages {
				select {
				case got := <-sub.Receive():
					assert.Equal(t, want, got)
				case <-time.After(time.Second):
					t.Fatalf("timed out waiting for %q", want)
				}
			}
			assert.NoError(t, b.Unsubscribe(tt.topic, tt.detail, sub))
		})
	}
}

func TestPublishWithoutSubscriber(t *testing.T) {
	b := broker.New()
	assert.NoError(t, b.Publish(broker.Record, "nobody", "lost"))
}

func TestSubscriberIsolation(t *testing.T) {
	b := broker.New()
	offers := b.Subscribe(broker.Record, "rooms/r1/offers")
	answers := b.Subscribe(broker.Record, "rooms/r1/answers")

	assert.NoError(t, b.Publish(broker.Record, "rooms/r1/offers", "offer"))

	select {
	case got := <-offers.Receive():
		assert.Equal(t, "offer", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for offer")
	}
	select {
	case got := <-answers.Receive():
		t.Fatalf("unexpected message on answers channel: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesReceive(t *testing.T) {
	b := broker.New()
	sub := b.Subscribe(broker.Record, "rooms/r1/offers")
	assert.NoError(t, b.Unsubscribe(broker.Record, "rooms/r1/offers", sub))

	_, ok := <-sub.Receive()
	assert.False(t, ok)

	assert.Error(t, b.Unsubscribe(broker.Record, "rooms/r1/offers", sub))
}
