package signaling_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meshroom/broker"
	"meshroom/broker/subscription"
	"meshroom/signaling"
	"meshroom/store"
	"meshroom/store/memory"
	"meshroom/types/message"
)

func testConfig() signaling.Config {
	return signaling.Config{
		MaxPublishRetries: 2,
		RetryInterval:     time.Millisecond,
	}
}

func iceCandidate(c string) webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{Candidate: c}
}

func receive(t *testing.T, sub *subscription.Subscription) any {
	t.Helper()
	select {
	case msg := <-sub.Receive():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestOfferRoundTrip(t *testing.T) {
	db := memory.New(broker.New())
	alice := signaling.New(testConfig(), db, "r1", "a1")
	bob := signaling.New(testConfig(), db, "r1", "b2")
	defer alice.Close()
	defer bob.Close()

	sub, err := bob.SubscribeOffers()
	require.NoError(t, err)

	require.NoError(t, alice.PublishOffer("b2", "offer-sdp"))

	offer, ok := receive(t, sub).(message.Offer)
	require.True(t, ok)
	assert.Equal(t, "a1", offer.From)
	assert.Equal(t, "b2", offer.To)
	assert.Equal(t, "offer-sdp", offer.SDP)
}

func TestPointToPointFiltering(t *testing.T) {
	db := memory.New(broker.New())
	alice := signaling.New(testConfig(), db, "r1", "a1")
	bob := signaling.New(testConfig(), db, "r1", "b2")
	carol := signaling.New(testConfig(), db, "r1", "c3")
	defer alice.Close()
	defer bob.Close()
	defer carol.Close()

	bobSub, err := bob.SubscribeAnswers()
	require.NoError(t, err)
	carolSub, err := carol.SubscribeAnswers()
	require.NoError(t, err)

	require.NoError(t, alice.PublishAnswer("b2", "answer-sdp"))

	answer, ok := receive(t, bobSub).(message.Answer)
	require.True(t, ok)
	assert.Equal(t, "b2", answer.To)

	select {
	case msg := <-carolSub.Receive():
		t.Fatalf("answer leaked to wrong recipient: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChatIsBroadcast(t *testing.T) {
	db := memory.New(broker.New())
	alice := signaling.New(testConfig(), db, "r1", "a1")
	bob := signaling.New(testConfig(), db, "r1", "b2")
	defer alice.Close()
	defer bob.Close()

	sub, err := bob.SubscribeChat()
	require.NoError(t, err)

	require.NoError(t, alice.PublishChat(message.Chat{
		ID:         "m1",
		From:       "a1",
		SenderName: "Alice",
		Text:       "hello",
		SentAt:     time.Now(),
	}))

	chat, ok := receive(t, sub).(message.Chat)
	require.True(t, ok)
	assert.Equal(t, "hello", chat.Text)
	assert.Equal(t, "Alice", chat.SenderName)
}

func TestPublishOfferRetriesUntilStoreRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	gomock.InOrder(
		mockStore.EXPECT().Append("rooms/r1/offers", gomock.Any()).Return(store.ErrStoreUnavailable),
		mockStore.EXPECT().Append("rooms/r1/offers", gomock.Any()).Return(nil),
	)

	ch := signaling.New(testConfig(), mockStore, "r1", "a1")
	assert.NoError(t, ch.PublishOffer("b2", "offer-sdp"))
}

func TestPublishOfferFailsAfterRetriesExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().Append("rooms/r1/offers", gomock.Any()).
		Return(store.ErrStoreUnavailable).Times(3)

	ch := signaling.New(testConfig(), mockStore, "r1", "a1")
	err := ch.PublishOffer("b2", "offer-sdp")
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestPublishIceDropsSilentlyAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().Append("rooms/r1/candidates", gomock.Any()).
		Return(errors.New("write failed")).Times(3)

	ch := signaling.New(testConfig(), mockStore, "r1", "a1")
	assert.NoError(t, ch.PublishIce("b2", iceCandidate("candidate:1")))
}

func TestMalformedRecordsAreDropped(t *testing.T) {
	db := memory.New(broker.New())
	bob := signaling.New(testConfig(), db, "r1", "b2")
	defer bob.Close()

	sub, err := bob.SubscribeOffers()
	require.NoError(t, err)

	require.NoError(t, db.Append("rooms/r1/offers", []byte("not json")))
	require.NoError(t, db.Append("rooms/r1/offers", []byte(`{"id":"x","kind":"BOGUS","payload":{}}`)))
	require.NoError(t, db.Append("rooms/r1/offers", []byte(`{"id":"x","kind":"CHAT","payload":{}}`)))

	alice := signaling.New(testConfig(), db, "r1", "a1")
	defer alice.Close()
	require.NoError(t, alice.PublishOffer("b2", "good"))

	offer, ok := receive(t, sub).(message.Offer)
	require.True(t, ok)
	assert.Equal(t, "good", offer.SDP)
}
