package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meshroom/store/ws"
)

// relay is a minimal broadcast relay: every frame received from one client
// is forwarded to every connected client, the sender included.
type relay struct {
	mu    sync.Mutex
	conns []*websocket.Conn
}

func (r *relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ug := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}
	conn, err := ug.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	r.mu.Lock()
	r.conns = append(r.conns, conn)
	r.mu.Unlock()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		r.mu.Lock()
		for _, c := range r.conns {
			_ = c.WriteMessage(websocket.TextMessage, frame)
		}
		r.mu.Unlock()
	}
}

func startRelay(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(&relay{})
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestAppendReachesOtherClients(t *testing.T) {
	host := startRelay(t)

	writer, err := ws.Dial(host)
	require.NoError(t, err)
	defer func() { _ = writer.Close() }()

	reader, err := ws.Dial(host)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	sub, err := reader.SubscribeNew("rooms/r1/offers")
	require.NoError(t, err)

	assert.NoError(t, writer.Append("rooms/r1/offers", []byte(`{"kind":"OFFER"}`)))

	select {
	case msg := <-sub.Receive():
		record, ok := msg.([]byte)
		require.True(t, ok)
		assert.JSONEq(t, `{"kind":"OFFER"}`, string(record))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed record")
	}
}

func TestSubscriptionFiltersByCollection(t *testing.T) {
	host := startRelay(t)

	client, err := ws.Dial(host)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	answers, err := client.SubscribeNew("rooms/r1/answers")
	require.NoError(t, err)

	assert.NoError(t, client.Append("rooms/r1/offers", []byte(`{"kind":"OFFER"}`)))

	select {
	case msg := <-answers.Receive():
		t.Fatalf("record leaked across collections: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayLossClosesSubscriptions(t *testing.T) {
	rl := &relay{}
	srv := httptest.NewServer(rl)
	host := strings.TrimPrefix(srv.URL, "http://")

	client, err := ws.Dial(host)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	sub, err := client.SubscribeNew("rooms/r1/offers")
	require.NoError(t, err)

	// httptest cannot close hijacked connections, so sever the websocket
	// conns directly to produce a real read error on the client.
	rl.mu.Lock()
	for _, c := range rl.conns {
		_ = c.Close()
	}
	rl.mu.Unlock()
	srv.Close()

	select {
	case _, ok := <-sub.Receive():
		assert.False(t, ok, "subscription must be closed, not delivered to")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription left open after relay connection loss")
	}

	_, err = client.SubscribeNew("rooms/r1/answers")
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	host := startRelay(t)

	client, err := ws.Dial(host)
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	_, err = client.SubscribeNew("rooms/r1/offers")
	assert.Error(t, err)
}
