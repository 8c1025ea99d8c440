package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"signal_go/internal/infra"
	"signal_go/internal/market"
)

func testConfig(url string) *infra.Config {
	cfg := &infra.Config{}
	cfg.Stream.WSURL = url
	cfg.Stream.Coins = []string{"BTC"}
	cfg.Stream.HeartbeatSec = 30 // never fires within a test
	cfg.Stream.HeartbeatTimeoutSec = 1
	cfg.Stream.BackoffInitialSec = 0.05
	cfg.Stream.BackoffMaxSec = 0.2
	return cfg
}

// testStreamServer accepts websocket sessions, counts subscriptions, and
// pushes one trades frame per session before optionally dropping it.
// With swallowPings the server never answers pings, starving the heartbeat.
type testStreamServer struct {
	srv          *httptest.Server
	sessions     atomic.Int32
	subs         atomic.Int32
	dropAfter    bool
	swallowPings bool
	frameJSON    string
}

func newTestStreamServer(t *testing.T, dropAfter, swallowPings bool) *testStreamServer {
	t.Helper()
	ts := &testStreamServer{
		dropAfter:    dropAfter,
		swallowPings: swallowPings,
		frameJSON:    `{"channel":"trades","data":[{"coin":"BTC","side":"B","sz":"2","time":42}]}`,
	}
	upgrader := websocket.Upgrader{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.sessions.Add(1)
		if ts.swallowPings {
			conn.SetPingHandler(func(string) error { return nil })
		}

		// consume subscriptions (5 per session: allMids + 4 per coin)
		for i := 0; i < 5; i++ {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				return
			}
			if strings.Contains(string(msg), `"subscribe"`) {
				ts.subs.Add(1)
			}
		}

		conn.WriteMessage(websocket.TextMessage, []byte(ts.frameJSON))

		if ts.dropAfter {
			conn.Close()
			return
		}
		// keep the session alive, answering pings via the default handler
		for {
			conn.SetReadDeadline(time.Now().Add(10 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testStreamServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestClient_SubscribeAndDispatch(t *testing.T) {
	ts := newTestStreamServer(t, false, false)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	waitFor(t, 3*time.Second, func() bool { return ts.subs.Load() == 5 },
		"Expected 5 subscription requests")
	waitFor(t, 3*time.Second, func() bool {
		_, ok := state.Lookup("BTC")
		return ok
	}, "Trade frame was not dispatched")
	waitFor(t, 3*time.Second, state.Connected,
		"Health flag should be true while streaming")
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	ts := newTestStreamServer(t, true, false)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	// every session is dropped after one frame; the client must keep rebuilding
	waitFor(t, 5*time.Second, func() bool { return ts.sessions.Load() >= 2 },
		"Expected at least one reconnect")
}

func TestClient_DisconnectIdempotent(t *testing.T) {
	ts := newTestStreamServer(t, false, false)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	waitFor(t, 3*time.Second, state.Connected, "Client never connected")

	done := make(chan struct{})
	go func() {
		client.Disconnect()
		client.Disconnect() // second call must not block or panic
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Disconnect did not complete")
	}
	if state.Connected() {
		t.Error("Health flag should be false after Disconnect")
	}
}

func TestClient_SessionDeathPaysBackoff(t *testing.T) {
	ts := newTestStreamServer(t, true, false)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	cfg.Stream.BackoffInitialSec = 0.5
	cfg.Stream.BackoffMaxSec = 1.0
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	time.Sleep(1200 * time.Millisecond)

	// every drop pays the 0.5s initial backoff, so at most three sessions
	// fit in the window even though each subscribe succeeds
	n := ts.sessions.Load()
	if n > 3 {
		t.Errorf("Expected paced reconnects, got %d sessions in 1.2s", n)
	}
	if n < 2 {
		t.Error("Expected at least one reconnect")
	}
}

func TestClient_HeartbeatRebuildOnMissedPong(t *testing.T) {
	ts := newTestStreamServer(t, false, true)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	cfg.Stream.HeartbeatSec = 1
	cfg.Stream.HeartbeatTimeoutSec = 1
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	// the ping at ~1s goes unanswered; the timeout check at ~2s must
	// force-close the session and a fresh one must come up
	waitFor(t, 6*time.Second, func() bool { return ts.sessions.Load() >= 2 },
		"Missed pong should rebuild the session")
}

func TestClient_HeartbeatAckedKeepsSession(t *testing.T) {
	ts := newTestStreamServer(t, false, false)
	state := market.NewState(16)
	cfg := testConfig(ts.wsURL())
	cfg.Stream.HeartbeatSec = 1
	cfg.Stream.HeartbeatTimeoutSec = 1
	client := NewClient(cfg, state, NewDispatcher(state, nil), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	waitFor(t, 3*time.Second, state.Connected, "Client never connected")

	// two full heartbeat cycles with pongs flowing
	time.Sleep(2500 * time.Millisecond)
	if n := ts.sessions.Load(); n != 1 {
		t.Errorf("Acked heartbeats should keep one session, got %d", n)
	}
	if !state.Connected() {
		t.Error("Session should still be live")
	}
}

func TestSubscribePayloadShape(t *testing.T) {
	req := subscribeRequest{Method: "subscribe", Subscription: subscription{Type: "candle", Coin: "BTC", Interval: "1m"}}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"method":"subscribe","subscription":{"type":"candle","coin":"BTC","interval":"1m"}}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}

	// allMids carries no coin field
	b, _ = json.Marshal(subscribeRequest{Method: "subscribe", Subscription: subscription{Type: "allMids"}})
	want = `{"method":"subscribe","subscription":{"type":"allMids"}}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}
}
