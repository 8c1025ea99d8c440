package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"signal_go/internal/infra"
	"signal_go/internal/market"

	"github.com/gorilla/websocket"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second
)

// Client owns the single streaming session against the Hyperliquid
// websocket: subscribe, read loop, heartbeat, reconnect with backoff.
// Frames go to the Dispatcher; the connection-health flag on market.State
// is true only while the session is streaming.
type Client struct {
	cfg        *infra.Config
	state      *market.State
	dispatcher *Dispatcher
	metrics    *infra.Metrics

	conn     *websocket.Conn
	mu       sync.RWMutex
	writeMu  sync.Mutex
	lastPong atomic.Int64 // unix ms of the last pong

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient factory.
func NewClient(cfg *infra.Config, state *market.State, dispatcher *Dispatcher, metrics *infra.Metrics) *Client {
	return &Client{cfg: cfg, state: state, dispatcher: dispatcher, metrics: metrics}
}

// Connect starts the connection loop in the background.
func (c *Client) Connect(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.connectionLoop(ctx)
	return nil
}

// connectionLoop rebuilds the whole session on any failure. There is no
// per-frame retry; frames lost during a reconnect stay lost.
func (c *Client) connectionLoop(ctx context.Context) {
	defer c.wg.Done()
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx); err != nil {
			attempt++
			delay := infra.CalculateBackoff(attempt, c.cfg.BackoffInitial(), c.cfg.BackoffMax())
			slog.Warn("stream connect failed",
				slog.Any("error", err), slog.Int("attempt", attempt), slog.Duration("backoff", delay))
			if c.metrics != nil {
				c.metrics.Reconnects.Inc()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}

		// connected and subscribed: backoff resets
		attempt = 0
		c.readLoop(ctx)

		c.state.SetConnected(false)
		if c.metrics != nil {
			c.metrics.Connected.Set(0)
		}
		if ctx.Err() != nil {
			return
		}

		// a dead session still pays the initial backoff before redialing
		delay := infra.CalculateBackoff(1, c.cfg.BackoffInitial(), c.cfg.BackoffMax())
		slog.Warn("stream session ended", slog.Duration("backoff", delay))
		if c.metrics != nil {
			c.metrics.Reconnects.Inc()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.Stream.WSURL, nil)
	if err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		c.lastPong.Store(time.Now().UnixMilli())
		return nil
	})

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.subscribeAll(); err != nil {
		c.closeConnection()
		return err
	}

	c.lastPong.Store(time.Now().UnixMilli())
	c.state.SetConnected(true)
	if c.metrics != nil {
		c.metrics.Connected.Set(1)
	}
	slog.Info("stream connected",
		slog.String("url", c.cfg.Stream.WSURL), slog.Int("coins", len(c.cfg.Stream.Coins)))
	return nil
}

// subscribeAll sends one global allMids subscription plus the per-coin
// channel set. Candle and activeAssetCtx frames are subscribed for forward
// compatibility even though the dispatcher leaves them uninterpreted.
func (c *Client) subscribeAll() error {
	subs := []subscription{{Type: "allMids"}}
	for _, coin := range c.cfg.Stream.Coins {
		subs = append(subs,
			subscription{Type: "trades", Coin: coin},
			subscription{Type: "l2Book", Coin: coin},
			subscription{Type: "candle", Coin: coin, Interval: "1m"},
			subscription{Type: "activeAssetCtx", Coin: coin},
		)
	}
	for _, s := range subs {
		b, err := json.Marshal(subscribeRequest{Method: "subscribe", Subscription: s})
		if err != nil {
			return err
		}
		if err := c.threadSafeWrite(websocket.TextMessage, b); err != nil {
			return err
		}
	}
	return nil
}

// readLoop forwards frames to the dispatcher until the session dies.
// The per-session heartbeat goroutine can kill the session by force-closing
// the connection, which surfaces here as a read error.
func (c *Client) readLoop(ctx context.Context) {
	session := make(chan struct{})
	defer close(session)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.heartbeatLoop(ctx, session)
	}()

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("stream read failed", slog.Any("error", err))
			}
			c.closeConnection()
			return
		}
		c.dispatcher.DispatchRaw(msg)
	}
}

// heartbeatLoop pings every HeartbeatInterval and requires a pong within
// HeartbeatTimeout. A missed ack forces a full session rebuild; graceful
// resubscription is deliberately not attempted.
func (c *Client) heartbeatLoop(ctx context.Context, session <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-session:
			return
		case <-ticker.C:
		}

		sentMs := time.Now().UnixMilli()
		if err := c.ping(); err != nil {
			slog.Warn("heartbeat write failed", slog.Any("error", err))
			c.closeConnection()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-session:
			return
		case <-time.After(c.cfg.HeartbeatTimeout()):
			if c.lastPong.Load() < sentMs {
				slog.Warn("heartbeat unacknowledged, rebuilding session")
				c.closeConnection()
				return
			}
		}
	}
}

func (c *Client) ping() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return fmt.Errorf("no conn")
	}
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (c *Client) threadSafeWrite(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return fmt.Errorf("no conn")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(msgType, data)
}

// closeConnection is safe to call from any goroutine and any state.
func (c *Client) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Disconnect stops the client cooperatively: the stop context is cancelled,
// any blocked read is unblocked by closing the connection, and both the
// connection loop and the heartbeat are joined. Idempotent.
func (c *Client) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.closeConnection()
	c.wg.Wait()
	c.state.SetConnected(false)
	if c.metrics != nil {
		c.metrics.Connected.Set(0)
	}
}
