package hyperliquid

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"signal_go/internal/infra"

	"github.com/gorilla/websocket"
)

// Record captures raw stream frames to a newline-delimited JSON file for
// the configured coins, one inbound frame per line, for the given duration.
// Only trades and l2Book are subscribed; a capture is meant to be replayed
// through the dispatcher, which ignores everything else anyway.
func Record(ctx context.Context, cfg *infra.Config, outPath string, duration time.Duration) error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, cfg.Stream.WSURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Stream.WSURL, err)
	}
	defer conn.Close()

	for _, coin := range cfg.Stream.Coins {
		for _, sub := range []subscription{
			{Type: "trades", Coin: coin},
			{Type: "l2Book", Coin: coin},
		} {
			b, err := json.Marshal(subscribeRequest{Method: "subscribe", Subscription: sub})
			if err != nil {
				return err
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return fmt.Errorf("subscribe %s/%s: %w", sub.Type, coin, err)
			}
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	// unblock the read when the caller cancels
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	deadline := time.Now().Add(duration)
	frames := 0
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break // capture window elapsed
			}
			return fmt.Errorf("read: %w", err)
		}
		if _, err := w.Write(bytes.TrimSpace(msg)); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
		frames++
	}

	slog.Info("capture finished", slog.String("file", outPath), slog.Int("frames", frames))
	return nil
}
