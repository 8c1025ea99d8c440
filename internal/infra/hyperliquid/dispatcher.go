package hyperliquid

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"signal_go/internal/infra"
	"signal_go/internal/market"
)

// Dispatcher routes inbound frames to the per-coin state mutators.
// It is invoked from a single goroutine (the read loop or the replayer);
// CoinState serializes against concurrent query reads internally.
//
// Malformed frames never surface an error: they are skipped, counted, and
// at most debug-logged. No individual frame is ever retried.
type Dispatcher struct {
	state   *market.State
	metrics *infra.Metrics
}

// NewDispatcher creates a dispatcher mutating the given registry.
// metrics may be nil (replay tests).
func NewDispatcher(state *market.State, metrics *infra.Metrics) *Dispatcher {
	return &Dispatcher{state: state, metrics: metrics}
}

// DispatchRaw parses one raw frame line and routes it.
func (d *Dispatcher) DispatchRaw(raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		d.skip("bad frame")
		return
	}
	d.Dispatch(f)
}

// Dispatch routes one parsed frame envelope by channel tag.
func (d *Dispatcher) Dispatch(f Frame) {
	if f.Channel == "" {
		d.skip("missing channel")
		return
	}

	switch f.Channel {
	case ChannelSubscriptionResponse:
		// echo of our own subscription
		d.observe(f.Channel)
	case ChannelTrades:
		d.observe(f.Channel)
		d.handleTrades(f.Data)
	case ChannelL2Book:
		d.observe(f.Channel)
		d.handleBook(f.Data)
	case ChannelAllMids:
		// informational only; the book stream carries more structure
		d.observe(f.Channel)
	case ChannelCandle, ChannelActiveAssetCtx:
		// accepted but not yet interpreted, kept as an extension point
		d.observe(f.Channel)
	default:
		// unrecognized channel tags only ever hit the skip counter;
		// wire input never becomes a metric label value
		d.skip("unknown channel " + f.Channel)
	}
}

// observe counts a frame under its known channel label.
func (d *Dispatcher) observe(channel string) {
	if d.metrics == nil {
		return
	}
	d.metrics.FramesTotal.WithLabelValues(channel).Inc()
	d.metrics.LastFrameMs.Set(float64(time.Now().UnixMilli()))
}

// handleTrades aggregates one trade batch into a signed flow imbalance.
// All records of a batch belong to the coin of the first record.
func (d *Dispatcher) handleTrades(data json.RawMessage) {
	var trades []wsTrade
	if err := json.Unmarshal(data, &trades); err != nil || len(trades) == 0 {
		d.skip("empty trade batch")
		return
	}
	coin := strings.ToUpper(trades[0].Coin)
	if coin == "" {
		d.skip("trade batch without coin")
		return
	}

	var buy, sell float64
	for _, t := range trades {
		sz := parseFloat(t.Sz)
		switch strings.ToLower(t.Side) {
		case "b", "buy":
			buy += sz
		case "s", "sell":
			sell += sz
		}
		// anything else is ignored
	}

	ts := trades[0].Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	d.state.EnsureCoin(coin).ApplyTradeFlow(buy, sell, ts)
}

// handleBook applies the top level of each side to the coin's book state.
func (d *Dispatcher) handleBook(data json.RawMessage) {
	var book wsBook
	if err := json.Unmarshal(data, &book); err != nil || book.Coin == "" {
		d.skip("book without coin")
		return
	}
	if len(book.Levels) < 2 || len(book.Levels[0]) == 0 || len(book.Levels[1]) == 0 {
		d.skip("book missing levels")
		return
	}

	bid := book.Levels[0][0]
	ask := book.Levels[1][0]

	ts := book.Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	d.state.EnsureCoin(strings.ToUpper(book.Coin)).ApplyBookTop(
		parseFloat(bid.Px), parseFloat(bid.Sz),
		parseFloat(ask.Px), parseFloat(ask.Sz),
		ts,
	)
}

func (d *Dispatcher) skip(reason string) {
	if d.metrics != nil {
		d.metrics.FramesSkipped.Inc()
	}
	slog.Debug("frame skipped", slog.String("reason", reason))
}
