package market

import (
	"math"
	"sync"
)

// BookTop is the current best bid/ask for a coin with derived spread and mid.
// All fields are zero until a book update with positive bid and ask arrives.
type BookTop struct {
	BidPx  float64 `json:"bid_px"`
	BidSz  float64 `json:"bid_sz"`
	AskPx  float64 `json:"ask_px"`
	AskSz  float64 `json:"ask_sz"`
	Spread float64 `json:"spread"`
	Mid    float64 `json:"mid"`
}

// CoinState holds all rolling statistics for a single tracked coin.
// It is created lazily on the first frame for an unseen coin and lives for
// the process lifetime. The ingestion path is the only writer; the query
// path reads via Snapshot. The mutex keeps each mutation atomic so readers
// never observe a half-applied update.
type CoinState struct {
	mu sync.Mutex

	coin        string
	lastTradeMs int64
	lastBookMs  int64
	book        BookTop
	prevMid     float64 // last valid mid, used for the next mid-return

	midReturns     *RollingWindow
	volImbalance   *RollingWindow
	spreadNorm     *RollingWindow
	tradeImbalance *RollingWindow
	volZ           *RollingWindow // reserved, not yet fed by any handler
}

// NewCoinState creates an empty state for coin with windows of capacity cap.
func NewCoinState(coin string, cap int) *CoinState {
	return &CoinState{
		coin:           coin,
		midReturns:     NewRollingWindow(cap),
		volImbalance:   NewRollingWindow(cap),
		spreadNorm:     NewRollingWindow(cap),
		tradeImbalance: NewRollingWindow(cap),
		volZ:           NewRollingWindow(cap),
	}
}

// Coin returns the coin identifier.
func (c *CoinState) Coin() string {
	return c.coin
}

// ApplyBookTop records a top-of-book update.
// Spread and mid are derived only when both sides have a positive price.
// The first valid mid seeds prevMid without producing a return.
func (c *CoinState) ApplyBookTop(bidPx, bidSz, askPx, askSz float64, tsMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastBookMs = tsMs

	var spread, mid float64
	if bidPx > 0 && askPx > 0 {
		spread = math.Max(0, askPx-bidPx)
		mid = (askPx + bidPx) / 2.0
	}
	c.book = BookTop{BidPx: bidPx, BidSz: bidSz, AskPx: askPx, AskSz: askSz, Spread: spread, Mid: mid}

	if mid > 0 && c.prevMid > 0 {
		c.midReturns.Push(mid/c.prevMid - 1.0)
	}
	if mid > 0 {
		c.prevMid = mid
	}

	if denom := bidSz + askSz; denom > 0 {
		c.volImbalance.Push((bidSz - askSz) / denom)
	} else {
		c.volImbalance.Push(0)
	}

	if mid > 0 {
		c.spreadNorm.Push(spread / mid)
	} else {
		c.spreadNorm.Push(0)
	}
}

// ApplyTradeFlow records the aggregated buy/sell size of one trade batch as
// a signed flow imbalance in [-1, 1]. Zero total flow pushes 0.
func (c *CoinState) ApplyTradeFlow(buySz, sellSz float64, tsMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastTradeMs = tsMs

	if denom := buySz + sellSz; denom > 0 {
		c.tradeImbalance.Push((buySz - sellSz) / denom)
	} else {
		c.tradeImbalance.Push(0)
	}
}

// CoinSnapshot is a consistent point-in-time copy of one CoinState.
type CoinSnapshot struct {
	Coin        string
	LastTradeMs int64
	LastBookMs  int64
	Book        BookTop

	MidReturns     []float64
	VolImbalance   []float64
	SpreadNorm     []float64
	TradeImbalance []float64
	VolZ           []float64
}

// Snapshot copies the coin state under the mutex so concurrent queries never
// see a partially applied frame.
func (c *CoinState) Snapshot() CoinSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CoinSnapshot{
		Coin:           c.coin,
		LastTradeMs:    c.lastTradeMs,
		LastBookMs:     c.lastBookMs,
		Book:           c.book,
		MidReturns:     c.midReturns.Snapshot(),
		VolImbalance:   c.volImbalance.Snapshot(),
		SpreadNorm:     c.spreadNorm.Snapshot(),
		TradeImbalance: c.tradeImbalance.Snapshot(),
		VolZ:           c.volZ.Snapshot(),
	}
}
