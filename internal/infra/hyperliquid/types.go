package hyperliquid

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Inbound channel tags.
const (
	ChannelSubscriptionResponse = "subscriptionResponse"
	ChannelTrades               = "trades"
	ChannelL2Book               = "l2Book"
	ChannelAllMids              = "allMids"
	ChannelCandle               = "candle"
	ChannelActiveAssetCtx       = "activeAssetCtx"
)

// subscribeRequest is the outbound subscription message:
// {"method":"subscribe","subscription":{...}}
type subscribeRequest struct {
	Method       string       `json:"method"`
	Subscription subscription `json:"subscription"`
}

type subscription struct {
	Type     string `json:"type"`
	Coin     string `json:"coin,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// Frame is the inbound envelope. Data stays raw until the channel tag picks
// a payload shape, so unrecognized frames cost one tag parse and nothing more.
type Frame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// wsTrade is one record of a trades-channel batch. Prices and sizes arrive
// as decimal strings.
type wsTrade struct {
	Coin string `json:"coin"`
	Side string `json:"side"` // "B"/"A" on the wire; "buy"/"sell" also accepted
	Px   string `json:"px"`
	Sz   string `json:"sz"`
	Time int64  `json:"time"`
}

// wsLevel is a single price level of an l2Book side.
type wsLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// wsBook is the l2Book payload: levels[0] bids, levels[1] asks, best first.
type wsBook struct {
	Coin   string      `json:"coin"`
	Time   int64       `json:"time"`
	Levels [][]wsLevel `json:"levels"`
}

// wsAllMids is the allMids payload: coin -> mid price string.
type wsAllMids struct {
	Mids map[string]string `json:"mids"`
}

// parseFloat converts an exchange decimal string to float64.
// Empty or unparseable input yields 0; downstream math treats 0 as absent.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
