package domain

// SignalEnvelope is the full query response for a single coin.
type SignalEnvelope struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Coin        string  `json:"coin"`
	Regime      Regime  `json:"regime"`
	Signals     Signals `json:"signals"`
	Edge        Edge    `json:"edge"`
}

// Health reports process liveness and stream connectivity.
type Health struct {
	OK          bool     `json:"ok"`
	WSConnected bool     `json:"ws_connected"`
	Coins       []string `json:"coins"`
	UptimeSec   float64  `json:"uptime_sec"`
}

// SystemState reports per-coin freshness for status dashboards.
type SystemState struct {
	TimestampMs int64            `json:"timestamp_ms"`
	Coins       []string         `json:"coins"`
	LastTradeMs map[string]int64 `json:"last_trade_ms"`
	LastBookMs  map[string]int64 `json:"last_book_ms"`
}
