package domain

// RegimeLabel is a discrete classification of current market behavior.
type RegimeLabel string

const (
	RegimeTrending        RegimeLabel = "TRENDING"
	RegimeMeanReverting   RegimeLabel = "MEAN_REVERTING"
	RegimeLiquidationRisk RegimeLabel = "LIQUIDATION_RISK"
	RegimeChaotic         RegimeLabel = "CHAOTIC"
	RegimeUnknown         RegimeLabel = "UNKNOWN"
)

// Regime is a classified market regime with a confidence in [0, 1].
type Regime struct {
	Label      RegimeLabel `json:"label"`
	Confidence float64     `json:"confidence"`
}

// Signals are the normalized per-coin indicators, each in (0, 1).
type Signals struct {
	Momentum  float64 `json:"momentum"`
	Liquidity float64 `json:"liquidity"`
	Risk      float64 `json:"risk"`
}

// Edge is the derived actionability score for one coin.
// Explain lists the reasons that contributed, in a fixed order.
type Edge struct {
	Score      float64  `json:"score"`
	Actionable bool     `json:"actionable"`
	Explain    []string `json:"explain"`
}
