package signal

import (
	"signal_go/internal/domain"
)

// Edge score weights and the actionability cutoff.
const (
	edgeMomentumWeight  = 0.55
	edgeLiquidityWeight = 0.45
	edgeRiskWeight      = 0.65
	edgeActionableMin   = 0.55
)

// ScoreEdge combines a regime with the normalized signals into a single
// score in [0, 1]. Explain tags accumulate in a fixed order so downstream
// consumers can rely on it.
func ScoreEdge(regime domain.Regime, sig domain.Signals) domain.Edge {
	var explain []string

	var base float64
	switch regime.Label {
	case domain.RegimeTrending:
		base = 0.25
		explain = append(explain, "trend_regime")
	case domain.RegimeMeanReverting:
		base = 0.15
		explain = append(explain, "mr_regime")
	case domain.RegimeLiquidationRisk:
		base = -0.25
		explain = append(explain, "liq_risk_regime")
	case domain.RegimeChaotic:
		base = -0.15
		explain = append(explain, "chaotic_regime")
	}

	score := base + edgeMomentumWeight*sig.Momentum + edgeLiquidityWeight*sig.Liquidity - edgeRiskWeight*sig.Risk

	actionable := score > edgeActionableMin &&
		regime.Label != domain.RegimeLiquidationRisk &&
		regime.Label != domain.RegimeChaotic

	if sig.Momentum > 0.6 {
		explain = append(explain, "momentum_high")
	}
	if sig.Liquidity > 0.6 {
		explain = append(explain, "liquidity_good")
	}
	if sig.Risk > 0.55 {
		explain = append(explain, "risk_elevated")
	}
	if actionable {
		explain = append(explain, "actionable")
	}

	return domain.Edge{Score: clamp01(score), Actionable: actionable, Explain: explain}
}
