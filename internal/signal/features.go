// Package signal derives explainable indicators from per-coin rolling state.
// Everything here is a pure function: state snapshot in, values out.
package signal

import (
	"math"

	"signal_go/internal/market"
)

// Feature map keys produced by Summarize.
const (
	FeatRetMean      = "ret_mean"
	FeatRetStd       = "ret_std"
	FeatObImbMean    = "ob_imb_mean"
	FeatObImbStd     = "ob_imb_std"
	FeatSpreadMean   = "spread_mean"
	FeatTradeImbMean = "trade_imb_mean"
	FeatTradeImbStd  = "trade_imb_std"
	FeatMomRaw       = "mom_raw"
	FeatMom01        = "mom_01"
	FeatLiqRaw       = "liq_raw"
	FeatLiq01        = "liq_01"
	FeatRiskRaw      = "risk_raw"
	FeatRisk01       = "risk_01"
)

// Summarize computes the feature map for one coin snapshot.
// Empty windows contribute 0 means/stds, so the output is always well
// defined: every *_01 value lands strictly inside (0, 1).
func Summarize(snap market.CoinSnapshot) map[string]float64 {
	feat := map[string]float64{
		FeatRetMean:      mean(snap.MidReturns),
		FeatRetStd:       std(snap.MidReturns),
		FeatObImbMean:    mean(snap.VolImbalance),
		FeatObImbStd:     std(snap.VolImbalance),
		FeatSpreadMean:   mean(snap.SpreadNorm),
		FeatTradeImbMean: mean(snap.TradeImbalance),
		FeatTradeImbStd:  std(snap.TradeImbalance),
	}

	// momentum proxy: mean return scaled by volatility
	momRaw := feat[FeatRetMean] / (feat[FeatRetStd] + 1e-9)
	feat[FeatMomRaw] = momRaw
	feat[FeatMom01] = sigmoid01(2.0 * momRaw)

	// liquidity proxy: tight spread and stable depth
	liqRaw := -10.0*feat[FeatSpreadMean] - 2.0*feat[FeatObImbStd]
	feat[FeatLiqRaw] = liqRaw
	feat[FeatLiq01] = sigmoid01(liqRaw)

	// risk proxy: volatility plus flow/depth variability, baseline shifted
	riskRaw := 8.0*feat[FeatRetStd] + 1.5*feat[FeatTradeImbStd] + 1.5*feat[FeatObImbStd]
	feat[FeatRiskRaw] = riskRaw
	feat[FeatRisk01] = sigmoid01(2.0 * (riskRaw - 0.01))

	return feat
}

func sigmoid01(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// std is the population standard deviation; 0 for empty input.
func std(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
