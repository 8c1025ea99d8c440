package signal

import (
	"math"

	"signal_go/internal/domain"
)

// Thresholds is the named tuning table for the regime classifier.
// Hoisted out of the decision logic so tests and config can override each
// knob independently.
type Thresholds struct {
	HighVolRetStd      float64 `yaml:"high_vol_ret_std"`
	WideSpreadMean     float64 `yaml:"wide_spread_mean"`
	ChaoticTradeImbStd float64 `yaml:"chaotic_trade_imb_std"`
	TrendMomRaw        float64 `yaml:"trend_mom_raw"`
	FlatMomRaw         float64 `yaml:"flat_mom_raw"`
	CalmRetStd         float64 `yaml:"calm_ret_std"`
}

// DefaultThresholds returns the standard tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighVolRetStd:      0.0025,
		WideSpreadMean:     0.0006,
		ChaoticTradeImbStd: 0.55,
		TrendMomRaw:        0.35,
		FlatMomRaw:         0.15,
		CalmRetStd:         0.0018,
	}
}

// Classify maps four feature scalars to a market regime.
// The branches are evaluated in priority order; the first match wins.
func (t Thresholds) Classify(retStd, spreadMean, tradeImbStd, momRaw float64) domain.Regime {
	highVol := retStd > t.HighVolRetStd
	wideSpread := spreadMean > t.WideSpreadMean
	chaoticFlow := tradeImbStd > t.ChaoticTradeImbStd

	var label domain.RegimeLabel
	var conf float64

	switch {
	case (highVol && wideSpread) || (highVol && chaoticFlow):
		label = domain.RegimeLiquidationRisk
		conf = 0.6 + 80.0*math.Max(0, retStd-t.HighVolRetStd)
	case math.Abs(momRaw) > t.TrendMomRaw && !chaoticFlow:
		label = domain.RegimeTrending
		conf = 0.55 + 0.8*math.Min(1, math.Abs(momRaw))
	case math.Abs(momRaw) < t.FlatMomRaw && !wideSpread && retStd < t.CalmRetStd:
		label = domain.RegimeMeanReverting
		conf = 0.65
	case chaoticFlow || wideSpread:
		label = domain.RegimeChaotic
		conf = 0.6
	default:
		label = domain.RegimeUnknown
		conf = 0.25
	}

	return domain.Regime{Label: label, Confidence: clamp01(conf)}
}
