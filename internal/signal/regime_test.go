package signal_test

import (
	"math"
	"testing"

	"signal_go/internal/domain"
	"signal_go/internal/signal"
)

func TestClassify(t *testing.T) {
	th := signal.DefaultThresholds()

	cases := []struct {
		name        string
		retStd      float64
		spreadMean  float64
		tradeImbStd float64
		momRaw      float64
		wantLabel   domain.RegimeLabel
		minConf     float64
		exactConf   float64 // checked when > 0
	}{
		{
			name:   "high vol and wide spread",
			retStd: 0.0030, spreadMean: 0.0010, tradeImbStd: 0.20, momRaw: 0.0,
			wantLabel: domain.RegimeLiquidationRisk, minConf: 0.6,
		},
		{
			name:   "high vol and chaotic flow",
			retStd: 0.0040, spreadMean: 0.0002, tradeImbStd: 0.70, momRaw: 0.10,
			wantLabel: domain.RegimeLiquidationRisk,
		},
		{
			name:   "strong momentum not chaotic",
			retStd: 0.0015, spreadMean: 0.0003, tradeImbStd: 0.10, momRaw: 0.60,
			wantLabel: domain.RegimeTrending, minConf: 0.55,
		},
		{
			name:   "low momentum good liquidity low vol",
			retStd: 0.0010, spreadMean: 0.0002, tradeImbStd: 0.10, momRaw: 0.05,
			wantLabel: domain.RegimeMeanReverting, exactConf: 0.65,
		},
		{
			name:   "wide spread fallback",
			retStd: 0.0019, spreadMean: 0.0007, tradeImbStd: 0.20, momRaw: 0.20,
			wantLabel: domain.RegimeChaotic, exactConf: 0.6,
		},
		{
			name:   "default case",
			retStd: 0.0020, spreadMean: 0.0004, tradeImbStd: 0.20, momRaw: 0.20,
			wantLabel: domain.RegimeUnknown, exactConf: 0.25,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := th.Classify(tc.retStd, tc.spreadMean, tc.tradeImbStd, tc.momRaw)
			if r.Label != tc.wantLabel {
				t.Fatalf("Expected %s, got %s", tc.wantLabel, r.Label)
			}
			if r.Confidence < 0 || r.Confidence > 1 {
				t.Errorf("Confidence %v out of [0,1]", r.Confidence)
			}
			if tc.minConf > 0 && r.Confidence < tc.minConf {
				t.Errorf("Expected confidence >= %v, got %v", tc.minConf, r.Confidence)
			}
			if tc.exactConf > 0 && math.Abs(r.Confidence-tc.exactConf) > 1e-9 {
				t.Errorf("Expected confidence %v, got %v", tc.exactConf, r.Confidence)
			}
		})
	}
}

func TestClassify_NegativeMomentumTrends(t *testing.T) {
	th := signal.DefaultThresholds()
	r := th.Classify(0.0015, 0.0003, 0.10, -0.60)
	if r.Label != domain.RegimeTrending {
		t.Errorf("Expected TRENDING for strong negative momentum, got %s", r.Label)
	}
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	th := signal.DefaultThresholds()
	// Extreme volatility would push raw confidence far above 1
	r := th.Classify(0.05, 0.0010, 0.20, 0.0)
	if r.Label != domain.RegimeLiquidationRisk {
		t.Fatalf("Expected LIQUIDATION_RISK, got %s", r.Label)
	}
	if r.Confidence != 1.0 {
		t.Errorf("Expected confidence clamped to 1, got %v", r.Confidence)
	}
}

func TestClassify_ThresholdOverride(t *testing.T) {
	th := signal.DefaultThresholds()
	th.TrendMomRaw = 0.05

	r := th.Classify(0.0015, 0.0003, 0.10, 0.10)
	if r.Label != domain.RegimeTrending {
		t.Errorf("Lowered trend threshold should classify as TRENDING, got %s", r.Label)
	}
}
