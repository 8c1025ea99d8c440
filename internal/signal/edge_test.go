package signal_test

import (
	"reflect"
	"testing"

	"signal_go/internal/domain"
	"signal_go/internal/signal"
)

func TestScoreEdge_Monotonicity(t *testing.T) {
	regime := domain.Regime{Label: domain.RegimeTrending, Confidence: 0.8}

	// Score must not decrease in momentum or liquidity, not increase in risk
	steps := []float64{0, 0.25, 0.5, 0.75, 1}

	prev := -1.0
	for _, m := range steps {
		e := signal.ScoreEdge(regime, domain.Signals{Momentum: m, Liquidity: 0.5, Risk: 0.5})
		if e.Score < prev {
			t.Errorf("Score decreased in momentum at %v: %v < %v", m, e.Score, prev)
		}
		prev = e.Score
	}

	prev = -1.0
	for _, l := range steps {
		e := signal.ScoreEdge(regime, domain.Signals{Momentum: 0.5, Liquidity: l, Risk: 0.5})
		if e.Score < prev {
			t.Errorf("Score decreased in liquidity at %v: %v < %v", l, e.Score, prev)
		}
		prev = e.Score
	}

	prev = 2.0
	for _, r := range steps {
		e := signal.ScoreEdge(regime, domain.Signals{Momentum: 0.5, Liquidity: 0.5, Risk: r})
		if e.Score > prev {
			t.Errorf("Score increased in risk at %v: %v > %v", r, e.Score, prev)
		}
		prev = e.Score
	}
}

func TestScoreEdge_Actionable(t *testing.T) {
	trending := domain.Regime{Label: domain.RegimeTrending, Confidence: 0.9}

	e := signal.ScoreEdge(trending, domain.Signals{Momentum: 0.9, Liquidity: 0.9, Risk: 0.1})
	if !e.Actionable {
		t.Errorf("Expected actionable for strong trending signals, score %v", e.Score)
	}

	// Same signals under a risk regime are never actionable
	liq := domain.Regime{Label: domain.RegimeLiquidationRisk, Confidence: 0.9}
	e = signal.ScoreEdge(liq, domain.Signals{Momentum: 0.9, Liquidity: 0.9, Risk: 0.1})
	if e.Actionable {
		t.Error("LIQUIDATION_RISK must never be actionable")
	}

	chaotic := domain.Regime{Label: domain.RegimeChaotic, Confidence: 0.9}
	e = signal.ScoreEdge(chaotic, domain.Signals{Momentum: 0.9, Liquidity: 0.9, Risk: 0.1})
	if e.Actionable {
		t.Error("CHAOTIC must never be actionable")
	}
}

func TestScoreEdge_ExplainOrder(t *testing.T) {
	trending := domain.Regime{Label: domain.RegimeTrending, Confidence: 0.9}
	e := signal.ScoreEdge(trending, domain.Signals{Momentum: 0.9, Liquidity: 0.9, Risk: 0.6})

	want := []string{"trend_regime", "momentum_high", "liquidity_good", "risk_elevated"}
	if e.Actionable {
		want = append(want, "actionable")
	}
	if !reflect.DeepEqual(e.Explain, want) {
		t.Errorf("Expected explain %v, got %v", want, e.Explain)
	}
}

func TestScoreEdge_ScoreClamped(t *testing.T) {
	liq := domain.Regime{Label: domain.RegimeLiquidationRisk, Confidence: 0.9}
	e := signal.ScoreEdge(liq, domain.Signals{Momentum: 0, Liquidity: 0, Risk: 1})
	if e.Score != 0 {
		t.Errorf("Expected score clamped to 0, got %v", e.Score)
	}

	trending := domain.Regime{Label: domain.RegimeTrending, Confidence: 0.9}
	e = signal.ScoreEdge(trending, domain.Signals{Momentum: 1, Liquidity: 1, Risk: 0})
	if e.Score != 1 {
		t.Errorf("Expected score clamped to 1, got %v", e.Score)
	}
}

func TestScoreEdge_UnknownRegimeBase(t *testing.T) {
	unknown := domain.Regime{Label: domain.RegimeUnknown, Confidence: 0.25}
	e := signal.ScoreEdge(unknown, domain.Signals{Momentum: 0.5, Liquidity: 0.5, Risk: 0.5})

	// base 0: 0.55*0.5 + 0.45*0.5 - 0.65*0.5 = 0.175
	if diff := e.Score - 0.175; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected score 0.175, got %v", e.Score)
	}
	if len(e.Explain) != 0 {
		t.Errorf("Expected no explain tags, got %v", e.Explain)
	}
}
