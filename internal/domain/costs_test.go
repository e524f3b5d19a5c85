package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakerFee_ReferenceConstants(t *testing.T) {
	m := DefaultCostModel()
	// fee(0.50) = 0.25 × (0.5×0.5) = 0.0625
	assert.InDelta(t, 0.0625, m.TakerFee(0.50), 1e-10)
	// fee(0.10) = 0.25 × (0.1×0.9) = 0.0225
	assert.InDelta(t, 0.0225, m.TakerFee(0.10), 1e-10)
}

func TestTakerFee_ZeroAtBoundaries(t *testing.T) {
	m := DefaultCostModel()
	assert.Equal(t, 0.0, m.TakerFee(0))
	assert.Equal(t, 0.0, m.TakerFee(1))
	assert.Equal(t, 0.0, m.TakerFee(-0.1))
	assert.Equal(t, 0.0, m.TakerFee(1.2))
}

func TestTakerFee_SingleHump(t *testing.T) {
	m := DefaultCostModel()
	// máxima en p=0.5, simétrica y decreciente hacia los extremos
	assert.Greater(t, m.TakerFee(0.5), m.TakerFee(0.3))
	assert.Greater(t, m.TakerFee(0.3), m.TakerFee(0.1))
	assert.InDelta(t, m.TakerFee(0.3), m.TakerFee(0.7), 1e-12)
}

func TestVerifyFeeCurve_DefaultsPass(t *testing.T) {
	require.NoError(t, DefaultCostModel().VerifyFeeCurve())
}

func TestVerifyFeeCurve_RejectsMiscalibratedModel(t *testing.T) {
	// Un fee_rate equivocado en la config tiene que morir en el arranque,
	// no corromper en silencio todos los net edges.
	bad := DefaultCostModel()
	bad.FeeRate = 0.30
	require.Error(t, bad.VerifyFeeCurve())

	bad = DefaultCostModel()
	bad.Exponent = 2.0
	require.Error(t, bad.VerifyFeeCurve())
}

func TestSlippage_InverseToDepth(t *testing.T) {
	m := DefaultCostModel()
	// 0.25 / 100 shares = 0.0025
	assert.InDelta(t, 0.0025, m.Slippage(100), 1e-9)
	assert.Greater(t, m.Slippage(50), m.Slippage(500))
}

func TestSlippage_CappedAtMax(t *testing.T) {
	m := DefaultCostModel()
	assert.Equal(t, m.SlipMax, m.Slippage(1)) // 0.25/1 = 0.25 → cap
	assert.LessOrEqual(t, m.Slippage(10), m.SlipMax)
}

func TestSlippage_UnknownDepthAssumesMax(t *testing.T) {
	m := DefaultCostModel()
	assert.Equal(t, m.SlipMax, m.Slippage(0))
	assert.Equal(t, m.SlipMax, m.Slippage(-5))
}

func TestRealizedPnl(t *testing.T) {
	// win: (1 - 0.40) - 0.05 = 0.55
	assert.InDelta(t, 0.55, RealizedPnl(true, 0.40, 0.05), 1e-9)
	// loss: -0.40 - 0.05 = -0.45
	assert.InDelta(t, -0.45, RealizedPnl(false, 0.40, 0.05), 1e-9)
}

func TestSideQuote_MidAndSpread(t *testing.T) {
	q := SideQuote{Bid: 0.38, Ask: 0.42, AskSize: 120}
	assert.InDelta(t, 0.40, q.Mid(), 1e-9)
	assert.InDelta(t, 0.04, q.Spread(), 1e-9)
	assert.True(t, q.Valid())

	empty := SideQuote{}
	assert.Equal(t, 0.0, empty.Mid())
	assert.Equal(t, 0.0, empty.Spread())
	assert.False(t, empty.Valid())
}

func TestMarketWindow_SanitySum(t *testing.T) {
	m := MarketWindow{
		Up:   SideQuote{Bid: 0.38, Ask: 0.42},
		Down: SideQuote{Bid: 0.60, Ask: 0.64},
	}
	// 0.40 + 0.62 = 1.02
	assert.InDelta(t, 1.02, m.SanitySum(), 1e-9)
}

func TestMarketWindow_MinSpreadAndDepth(t *testing.T) {
	m := MarketWindow{
		Up:   SideQuote{Bid: 0.38, Ask: 0.42, AskSize: 80},
		Down: SideQuote{Bid: 0.61, Ask: 0.63, AskSize: 200},
	}
	assert.InDelta(t, 0.02, m.MinSpread(), 1e-9)
	assert.Equal(t, 200.0, m.MaxAskDepth())
}

func TestCounterfactuals_FlippedCount(t *testing.T) {
	c := Counterfactuals{LowerNetEdge: true, NoVolFloor: true}
	assert.Equal(t, 2, c.FlippedCount())
	assert.Equal(t, 0, Counterfactuals{}.FlippedCount())
}

func TestGates_Helpers(t *testing.T) {
	gates := []GateResult{
		{Name: GateSanity, Pass: true},
		{Name: GateSpread, Pass: false},
		{Name: GateDepth, Pass: false},
	}
	assert.False(t, GatesPass(gates))
	assert.Equal(t, GateSpread, FirstFailing(gates))
	assert.Equal(t, []string{GateSpread, GateDepth}, FailingGates(gates))

	ok := []GateResult{{Name: GateSanity, Pass: true}}
	assert.True(t, GatesPass(ok))
	assert.Equal(t, "", FirstFailing(ok))
}

func TestOutcome_WonSide(t *testing.T) {
	assert.Equal(t, SideUp, OutcomeUpWon.WonSide())
	assert.Equal(t, SideDown, OutcomeDownWon.WonSide())
	assert.Equal(t, SideNone, OutcomeUnresolved.WonSide())
	assert.True(t, OutcomeUpWon.Definitive())
	assert.False(t, OutcomeFetchError.Definitive())
}

func TestTakerFee_WellBelowPayout(t *testing.T) {
	m := DefaultCostModel()
	for p := 0.05; p < 1.0; p += 0.05 {
		assert.Less(t, m.TakerFee(p), 1-math.Abs(p-0.5), "fee must never swamp the payout")
	}
}
