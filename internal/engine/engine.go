package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Config are the decision-engine thresholds that sit between the signal and a
// proposal.
type Config struct {
	MinEdge       float64 // raw edge below this → DO_NOTHING
	MinNetEdge    float64 // edge net of costs below this → DO_NOTHING
	SafetyBuffer  float64 // fixed haircut taken on top of fees and slippage
	ExitThreshold float64 // seconds left below this → EXIT instead of PROPOSE
}

// DefaultConfig returns the production decision thresholds.
func DefaultConfig() Config {
	return Config{
		MinEdge:       0.02,
		MinNetEdge:    0.01,
		SafetyBuffer:  0.02,
		ExitThreshold: 120,
	}
}

// EvalInput is everything one symbol's evaluation needs for one cycle. The
// engine itself is stateless; persistence is the caller's tracker.
type EvalInput struct {
	Cycle       int64
	Now         time.Time
	Symbol      string
	Market      domain.MarketWindow
	HaveMarket  bool
	FeedHealthy bool
	Features    domain.FeatureSnapshot
}

// relaxation loosens exactly one constraint for counterfactual re-evaluation.
type relaxation struct {
	skipNetEdge bool
	noVolFloor  bool
	spreadMult  float64
}

// DecisionEngine turns features plus market state into one decision per symbol
// per cycle, with the full numeric trail and the dominant blocker attached.
type DecisionEngine struct {
	cfg       Config
	signal    *SignalModel
	floorless *SignalModel
	costs     domain.CostModel
	gates     *GateEvaluator
}

// NewDecisionEngine assembles the engine from its parts. Zero-valued config
// fields fall back to defaults.
func NewDecisionEngine(cfg Config, sigCfg SignalConfig, costs domain.CostModel, gateCfg GateConfig) *DecisionEngine {
	def := DefaultConfig()
	if cfg.MinEdge == 0 {
		cfg.MinEdge = def.MinEdge
	}
	if cfg.MinNetEdge == 0 {
		cfg.MinNetEdge = def.MinNetEdge
	}
	if cfg.SafetyBuffer == 0 {
		cfg.SafetyBuffer = def.SafetyBuffer
	}
	if cfg.ExitThreshold == 0 {
		cfg.ExitThreshold = def.ExitThreshold
	}

	sig := NewSignalModel(sigCfg)

	// Variant for the no-vol-floor counterfactual. Built directly because the
	// constructor treats a zero floor as "use default".
	flCfg := sig.cfg
	flCfg.VolFloor = 0
	floorless := &SignalModel{cfg: flCfg}

	return &DecisionEngine{
		cfg:       cfg,
		signal:    sig,
		floorless: floorless,
		costs:     costs,
		gates:     NewGateEvaluator(gateCfg),
	}
}

// Evaluate runs one symbol through the full precedence chain, advances its
// persistence state, and attaches the counterfactual analysis.
func (e *DecisionEngine) Evaluate(in EvalInput, pers *PersistenceTracker) domain.Decision {
	prev := pers.State(in.Symbol)
	st := pers.Observe(in.Symbol, e.rawSide(in, e.signal))

	d := e.decide(in, st, pers.Required(), relaxation{spreadMult: 1})
	d.Persistence = st
	d.Counterfactual = e.counterfactuals(in, prev, st, pers.Required(), d.Kind)
	return d
}

// rawSide is the pre-persistence signal side: the side with the larger
// positive edge, or None when no usable signal exists this cycle.
func (e *DecisionEngine) rawSide(in EvalInput, model *SignalModel) domain.Side {
	if !in.HaveMarket || !in.FeedHealthy || !in.Features.OK {
		return domain.SideNone
	}
	sig := model.Evaluate(in.Features)
	if sig.VolFloorHit {
		return domain.SideNone
	}
	side, _ := pickSide(sig.Probability, in.Market.Up.Mid(), in.Market.Down.Mid())
	return side
}

func pickSide(p, upMid, downMid float64) (domain.Side, float64) {
	upEdge := p - upMid
	downEdge := (1 - p) - downMid
	switch {
	case upEdge <= 0 && downEdge <= 0:
		return domain.SideNone, math.Max(upEdge, downEdge)
	case upEdge >= downEdge:
		return domain.SideUp, upEdge
	default:
		return domain.SideDown, downEdge
	}
}

// decide walks the precedence chain once. The relaxation parameter is the
// counterfactual hook; the real decision always passes the identity
// relaxation.
func (e *DecisionEngine) decide(in EvalInput, st domain.PersistenceState, required int, rx relaxation) domain.Decision {
	d := domain.Decision{
		Cycle:    in.Cycle,
		Symbol:   in.Symbol,
		At:       in.Now,
		Kind:     domain.DecisionDoNothing,
		Side:     domain.SideNone,
		Buffer:   e.cfg.SafetyBuffer,
		Features: in.Features,
	}

	// (pre) No market window is a normal per-symbol outcome, not an error.
	if !in.HaveMarket {
		d.DominantBlocker = domain.BlockerNoMarket
		d.Reason = "no active market window for this symbol"
		return d
	}

	mkt := in.Market
	d.UpMid = mkt.Up.Mid()
	d.DownMid = mkt.Down.Mid()
	d.SanitySum = mkt.SanitySum()
	d.SecondsLeft = mkt.SecondsLeft(in.Now)

	// Gates are computed up front and in full for the decision trail;
	// precedence only consults them after persistence.
	d.Gates = e.gates.evaluate(mkt, in.FeedHealthy, in.Now, e.gates.cfg.MaxSpread*rx.spreadMult)
	d.GatesPass = domain.GatesPass(d.Gates)

	model := e.signal
	if rx.noVolFloor {
		model = e.floorless
	}
	d.Signal = model.Evaluate(in.Features)

	// (a) Feed health.
	if !in.FeedHealthy || !in.Features.OK {
		d.DominantBlocker = domain.BlockerNoFeed
		d.Reason = fmt.Sprintf("reference feed unhealthy (%d samples)", in.Features.SampleCount)
		return d
	}

	// (b) Volatility floor: the probability is still on the trail for
	// diagnostics, but never escalates.
	if d.Signal.VolFloorHit {
		d.DominantBlocker = domain.BlockerNoSignal
		d.Reason = "volatility below floor, signal unreliable"
		return d
	}

	// (c) Edge.
	side, edge := pickSide(d.Signal.Probability, d.UpMid, d.DownMid)
	if side == domain.SideNone {
		d.DominantBlocker = domain.BlockerMinEdge
		d.Reason = "no positive edge on either side"
		return d
	}

	d.Side = side
	d.Edge = edge
	q := mkt.Quote(side)
	d.EntryPrice = q.Ask
	d.Fee = e.costs.TakerFee(q.Ask)
	d.Slippage = e.costs.Slippage(q.AskSize)
	d.NetEdge = edge - d.Fee - d.Slippage - d.Buffer

	if edge < e.cfg.MinEdge {
		d.DominantBlocker = domain.BlockerMinEdge
		d.Reason = fmt.Sprintf("edge %.4f below minimum %.4f", edge, e.cfg.MinEdge)
		return d
	}

	// (d) Edge net of costs.
	if !rx.skipNetEdge && d.NetEdge < e.cfg.MinNetEdge {
		d.DominantBlocker = domain.BlockerMinNetEdge
		d.Reason = fmt.Sprintf("net edge %.4f below minimum %.4f", d.NetEdge, e.cfg.MinNetEdge)
		return d
	}

	// (e)-(f) Raw decision is Propose; persistence downgrades to Candidate.
	persisted := st.Side == side && st.Count >= required
	if !persisted {
		d.Kind = candidateKind(side)
		d.DominantBlocker = domain.BlockerPersistence
		d.Reason = fmt.Sprintf("signal on %s for %d/%d cycles", side, st.Count, required)
		return d
	}

	// (g) Hard gates.
	if !d.GatesPass {
		failing := domain.FailingGates(d.Gates)
		d.Kind = domain.DecisionDoNothing
		d.DominantBlocker = domain.FirstFailing(d.Gates)
		d.Reason = fmt.Sprintf("hard gate failed: %s", strings.Join(failing, ", "))
		return d
	}

	// (h) Too close to window close to be worth entering.
	if d.SecondsLeft < e.cfg.ExitThreshold {
		d.Kind = domain.DecisionExit
		d.DominantBlocker = domain.BlockerExitWindow
		d.Reason = fmt.Sprintf("only %.0fs left in window, exit threshold %.0fs", d.SecondsLeft, e.cfg.ExitThreshold)
		return d
	}

	d.Kind = proposeKind(side)
	d.DominantBlocker = domain.BlockerNone
	d.Reason = fmt.Sprintf("net edge %.4f on %s at %.3f", d.NetEdge, side, d.EntryPrice)
	return d
}

func candidateKind(side domain.Side) domain.DecisionKind {
	if side == domain.SideDown {
		return domain.DecisionCandidateDown
	}
	return domain.DecisionCandidateUp
}

func proposeKind(side domain.Side) domain.DecisionKind {
	if side == domain.SideDown {
		return domain.DecisionProposeDown
	}
	return domain.DecisionProposeUp
}
