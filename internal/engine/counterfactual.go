package engine

import "github.com/alejandrodnm/polyedge/internal/domain"

// counterfactuals re-runs the precedence chain once per single-parameter
// relaxation and records which of them, in isolation, would have produced a
// proposal. Diagnostic only: it never changes the actual decision and holds
// everything else fixed. The vol-floor relaxation is the one case that gets a
// hypothetical persistence transition, because flooring the signal also
// resets the real counter.
func (e *DecisionEngine) counterfactuals(in EvalInput, prev, st domain.PersistenceState, required int, actual domain.DecisionKind) domain.Counterfactuals {
	if actual.IsPropose() {
		return domain.Counterfactuals{}
	}

	wouldPropose := func(st domain.PersistenceState, required int, rx relaxation) bool {
		if rx.spreadMult == 0 {
			rx.spreadMult = 1
		}
		return e.decide(in, st, required, rx).Kind.IsPropose()
	}

	floorlessSt := advance(prev, e.rawSide(in, e.floorless))

	return domain.Counterfactuals{
		LowerNetEdge:      wouldPropose(st, required, relaxation{skipNetEdge: true}),
		SinglePersistence: wouldPropose(st, 1, relaxation{}),
		NoVolFloor:        wouldPropose(floorlessSt, required, relaxation{noVolFloor: true}),
		WiderSpread:       wouldPropose(st, required, relaxation{spreadMult: 2}),
	}
}
