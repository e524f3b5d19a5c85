package domain

import "time"

// Side es el lado del mercado al que apunta la señal.
type Side string

const (
	SideNone Side = "NONE"
	SideUp   Side = "UP"
	SideDown Side = "DOWN"
)

// DecisionKind es el resultado de un ciclo de evaluación para un símbolo.
type DecisionKind string

const (
	DecisionDoNothing     DecisionKind = "DO_NOTHING"
	DecisionCandidateUp   DecisionKind = "CANDIDATE_UP"
	DecisionCandidateDown DecisionKind = "CANDIDATE_DOWN"
	DecisionProposeUp     DecisionKind = "PROPOSE_UP"
	DecisionProposeDown   DecisionKind = "PROPOSE_DOWN"
	DecisionExit          DecisionKind = "EXIT"
)

// IsPropose devuelve true para los dos tipos de decisión accionables.
func (k DecisionKind) IsPropose() bool {
	return k == DecisionProposeUp || k == DecisionProposeDown
}

// Nombres de blockers, en el orden exacto de precedencia en que el engine
// los comprueba. El blocker dominante es el primero que falló.
const (
	BlockerNoMarket    = "NO_MARKET"
	BlockerNoFeed      = "NO_CEX_FEED"
	BlockerNoSignal    = "NO_SIGNAL"
	BlockerMinEdge     = "MIN_EDGE"
	BlockerMinNetEdge  = "MIN_NET_EDGE"
	BlockerPersistence = "PERSISTENCE"
	BlockerExitWindow  = "EXIT_WINDOW"
	BlockerNone        = ""
)

// SignalResult es la estimación de probabilidad calibrada más cada clamp que
// se activó al calcularla. Los flags son evidencia diagnóstica y viajan con
// el trail de la decisión.
type SignalResult struct {
	RawZ        float64 `json:"raw_z"`
	Z           float64 `json:"z"`
	Probability float64 `json:"probability"`
	VolFloorHit bool    `json:"vol_floor_hit"`
	ZClamped    bool    `json:"z_clamped"`
	PClamped    bool    `json:"p_clamped"`
}

// PersistenceState es el contador de confirmación por símbolo: cuántos
// ciclos consecutivos la señal cruda ha apuntado al mismo lado.
type PersistenceState struct {
	Side  Side `json:"side"`
	Count int  `json:"count"`
}

// Counterfactuals registra, por cada relajación de un solo parámetro, si el
// ciclo habría producido una propuesta con todo lo demás fijo.
type Counterfactuals struct {
	LowerNetEdge      bool `json:"lower_net_edge"`
	SinglePersistence bool `json:"single_persistence"`
	NoVolFloor        bool `json:"no_vol_floor"`
	WiderSpread       bool `json:"wider_spread"`
}

// FlippedCount devuelve cuántas relajaciones habrían convertido el ciclo en
// propuesta, un proxy de cuántas restricciones independientes bloquean.
func (c Counterfactuals) FlippedCount() int {
	n := 0
	for _, b := range []bool{c.LowerNetEdge, c.SinglePersistence, c.NoVolFloor, c.WiderSpread} {
		if b {
			n++
		}
	}
	return n
}

// Decision es el registro completo de la evaluación de un símbolo en un
// ciclo. Se crea nueva cada ciclo, nunca se muta, se añade al decision
// journal.
type Decision struct {
	Cycle  int64        `json:"cycle"`
	Symbol string       `json:"symbol"`
	At     time.Time    `json:"at"`
	Kind   DecisionKind `json:"kind"`
	Side   Side         `json:"side"`
	Reason string       `json:"reason"`

	DominantBlocker string `json:"dominant_blocker,omitempty"`

	// Trail numérico.
	Features    FeatureSnapshot `json:"features"`
	Signal      SignalResult    `json:"signal"`
	UpMid       float64         `json:"up_mid"`
	DownMid     float64         `json:"down_mid"`
	SanitySum   float64         `json:"sanity_sum"`
	EntryPrice  float64         `json:"entry_price"`
	Edge        float64         `json:"edge"`
	Fee         float64         `json:"fee"`
	Slippage    float64         `json:"slippage"`
	Buffer      float64         `json:"buffer"`
	NetEdge     float64         `json:"net_edge"`
	SecondsLeft float64         `json:"seconds_left"`

	Gates       []GateResult     `json:"gates,omitempty"`
	GatesPass   bool             `json:"gates_pass"`
	Persistence PersistenceState `json:"persistence"`

	Counterfactual Counterfactuals `json:"counterfactual"`

	// Se rellena cuando la decisión escaló a shadow proposal.
	ProposalID string `json:"proposal_id,omitempty"`
}

// HistoryEntry es la forma compacta de una decisión guardada en el ring
// buffer por símbolo para mostrar tendencia.
type HistoryEntry struct {
	Cycle   int64        `json:"cycle"`
	At      time.Time    `json:"at"`
	Kind    DecisionKind `json:"kind"`
	Side    Side         `json:"side"`
	NetEdge float64      `json:"net_edge"`
	Blocker string       `json:"blocker,omitempty"`
}

// Compact reduce una decisión a su entrada de ring buffer.
func (d Decision) Compact() HistoryEntry {
	return HistoryEntry{
		Cycle:   d.Cycle,
		At:      d.At,
		Kind:    d.Kind,
		Side:    d.Side,
		NetEdge: d.NetEdge,
		Blocker: d.DominantBlocker,
	}
}
