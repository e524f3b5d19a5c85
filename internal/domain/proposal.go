package domain

import "time"

// ProposalStatus es el estado del ciclo de vida de una shadow proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "PENDING"
	ProposalResolved ProposalStatus = "RESOLVED"
)

// Outcome es el resultado realizado de una ventana de mercado, según lo
// reporta el outcome resolver. Unresolved y FetchError son estados
// explícitamente no definitivos; la propuesta sigue pendiente y se reintenta
// en un ciclo posterior.
type Outcome string

const (
	OutcomeUpWon      Outcome = "UP_WON"
	OutcomeDownWon    Outcome = "DOWN_WON"
	OutcomeUnresolved Outcome = "UNRESOLVED"
	OutcomeFetchError Outcome = "FETCH_ERROR"
)

// Definitive devuelve true cuando el outcome liquida el mercado.
func (o Outcome) Definitive() bool {
	return o == OutcomeUpWon || o == OutcomeDownWon
}

// ShadowProposal sigue un trade propuesto pero nunca ejecutado contra el
// outcome real del mercado. Tanto la versión pendiente como la resuelta se
// escriben al proposal journal; solo las pendientes viven en memoria.
type ShadowProposal struct {
	ID          string  `json:"id"`
	Cycle       int64   `json:"cycle"`
	Symbol      string  `json:"symbol"`
	ConditionID string  `json:"condition_id"`
	Slug        string  `json:"slug"`
	Side        Side    `json:"side"`
	EntryPrice  float64 `json:"entry_price"`
	Edge        float64 `json:"edge"`
	NetEdge     float64 `json:"net_edge"`
	Fee         float64 `json:"fee"`
	Slippage    float64 `json:"slippage"`
	Buffer      float64 `json:"buffer"`

	WindowEnd time.Time      `json:"window_end"`
	CreatedAt time.Time      `json:"created_at"`
	Status    ProposalStatus `json:"status"`

	// Solo se rellenan al resolver.
	Outcome     Outcome    `json:"outcome,omitempty"`
	Won         bool       `json:"won,omitempty"`
	RealizedPnl float64    `json:"realized_pnl,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Costs devuelve el coste total modelado de la propuesta.
func (p ShadowProposal) Costs() float64 {
	return p.Fee + p.Slippage + p.Buffer
}

// RealizedPnl calcula el PnL por share de una posición binaria liquidada:
// una share ganadora paga 1, una perdedora paga 0, los costes son hundidos.
func RealizedPnl(won bool, entryPrice, costs float64) float64 {
	if won {
		return (1 - entryPrice) - costs
	}
	return -entryPrice - costs
}

// WonSide mapea un outcome definitivo al lado ganador.
func (o Outcome) WonSide() Side {
	switch o {
	case OutcomeUpWon:
		return SideUp
	case OutcomeDownWon:
		return SideDown
	}
	return SideNone
}
