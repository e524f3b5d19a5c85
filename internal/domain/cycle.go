package domain

import "time"

// CycleRecord es una línea del decision journal: la decisión de cada símbolo
// en un ciclo, en orden de evaluación.
type CycleRecord struct {
	Cycle     int64         `json:"cycle"`
	At        time.Time     `json:"at"`
	Duration  time.Duration `json:"duration_ns"`
	Decisions []Decision    `json:"decisions"`
}

// ProposalEventType clasifica una línea del proposal journal.
type ProposalEventType string

const (
	ProposalEventCreated  ProposalEventType = "CREATED"
	ProposalEventResolved ProposalEventType = "RESOLVED"
	// ProposalEventDeferred registra un intento de resolución que volvió sin
	// resolver o con error; la propuesta sigue pendiente.
	ProposalEventDeferred ProposalEventType = "DEFERRED"
)

// ProposalEvent es una línea del proposal journal.
type ProposalEvent struct {
	Type     ProposalEventType `json:"type"`
	At       time.Time         `json:"at"`
	Proposal ShadowProposal    `json:"proposal"`
}

// Snapshot es el único archivo de estado sobrescrito para observadores
// externos. Es una caché para dashboards, nunca se usa para recovery; los
// journals son la fuente de verdad.
type Snapshot struct {
	Cycle            int64                     `json:"cycle"`
	At               time.Time                 `json:"at"`
	Decisions        []Decision                `json:"decisions"`
	DecisionCounts   map[DecisionKind]int      `json:"decision_counts"`
	History          map[string][]HistoryEntry `json:"history"`
	PendingProposals int                       `json:"pending_proposals"`
	Config           any                       `json:"config"`
}
