package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// ShadowLedger records every escalated proposal, resolves it against the real
// market outcome once the window closes, and aggregates performance stats by
// re-scanning the journals. The pending set lives in memory and is owned by
// the decision loop; the journal is the durable source of truth.
type ShadowLedger struct {
	journal   ports.ProposalJournal
	decisions ports.DecisionJournal
	resolver  ports.OutcomeResolver
	logger    *slog.Logger

	pending map[string]domain.ShadowProposal
}

// NewShadowLedger builds an empty ledger.
func NewShadowLedger(journal ports.ProposalJournal, decisions ports.DecisionJournal, resolver ports.OutcomeResolver, logger *slog.Logger) *ShadowLedger {
	return &ShadowLedger{
		journal:   journal,
		decisions: decisions,
		resolver:  resolver,
		logger:    logger,
		pending:   make(map[string]domain.ShadowProposal),
	}
}

// RecordProposal creates a Pending proposal from a Propose* decision, appends
// the creation event to the journal, and keeps it in the pending set until
// resolution.
func (l *ShadowLedger) RecordProposal(ctx context.Context, d domain.Decision, mkt domain.MarketWindow) (domain.ShadowProposal, error) {
	p := domain.ShadowProposal{
		ID:          uuid.NewString(),
		Cycle:       d.Cycle,
		Symbol:      d.Symbol,
		ConditionID: mkt.ConditionID,
		Slug:        mkt.Slug,
		Side:        d.Side,
		EntryPrice:  d.EntryPrice,
		Edge:        d.Edge,
		NetEdge:     d.NetEdge,
		Fee:         d.Fee,
		Slippage:    d.Slippage,
		Buffer:      d.Buffer,
		WindowEnd:   mkt.WindowEnd,
		CreatedAt:   d.At,
		Status:      domain.ProposalPending,
	}

	ev := domain.ProposalEvent{Type: domain.ProposalEventCreated, At: d.At, Proposal: p}
	if err := l.journal.Append(ctx, ev); err != nil {
		return domain.ShadowProposal{}, fmt.Errorf("engine.RecordProposal: append: %w", err)
	}

	l.pending[p.ID] = p
	l.logger.Info("shadow proposal created",
		"id", p.ID,
		"symbol", p.Symbol,
		"side", p.Side,
		"entry", p.EntryPrice,
		"net_edge", p.NetEdge)
	return p, nil
}

// ResolveDue walks every pending proposal whose window has closed and asks the
// outcome resolver for the realized result. Definitive outcomes resolve the
// proposal exactly once; Unresolved and FetchError are journaled as deferred
// and retried on a later cycle. A failure on one proposal never blocks the
// rest.
func (l *ShadowLedger) ResolveDue(ctx context.Context, now time.Time) {
	for _, id := range l.dueIDs(now) {
		p := l.pending[id]

		outcome, err := l.resolver.Outcome(ctx, p.ConditionID, p.Slug)
		if err != nil {
			outcome = domain.OutcomeFetchError
			l.logger.Warn("outcome fetch failed, will retry",
				"id", p.ID, "symbol", p.Symbol, "error", err)
		}

		if !outcome.Definitive() {
			p.Outcome = outcome
			ev := domain.ProposalEvent{Type: domain.ProposalEventDeferred, At: now, Proposal: p}
			if err := l.journal.Append(ctx, ev); err != nil {
				l.logger.Warn("proposal journal append failed", "id", p.ID, "error", err)
			}
			continue
		}

		p.Status = domain.ProposalResolved
		p.Outcome = outcome
		p.Won = outcome.WonSide() == p.Side
		p.RealizedPnl = domain.RealizedPnl(p.Won, p.EntryPrice, p.Costs())
		resolvedAt := now
		p.ResolvedAt = &resolvedAt

		ev := domain.ProposalEvent{Type: domain.ProposalEventResolved, At: now, Proposal: p}
		if err := l.journal.Append(ctx, ev); err != nil {
			l.logger.Warn("proposal journal append failed", "id", p.ID, "error", err)
			continue // keep it pending rather than lose the resolution
		}

		delete(l.pending, p.ID)
		l.logger.Info("shadow proposal resolved",
			"id", p.ID,
			"symbol", p.Symbol,
			"outcome", p.Outcome,
			"won", p.Won,
			"pnl", p.RealizedPnl)
	}
}

// dueIDs returns the pending proposals whose window has closed, oldest first
// so the journal stays chronological.
func (l *ShadowLedger) dueIDs(now time.Time) []string {
	var ids []string
	for id, p := range l.pending {
		if now.After(p.WindowEnd) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return l.pending[ids[i]].CreatedAt.Before(l.pending[ids[j]].CreatedAt)
	})
	return ids
}

// PendingCount returns the size of the in-memory pending set.
func (l *ShadowLedger) PendingCount() int {
	return len(l.pending)
}

// Stats rebuilds the aggregate performance view by re-scanning both journals.
// Idempotent and side-effect-free; safe to call from the report command while
// a controller instance owns the live pending set.
func (l *ShadowLedger) Stats(ctx context.Context) (domain.ShadowStats, error) {
	stats := domain.ShadowStats{PerSymbol: make(map[string]domain.SymbolStats)}

	err := l.decisions.ScanCycles(ctx, func(rec domain.CycleRecord) error {
		stats.Cycles++
		if stats.From.IsZero() || rec.At.Before(stats.From) {
			stats.From = rec.At
		}
		if rec.At.After(stats.To) {
			stats.To = rec.At
		}
		for _, d := range rec.Decisions {
			stats.Decisions++
			if d.Signal.VolFloorHit {
				stats.VolFloorCycles++
			}
			if d.Signal.ZClamped {
				stats.ZClampCycles++
			}
			s := stats.PerSymbol[d.Symbol]
			s.Decisions++
			stats.PerSymbol[d.Symbol] = s
		}
		return nil
	})
	if err != nil {
		return domain.ShadowStats{}, fmt.Errorf("engine.Stats: scan decisions: %w", err)
	}

	var sumEdge, sumNetEdge float64
	resolved := make(map[string]bool)

	err = l.journal.ScanEvents(ctx, func(ev domain.ProposalEvent) error {
		p := ev.Proposal
		s := stats.PerSymbol[p.Symbol]

		switch ev.Type {
		case domain.ProposalEventCreated:
			stats.Proposals++
			sumEdge += p.Edge
			sumNetEdge += p.NetEdge
			s.Proposals++

		case domain.ProposalEventResolved:
			if resolved[p.ID] {
				break // resolution is exactly-once; ignore replays
			}
			resolved[p.ID] = true
			stats.Resolved++
			stats.RealizedPnl += p.RealizedPnl
			s.Resolved++
			s.RealizedPnl += p.RealizedPnl
			if p.Won {
				stats.Wins++
				s.Wins++
			} else {
				stats.Losses++
			}
		}

		stats.PerSymbol[p.Symbol] = s
		return nil
	})
	if err != nil {
		return domain.ShadowStats{}, fmt.Errorf("engine.Stats: scan proposals: %w", err)
	}

	stats.Pending = stats.Proposals - stats.Resolved
	if stats.Resolved > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Resolved)
	}
	if stats.Proposals > 0 {
		stats.AvgEdge = sumEdge / float64(stats.Proposals)
		stats.AvgNetEdge = sumNetEdge / float64(stats.Proposals)
	}
	for sym, s := range stats.PerSymbol {
		if s.Resolved > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Resolved)
			stats.PerSymbol[sym] = s
		}
	}

	return stats, nil
}
