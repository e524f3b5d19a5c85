package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// DecisionJournal is the append-only per-cycle decision log. One line per
// cycle; append order matches decision order; never rewritten.
type DecisionJournal interface {
	AppendCycle(ctx context.Context, rec domain.CycleRecord) error

	// ScanCycles replays the journal from the start, calling fn per record.
	// Used by stats aggregation; side-effect-free.
	ScanCycles(ctx context.Context, fn func(domain.CycleRecord) error) error

	Close() error
}

// ProposalJournal is the append-only shadow proposal lifecycle log.
type ProposalJournal interface {
	Append(ctx context.Context, ev domain.ProposalEvent) error
	ScanEvents(ctx context.Context, fn func(domain.ProposalEvent) error) error
	Close() error
}

// SnapshotStore overwrites the single controller state snapshot consumed by
// external observers. Not used for recovery.
type SnapshotStore interface {
	Write(ctx context.Context, snap domain.Snapshot) error
}
