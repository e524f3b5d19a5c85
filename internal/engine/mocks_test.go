package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Hand-rolled mocks for the ports interfaces.

type memDecisionJournal struct {
	recs []domain.CycleRecord
}

func (j *memDecisionJournal) AppendCycle(_ context.Context, rec domain.CycleRecord) error {
	j.recs = append(j.recs, rec)
	return nil
}

func (j *memDecisionJournal) ScanCycles(_ context.Context, fn func(domain.CycleRecord) error) error {
	for _, rec := range j.recs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (j *memDecisionJournal) Close() error { return nil }

type memProposalJournal struct {
	events []domain.ProposalEvent
}

func (j *memProposalJournal) Append(_ context.Context, ev domain.ProposalEvent) error {
	j.events = append(j.events, ev)
	return nil
}

func (j *memProposalJournal) ScanEvents(_ context.Context, fn func(domain.ProposalEvent) error) error {
	for _, ev := range j.events {
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

func (j *memProposalJournal) Close() error { return nil }

type memSnapshotStore struct {
	last   domain.Snapshot
	writes int
}

func (s *memSnapshotStore) Write(_ context.Context, snap domain.Snapshot) error {
	s.last = snap
	s.writes++
	return nil
}

type mockMarketResolver struct {
	mkt domain.MarketWindow
	err error
}

func (r *mockMarketResolver) Resolve(_ context.Context, _ string, _ time.Time) (domain.MarketWindow, error) {
	if r.err != nil {
		return domain.MarketWindow{}, r.err
	}
	return r.mkt, nil
}

// symbolMarketResolver keys markets by symbol; missing symbols behave like a
// closed window.
type symbolMarketResolver struct {
	mkts map[string]domain.MarketWindow
}

func (r *symbolMarketResolver) Resolve(_ context.Context, symbol string, _ time.Time) (domain.MarketWindow, error) {
	mkt, ok := r.mkts[symbol]
	if !ok {
		return domain.MarketWindow{}, domain.ErrNoMarket
	}
	return mkt, nil
}

type mockOutcomeResolver struct {
	outcome domain.Outcome
	err     error
	calls   int
}

func (r *mockOutcomeResolver) Outcome(_ context.Context, _, _ string) (domain.Outcome, error) {
	r.calls++
	if r.err != nil {
		return domain.OutcomeFetchError, r.err
	}
	return r.outcome, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
