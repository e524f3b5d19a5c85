package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/feed"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// warmBuffer fills 60 seconds of ticks whose log returns carry a small upward
// drift with alternating noise, so the derived features land near
// return=0.002, vol=0.0005.
func warmBuffer(symbols ...string) *feed.Buffer {
	b := feed.NewBuffer(feed.DefaultConfig())
	b.SetConnected(true)

	now := time.Now()
	drift := 0.002 / 59.0
	noise := 0.0005

	for _, sym := range symbols {
		price := 50000.0
		for i := 0; i < 60; i++ {
			b.Push(domain.Tick{Symbol: sym, Price: price, Ts: now.Add(time.Duration(i-59) * time.Second)})
			r := drift + noise
			if i%2 == 1 {
				r = drift - noise
			}
			price *= 1 + r
		}
	}
	return b
}

// flatBuffer fills 60 seconds of constant prices: zero return, zero vol.
func flatBuffer(sym string) *feed.Buffer {
	b := feed.NewBuffer(feed.DefaultConfig())
	b.SetConnected(true)
	now := time.Now()
	for i := 0; i < 60; i++ {
		b.Push(domain.Tick{Symbol: sym, Price: 50000, Ts: now.Add(time.Duration(i-59) * time.Second)})
	}
	return b
}

type testHarness struct {
	ctl       *Controller
	decisions *memDecisionJournal
	proposals *memProposalJournal
	snapshots *memSnapshotStore
	ledger    *ShadowLedger
}

func newHarness(t *testing.T, markets ports.MarketResolver, buffer *feed.Buffer, required int, symbols ...string) *testHarness {
	t.Helper()

	dj := &memDecisionJournal{}
	pj := &memProposalJournal{}
	ss := &memSnapshotStore{}
	ledger := NewShadowLedger(pj, dj, &mockOutcomeResolver{outcome: domain.OutcomeUpWon}, testLogger())

	ctl := NewController(
		ControllerConfig{Symbols: symbols, Interval: time.Second, ResolveTimeout: time.Second},
		Deps{
			Engine:    newTestEngine(),
			Tracker:   NewPersistenceTracker(required),
			Ledger:    ledger,
			Buffer:    buffer,
			Markets:   markets,
			Decisions: dj,
			Snapshots: ss,
			Logger:    testLogger(),
		},
	)
	return &testHarness{ctl: ctl, decisions: dj, proposals: pj, snapshots: ss, ledger: ledger}
}

func TestControllerTwoCycleEscalation(t *testing.T) {
	ctx := context.Background()
	markets := &mockMarketResolver{mkt: healthyMarket(time.Now())}
	h := newHarness(t, markets, warmBuffer("BTC"), 2, "BTC")

	require.NoError(t, h.ctl.RunOnce(ctx))
	require.NoError(t, h.ctl.RunOnce(ctx))

	require.Len(t, h.decisions.recs, 2)
	first := h.decisions.recs[0].Decisions[0]
	second := h.decisions.recs[1].Decisions[0]

	assert.Equal(t, domain.DecisionCandidateUp, first.Kind)
	assert.Equal(t, domain.DecisionProposeUp, second.Kind)
	assert.Greater(t, second.NetEdge, 0.0)
	assert.NotEmpty(t, second.ProposalID)

	// Proposal journaled and pending; window has not closed yet.
	require.Len(t, h.proposals.events, 1)
	assert.Equal(t, domain.ProposalEventCreated, h.proposals.events[0].Type)
	assert.Equal(t, 1, h.ledger.PendingCount())

	// Cycle counter orders the journal.
	assert.Equal(t, int64(1), h.decisions.recs[0].Cycle)
	assert.Equal(t, int64(2), h.decisions.recs[1].Cycle)

	// Snapshot reflects the latest cycle.
	assert.Equal(t, 2, h.snapshots.writes)
	assert.Equal(t, int64(2), h.snapshots.last.Cycle)
	assert.Equal(t, 1, h.snapshots.last.PendingProposals)
	assert.Len(t, h.snapshots.last.History["BTC"], 2)
}

func TestControllerVolFloorScenario(t *testing.T) {
	ctx := context.Background()
	markets := &mockMarketResolver{mkt: healthyMarket(time.Now())}
	h := newHarness(t, markets, flatBuffer("BTC"), 1, "BTC")

	require.NoError(t, h.ctl.RunOnce(ctx))

	d := h.decisions.recs[0].Decisions[0]
	assert.Equal(t, domain.DecisionDoNothing, d.Kind)
	assert.Equal(t, domain.BlockerNoSignal, d.DominantBlocker)
	assert.True(t, d.Signal.VolFloorHit)
	assert.Contains(t, d.Reason, "volatility")
}

func TestControllerSanityScenario(t *testing.T) {
	ctx := context.Background()
	mkt := healthyMarket(time.Now())
	mkt.Down = domain.SideQuote{Bid: 0.79, Ask: 0.81, AskSize: 400} // sum 1.20
	h := newHarness(t, &mockMarketResolver{mkt: mkt}, warmBuffer("BTC"), 1, "BTC")

	require.NoError(t, h.ctl.RunOnce(ctx))

	d := h.decisions.recs[0].Decisions[0]
	assert.Equal(t, domain.DecisionDoNothing, d.Kind)
	assert.Equal(t, domain.GateSanity, d.DominantBlocker)
}

func TestControllerNoMarketIsSoft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &mockMarketResolver{err: domain.ErrNoMarket}, warmBuffer("BTC"), 1, "BTC")

	require.NoError(t, h.ctl.RunOnce(ctx))

	d := h.decisions.recs[0].Decisions[0]
	assert.Equal(t, domain.DecisionDoNothing, d.Kind)
	assert.Equal(t, domain.BlockerNoMarket, d.DominantBlocker)
}

func TestControllerSymbolIsolation(t *testing.T) {
	ctx := context.Background()
	markets := &symbolMarketResolver{mkts: map[string]domain.MarketWindow{
		"BTC": healthyMarket(time.Now()),
	}}
	h := newHarness(t, markets, warmBuffer("BTC", "ETH"), 1, "BTC", "ETH")

	require.NoError(t, h.ctl.RunOnce(ctx))

	rec := h.decisions.recs[0]
	require.Len(t, rec.Decisions, 2)
	assert.Equal(t, domain.DecisionProposeUp, rec.Decisions[0].Kind)
	assert.Equal(t, domain.BlockerNoMarket, rec.Decisions[1].DominantBlocker)
}

func TestControllerResolvesDueProposals(t *testing.T) {
	ctx := context.Background()
	mkt := healthyMarket(time.Now())
	mkt.WindowEnd = time.Now().Add(95 * time.Second)
	h := newHarness(t, &mockMarketResolver{mkt: mkt}, warmBuffer("BTC"), 1, "BTC")

	// 95s left: TIME gate passes but the exit threshold catches it, so no new
	// proposal fires; seed one directly with a closed window instead.
	closed := mkt
	closed.WindowEnd = time.Now().Add(-time.Minute)
	_, err := h.ledger.RecordProposal(ctx, proposeDecision(time.Now()), closed)
	require.NoError(t, err)

	require.NoError(t, h.ctl.RunOnce(ctx))

	assert.Equal(t, 0, h.ledger.PendingCount())
	require.Len(t, h.proposals.events, 2)
	assert.Equal(t, domain.ProposalEventResolved, h.proposals.events[1].Type)
}

func TestControllerHistoryRing(t *testing.T) {
	ctx := context.Background()
	markets := &mockMarketResolver{mkt: healthyMarket(time.Now())}
	h := newHarness(t, markets, warmBuffer("BTC"), 1, "BTC")
	h.ctl.cfg.HistorySize = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, h.ctl.RunOnce(ctx))
	}

	hist := h.snapshots.last.History["BTC"]
	require.Len(t, hist, 3)
	assert.Equal(t, int64(3), hist[0].Cycle)
	assert.Equal(t, int64(5), hist[2].Cycle)
}
