package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/feed"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// ControllerConfig are the loop-level settings.
type ControllerConfig struct {
	Symbols        []string
	Interval       time.Duration
	Duration       time.Duration // 0 = run until cancelled
	ResolveTimeout time.Duration // per network call inside a cycle
	HistorySize    int           // ring buffer of past decisions per symbol
}

// DefaultControllerConfig returns the production loop settings.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Interval:       15 * time.Second,
		ResolveTimeout: 10 * time.Second,
		HistorySize:    20,
	}
}

// Deps are the collaborators the controller drives. Runner may be nil when
// the feed is driven externally (tests, replay).
type Deps struct {
	Engine    *DecisionEngine
	Tracker   *PersistenceTracker
	Ledger    *ShadowLedger
	Buffer    *feed.Buffer
	Runner    *feed.Runner
	Markets   ports.MarketResolver
	Decisions ports.DecisionJournal
	Snapshots ports.SnapshotStore
	Notifier  ports.Notifier
	Logger    *slog.Logger

	// EffectiveConfig is embedded verbatim in every snapshot so observers
	// can see what settings produced the decisions.
	EffectiveConfig any
}

// Controller owns all cross-cycle mutable state: the persistence tracker, the
// ledger's pending set, the ring-buffer history, and the cycle counter. The
// feed goroutine only ever touches the buffer; everything else is mutated
// exclusively from within a cycle.
type Controller struct {
	cfg  ControllerConfig
	deps Deps

	cycle   int64
	history map[string][]domain.HistoryEntry
}

// NewController wires the loop. Zero-valued settings fall back to defaults.
func NewController(cfg ControllerConfig, deps Deps) *Controller {
	def := DefaultControllerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = def.ResolveTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	return &Controller{
		cfg:     cfg,
		deps:    deps,
		history: make(map[string][]domain.HistoryEntry),
	}
}

// ─────────────────────────────── Run loop ───────────────────────────────

// Run starts the feed runner, executes one immediate cycle, and then ticks on
// the configured interval until the context is cancelled or the optional
// duration elapses. Cycle errors are logged and never stop the loop.
func (c *Controller) Run(ctx context.Context) error {
	if c.deps.Runner != nil {
		go func() {
			if err := c.deps.Runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.deps.Logger.Error("feed runner stopped", "error", err)
			}
		}()
	}

	if c.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Duration)
		defer cancel()
	}

	c.deps.Logger.Info("controller started",
		"symbols", c.cfg.Symbols,
		"interval", c.cfg.Interval.String())

	if err := c.runCycle(ctx); err != nil {
		c.deps.Logger.Warn("cycle failed", "cycle", c.cycle, "error", err)
	}

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.deps.Logger.Info("controller stopped", "cycles", c.cycle)
			return nil
		case <-ticker.C:
			if err := c.runCycle(ctx); err != nil {
				c.deps.Logger.Warn("cycle failed", "cycle", c.cycle, "error", err)
			}
		}
	}
}

// RunOnce executes a single cycle. Used by manual invocation; the caller is
// responsible for having warmed the feed buffer.
func (c *Controller) RunOnce(ctx context.Context) error {
	return c.runCycle(ctx)
}

// Cycle returns the number of completed cycles.
func (c *Controller) Cycle() int64 {
	return c.cycle
}

// ─────────────────────────────── One cycle ──────────────────────────────

func (c *Controller) runCycle(ctx context.Context) error {
	start := time.Now()
	c.cycle++
	now := start

	decisions := make([]domain.Decision, 0, len(c.cfg.Symbols))
	for _, sym := range c.cfg.Symbols {
		decisions = append(decisions, c.evaluateSymbol(ctx, sym, now))
	}

	c.deps.Ledger.ResolveDue(ctx, now)

	rec := domain.CycleRecord{
		Cycle:     c.cycle,
		At:        now,
		Duration:  time.Since(start),
		Decisions: decisions,
	}
	if err := c.deps.Decisions.AppendCycle(ctx, rec); err != nil {
		return err
	}

	if err := c.deps.Snapshots.Write(ctx, c.buildSnapshot(now, decisions)); err != nil {
		c.deps.Logger.Warn("snapshot write failed", "error", err)
	}
	if c.deps.Notifier != nil {
		if err := c.deps.Notifier.NotifyCycle(ctx, rec); err != nil {
			c.deps.Logger.Warn("notify failed", "error", err)
		}
	}

	c.deps.Logger.Info("cycle complete",
		"cycle", c.cycle,
		"decisions", len(decisions),
		"pending", c.deps.Ledger.PendingCount(),
		"took", time.Since(start).String())
	return nil
}

// evaluateSymbol resolves market state and runs the engine for one symbol.
// Every failure mode becomes a decision with an explicit reason; nothing here
// can abort the cycle for other symbols.
func (c *Controller) evaluateSymbol(ctx context.Context, symbol string, now time.Time) domain.Decision {
	rctx, cancel := context.WithTimeout(ctx, c.cfg.ResolveTimeout)
	mkt, err := c.deps.Markets.Resolve(rctx, symbol, now)
	cancel()

	in := EvalInput{
		Cycle:       c.cycle,
		Now:         now,
		Symbol:      symbol,
		FeedHealthy: c.deps.Buffer.Healthy(symbol, now),
		Features:    c.deps.Buffer.Features(symbol, now),
	}
	switch {
	case err == nil:
		in.Market = mkt
		in.HaveMarket = true
	case errors.Is(err, domain.ErrNoMarket):
		// Normal between windows.
	default:
		c.deps.Logger.Warn("market resolve failed", "symbol", symbol, "error", err)
	}

	d := c.deps.Engine.Evaluate(in, c.deps.Tracker)

	if d.Kind.IsPropose() {
		p, perr := c.deps.Ledger.RecordProposal(ctx, d, mkt)
		if perr != nil {
			c.deps.Logger.Warn("proposal record failed", "symbol", symbol, "error", perr)
		} else {
			d.ProposalID = p.ID
		}
	}

	c.pushHistory(d)
	return d
}

// pushHistory appends the compact decision to the symbol's ring buffer,
// evicting the oldest entry past capacity.
func (c *Controller) pushHistory(d domain.Decision) {
	h := append(c.history[d.Symbol], d.Compact())
	if len(h) > c.cfg.HistorySize {
		h = h[len(h)-c.cfg.HistorySize:]
	}
	c.history[d.Symbol] = h
}

func (c *Controller) buildSnapshot(now time.Time, decisions []domain.Decision) domain.Snapshot {
	counts := make(map[domain.DecisionKind]int)
	for _, d := range decisions {
		counts[d.Kind]++
	}

	history := make(map[string][]domain.HistoryEntry, len(c.history))
	for sym, h := range c.history {
		history[sym] = append([]domain.HistoryEntry(nil), h...)
	}

	return domain.Snapshot{
		Cycle:            c.cycle,
		At:               now,
		Decisions:        decisions,
		DecisionCounts:   counts,
		History:          history,
		PendingProposals: c.deps.Ledger.PendingCount(),
		Config:           c.deps.EffectiveConfig,
	}
}
