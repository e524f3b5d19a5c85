package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/polyedge/config"
	"github.com/alejandrodnm/polyedge/internal/adapters/binance"
	"github.com/alejandrodnm/polyedge/internal/adapters/journal"
	"github.com/alejandrodnm/polyedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/engine"
	"github.com/alejandrodnm/polyedge/internal/feed"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one decision cycle and exit")
	report := flag.Bool("report", false, "print shadow ledger performance and exit")
	interval := flag.Duration("interval", 0, "cycle interval (overrides config)")
	duration := flag.Duration("duration", 0, "total run duration, 0 = unbounded (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full per-cycle table (default: compact 1-line)")
	volFloor := flag.Float64("vol-floor", 0, "volatility floor (overrides config)")
	volMult := flag.Float64("vol-mult", 0, "volatility multiplier (overrides config)")
	window := flag.Duration("window", 0, "feature window length (overrides config)")
	zClamp := flag.Float64("z-clamp", 0, "z-score clamp bound (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *interval > 0 {
		cfg.Controller.IntervalSeconds = int(interval.Seconds())
	}
	if *duration > 0 {
		cfg.Controller.DurationMinutes = int(duration.Minutes())
	}
	if *volFloor > 0 {
		cfg.Signal.VolFloor = *volFloor
	}
	if *volMult > 0 {
		cfg.Signal.VolMult = *volMult
	}
	if *window > 0 {
		cfg.Feed.WindowSeconds = int(window.Seconds())
	}
	if *zClamp > 0 {
		cfg.Signal.ZClamp = *zClamp
	}
	setupLogger(cfg.Log)

	// Una curva de costes mal configurada corrompe todas las decisiones:
	// verificación fatal antes de arrancar nada.
	costs := domain.CostModel{
		FeeRate:     cfg.Costs.FeeRate,
		Exponent:    cfg.Costs.Exponent,
		SlipPerUnit: cfg.Costs.SlipPerUnit,
		SlipMax:     cfg.Costs.SlipMax,
	}
	if err := costs.VerifyFeeCurve(); err != nil {
		slog.Error("cost model self-check failed", "err", err)
		os.Exit(1)
	}

	notifier := notify.NewConsole(*table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *report {
		runReport(ctx, cfg, notifier)
		return
	}

	slog.Info("polyedge starting",
		"config", *configPath,
		"symbols", cfg.TrackedSymbols(),
		"interval", cfg.CycleInterval(),
		"once", *once,
	)

	ctl, closeFn, err := buildController(cfg, costs, notifier)
	if err != nil {
		slog.Error("wiring failed", "err", err)
		os.Exit(1)
	}
	defer closeFn()

	if *once {
		if err := ctl.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := ctl.Run(ctx); err != nil {
		slog.Error("controller exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polyedge stopped cleanly")
}

// buildController cablea el controller completo a partir de la configuración.
func buildController(cfg *config.Config, costs domain.CostModel, notifier *notify.Console) (*engine.Controller, func(), error) {
	logger := slog.Default()

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)
	markets := polymarket.NewResolver(client, cfg.SlugPrefixes(), logger)
	outcomes := polymarket.NewOutcomeResolver(client, logger)

	decisions, err := journal.NewDecisionLog(cfg.Journal.DecisionPath)
	if err != nil {
		return nil, nil, err
	}
	proposals, err := journal.NewProposalLog(cfg.Journal.ProposalPath)
	if err != nil {
		decisions.Close()
		return nil, nil, err
	}
	snapshots, err := journal.NewSnapshotFile(cfg.Journal.SnapshotPath)
	if err != nil {
		decisions.Close()
		proposals.Close()
		return nil, nil, err
	}

	buffer := feed.NewBuffer(feed.Config{
		Window:     time.Duration(cfg.Feed.WindowSeconds) * time.Second,
		MinSamples: cfg.Feed.MinSamples,
		StaleAfter: time.Duration(cfg.Feed.StaleAfterSeconds) * time.Second,
	})

	stream, err := binance.NewStream(cfg.FeedStreams(), logger)
	if err != nil {
		decisions.Close()
		proposals.Close()
		return nil, nil, err
	}
	runner := feed.NewRunner(stream, buffer, feed.RunnerConfig{
		BackoffBase: time.Duration(cfg.Feed.BackoffBaseSeconds) * time.Second,
		BackoffMax:  time.Duration(cfg.Feed.BackoffMaxSeconds) * time.Second,
		StaleAfter:  time.Duration(cfg.Feed.StaleAfterSeconds) * time.Second,
	}, logger)

	eng := engine.NewDecisionEngine(
		engine.Config{
			MinEdge:       cfg.Controller.MinEdge,
			MinNetEdge:    cfg.Controller.MinNetEdge,
			SafetyBuffer:  cfg.Controller.SafetyBuffer,
			ExitThreshold: cfg.Controller.ExitThresholdSeconds,
		},
		engine.SignalConfig{
			K:        cfg.Signal.K,
			VolFloor: cfg.Signal.VolFloor,
			VolMult:  cfg.Signal.VolMult,
			ZClamp:   cfg.Signal.ZClamp,
			PMin:     cfg.Signal.PMin,
			PMax:     cfg.Signal.PMax,
		},
		costs,
		engine.GateConfig{
			SanityTolerance: cfg.Gates.SanityTolerance,
			MaxSpread:       cfg.Gates.MaxSpread,
			MinDepth:        cfg.Gates.MinDepth,
			MinTimeLeft:     cfg.Gates.MinTimeSeconds,
		},
	)

	ledger := engine.NewShadowLedger(proposals, decisions, outcomes, logger)

	ctl := engine.NewController(
		engine.ControllerConfig{
			Symbols:        cfg.TrackedSymbols(),
			Interval:       cfg.CycleInterval(),
			Duration:       cfg.RunDuration(),
			ResolveTimeout: cfg.ResolveTimeout(),
			HistorySize:    cfg.Controller.HistorySize,
		},
		engine.Deps{
			Engine:          eng,
			Tracker:         engine.NewPersistenceTracker(cfg.Controller.RequiredCount),
			Ledger:          ledger,
			Buffer:          buffer,
			Runner:          runner,
			Markets:         markets,
			Decisions:       decisions,
			Snapshots:       snapshots,
			Notifier:        notifier,
			Logger:          logger,
			EffectiveConfig: cfg,
		},
	)

	closeFn := func() {
		decisions.Close()
		proposals.Close()
	}
	return ctl, closeFn, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
