package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/polyedge/config"
	"github.com/alejandrodnm/polyedge/internal/adapters/journal"
	"github.com/alejandrodnm/polyedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyedge/internal/engine"
)

// runReport reconstruye las estadísticas del shadow ledger releyendo los
// journals y las imprime. No toca el estado del controller: los journals son
// append-only y el escaneo es de solo lectura.
func runReport(ctx context.Context, cfg *config.Config, notifier *notify.Console) {
	decisions, err := journal.NewDecisionLog(cfg.Journal.DecisionPath)
	if err != nil {
		slog.Error("failed to open decision journal", "err", err)
		os.Exit(1)
	}
	defer decisions.Close()

	proposals, err := journal.NewProposalLog(cfg.Journal.ProposalPath)
	if err != nil {
		slog.Error("failed to open proposal journal", "err", err)
		os.Exit(1)
	}
	defer proposals.Close()

	ledger := engine.NewShadowLedger(proposals, decisions, nil, slog.Default())

	stats, err := ledger.Stats(ctx)
	if err != nil {
		slog.Error("failed to aggregate stats", "err", err)
		os.Exit(1)
	}

	notifier.PrintShadowReport(stats)
}
