package notify

import (
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// PrintShadowReport imprime el rendimiento acumulado del shadow ledger.
func (c *Console) PrintShadowReport(stats domain.ShadowStats) {
	fmt.Fprintf(c.out, "\n=== SHADOW REPORT ===\n")
	if !stats.From.IsZero() {
		fmt.Fprintf(c.out, "  Periodo: %s → %s\n",
			stats.From.Format("2006-01-02 15:04"),
			stats.To.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(c.out, "  Ciclos: %d  decisiones: %d  filtrados vol-floor: %d  z-clamp: %d\n",
		stats.Cycles, stats.Decisions, stats.VolFloorCycles, stats.ZClampCycles)

	if stats.Proposals == 0 {
		fmt.Fprintf(c.out, "\n  Sin propuestas todavía.\n\n")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Decisions", "Proposals", "Resolved", "Wins", "Win%", "PnL/share")

	symbols := make([]string, 0, len(stats.PerSymbol))
	for sym := range stats.PerSymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		s := stats.PerSymbol[sym]
		table.Append(
			sym,
			fmt.Sprintf("%d", s.Decisions),
			fmt.Sprintf("%d", s.Proposals),
			fmt.Sprintf("%d", s.Resolved),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%.1f%%", s.WinRate*100),
			fmt.Sprintf("%+.4f", s.RealizedPnl),
		)
	}

	table.Render()

	fmt.Fprintf(c.out, "\n  Propuestas: %d (%d resueltas, %d pendientes)\n",
		stats.Proposals, stats.Resolved, stats.Pending)
	fmt.Fprintf(c.out, "  Win rate: %.1f%% (%d-%d)  edge medio: %.4f  net edge medio: %.4f\n",
		stats.WinRate*100, stats.Wins, stats.Losses, stats.AvgEdge, stats.AvgNetEdge)
	fmt.Fprintf(c.out, "  PnL realizado: %+.4f por share propuesto\n", stats.RealizedPnl)

	switch {
	case stats.Resolved == 0:
		fmt.Fprintf(c.out, "\n  VEREDICTO: SIN DATOS: ninguna propuesta resuelta todavía\n\n")
	case stats.RealizedPnl > 0:
		fmt.Fprintf(c.out, "\n  VEREDICTO: EDGE POSITIVO en %d mercados resueltos\n\n", stats.Resolved)
	default:
		fmt.Fprintf(c.out, "\n  VEREDICTO: SIN EDGE con la configuración actual\n\n")
	}
}
