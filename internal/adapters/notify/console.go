package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyCycle imprime el resultado del ciclo en el modo configurado.
func (c *Console) NotifyCycle(_ context.Context, rec domain.CycleRecord) error {
	if c.table {
		c.printFull(rec)
	} else {
		c.printCompact(rec)
	}
	return nil
}

// printCompact imprime el ciclo en una sola línea.
func (c *Console) printCompact(rec domain.CycleRecord) {
	now := rec.At.Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] c%d", now, rec.Cycle)

	for _, d := range rec.Decisions {
		fmt.Fprintf(&sb, " | %s %s", glyph(d.Kind), d.Symbol)
		switch {
		case d.Kind.IsPropose():
			fmt.Fprintf(&sb, " %s ne%.3f@%.2f", d.Side, d.NetEdge, d.EntryPrice)
		case d.Kind == domain.DecisionCandidateUp || d.Kind == domain.DecisionCandidateDown:
			fmt.Fprintf(&sb, " %s n=%d", d.Side, d.Persistence.Count)
		case d.Kind == domain.DecisionExit:
			fmt.Fprintf(&sb, " exit %.0fs", d.SecondsLeft)
		default:
			fmt.Fprintf(&sb, " %s", d.DominantBlocker)
		}
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla con el trail numérico completo.
func (c *Console) printFull(rec domain.CycleRecord) {
	now := rec.At.Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] cycle %d, %d symbols, took %s\n",
		now, rec.Cycle, len(rec.Decisions), rec.Duration.Round(time.Millisecond))

	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Decision", "p", "z", "Edge", "Net", "Entry", "Left", "Blocker", "Reason")

	for _, d := range rec.Decisions {
		table.Append(
			d.Symbol,
			string(d.Kind),
			fmt.Sprintf("%.3f", d.Signal.Probability),
			fmt.Sprintf("%.2f", d.Signal.Z),
			fmt.Sprintf("%.4f", d.Edge),
			fmt.Sprintf("%.4f", d.NetEdge),
			fmt.Sprintf("%.3f", d.EntryPrice),
			fmt.Sprintf("%.0fs", d.SecondsLeft),
			d.DominantBlocker,
			d.Reason,
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  p = prob(Up) | Edge = p-mid del lado elegido | Net = edge - fees - slip - buffer")
	fmt.Fprintln(c.out, "  Blocker = primera comprobación que bloqueó la propuesta")
}

func glyph(k domain.DecisionKind) string {
	switch k {
	case domain.DecisionProposeUp:
		return "▲"
	case domain.DecisionProposeDown:
		return "▼"
	case domain.DecisionCandidateUp:
		return "△"
	case domain.DecisionCandidateDown:
		return "▽"
	case domain.DecisionExit:
		return "✕"
	default:
		return "·"
	}
}
