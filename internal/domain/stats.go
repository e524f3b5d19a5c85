package domain

import "time"

// ShadowStats agrega el rendimiento acumulado del shadow ledger, recalculado
// re-escaneando los journals (idempotente, sin efectos secundarios).
type ShadowStats struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Cycles    int `json:"cycles"`
	Decisions int `json:"decisions"`

	Proposals int `json:"proposals"`
	Resolved  int `json:"resolved"`
	Pending   int `json:"pending"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`

	WinRate     float64 `json:"win_rate"`
	AvgEdge     float64 `json:"avg_edge"`
	AvgNetEdge  float64 `json:"avg_net_edge"`
	RealizedPnl float64 `json:"realized_pnl"`

	// Ciclos filtrados por las salvaguardas numéricas.
	VolFloorCycles int `json:"vol_floor_cycles"`
	ZClampCycles   int `json:"z_clamp_cycles"`

	PerSymbol map[string]SymbolStats `json:"per_symbol,omitempty"`
}

// SymbolStats es el corte por símbolo de ShadowStats.
type SymbolStats struct {
	Decisions   int     `json:"decisions"`
	Proposals   int     `json:"proposals"`
	Resolved    int     `json:"resolved"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	RealizedPnl float64 `json:"realized_pnl"`
}
