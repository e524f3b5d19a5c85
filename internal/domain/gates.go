package domain

// Nombres de gates. Cada uno nombra una restricción dura independiente.
const (
	GateSanity = "SANITY"
	GateSpread = "SPREAD"
	GateDepth  = "DEPTH"
	GateTime   = "TIME"
	GateFeed   = "FEED"
)

// GateResult es el resultado de una restricción dura en un ciclo.
// Inmutable una vez producido; un gate fallido es dato, no error.
type GateResult struct {
	Name      string  `json:"name"`
	Pass      bool    `json:"pass"`
	Observed  float64 `json:"observed"`
	Threshold float64 `json:"threshold"`
}

// GatesPass devuelve true si y solo si todos los gates del conjunto pasaron.
func GatesPass(gates []GateResult) bool {
	for _, g := range gates {
		if !g.Pass {
			return false
		}
	}
	return true
}

// FirstFailing devuelve el nombre del primer gate fallido, o "" si todos
// pasaron. El orden lo fija el evaluator, así que es determinista.
func FirstFailing(gates []GateResult) string {
	for _, g := range gates {
		if !g.Pass {
			return g.Name
		}
	}
	return ""
}

// FailingGates devuelve los nombres de todos los gates fallidos, en orden de
// evaluación.
func FailingGates(gates []GateResult) []string {
	var names []string
	for _, g := range gates {
		if !g.Pass {
			names = append(names, g.Name)
		}
	}
	return names
}
