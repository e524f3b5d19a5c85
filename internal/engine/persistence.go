package engine

import "github.com/alejandrodnm/polyedge/internal/domain"

// PersistenceTracker exige que la señal cruda repita el mismo lado durante N
// ciclos consecutivos antes de permitir una propuesta. Un tick ruidoso aislado
// no debe disparar acción. El mapa pertenece al bucle de decisión: un único
// escritor, sin locks.
type PersistenceTracker struct {
	required int
	states   map[string]domain.PersistenceState
}

// NewPersistenceTracker crea el tracker con el número de repeticiones exigido.
func NewPersistenceTracker(required int) *PersistenceTracker {
	if required <= 0 {
		required = 3
	}
	return &PersistenceTracker{
		required: required,
		states:   make(map[string]domain.PersistenceState),
	}
}

// Observe registra el lado crudo de este ciclo y devuelve el estado resultante:
// mismo lado → incrementa; lado distinto → reinicia a (lado, 1); sin lado →
// reinicia a (None, 0).
func (t *PersistenceTracker) Observe(symbol string, side domain.Side) domain.PersistenceState {
	next := advance(t.states[symbol], side)
	t.states[symbol] = next
	return next
}

// advance es la transición pura del autómata, compartida con el análisis
// contrafactual.
func advance(prev domain.PersistenceState, side domain.Side) domain.PersistenceState {
	switch {
	case side == domain.SideNone:
		return domain.PersistenceState{Side: domain.SideNone, Count: 0}
	case side == prev.Side:
		return domain.PersistenceState{Side: side, Count: prev.Count + 1}
	default:
		return domain.PersistenceState{Side: side, Count: 1}
	}
}

// Persisted indica si un estado alcanza el umbral exigido.
func (t *PersistenceTracker) Persisted(st domain.PersistenceState) bool {
	return st.Side != domain.SideNone && st.Count >= t.required
}

// Required expone el umbral configurado.
func (t *PersistenceTracker) Required() int {
	return t.required
}

// State devuelve el estado actual de un símbolo sin mutarlo.
func (t *PersistenceTracker) State(symbol string) domain.PersistenceState {
	return t.states[symbol]
}
