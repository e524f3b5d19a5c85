package domain

import "time"

// MarketWindow representa el estado actual de un mercado binario Up/Down
// de ventana fija (p.ej. "bitcoin up or down, 3pm ET").
type MarketWindow struct {
	Symbol      string    // símbolo de referencia (BTC, ETH...)
	ConditionID string
	Slug        string
	Up          SideQuote
	Down        SideQuote
	WindowEnd   time.Time // cierre de la ventana (resolución del mercado)
	FetchedAt   time.Time
}

// SideQuote es el estado del libro para un lado (Up o Down) del mercado.
type SideQuote struct {
	Bid     float64
	Ask     float64
	AskSize float64 // tamaño en shares apoyado en el mejor ask
}

// Mid devuelve el punto medio entre bid y ask.
// Devuelve 0 si falta alguno de los dos lados.
func (q SideQuote) Mid() float64 {
	if q.Bid == 0 || q.Ask == 0 {
		return 0
	}
	return (q.Bid + q.Ask) / 2
}

// Spread devuelve el spread (ask - bid), 0 si el quote está incompleto.
func (q SideQuote) Spread() float64 {
	if q.Bid == 0 || q.Ask == 0 {
		return 0
	}
	return q.Ask - q.Bid
}

// Valid devuelve true si el quote tiene bid y ask utilizables.
func (q SideQuote) Valid() bool {
	return q.Bid > 0 && q.Ask > 0 && q.Ask < 1 && q.Bid < q.Ask
}

// SanitySum devuelve la suma de los mids de ambos lados.
// En un mercado binario bien formado debe estar cerca de 1.0.
func (m MarketWindow) SanitySum() float64 {
	return m.Up.Mid() + m.Down.Mid()
}

// MinSpread devuelve el menor de los spreads de ambos lados.
func (m MarketWindow) MinSpread() float64 {
	up, down := m.Up.Spread(), m.Down.Spread()
	if up == 0 {
		return down
	}
	if down == 0 {
		return up
	}
	if up < down {
		return up
	}
	return down
}

// MaxAskDepth devuelve el mayor ask size de ambos lados.
func (m MarketWindow) MaxAskDepth() float64 {
	if m.Up.AskSize > m.Down.AskSize {
		return m.Up.AskSize
	}
	return m.Down.AskSize
}

// SecondsLeft devuelve los segundos que faltan hasta el cierre de la ventana.
// Devuelve 0 si la ventana ya cerró o WindowEnd no está definido.
func (m MarketWindow) SecondsLeft(now time.Time) float64 {
	if m.WindowEnd.IsZero() {
		return 0
	}
	s := m.WindowEnd.Sub(now).Seconds()
	if s < 0 {
		return 0
	}
	return s
}

// Quote devuelve el quote del lado dado.
func (m MarketWindow) Quote(side Side) SideQuote {
	if side == SideDown {
		return m.Down
	}
	return m.Up
}
