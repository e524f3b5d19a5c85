package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// MarketResolver localiza el mercado Up/Down activo para un símbolo y un
// instante dados, y devuelve su estado de libro actual.
type MarketResolver interface {
	// Resolve devuelve el estado del mercado cuya ventana cubre `now`.
	// Devuelve domain.ErrNoMarket si no hay mercado activo; resultado
	// normal por símbolo, nunca aborta el ciclo.
	Resolve(ctx context.Context, symbol string, now time.Time) (domain.MarketWindow, error)
}
