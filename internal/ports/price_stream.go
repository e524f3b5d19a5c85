package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// PriceStream es la abstracción única de transporte streaming del feed de
// precios de referencia. Los símbolos a seguir se fijan en construcción;
// la selección de transporte es una decisión de wiring, no una rama runtime.
type PriceStream interface {
	// Stream abre una conexión y empuja ticks en out hasta que la conexión
	// se cae (devuelve el error) o el contexto se cancela. El caller es
	// responsable de reconectar.
	Stream(ctx context.Context, out chan<- domain.Tick) error
}
