package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Notifier presenta el resultado de cada ciclo al operador.
type Notifier interface {
	// NotifyCycle muestra las decisiones del ciclo.
	// En la implementación de consola, una línea compacta o tabla completa.
	NotifyCycle(ctx context.Context, rec domain.CycleRecord) error
}
