package ports

import (
	"context"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// OutcomeResolver consulta el resultado real de un mercado ya cerrado.
// Solo lo usa el shadow ledger.
type OutcomeResolver interface {
	// Outcome devuelve UpWon/DownWon si el mercado resolvió, Unresolved si
	// todavía no, y FetchError (junto con el error) si la consulta falló.
	Outcome(ctx context.Context, conditionID, slug string) (domain.Outcome, error)
}
