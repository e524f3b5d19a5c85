package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// OutcomeResolver implementa ports.OutcomeResolver consultando la resolución
// del mercado en Gamma. Un fallo de red devuelve FetchError junto con el
// error: la propuesta queda pendiente y se reintenta en un ciclo posterior.
type OutcomeResolver struct {
	client *Client
	logger *slog.Logger
}

// NewOutcomeResolver crea el resolver de outcomes.
func NewOutcomeResolver(client *Client, logger *slog.Logger) *OutcomeResolver {
	return &OutcomeResolver{client: client, logger: logger}
}

// Outcome devuelve el resultado realizado del mercado. Prefiere la búsqueda
// por condition ID y cae al slug si falta.
func (r *OutcomeResolver) Outcome(ctx context.Context, conditionID, slug string) (domain.Outcome, error) {
	var u string
	switch {
	case conditionID != "":
		u = fmt.Sprintf("%s%s?condition_ids=%s", r.client.gammaBase, gammaMarketsPath, url.QueryEscape(conditionID))
	case slug != "":
		u = fmt.Sprintf("%s%s?slug=%s", r.client.gammaBase, gammaMarketsPath, url.QueryEscape(slug))
	default:
		return domain.OutcomeFetchError, fmt.Errorf("polymarket.Outcome: no market identifier")
	}

	var resp gammaMarketsResponse
	if err := r.client.get(ctx, r.client.gammaLimiter, u, &resp); err != nil {
		return domain.OutcomeFetchError, fmt.Errorf("polymarket.Outcome: %w", err)
	}
	if len(resp) == 0 {
		r.logger.Warn("market not found for outcome", "condition_id", conditionID, "slug", slug)
		return domain.OutcomeUnresolved, nil
	}

	return resolvedOutcome(resp[0]), nil
}
