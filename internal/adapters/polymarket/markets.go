package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	booksPath        = "/books"
)

// Resolver implementa ports.MarketResolver sobre Gamma (descubrimiento por
// slug) y el CLOB (orderbooks). Un "no hay mercado" es un resultado normal
// entre ventanas, no un error del adaptador.
type Resolver struct {
	client   *Client
	prefixes map[string]string // símbolo → prefijo de slug ("BTC" → "bitcoin-up-or-down")
	logger   *slog.Logger
}

// NewResolver crea el resolver con el mapeo símbolo→prefijo de slug.
func NewResolver(client *Client, prefixes map[string]string, logger *slog.Logger) *Resolver {
	return &Resolver{client: client, prefixes: prefixes, logger: logger}
}

// Resolve localiza el mercado horario vigente para el símbolo y devuelve el
// estado del libro de ambos lados.
func (r *Resolver) Resolve(ctx context.Context, symbol string, now time.Time) (domain.MarketWindow, error) {
	prefix, ok := r.prefixes[symbol]
	if !ok {
		return domain.MarketWindow{}, fmt.Errorf("polymarket.Resolve: no slug prefix for symbol %q", symbol)
	}

	slug := windowSlug(prefix, now)
	gm, err := r.fetchBySlug(ctx, slug)
	if err != nil {
		return domain.MarketWindow{}, err
	}

	upToken, downToken, err := tokenPair(gm)
	if err != nil {
		return domain.MarketWindow{}, fmt.Errorf("polymarket.Resolve: %s: %w", slug, err)
	}

	books, err := r.fetchBooks(ctx, upToken, downToken)
	if err != nil {
		return domain.MarketWindow{}, fmt.Errorf("polymarket.Resolve: %s: %w", slug, err)
	}

	end, ok := parseEndDate(gm.EndDateISO)
	if !ok {
		end = windowEnd(now)
	}

	mkt := domain.MarketWindow{
		Symbol:      symbol,
		ConditionID: gm.ConditionID,
		Slug:        gm.Slug,
		Up:          quoteFromBook(books[upToken]),
		Down:        quoteFromBook(books[downToken]),
		WindowEnd:   end,
		FetchedAt:   now,
	}

	r.logger.Debug("market resolved",
		"symbol", symbol,
		"slug", gm.Slug,
		"up_mid", mkt.Up.Mid(),
		"down_mid", mkt.Down.Mid())
	return mkt, nil
}

// fetchBySlug busca el mercado en Gamma. Un resultado vacío o un mercado ya
// cerrado se reportan como domain.ErrNoMarket.
func (r *Resolver) fetchBySlug(ctx context.Context, slug string) (gammaMarket, error) {
	u := fmt.Sprintf("%s%s?slug=%s", r.client.gammaBase, gammaMarketsPath, url.QueryEscape(slug))

	var resp gammaMarketsResponse
	if err := r.client.get(ctx, r.client.gammaLimiter, u, &resp); err != nil {
		return gammaMarket{}, fmt.Errorf("polymarket.fetchBySlug: %s: %w", slug, err)
	}
	if len(resp) == 0 {
		return gammaMarket{}, domain.ErrNoMarket
	}

	gm := resp[0]
	if gm.Closed || !gm.Active {
		return gammaMarket{}, domain.ErrNoMarket
	}
	return gm, nil
}

// fetchBooks obtiene los orderbooks de ambos tokens en un único POST batch.
func (r *Resolver) fetchBooks(ctx context.Context, tokens ...string) (map[string]orderBookResponse, error) {
	body := make([]orderBookRequest, len(tokens))
	for i, t := range tokens {
		body[i] = orderBookRequest{TokenID: t}
	}

	var resp []orderBookResponse
	u := r.client.clobBase + booksPath
	if err := r.client.post(ctx, r.client.booksLimiter, u, body, &resp); err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}

	books := make(map[string]orderBookResponse, len(resp))
	for _, b := range resp {
		books[b.AssetID] = b
	}
	return books, nil
}
