package polymarket

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// etLocation es la zona horaria de los mercados horarios de Polymarket.
// Los slugs se generan siempre en hora del este.
var etLocation = mustLoadET()

func mustLoadET() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Sprintf("polymarket: load ET location: %v", err))
	}
	return loc
}

// windowSlug construye el slug del mercado horario vigente en el instante
// dado, p.ej. "bitcoin-up-or-down-august-31-3pm-et".
func windowSlug(prefix string, t time.Time) string {
	et := t.In(etLocation)
	return fmt.Sprintf("%s-%s-%d-%s-et",
		prefix,
		strings.ToLower(et.Month().String()),
		et.Day(),
		hourLabel(et.Hour()),
	)
}

// hourLabel convierte una hora 0-23 al formato de los slugs ("12am", "3pm").
func hourLabel(hour int) string {
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d%s", h, suffix)
}

// windowEnd devuelve el cierre de la ventana horaria que contiene el instante.
func windowEnd(t time.Time) time.Time {
	et := t.In(etLocation)
	return et.Truncate(time.Hour).Add(time.Hour)
}

// tokenPair extrae los dos token IDs del campo clobTokenIds de Gamma, que
// llega como un array JSON embebido en un string.
func tokenPair(gm gammaMarket) (up, down string, err error) {
	var ids []string
	if err := json.Unmarshal([]byte(gm.ClobTokenIDs), &ids); err != nil {
		return "", "", fmt.Errorf("parse clobTokenIds: %w", err)
	}
	if len(ids) != 2 {
		return "", "", fmt.Errorf("expected 2 tokens, got %d", len(ids))
	}
	// El orden de los tokens sigue al campo outcomes ("Up" primero salvo
	// que Gamma diga lo contrario).
	if upIndex(gm) == 1 {
		return ids[1], ids[0], nil
	}
	return ids[0], ids[1], nil
}

// upIndex devuelve la posición del outcome "Up" en el array de outcomes.
func upIndex(gm gammaMarket) int {
	var outcomes []string
	if err := json.Unmarshal([]byte(gm.Outcomes), &outcomes); err != nil {
		return 0
	}
	for i, o := range outcomes {
		if strings.EqualFold(o, "Up") {
			return i
		}
	}
	return 0
}

// resolvedOutcome traduce outcomePrices de un mercado cerrado a un resultado.
// Los precios llegan como strings ("1" ganador, "0" perdedor).
func resolvedOutcome(gm gammaMarket) domain.Outcome {
	if !gm.Closed {
		return domain.OutcomeUnresolved
	}

	var prices []string
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &prices); err != nil || len(prices) != 2 {
		return domain.OutcomeUnresolved
	}

	up := upIndex(gm)
	upPrice, err1 := strconv.ParseFloat(prices[up], 64)
	downPrice, err2 := strconv.ParseFloat(prices[1-up], 64)
	if err1 != nil || err2 != nil {
		return domain.OutcomeUnresolved
	}

	switch {
	case upPrice > 0.5 && downPrice < 0.5:
		return domain.OutcomeUpWon
	case downPrice > 0.5 && upPrice < 0.5:
		return domain.OutcomeDownWon
	default:
		return domain.OutcomeUnresolved
	}
}

// quoteFromBook reduce un orderbook raw al mejor bid/ask con su tamaño.
func quoteFromBook(r orderBookResponse) domain.SideQuote {
	var q domain.SideQuote
	for _, b := range r.Bids {
		price, size := parseLevel(b)
		if price <= 0 || size <= 0 {
			continue
		}
		if price > q.Bid {
			q.Bid = price
		}
	}
	for _, a := range r.Asks {
		price, size := parseLevel(a)
		if price <= 0 || size <= 0 {
			continue
		}
		if q.Ask == 0 || price < q.Ask {
			q.Ask = price
			q.AskSize = size
		}
	}
	return q
}

func parseLevel(e bookEntryRaw) (price, size float64) {
	price, _ = strconv.ParseFloat(e.Price, 64)
	size, _ = strconv.ParseFloat(e.Size, 64)
	return price, size
}

// parseEndDate intenta los formatos de fecha que usa Polymarket.
func parseEndDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
