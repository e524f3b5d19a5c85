package engine

import (
	"math"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// GateConfig son los umbrales de las comprobaciones duras.
type GateConfig struct {
	SanityTolerance float64 // |sanitySum - 1| máximo admisible
	MaxSpread       float64 // spread mínimo entre ambos lados, tope
	MinDepth        float64 // ask size máximo entre ambos lados, mínimo
	MinTimeLeft     float64 // segundos restantes mínimos de la ventana
}

// DefaultGateConfig devuelve los umbrales de producción.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		SanityTolerance: 0.05,
		MaxSpread:       0.10,
		MinDepth:        50,
		MinTimeLeft:     60,
	}
}

// GateEvaluator evalúa todas las comprobaciones de forma independiente y sin
// cortocircuito: un gate que falla es un dato, nunca un error.
type GateEvaluator struct {
	cfg GateConfig
}

// NewGateEvaluator crea el evaluador con los umbrales dados, rellenando con
// los valores por defecto los campos a cero.
func NewGateEvaluator(cfg GateConfig) *GateEvaluator {
	def := DefaultGateConfig()
	if cfg.SanityTolerance == 0 {
		cfg.SanityTolerance = def.SanityTolerance
	}
	if cfg.MaxSpread == 0 {
		cfg.MaxSpread = def.MaxSpread
	}
	if cfg.MinDepth == 0 {
		cfg.MinDepth = def.MinDepth
	}
	if cfg.MinTimeLeft == 0 {
		cfg.MinTimeLeft = def.MinTimeLeft
	}
	return &GateEvaluator{cfg: cfg}
}

// Evaluate produce el resultado de cada gate en orden fijo. El orden define la
// precedencia del blocker dominante cuando más de uno falla.
func (g *GateEvaluator) Evaluate(mkt domain.MarketWindow, feedHealthy bool, now time.Time) []domain.GateResult {
	return g.evaluate(mkt, feedHealthy, now, g.cfg.MaxSpread)
}

func (g *GateEvaluator) evaluate(mkt domain.MarketWindow, feedHealthy bool, now time.Time, maxSpread float64) []domain.GateResult {
	sanity := mkt.SanitySum()
	spread := mkt.MinSpread()
	depth := mkt.MaxAskDepth()
	left := mkt.SecondsLeft(now)

	feedObserved := 0.0
	if feedHealthy {
		feedObserved = 1.0
	}

	return []domain.GateResult{
		{
			Name:      domain.GateSanity,
			Pass:      math.Abs(sanity-1.0) <= g.cfg.SanityTolerance,
			Observed:  sanity,
			Threshold: g.cfg.SanityTolerance,
		},
		{
			Name:      domain.GateSpread,
			Pass:      spread <= maxSpread,
			Observed:  spread,
			Threshold: maxSpread,
		},
		{
			Name:      domain.GateDepth,
			Pass:      depth >= g.cfg.MinDepth,
			Observed:  depth,
			Threshold: g.cfg.MinDepth,
		},
		{
			Name:      domain.GateTime,
			Pass:      left >= g.cfg.MinTimeLeft,
			Observed:  left,
			Threshold: g.cfg.MinTimeLeft,
		},
		{
			Name:      domain.GateFeed,
			Pass:      feedHealthy,
			Observed:  feedObserved,
			Threshold: 1.0,
		},
	}
}
