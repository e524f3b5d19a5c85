package engine

import (
	"math"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// SignalConfig are the tunables of the return-over-vol signal.
type SignalConfig struct {
	K        float64 // signal gain applied to the normalized return
	VolFloor float64 // raw vol below this sets the floor flag
	VolMult  float64 // multiplier on the floor; effective vol >= VolFloor*VolMult
	Epsilon  float64 // denominator guard
	ZClamp   float64 // |z| cap before the sigmoid
	PMin     float64 // lower probability clamp
	PMax     float64 // upper probability clamp
}

// DefaultSignalConfig returns the production signal settings.
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		K:        1.0,
		VolFloor: 0.0002,
		VolMult:  1.0,
		Epsilon:  1e-9,
		ZClamp:   4.0,
		PMin:     0.01,
		PMax:     0.99,
	}
}

// SignalModel maps feed features to a probability that the window resolves Up.
// It is stateless; all state lives in the feature snapshot it receives.
type SignalModel struct {
	cfg SignalConfig
}

// NewSignalModel builds a model, backfilling zero-valued settings with the
// defaults so a partially filled config file stays safe.
func NewSignalModel(cfg SignalConfig) *SignalModel {
	def := DefaultSignalConfig()
	if cfg.K == 0 {
		cfg.K = def.K
	}
	if cfg.VolFloor == 0 {
		cfg.VolFloor = def.VolFloor
	}
	if cfg.VolMult == 0 {
		cfg.VolMult = def.VolMult
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.ZClamp == 0 {
		cfg.ZClamp = def.ZClamp
	}
	if cfg.PMin == 0 {
		cfg.PMin = def.PMin
	}
	if cfg.PMax == 0 {
		cfg.PMax = def.PMax
	}
	return &SignalModel{cfg: cfg}
}

// Evaluate turns a feature snapshot into a clamped Up probability, recording
// which clamps fired so the decision trail can explain itself.
func (m *SignalModel) Evaluate(feat domain.FeatureSnapshot) domain.SignalResult {
	// The flag tracks the raw vol against the floor; the multiplier only
	// scales the floor used as the effective minimum.
	volFloorHit := feat.Vol60 < m.cfg.VolFloor
	effVol := feat.Vol60
	if floor := m.cfg.VolFloor * m.cfg.VolMult; effVol < floor {
		effVol = floor
	}

	rawZ := m.cfg.K * feat.Return60 / (effVol + m.cfg.Epsilon)

	z := rawZ
	zClamped := false
	if z > m.cfg.ZClamp {
		z = m.cfg.ZClamp
		zClamped = true
	} else if z < -m.cfg.ZClamp {
		z = -m.cfg.ZClamp
		zClamped = true
	}

	p := sigmoid(z)
	pClamped := false
	if p < m.cfg.PMin {
		p = m.cfg.PMin
		pClamped = true
	} else if p > m.cfg.PMax {
		p = m.cfg.PMax
		pClamped = true
	}

	return domain.SignalResult{
		RawZ:        rawZ,
		Z:           z,
		Probability: p,
		VolFloorHit: volFloorHit,
		ZClamped:    zClamped,
		PClamped:    pClamped,
	}
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
