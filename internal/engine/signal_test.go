package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

func feat(ret, vol float64) domain.FeatureSnapshot {
	return domain.FeatureSnapshot{RefPrice: 50000, Return60: ret, Vol60: vol, OK: true, SampleCount: 60}
}

func TestSignalVolFloor(t *testing.T) {
	m := NewSignalModel(DefaultSignalConfig())

	// Below the floor the flag fires for any return, including huge ones.
	for _, ret := range []float64{0, 0.0001, 0.05, -0.05, 1.0} {
		r := m.Evaluate(feat(ret, 0.00001))
		assert.True(t, r.VolFloorHit, "ret=%v", ret)
		assert.GreaterOrEqual(t, r.Probability, 0.01)
		assert.LessOrEqual(t, r.Probability, 0.99)
	}

	r := m.Evaluate(feat(0.002, 0.0005))
	assert.False(t, r.VolFloorHit)
}

func TestSignalVolFloorWithMultiplier(t *testing.T) {
	cfg := DefaultSignalConfig()
	cfg.VolMult = 2.0
	m := NewSignalModel(cfg)

	// Raw vol below the floor fires the flag regardless of the multiplier.
	r := m.Evaluate(feat(0.002, 0.00015))
	assert.True(t, r.VolFloorHit)

	// The effective vol is the scaled floor: z = 0.002 / (0.0002*2) = 5, clamped.
	assert.InDelta(t, 5.0, r.RawZ, 0.01)
	assert.Equal(t, 4.0, r.Z)

	// Above the floor but below floor*mult: no flag, still scaled denominator.
	r = m.Evaluate(feat(0.002, 0.0003))
	assert.False(t, r.VolFloorHit)
	assert.InDelta(t, 5.0, r.RawZ, 0.01)

	// Above floor*mult: raw vol drives the z untouched.
	r = m.Evaluate(feat(0.002, 0.0005))
	assert.False(t, r.VolFloorHit)
	assert.InDelta(t, 4.0, r.RawZ, 0.01)
}

func TestSignalZClamp(t *testing.T) {
	m := NewSignalModel(DefaultSignalConfig())

	r := m.Evaluate(feat(0.01, 0.0005))
	assert.True(t, r.ZClamped)
	assert.Equal(t, 4.0, r.Z)
	assert.Greater(t, r.RawZ, 4.0)

	r = m.Evaluate(feat(-0.01, 0.0005))
	assert.True(t, r.ZClamped)
	assert.Equal(t, -4.0, r.Z)
}

func TestSignalBoundsAlwaysHold(t *testing.T) {
	m := NewSignalModel(DefaultSignalConfig())

	for _, ret := range []float64{-1, -0.01, -0.0001, 0, 0.0001, 0.01, 1} {
		for _, vol := range []float64{0, 1e-9, 0.0002, 0.001, 0.1} {
			r := m.Evaluate(feat(ret, vol))
			assert.GreaterOrEqual(t, r.Z, -4.0)
			assert.LessOrEqual(t, r.Z, 4.0)
			assert.GreaterOrEqual(t, r.Probability, 0.01)
			assert.LessOrEqual(t, r.Probability, 0.99)
		}
	}
}

func TestSignalScenarioValues(t *testing.T) {
	m := NewSignalModel(DefaultSignalConfig())

	r := m.Evaluate(feat(0.002, 0.0005))
	assert.False(t, r.VolFloorHit)
	assert.InDelta(t, 4.0, r.Z, 0.01)
	// sigmoid(≈4) comfortably above an upMid of 0.40.
	assert.Greater(t, r.Probability, 0.95)
	assert.Less(t, r.Probability, 0.99)
}

func TestSignalPClamp(t *testing.T) {
	cfg := DefaultSignalConfig()
	cfg.ZClamp = 20
	m := NewSignalModel(cfg)

	r := m.Evaluate(feat(0.01, 0.0005))
	assert.True(t, r.PClamped)
	assert.Equal(t, 0.99, r.Probability)
}
