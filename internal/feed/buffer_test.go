package feed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

func tick(sym string, price float64, ts time.Time) domain.Tick {
	return domain.Tick{Symbol: sym, Price: price, Ts: ts}
}

func TestBufferFeaturesRequireMinSamples(t *testing.T) {
	b := NewBuffer(Config{Window: 60 * time.Second, MinSamples: 30, StaleAfter: 20 * time.Second})
	b.SetConnected(true)

	now := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		b.Push(tick("BTC", 50000, now.Add(time.Duration(i-10)*time.Second)))
	}

	snap := b.Features("BTC", now)
	assert.False(t, snap.OK)
	assert.Equal(t, 10, snap.SampleCount)
	assert.False(t, b.Healthy("BTC", now))
}

func TestBufferReturnAndVol(t *testing.T) {
	b := NewBuffer(Config{Window: 60 * time.Second, MinSamples: 30, StaleAfter: 20 * time.Second})
	b.SetConnected(true)

	now := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)
	start := now.Add(-59 * time.Second)

	// Flat series: zero return, zero vol.
	for i := 0; i < 60; i++ {
		b.Push(tick("BTC", 50000, start.Add(time.Duration(i)*time.Second)))
	}
	snap := b.Features("BTC", now)
	require.True(t, snap.OK)
	assert.Equal(t, 50000.0, snap.RefPrice)
	assert.InDelta(t, 0.0, snap.Return60, 1e-12)
	assert.InDelta(t, 0.0, snap.Vol60, 1e-12)

	// Monotone drift: return matches log(last/first), vol near zero because
	// per-second returns are constant.
	b2 := NewBuffer(Config{Window: 60 * time.Second, MinSamples: 30, StaleAfter: 20 * time.Second})
	b2.SetConnected(true)
	price := 50000.0
	for i := 0; i < 60; i++ {
		b2.Push(tick("ETH", price, start.Add(time.Duration(i)*time.Second)))
		price *= 1.0001
	}
	snap2 := b2.Features("ETH", now)
	require.True(t, snap2.OK)
	want := math.Log(snap2.RefPrice / 50000.0)
	assert.InDelta(t, want, snap2.Return60, 1e-9)
	assert.InDelta(t, 0.0, snap2.Vol60, 1e-9)
}

func TestBufferSameSecondOverwrites(t *testing.T) {
	b := NewBuffer(DefaultConfig())
	now := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)

	b.Push(tick("BTC", 50000, now))
	b.Push(tick("BTC", 50100, now.Add(300*time.Millisecond)))

	snap := b.Features("BTC", now)
	assert.Equal(t, 1, snap.SampleCount)
	assert.Equal(t, 50100.0, snap.RefPrice)
}

func TestBufferStaleFeedUnhealthy(t *testing.T) {
	b := NewBuffer(Config{Window: 60 * time.Second, MinSamples: 5, StaleAfter: 20 * time.Second})
	b.SetConnected(true)

	base := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		b.Push(tick("BTC", 50000, base.Add(time.Duration(i)*time.Second)))
	}

	// Fresh enough right after the last tick.
	assert.True(t, b.Healthy("BTC", base.Add(12*time.Second)))

	// 25s of silence crosses StaleAfter.
	assert.False(t, b.Healthy("BTC", base.Add(34*time.Second)))
}

func TestBufferDisconnectedNeverHealthy(t *testing.T) {
	b := NewBuffer(Config{Window: 60 * time.Second, MinSamples: 2, StaleAfter: 20 * time.Second})
	now := time.Date(2026, 1, 10, 14, 30, 0, 0, time.UTC)
	b.Push(tick("BTC", 50000, now.Add(-2*time.Second)))
	b.Push(tick("BTC", 50010, now.Add(-1*time.Second)))

	b.SetConnected(false)
	assert.False(t, b.Healthy("BTC", now))

	b.SetConnected(true)
	assert.True(t, b.Healthy("BTC", now))
}

func TestBufferEvictsOldBuckets(t *testing.T) {
	b := NewBuffer(Config{Window: 10 * time.Second, MinSamples: 2, StaleAfter: 20 * time.Second})
	base := time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 120; i++ {
		b.Push(tick("BTC", 50000, base.Add(time.Duration(i)*time.Second)))
	}

	b.mu.RLock()
	n := len(b.buckets["BTC"])
	b.mu.RUnlock()
	// Retention is 2× window, so the ring stays bounded regardless of volume.
	assert.LessOrEqual(t, n, 21)
}

func TestBufferIgnoresNonPositivePrices(t *testing.T) {
	b := NewBuffer(DefaultConfig())
	now := time.Now()
	b.Push(tick("BTC", 0, now))
	b.Push(tick("BTC", -5, now))
	assert.Equal(t, 0, b.Features("BTC", now).SampleCount)
}
