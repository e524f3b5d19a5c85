package feed

import (
	"math"
	"sync"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
)

// Config controls the feature buffer.
type Config struct {
	Window     time.Duration // feature horizon (return/vol lookback)
	MinSamples int           // minimum 1s buckets before features are usable
	StaleAfter time.Duration // last tick older than this → unhealthy
}

// DefaultConfig returns the production buffer settings.
func DefaultConfig() Config {
	return Config{
		Window:     60 * time.Second,
		MinSamples: 30,
		StaleAfter: 20 * time.Second,
	}
}

// bucket is the last reference price seen within one wall-clock second.
type bucket struct {
	sec   int64
	price float64
}

// Buffer keeps a bounded, time-windowed history of reference-price ticks per
// symbol and derives short-horizon features on demand. The feed goroutine
// writes, the decision loop reads; a mutex keeps the interleaving safe.
type Buffer struct {
	mu        sync.RWMutex
	cfg       Config
	buckets   map[string][]bucket
	lastTick  map[string]time.Time
	connected bool
}

// NewBuffer creates an empty buffer for the given settings.
func NewBuffer(cfg Config) *Buffer {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultConfig().MinSamples
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultConfig().StaleAfter
	}
	return &Buffer{
		cfg:      cfg,
		buckets:  make(map[string][]bucket),
		lastTick: make(map[string]time.Time),
	}
}

// Push ingests one tick. Ticks within the same second overwrite the bucket's
// price (last write wins); buckets older than twice the window are evicted.
func (b *Buffer) Push(t domain.Tick) {
	if t.Price <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sec := t.Ts.Unix()
	bs := b.buckets[t.Symbol]

	if n := len(bs); n > 0 && bs[n-1].sec == sec {
		bs[n-1].price = t.Price
	} else if n > 0 && bs[n-1].sec > sec {
		// Out-of-order tick older than the newest bucket: ignore.
		return
	} else {
		bs = append(bs, bucket{sec: sec, price: t.Price})
	}

	// Evict beyond the retention horizon.
	cutoff := sec - 2*int64(b.cfg.Window.Seconds())
	start := 0
	for start < len(bs) && bs[start].sec < cutoff {
		start++
	}
	b.buckets[t.Symbol] = bs[start:]
	b.lastTick[t.Symbol] = t.Ts
}

// SetConnected publishes the transport state. Feature health requires both a
// live connection and enough fresh samples.
func (b *Buffer) SetConnected(up bool) {
	b.mu.Lock()
	b.connected = up
	b.mu.Unlock()
}

// Connected reports the current transport state.
func (b *Buffer) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// Features derives the short-horizon snapshot for a symbol at `now`.
// OK=false whenever there are fewer than MinSamples buckets in the window or
// the last tick is stale; all numeric fields are unreliable in that case.
func (b *Buffer) Features(symbol string, now time.Time) domain.FeatureSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bs := b.buckets[symbol]
	from := now.Unix() - int64(b.cfg.Window.Seconds())

	// Buckets inside the feature window, oldest first.
	var win []bucket
	for _, bk := range bs {
		if bk.sec >= from && bk.sec <= now.Unix() {
			win = append(win, bk)
		}
	}

	snap := domain.FeatureSnapshot{SampleCount: len(win)}
	if len(win) == 0 {
		return snap
	}

	snap.RefPrice = win[len(win)-1].price
	fresh := now.Sub(b.lastTick[symbol]) <= b.cfg.StaleAfter
	snap.OK = len(win) >= b.cfg.MinSamples && fresh

	if len(win) < 2 {
		return snap
	}

	// Return over the window: log(last/first).
	first, last := win[0].price, win[len(win)-1].price
	if first > 0 && last > 0 {
		snap.Return60 = math.Log(last / first)
	}

	// Vol: stddev of per-bucket log returns.
	var rets []float64
	for i := 1; i < len(win); i++ {
		p0, p1 := win[i-1].price, win[i].price
		if p0 > 0 && p1 > 0 {
			rets = append(rets, math.Log(p1/p0))
		}
	}
	snap.Vol60 = stddev(rets)

	return snap
}

// Healthy reports whether the feed is usable for this symbol right now:
// connected, fresh, and enough samples.
func (b *Buffer) Healthy(symbol string, now time.Time) bool {
	if !b.Connected() {
		return false
	}
	return b.Features(symbol, now).OK
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance)
}
