package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polyedge/internal/domain"
	"github.com/alejandrodnm/polyedge/internal/ports"
)

// RunnerConfig controls reconnection behaviour of the feed runner.
type RunnerConfig struct {
	BackoffBase time.Duration // first reconnect delay
	BackoffMax  time.Duration // ceiling for the exponential backoff
	StaleAfter  time.Duration // no tick for this long → force reconnect
}

// DefaultRunnerConfig returns the production reconnection settings.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		BackoffBase: 1 * time.Second,
		BackoffMax:  30 * time.Second,
		StaleAfter:  20 * time.Second,
	}
}

// Runner owns the price stream lifecycle: it keeps one stream session alive,
// pushes every tick into the buffer, and reconnects with exponential backoff
// when the session drops or goes silent. The decision loop never talks to the
// transport directly; it only reads the buffer.
type Runner struct {
	stream ports.PriceStream
	buffer *Buffer
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner wires a stream to a buffer.
func NewRunner(stream ports.PriceStream, buffer *Buffer, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultRunnerConfig().BackoffBase
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = DefaultRunnerConfig().BackoffMax
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultRunnerConfig().StaleAfter
	}
	return &Runner{stream: stream, buffer: buffer, cfg: cfg, logger: logger}
}

// Run blocks until ctx is cancelled, reconnecting forever in between.
func (r *Runner) Run(ctx context.Context) error {
	backoff := r.cfg.BackoffBase

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		err := r.consume(ctx)
		r.buffer.SetConnected(false)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A session that survived a while earns a fresh backoff.
		if time.Since(started) > time.Minute {
			backoff = r.cfg.BackoffBase
		}

		r.logger.Warn("feed session ended, reconnecting",
			"error", err,
			"backoff", backoff.String())

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if backoff > r.cfg.BackoffMax {
			backoff = r.cfg.BackoffMax
		}
	}
}

// consume runs a single stream session. It returns when the stream fails on
// its own or when the staleness watchdog fires.
func (r *Runner) consume(ctx context.Context) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks := make(chan domain.Tick, 256)
	errc := make(chan error, 1)
	go func() {
		errc <- r.stream.Stream(sctx, ticks)
	}()

	r.buffer.SetConnected(true)
	r.logger.Info("feed session started")

	watchdog := time.NewTimer(r.cfg.StaleAfter)
	defer watchdog.Stop()

	for {
		select {
		case t := <-ticks:
			r.buffer.Push(t)
			if !watchdog.Stop() {
				select {
				case <-watchdog.C:
				default:
				}
			}
			watchdog.Reset(r.cfg.StaleAfter)

		case <-watchdog.C:
			cancel()
			<-errc
			return fmt.Errorf("feed.Runner: no tick for %s, forcing reconnect", r.cfg.StaleAfter)

		case err := <-errc:
			if err == nil {
				err = fmt.Errorf("feed.Runner: stream closed")
			}
			return err

		case <-ctx.Done():
			cancel()
			<-errc
			return ctx.Err()
		}
	}
}
