package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizdesk/testplayer/internal/service"
)

// Reaper periodically evicts terminal and abandoned attempts so their
// countdown goroutines and question payloads do not accumulate.
type Reaper struct {
	attempts *service.AttemptService
	interval time.Duration
	grace    time.Duration
	log      zerolog.Logger
}

// NewReaper creates a Reaper.
func NewReaper(attempts *service.AttemptService, interval, grace time.Duration, log zerolog.Logger) *Reaper {
	return &Reaper{
		attempts: attempts,
		interval: interval,
		grace:    grace,
		log:      log.With().Str("worker", "reaper").Logger(),
	}
}

// Start runs the eviction loop until the context is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	r.log.Info().
		Dur("interval", r.interval).
		Dur("grace", r.grace).
		Msg("Attempt reaper started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Attempt reaper stopped")
			return
		case <-ticker.C:
			if evicted := r.attempts.Reap(r.grace); evicted > 0 {
				r.log.Info().
					Int("evicted", evicted).
					Int("live", r.attempts.Live()).
					Msg("Evicted stale attempts")
			}
		}
	}
}
