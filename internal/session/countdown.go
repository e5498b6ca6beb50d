package session

import (
	"sync"
	"time"
)

// Countdown drives the attempt clock: one cooperative tick per interval until
// the tick callback reports the clock is done or Stop is called. It carries
// no attempt state itself — the Session owns remaining seconds — so the same
// completion routine serves manual submission and timer expiry.
type Countdown struct {
	interval time.Duration

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewCountdown creates a countdown ticking at the given interval
// (one second in production; tests shrink it).
func NewCountdown(interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		interval: interval,
		stopped:  make(chan struct{}),
	}
}

// Run ticks until tick returns true (clock finished or attempt terminal) or
// Stop is called. Call in a goroutine; tick is invoked from that goroutine
// only, and the callback owns its own locking.
func (c *Countdown) Run(tick func() bool) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopped:
			return
		case <-ticker.C:
			if tick() {
				return
			}
		}
	}
}

// Stop halts ticking. Idempotent; safe to call from any goroutine, including
// the completion path that runs inside a tick.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopped)
	})
}
