package scraper

import (
	"context"
	"math/rand/v2"
	"time"
)

// Window bounds a jittered sleep duration.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// Jitter returns a uniformly random duration within the window.
func (w Window) Jitter() time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + time.Duration(rand.Int64N(int64(w.Max-w.Min)))
}

// Doubled widens the window to twice its bounds. Used after a failed job,
// where the failure may have been proxy throttling.
func (w Window) Doubled() Window {
	return Window{Min: 2 * w.Min, Max: 2 * w.Max}
}

// timerPauser sleeps on a timer but bails out when the context finishes.
type timerPauser struct{}

// NewTimerPauser returns the production Pauser.
func NewTimerPauser() Pauser {
	return &timerPauser{}
}

func (p *timerPauser) Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
