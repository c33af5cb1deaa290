package timer

import (
	"context"
	"time"
)

// TickFunc receives the real time elapsed since the previous tick.
type TickFunc func(elapsed time.Duration)

// Run calls tick every interval with the measured elapsed time until ctx is
// done. It blocks; callers run it in its own goroutine.
func Run(ctx context.Context, interval time.Duration, tick TickFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tick(now.Sub(last))
			last = now
		}
	}
}
