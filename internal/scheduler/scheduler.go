// Package scheduler repeats pipeline runs on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Loop runs task immediately, then once per interval until ctx is
// cancelled. Runs never overlap; a run longer than the interval delays
// the next one.
func Loop(ctx context.Context, interval time.Duration, name string, task Task) {
	run := func() {
		if err := task(ctx); err != nil {
			log.Printf("[%s] run failed: %v", name, err)
		}
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
