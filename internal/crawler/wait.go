package crawler

import (
	"context"
	"time"
)

// WaitPolicy schedules every deliberate delay of a site pass: dwell after
// navigation, consent and scroll pauses, and retry backoff
type WaitPolicy interface {
	Pause(ctx context.Context, r Range) error
}

// JitterWait sleeps for a random duration within the range
type JitterWait struct{}

// Pause blocks for r.Pick() or until ctx is done
func (JitterWait) Pause(ctx context.Context, r Range) error {
	delay := r.Pick()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoWait returns immediately; used where delays only slow tests down
type NoWait struct{}

// Pause reports only context cancellation
func (NoWait) Pause(ctx context.Context, _ Range) error {
	return ctx.Err()
}
