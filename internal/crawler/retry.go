package crawler

import (
	"context"
	"errors"

	"sjsage522/discountcrawler/logger"
	crawlerrors "sjsage522/discountcrawler/pkg/errors"
)

// RetryState is the state of a site pass
type RetryState int

const (
	StateAttempting RetryState = iota
	StateSucceeded
	StateExhausted
)

func (s RetryState) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// AttemptFunc runs one attempt and returns how many products it located
type AttemptFunc func(ctx context.Context, attempt int) (located int, err error)

// RetryController re-runs a site pass until it locates products or runs out
// of attempts, pausing for the backoff range before every retry
type RetryController struct {
	Provider    string
	MaxAttempts int
	Backoff     Range
	Wait        WaitPolicy
	Log         *logger.Logger
}

// Run drives fn through the retry state machine. It returns the final state,
// the number of attempts made and the error of the last failed attempt.
func (r *RetryController) Run(ctx context.Context, fn AttemptFunc) (RetryState, int, error) {
	maxAttempts := max(r.MaxAttempts, 1)
	wait := r.Wait
	if wait == nil {
		wait = JitterWait{}
	}
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		located, err := fn(ctx, attempt)
		if err == nil && located > 0 {
			return StateSucceeded, attempt, nil
		}
		if err == nil {
			err = crawlerrors.New(crawlerrors.ErrorTypeNoProducts, r.Provider, "attempt located no products", nil)
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Msg("Attempt failed")

		if attempt >= maxAttempts || !retryable(err) {
			return StateExhausted, attempt, lastErr
		}

		if err := wait.Pause(ctx, r.Backoff); err != nil {
			return StateExhausted, attempt, err
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var crawlerErr *crawlerrors.CrawlerError
	if errors.As(err, &crawlerErr) {
		return crawlerErr.IsRetryable()
	}
	return true
}
