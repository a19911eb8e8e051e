// Package augment enriches deterministic compliance issues with LLM-produced
// detail: pinpoint locations, suggested fixes, and content validation. All
// external calls run under retry/backoff with graceful degradation; the
// output issue list always has the same length and order as the input.
package augment

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SleepFunc waits for d without blocking a thread. Tests substitute a
// recording fake; production uses WaitSleep.
type SleepFunc func(ctx context.Context, d time.Duration) error

// WaitSleep waits on a timer, honoring context cancellation.
func WaitSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// newSchedule builds the exponential delay schedule for LLM retries:
// initialDelay doubling per attempt, no jitter.
func newSchedule(initialDelay time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 5 * time.Minute
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// retryWithBackoff invokes fn up to maxAttempts times, sleeping between
// attempts per the exponential schedule. Only errors retryable reports as
// transient are retried; the last error is returned once attempts are
// exhausted. With maxAttempts=3 and initialDelay=1s the forced waits are
// exactly 1s then 2s.
func retryWithBackoff(ctx context.Context, maxAttempts int, initialDelay time.Duration, sleep SleepFunc, retryable func(error) bool, fn func() (string, error)) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	schedule := newSchedule(initialDelay)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return "", lastErr
		}
		if err := sleep(ctx, schedule.NextBackOff()); err != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}
