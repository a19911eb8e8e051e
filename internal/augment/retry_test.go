package augment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep records every requested wait without actually waiting.
func recordingSleep(waits *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func alwaysRetryable(error) bool { return true }

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	var waits []time.Duration
	calls := 0

	result, err := retryWithBackoff(context.Background(), 3, time.Second, recordingSleep(&waits), alwaysRetryable, func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
}

func TestRetryWithBackoff_ExhaustsAttemptsWithDoublingDelays(t *testing.T) {
	var waits []time.Duration
	calls := 0
	transient := errors.New("model is overloaded")

	_, err := retryWithBackoff(context.Background(), 3, time.Second, recordingSleep(&waits), alwaysRetryable, func() (string, error) {
		calls++
		return "", transient
	})

	require.Error(t, err)
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestRetryWithBackoff_RecoversOnLaterAttempt(t *testing.T) {
	var waits []time.Duration
	calls := 0

	result, err := retryWithBackoff(context.Background(), 3, time.Second, recordingSleep(&waits), alwaysRetryable, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	var waits []time.Duration
	calls := 0
	permanent := errors.New("invalid api key")

	_, err := retryWithBackoff(context.Background(), 3, time.Second, recordingSleep(&waits), func(error) bool { return false }, func() (string, error) {
		calls++
		return "", permanent
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
}

func TestRetryWithBackoff_CancelledSleepStopsRetrying(t *testing.T) {
	calls := 0
	cancelledSleep := func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, err := retryWithBackoff(context.Background(), 3, time.Second, cancelledSleep, alwaysRetryable, func() (string, error) {
		calls++
		return "", errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWaitSleep_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitSleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
