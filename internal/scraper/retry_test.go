package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/bookie-arb/pkg/types"
)

func retryableErr() error {
	return &types.FetchError{Source: "test", URL: "http://x", StatusCode: 503, Retryable: true, Err: errors.New("unavailable")}
}

func TestNewRetryPolicyDefaults(t *testing.T) {
	r := NewRetryPolicy(0, 0, 0)

	assert.Equal(t, 3, r.maxAttempts)
	assert.Equal(t, time.Second, r.initialDelay)
	assert.Equal(t, 30*time.Second, r.maxDelay)
}

func TestRetryPolicyDelays(t *testing.T) {
	r := NewRetryPolicy(5, time.Second, 2*time.Second)

	assert.Equal(t, []time.Duration{
		time.Second,
		1500 * time.Millisecond,
		2 * time.Second,
		2 * time.Second,
	}, r.Delays())
}

func TestRetryPolicyExecute(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		err       func() error
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "success-first-try",
			failures:  0,
			err:       retryableErr,
			wantCalls: 1,
		},
		{
			name:      "success-after-retries",
			failures:  2,
			err:       retryableErr,
			wantCalls: 3,
		},
		{
			name:      "attempts-exhausted",
			failures:  10,
			err:       retryableErr,
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "non-retryable-stops",
			failures:  10,
			err:       func() error { return errors.New("bad request") },
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetryPolicy(3, time.Millisecond, 2*time.Millisecond)

			calls := 0
			err := r.Execute(t.Context(), func(attempt int) error {
				assert.Equal(t, calls, attempt)
				calls++
				if calls <= tt.failures {
					return tt.err()
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetryPolicyExhaustedKeepsCause(t *testing.T) {
	r := NewRetryPolicy(2, time.Millisecond, time.Millisecond)

	err := r.Execute(t.Context(), func(int) error { return retryableErr() })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.True(t, types.IsRetryable(err))
}

func TestRetryPolicyContextCancelled(t *testing.T) {
	r := NewRetryPolicy(5, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	err := r.Execute(ctx, func(int) error {
		calls++
		return retryableErr()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
