package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errFetch = errors.New("fetch failed")

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func allow(b *SourceBreaker, source string) error {
	_, err := b.Allow(source)
	return err
}

func newTestBreaker(t *testing.T) (*SourceBreaker, *clock) {
	t.Helper()

	b, err := New(&Config{
		Window:       4,
		MinSamples:   2,
		FailureRatio: 0.5,
		Cooldown:     time.Minute,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	b.now = c.now

	return b, c
}

func TestNewValidation(t *testing.T) {
	valid := Config{Window: 10, MinSamples: 5, FailureRatio: 0.5, Cooldown: time.Minute}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero-window", mutate: func(c *Config) { c.Window = 0 }},
		{name: "zero-min-samples", mutate: func(c *Config) { c.MinSamples = 0 }},
		{name: "min-samples-above-window", mutate: func(c *Config) { c.MinSamples = 11 }},
		{name: "zero-ratio", mutate: func(c *Config) { c.FailureRatio = 0 }},
		{name: "ratio-above-one", mutate: func(c *Config) { c.FailureRatio = 1.5 }},
		{name: "zero-cooldown", mutate: func(c *Config) { c.Cooldown = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := New(&cfg)
			require.Error(t, err)
		})
	}

	_, err := New(nil)
	require.Error(t, err)

	b, err := New(&valid)
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.Record("melbet", Ticket{}, errFetch)
	require.NoError(t, allow(b, "melbet"), "one sample is below the minimum")

	b.Record("mostbet", Ticket{}, nil)
	b.Record("mostbet", Ticket{}, nil)
	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, nil)
	require.NoError(t, allow(b, "mostbet"))

	st := b.Status("mostbet")
	assert.False(t, st.Open)
	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, 4, st.Samples)
}

func TestBreakerOpensAndRejects(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.Record("melbet", Ticket{}, nil)
	b.Record("melbet", Ticket{}, errFetch)

	err := allow(b, "melbet")
	require.ErrorIs(t, err, ErrOpen)
	assert.True(t, b.Status("melbet").Open)

	require.NoError(t, allow(b, "mostbet"), "sources are independent")
}

func TestBreakerWindowForgetsOldFailures(t *testing.T) {
	b, err := New(&Config{Window: 3, MinSamples: 3, FailureRatio: 1, Cooldown: time.Minute})
	require.NoError(t, err)

	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, nil)
	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, errFetch)

	require.NoError(t, allow(b, "mostbet"))
	assert.Equal(t, 3, b.Status("mostbet").Samples)
}

func TestBreakerTrialAfterCooldown(t *testing.T) {
	tests := []struct {
		name      string
		trialErr  error
		wantOpen  bool
		wantAllow bool
	}{
		{name: "trial-succeeds", trialErr: nil, wantOpen: false, wantAllow: true},
		{name: "trial-fails", trialErr: errFetch, wantOpen: true, wantAllow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := newTestBreaker(t)

			b.Record("melbet", Ticket{}, errFetch)
			b.Record("melbet", Ticket{}, errFetch)
			require.ErrorIs(t, allow(b, "melbet"), ErrOpen)

			c.advance(time.Minute)
			ticket, err := b.Allow("melbet")
			require.NoError(t, err, "cooldown over, one trial allowed")
			assert.True(t, ticket.Trial())
			require.ErrorIs(t, allow(b, "melbet"), ErrOpen, "second trial refused")

			b.Record("melbet", ticket, tt.trialErr)

			st := b.Status("melbet")
			assert.Equal(t, tt.wantOpen, st.Open)
			assert.Equal(t, tt.wantAllow, allow(b, "melbet") == nil)
			if !tt.wantOpen {
				assert.Zero(t, st.Samples, "closing resets the window")
			}
		})
	}
}

func TestBreakerTrialIgnoresStaleTickets(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "late-success", err: nil},
		{name: "late-cancellation", err: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := newTestBreaker(t)

			// admitted before the breaker opened, still in flight
			stale, err := b.Allow("melbet")
			require.NoError(t, err)
			assert.False(t, stale.Trial())

			b.Record("melbet", Ticket{}, errFetch)
			b.Record("melbet", Ticket{}, errFetch)
			require.True(t, b.Status("melbet").Open)

			c.advance(time.Minute)
			ticket, err := b.Allow("melbet")
			require.NoError(t, err)

			b.Record("melbet", stale, tt.err)
			assert.True(t, b.Status("melbet").Open, "stale result does not close")
			require.ErrorIs(t, allow(b, "melbet"), ErrOpen, "trial still outstanding")

			b.Record("melbet", ticket, nil)
			assert.False(t, b.Status("melbet").Open)
		})
	}
}

func TestBreakerCancelledTrialAllowsAnother(t *testing.T) {
	b, c := newTestBreaker(t)

	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, errFetch)
	c.advance(time.Minute)

	first, err := b.Allow("mostbet")
	require.NoError(t, err)
	b.Record("mostbet", first, context.Canceled)

	second, err := b.Allow("mostbet")
	require.NoError(t, err)
	require.ErrorIs(t, allow(b, "mostbet"), ErrOpen)

	// the first trial's ticket no longer speaks for the source
	b.Record("mostbet", first, nil)
	assert.True(t, b.Status("mostbet").Open)

	b.Record("mostbet", second, errFetch)
	assert.True(t, b.Status("mostbet").Open)
	require.ErrorIs(t, allow(b, "mostbet"), ErrOpen, "failed trial restarts the cooldown")
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.Record("mostbet", Ticket{}, context.Canceled)
	b.Record("mostbet", Ticket{}, context.Canceled)

	require.NoError(t, allow(b, "mostbet"))
	assert.Equal(t, 0, b.Status("mostbet").Samples)
}

func TestBreakerIgnoresLateResultsWhileOpen(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, errFetch)
	b.Record("mostbet", Ticket{}, nil)

	st := b.Status("mostbet")
	assert.True(t, st.Open)
	assert.Equal(t, 2, st.Samples)
}

func TestStatuses(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.Record("mostbet", Ticket{}, nil)
	b.Record("melbet", Ticket{}, errFetch)

	statuses := b.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "melbet", statuses[0].Source)
	assert.Equal(t, "mostbet", statuses[1].Source)
}
