// Package circuitbreaker stops calling a bookmaker that keeps failing and
// tries it again after a cooldown.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned by Allow while a source's breaker is open.
var ErrOpen = errors.New("circuit breaker open")

// SourceBreaker tracks the outcome of recent fetches per source. A source
// whose failure ratio over the rolling window reaches the threshold is cut
// off for the cooldown; afterwards a single trial fetch decides whether it
// closes again or stays open for another cooldown.
type SourceBreaker struct {
	window       int
	minSamples   int
	failureRatio float64
	cooldown     time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	sources map[string]*sourceState
}

type sourceState struct {
	open     bool
	trial    uint64 // outstanding trial ticket, 0 when none
	lastSeq  uint64
	openedAt time.Time
	results  []bool // true is a failure
}

// Ticket is handed out by Allow and passed back to Record with the outcome
// of the fetch it admitted.
type Ticket struct {
	trial uint64
}

// Trial reports whether the ticket admitted the single fetch let through
// after a cooldown.
func (t Ticket) Trial() bool {
	return t.trial != 0
}

// Config holds circuit breaker configuration.
type Config struct {
	Window       int           // fetches remembered per source
	MinSamples   int           // fetches needed before the breaker can open
	FailureRatio float64       // open at or above this share of failures
	Cooldown     time.Duration // time open before a trial fetch is let through
	Logger       *zap.Logger
}

// Status is a snapshot of one source's breaker.
type Status struct {
	Source   string    `json:"source"`
	Open     bool      `json:"open"`
	Failures int       `json:"failures"`
	Samples  int       `json:"samples"`
	OpenedAt time.Time `json:"openedAt,omitempty"`
}

// New creates a breaker with the given configuration.
func New(cfg *Config) (*SourceBreaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}
	if cfg.MinSamples <= 0 || cfg.MinSamples > cfg.Window {
		return nil, fmt.Errorf("min samples must be in [1, %d]", cfg.Window)
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		return nil, fmt.Errorf("failure ratio must be in (0, 1]")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SourceBreaker{
		window:       cfg.Window,
		minSamples:   cfg.MinSamples,
		failureRatio: cfg.FailureRatio,
		cooldown:     cfg.Cooldown,
		logger:       logger,
		now:          time.Now,
		sources:      make(map[string]*sourceState),
	}, nil
}

func (b *SourceBreaker) state(source string) *sourceState {
	st, ok := b.sources[source]
	if !ok {
		st = &sourceState{results: make([]bool, 0, b.window)}
		b.sources[source] = st
		BreakerOpen.WithLabelValues(source).Set(0)
	}

	return st
}

// Allow reports whether a fetch from source may go ahead. Once the cooldown
// has passed it lets exactly one trial fetch through until that trial is
// recorded.
func (b *SourceBreaker) Allow(source string) (Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(source)
	if !st.open {
		return Ticket{}, nil
	}

	if st.trial != 0 || b.now().Sub(st.openedAt) < b.cooldown {
		BreakerRejectedTotal.WithLabelValues(source).Inc()
		return Ticket{}, fmt.Errorf("%s: %w", source, ErrOpen)
	}

	st.lastSeq++
	st.trial = st.lastSeq
	b.logger.Info("circuit-breaker-trial", zap.String("source", source))

	return Ticket{trial: st.trial}, nil
}

// Record feeds the outcome of the fetch admitted by ticket. A cancelled fetch
// says nothing about the source and is not counted. While the breaker is
// open only the outstanding trial's outcome is taken into account.
func (b *SourceBreaker) Record(source string, ticket Ticket, err error) {
	failed := err != nil

	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(source)
	current := ticket.trial != 0 && ticket.trial == st.trial

	if errors.Is(err, context.Canceled) {
		if current {
			st.trial = 0
		}
		return
	}

	if st.open {
		if !current {
			return
		}
		st.trial = 0

		if failed {
			st.openedAt = b.now()
			b.logger.Warn("circuit-breaker-trial-failed",
				zap.String("source", source),
				zap.Duration("cooldown", b.cooldown),
				zap.Error(err))
			return
		}

		st.open = false
		st.results = st.results[:0]
		BreakerOpen.WithLabelValues(source).Set(0)
		BreakerStateChangesTotal.WithLabelValues(source).Inc()
		b.logger.Info("circuit-breaker-closed", zap.String("source", source))
		return
	}

	st.results = append(st.results, failed)
	if len(st.results) > b.window {
		st.results = st.results[1:]
	}

	failures := countFailures(st.results)
	if len(st.results) < b.minSamples || float64(failures)/float64(len(st.results)) < b.failureRatio {
		return
	}

	st.open = true
	st.openedAt = b.now()
	BreakerOpen.WithLabelValues(source).Set(1)
	BreakerStateChangesTotal.WithLabelValues(source).Inc()

	b.logger.Warn("circuit-breaker-opened",
		zap.String("source", source),
		zap.Int("failures", failures),
		zap.Int("samples", len(st.results)),
		zap.Duration("cooldown", b.cooldown),
		zap.Error(err))
}

func countFailures(results []bool) int {
	n := 0
	for _, failed := range results {
		if failed {
			n++
		}
	}

	return n
}

// Status returns the breaker state of one source.
func (b *SourceBreaker) Status(source string) Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status(source, b.state(source))
}

// Statuses returns the state of every source seen so far, sorted by name.
func (b *SourceBreaker) Statuses() []Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Status, 0, len(b.sources))
	for source, st := range b.sources {
		out = append(out, b.status(source, st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })

	return out
}

func (b *SourceBreaker) status(source string, st *sourceState) Status {
	s := Status{
		Source:   source,
		Open:     st.open,
		Failures: countFailures(st.results),
		Samples:  len(st.results),
	}
	if st.open {
		s.OpenedAt = st.openedAt
	}

	return s
}
