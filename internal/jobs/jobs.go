// Package jobs runs named background jobs. Each job runs at most once at a
// time; starting a job that is already running fails with ErrJobRunning.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job names.
const (
	ProcessMatches = "process-matches"
	FetchMostbet   = "fetch-mostbet"
	FetchMelbet    = "fetch-melbet"
	MatchFinder    = "match-finder"
)

// ErrJobRunning is returned when a job is started while it is still running.
var ErrJobRunning = errors.New("job already running")

// Func is the body of a job.
type Func func(ctx context.Context) error

// Result describes how the last run of a job ended.
type Result struct {
	Success     bool      `json:"success"`
	CompletedAt time.Time `json:"completedAt"`
	Error       string    `json:"error,omitempty"`
}

// Status is a snapshot of one job's bookkeeping.
type Status struct {
	Name          string     `json:"name"`
	Running       bool       `json:"running"`
	LastStartedAt *time.Time `json:"lastStartedAt,omitempty"`
	LastResult    *Result    `json:"lastResult,omitempty"`
}

type state struct {
	running   bool
	startedAt time.Time
	result    *Result
}

// Runner tracks named jobs.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*state
	wg   sync.WaitGroup
}

// Config holds runner configuration.
type Config struct {
	Logger *zap.Logger
	// Names are reported by Statuses even before their first run.
	Names []string
}

// New creates a runner. Jobs started in the background run under a context
// that Close cancels.
func New(cfg *Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[string]*state, len(cfg.Names)),
	}
	for _, name := range cfg.Names {
		r.jobs[name] = &state{}
	}

	return r
}

func (r *Runner) claim(name string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.jobs[name]
	if !ok {
		st = &state{}
		r.jobs[name] = st
	}
	if st.running {
		return st.startedAt, ErrJobRunning
	}

	st.running = true
	st.startedAt = r.now()
	JobsRunning.WithLabelValues(name).Set(1)

	return st.startedAt, nil
}

func (r *Runner) finish(name string, startedAt time.Time, err error) {
	res := &Result{Success: err == nil, CompletedAt: r.now()}
	if err != nil {
		res.Error = err.Error()
	}

	r.mu.Lock()
	st := r.jobs[name]
	st.running = false
	st.result = res
	r.mu.Unlock()

	JobsRunning.WithLabelValues(name).Set(0)
	JobDurationSeconds.WithLabelValues(name).Observe(res.CompletedAt.Sub(startedAt).Seconds())

	if err != nil {
		JobRunsTotal.WithLabelValues(name, "error").Inc()
		r.logger.Error("job-failed", zap.String("job", name), zap.Error(err))
		return
	}

	JobRunsTotal.WithLabelValues(name, "success").Inc()
	r.logger.Info("job-complete",
		zap.String("job", name),
		zap.Duration("duration", res.CompletedAt.Sub(startedAt)))
}

// Run runs fn as job name and waits for it. When the job is already running
// it returns ErrJobRunning without calling fn.
func (r *Runner) Run(ctx context.Context, name string, fn Func) error {
	startedAt, err := r.claim(name)
	if err != nil {
		return err
	}

	r.logger.Info("job-started", zap.String("job", name))
	err = fn(ctx)
	r.finish(name, startedAt, err)

	if err != nil {
		return fmt.Errorf("run job %s: %w", name, err)
	}

	return nil
}

// TryStart starts fn as job name in the background and returns its start
// time. When the job is already running it returns the running job's start
// time and ErrJobRunning.
func (r *Runner) TryStart(name string, fn Func) (time.Time, error) {
	startedAt, err := r.claim(name)
	if err != nil {
		return startedAt, err
	}

	r.logger.Info("job-started", zap.String("job", name))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.finish(name, startedAt, fn(r.ctx))
	}()

	return startedAt, nil
}

// Job wraps fn so that calling it runs fn as job name through Run.
func (r *Runner) Job(name string, fn Func) Func {
	return func(ctx context.Context) error {
		return r.Run(ctx, name, fn)
	}
}

// Sequence runs fns one after another, stopping at the first failure.
func Sequence(fns ...Func) Func {
	return func(ctx context.Context) error {
		for _, fn := range fns {
			err := fn(ctx)
			if err != nil {
				return err
			}
		}

		return nil
	}
}

// Schedule calls fn every interval until Close. A tick that finds a job
// still running is skipped.
func (r *Runner) Schedule(label string, interval time.Duration, fn Func) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("schedule-started", zap.String("schedule", label), zap.Duration("interval", interval))

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				err := fn(r.ctx)
				if errors.Is(err, ErrJobRunning) {
					r.logger.Debug("schedule-tick-skipped", zap.String("schedule", label))
				}
			}
		}
	}()
}

// Status returns the bookkeeping of job name.
func (r *Runner) Status(name string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.status(name)
}

func (r *Runner) status(name string) Status {
	out := Status{Name: name}

	st, ok := r.jobs[name]
	if !ok {
		return out
	}

	out.Running = st.running
	if !st.startedAt.IsZero() {
		started := st.startedAt
		out.LastStartedAt = &started
	}
	if st.result != nil {
		res := *st.result
		out.LastResult = &res
	}

	return out
}

// Statuses returns every known job's status, ordered by name.
func (r *Runner) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Status, len(names))
	for i, name := range names {
		out[i] = r.status(name)
	}

	return out
}

// Close cancels running jobs and schedules and waits for them to return.
func (r *Runner) Close() error {
	r.cancel()
	r.wg.Wait()

	return nil
}
