package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/circuitbreaker"
	"github.com/mselser95/bookie-arb/internal/jobs"
	"github.com/mselser95/bookie-arb/internal/processor"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// JobRunner starts jobs and reports their status.
type JobRunner interface {
	TryStart(name string, fn jobs.Func) (time.Time, error)
	Statuses() []jobs.Status
}

// PairLister returns the last matched fixture pairs.
type PairLister interface {
	CachedPairs() []types.MatchedFixturePair
	MatchedAt() time.Time
}

// ReportSource returns the last processing report.
type ReportSource interface {
	LatestReport() *processor.Report
}

// BreakerStatus reports the circuit breaker state of every source.
type BreakerStatus interface {
	Statuses() []circuitbreaker.Status
}

// API serves the status, trigger and data endpoints.
type API struct {
	jobs        JobRunner
	triggers    map[string]jobs.Func
	pairs       PairLister
	reports     ReportSource
	breakers    BreakerStatus
	environment string
	uptime      func() time.Duration
	logger      *zap.Logger
}

// APIConfig holds API configuration.
type APIConfig struct {
	Jobs JobRunner
	// Triggers maps a job name to its body; each gets GET and POST /api/<name>.
	Triggers    map[string]jobs.Func
	Pairs       PairLister
	Reports     ReportSource
	Breakers    BreakerStatus
	Environment string
	Uptime      func() time.Duration
	Logger      *zap.Logger
}

// NewAPI creates the API handlers.
func NewAPI(cfg *APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	uptime := cfg.Uptime
	if uptime == nil {
		uptime = func() time.Duration { return time.Since(start) }
	}

	return &API{
		jobs:        cfg.Jobs,
		triggers:    cfg.Triggers,
		pairs:       cfg.Pairs,
		reports:     cfg.Reports,
		breakers:    cfg.Breakers,
		environment: cfg.Environment,
		uptime:      uptime,
		logger:      logger,
	}
}

// Routes registers the API endpoints on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/api/status", a.handleStatus)
	r.Get("/api/matches", a.handleMatches)
	r.Get("/api/opportunities", a.handleOpportunities)

	for name, fn := range a.triggers {
		h := a.trigger(name, fn)
		r.Get("/api/"+name, h)
		r.Post("/api/"+name, h)
	}
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Online      bool                    `json:"online"`
	Environment string                  `json:"environment"`
	Uptime      string                  `json:"uptime"`
	Jobs        []jobs.Status           `json:"jobs"`
	Sources     []circuitbreaker.Status `json:"sources,omitempty"`
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Online:      true,
		Environment: a.environment,
		Uptime:      a.uptime().Round(time.Second).String(),
		Jobs:        []jobs.Status{},
	}
	if a.jobs != nil {
		resp.Jobs = a.jobs.Statuses()
	}
	if a.breakers != nil {
		resp.Sources = a.breakers.Statuses()
	}

	writeJSON(w, http.StatusOK, resp)
}

// TriggerResponse is the body of the job trigger endpoints.
type TriggerResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"startedAt"`
}

func (a *API) trigger(name string, fn jobs.Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startedAt, err := a.jobs.TryStart(name, fn)
		switch {
		case errors.Is(err, jobs.ErrJobRunning):
			writeJSON(w, http.StatusConflict, TriggerResponse{
				Message:   name + " is already running",
				StartedAt: startedAt,
			})
		case err != nil:
			a.logger.Error("job-trigger-failed", zap.String("job", name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			a.logger.Info("job-triggered", zap.String("job", name), zap.String("method", r.Method))
			writeJSON(w, http.StatusAccepted, TriggerResponse{
				Success:   true,
				Message:   name + " started",
				StartedAt: startedAt,
			})
		}
	}
}

// MatchesResponse is the body of GET /api/matches.
type MatchesResponse struct {
	Count     int                        `json:"count"`
	MatchedAt *time.Time                 `json:"matchedAt,omitempty"`
	Pairs     []types.MatchedFixturePair `json:"pairs"`
}

func (a *API) handleMatches(w http.ResponseWriter, _ *http.Request) {
	resp := MatchesResponse{Pairs: []types.MatchedFixturePair{}}
	if a.pairs != nil {
		if pairs := a.pairs.CachedPairs(); pairs != nil {
			resp.Pairs = pairs
		}
		if at := a.pairs.MatchedAt(); !at.IsZero() {
			resp.MatchedAt = &at
		}
	}
	resp.Count = len(resp.Pairs)

	writeJSON(w, http.StatusOK, resp)
}

// OpportunitiesResponse is the body of GET /api/opportunities.
type OpportunitiesResponse struct {
	Count         int                      `json:"count"`
	CompletedAt   *time.Time               `json:"completedAt,omitempty"`
	PairsScanned  int                      `json:"pairsScanned"`
	PairsFailed   int                      `json:"pairsFailed"`
	Opportunities []*arbitrage.Opportunity `json:"opportunities"`
}

func (a *API) handleOpportunities(w http.ResponseWriter, _ *http.Request) {
	resp := OpportunitiesResponse{Opportunities: []*arbitrage.Opportunity{}}

	if a.reports != nil {
		if report := a.reports.LatestReport(); report != nil {
			if report.Opportunities != nil {
				resp.Opportunities = report.Opportunities
			}
			completed := report.CompletedAt
			resp.CompletedAt = &completed
			resp.PairsScanned = report.PairsScanned
			resp.PairsFailed = report.PairsFailed
		}
	}
	resp.Count = len(resp.Opportunities)

	writeJSON(w, http.StatusOK, resp)
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
