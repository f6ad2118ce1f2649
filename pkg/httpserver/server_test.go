package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/circuitbreaker"
	"github.com/mselser95/bookie-arb/internal/jobs"
	"github.com/mselser95/bookie-arb/internal/processor"
	"github.com/mselser95/bookie-arb/internal/testutil"
	"github.com/mselser95/bookie-arb/pkg/healthprobe"
	"github.com/mselser95/bookie-arb/pkg/types"
)

type fakePairs struct {
	pairs []types.MatchedFixturePair
	at    time.Time
}

func (f *fakePairs) CachedPairs() []types.MatchedFixturePair { return f.pairs }
func (f *fakePairs) MatchedAt() time.Time                    { return f.at }

type fakeReports struct {
	report *processor.Report
}

func (f *fakeReports) LatestReport() *processor.Report { return f.report }

func newTestServer(t *testing.T, api *API, hc *healthprobe.HealthChecker) http.Handler {
	t.Helper()

	if hc == nil {
		hc = healthprobe.New()
	}

	return New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: hc,
		API:           api,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	return w
}

func TestHealthAndReady(t *testing.T) {
	hc := healthprobe.New()
	h := newTestServer(t, nil, hc)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/ready").Code)

	hc.SetReady(true)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil, nil)

	w := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestAPIRoutesAbsentWithoutAPI(t *testing.T) {
	h := newTestServer(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/status").Code)
}

func TestStatus(t *testing.T) {
	runner := jobs.New(&jobs.Config{Names: []string{jobs.ProcessMatches}})
	defer runner.Close()
	require.NoError(t, runner.Run(context.Background(), jobs.ProcessMatches, func(context.Context) error { return nil }))

	breaker, err := circuitbreaker.New(&circuitbreaker.Config{Window: 4, MinSamples: 2, FailureRatio: 0.5, Cooldown: time.Minute})
	require.NoError(t, err)
	breaker.Record("melbet", circuitbreaker.Ticket{}, errors.New("status 503"))

	api := NewAPI(&APIConfig{
		Jobs:        runner,
		Breakers:    breaker,
		Environment: "test",
		Uptime:      func() time.Duration { return 90 * time.Second },
	})
	h := newTestServer(t, api, nil)

	w := do(t, h, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Online)
	assert.Equal(t, "test", resp.Environment)
	assert.Equal(t, "1m30s", resp.Uptime)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, jobs.ProcessMatches, resp.Jobs[0].Name)
	require.NotNil(t, resp.Jobs[0].LastResult)
	assert.True(t, resp.Jobs[0].LastResult.Success)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "melbet", resp.Sources[0].Source)
	assert.Equal(t, 1, resp.Sources[0].Failures)
	assert.False(t, resp.Sources[0].Open)
}

func TestTrigger(t *testing.T) {
	runner := jobs.New(&jobs.Config{})
	defer runner.Close()

	release := make(chan struct{})
	api := NewAPI(&APIConfig{
		Jobs: runner,
		Triggers: map[string]jobs.Func{
			jobs.ProcessMatches: func(context.Context) error {
				<-release
				return nil
			},
			jobs.FetchMostbet: func(context.Context) error { return nil },
		},
	})
	h := newTestServer(t, api, nil)

	w := do(t, h, http.MethodPost, "/api/process-matches")
	require.Equal(t, http.StatusAccepted, w.Code)

	var started TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.True(t, started.Success)
	assert.Equal(t, "process-matches started", started.Message)
	assert.False(t, started.StartedAt.IsZero())

	w = do(t, h, http.MethodGet, "/api/process-matches")
	require.Equal(t, http.StatusConflict, w.Code)

	var conflict TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	assert.False(t, conflict.Success)
	assert.True(t, started.StartedAt.Equal(conflict.StartedAt))

	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodGet, "/api/fetch-mostbet").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/fetch-melbet").Code)

	close(release)
	require.Eventually(t, func() bool {
		return do(t, h, http.MethodPost, "/api/process-matches").Code == http.StatusAccepted
	}, time.Second, 5*time.Millisecond)
}

func TestMatches(t *testing.T) {
	matchedAt := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	pairs := &fakePairs{
		pairs: []types.MatchedFixturePair{testutil.CreateTestPair("1", "10", "Arsenal", "Chelsea")},
		at:    matchedAt,
	}
	h := newTestServer(t, NewAPI(&APIConfig{Pairs: pairs}), nil)

	w := do(t, h, http.MethodGet, "/api/matches")
	require.Equal(t, http.StatusOK, w.Code)

	var resp MatchesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.NotNil(t, resp.MatchedAt)
	assert.True(t, matchedAt.Equal(*resp.MatchedAt))
	assert.Equal(t, "Arsenal", resp.Pairs[0].FixtureA.HomeTeam)
}

func TestMatchesEmpty(t *testing.T) {
	h := newTestServer(t, NewAPI(&APIConfig{Pairs: &fakePairs{}}), nil)

	w := do(t, h, http.MethodGet, "/api/matches")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"pairs":[]}`, w.Body.String())
}

func TestOpportunities(t *testing.T) {
	opp := arbitrage.CreateTestOpportunity("mostbet:1|melbet:10", "1X2")
	reports := &fakeReports{}
	h := newTestServer(t, NewAPI(&APIConfig{Reports: reports}), nil)

	w := do(t, h, http.MethodGet, "/api/opportunities")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"pairsScanned":0,"pairsFailed":0,"opportunities":[]}`, w.Body.String())

	reports.report = &processor.Report{
		CompletedAt:   time.Now(),
		PairsScanned:  3,
		PairsFailed:   1,
		Opportunities: []*arbitrage.Opportunity{opp},
	}

	w = do(t, h, http.MethodGet, "/api/opportunities")
	require.Equal(t, http.StatusOK, w.Code)

	var resp OpportunitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 3, resp.PairsScanned)
	assert.Equal(t, 1, resp.PairsFailed)
	require.Len(t, resp.Opportunities, 1)
	assert.Equal(t, opp.ID, resp.Opportunities[0].ID)
	assert.Equal(t, "1X2", resp.Opportunities[0].Market)
}

func TestCORSPreflight(t *testing.T) {
	h := New(&Config{
		Port:           "0",
		Logger:         zap.NewNop(),
		HealthChecker:  healthprobe.New(),
		AllowedOrigins: []string{"https://dashboard.example"},
		API:            NewAPI(&APIConfig{}),
	}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://dashboard.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestFeedMounted(t *testing.T) {
	feed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := New(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: healthprobe.New(), Feed: feed}).Handler()

	assert.Equal(t, http.StatusTeapot, do(t, h, http.MethodGet, "/ws/opportunities").Code)
}
