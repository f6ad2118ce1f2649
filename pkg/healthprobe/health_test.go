package healthprobe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) (int, HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return w.Code, resp
}

func TestHealthAlwaysOK(t *testing.T) {
	hc := New()

	for _, ready := range []bool{false, true} {
		hc.SetReady(ready)
		code, resp := serve(t, hc.Health())
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.NotEmpty(t, resp.Uptime)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		checks     map[string]CheckFunc
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "not-ready-initially",
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
		},
		{
			name:       "ready-without-checks",
			ready:      true,
			wantCode:   http.StatusOK,
			wantStatus: "ready",
		},
		{
			name:  "ready-with-passing-checks",
			ready: true,
			checks: map[string]CheckFunc{
				"postgres": func(context.Context) error { return nil },
			},
			wantCode:   http.StatusOK,
			wantStatus: "ready",
			wantChecks: map[string]string{"postgres": "ok"},
		},
		{
			name:  "failing-check",
			ready: true,
			checks: map[string]CheckFunc{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
			wantChecks: map[string]string{"postgres": "ok", "redis": "connection refused"},
		},
		{
			name: "checks-skipped-while-starting",
			checks: map[string]CheckFunc{
				"redis": func(context.Context) error { return errors.New("connection refused") },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New()
			hc.SetReady(tt.ready)
			for name, fn := range tt.checks {
				hc.AddCheck(name, fn)
			}

			code, resp := serve(t, hc.Ready())
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantChecks, resp.Checks)
		})
	}
}

func TestReadyToggle(t *testing.T) {
	hc := New()

	code, _ := serve(t, hc.Ready())
	assert.Equal(t, http.StatusServiceUnavailable, code)

	hc.SetReady(true)
	code, _ = serve(t, hc.Ready())
	assert.Equal(t, http.StatusOK, code)

	hc.SetReady(false)
	code, _ = serve(t, hc.Ready())
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestConcurrentAccess(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := range 100 {
			hc.SetReady(i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))
		}
	}()
	go func() {
		defer wg.Done()
		for range 10 {
			hc.AddCheck("noop", func(context.Context) error { return nil })
		}
	}()
	wg.Wait()
}
