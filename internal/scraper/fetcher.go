// Package scraper fetches fixture lists and odds payloads from the bookmaker
// APIs. Requests are rate limited per source, retried with backoff on
// transient failures and rotated across mirror domains and user agents.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	maxBodyBytes    = 32 << 20
	maxErrorSnippet = 256
)

// Fetcher performs GET requests against one set of mirror domains.
type Fetcher struct {
	source     string
	domains    []string
	userAgents []string
	headers    map[string]string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      *RetryPolicy
	logger     *zap.Logger

	domainIdx atomic.Uint64
	agentIdx  atomic.Uint64
}

// FetcherConfig holds fetcher configuration.
type FetcherConfig struct {
	Source     string
	Domains    []string
	UserAgents []string
	Headers    map[string]string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Retry      *RetryPolicy
	Logger     *zap.Logger
}

// NewFetcher creates a fetcher. A nil limiter means no rate limit.
func NewFetcher(cfg *FetcherConfig) (*Fetcher, error) {
	if len(cfg.Domains) == 0 {
		return nil, fmt.Errorf("fetcher %s: no domains", cfg.Source)
	}

	f := &Fetcher{
		source:     cfg.Source,
		domains:    make([]string, len(cfg.Domains)),
		userAgents: cfg.UserAgents,
		headers:    cfg.Headers,
		httpClient: cfg.HTTPClient,
		limiter:    cfg.Limiter,
		retry:      cfg.Retry,
		logger:     cfg.Logger,
	}
	for i, d := range cfg.Domains {
		f.domains[i] = strings.TrimRight(d, "/")
	}

	if f.httpClient == nil {
		f.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if f.limiter == nil {
		f.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if f.retry == nil {
		f.retry = NewRetryPolicy(0, 0, 0)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}

	return f, nil
}

// Get fetches path (including the query string) from the current domain and
// returns the response body. Retryable failures advance to the next domain.
func (f *Fetcher) Get(ctx context.Context, path string) ([]byte, error) {
	var body []byte

	err := f.retry.Execute(ctx, func(attempt int) error {
		domain := f.domain()

		b, err := f.do(ctx, domain+path)
		if err != nil {
			RequestsTotal.WithLabelValues(f.source, "error").Inc()
			f.logger.Warn("fetch-attempt-failed",
				zap.String("source", f.source),
				zap.String("domain", domain),
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Error(err))

			if types.IsRetryable(err) {
				f.rotate(domain)
			}
			return err
		}

		RequestsTotal.WithLabelValues(f.source, "success").Inc()
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// Domain returns the domain requests currently go to.
func (f *Fetcher) Domain() string {
	return f.domain()
}

func (f *Fetcher) domain() string {
	return f.domains[f.domainIdx.Load()%uint64(len(f.domains))]
}

// rotate moves to the next domain unless another request already did.
func (f *Fetcher) rotate(failed string) {
	if len(f.domains) < 2 {
		return
	}

	idx := f.domainIdx.Load()
	if f.domains[idx%uint64(len(f.domains))] != failed {
		return
	}
	if f.domainIdx.CompareAndSwap(idx, idx+1) {
		DomainRotationsTotal.WithLabelValues(f.source).Inc()
		f.logger.Info("domain-rotated",
			zap.String("source", f.source),
			zap.String("from", failed),
			zap.String("to", f.domain()))
	}
}

func (f *Fetcher) userAgent() string {
	if len(f.userAgents) == 0 {
		return ""
	}

	return f.userAgents[(f.agentIdx.Add(1)-1)%uint64(len(f.userAgents))]
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	err := f.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if ua := f.userAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	RequestDurationSeconds.WithLabelValues(f.source).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &types.FetchError{
			Source:    f.source,
			URL:       url,
			Retryable: ctx.Err() == nil,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &types.FetchError{
			Source:    f.source,
			URL:       url,
			Retryable: true,
			Err:       fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return nil, &types.FetchError{
			Source:     f.source,
			URL:        url,
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
			Err:        fmt.Errorf("unexpected response: %q", snippet),
		}
	}

	return body, nil
}

// retryableStatus reports whether a status is worth retrying on another
// attempt. Blocked mirrors answer 403, so it counts as transient too.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusForbidden ||
		code == http.StatusRequestTimeout ||
		code >= http.StatusInternalServerError
}
