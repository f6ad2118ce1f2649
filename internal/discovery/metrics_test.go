package discovery

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	assert.NotNil(t, FixturesListed)
	assert.NotNil(t, FetchDurationSeconds)
	assert.NotNil(t, FetchErrorsTotal)
	assert.NotNil(t, MatchedPairs)
	assert.NotNil(t, LastMatchTimestamp)
}

func TestFetchErrorsCountedPerSource(t *testing.T) {
	before := testutil.ToFloat64(FetchErrorsTotal.WithLabelValues("metrics-test"))
	FetchErrorsTotal.WithLabelValues("metrics-test").Inc()
	assert.InDelta(t, before+1, testutil.ToFloat64(FetchErrorsTotal.WithLabelValues("metrics-test")), 0)
}
