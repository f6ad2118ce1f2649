package arbitrage

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Registration tests all metrics are initialized
func TestMetrics_Registration(t *testing.T) {
	if OpportunitiesDetectedTotal == nil {
		t.Error("OpportunitiesDetectedTotal not registered")
	}

	if OpportunityProfitPercent == nil {
		t.Error("OpportunityProfitPercent not registered")
	}

	if OpportunitiesRejectedTotal == nil {
		t.Error("OpportunitiesRejectedTotal not registered")
	}

	if ScanDurationSeconds == nil {
		t.Error("ScanDurationSeconds not registered")
	}
}

func TestRecordOpportunity(t *testing.T) {
	opp := CreateTestOpportunity("metrics", "Corners - Total (9.5)")

	before := testutil.ToFloat64(OpportunitiesDetectedTotal.WithLabelValues("Corners - Total"))
	RecordOpportunity(opp)
	after := testutil.ToFloat64(OpportunitiesDetectedTotal.WithLabelValues("Corners - Total"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %f", after-before)
	}
}
