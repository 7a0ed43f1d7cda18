package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()
	if !searchMetricsRegistered {
		t.Fatal("expected metrics to be registered")
	}
}

func TestSearchQueriesTotal_Outcomes(t *testing.T) {
	before := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues(OutcomeShortCircuit))
	SearchQueriesTotal.WithLabelValues(OutcomeShortCircuit).Inc()
	after := testutil.ToFloat64(SearchQueriesTotal.WithLabelValues(OutcomeShortCircuit))
	if after-before != 1 {
		t.Errorf("expected increment of 1, got %f", after-before)
	}
}
