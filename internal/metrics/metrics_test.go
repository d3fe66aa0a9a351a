package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LocationUpdates.WithLabelValues("ok").Inc()
	m.DedupDecisions.WithLabelValues("unavailable").Add(2)

	if got := testutil.ToFloat64(m.LocationUpdates.WithLabelValues("ok")); got != 1 {
		t.Errorf("Expected 1 update, got %v", got)
	}
	if got := testutil.ToFloat64(m.DedupDecisions.WithLabelValues("unavailable")); got != 2 {
		t.Errorf("Expected 2 unavailable decisions, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected registered metric families")
	}
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	New(reg)
}
