package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	OrdersPlaced.Reset()
	OrdersCanceled.Reset()

	OrdersPlaced.WithLabelValues("SOL/USDC", "BID").Inc()
	OrdersPlaced.WithLabelValues("SOL/USDC", "BID").Inc()
	OrdersCanceled.WithLabelValues("SOL/USDC", "ASK").Inc()

	if got := testutil.ToFloat64(OrdersPlaced.WithLabelValues("SOL/USDC", "BID")); got != 2 {
		t.Errorf("OrdersPlaced[BID] = %f, want 2", got)
	}
	if got := testutil.ToFloat64(OrdersCanceled.WithLabelValues("SOL/USDC", "ASK")); got != 1 {
		t.Errorf("OrdersCanceled[ASK] = %f, want 1", got)
	}
}

func TestLeanFactorGauge(t *testing.T) {
	LeanFactor.Reset()
	LeanFactor.WithLabelValues("SOL/USDC", "ASK").Set(0.5)
	if got := testutil.ToFloat64(LeanFactor.WithLabelValues("SOL/USDC", "ASK")); got != 0.5 {
		t.Errorf("LeanFactor = %f, want 0.5", got)
	}
}
