package internal

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var gatewayRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Vendor API calls by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

var metricsOnce sync.Once

// RegisterMetrics registers all collectors with Prometheus exactly once.
func RegisterMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(gatewayRequests)
	})
}

func observeGatewayCall(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	gatewayRequests.WithLabelValues(operation, outcome).Inc()
}
