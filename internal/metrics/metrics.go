// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "placement_operations_total", Help: "Engine operations by outcome"},
		[]string{"operation", "outcome"},
	)
	AllocationConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "placement_allocation_conflicts_total", Help: "Allocations refused because a resource was busy"},
		[]string{"resource"},
	)
	StoreRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "placement_store_retries_total", Help: "Transactions re-run after a write conflict"},
	)
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placement_operation_duration_seconds",
			Help:    "Engine operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Operations, AllocationConflicts, StoreRetries, OperationDuration)
	})
}
