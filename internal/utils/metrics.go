package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the system
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.operationTimes[operationName]; !exists {
		mc.operationTimes[operationName] = make([]int64, 0)
	}
	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

// OperationStats summarizes the recorded latencies for one operation.
type OperationStats struct {
	Count     int   `json:"count"`
	AverageNs int64 `json:"averageNs"`
}

// Snapshot returns uptime, request/error counts and per-operation averages.
func (mc *MetricsCollector) Snapshot() (time.Duration, uint64, uint64, map[string]OperationStats) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	ops := make(map[string]OperationStats, len(mc.operationTimes))
	for name, samples := range mc.operationTimes {
		var total int64
		for _, ns := range samples {
			total += ns
		}
		stats := OperationStats{Count: len(samples)}
		if stats.Count > 0 {
			stats.AverageNs = total / int64(stats.Count)
		}
		ops[name] = stats
	}

	return time.Since(mc.systemStartTime), mc.requestCount, mc.errorCount, ops
}
