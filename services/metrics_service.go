package services

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_request_total",
			Help: "Total API requests",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workshop_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	requestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_request_errors_total",
			Help: "API requests answered with status >= 400",
		},
		[]string{"path"},
	)

	layerSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_layer_steps_total",
			Help: "Install layer steps applied, by action and result",
		},
		[]string{"action", "result"},
	)

	commandRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workshop_command_runs_total",
			Help: "User commands executed in the activated environment",
		},
		[]string{"result"},
	)

	readinessWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workshop_service_readiness_wait_seconds",
			Help:    "Time spent waiting for a service port to accept connections",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "result"},
	)
)

// Prometheus counters can't be read back, so the health endpoint is fed from
// these local counters kept in lockstep with the vectors.
var (
	totalRequests   int64
	totalErrors     int64
	layersInstalled int64
	commandsRun     int64
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(requestErrors)
	prometheus.MustRegister(layerSteps)
	prometheus.MustRegister(commandRuns)
	prometheus.MustRegister(readinessWait)
}

func IncrementRequestCount(path string) {
	requestCount.WithLabelValues(path).Inc()
	atomic.AddInt64(&totalRequests, 1)
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

func IncrementErrorCount(path string) {
	requestErrors.WithLabelValues(path).Inc()
	atomic.AddInt64(&totalErrors, 1)
}

func RecordLayerStep(action string, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	layerSteps.WithLabelValues(action, result).Inc()
	if err == nil {
		atomic.AddInt64(&layersInstalled, 1)
	}
}

func RecordCommandRun(exitCode int) {
	result := "ok"
	if exitCode != 0 {
		result = "failed"
	}
	commandRuns.WithLabelValues(result).Inc()
	atomic.AddInt64(&commandsRun, 1)
}

func RecordReadinessWait(service string, seconds float64, err error) {
	result := "ready"
	if err != nil {
		result = "timeout"
	}
	readinessWait.WithLabelValues(service, result).Observe(seconds)
}

func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&totalErrors)
}

func GetLayersInstalledCount() int64 {
	return atomic.LoadInt64(&layersInstalled)
}

func GetCommandsRunCount() int64 {
	return atomic.LoadInt64(&commandsRun)
}
