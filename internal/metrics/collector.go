// Package metrics provides Prometheus metrics for go-batch-exec.
//
// All metrics describe a single batch run: step outcomes, HTTP response
// distribution, command durations, and loop progress. The /metrics endpoint
// is served by Server for scraping during long runs.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "batch_exec_info",
			Help: "Information about the batch run (value always 1)",
		},
		[]string{"version", "command_file", "ids_file"},
	)

	batchIdentifiersLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_exec_identifiers_loaded",
			Help: "Number of identifiers loaded from the input file",
		},
	)

	batchStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_steps_total",
			Help: "Total steps processed (executed or rehearsed)",
		},
	)

	batchStepsSucceededTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_steps_succeeded_total",
			Help: "Total steps counted as successful",
		},
	)

	batchStepsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_steps_failed_total",
			Help: "Total steps counted as failed",
		},
	)

	batchTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_timeouts_total",
			Help: "Total commands killed by the execution timeout",
		},
	)

	batchLaunchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_launch_failures_total",
			Help: "Total commands that failed to launch",
		},
	)

	batchDelaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_exec_delays_total",
			Help: "Total inter-step delays taken",
		},
	)

	batchExitCodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_exec_exit_codes_total",
			Help: "Command exit codes (-1 = timeout or launch failure)",
		},
		[]string{"exit_code"},
	)

	batchHTTPResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_exec_http_responses_total",
			Help: "HTTP status codes extracted from command output",
		},
		[]string{"code"},
	)

	batchCommandDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "batch_exec_command_duration_seconds",
			Help: "Command wall-clock duration distribution",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5, 1.0,
				2.5, 5.0, 10.0, 30.0, 60.0,
				120.0, 300.0,
			},
		},
	)

	batchRunElapsedSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_exec_run_elapsed_seconds",
			Help: "Seconds since the batch run started",
		},
	)

	batchProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_exec_progress",
			Help: "Loop progress (0.0 to 1.0)",
		},
	)

	batchAborted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_exec_aborted",
			Help: "1 when the run was halted by stop-on-HTTP-error",
		},
	)
)

// Collector manages all Prometheus metrics for one batch run.
type Collector struct {
	total     int
	startTime time.Time

	mu        sync.Mutex
	processed int
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version     string
	CommandFile string
	IDFile      string
	Identifiers int
}

// NewCollector creates a collector registered on the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		total:     cfg.Identifiers,
		startTime: time.Now(),
	}

	registry.MustRegister(
		batchInfo,
		batchIdentifiersLoaded,
		batchStepsTotal,
		batchStepsSucceededTotal,
		batchStepsFailedTotal,
		batchTimeoutsTotal,
		batchLaunchFailuresTotal,
		batchDelaysTotal,
		batchExitCodesTotal,
		batchHTTPResponsesTotal,
		batchCommandDurationSeconds,
		batchRunElapsedSeconds,
		batchProgress,
		batchAborted,
	)

	batchInfo.WithLabelValues(cfg.Version, cfg.CommandFile, cfg.IDFile).Set(1)
	batchIdentifiersLoaded.Set(float64(cfg.Identifiers))

	return c
}

// RecordStep records one completed step.
func (c *Collector) RecordStep(success bool, exitCode int, duration time.Duration, timedOut bool) {
	batchStepsTotal.Inc()
	if success {
		batchStepsSucceededTotal.Inc()
	} else {
		batchStepsFailedTotal.Inc()
	}
	if timedOut {
		batchTimeoutsTotal.Inc()
	}
	if exitCode < 0 && !timedOut {
		batchLaunchFailuresTotal.Inc()
	}

	batchExitCodesTotal.WithLabelValues(strconv.Itoa(exitCode)).Inc()

	if duration > 0 {
		batchCommandDurationSeconds.Observe(duration.Seconds())
	}

	c.advance()
}

// RecordDryRunStep records one rehearsed step.
func (c *Collector) RecordDryRunStep() {
	batchStepsTotal.Inc()
	batchStepsSucceededTotal.Inc()
	c.advance()
}

// RecordHTTPResponse records an extracted HTTP status code.
func (c *Collector) RecordHTTPResponse(code int) {
	batchHTTPResponsesTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordDelay records one inter-step pause.
func (c *Collector) RecordDelay() {
	batchDelaysTotal.Inc()
}

// RecordAbort marks the run as halted by stop-on-HTTP-error.
func (c *Collector) RecordAbort() {
	batchAborted.Set(1)
}

// advance updates the progress and elapsed gauges.
func (c *Collector) advance() {
	c.mu.Lock()
	c.processed++
	processed := c.processed
	c.mu.Unlock()

	if c.total > 0 {
		batchProgress.Set(float64(processed) / float64(c.total))
	}
	batchRunElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}

// UpdateElapsed refreshes the elapsed gauge. Called periodically so the
// gauge advances between steps during long commands.
func (c *Collector) UpdateElapsed() {
	batchRunElapsedSeconds.Set(time.Since(c.startTime).Seconds())
}
