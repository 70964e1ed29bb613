// Package metrics counts what the shell runs and can export it in the
// Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NameSpace = "minish"
	Subsystem = "shell"
)

// Metrics holds the collectors for a single shell.
type Metrics struct {
	registry *prometheus.Registry

	// Commands counts executed lines by kind: builtin, plain, redirected or piped.
	Commands *prometheus.CounterVec
	// LaunchFailures counts external programs that could not be started.
	LaunchFailures prometheus.Counter
	// Timeouts counts jobs killed by the watchdog.
	Timeouts prometheus.Counter
	// Interrupts counts interrupts delivered to the shell.
	Interrupts prometheus.Counter
	// JobDuration is how long external jobs ran.
	JobDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(NameSpace, Subsystem, "commands_total"),
			Help: "Lines executed by kind",
		}, []string{"kind"}),

		LaunchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(NameSpace, Subsystem, "launch_failures_total"),
			Help: "External programs that could not be started",
		}),

		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(NameSpace, Subsystem, "timeouts_total"),
			Help: "Jobs killed after exceeding the timeout",
		}),

		Interrupts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(NameSpace, Subsystem, "interrupts_total"),
			Help: "Interrupts received by the shell",
		}),

		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prometheus.BuildFQName(NameSpace, Subsystem, "job_duration_seconds"),
			Help:    "Time external jobs took to complete",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
	}

	m.registry.MustRegister(m.Commands, m.LaunchFailures, m.Timeouts, m.Interrupts, m.JobDuration)

	return m
}

// ObserveJob records a finished external job.
func (m *Metrics) ObserveJob(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// CountCommand records an executed line.
func (m *Metrics) CountCommand(kind string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(kind).Inc()
}

// CountTimeout records a job killed by the watchdog.
func (m *Metrics) CountTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

// CountLaunchFailure records a program that could not be started.
func (m *Metrics) CountLaunchFailure() {
	if m == nil {
		return
	}
	m.LaunchFailures.Inc()
}

// CountInterrupt records an interrupt.
func (m *Metrics) CountInterrupt() {
	if m == nil {
		return
	}
	m.Interrupts.Inc()
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current values to path in the format understood by
// the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
