// Package metrics counts what a generation run produced. The counters live
// in a per-run registry and are dumped in the Prometheus text format when a
// metrics file is requested.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mockmail"

// Recorder holds the counters of one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	messages    *prometheus.CounterVec
	attachments *prometheus.CounterVec
	omitted     *prometheus.CounterVec
	delivered   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	bytes       prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generate",
				Name:      "messages_total",
				Help:      "Messages generated, by scenario",
			},
			[]string{"scenario"},
		),
		attachments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generate",
				Name:      "attachments_total",
				Help:      "Attachments and inline parts added, by kind",
			},
			[]string{"kind"},
		),
		omitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generate",
				Name:      "assets_omitted_total",
				Help:      "Optional assets left out because they were unavailable, by kind",
			},
			[]string{"kind"},
		),
		delivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sink",
				Name:      "delivered_total",
				Help:      "Messages handed to a sink, by sink",
			},
			[]string{"sink"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sink",
				Name:      "failures_total",
				Help:      "Failed sink deliveries, by sink",
			},
			[]string{"sink"},
		),
		bytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generate",
				Name:      "bytes_total",
				Help:      "Bytes of serialized messages",
			},
		),
	}
}

// Message records one generated message of size bytes.
func (r *Recorder) Message(scenario string, size int) {
	if r == nil {
		return
	}
	r.messages.WithLabelValues(scenario).Inc()
	r.bytes.Add(float64(size))
}

// Attachment records one attachment or inline part of the given kind.
func (r *Recorder) Attachment(kind string) {
	if r == nil {
		return
	}
	r.attachments.WithLabelValues(kind).Inc()
}

// Omitted records an optional asset that could not be produced.
func (r *Recorder) Omitted(kind string) {
	if r == nil {
		return
	}
	r.omitted.WithLabelValues(kind).Inc()
}

// Delivered records the outcome of handing one message to a sink.
func (r *Recorder) Delivered(sink string, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.failures.WithLabelValues(sink).Inc()
		return
	}
	r.delivered.WithLabelValues(sink).Inc()
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes all counters to path in the Prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
