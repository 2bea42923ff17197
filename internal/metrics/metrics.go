// Package metrics holds the Prometheus collectors for graph builds.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector holds the build metrics. Each collector has its own registry,
// so several can live in one process.
type Collector struct {
	registry *prometheus.Registry

	Builds        *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	GraphNodes    prometheus.Histogram
	CustomTypes   *prometheus.CounterVec
	SinkPublishes *prometheus.CounterVec
}

// NewCollector creates and registers the build metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	builds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_builds_total",
			Help:      "Graph build requests by page kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	buildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Time spent assembling and serializing a graph",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"kind"},
	)

	graphNodes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Top-level nodes per emitted graph",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		},
	)

	customTypes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_types_total",
			Help:      "Custom types considered for a page, by outcome",
		},
		[]string{"outcome"},
	)

	sinkPublishes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_publishes_total",
			Help:      "Documents handed to the output sink, by status",
		},
		[]string{"status"},
	)

	registry.MustRegister(builds, buildDuration, graphNodes, customTypes, sinkPublishes)

	return &Collector{
		registry:      registry,
		Builds:        builds,
		BuildDuration: buildDuration,
		GraphNodes:    graphNodes,
		CustomTypes:   customTypes,
		SinkPublishes: sinkPublishes,
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveBuild records one build request.
func (c *Collector) ObserveBuild(kind, outcome string, nodes int, elapsed time.Duration) {
	c.Builds.WithLabelValues(kind, outcome).Inc()
	if outcome != "built" {
		return
	}
	c.BuildDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	c.GraphNodes.Observe(float64(nodes))
}

// ObserveCustomType records whether a custom type joined a graph.
func (c *Collector) ObserveCustomType(applied bool) {
	if applied {
		c.CustomTypes.WithLabelValues("matched").Inc()
		return
	}
	c.CustomTypes.WithLabelValues("skipped").Inc()
}

// ObserveSink records a sink publish.
func (c *Collector) ObserveSink(err error) {
	if err != nil {
		c.SinkPublishes.WithLabelValues("error").Inc()
		return
	}
	c.SinkPublishes.WithLabelValues("ok").Inc()
}

// WriteText writes every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
