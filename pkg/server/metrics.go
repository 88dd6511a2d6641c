package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kataras/figma-analyzer/pkg/components"
	"github.com/kataras/figma-analyzer/pkg/extractor"
)

type metrics struct {
	registry   *prometheus.Registry
	analyses   *prometheus.CounterVec
	components *prometheus.CounterVec
	treeNodes  prometheus.Histogram
	cache      *prometheus.CounterVec
}

// newMetrics registers the server collectors on a private registry, so that
// several servers can live in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_analyzer_analyses_total",
				Help: "Total number of analysis requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		components: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_analyzer_components_detected_total",
				Help: "Total number of detected components by kind",
			},
			[]string{"kind"},
		),
		treeNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "figma_analyzer_tree_nodes",
				Help:    "Number of nodes in analyzed trees",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_analyzer_tree_cache_total",
				Help: "Tree cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.analyses,
		m.components,
		m.treeNodes,
		m.cache,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) observe(source string, a *extractor.Analysis) {
	m.analyses.WithLabelValues(source, "ok").Inc()

	s := a.Components.Summary
	m.components.WithLabelValues(components.KindButton).Add(float64(s.ButtonCount))
	m.components.WithLabelValues(components.KindCard).Add(float64(s.CardCount))
	m.components.WithLabelValues(components.KindNavigation).Add(float64(s.NavigationCount))
	m.components.WithLabelValues(components.KindForm).Add(float64(s.FormCount))
	m.components.WithLabelValues(components.KindIcon).Add(float64(s.IconCount))
}
