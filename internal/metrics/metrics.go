// Package metrics exports per-frame cull statistics to Prometheus.
package metrics

import (
	"time"

	"cullbsp/internal/cull"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultLabel = "result"

var (
	cullNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cull_tree_nodes",
		Help: "The number of nodes in the cull tree of the last frame.",
	})

	cullPolys = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cull_polys",
		Help: "The occluder polygons offered to the cull tree, by outcome.",
	}, []string{
		resultLabel,
	})

	cullNodeLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cull_node_limit_hits",
		Help: "The occluder subtrees dropped because the node limit was reached.",
	})

	cullVisibleLeaves = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cull_visible_leaves",
		Help: "The number of leaves harvested as visible in the last frame.",
	})

	cullFrameLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cull_frame_latency",
		Help:    "The time to build the cull tree and harvest a frame.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})
)

// Observe records one frame.
func Observe(s cull.Stats, d time.Duration) {
	cullNodes.Set(float64(s.Nodes))
	cullVisibleLeaves.Set(float64(s.LeavesHarvested))
	cullNodeLimitHits.Add(float64(s.NodeLimitHits))
	cullFrameLatency.Observe(d.Seconds())

	addPolys("added", s.PolysAdded)
	addPolys("edge_on", s.RejectedEdgeOn)
	addPolys("back_face", s.RejectedBackFace)
	addPolys("hidden", s.RejectedHidden)
	addPolys("invalid", s.RejectedInvalid)
}

func addPolys(result string, n int) {
	cullPolys.With(prometheus.Labels{
		resultLabel: result,
	}).Add(float64(n))
}
