package frame

import (
	"fmt"
	"time"

	"cullbsp/internal/cull"
)

// Report is the on-screen summary of the latest frame.
type Report struct {
	Timing  Summary
	Stats   cull.Stats
	Visible int
	Objects int
	// Profile is the profiler's slowest calls, as from profiling.TopN.
	Profile string
	Frozen  bool
}

// Lines formats the report, one fact per line.
func (r Report) Lines() []string {
	s := r.Stats
	lines := []string{
		fmt.Sprintf("%.0f fps  %.2fms avg  %.2f..%.2fms",
			r.Timing.FPS(), ms(r.Timing.Avg), ms(r.Timing.Min), ms(r.Timing.Max)),
		fmt.Sprintf("visible %d/%d  culled %d", r.Visible, r.Objects, r.Objects-r.Visible),
		fmt.Sprintf("nodes %d (%d frustum)  polys %d/%d",
			s.Nodes, s.FrustumPlanes, s.PolysAdded, s.PolysOffered),
		fmt.Sprintf("rejected  back %d  edge %d  hidden %d  invalid %d",
			s.RejectedBackFace, s.RejectedEdgeOn, s.RejectedHidden, s.RejectedInvalid),
	}
	if s.NodeLimitHits > 0 {
		lines = append(lines, fmt.Sprintf("node limit hit %d times", s.NodeLimitHits))
	}
	if r.Profile != "" {
		lines = append(lines, r.Profile)
	}
	if r.Frozen {
		lines = append(lines, "cull camera frozen")
	}
	return lines
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
