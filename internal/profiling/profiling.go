package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler for cull-tree build and query steps.

type entry struct {
	total time.Duration
	calls int
}

var (
	mu          sync.Mutex
	frameTotals = make(map[string]entry)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("cull.AddPoly")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		e := frameTotals[name]
		e.total += d
		e.calls++
		frameTotals[name] = e
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame durations.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v.total
	}
	return out
}

// Calls returns how many times name was tracked this frame.
func Calls(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return frameTotals[name].calls
}

// TopN formats top N durations from the current frame totals.
// Example: "cull.Harvest:4.2ms(3), cull.AddPoly:2.1ms(40)"
func TopN(n int) string {
	mu.Lock()
	type pair struct {
		name string
		e    entry
	}
	list := make([]pair, 0, len(frameTotals))
	for k, v := range frameTotals {
		list = append(list, pair{name: k, e: v})
	}
	mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].e.total > list[j].e.total })
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].e.total.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms)+"("+strconv.Itoa(list[i].e.calls)+")")
	}
	return strings.Join(parts, ", ")
}

func formatMs(ms float64) string {
	// one decimal, drop .0 on whole numbers
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
