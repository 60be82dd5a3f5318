package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock only moves when slept on or advanced.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(fps int) (*Limiter, *fakeClock) {
	c := &fakeClock{now: time.Unix(1000, 0)}
	l := NewLimiter(fps)
	l.clock = c
	l.slack = 0
	return l, c
}

func TestLimiterPaces(t *testing.T) {
	l, c := newTestLimiter(100)
	require.Zero(t, l.Tick())

	tests := []struct {
		name  string
		work  time.Duration
		frame time.Duration
	}{
		{"idle frame", 0, 10 * time.Millisecond},
		{"busy frame", 4 * time.Millisecond, 10 * time.Millisecond},
		{"frame at the deadline", 10 * time.Millisecond, 10 * time.Millisecond},
		{"late frame", 15 * time.Millisecond, 15 * time.Millisecond},
		{"catching up", 2 * time.Millisecond, 5 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.advance(tt.work)
			require.Equal(t, tt.frame, l.Tick())
		})
	}
}

func TestLimiterResyncsAfterHitch(t *testing.T) {
	l, c := newTestLimiter(100)
	l.Tick()

	c.advance(50 * time.Millisecond)
	require.Equal(t, 50*time.Millisecond, l.Tick())

	// The schedule restarts at the hitch: the next frame gets a full period.
	require.Equal(t, 10*time.Millisecond, l.Tick())
}

func TestLimiterUnpaced(t *testing.T) {
	l, c := newTestLimiter(0)
	l.Tick()
	for i := 0; i < 10; i++ {
		c.advance(time.Millisecond)
		require.Equal(t, time.Millisecond, l.Tick())
	}
	require.Empty(t, c.sleeps)
	require.Equal(t, 10, l.History().Len())
}

func TestLimiterSetFPS(t *testing.T) {
	l, _ := newTestLimiter(100)
	l.Tick()
	require.Equal(t, 10*time.Millisecond, l.Tick())

	l.SetFPS(50)
	require.Equal(t, 20*time.Millisecond, l.Tick())
}

func TestLimiterSystemClock(t *testing.T) {
	l := NewLimiter(200)
	start := time.Now()
	for i := 0; i < 6; i++ {
		l.Tick()
	}
	require.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestHistory(t *testing.T) {
	var h History
	require.Zero(t, h.Last())
	require.Equal(t, Summary{}, h.Summary())
	require.Zero(t, h.Summary().FPS())

	h.Add(10 * time.Millisecond)
	h.Add(30 * time.Millisecond)
	h.Add(20 * time.Millisecond)
	require.Equal(t, 20*time.Millisecond, h.Last())
	s := h.Summary()
	require.Equal(t, Summary{Min: 10 * time.Millisecond, Avg: 20 * time.Millisecond, Max: 30 * time.Millisecond}, s)
	require.InDelta(t, 50, s.FPS(), 1e-9)
}

func TestHistoryWraps(t *testing.T) {
	var h History
	h.Add(time.Second)
	for i := 0; i < HistorySize; i++ {
		h.Add(time.Millisecond)
	}
	require.Equal(t, HistorySize, h.Len())
	require.Equal(t, time.Millisecond, h.Summary().Max)
}
