// Package frame paces frame loops and keeps their timing.
package frame

import (
	"runtime"
	"time"
)

// Clock is the time source of a Limiter.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// spinSlack is how close to a deadline the limiter stops sleeping and yields
// instead; sleeps overshoot by about this much on most schedulers.
const spinSlack = 200 * time.Microsecond

// Limiter paces a loop to a frame rate and records how long each frame took.
type Limiter struct {
	clock  Clock
	slack  time.Duration
	period time.Duration

	deadline time.Time
	last     time.Time
	history  History
}

// NewLimiter returns a limiter for fps frames per second; 0 or less runs the
// loop unpaced and only measures it.
func NewLimiter(fps int) *Limiter {
	l := &Limiter{clock: systemClock{}, slack: spinSlack}
	l.SetFPS(fps)
	return l
}

// SetFPS changes the frame rate from the next Tick on.
func (l *Limiter) SetFPS(fps int) {
	if fps <= 0 {
		l.period = 0
	} else {
		l.period = time.Second / time.Duration(fps)
	}
	l.deadline = time.Time{}
}

// Tick ends a frame: it blocks until the frame's deadline and returns the
// time since the previous Tick. The first Tick returns 0.
func (l *Limiter) Tick() time.Duration {
	if l.period > 0 {
		l.wait()
	}

	now := l.clock.Now()
	var d time.Duration
	if !l.last.IsZero() {
		d = now.Sub(l.last)
		l.history.Add(d)
	}
	l.last = now
	return d
}

func (l *Limiter) wait() {
	now := l.clock.Now()
	if l.deadline.IsZero() {
		l.deadline = now
	}
	l.deadline = l.deadline.Add(l.period)

	// A frame that ran more than a period late starts a new schedule
	// instead of rushing the following frames.
	if now.Sub(l.deadline) > l.period {
		l.deadline = now
		return
	}

	for {
		remaining := l.deadline.Sub(l.clock.Now())
		switch {
		case remaining <= 0:
			return
		case remaining > l.slack:
			l.clock.Sleep(remaining - l.slack)
		default:
			runtime.Gosched()
		}
	}
}

// History returns the timing of recent frames.
func (l *Limiter) History() *History {
	return &l.history
}
