package frame

import (
	"time"
)

// HistorySize is the number of frames a History averages over.
const HistorySize = 60

// History is a rolling window of frame times.
type History struct {
	times [HistorySize]time.Duration
	next  int
	count int
}

// Add records one frame time, dropping the oldest once the window is full.
func (h *History) Add(d time.Duration) {
	h.times[h.next] = d
	h.next = (h.next + 1) % HistorySize
	h.count = min(h.count+1, HistorySize)
}

// Len returns the number of frames in the window.
func (h *History) Len() int { return h.count }

// Last returns the most recent frame time, or 0 before the first.
func (h *History) Last() time.Duration {
	if h.count == 0 {
		return 0
	}
	return h.times[(h.next+HistorySize-1)%HistorySize]
}

// Summary is the min, mean and max of a window of frame times.
type Summary struct {
	Min, Avg, Max time.Duration
}

// FPS returns the frame rate matching the mean frame time.
func (s Summary) FPS() float64 {
	if s.Avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Avg)
}

// Summary reduces the window.
func (h *History) Summary() Summary {
	if h.count == 0 {
		return Summary{}
	}
	s := Summary{Min: h.times[0], Max: h.times[0]}
	var total time.Duration
	for _, d := range h.times[:h.count] {
		total += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Avg = total / time.Duration(h.count)
	return s
}
