package capture

import "time"

// StabilityTracker defines a public type used by avfacePay APIs.
//
// StabilityTracker accumulates the continuous duration a detected face has
// remained aligned with the guide circle. Integration is strict: a single
// misaligned tick discards all accumulated dwell, so alignment flicker never
// earns partial credit toward auto-capture.
type StabilityTracker struct {
	threshold  time.Duration
	dwellStart time.Time
	tracking   bool
}

// NewStabilityTracker describes the newstabilitytracker operation and its observable behavior.
func NewStabilityTracker(threshold time.Duration) *StabilityTracker {
	return &StabilityTracker{threshold: threshold}
}

// Observe feeds one alignment sample. The first aligned tick after a reset
// records dwell start; any misaligned tick fully resets it.
func (s *StabilityTracker) Observe(aligned bool, now time.Time) {
	if !aligned {
		s.Reset()
		return
	}
	if !s.tracking {
		s.dwellStart = now
		s.tracking = true
	}
}

// Ready reports whether the face has stayed continuously aligned for at
// least the stability threshold.
func (s *StabilityTracker) Ready(now time.Time) bool {
	return s.tracking && now.Sub(s.dwellStart) >= s.threshold
}

// Dwell describes the dwell operation and its observable behavior.
//
// Dwell returns the continuous aligned duration accumulated so far.
func (s *StabilityTracker) Dwell(now time.Time) time.Duration {
	if !s.tracking {
		return 0
	}
	return now.Sub(s.dwellStart)
}

// Reset describes the reset operation and its observable behavior.
func (s *StabilityTracker) Reset() {
	s.tracking = false
	s.dwellStart = time.Time{}
}
