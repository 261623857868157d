package capture

import "time"

// Clock defines a public type used by avfacePay APIs.
//
// Clock instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock describes the realclock operation and its observable behavior.
//
// RealClock returns the wall-clock implementation used outside of tests.
func RealClock() Clock { return realClock{} }

// VirtualClock defines a public type used by avfacePay APIs.
//
// VirtualClock is an adjustable clock for deterministic timing tests. It is
// not safe for concurrent use; tests drive it from a single goroutine.
type VirtualClock struct {
	now time.Time
}

// NewVirtualClock describes the newvirtualclock operation and its observable behavior.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now describes the now operation and its observable behavior.
func (c *VirtualClock) Now() time.Time { return c.now }

// Advance describes the advance operation and its observable behavior.
func (c *VirtualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
