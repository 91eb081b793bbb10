// Package host provides the runtime collaborators the ledger state machines
// depend on: the ledger clock, caller authentication, the event log, and the
// token-transfer collaborator.
package host

import (
	"sync"
	"time"
)

// Clock supplies the monotonic ledger timestamp, in seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the ledger timestamp from wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock for tests.
type ManualClock struct {
	mu sync.Mutex
	t  uint64
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t uint64) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *ManualClock) Set(t uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t += d
}
