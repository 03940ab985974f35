package throttle

import (
	"sync"
	"time"
)

// Emitter bounds the rate of position emissions to one per interval.
// There is no queue: a call landing inside the window is dropped and the
// next call after the window carries whatever state it was given, so the
// most recent state always wins.
type Emitter struct {
	mu       sync.Mutex
	interval time.Duration
	lastEmit time.Time

	now func() time.Time
}

// NewEmitter creates an emitter with the given minimum interval between
// permitted emissions. The first call is always permitted.
func NewEmitter(interval time.Duration) *Emitter {
	return &Emitter{
		interval: interval,
		now:      time.Now,
	}
}

// Allow reports whether an emission may happen now, and if so records
// the emission time. A false return means the caller must drop the
// update, not buffer it.
func (e *Emitter) Allow() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if now.Sub(e.lastEmit) < e.interval {
		return false
	}
	e.lastEmit = now
	return true
}

// Reset forgets the last emission time so the next Allow passes.
// Called when a new connection is established.
func (e *Emitter) Reset() {
	e.mu.Lock()
	e.lastEmit = time.Time{}
	e.mu.Unlock()
}

// SetClock overrides the time source, for tests.
func (e *Emitter) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}
