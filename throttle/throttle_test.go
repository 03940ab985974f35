package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowFirstCallPasses(t *testing.T) {
	t.Parallel()

	e := NewEmitter(100 * time.Millisecond)
	assert.True(t, e.Allow())
}

func TestAllowDropsInsideWindow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	e := NewEmitter(100 * time.Millisecond)
	e.SetClock(func() time.Time { return now })

	assert.True(t, e.Allow())
	for i := 0; i < 10; i++ {
		now = now.Add(5 * time.Millisecond)
		assert.False(t, e.Allow(), "call %d inside window must be dropped", i)
	}

	now = now.Add(100 * time.Millisecond)
	assert.True(t, e.Allow())
}

func TestAllowWindowStartsAtLastEmission(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	e := NewEmitter(100 * time.Millisecond)
	e.SetClock(func() time.Time { return now })

	assert.True(t, e.Allow())

	// 99ms after the emission: still inside.
	now = now.Add(99 * time.Millisecond)
	assert.False(t, e.Allow())

	// 100ms after the emission: window elapsed.
	now = now.Add(1 * time.Millisecond)
	assert.True(t, e.Allow())

	// The new window is measured from the second emission.
	now = now.Add(99 * time.Millisecond)
	assert.False(t, e.Allow())
}

func TestResetForgetsLastEmission(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	e := NewEmitter(time.Hour)
	e.SetClock(func() time.Time { return now })

	assert.True(t, e.Allow())
	assert.False(t, e.Allow())

	e.Reset()
	assert.True(t, e.Allow())
}
