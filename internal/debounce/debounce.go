// Package debounce provides a single-slot pending-work cell.
//
// A Cell holds at most one pending value. Put overwrites whatever is
// pending and restarts the quiet window; Ready hands the value out once the
// window has passed without another Put; Take hands it out immediately.
// Nothing runs in the background: the owner polls Ready from its own tick
// loop or calls Take before reading results.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is roughly one frame at 60 Hz.
const DefaultWindow = 16 * time.Millisecond

// Cell is a coalescing single-slot pending value.
//
// Cell is safe for concurrent use.
type Cell[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	pending bool
	value   T
	due     time.Time
	puts    uint64
}

// New creates a cell with the given quiet window. now defaults to time.Now.
// A window of 0 or less makes every Put immediately ready.
func New[T any](window time.Duration, now func() time.Time) *Cell[T] {
	if now == nil {
		now = time.Now
	}
	return &Cell[T]{window: window, now: now}
}

// Put replaces the pending value and restarts the window.
// It reports whether a previous value was overwritten.
func (c *Cell[T]) Put(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := c.pending
	c.pending = true
	c.value = v
	c.due = c.now().Add(c.window)
	c.puts++
	return replaced
}

// Peek returns the pending value without consuming it.
func (c *Cell[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.value, c.pending
}

// Ready consumes and returns the pending value if its window has passed.
func (c *Cell[T]) Ready() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending || c.now().Before(c.due) {
		var zero T
		return zero, false
	}
	return c.takeLocked(), true
}

// Take consumes and returns the pending value regardless of the window.
func (c *Cell[T]) Take() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending {
		var zero T
		return zero, false
	}
	return c.takeLocked(), true
}

// Cancel drops the pending value. It reports whether one was pending.
func (c *Cell[T]) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	was := c.pending
	c.takeLocked()
	return was
}

// Pending reports whether a value is waiting.
func (c *Cell[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending
}

// Due returns when the pending value becomes ready.
func (c *Cell[T]) Due() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.due, c.pending
}

// Puts returns how many values have been put over the cell's lifetime.
func (c *Cell[T]) Puts() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.puts
}

func (c *Cell[T]) takeLocked() T {
	v := c.value
	var zero T
	c.value = zero
	c.pending = false
	c.due = time.Time{}
	return v
}
