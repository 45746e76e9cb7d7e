package views

import (
	"sync"
	"time"
)

// Search input is debounced within these bounds
const (
	MinDebounce     = 300 * time.Millisecond
	DefaultDebounce = 400 * time.Millisecond
	MaxDebounce     = 500 * time.Millisecond
)

// Debouncer runs the last triggered action once the input has been quiet
// for a fixed delay
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer clamps delay into [MinDebounce, MaxDebounce]; zero means
// DefaultDebounce
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: ClampDebounce(delay)}
}

// ClampDebounce applies the debounce bounds
func ClampDebounce(delay time.Duration) time.Duration {
	switch {
	case delay == 0:
		return DefaultDebounce
	case delay < MinDebounce:
		return MinDebounce
	case delay > MaxDebounce:
		return MaxDebounce
	}
	return delay
}

// Delay is the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn, cancelling whatever was scheduled before
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels a pending action. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
