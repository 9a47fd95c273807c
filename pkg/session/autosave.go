package session

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// Debouncer schedules at most one pending action per key: scheduling again
// before the delay expires replaces the pending action and restarts the
// delay. Actions run on their own goroutine when the window closes.
//
// There is no cancellation: a task already in flight when the owner moves on
// completes against the state it captured (the session's accepted
// switch-documents race).
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]func(func())
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]func(func())),
	}
}

// Schedule (re)arms the action for key. Any previously scheduled action for
// the same key that has not yet fired is replaced.
func (d *Debouncer) Schedule(key string, action func()) {
	d.mu.Lock()
	bounced, ok := d.pending[key]
	if !ok {
		bounced = debounce.New(d.delay)
		d.pending[key] = bounced
	}
	d.mu.Unlock()

	bounced(action)
}

// Delay returns the configured quiet window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
