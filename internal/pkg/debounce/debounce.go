// internal/pkg/debounce/debounce.go
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the last function submitted for a key once no newer
// submission arrived within the quiescence window.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	seq     uint64
	stopped bool
}

type entry struct {
	timer *time.Timer
	seq   uint64
}

// New creates a debouncer with the given quiescence window
func New(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*entry),
	}
}

// Submit schedules fn for key, replacing any pending function for that key.
// It reports false after Stop.
func (d *Debouncer) Submit(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	d.seq++
	e := &entry{seq: d.seq}
	e.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		// a replaced timer that fired before Stop took effect must not run
		if !ok || cur.seq != e.seq {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
	d.pending[key] = e

	return true
}

// Cancel drops the pending function for key, if any
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether a function is waiting for key
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[key]
	return ok
}

// Stop cancels every pending function and rejects new submissions
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}
