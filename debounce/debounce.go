// Package debounce coalesces frequent events into a single trailing call per
// key. Each key holds at most one pending timer; triggering again cancels and
// reschedules it.
package debounce

import (
	"sync"
	"time"
)

type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*entry
}

type entry struct {
	timer *time.Timer
	fn    func()
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*entry),
	}
}

// Trigger schedules fn to run after the debounce delay, replacing any
// previously pending call for the same key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
	}
	e := &entry{fn: fn}
	e.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending[key] == e {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		fn()
	})
	d.pending[key] = e
}

// Cancel drops any pending call for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Flush runs every pending call immediately. Called on shutdown so debounced
// writes are never lost.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	entries := make([]*entry, 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		entries = append(entries, e)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, e := range entries {
		e.fn()
	}
}
