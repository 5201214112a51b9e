package tasks

import (
	"sort"
	"sync"
	"time"
)

type pendingWrite struct {
	timer *time.Timer
	fn    func()
}

// Debouncer runs the last function triggered for a key once the key has been
// quiet for the configured delay. A non-positive delay runs immediately.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingWrite
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingWrite),
	}
}

func (d *Debouncer) Trigger(key string, fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	w := &pendingWrite{fn: fn}
	w.timer = time.AfterFunc(d.delay, func() { d.fire(key, w) })
	d.pending[key] = w
}

func (d *Debouncer) fire(key string, w *pendingWrite) {
	d.mu.Lock()
	if d.pending[key] != w {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	w.fn()
}

// Cancel drops the pending write for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.pending[key]; ok {
		w.timer.Stop()
		delete(d.pending, key)
	}
}

// Flush runs every pending write now, in key order.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for key := range d.pending {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fns := make([]func(), 0, len(keys))
	for _, key := range keys {
		w := d.pending[key]
		w.timer.Stop()
		fns = append(fns, w.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
