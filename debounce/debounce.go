// Package debounce coalesces bursts of triggers into a single call that runs
// once the burst has been quiet for a fixed window.
package debounce

import (
	"sync"
	"time"

	"github.com/deltegui/bankconsole/clock"
)

// DefaultWindow matches the quiet period used by the filter forms.
const DefaultWindow = 500 * time.Millisecond

type Debouncer struct {
	clock  clock.Clock
	window time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[string]*call
	stopped bool
}

type call struct {
	seq   uint64
	timer clock.Timer
	fn    func()
}

func New(c clock.Clock, window time.Duration) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	return &Debouncer{
		clock:   c,
		window:  window,
		pending: make(map[string]*call),
	}
}

// Trigger (re)starts the quiet window for key. Only the fn given by the last
// Trigger of a burst runs.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.window <= 0 {
		d.mu.Unlock()
		fn()
		return
	}
	if prev, ok := d.pending[key]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	d.seq++
	c := &call{seq: d.seq, fn: fn}
	d.pending[key] = c
	d.mu.Unlock()

	timer := d.clock.AfterFunc(d.window, func() { d.fire(key, c.seq) })
	d.mu.Lock()
	if current, ok := d.pending[key]; ok && current.seq == c.seq {
		c.timer = timer
	}
	d.mu.Unlock()
}

func (d *Debouncer) fire(key string, seq uint64) {
	d.mu.Lock()
	c, ok := d.pending[key]
	if !ok || c.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	c.fn()
}

// Flush runs every pending call now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*call, 0, len(d.pending))
	for key, c := range d.pending {
		if c.timer != nil {
			c.timer.Stop()
		}
		calls = append(calls, c)
		delete(d.pending, key)
	}
	d.mu.Unlock()
	for _, c := range calls {
		c.fn()
	}
}

// Stop drops pending calls. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, c := range d.pending {
		if c.timer != nil {
			c.timer.Stop()
		}
		delete(d.pending, key)
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
