package timers

import (
	"sync"
	"time"
)

// Debouncer runs trailing edge debounced functions.
//
// Every call to Trigger for a given key restarts that key's timer;
// only the function of the last call runs, once no other call came
// in for the debouncer's delay. A finished timer is always removed
// from the debouncer.
type Debouncer struct {
	sync.Mutex

	delay  time.Duration
	timers map[string]*entry
}

type entry struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a new Debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*entry),
	}
}

// Delay returns the debouncer's delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules f to run after the delay, replacing any pending
// function for the same key.
func (d *Debouncer) Trigger(key string, f func()) {
	d.Lock()
	defer d.Unlock()

	e, ok := d.timers[key]
	if !ok {
		e = &entry{}
		d.timers[key] = e
	} else {
		e.timer.Stop()
	}

	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(d.delay, func() {
		d.Lock()
		current, ok := d.timers[key]
		if !ok || current.gen != gen {
			// replaced or canceled after the timer fired
			d.Unlock()
			return
		}
		delete(d.timers, key)
		d.Unlock()

		f()
	})
}

// Cancel stops the pending function of a key. It returns true when
// there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.Lock()
	defer d.Unlock()

	e, ok := d.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.timers, key)
	return true
}

// Pending returns true if a function is waiting to run for the key.
func (d *Debouncer) Pending(key string) bool {
	d.Lock()
	defer d.Unlock()

	_, ok := d.timers[key]
	return ok
}

// Stop cancels every pending function.
func (d *Debouncer) Stop() {
	d.Lock()
	defer d.Unlock()

	for k, e := range d.timers {
		e.timer.Stop()
		delete(d.timers, k)
	}
}
