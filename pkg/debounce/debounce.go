// Package debounce coalesces bursts of calls into a bounded number of
// invocations after a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Options selects the quiet period and which edges of a burst fire.
// When neither edge is set the trailing edge is used.
type Options struct {
	Wait     time.Duration
	Leading  bool
	Trailing bool
}

// Stopper is the subset of *time.Timer the debouncer relies on.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc is the default.
type Scheduler func(d time.Duration, f func()) Stopper

func realScheduler(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Debouncer delivers the latest value of a burst to fn.
type Debouncer[T any] struct {
	opts     Options
	fn       func(T)
	schedule Scheduler

	mu      sync.Mutex
	timer   Stopper
	gen     uint64
	pending bool
	last    T
}

// New builds a debouncer using real timers.
func New[T any](opts Options, fn func(T)) *Debouncer[T] {
	return NewWithScheduler(opts, fn, realScheduler)
}

// NewWithScheduler is New with an injectable scheduler.
func NewWithScheduler[T any](opts Options, fn func(T), schedule Scheduler) *Debouncer[T] {
	if !opts.Leading && !opts.Trailing {
		opts.Trailing = true
	}
	return &Debouncer[T]{opts: opts, fn: fn, schedule: schedule}
}

// Trigger records v. On an idle debouncer with Leading set, fn runs right
// away; otherwise v is held until the quiet period ends.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	idle := d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	fireNow := idle && d.opts.Leading
	if fireNow {
		d.pending = false
	} else if d.opts.Trailing {
		d.pending = true
		d.last = v
	}
	d.timer = d.schedule(d.opts.Wait, func() { d.expire(gen) })
	d.mu.Unlock()

	if fireNow {
		d.fn(v)
	}
}

func (d *Debouncer[T]) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v, run := d.last, d.pending && d.opts.Trailing
	d.pending = false
	var zero T
	d.last = zero
	d.mu.Unlock()

	if run {
		d.fn(v)
	}
}

// Cancel drops any pending value and stops the timer.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	var zero T
	d.last = zero
}

// Flush runs a pending trailing call immediately. It reports whether fn ran.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	v, run := d.last, d.pending && d.opts.Trailing
	d.pending = false
	var zero T
	d.last = zero
	d.mu.Unlock()

	if run {
		d.fn(v)
	}
	return run
}

// Pending reports whether a trailing call is waiting.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
