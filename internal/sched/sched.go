package sched

import (
	"sync"
	"time"
)

// Task is a named, single-slot cancellable timer. Scheduling always replaces
// any pending run: at most one callback per Task is ever outstanding, and a
// cancelled or replaced callback never fires.
type Task struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Schedule cancels any pending run and arms the task to fire fn after d.
// fn runs on its own goroutine.
func (t *Task) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		// A Cancel or re-Schedule that raced with the timer firing must
		// win: only the latest generation is allowed to run.
		t.mu.Lock()
		current := t.gen == gen
		if current {
			t.timer = nil
		}
		t.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel stops any pending run. Safe to call on a task that was never
// scheduled, and safe to call repeatedly.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Pending reports whether a run is currently scheduled and not yet fired.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
