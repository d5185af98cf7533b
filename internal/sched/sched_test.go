package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	var task Task
	done := make(chan struct{})
	task.Schedule(10*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestCancelPreventsFire(t *testing.T) {
	var task Task
	var fired atomic.Int32
	task.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	task.Cancel()
	time.Sleep(60 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Fatalf("cancelled callback fired %d times", n)
	}
}

func TestRescheduleReplacesPrevious(t *testing.T) {
	var task Task
	var first, second atomic.Int32
	task.Schedule(20*time.Millisecond, func() { first.Add(1) })
	task.Schedule(40*time.Millisecond, func() { second.Add(1) })
	time.Sleep(100 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatal("replaced callback fired")
	}
	if second.Load() != 1 {
		t.Fatalf("latest callback fired %d times, want 1", second.Load())
	}
}

func TestCancelIdempotent(t *testing.T) {
	var task Task
	task.Cancel()
	task.Cancel()
	task.Schedule(10*time.Millisecond, func() {})
	task.Cancel()
	task.Cancel()
	if task.Pending() {
		t.Fatal("task should not be pending after cancel")
	}
}
