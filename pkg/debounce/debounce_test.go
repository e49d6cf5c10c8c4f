package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) schedule(_ time.Duration, f func()) Stopper {
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// fireLatest runs the newest timer as if it elapsed.
func (s *fakeScheduler) fireLatest() {
	t := s.timers[len(s.timers)-1]
	if !t.stopped {
		t.stopped = true
		t.f()
	}
}

func TestTrailingDeliversLastValue(t *testing.T) {
	sched := &fakeScheduler{}
	var got []int
	d := NewWithScheduler(Options{Wait: time.Second}, func(v int) { got = append(got, v) }, sched.schedule)

	d.Trigger(1)
	d.Trigger(2)
	d.Trigger(3)
	require.Empty(t, got)
	require.True(t, d.Pending())

	sched.fireLatest()
	require.Equal(t, []int{3}, got)
	require.False(t, d.Pending())
}

func TestStaleTimerIsIgnored(t *testing.T) {
	sched := &fakeScheduler{}
	var got []int
	d := NewWithScheduler(Options{Wait: time.Second}, func(v int) { got = append(got, v) }, sched.schedule)

	d.Trigger(1)
	first := sched.timers[0]
	d.Trigger(2)
	first.f() // raced past Stop
	require.Empty(t, got)

	sched.fireLatest()
	require.Equal(t, []int{2}, got)
}

func TestLeadingOnly(t *testing.T) {
	sched := &fakeScheduler{}
	var got []int
	d := NewWithScheduler(Options{Wait: time.Second, Leading: true}, func(v int) { got = append(got, v) }, sched.schedule)

	d.Trigger(1)
	d.Trigger(2)
	require.Equal(t, []int{1}, got)
	sched.fireLatest()
	require.Equal(t, []int{1}, got)

	d.Trigger(3)
	require.Equal(t, []int{1, 3}, got)
}

func TestLeadingAndTrailing(t *testing.T) {
	sched := &fakeScheduler{}
	var got []int
	d := NewWithScheduler(Options{Wait: time.Second, Leading: true, Trailing: true}, func(v int) { got = append(got, v) }, sched.schedule)

	d.Trigger(1)
	require.Equal(t, []int{1}, got)
	sched.fireLatest()
	require.Equal(t, []int{1}, got, "no trailing call without a second trigger")

	d.Trigger(2)
	d.Trigger(3)
	sched.fireLatest()
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestCancelAndFlush(t *testing.T) {
	sched := &fakeScheduler{}
	var got []int
	d := NewWithScheduler(Options{Wait: time.Second}, func(v int) { got = append(got, v) }, sched.schedule)

	d.Trigger(1)
	d.Cancel()
	sched.timers[0].f()
	require.Empty(t, got)
	require.False(t, d.Flush())

	d.Trigger(2)
	require.True(t, d.Flush())
	require.Equal(t, []int{2}, got)
}

func TestRealTimer(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	d := New(Options{Wait: 10 * time.Millisecond}, func(v string) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	d.Trigger("a")
	d.Trigger("b")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "b"
	}, time.Second, 5*time.Millisecond)
}
