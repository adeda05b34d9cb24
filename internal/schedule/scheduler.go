// Package schedule runs delayed callbacks cooperatively from the frame loop.
//
// Nothing here starts goroutines: timers fire only inside RunDue, on the
// caller's goroutine, so callbacks can touch render state without locking.
package schedule

import (
	"container/heap"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timer is a pending callback.
type Timer struct {
	when  time.Time
	seq   uint64
	fn    func()
	index int // heap index, -1 once removed
	s     *Scheduler
}

// Stop cancels the timer. It returns false if the timer already fired or was
// stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.s.queue, t.index)
	return true
}

// Pending reports whether the timer is still waiting to fire.
func (t *Timer) Pending() bool {
	return t != nil && t.index >= 0
}

// When returns the deadline of the timer.
func (t *Timer) When() time.Time {
	return t.when
}

// Scheduler is a deadline-ordered timer queue.
type Scheduler struct {
	clock Clock
	queue timerQueue
	seq   uint64
}

// New creates a scheduler reading time from clock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules fn to run d after now. Negative delays count as zero.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{when: s.clock.Now().Add(d), seq: s.seq, fn: fn, s: s}
	heap.Push(&s.queue, t)
	return t
}

// RunDue fires every timer whose deadline has passed, earliest first, and
// returns how many ran. Timers scheduled by those callbacks wait for the next
// call even if already due, so a zero-delay chain cannot stall a frame.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()
	limit := s.seq
	ran := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.when.After(now) || next.seq > limit {
			break
		}
		heap.Pop(&s.queue)
		next.fn()
		ran++
	}
	return ran
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Clear cancels every pending timer.
func (s *Scheduler) Clear() {
	for s.queue.Len() > 0 {
		heap.Pop(&s.queue)
	}
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
