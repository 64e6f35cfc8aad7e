package mytime

import (
	"sort"
	"time"
)

// VirtualScheduler is a deterministic Scheduler for tests: callbacks fire
// only when the virtual clock is advanced past their due time.
type VirtualScheduler struct {
	now     time.Time
	nextUID int
	pending map[int]*virtualTimer
}

type virtualTimer struct {
	uid int
	due time.Time
	f   func()
}

func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{
		now:     start,
		pending: map[int]*virtualTimer{},
	}
}

func (s *VirtualScheduler) Now() time.Time {
	return s.now
}

func (s *VirtualScheduler) Schedule(d time.Duration, f func()) func() {
	s.nextUID++
	timer := &virtualTimer{
		uid: s.nextUID,
		due: s.now.Add(d),
		f:   f,
	}
	s.pending[timer.uid] = timer
	return func() {
		delete(s.pending, timer.uid)
	}
}

// Advance moves the clock forward and fires all due callbacks in due-order.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.now = s.now.Add(d)

	due := []*virtualTimer{}
	for _, timer := range s.pending {
		if !timer.due.After(s.now) {
			due = append(due, timer)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	for _, timer := range due {
		delete(s.pending, timer.uid)
		timer.f()
	}
}

// PendingCount reports how many scheduled callbacks have not fired yet.
func (s *VirtualScheduler) PendingCount() int {
	return len(s.pending)
}
