package mytime

import "time"

type RealNower struct{}

func (n RealNower) Now() time.Time {
	return time.Now()
}

type RealScheduler struct{}

func (s RealScheduler) Schedule(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() {
		t.Stop()
	}
}
