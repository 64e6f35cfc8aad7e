package mytime

import "time"

var (
	ExampleTime time.Time
)

func init() {
	ExampleTime, _ = time.Parse("2006-01-02T15:04:05Z", "2025-03-01T12:00:00Z")
}

//go:generate mockgen -source=api.go -package mytime -destination mock.go Nower,Scheduler
type Nower interface {
	Now() time.Time
}

// Scheduler schedules a single callback after a delay. The returned cancel
// func stops the callback when it has not fired yet. Abstracted away from
// time.AfterFunc so debounce- and expiry-logic can be tested against a
// virtual clock.
type Scheduler interface {
	Schedule(d time.Duration, f func()) (cancel func())
}
