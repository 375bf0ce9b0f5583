package domain

import "time"

// LifecycleState is the derived, never-stored view of an auction's
// position in its window. Every read path derives it through
// DeriveState so listings, detail views and countdowns agree.
type LifecycleState string

const (
	StateUpcoming LifecycleState = "upcoming"
	StateActive   LifecycleState = "active"
	StateClosed   LifecycleState = "closed"
)

// DeriveState computes the lifecycle state and whole seconds remaining
// until the window ends, as a pure function of the stored fields and a
// reference time. Seconds remaining clamps to zero once closed or ended.
func DeriveState(status Status, startTime, endTime, now time.Time) (LifecycleState, int64) {
	if status == StatusClosed || !now.Before(endTime) {
		return StateClosed, 0
	}

	remaining := int64(endTime.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}

	if !now.Before(startTime) {
		return StateActive, remaining
	}
	return StateUpcoming, remaining
}
