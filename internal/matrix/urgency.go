package matrix

import "time"

// UrgencyThresholdDays is the largest day count that still counts as urgent.
const UrgencyThresholdDays = 3

const day = 24 * time.Hour

// DaysUntilDeadline returns the whole days in deadline-now, floored toward
// negative infinity: 23h ahead is 0, one hour late is -1.
// ok is false when there is no deadline.
func DaysUntilDeadline(deadline *time.Time, now time.Time) (days int, ok bool) {
	if deadline == nil {
		return 0, false
	}
	d := deadline.UTC().Sub(now.UTC())
	n := d / day
	if d%day < 0 {
		n--
	}
	return int(n), true
}

// IsUrgent reports whether the deadline is due within UrgencyThresholdDays
// or already passed. No deadline is never urgent.
func IsUrgent(deadline *time.Time, now time.Time) bool {
	days, ok := DaysUntilDeadline(deadline, now)
	return ok && days <= UrgencyThresholdDays
}

// Overdue reports whether the deadline has passed. With floored day counts
// any past deadline yields a negative count.
func Overdue(deadline *time.Time, now time.Time) bool {
	days, ok := DaysUntilDeadline(deadline, now)
	return ok && days < 0
}

// Evaluation bundles the derived fields for one deadline at one instant.
type Evaluation struct {
	DaysUntilDeadline *int
	Urgent            bool
	Overdue           bool
}

func Evaluate(deadline *time.Time, now time.Time) Evaluation {
	days, ok := DaysUntilDeadline(deadline, now)
	if !ok {
		return Evaluation{}
	}
	return Evaluation{
		DaysUntilDeadline: &days,
		Urgent:            days <= UrgencyThresholdDays,
		Overdue:           days < 0,
	}
}
