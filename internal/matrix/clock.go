package matrix

import "time"

// Clock supplies "now" to anything that evaluates deadlines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = systemClock{}

// FixedClock always returns the same instant. Handy in tests and sweeps.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c).UTC() }
