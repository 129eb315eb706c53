package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// Quadrant is a cell of the Eisenhower matrix.
type Quadrant string

const (
	Q1 Quadrant = "Q1" // important + urgent: do first
	Q2 Quadrant = "Q2" // important, not urgent: schedule
	Q3 Quadrant = "Q3" // urgent, not important: delegate
	Q4 Quadrant = "Q4" // neither: eliminate
)

var ErrUnknownQuadrant = errors.New("unknown quadrant")

// All returns the quadrants in display order.
func All() []Quadrant {
	return []Quadrant{Q1, Q2, Q3, Q4}
}

// Classify maps an (important, urgent) pair to its quadrant.
// Every other package goes through here; do not inline the table.
func Classify(important, urgent bool) Quadrant {
	switch {
	case important && urgent:
		return Q1
	case important:
		return Q2
	case urgent:
		return Q3
	default:
		return Q4
	}
}

// ParseQuadrant accepts "Q1".."Q4" (case-insensitive, surrounding spaces ignored).
func ParseQuadrant(s string) (Quadrant, error) {
	q := Quadrant(strings.ToUpper(strings.TrimSpace(s)))
	if !q.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuadrant, s)
	}
	return q, nil
}

func (q Quadrant) Valid() bool {
	switch q {
	case Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

// Label is the action the quadrant calls for.
func (q Quadrant) Label() string {
	switch q {
	case Q1:
		return "do first"
	case Q2:
		return "schedule"
	case Q3:
		return "delegate"
	case Q4:
		return "eliminate"
	}
	return ""
}

func (q Quadrant) String() string { return string(q) }
