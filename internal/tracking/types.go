package tracking

import "time"

type EventKind uint8

const (
	EventMove EventKind = iota
	EventLeave
)

func (k EventKind) String() string {
	if k == EventLeave {
		return "leave"
	}
	return "move"
}

// Event holds one pointer observation in surface coordinates.
// At is the time elapsed since tracking started.
type Event struct {
	X, Y float64
	At   time.Duration
	Kind EventKind
}
