package simmer

import "fmt"

// Direction documents whether a channel carries messages into or out of an
// actor. It is metadata only and does not take part in channel identity.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "In"
	case Out:
		return "Out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Side selects which end of a channel a request wants: Start publishes,
// End receives. The zero Side is neither.
type Side int

const (
	Start Side = iota + 1
	End
)

func (s Side) String() string {
	switch s {
	case Start:
		return "Start"
	case End:
		return "End"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}
