package board

import (
	"encoding/json"
	"strconv"
)

// Value is what a cell holds: None (0), a neighbour count 1..8 or Mine.
type Value int8

const (
	None Value = 0
	Mine Value = -1
)

func (v Value) IsMine() bool {
	return v == Mine
}

func (v Value) String() string {
	switch {
	case v == Mine:
		return "*"
	case v == None:
		return " "
	case 1 <= v && v <= 8:
		return strconv.Itoa(int(v))
	default:
		return "?"
	}
}

type State uint8

const (
	Hidden State = iota
	Revealed
	Flagged
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// [State] implements [json.Marshaler]
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

type Cell struct {
	Value       Value
	State       State
	Highlighted bool
}

// glyph is the single-character form used by [Board.String].
func (c Cell) glyph() string {
	switch {
	case c.Highlighted:
		return "X"
	case c.State == Flagged:
		return "F"
	case c.State == Hidden:
		return "."
	case c.Value == None:
		return "_"
	default:
		return c.Value.String()
	}
}

type Point struct {
	Row, Col int
}
