package game

import (
	"github.com/vancomm/minesweeper/internal/board"
)

type Face string

const (
	Smile Face = "smile"
	Cool  Face = "won"
	Dead  Face = "lost"
)

func (s Status) Face() Face {
	switch s {
	case Won:
		return Cool
	case Lost:
		return Dead
	default:
		return Smile
	}
}

// CellView is what the player is allowed to see of a cell. Value is only
// set for revealed cells.
type CellView struct {
	State       board.State `json:"state"`
	Value       *int        `json:"value,omitempty"`
	Mine        bool        `json:"mine,omitempty"`
	Highlighted bool        `json:"highlighted,omitempty"`
}

func newCellView(c board.Cell) CellView {
	v := CellView{State: c.State, Highlighted: c.Highlighted}
	if c.State != board.Revealed {
		return v
	}
	if c.Value.IsMine() {
		v.Mine = true
	} else {
		n := int(c.Value)
		v.Value = &n
	}
	return v
}

// Snapshot is an immutable copy of a game handed to the presentation layer.
type Snapshot struct {
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	MineCount int          `json:"mine_count"`
	Status    Status       `json:"status"`
	Face      Face         `json:"face"`
	FlagsLeft int          `json:"flags_left"`
	Elapsed   int          `json:"elapsed"`
	Cells     [][]CellView `json:"cells"`

	board *board.Board
}

func (g *Game) Snapshot() Snapshot {
	b := g.Board.Clone()
	cells := make([][]CellView, b.Rows)
	for r, row := range b.Cells {
		cells[r] = make([]CellView, len(row))
		for c, cell := range row {
			cells[r][c] = newCellView(cell)
		}
	}
	return Snapshot{
		Rows:      g.Rows,
		Cols:      g.Cols,
		MineCount: g.MineCount,
		Status:    g.Status,
		Face:      g.Status.Face(),
		FlagsLeft: g.FlagsLeft,
		Elapsed:   g.Elapsed(g.clock()),
		Cells:     cells,
		board:     b,
	}
}

// Board returns a private copy of the full board, hidden values included.
func (s Snapshot) Board() *board.Board {
	return s.board.Clone()
}

func (s Snapshot) String() string {
	return s.board.String()
}
