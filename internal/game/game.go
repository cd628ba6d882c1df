package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/board"
)

var Log = logrus.New()

type Status uint8

const (
	NotStarted Status = iota
	Playing
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// [Status] implements [json.Marshaler]
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) Over() bool {
	return s == Won || s == Lost
}

type Params struct {
	Rows, Cols, MineCount int
}

func DefaultParams() Params {
	return Params{board.MaxRows, board.MaxCols, board.NumOfBombs}
}

func (p Params) Validate() error {
	return board.ValidateParams(p.Rows, p.Cols, p.MineCount)
}

func (p Params) Contains(pt board.Point) bool {
	return 0 <= pt.Row && pt.Row < p.Rows && 0 <= pt.Col && pt.Col < p.Cols
}

type Game struct {
	Params
	Board     *board.Board
	Status    Status
	FlagsLeft int
	StartedAt time.Time
	EndedAt   time.Time

	rnd   *rand.Rand
	clock func() time.Time
}

type Option func(*Game)

// WithClock replaces time.Now as the source of timer readings.
func WithClock(clock func() time.Time) Option {
	return func(g *Game) { g.clock = clock }
}

// WithBoard starts the game on b instead of a generated board. Reset still
// generates random boards with the board's dimensions.
func WithBoard(b *board.Board) Option {
	return func(g *Game) {
		g.Params = Params{b.Rows, b.Cols, b.MineCount}
		g.Board = b
		g.FlagsLeft = b.MineCount
	}
}

func New(params Params, r *rand.Rand, opts ...Option) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game params: %w", err)
	}
	g := &Game{
		Params: params,
		rnd:    r,
		clock:  time.Now,
	}
	g.reset()
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) reset() {
	g.Board = board.Generate(g.Rows, g.Cols, g.MineCount, g.rnd)
	g.Status = NotStarted
	g.FlagsLeft = g.MineCount
	g.StartedAt = time.Time{}
	g.EndedAt = time.Time{}
}

// Reset throws the current board away and returns to NotStarted.
func (g *Game) Reset() Snapshot {
	g.reset()
	return g.Snapshot()
}

func (g *Game) Reveal(p board.Point) Snapshot {
	if g.Status.Over() {
		return g.Snapshot()
	}

	if g.Status == NotStarted {
		if g.Board.At(p).State != board.Hidden {
			return g.Snapshot()
		}
		g.start(p)
	}

	g.afterReveal(g.Board.Reveal(p))
	return g.Snapshot()
}

// start makes sure the first opened cell is safe and starts the timer.
func (g *Game) start(p board.Point) {
	if g.Board.At(p).Value.IsMine() {
		Log.WithFields(logrus.Fields{
			"row": p.Row, "col": p.Col,
		}).Debug("first reveal hit a mine, regenerating")

		old := g.Board
		g.Board = board.GenerateAvoiding(g.Rows, g.Cols, g.MineCount, p, g.rnd)
		carryFlags(old, g.Board)
	}
	g.Status = Playing
	g.StartedAt = g.clock()
}

// carryFlags copies flags placed before the first reveal onto a
// regenerated board.
func carryFlags(from, to *board.Board) {
	for r := range from.Rows {
		for c := range from.Cols {
			if from.Cells[r][c].State == board.Flagged {
				to.Cells[r][c].State = board.Flagged
			}
		}
	}
}

func (g *Game) afterReveal(out board.Outcome) {
	switch {
	case out == board.Exploded:
		g.end(Lost)
	case out == board.Opened && g.Board.CheckWin():
		g.end(Won)
	}
}

func (g *Game) end(s Status) {
	g.Status = s
	g.EndedAt = g.clock()
	Log.WithFields(logrus.Fields{
		"status":  s,
		"elapsed": g.Elapsed(g.EndedAt),
	}).Debug("game over")
}

func (g *Game) ToggleFlag(p board.Point) Snapshot {
	if g.Status.Over() {
		return g.Snapshot()
	}
	g.FlagsLeft += g.Board.ToggleFlag(p)
	return g.Snapshot()
}

// Chord opens every unflagged neighbour of a revealed number once the
// number of flags around it matches the number.
func (g *Game) Chord(p board.Point) Snapshot {
	if g.Status != Playing {
		return g.Snapshot()
	}

	cell := g.Board.At(p)
	if cell.State != board.Revealed || cell.Value.IsMine() || cell.Value == board.None {
		return g.Snapshot()
	}

	var (
		flags  int
		hidden []board.Point
	)
	for q := range g.Board.Neighbours(p) {
		switch g.Board.At(q).State {
		case board.Flagged:
			flags++
		case board.Hidden:
			hidden = append(hidden, q)
		}
	}
	if flags != int(cell.Value) {
		return g.Snapshot()
	}

	for _, q := range hidden {
		g.afterReveal(g.Board.Reveal(q))
		if g.Status.Over() {
			break
		}
	}
	return g.Snapshot()
}
