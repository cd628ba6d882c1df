package board

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

const (
	MaxRows    = 9
	MaxCols    = 9
	NumOfBombs = 10
)

var (
	ErrBadDimensions = errors.New("board must have at least one row and one column")
	ErrTooManyMines  = errors.New("mine count must leave at least one safe cell")
)

// ValidateParams reports whether a rows x cols board can hold mineCount mines
// and still have a cell to open first.
func ValidateParams(rows, cols, mineCount int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%dx%d: %w", rows, cols, ErrBadDimensions)
	}
	if mineCount < 0 || mineCount >= rows*cols {
		return fmt.Errorf("%d mines on %dx%d: %w", mineCount, rows, cols, ErrTooManyMines)
	}
	return nil
}

type Board struct {
	Rows, Cols int
	MineCount  int
	Cells      [][]Cell
}

// newEmpty allocates rows x cols hidden cells with no mines.
func newEmpty(rows, cols int) *Board {
	cells := make([][]Cell, rows)
	for r := range rows {
		cells[r] = make([]Cell, cols)
	}
	return &Board{Rows: rows, Cols: cols, Cells: cells}
}

func (b *Board) InBounds(p Point) bool {
	return 0 <= p.Row && p.Row < b.Rows && 0 <= p.Col && p.Col < b.Cols
}

func (b *Board) At(p Point) *Cell {
	return &b.Cells[p.Row][p.Col]
}

// Neighbours yields the up to 8 in-bounds points around p.
func (b *Board) Neighbours(p Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				n := Point{p.Row + dr, p.Col + dc}
				if !b.InBounds(n) {
					continue
				}
				if !yield(n) {
					return
				}
			}
		}
	}
}

func (b *Board) adjacentMines(p Point) int {
	n := 0
	for q := range b.Neighbours(p) {
		if b.At(q).Value.IsMine() {
			n++
		}
	}
	return n
}

// fillCounts sets every non-mine cell to its neighbour mine count.
func (b *Board) fillCounts() {
	for r := range b.Rows {
		for c := range b.Cols {
			p := Point{r, c}
			cell := b.At(p)
			if cell.Value.IsMine() {
				continue
			}
			cell.Value = Value(b.adjacentMines(p))
		}
	}
}

// ToggleFlag flips a hidden cell to flagged and back. It returns the change
// to apply to a remaining-flags counter: -1 when a flag is placed, +1 when
// one is removed and 0 for revealed cells.
func (b *Board) ToggleFlag(p Point) int {
	cell := b.At(p)
	switch cell.State {
	case Hidden:
		cell.State = Flagged
		return -1
	case Flagged:
		cell.State = Hidden
		return +1
	default:
		return 0
	}
}

// CheckWin reports whether every safe cell has been revealed. On a win all
// mines are marked as flagged.
func (b *Board) CheckWin() bool {
	for r := range b.Rows {
		for c := range b.Cols {
			cell := &b.Cells[r][c]
			if !cell.Value.IsMine() && cell.State != Revealed {
				return false
			}
		}
	}
	for r := range b.Rows {
		for c := range b.Cols {
			if cell := &b.Cells[r][c]; cell.Value.IsMine() {
				cell.State = Flagged
			}
		}
	}
	return true
}

func (b *Board) Count(match func(Cell) bool) int {
	n := 0
	for _, row := range b.Cells {
		for _, cell := range row {
			if match(cell) {
				n++
			}
		}
	}
	return n
}

func (b *Board) Clone() *Board {
	clone := newEmpty(b.Rows, b.Cols)
	clone.MineCount = b.MineCount
	for r := range b.Rows {
		copy(clone.Cells[r], b.Cells[r])
	}
	return clone
}

func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Cells {
		for c, cell := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(cell.glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
