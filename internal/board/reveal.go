package board

type Outcome uint8

const (
	Ignored  Outcome = iota // flagged or already revealed
	Opened                  // one or more safe cells revealed
	Exploded                // a mine was revealed
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Opened:
		return "opened"
	case Exploded:
		return "exploded"
	default:
		return "unknown"
	}
}

// Reveal opens the cell at p.
//
// Hitting a mine reveals every mine and highlights the one at p. Opening an
// empty cell floods outwards through connected empty cells, revealing the
// numbered cells bordering them but never flagged cells or mines.
func (b *Board) Reveal(p Point) Outcome {
	cell := b.At(p)
	if cell.State != Hidden {
		return Ignored
	}

	switch {
	case cell.Value.IsMine():
		b.revealMines()
		cell.Highlighted = true
		return Exploded
	case cell.Value == None:
		b.flood(p)
	default:
		cell.State = Revealed
	}
	return Opened
}

func (b *Board) revealMines() {
	for r := range b.Rows {
		for c := range b.Cols {
			if cell := &b.Cells[r][c]; cell.Value.IsMine() {
				cell.State = Revealed
			}
		}
	}
}

// flood reveals the empty region containing start using a work queue. Every
// point enters the queue at most once.
func (b *Board) flood(start Point) {
	visited := make([]bool, b.Rows*b.Cols)
	visit := func(p Point) bool {
		i := p.Row*b.Cols + p.Col
		if visited[i] {
			return false
		}
		visited[i] = true
		return true
	}

	visit(start)
	b.At(start).State = Revealed
	queue := []Point{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for q := range b.Neighbours(p) {
			cell := b.At(q)
			if cell.State != Hidden || cell.Value.IsMine() || !visit(q) {
				continue
			}
			cell.State = Revealed
			if cell.Value == None {
				queue = append(queue, q)
			}
		}
	}
}
