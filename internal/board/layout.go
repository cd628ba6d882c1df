package board

import (
	"fmt"
	"strings"
)

// ParseLayout builds a board from rows of '*' (mine) and '.' (safe) runes.
// Blank lines and spaces are ignored; all rows must be the same width.
func ParseLayout(layout string) (*Board, error) {
	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty layout: %w", ErrBadDimensions)
	}

	cols := len(rows[0])
	b := newEmpty(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), cols)
		}
		for c, ch := range row {
			switch ch {
			case '*':
				b.Cells[r][c].Value = Mine
				b.MineCount++
			case '.':
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected %q", r, c, ch)
			}
		}
	}

	b.fillCounts()
	return b, nil
}
