package handlers

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper/internal/board"
	"github.com/vancomm/minesweeper/internal/game"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // get
	"o": 2, // open
	"f": 2, // flag
	"c": 2, // chord
	"n": 0, // new board
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandArgs    = errors.New("invalid number of arguments")
)

type command struct {
	name string
	pos  board.Point
}

func parseCommand(line string) (command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return command{}, ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return command{}, fmt.Errorf("%s: %w", parts[0], ErrCommandArgs)
	}
	c := command{name: parts[0]}
	if nargs == 2 {
		row, err := strconv.Atoi(parts[1])
		if err != nil {
			return command{}, errors.New("row must be an int")
		}
		col, err := strconv.Atoi(parts[2])
		if err != nil {
			return command{}, errors.New("col must be an int")
		}
		c.pos = board.Point{Row: row, Col: col}
	}
	return c, nil
}

func (c command) execute(g *game.Game) error {
	switch c.name {
	case "g":
	case "n":
		g.Reset()
	default:
		if !g.Contains(c.pos) {
			return fmt.Errorf("%w (%d, %d)", ErrBadPosition, c.pos.Row, c.pos.Col)
		}
		switch c.name {
		case "o":
			g.Reveal(c.pos)
		case "f":
			g.ToggleFlag(c.pos)
		case "c":
			g.Chord(c.pos)
		}
	}
	return nil
}

// lines yields the non-blank lines of s.
func lines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		found := true
		var line string
		for found {
			line, s, found = strings.Cut(s, "\n")
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// executeBatch runs the commands of a batch in order, stopping at the first
// one that fails.
func executeBatch(g *game.Game, batch string) error {
	for line := range lines(batch) {
		c, err := parseCommand(line)
		if err != nil {
			return err
		}
		if err := c.execute(g); err != nil {
			return err
		}
	}
	return nil
}
