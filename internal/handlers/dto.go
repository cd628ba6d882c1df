package handlers

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/board"
	"github.com/vancomm/minesweeper/internal/game"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type Move string

const (
	Open  Move = "open"
	Flag  Move = "flag"
	Chord Move = "chord"
)

var ErrUnknownMove = errors.New("unknown move")

func ParseMove(s string) (Move, error) {
	switch m := Move(s); m {
	case Open, Flag, Chord:
		return m, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMove, s)
}

func (m Move) apply(g *game.Game, p board.Point) game.Snapshot {
	switch m {
	case Flag:
		return g.ToggleFlag(p)
	case Chord:
		return g.Chord(p)
	default:
		return g.Reveal(p)
	}
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func (d MoveDTO) Point() board.Point {
	return board.Point{Row: d.Row, Col: d.Col}
}

func ParseMoveDTO(src url.Values) (MoveDTO, error) {
	var dto MoveDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// GameDTO is a snapshot tagged with the id of its game.
type GameDTO struct {
	GameId string `json:"game_id"`
	game.Snapshot
}

func NewGameDTO(gameId string, snap game.Snapshot) GameDTO {
	return GameDTO{GameId: gameId, Snapshot: snap}
}
