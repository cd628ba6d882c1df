package app

import (
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/handlers"
)

func (a *App) loadRoutes() {
	params := game.Params{
		Rows:      a.config.Board.Rows,
		Cols:      a.config.Board.Cols,
		MineCount: a.config.Board.MineCount,
	}
	games := handlers.NewGameHandler(
		a.log, a.store, a.cookies, a.jwt, a.ws, params, a.rnd,
	)

	a.router.HandleFunc("POST /game", games.NewGame)
	a.router.HandleFunc("GET /game/{id}", games.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", games.Move)
	a.router.HandleFunc("POST /game/{id}/reset", games.Reset)
	a.router.HandleFunc("GET /game/{id}/connect", games.ConnectWS)
	a.router.HandleFunc("GET /status", games.Status)
}
