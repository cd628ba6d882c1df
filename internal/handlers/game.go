package handlers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/session"
)

var (
	ErrNoSession      = errors.New("no session token")
	ErrForeignSession = errors.New("session token belongs to another game")
	ErrBadPosition    = errors.New("invalid cell position")
)

type GameHandler struct {
	log     logrus.FieldLogger
	store   *session.Store
	cookies *config.Cookies
	jwt     *config.JWT
	ws      *config.WebSocket
	params  game.Params
	now     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameHandler(
	log logrus.FieldLogger,
	store *session.Store,
	cookies *config.Cookies,
	jwt *config.JWT,
	ws *config.WebSocket,
	params game.Params,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		log:     log,
		store:   store,
		cookies: cookies,
		jwt:     jwt,
		ws:      ws,
		params:  params,
		now:     time.Now,
		rnd:     rnd,
	}
}

// newRand derives an independent source for a game, since games are
// played concurrently and *rand.Rand is not safe for concurrent use.
func (h *GameHandler) newRand() *rand.Rand {
	h.mu.Lock()
	defer h.mu.Unlock()
	return rand.New(rand.NewPCG(h.rnd.Uint64(), h.rnd.Uint64()))
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	g, err := game.New(h.params, h.newRand(), game.WithClock(h.now))
	if err != nil {
		h.internalError(w, err, "unable to create a new game")
		return
	}

	now := h.now()
	s := h.store.Create(g, now)

	token, err := h.jwt.Sign(h.jwt.NewSessionClaims(s.Id, now))
	if err != nil {
		h.store.Delete(s.Id)
		h.internalError(w, err, "unable to sign session claims")
		return
	}
	if err := h.cookies.Refresh(w, token, now.Add(h.jwt.TokenLifetime)); err != nil {
		h.store.Delete(s.Id)
		h.internalError(w, err, "unable to set session cookies")
		return
	}

	h.log.WithField("game_id", s.Id).Debug("created game")
	sendJSONOrLog(w, h.log, http.StatusCreated, NewGameDTO(s.Id, s.Snapshot()))
}

func (h *GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.notFound(w, err)
		return nil, false
	}
	return s, true
}

// authorize checks that the request carries the session token issued for s.
func (h *GameHandler) authorize(w http.ResponseWriter, r *http.Request, s *session.Session) bool {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		h.unauthorized(w, ErrNoSession)
		return false
	}
	if claims.GameId != s.Id {
		h.unauthorized(w, ErrForeignSession)
		return false
	}
	return true
}

func (h *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, h.log, http.StatusOK, NewGameDTO(s.Id, s.Snapshot()))
}

func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok || !h.authorize(w, r, s) {
		return
	}

	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		h.badRequest(w, err)
		return
	}
	move, err := ParseMove(dto.Move)
	if err != nil {
		h.badRequest(w, err)
		return
	}
	p := dto.Point()
	if !h.params.Contains(p) {
		h.badRequest(w, fmt.Errorf("%w (%d, %d)", ErrBadPosition, p.Row, p.Col))
		return
	}

	snap := s.Do(h.now(), func(g *game.Game) game.Snapshot {
		return move.apply(g, p)
	})

	h.log.WithFields(logrus.Fields{
		"game_id": s.Id,
		"move":    move,
		"row":     p.Row,
		"col":     p.Col,
		"status":  snap.Status,
	}).Debug("applied move")
	sendJSONOrLog(w, h.log, http.StatusOK, NewGameDTO(s.Id, snap))
}

func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok || !h.authorize(w, r, s) {
		return
	}
	snap := s.Do(h.now(), (*game.Game).Reset)
	sendJSONOrLog(w, h.log, http.StatusOK, NewGameDTO(s.Id, snap))
}

func (h *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, h.log, http.StatusOK, map[string]any{
		"status": "ok",
		"games":  h.store.Count(),
	})
}
