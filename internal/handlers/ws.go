package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/session"
)

const writeWait = 10 * time.Second

var ErrBinaryMessage = errors.New("binary messages are not supported")

// ConnectWS upgrades to a WebSocket that accepts newline-separated command
// batches. A snapshot is pushed after every batch and on every timer tick
// while the game is being played.
func (h *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok || !h.authorize(w, r, s) {
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := h.log.WithField("game_id", s.Id)
	log.Debug("websocket connected")

	batches := make(chan string)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		defer close(batches)
		for {
			mt, message, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			if mt != websocket.TextMessage {
				return ErrBinaryMessage
			}
			select {
			case batches <- string(message):
			case <-ctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		defer conn.Close()
		return h.serveConn(ctx, conn, s, batches)
	})

	err = g.Wait()
	if err != nil && !isClosed(err) {
		log.WithError(err).Warn("websocket closed")
		return
	}
	log.Debug("websocket disconnected")
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func (h *GameHandler) serveConn(
	ctx context.Context,
	conn *websocket.Conn,
	s *session.Session,
	batches <-chan string,
) error {
	ticker := time.NewTicker(h.ws.TickInterval)
	defer ticker.Stop()

	lastElapsed := -1
	for {
		select {
		case <-ctx.Done():
			return nil

		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			var err error
			snap := s.Do(h.now(), func(g *game.Game) game.Snapshot {
				err = executeBatch(g, batch)
				return g.Snapshot()
			})
			if err != nil {
				h.log.WithFields(logrus.Fields{
					"game_id": s.Id,
					"batch":   batch,
				}).WithError(err).Debug("command failed")
				if err := writeJSON(conn, wrapError(err)); err != nil {
					return err
				}
			}
			if err := writeJSON(conn, NewGameDTO(s.Id, snap)); err != nil {
				return err
			}
			lastElapsed = snap.Elapsed

		case <-ticker.C:
			snap := s.Snapshot()
			if snap.Status != game.Playing || snap.Elapsed == lastElapsed {
				continue
			}
			if err := writeJSON(conn, NewGameDTO(s.Id, snap)); err != nil {
				return err
			}
			lastElapsed = snap.Elapsed
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
