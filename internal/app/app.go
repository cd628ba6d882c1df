package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/session"
)

const (
	shutdownTimeout = 15 * time.Second
	expireInterval  = time.Minute
)

type App struct {
	log     *logrus.Logger
	config  *config.Config
	router  *http.ServeMux
	store   *session.Store
	jwt     *config.JWT
	cookies *config.Cookies
	ws      *config.WebSocket
	rnd     *rand.Rand
}

func New(log *logrus.Logger, c *config.Config, rnd *rand.Rand) (*App, error) {
	secret, err := c.Session.LoadSecret()
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		log.Warn("no session secret configured, tokens will not survive a restart")
	}
	jwt, err := config.NewJWT(secret, c.Session.TokenLifetime.Duration)
	if err != nil {
		return nil, err
	}

	app := &App{
		log:     log,
		config:  c,
		router:  http.NewServeMux(),
		store:   session.NewStore(),
		jwt:     jwt,
		cookies: config.NewCookies(c.Session, jwt),
		ws:      config.NewWebSocket(c),
		rnd:     rnd,
	}
	app.loadRoutes()

	return app, nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.log, a.cookies),
		middleware.Logging(a.log),
		middleware.Cors(a.config.Development(), a.config.AllowedOrigins...),
	)
}

// Start serves until ctx is cancelled, then shuts the server down.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        a.config.Addr,
		Handler:     a.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Infof("ready to serve @ %s", a.config.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		a.expireSessions(gCtx, expireInterval)
		return nil
	})

	return g.Wait()
}

// expireSessions drops games nobody touched for a token lifetime, since
// nobody can hold a valid token for them anymore.
func (a *App) expireSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cutoff := now.Add(-a.jwt.TokenLifetime)
			if n := a.store.Expire(cutoff); n > 0 {
				a.log.WithFields(logrus.Fields{
					"expired": n,
					"active":  a.store.Count(),
				}).Info("expired idle games")
			}
		}
	}
}
