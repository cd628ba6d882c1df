package main

import (
	"context"
	"flag"
	"hash/maphash"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/app"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/logging"
)

var (
	log = logrus.New()

	configPath string
)

func init() {
	const usage = "config file path"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
}

// createRand seeds from the config when a seed is set so that boards can be
// reproduced.
func createRand(seed uint64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	flag.Parse()

	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	c, err := config.Load(configPath)
	if err != nil {
		log.Fatal("unable to load config: ", err)
	}

	if err := logging.Setup(log, c); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	game.Log = log

	log.Info("starting up, mode = ", c.Mode)
	log.WithFields(c.Fields()).Debug("config")

	a, err := app.New(log, c, createRand(c.Board.Seed))
	if err != nil {
		log.Fatal("unable to create app: ", err)
	}

	if err := a.Start(mainCtx); err != nil {
		log.Fatal("exit reason: ", err)
	}
	log.Info("server stopped")
}
