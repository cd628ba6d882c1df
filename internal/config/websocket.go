package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	TickInterval time.Duration
}

func NewWebSocket(c *Config) *WebSocket {
	upgrader := websocket.Upgrader{}
	if c.Development() {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		TickInterval: c.WebSocket.TickInterval.Duration,
	}

	return ws
}
