package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/board"
)

type BoardConfig struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	MineCount int    `json:"mine_count"`
	Seed      uint64 `json:"seed"` // 0 picks a random seed
}

type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type SessionConfig struct {
	Secret         string   `json:"secret"`
	SecretFile     string   `json:"secret_file"`
	TokenLifetime  Duration `json:"token_lifetime"`
	CookieDomain   string   `json:"cookie_domain"`
	CookieSecure   bool     `json:"cookie_secure"`
	CookieSameSite string   `json:"cookie_samesite"`
}

type WebSocketConfig struct {
	TickInterval Duration `json:"tick_interval"`
}

type Config struct {
	Mode           string          `json:"mode"`
	Addr           string          `json:"addr"`
	AllowedOrigins []string        `json:"allowed_origins"`
	Board          BoardConfig     `json:"board"`
	Log            LogConfig       `json:"log"`
	Session        SessionConfig   `json:"session"`
	WebSocket      WebSocketConfig `json:"websocket"`
}

func Default() *Config {
	return &Config{
		Mode: "development",
		Addr: ":8080",
		Board: BoardConfig{
			Rows:      board.MaxRows,
			Cols:      board.MaxCols,
			MineCount: board.NumOfBombs,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Session: SessionConfig{
			TokenLifetime:  Duration{24 * time.Hour},
			CookieSameSite: "lax",
		},
		WebSocket: WebSocketConfig{
			TickInterval: Duration{time.Second},
		},
	}
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":                   c.Mode,
		"addr":                   c.Addr,
		"allowed_origins":        c.AllowedOrigins,
		"board_rows":             c.Board.Rows,
		"board_cols":             c.Board.Cols,
		"board_mine_count":       c.Board.MineCount,
		"board_seed":             c.Board.Seed,
		"log_level":              c.Log.Level,
		"log_file":               c.Log.File,
		"session_token_lifetime": c.Session.TokenLifetime.String(),
		"session_cookie_domain":  c.Session.CookieDomain,
		"ws_tick_interval":       c.WebSocket.TickInterval.String(),
	}
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

func (c Config) Validate() error {
	if err := board.ValidateParams(c.Board.Rows, c.Board.Cols, c.Board.MineCount); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if c.Session.TokenLifetime.Duration <= 0 {
		return errors.New("session.token_lifetime must be positive")
	}
	if c.WebSocket.TickInterval.Duration <= 0 {
		return errors.New("websocket.tick_interval must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Load reads the JSON file at path (skipped when path is empty), then applies
// variables from .env and the environment on top of it.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(b, config); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	lookupString("APP_MODE", &c.Mode)
	lookupString("APP_ADDR", &c.Addr)
	lookupString("LOG_LEVEL", &c.Log.Level)
	lookupString("LOG_FILE", &c.Log.File)
	lookupString("SESSION_SECRET", &c.Session.Secret)
	lookupString("SESSION_SECRET_FILE", &c.Session.SecretFile)
	lookupString("COOKIES_DOMAIN", &c.Session.CookieDomain)
	lookupString("COOKIES_SAMESITE", &c.Session.CookieSameSite)

	if origins, ok := os.LookupEnv("APP_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = strings.Split(origins, ",")
	}

	if secure, ok := os.LookupEnv("COOKIES_SECURE"); ok {
		c.Session.CookieSecure = secure != "0"
	}

	ints := map[string]*int{
		"BOARD_ROWS":  &c.Board.Rows,
		"BOARD_COLS":  &c.Board.Cols,
		"BOARD_MINES": &c.Board.MineCount,
	}
	for key, dst := range ints {
		if err := lookupInt(key, dst); err != nil {
			return err
		}
	}

	if s, ok := os.LookupEnv("BOARD_SEED"); ok {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("unable to convert BOARD_SEED to uint: %w", err)
		}
		c.Board.Seed = seed
	}

	return nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	s, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("unable to convert %s to int: %w", key, err)
	}
	*dst = v
	return nil
}

// LoadSecret returns the session signing secret, reading SecretFile when no
// inline secret is set. An empty result means the caller should generate one.
func (c SessionConfig) LoadSecret() ([]byte, error) {
	if c.Secret != "" {
		return []byte(c.Secret), nil
	}
	if c.SecretFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read session secret file: %w", err)
	}
	return []byte(strings.TrimSpace(string(data))), nil
}
