package handlers

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/board"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/session"
)

type cellResponse struct {
	State string `json:"state"`
	Value *int   `json:"value"`
	Mine  bool   `json:"mine"`
}

type gameResponse struct {
	GameId    string           `json:"game_id"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	MineCount int              `json:"mine_count"`
	Status    string           `json:"status"`
	Face      string           `json:"face"`
	FlagsLeft int              `json:"flags_left"`
	Elapsed   int              `json:"elapsed"`
	Cells     [][]cellResponse `json:"cells"`
	Error     string           `json:"error"`
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	*httptest.Server
	handler *GameHandler
	clock   *clock
}

func newServer(t *testing.T, params game.Params) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()

	j, err := config.NewJWT([]byte("secret"), time.Hour)
	require.NoError(t, err)
	cookies := config.NewCookies(config.SessionConfig{CookieSameSite: "lax"}, j)
	ws := &config.WebSocket{TickInterval: 10 * time.Millisecond}

	h := NewGameHandler(
		log, session.NewStore(), cookies, j, ws, params, rand.New(rand.NewPCG(1, 2)),
	)
	c := &clock{now: time.Now()}
	h.now = c.Now

	mux := http.NewServeMux()
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/move", h.Move)
	mux.HandleFunc("POST /game/{id}/reset", h.Reset)
	mux.HandleFunc("GET /game/{id}/connect", h.ConnectWS)
	mux.HandleFunc("GET /status", h.Status)

	srv := httptest.NewServer(middleware.Auth(log, cookies)(mux))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, handler: h, clock: c}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func call(t *testing.T, c *http.Client, method, target string) (int, gameResponse) {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var body gameResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res.StatusCode, body
}

func (s *testServer) newGame(t *testing.T, c *http.Client) gameResponse {
	t.Helper()
	code, body := call(t, c, http.MethodPost, s.URL+"/game")
	require.Equal(t, http.StatusCreated, code)
	return body
}

func countCells(g gameResponse, state string) int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.State == state {
				n++
			}
		}
	}
	return n
}

func TestNewGame(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	c := newClient(t)

	g := srv.newGame(t, c)

	assert.NotEmpty(t, g.GameId)
	assert.Equal(t, "not_started", g.Status)
	assert.Equal(t, "smile", g.Face)
	assert.Equal(t, board.MaxRows, g.Rows)
	assert.Equal(t, board.MaxCols, g.Cols)
	assert.Equal(t, board.NumOfBombs, g.FlagsLeft)
	assert.Equal(t, board.MaxRows*board.MaxCols, countCells(g, "hidden"))
	for _, row := range g.Cells {
		for _, cell := range row {
			assert.Nil(t, cell.Value)
			assert.False(t, cell.Mine)
		}
	}

	names := map[string]bool{}
	for _, cookie := range c.Jar.Cookies(mustParseURL(t, srv.URL)) {
		names[cookie.Name] = true
	}
	assert.True(t, names["auth"])
	assert.True(t, names["sign"])
}

func TestFetch(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	g := srv.newGame(t, newClient(t))

	// fetching needs no token
	code, body := call(t, http.DefaultClient, http.MethodGet, srv.URL+"/game/"+g.GameId)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, g.GameId, body.GameId)

	tests := []string{"1b4e28ba-2fa1-11d2-883f-0016d3cca427", "not-a-game"}
	for _, id := range tests {
		code, body := call(t, http.DefaultClient, http.MethodGet, srv.URL+"/game/"+id)
		assert.Equal(t, http.StatusNotFound, code, id)
		assert.NotEmpty(t, body.Error, id)
	}
}

func TestMoveWithoutToken(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	g := srv.newGame(t, newClient(t))

	code, body := call(t, newClient(t), http.MethodPost,
		srv.URL+"/game/"+g.GameId+"/move?move=open&row=0&col=0")

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, ErrNoSession.Error(), body.Error)
}

func TestMoveWithForeignToken(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	c := newClient(t)
	first := srv.newGame(t, c)
	srv.newGame(t, c) // replaces the cookies

	code, body := call(t, c, http.MethodPost,
		srv.URL+"/game/"+first.GameId+"/move?move=open&row=0&col=0")

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, ErrForeignSession.Error(), body.Error)
}

func TestMoveUnknownGame(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	c := newClient(t)
	srv.newGame(t, c)

	code, _ := call(t, c, http.MethodPost,
		srv.URL+"/game/1b4e28ba-2fa1-11d2-883f-0016d3cca427/move?move=open&row=0&col=0")

	assert.Equal(t, http.StatusNotFound, code)
}

func TestMoveBadQuery(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	c := newClient(t)
	g := srv.newGame(t, c)

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"missing move", "row=0&col=0"},
		{"missing col", "move=open&row=0"},
		{"unknown move", "move=jump&row=0&col=0"},
		{"row not a number", "move=open&row=a&col=0"},
		{"row out of range", "move=open&row=9&col=0"},
		{"negative col", "move=flag&row=0&col=-1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, body := call(t, c, http.MethodPost,
				srv.URL+"/game/"+g.GameId+"/move?"+test.query)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestMoveOpenWins(t *testing.T) {
	// one safe cell: the first reveal moves the mine away and wins at once
	srv := newServer(t, game.Params{Rows: 2, Cols: 2, MineCount: 3})
	c := newClient(t)
	g := srv.newGame(t, c)

	code, body := call(t, c, http.MethodPost,
		srv.URL+"/game/"+g.GameId+"/move?move=open&row=1&col=1")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "won", body.Status)
	assert.Equal(t, "won", body.Face)
	assert.Equal(t, "revealed", body.Cells[1][1].State)
	require.NotNil(t, body.Cells[1][1].Value)
	assert.Equal(t, 3, *body.Cells[1][1].Value)
	assert.Equal(t, 3, countCells(body, "flagged"))
}

func TestMoveFlagAndChord(t *testing.T) {
	srv := newServer(t, game.Params{Rows: 2, Cols: 2, MineCount: 2})
	c := newClient(t)
	g := srv.newGame(t, c)
	moveURL := srv.URL + "/game/" + g.GameId + "/move?"

	_, body := call(t, c, http.MethodPost, moveURL+"move=flag&row=0&col=1")
	assert.Equal(t, "flagged", body.Cells[0][1].State)
	assert.Equal(t, 1, body.FlagsLeft)
	assert.Equal(t, "not_started", body.Status)

	_, body = call(t, c, http.MethodPost, moveURL+"move=flag&row=0&col=1")
	assert.Equal(t, "hidden", body.Cells[0][1].State)
	assert.Equal(t, 2, body.FlagsLeft)

	// every cell of a 2x2 board touches both mines
	_, body = call(t, c, http.MethodPost, moveURL+"move=open&row=0&col=0")
	assert.Equal(t, "playing", body.Status)
	require.NotNil(t, body.Cells[0][0].Value)
	assert.Equal(t, 2, *body.Cells[0][0].Value)

	// not enough flags around: chord does nothing
	_, body = call(t, c, http.MethodPost, moveURL+"move=chord&row=0&col=0")
	assert.Equal(t, "playing", body.Status)
	assert.Equal(t, 3, countCells(body, "hidden"))
}

func TestReset(t *testing.T) {
	srv := newServer(t, game.Params{Rows: 2, Cols: 2, MineCount: 3})
	c := newClient(t)
	g := srv.newGame(t, c)

	_, body := call(t, c, http.MethodPost,
		srv.URL+"/game/"+g.GameId+"/move?move=open&row=0&col=0")
	require.Equal(t, "won", body.Status)

	code, body := call(t, c, http.MethodPost, srv.URL+"/game/"+g.GameId+"/reset")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, g.GameId, body.GameId)
	assert.Equal(t, "not_started", body.Status)
	assert.Equal(t, 3, body.FlagsLeft)
	assert.Equal(t, 4, countCells(body, "hidden"))

	code, _ = call(t, newClient(t), http.MethodPost, srv.URL+"/game/"+g.GameId+"/reset")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestStatus(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	srv.newGame(t, newClient(t))

	res, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer res.Body.Close()

	var body struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Games)
}

func dial(t *testing.T, srv *testServer, c *http.Client, gameId string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	dialer := websocket.Dialer{Jar: c.Jar, HandshakeTimeout: time.Second}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + gameId + "/connect"
	return dialer.Dial(wsURL, nil)
}

func readGame(t *testing.T, conn *websocket.Conn) gameResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var g gameResponse
	require.NoError(t, conn.ReadJSON(&g))
	return g
}

func TestWebSocketRequiresToken(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	g := srv.newGame(t, newClient(t))

	_, res, err := dial(t, srv, newClient(t), g.GameId)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestWebSocketBatch(t *testing.T) {
	srv := newServer(t, game.Params{Rows: 2, Cols: 2, MineCount: 3})
	c := newClient(t)
	g := srv.newGame(t, c)

	conn, _, err := dial(t, srv, c, g.GameId)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("g")))
	got := readGame(t, conn)
	assert.Equal(t, g.GameId, got.GameId)
	assert.Equal(t, "not_started", got.Status)

	// reversing the flag commands would leave the open a no-op
	batch := "f 0 0\nf 0 0\n\no 0 0\n"
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(batch)))
	got = readGame(t, conn)
	assert.Equal(t, "won", got.Status)
	assert.Equal(t, "revealed", got.Cells[0][0].State)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("n\nf 1 1")))
	got = readGame(t, conn)
	assert.Equal(t, "not_started", got.Status)
	assert.Equal(t, "flagged", got.Cells[1][1].State)
	assert.Equal(t, 2, got.FlagsLeft)
}

func TestWebSocketBadCommand(t *testing.T) {
	srv := newServer(t, game.DefaultParams())
	c := newClient(t)
	g := srv.newGame(t, c)

	conn, _, err := dial(t, srv, c, g.GameId)
	require.NoError(t, err)
	defer conn.Close()

	tests := []string{"x", "o 1", "o a b", "f 0 9"}
	for _, command := range tests {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(command)))
		errMsg := readGame(t, conn)
		assert.NotEmpty(t, errMsg.Error, command)
		snap := readGame(t, conn)
		assert.Equal(t, "not_started", snap.Status, command)
	}
}

func TestWebSocketTicks(t *testing.T) {
	srv := newServer(t, game.Params{Rows: 2, Cols: 2, MineCount: 2})
	c := newClient(t)
	g := srv.newGame(t, c)

	conn, _, err := dial(t, srv, c, g.GameId)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("o 0 0")))
	got := readGame(t, conn)
	require.Equal(t, "playing", got.Status)
	assert.Equal(t, 0, got.Elapsed)

	srv.clock.Advance(5 * time.Second)
	got = readGame(t, conn)
	assert.Equal(t, "playing", got.Status)
	assert.Equal(t, 5, got.Elapsed)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
