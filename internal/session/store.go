package session

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper/internal/game"
)

var ErrNotFound = errors.New("session not found")

// Session owns one game. All access to the game goes through Do, which
// serialises moves coming from HTTP requests and WebSocket connections.
type Session struct {
	Id        string
	CreatedAt time.Time

	mu       sync.Mutex
	game     *game.Game
	lastSeen time.Time
}

func (s *Session) Do(now time.Time, fn func(g *game.Game) game.Snapshot) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
	return fn(s.game)
}

func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) Create(g *game.Game, now time.Time) *Session {
	session := &Session{
		Id:        uuid.NewString(),
		CreatedAt: now,
		game:      g,
		lastSeen:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session
	return session
}

// Get looks a session up. Ids that are not valid UUIDs are reported as
// [ErrNotFound].
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// Deletes id from store without checking if it existed.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Keys(s.sessions))
}

// Expire drops sessions that have not been touched since before cutoff and
// returns how many were removed.
func (s *Store) Expire(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
