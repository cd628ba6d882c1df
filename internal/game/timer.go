package game

import "time"

// MaxTime is the largest value the three-digit timer display can show.
const MaxTime = 999

// Elapsed returns whole seconds of play as of now. It is zero before the
// first reveal, frozen once the game is over and never exceeds MaxTime.
func (g *Game) Elapsed(now time.Time) int {
	if g.StartedAt.IsZero() {
		return 0
	}
	if !g.EndedAt.IsZero() {
		now = g.EndedAt
	}
	secs := int(now.Sub(g.StartedAt) / time.Second)
	return max(0, min(secs, MaxTime))
}

// Ticking reports whether a displayed timer should still advance.
func (g *Game) Ticking() bool {
	return g.Status == Playing && g.Elapsed(g.clock()) < MaxTime
}
