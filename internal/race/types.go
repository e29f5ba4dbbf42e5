// Package race pairs two sessions for a head-to-head dungeon race.
// Both racers run the same dungeon locally from a shared seed; the
// coordinator relays their progress and decides the winner. Nothing in
// here depends on Wish or Bubble Tea, so the same machinery serves any
// transport.
package race

import "github.com/vovakirdan/tui-dungeon/internal/core"

// RacerID identifies a side of a race. It aliases core.PlayerID so the
// platform's input plumbing and the race layer agree on who is who.
type RacerID = core.PlayerID

// Re-export the side constants for convenience.
const (
	Racer1 = core.Player1
	Racer2 = core.Player2
)

// SessionID uniquely identifies a connected session (e.g. one SSH
// connection). Sessions are paired into races through lobbies.
type SessionID string

// MatchID uniquely identifies a race.
type MatchID string

// ProgressReport is one racer's standing at a point in time. Racers
// send these as they play; the coordinator relays each report to the
// opponent and uses the final ones to arbitrate the result.
type ProgressReport struct {
	Stage         string // id of the stage the racer is on
	StageName     string
	StagesCleared int
	Score         int
	HP            int
	Escaped       bool // reached the victory gate
	Dead          bool // run ended without escaping
}

// Finished reports whether this racer's run has ended either way.
func (p ProgressReport) Finished() bool {
	return p.Escaped || p.Dead
}
