package dungeon

import (
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// entityHalf is the collision half-extent of players and enemies in
// world units. The full box (20x20) is smaller than one tile, so
// checking the four corners covers every tile the box can touch.
const entityHalf = 10.0

// boxBlocked reports whether an entity box centered at (cx, cy) overlaps
// a solid tile.
func boxBlocked(st *stages.Stage, cx, cy float64) bool {
	return st.SolidAt(core.Vec2{X: cx - entityHalf, Y: cy - entityHalf}) ||
		st.SolidAt(core.Vec2{X: cx + entityHalf, Y: cy - entityHalf}) ||
		st.SolidAt(core.Vec2{X: cx - entityHalf, Y: cy + entityHalf}) ||
		st.SolidAt(core.Vec2{X: cx + entityHalf, Y: cy + entityHalf})
}

// moveWithCollision advances pos by delta, resolving each axis
// independently against solid tiles. Blocking one axis leaves the other
// free, so entities slide along walls instead of sticking to them.
func moveWithCollision(pos, delta core.Vec2, st *stages.Stage) core.Vec2 {
	next := pos

	if delta.X != 0 {
		if !boxBlocked(st, next.X+delta.X, next.Y) {
			next.X += delta.X
		}
	}
	if delta.Y != 0 {
		if !boxBlocked(st, next.X, next.Y+delta.Y) {
			next.Y += delta.Y
		}
	}
	return next
}
