package dungeon

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// Enemy AI tuning, in world units and seconds.
const (
	EnemyDetectRange    = 80.0
	EnemyAttackRange    = 35.0
	EnemyAttackCooldown = 1.0

	patrolRadiusMax = 60.0
	patrolRadiusMin = 20.0
	patrolInterval  = 2.0
	patrolArrive    = 10.0
)

// AIState is what an enemy is currently doing.
type AIState int

const (
	AIPatrol AIState = iota
	AIChase
	AIAttack
)

func (s AIState) String() string {
	switch s {
	case AIPatrol:
		return "patrol"
	case AIChase:
		return "chase"
	case AIAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Enemy is one clear-condition entity. Its id is stable across stage
// reloads so defeats recorded in visit memory match up.
type Enemy struct {
	ID    string
	Kind  string
	Pos   core.Vec2
	HP    int
	Stats EnemyStats
	State AIState

	home         core.Vec2
	patrolTarget core.Vec2
	patrolTimer  float64
	attackTimer  float64
}

// NewEnemy creates an enemy of the given kind at its spawn point. The
// stats are passed in rather than looked up so difficulty scaling
// happens in one place.
func NewEnemy(id, kind string, pos core.Vec2, stats EnemyStats) *Enemy {
	return &Enemy{
		ID:    id,
		Kind:  kind,
		Pos:   pos,
		HP:    stats.MaxHP,
		Stats: stats,
		State: AIPatrol,
		home:  pos,
	}
}

// Update runs one AI tick: attack the player in reach, chase them when
// detected, otherwise wander near the spawn point. Returns the damage
// dealt to the player this tick (usually zero).
func (e *Enemy) Update(dt float64, playerPos core.Vec2, st *stages.Stage, rng *rand.Rand) int {
	if e.attackTimer > 0 {
		e.attackTimer -= dt
	}
	e.patrolTimer -= dt

	dist := e.Pos.Dist(playerPos)
	switch {
	case dist <= EnemyAttackRange:
		e.State = AIAttack
		if e.attackTimer <= 0 {
			e.attackTimer = EnemyAttackCooldown
			return e.Stats.Damage
		}
	case dist <= EnemyDetectRange:
		e.State = AIChase
		e.moveToward(playerPos, dt, st)
	default:
		e.State = AIPatrol
		e.patrol(dt, st, rng)
	}
	return 0
}

// patrol wanders toward a random point near home, picking a new one
// periodically or when the current one is reached.
func (e *Enemy) patrol(dt float64, st *stages.Stage, rng *rand.Rand) {
	if e.patrolTimer <= 0 || e.Pos.Dist(e.patrolTarget) < patrolArrive {
		e.patrolTimer = patrolInterval
		e.patrolTarget = e.pickPatrolTarget(rng)
	}
	e.moveToward(e.patrolTarget, dt, st)
}

// pickPatrolTarget chooses a random point between 20 and 60 units from
// the spawn point.
func (e *Enemy) pickPatrolTarget(rng *rand.Rand) core.Vec2 {
	angle := rng.Float64() * 2 * math.Pi
	dist := patrolRadiusMin + rng.Float64()*(patrolRadiusMax-patrolRadiusMin)
	return core.Vec2{
		X: e.home.X + math.Cos(angle)*dist,
		Y: e.home.Y + math.Sin(angle)*dist,
	}
}

// moveToward steps toward the target at the enemy's speed, sliding
// along walls.
func (e *Enemy) moveToward(target core.Vec2, dt float64, st *stages.Stage) {
	dir := target.Sub(e.Pos)
	if dir.Len() < 0.5 {
		return
	}
	delta := dir.Normalized().Scale(e.Stats.Speed * dt)
	e.Pos = moveWithCollision(e.Pos, delta, st)
}

// TakeDamage reduces health, clamped at zero.
func (e *Enemy) TakeDamage(n int) {
	e.HP = core.Max(0, e.HP-n)
}

// Dead reports whether the enemy has been defeated.
func (e *Enemy) Dead() bool {
	return e.HP <= 0
}
