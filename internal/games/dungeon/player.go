package dungeon

import (
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// Player combat and progression defaults.
const (
	PlayerMaxHP          = 100
	PlayerAttackPower    = 20
	PlayerAttackRange    = 40.0
	PlayerAttackCooldown = 0.5
	PlayerBaseSpeed      = 100.0

	// XPPerLevel is the flat experience cost of each level.
	XPPerLevel = 100
	// LevelHPBonus is added to both max and current health per level.
	LevelHPBonus = 10
)

// Player is the run's protagonist. Position is in world units of the
// active stage and is reset by the coordinator on every transition.
type Player struct {
	Pos    core.Vec2
	Facing core.Vec2

	HP     int
	MaxHP  int
	Attack int
	XP     int
	Level  int

	baseSpeed   float64
	speedMult   float64
	attackTimer float64
}

// NewPlayer creates a level 1 player at the given position.
func NewPlayer(pos core.Vec2) *Player {
	return &Player{
		Pos:       pos,
		Facing:    core.Vec2{X: 1, Y: 0},
		HP:        PlayerMaxHP,
		MaxHP:     PlayerMaxHP,
		Attack:    PlayerAttackPower,
		Level:     1,
		baseSpeed: PlayerBaseSpeed,
		speedMult: 1.0,
	}
}

// SetBaseSpeed overrides the configured movement speed.
func (p *Player) SetBaseSpeed(speed float64) {
	if speed > 0 {
		p.baseSpeed = speed
	}
}

// Speed returns the current movement speed in world units per second.
func (p *Player) Speed() float64 {
	return p.baseSpeed * p.speedMult
}

// Move advances the player in the given direction for one tick,
// sliding along walls. A zero direction leaves position and facing
// unchanged.
func (p *Player) Move(dir core.Vec2, dt float64, st *stages.Stage) {
	if dir.X == 0 && dir.Y == 0 {
		return
	}
	dir = dir.Normalized()
	p.Facing = dir
	delta := dir.Scale(p.Speed() * dt)
	p.Pos = moveWithCollision(p.Pos, delta, st)
}

// Tick advances the player's timers by one frame.
func (p *Player) Tick(dt float64) {
	if p.attackTimer > 0 {
		p.attackTimer -= dt
	}
}

// TryAttack consumes the attack if it is off cooldown. Returns false
// while the cooldown is still running.
func (p *Player) TryAttack() bool {
	if p.attackTimer > 0 {
		return false
	}
	p.attackTimer = PlayerAttackCooldown
	return true
}

// TakeDamage reduces health, clamped at zero.
func (p *Player) TakeDamage(n int) {
	p.HP = core.Max(0, p.HP-n)
}

// Heal restores health, clamped at max.
func (p *Player) Heal(n int) {
	p.HP = core.Min(p.MaxHP, p.HP+n)
}

// Dead reports whether the player's health is gone.
func (p *Player) Dead() bool {
	return p.HP <= 0
}

// GainXP adds experience and applies any level-ups (flat 100 xp per
// level; each level adds 10 max health and heals 10). Returns the
// number of levels gained, zero most of the time.
func (p *Player) GainXP(n int) int {
	p.XP += n
	newLevel := p.XP/XPPerLevel + 1
	gained := newLevel - p.Level
	if gained <= 0 {
		return 0
	}
	p.Level = newLevel
	p.MaxHP += gained * LevelHPBonus
	p.HP += gained * LevelHPBonus
	return gained
}

// ApplyItem applies an item's effect and returns the number of levels
// gained from any experience it granted.
func (p *Player) ApplyItem(e ItemEffect) int {
	if e.Heal > 0 {
		p.Heal(e.Heal)
	}
	if e.AttackBonus > 0 {
		p.Attack += e.AttackBonus
	}
	if e.SpeedMult > 0 {
		p.speedMult *= e.SpeedMult
	}
	if e.XP > 0 {
		return p.GainXP(e.XP)
	}
	return 0
}
