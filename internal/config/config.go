// Package config provides YAML-based game configuration loading and
// difficulty management for the dungeon platform.
package config

// DungeonConfig contains all configuration for the dungeon game.
type DungeonConfig struct {
	Player     PlayerConfig     `yaml:"player"`
	Enemies    EnemyScaling     `yaml:"enemies"`
	Stages     StagesConfig     `yaml:"stages"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// PlayerConfig defines the player's base parameters.
type PlayerConfig struct {
	Speed       float64 `yaml:"speed"`        // World units per second
	MaxHealth   int     `yaml:"max_health"`   // Starting and max health
	AttackPower int     `yaml:"attack_power"` // Damage per hit
}

// EnemyScaling applies flat multipliers to every spawned enemy, before
// dynamic difficulty scaling.
type EnemyScaling struct {
	HealthMult float64 `yaml:"health_mult"`
	DamageMult float64 `yaml:"damage_mult"`
	SpeedMult  float64 `yaml:"speed_mult"`
}

// StagesConfig controls where stage data comes from.
type StagesConfig struct {
	Dir   string `yaml:"dir"`   // Extra stage directory, overrides embedded stages by id
	Start string `yaml:"start"` // First stage of the campaign
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines how much harder enemies get at max difficulty.
// Each value is the fraction added to the base stat at level 1.0.
type ScalingConfig struct {
	EnemySpeed  float64 `yaml:"enemy_speed"`
	EnemyDamage float64 `yaml:"enemy_damage"`
	EnemyHealth float64 `yaml:"enemy_health"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
