package config

import (
	_ "embed"
)

//go:embed defaults/dungeon.yaml
var defaultDungeonYAML []byte

// DefaultDungeonConfig returns the default dungeon configuration.
func DefaultDungeonConfig() DungeonConfig {
	return DungeonConfig{
		Player: PlayerConfig{
			Speed:       100,
			MaxHealth:   100,
			AttackPower: 20,
		},
		Enemies: EnemyScaling{
			HealthMult: 1.0,
			DamageMult: 1.0,
			SpeedMult:  1.0,
		},
		Stages: StagesConfig{
			Dir:   "",
			Start: "entry-hall",
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 300,
			},
			Scaling: ScalingConfig{
				EnemySpeed:  0.3,
				EnemyDamage: 0.5,
				EnemyHealth: 0.5,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "campaign", "arena", "dungeon":
		return defaultDungeonYAML
	default:
		return nil
	}
}
