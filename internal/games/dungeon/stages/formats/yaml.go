// Package formats provides pluggable stage file format parsers.
// Parsers return the raw on-disk shape; the stages package decodes it
// into the tagged domain model.
package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage is the raw stage file structure shared by all formats.
type Stage struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Width    int      `yaml:"width" json:"width"`
	Height   int      `yaml:"height" json:"height"`
	TileSize int      `yaml:"tile_size" json:"tile_size"`
	Spawn    Point    `yaml:"spawn" json:"spawn"`
	Tiles    []string `yaml:"tiles" json:"tiles"`
	Objects  []Object `yaml:"objects" json:"objects"`
}

// Point is a two-component coordinate in stage world units.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Object is one raw entry of the stage objects list. The `type` field
// discriminates which of the remaining fields apply.
type Object struct {
	Type string  `yaml:"type" json:"type"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`

	// Enemy and item entries.
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Door entries.
	DoorID         string `yaml:"door_id,omitempty" json:"door_id,omitempty"`
	TargetMap      string `yaml:"target_map,omitempty" json:"target_map,omitempty"`
	TargetPosition Point  `yaml:"target_position,omitempty" json:"target_position,omitempty"`
}

// ParseYAML parses a YAML stage file.
func ParseYAML(data []byte) (Stage, error) {
	var s Stage
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Stage{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return s, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}
