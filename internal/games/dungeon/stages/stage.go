// Package stages provides stage data loading for the dungeon.
// This package depends on core but the game core does not depend on
// any particular on-disk format.
package stages

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages/formats"
)

// TargetVictory is the reserved door target that ends a run as a win
// instead of loading another stage.
const TargetVictory = "victory"

// Object is one placed entity from a stage's objects list, decoded into
// its concrete variant at load time. Code downstream switches on the
// concrete type, never on a string discriminant.
type Object interface {
	// Pos returns the object's position in stage world units.
	Pos() core.Vec2

	stageObject()
}

// EnemySpawn places an enemy of the given kind.
type EnemySpawn struct {
	Kind     string
	Position core.Vec2
}

func (EnemySpawn) stageObject() {}

// Pos returns the spawn position.
func (e EnemySpawn) Pos() core.Vec2 { return e.Position }

// ItemSpawn places a collectible item of the given kind.
type ItemSpawn struct {
	Kind     string
	Position core.Vec2
}

func (ItemSpawn) stageObject() {}

// Pos returns the spawn position.
func (i ItemSpawn) Pos() core.Vec2 { return i.Position }

// DoorSpawn places a transition gate. ID is unique within the stage;
// TargetMap names the destination stage (or TargetVictory); TargetPos is
// where the player arrives in the destination's coordinate space.
type DoorSpawn struct {
	ID        string
	Position  core.Vec2
	TargetMap string
	TargetPos core.Vec2
}

func (DoorSpawn) stageObject() {}

// Pos returns the door position.
func (d DoorSpawn) Pos() core.Vec2 { return d.Position }

// Stage is a fully decoded stage definition.
type Stage struct {
	ID       string
	Name     string
	Width    int // in tiles
	Height   int // in tiles
	TileSize int // world units per tile
	Spawn    core.Vec2
	Solid    [][]bool // [y][x], true = wall
	Objects  []Object
	FilePath string
}

// FromRaw decodes a parsed stage file into the domain model. Tile rows
// and the object type discriminant are decoded here, once; malformed
// entries fail the whole stage.
func FromRaw(raw formats.Stage, filePath string) (Stage, error) {
	if raw.ID == "" {
		return Stage{}, fmt.Errorf("stage in %s: missing id", filePath)
	}

	s := Stage{
		ID:       raw.ID,
		Name:     raw.Name,
		Width:    raw.Width,
		Height:   raw.Height,
		TileSize: raw.TileSize,
		Spawn:    core.Vec2{X: raw.Spawn.X, Y: raw.Spawn.Y},
		FilePath: filePath,
	}

	solid, err := parseTiles(raw.Tiles, raw.Width, raw.Height)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %s: %w", raw.ID, err)
	}
	s.Solid = solid

	s.Objects = make([]Object, 0, len(raw.Objects))
	for i, o := range raw.Objects {
		obj, err := decodeObject(o)
		if err != nil {
			return Stage{}, fmt.Errorf("stage %s: object %d: %w", raw.ID, i, err)
		}
		s.Objects = append(s.Objects, obj)
	}

	return s, nil
}

// parseTiles converts collision rows ('1' = wall, '0' = floor) into a
// boolean grid matching the declared dimensions.
func parseTiles(rows []string, w, h int) ([][]bool, error) {
	if len(rows) != h {
		return nil, fmt.Errorf("tile rows: expected %d, got %d", h, len(rows))
	}
	solid := make([][]bool, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("tile row %d: expected %d columns, got %d", y, w, len(row))
		}
		solid[y] = make([]bool, len(row))
		for x, ch := range row {
			switch ch {
			case '1':
				solid[y][x] = true
			case '0':
				solid[y][x] = false
			default:
				return nil, fmt.Errorf("tile row %d: invalid character %q", y, ch)
			}
		}
	}
	return solid, nil
}

// decodeObject resolves the type discriminant into a concrete variant.
func decodeObject(o formats.Object) (Object, error) {
	pos := core.Vec2{X: o.X, Y: o.Y}
	switch o.Type {
	case "enemy":
		return EnemySpawn{Kind: o.Kind, Position: pos}, nil
	case "item":
		return ItemSpawn{Kind: o.Kind, Position: pos}, nil
	case "door":
		return DoorSpawn{
			ID:        o.DoorID,
			Position:  pos,
			TargetMap: o.TargetMap,
			TargetPos: core.Vec2{X: o.TargetPosition.X, Y: o.TargetPosition.Y},
		}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", o.Type)
	}
}

// WorldW returns the stage width in world units.
func (s *Stage) WorldW() float64 {
	return float64(s.Width * s.TileSize)
}

// WorldH returns the stage height in world units.
func (s *Stage) WorldH() float64 {
	return float64(s.Height * s.TileSize)
}

// TileAt converts a world position to tile coordinates. Floor division
// keeps negative positions mapping to negative tiles.
func (s *Stage) TileAt(p core.Vec2) (int, int) {
	tx := int(math.Floor(p.X / float64(s.TileSize)))
	ty := int(math.Floor(p.Y / float64(s.TileSize)))
	return tx, ty
}

// SolidAtTile reports whether the tile is a wall. Coordinates outside
// the grid count as solid so entities cannot escape the stage.
func (s *Stage) SolidAtTile(tx, ty int) bool {
	if ty < 0 || ty >= len(s.Solid) {
		return true
	}
	row := s.Solid[ty]
	if tx < 0 || tx >= len(row) {
		return true
	}
	return row[tx]
}

// SolidAt reports whether the tile under a world position is a wall.
func (s *Stage) SolidAt(p core.Vec2) bool {
	tx, ty := s.TileAt(p)
	return s.SolidAtTile(tx, ty)
}

// InBounds reports whether a world position lies inside the stage.
func (s *Stage) InBounds(p core.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.WorldW() && p.Y < s.WorldH()
}

// Doors returns the stage's door entries in object order.
func (s *Stage) Doors() []DoorSpawn {
	var doors []DoorSpawn
	for _, o := range s.Objects {
		if d, ok := o.(DoorSpawn); ok {
			doors = append(doors, d)
		}
	}
	return doors
}

// Enemies returns the stage's enemy entries in object order.
func (s *Stage) Enemies() []EnemySpawn {
	var enemies []EnemySpawn
	for _, o := range s.Objects {
		if e, ok := o.(EnemySpawn); ok {
			enemies = append(enemies, e)
		}
	}
	return enemies
}

// Items returns the stage's item entries in object order.
func (s *Stage) Items() []ItemSpawn {
	var items []ItemSpawn
	for _, o := range s.Objects {
		if it, ok := o.(ItemSpawn); ok {
			items = append(items, it)
		}
	}
	return items
}
