package stages

import (
	"fmt"
	"sort"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// KnownKinds carries the enemy and item kinds the game can spawn.
// Nil maps skip the corresponding check.
type KnownKinds struct {
	Enemies map[string]bool
	Items   map[string]bool
}

// ValidateStage performs structural validation of a single stage.
// Checks:
//   - Dimensions are positive
//   - Spawn point is inside the map and not inside a wall
//   - Every object position is inside the map
//   - Door ids are non-empty and unique within the stage
//   - Door targets are non-empty
//
// Cross-stage door resolution needs the full catalog; see ValidateCatalog.
func ValidateStage(s Stage) error {
	if err := validateDimensions(s); err != nil {
		return err
	}
	if err := validateSpawn(s); err != nil {
		return err
	}
	if err := validateObjects(s); err != nil {
		return err
	}
	if err := validateDoors(s); err != nil {
		return err
	}
	return nil
}

// validateDimensions checks that the stage has a usable size.
func validateDimensions(s Stage) error {
	if s.Width < 1 || s.Height < 1 {
		return ValidationError{
			Code:    "BAD_DIMENSIONS",
			Message: fmt.Sprintf("stage %s: grid %dx%d, both sides must be >= 1", s.ID, s.Width, s.Height),
		}
	}
	if s.TileSize < 1 {
		return ValidationError{
			Code:    "BAD_DIMENSIONS",
			Message: fmt.Sprintf("stage %s: tile size %d must be >= 1", s.ID, s.TileSize),
		}
	}
	return nil
}

// validateSpawn checks the player spawn point.
func validateSpawn(s Stage) error {
	if !s.InBounds(s.Spawn) {
		return ValidationError{
			Code:    "SPAWN_OUT_OF_BOUNDS",
			Message: fmt.Sprintf("stage %s: spawn (%.0f, %.0f) outside %.0fx%.0f world", s.ID, s.Spawn.X, s.Spawn.Y, s.WorldW(), s.WorldH()),
		}
	}
	if s.SolidAt(s.Spawn) {
		return ValidationError{
			Code:    "SPAWN_BLOCKED",
			Message: fmt.Sprintf("stage %s: spawn (%.0f, %.0f) is inside a wall", s.ID, s.Spawn.X, s.Spawn.Y),
		}
	}
	return nil
}

// validateObjects checks that every object sits inside the map.
func validateObjects(s Stage) error {
	for i, obj := range s.Objects {
		pos := obj.Pos()
		if !s.InBounds(pos) {
			return ValidationError{
				Code:    "OBJECT_OUT_OF_BOUNDS",
				Message: fmt.Sprintf("stage %s: object %d at (%.0f, %.0f) outside %.0fx%.0f world", s.ID, i, pos.X, pos.Y, s.WorldW(), s.WorldH()),
			}
		}
	}
	return nil
}

// validateDoors checks door ids and targets within one stage.
func validateDoors(s Stage) error {
	seen := make(map[string]bool)
	for _, d := range s.Doors() {
		if d.ID == "" {
			return ValidationError{
				Code:    "DOOR_ID_EMPTY",
				Message: fmt.Sprintf("stage %s: door at (%.0f, %.0f) has no id", s.ID, d.Position.X, d.Position.Y),
			}
		}
		if seen[d.ID] {
			return ValidationError{
				Code:    "DOOR_ID_DUPLICATE",
				Message: fmt.Sprintf("stage %s: door id %q used more than once", s.ID, d.ID),
			}
		}
		seen[d.ID] = true
		if d.TargetMap == "" {
			return ValidationError{
				Code:    "DOOR_TARGET_EMPTY",
				Message: fmt.Sprintf("stage %s: door %q has no target map", s.ID, d.ID),
			}
		}
	}
	return nil
}

// validateKinds checks that spawns reference kinds the game knows.
func validateKinds(s Stage, kinds KnownKinds) error {
	if kinds.Enemies != nil {
		for _, e := range s.Enemies() {
			if !kinds.Enemies[e.Kind] {
				return ValidationError{
					Code:    "UNKNOWN_ENEMY_KIND",
					Message: fmt.Sprintf("stage %s: enemy kind %q is not known", s.ID, e.Kind),
				}
			}
		}
	}
	if kinds.Items != nil {
		for _, it := range s.Items() {
			if !kinds.Items[it.Kind] {
				return ValidationError{
					Code:    "UNKNOWN_ITEM_KIND",
					Message: fmt.Sprintf("stage %s: item kind %q is not known", s.ID, it.Kind),
				}
			}
		}
	}
	return nil
}

// ValidateCatalog validates every stage plus the links between them:
// each door target must name another stage in the set (or the victory
// sentinel) and the arrival position must fit the target stage.
func ValidateCatalog(all []Stage, kinds KnownKinds) error {
	byID := make(map[string]Stage, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	// Sort for deterministic error ordering
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := byID[id]
		if err := ValidateStage(s); err != nil {
			return err
		}
		if err := validateKinds(s, kinds); err != nil {
			return err
		}
		if err := validateDoorTargets(s, byID); err != nil {
			return err
		}
	}
	return nil
}

// validateDoorTargets resolves door destinations against the catalog.
func validateDoorTargets(s Stage, byID map[string]Stage) error {
	for _, d := range s.Doors() {
		if d.TargetMap == TargetVictory {
			continue
		}
		target, ok := byID[d.TargetMap]
		if !ok {
			return ValidationError{
				Code:    "DOOR_TARGET_UNKNOWN",
				Message: fmt.Sprintf("stage %s: door %q leads to missing stage %q", s.ID, d.ID, d.TargetMap),
			}
		}
		if !target.InBounds(d.TargetPos) {
			return ValidationError{
				Code:    "DOOR_TARGET_OUT_OF_BOUNDS",
				Message: fmt.Sprintf("stage %s: door %q arrives at (%.0f, %.0f) outside stage %q", s.ID, d.ID, d.TargetPos.X, d.TargetPos.Y, d.TargetMap),
			}
		}
	}
	return nil
}

// StageStats returns statistics about a stage.
type StageStats struct {
	ID         string
	Width      int
	Height     int
	TotalTiles int
	SolidTiles int
	Enemies    int
	Items      int
	Doors      int
	WallRatio  float64
}

// ComputeStageStats analyzes a stage and returns statistics.
func ComputeStageStats(s Stage) StageStats {
	solid := 0
	for ty := 0; ty < s.Height; ty++ {
		for tx := 0; tx < s.Width; tx++ {
			if s.SolidAtTile(tx, ty) {
				solid++
			}
		}
	}
	total := s.Width * s.Height

	stats := StageStats{
		ID:         s.ID,
		Width:      s.Width,
		Height:     s.Height,
		TotalTiles: total,
		SolidTiles: solid,
		Enemies:    len(s.Enemies()),
		Items:      len(s.Items()),
		Doors:      len(s.Doors()),
	}
	if total > 0 {
		stats.WallRatio = float64(solid) / float64(total)
	}
	return stats
}
