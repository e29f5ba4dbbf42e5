package dungeon

import (
	"sort"

	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// stageVisit remembers what happened on earlier visits to a stage, so
// re-entering it does not respawn defeated enemies or collected items.
type stageVisit struct {
	defeated map[string]bool
	taken    map[int]bool
}

func newStageVisit() *stageVisit {
	return &stageVisit{
		defeated: make(map[string]bool),
		taken:    make(map[int]bool),
	}
}

// Coordinator performs stage swaps. It holds exactly one live
// StageController at a time and replaces it atomically: a swap either
// fully completes or leaves the current stage untouched, so the game is
// never left stage-less. It also keeps per-stage visit memory for the
// whole run.
type Coordinator struct {
	catalog *stages.Catalog
	visits  map[string]*stageVisit

	current   *StageController
	currentID string
}

// NewCoordinator creates a coordinator resolving stage ids through the
// given catalog. No stage is loaded yet; call LoadStage first.
func NewCoordinator(catalog *stages.Catalog) *Coordinator {
	return &Coordinator{
		catalog: catalog,
		visits:  make(map[string]*stageVisit),
	}
}

// Current returns the active stage controller, or nil before the first
// load.
func (co *Coordinator) Current() *StageController {
	return co.current
}

// CurrentStageID returns the id of the active stage, or "".
func (co *Coordinator) CurrentStageID() string {
	return co.currentID
}

// LoadStage swaps to the stage with the given id. The new controller is
// fully constructed before the old one is replaced; on any failure the
// current stage stays active and a MapLoadError is returned. Events
// from the load (a ClearEvent when the stage starts already cleared)
// are returned for the frame's queue.
func (co *Coordinator) LoadStage(id string) ([]Event, error) {
	stage, err := co.catalog.LoadByID(id)
	if err != nil {
		return nil, &MapLoadError{TargetMap: id, Err: err}
	}

	controller, events := NewStageController(stage, co.defeatedIn(id))

	// Swap only after the controller is complete.
	co.current = controller
	co.currentID = id
	return events, nil
}

// RequestTransition validates and applies a transition request. The
// caller repositions the player only after this returns successfully,
// so a player position is never observed against a half-loaded stage.
func (co *Coordinator) RequestTransition(req TransitionRequest) ([]Event, error) {
	from := co.currentID
	events, err := co.LoadStage(req.TargetMap)
	if err != nil {
		return nil, err
	}
	return append([]Event{TransitionEvent{From: from, To: req.TargetMap}}, events...), nil
}

// RecordDefeat routes a defeat to the active controller and remembers
// it for future visits to this stage.
func (co *Coordinator) RecordDefeat(entityID string) []Event {
	if co.current == nil {
		return nil
	}
	co.visit(co.currentID).defeated[entityID] = true
	return co.current.RecordDefeat(entityID)
}

// RecordItemTaken remembers that the item at the given index of the
// active stage's item list was collected.
func (co *Coordinator) RecordItemTaken(index int) {
	if co.current == nil {
		return
	}
	co.visit(co.currentID).taken[index] = true
}

// IsDefeated reports whether the entity was defeated on any visit to
// the stage.
func (co *Coordinator) IsDefeated(stageID, entityID string) bool {
	v, ok := co.visits[stageID]
	return ok && v.defeated[entityID]
}

// IsItemTaken reports whether the item at the given index of the
// stage's item list was already collected.
func (co *Coordinator) IsItemTaken(stageID string, index int) bool {
	v, ok := co.visits[stageID]
	return ok && v.taken[index]
}

// VisitedStages returns the ids of stages with recorded visit history,
// sorted for deterministic output.
func (co *Coordinator) VisitedStages() []string {
	ids := make([]string, 0, len(co.visits))
	for id := range co.visits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// visit returns the stage's memory, creating it on first touch.
func (co *Coordinator) visit(stageID string) *stageVisit {
	v, ok := co.visits[stageID]
	if !ok {
		v = newStageVisit()
		co.visits[stageID] = v
	}
	return v
}

// defeatedIn returns the remembered defeats for a stage in sorted
// order, for deterministic tracker seeding.
func (co *Coordinator) defeatedIn(stageID string) []string {
	v, ok := co.visits[stageID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(v.defeated))
	for id := range v.defeated {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
