package dungeon

import (
	"errors"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// StageStatus is the progression state of the active stage.
type StageStatus int

const (
	StatusInProgress StageStatus = iota
	StatusCleared
)

func (s StageStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// StageController owns the doors and objective tracker of the active
// stage. It is the sole mutator of both: defeats and interactions are
// routed through it and nothing else writes to its doors or tracker.
// Its lifetime matches one stage visit; the coordinator replaces it
// wholesale on transition.
type StageController struct {
	stage   stages.Stage
	doors   []*Door
	byID    map[string]*Door
	tracker *Tracker
	status  StageStatus
}

// NewStageController builds the controller for a freshly loaded stage.
// Enemies already defeated on an earlier visit are pre-recorded, so the
// remaining count survives re-entry. Doors start locked; a stage whose
// objective is already satisfied at load (no enemies at all, or all of
// them defeated before) starts cleared with every door unlocked and
// emits its single ClearEvent right away.
func NewStageController(stage stages.Stage, defeated []string) (*StageController, []Event) {
	spawns := stage.Enemies()
	c := &StageController{
		stage:   stage,
		tracker: NewTracker(len(spawns)),
		status:  StatusInProgress,
	}

	c.byID = make(map[string]*Door)
	for _, ds := range stage.Doors() {
		door := NewDoor(ds)
		c.doors = append(c.doors, door)
		c.byID[door.ID] = door
	}

	for _, id := range defeated {
		c.tracker.RecordDefeat(id)
	}

	var events []Event
	if c.tracker.IsCleared() {
		events = append(events, c.clear()...)
	}
	return c, events
}

// clear transitions the stage to cleared and unlocks every door. The
// transition is terminal for this visit: the stage never returns to in
// progress without a full reload.
func (c *StageController) clear() []Event {
	c.status = StatusCleared
	for _, d := range c.doors {
		d.Unlock()
	}
	return []Event{ClearEvent{StageID: c.stage.ID}}
}

// RecordDefeat routes an entity-defeated event to the tracker. On the
// defeat that empties the stage it unlocks all doors and returns the
// stage's ClearEvent; otherwise it returns nothing. Duplicate defeats
// are no-ops.
func (c *StageController) RecordDefeat(entityID string) []Event {
	if c.tracker.RecordDefeat(entityID) {
		return c.clear()
	}
	return nil
}

// OnDoorInteract resolves a door id and forwards the use attempt. An
// unknown id is a ConfigurationError: stage data referenced a door it
// never defined. A locked door returns a PreconditionError along with
// a DoorLockedEvent for the HUD. Out-of-range attempts return
// ErrOutOfRange and no events.
func (c *StageController) OnDoorInteract(doorID string, requester core.Vec2) (TransitionRequest, []Event, error) {
	door, ok := c.byID[doorID]
	if !ok {
		return TransitionRequest{}, nil, &ConfigurationError{
			Subject: "door " + doorID,
			Reason:  "no such door in stage " + c.stage.ID,
		}
	}

	req, err := door.TryInteract(requester)
	if err != nil {
		var precond *PreconditionError
		if errors.As(err, &precond) {
			return TransitionRequest{}, []Event{DoorLockedEvent{DoorID: doorID}}, err
		}
		return TransitionRequest{}, nil, err
	}
	return req, nil, nil
}

// Stage returns the stage data this controller runs.
func (c *StageController) Stage() stages.Stage {
	return c.stage
}

// Doors returns the controller's doors in stage data order.
func (c *StageController) Doors() []*Door {
	return c.doors
}

// Door looks up a door by id.
func (c *StageController) Door(id string) (*Door, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Tracker returns the stage's objective tracker.
func (c *StageController) Tracker() *Tracker {
	return c.tracker
}

// Status returns the stage progression state.
func (c *StageController) Status() StageStatus {
	return c.status
}
