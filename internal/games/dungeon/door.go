package dungeon

import (
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

// DoorState is the lock state of a door. Transitions only move forward
// (Locked -> Unlocked -> Open) within a single stage visit.
type DoorState int

const (
	DoorLocked DoorState = iota
	DoorUnlocked
	DoorOpen
)

func (s DoorState) String() string {
	switch s {
	case DoorLocked:
		return "locked"
	case DoorUnlocked:
		return "unlocked"
	case DoorOpen:
		return "open"
	default:
		return "unknown"
	}
}

// DoorInteractRadius is how close the player must stand to use a door,
// in world units.
const DoorInteractRadius = 40.0

// TransitionRequest asks for a stage swap: which stage to load and
// where the player arrives in its coordinate space.
type TransitionRequest struct {
	TargetMap string
	TargetPos core.Vec2
}

// Door is a transition gate placed in a stage. It is created when the
// stage loads and destroyed with its controller on transition away.
type Door struct {
	ID        string
	Pos       core.Vec2
	TargetMap string
	TargetPos core.Vec2

	state DoorState
}

// NewDoor creates a locked door from stage data.
func NewDoor(spawn stages.DoorSpawn) *Door {
	return &Door{
		ID:        spawn.ID,
		Pos:       spawn.Position,
		TargetMap: spawn.TargetMap,
		TargetPos: spawn.TargetPos,
		state:     DoorLocked,
	}
}

// State returns the current lock state.
func (d *Door) State() DoorState {
	return d.state
}

// Unlock moves a locked door to unlocked. Idempotent: unlocking an
// already unlocked or open door is a no-op.
func (d *Door) Unlock() {
	if d.state == DoorLocked {
		d.state = DoorUnlocked
	}
}

// Open moves an unlocked door to open. Opening a locked door returns a
// PreconditionError and changes nothing. Opening an open door is a
// no-op.
func (d *Door) Open() error {
	switch d.state {
	case DoorLocked:
		return &PreconditionError{
			Op:     "open door " + d.ID,
			Reason: "door is locked",
		}
	case DoorUnlocked:
		d.state = DoorOpen
	}
	return nil
}

// CanPassThrough reports whether the door permits passage. True iff
// the door is open.
func (d *Door) CanPassThrough() bool {
	return d.state == DoorOpen
}

// TryInteract handles a use attempt from the given position. Within
// range, an unlocked door opens and returns its transition request; an
// open door returns the same request again (repeated passage is fine);
// a locked door returns a PreconditionError so the caller can show
// locked feedback. Out of range nothing happens and ErrOutOfRange is
// returned.
func (d *Door) TryInteract(requester core.Vec2) (TransitionRequest, error) {
	if requester.Dist(d.Pos) > DoorInteractRadius {
		return TransitionRequest{}, ErrOutOfRange
	}

	switch d.state {
	case DoorLocked:
		return TransitionRequest{}, &PreconditionError{
			Op:     "interact with door " + d.ID,
			Reason: "door is locked",
		}
	case DoorUnlocked:
		if err := d.Open(); err != nil {
			return TransitionRequest{}, err
		}
	}

	return TransitionRequest{TargetMap: d.TargetMap, TargetPos: d.TargetPos}, nil
}
