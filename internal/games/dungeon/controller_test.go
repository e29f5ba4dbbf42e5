package dungeon

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages/formats"
)

// cellStage builds a small bordered room with the given objects, going
// through the real file decoding path.
func cellStage(t *testing.T, objects []formats.Object) stages.Stage {
	t.Helper()
	raw := formats.Stage{
		ID:       "cell",
		Name:     "Cell",
		Width:    10,
		Height:   8,
		TileSize: 32,
		Spawn:    formats.Point{X: 48, Y: 48},
		Tiles: []string{
			"1111111111",
			"1000000001",
			"1000000001",
			"1000000001",
			"1000000001",
			"1000000001",
			"1000000001",
			"1111111111",
		},
		Objects: objects,
	}
	s, err := stages.FromRaw(raw, "cell.yaml")
	if err != nil {
		t.Fatalf("FromRaw failed: %v", err)
	}
	return s
}

// guardedCell is a two-enemy room with one exit door.
func guardedCell(t *testing.T) stages.Stage {
	t.Helper()
	return cellStage(t, []formats.Object{
		{Type: "enemy", Kind: "basic", X: 112, Y: 80},
		{Type: "enemy", Kind: "goblin", X: 208, Y: 80},
		{
			Type: "door", DoorID: "exit", X: 160, Y: 160,
			TargetMap:      "stage2.json",
			TargetPosition: formats.Point{X: 240, Y: 320},
		},
	})
}

func TestStageClearUnlocksExit(t *testing.T) {
	c, events := NewStageController(guardedCell(t), nil)
	if len(events) != 0 {
		t.Fatalf("load of a guarded stage emitted %d events, want 0", len(events))
	}
	if c.Status() != StatusInProgress {
		t.Fatalf("status = %v, want in progress", c.Status())
	}

	door, ok := c.Door("exit")
	if !ok {
		t.Fatal("door exit missing")
	}
	atDoor := core.Vec2{X: 170, Y: 160}

	// First kill: stage still guarded, door still locked.
	if ev := c.RecordDefeat("cell#0"); len(ev) != 0 {
		t.Errorf("first defeat emitted %d events, want 0", len(ev))
	}
	if c.Tracker().Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", c.Tracker().Remaining())
	}
	if door.State() != DoorLocked {
		t.Errorf("door state = %v, want locked", door.State())
	}
	if _, _, err := c.OnDoorInteract("exit", atDoor); err == nil {
		t.Error("interact with a locked door should fail")
	}

	// Second kill empties the stage: one clear event, door unlocked.
	ev := c.RecordDefeat("cell#1")
	if len(ev) != 1 {
		t.Fatalf("final defeat emitted %d events, want 1", len(ev))
	}
	clear, ok := ev[0].(ClearEvent)
	if !ok {
		t.Fatalf("event type = %T, want ClearEvent", ev[0])
	}
	if clear.StageID != "cell" {
		t.Errorf("clear stage id = %q, want %q", clear.StageID, "cell")
	}
	if c.Status() != StatusCleared {
		t.Errorf("status = %v, want cleared", c.Status())
	}
	if door.State() != DoorUnlocked {
		t.Errorf("door state = %v, want unlocked", door.State())
	}

	// Interaction now opens the door and yields the transition request.
	req, ev, err := c.OnDoorInteract("exit", atDoor)
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if len(ev) != 0 {
		t.Errorf("successful interact emitted %d events, want 0", len(ev))
	}
	if door.State() != DoorOpen {
		t.Errorf("door state = %v, want open", door.State())
	}
	if req.TargetMap != "stage2.json" {
		t.Errorf("target map = %q, want %q", req.TargetMap, "stage2.json")
	}
	if req.TargetPos.X != 240 || req.TargetPos.Y != 320 {
		t.Errorf("target pos = %v, want (240, 320)", req.TargetPos)
	}

	// An open door keeps handing out the same request.
	again, _, err := c.OnDoorInteract("exit", atDoor)
	if err != nil {
		t.Fatalf("repeat interact failed: %v", err)
	}
	if again != req {
		t.Errorf("repeat request = %+v, want %+v", again, req)
	}
}

func TestControllerEmptyStageAutoClears(t *testing.T) {
	stage := cellStage(t, []formats.Object{
		{
			Type: "door", DoorID: "out", X: 160, Y: 160,
			TargetMap:      "cell",
			TargetPosition: formats.Point{X: 48, Y: 48},
		},
	})

	c, events := NewStageController(stage, nil)
	if len(events) != 1 {
		t.Fatalf("load emitted %d events, want 1", len(events))
	}
	if _, ok := events[0].(ClearEvent); !ok {
		t.Fatalf("event type = %T, want ClearEvent", events[0])
	}
	if c.Status() != StatusCleared {
		t.Errorf("status = %v, want cleared", c.Status())
	}
	door, _ := c.Door("out")
	if door.State() != DoorUnlocked {
		t.Errorf("door state = %v, want unlocked", door.State())
	}
}

func TestControllerPreseededDefeats(t *testing.T) {
	// Re-entering a stage whose enemies all died on a previous visit
	// starts it cleared, with its single clear event at load.
	c, events := NewStageController(guardedCell(t), []string{"cell#0", "cell#1"})
	if len(events) != 1 {
		t.Fatalf("load emitted %d events, want 1", len(events))
	}
	if c.Status() != StatusCleared {
		t.Errorf("status = %v, want cleared", c.Status())
	}
	if c.Tracker().Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", c.Tracker().Remaining())
	}

	// Partial memory keeps the stage guarded.
	c, events = NewStageController(guardedCell(t), []string{"cell#0"})
	if len(events) != 0 {
		t.Errorf("partial load emitted %d events, want 0", len(events))
	}
	if c.Tracker().Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", c.Tracker().Remaining())
	}
}

func TestControllerDuplicateDefeat(t *testing.T) {
	c, _ := NewStageController(guardedCell(t), nil)

	c.RecordDefeat("cell#0")
	if ev := c.RecordDefeat("cell#0"); len(ev) != 0 {
		t.Errorf("duplicate defeat emitted %d events, want 0", len(ev))
	}
	if c.Tracker().Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", c.Tracker().Remaining())
	}

	c.RecordDefeat("cell#1")
	if ev := c.RecordDefeat("cell#1"); len(ev) != 0 {
		t.Errorf("defeat after clear emitted %d events, want 0", len(ev))
	}
}

func TestControllerUnknownDoor(t *testing.T) {
	c, _ := NewStageController(guardedCell(t), nil)

	_, events, err := c.OnDoorInteract("trapdoor", core.Vec2{X: 160, Y: 160})
	if err == nil {
		t.Fatal("unknown door id should fail")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigurationError", err)
	}
	if len(events) != 0 {
		t.Errorf("unknown door emitted %d events, want 0", len(events))
	}
}

func TestControllerLockedInteractKeepsState(t *testing.T) {
	c, _ := NewStageController(guardedCell(t), nil)
	door, _ := c.Door("exit")
	atDoor := core.Vec2{X: 170, Y: 160}

	// Repeated attempts on a locked door change nothing and report the
	// same locked feedback every time.
	for i := 0; i < 3; i++ {
		req, events, err := c.OnDoorInteract("exit", atDoor)
		var precond *PreconditionError
		if !errors.As(err, &precond) {
			t.Fatalf("attempt %d: error type = %T, want *PreconditionError", i, err)
		}
		if len(events) != 1 {
			t.Fatalf("attempt %d: emitted %d events, want 1", i, len(events))
		}
		locked, ok := events[0].(DoorLockedEvent)
		if !ok {
			t.Fatalf("attempt %d: event type = %T, want DoorLockedEvent", i, events[0])
		}
		if locked.DoorID != "exit" {
			t.Errorf("attempt %d: locked door id = %q, want %q", i, locked.DoorID, "exit")
		}
		if req != (TransitionRequest{}) {
			t.Errorf("attempt %d: locked interact produced request %+v", i, req)
		}
		if door.State() != DoorLocked {
			t.Errorf("attempt %d: door state = %v, want locked", i, door.State())
		}
		if c.Tracker().Remaining() != 2 {
			t.Errorf("attempt %d: remaining = %d, want 2", i, c.Tracker().Remaining())
		}
	}
}

func TestControllerOutOfRangeInteract(t *testing.T) {
	c, _ := NewStageController(guardedCell(t), nil)
	c.RecordDefeat("cell#0")
	c.RecordDefeat("cell#1")

	far := core.Vec2{X: 48, Y: 48}
	_, events, err := c.OnDoorInteract("exit", far)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("error = %v, want ErrOutOfRange", err)
	}
	if len(events) != 0 {
		t.Errorf("out-of-range interact emitted %d events, want 0", len(events))
	}
	door, _ := c.Door("exit")
	if door.State() != DoorUnlocked {
		t.Errorf("door state = %v, want unlocked", door.State())
	}
}
