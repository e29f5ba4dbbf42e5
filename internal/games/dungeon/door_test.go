package dungeon

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

func testDoor() *Door {
	return NewDoor(stages.DoorSpawn{
		ID:        "exit",
		Position:  core.Vec2{X: 160, Y: 160},
		TargetMap: "stage2.json",
		TargetPos: core.Vec2{X: 240, Y: 320},
	})
}

func TestDoorStartsLocked(t *testing.T) {
	d := testDoor()

	if d.State() != DoorLocked {
		t.Errorf("new door state = %v, want locked", d.State())
	}
	if d.CanPassThrough() {
		t.Error("locked door should not allow passage")
	}
}

func TestDoorUnlockIdempotent(t *testing.T) {
	d := testDoor()

	d.Unlock()
	if d.State() != DoorUnlocked {
		t.Fatalf("state after unlock = %v, want unlocked", d.State())
	}

	d.Unlock()
	if d.State() != DoorUnlocked {
		t.Errorf("second unlock changed state to %v", d.State())
	}

	// Unlock must never walk an open door backwards.
	if err := d.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	d.Unlock()
	if d.State() != DoorOpen {
		t.Errorf("unlock regressed open door to %v", d.State())
	}
}

func TestDoorOpenWhileLocked(t *testing.T) {
	d := testDoor()

	err := d.Open()
	if err == nil {
		t.Fatal("opening a locked door should fail")
	}
	var precond *PreconditionError
	if !errors.As(err, &precond) {
		t.Fatalf("error type = %T, want *PreconditionError", err)
	}
	if d.State() != DoorLocked {
		t.Errorf("failed open changed state to %v", d.State())
	}
}

func TestDoorOpenAndPassage(t *testing.T) {
	d := testDoor()
	d.Unlock()

	if err := d.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if d.State() != DoorOpen {
		t.Fatalf("state after open = %v, want open", d.State())
	}
	if !d.CanPassThrough() {
		t.Error("open door should allow passage")
	}

	// Opening an already open door is a no-op.
	if err := d.Open(); err != nil {
		t.Errorf("re-open returned error: %v", err)
	}
	if d.State() != DoorOpen {
		t.Errorf("re-open changed state to %v", d.State())
	}
}

func TestDoorInteractOutOfRange(t *testing.T) {
	d := testDoor()
	d.Unlock()

	far := core.Vec2{X: 160, Y: 160 + DoorInteractRadius + 1}
	_, err := d.TryInteract(far)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("error = %v, want ErrOutOfRange", err)
	}
	if d.State() != DoorUnlocked {
		t.Errorf("out-of-range interact changed state to %v", d.State())
	}
}

func TestDoorInteractLocked(t *testing.T) {
	d := testDoor()
	near := core.Vec2{X: 170, Y: 160}

	_, err := d.TryInteract(near)
	if err == nil {
		t.Fatal("interacting with a locked door should fail")
	}
	var precond *PreconditionError
	if !errors.As(err, &precond) {
		t.Fatalf("error type = %T, want *PreconditionError", err)
	}
	if d.State() != DoorLocked {
		t.Errorf("locked interact changed state to %v", d.State())
	}
}

func TestDoorInteractOpensAndRequests(t *testing.T) {
	d := testDoor()
	d.Unlock()
	near := core.Vec2{X: 170, Y: 160}

	req, err := d.TryInteract(near)
	if err != nil {
		t.Fatalf("interact failed: %v", err)
	}
	if d.State() != DoorOpen {
		t.Errorf("state after interact = %v, want open", d.State())
	}
	if req.TargetMap != "stage2.json" {
		t.Errorf("request target map = %q, want %q", req.TargetMap, "stage2.json")
	}
	if req.TargetPos.X != 240 || req.TargetPos.Y != 320 {
		t.Errorf("request target pos = %v, want (240, 320)", req.TargetPos)
	}
}

func TestDoorInteractOpenRepeats(t *testing.T) {
	d := testDoor()
	d.Unlock()
	near := core.Vec2{X: 170, Y: 160}

	first, err := d.TryInteract(near)
	if err != nil {
		t.Fatalf("first interact failed: %v", err)
	}
	second, err := d.TryInteract(near)
	if err != nil {
		t.Fatalf("second interact failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated interact request = %+v, want %+v", second, first)
	}
	if d.State() != DoorOpen {
		t.Errorf("repeated interact changed state to %v", d.State())
	}
}

func TestDoorStateStrings(t *testing.T) {
	states := map[DoorState]string{
		DoorLocked:   "locked",
		DoorUnlocked: "unlocked",
		DoorOpen:     "open",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("DoorState(%d).String() = %q, want %q", state, got, want)
		}
	}
}
