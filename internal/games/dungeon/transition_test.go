package dungeon

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
)

func testCoordinator() *Coordinator {
	return NewCoordinator(stages.NewCatalog(""))
}

func TestCoordinatorLoadStage(t *testing.T) {
	co := testCoordinator()
	if co.Current() != nil {
		t.Fatal("coordinator has a controller before the first load")
	}
	if ev := co.RecordDefeat("entry-hall#0"); ev != nil {
		t.Errorf("defeat before first load emitted %v", ev)
	}

	events, err := co.LoadStage("entry-hall")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("load emitted %d events, want 0", len(events))
	}
	if co.CurrentStageID() != "entry-hall" {
		t.Errorf("current stage = %q, want entry-hall", co.CurrentStageID())
	}
	if co.Current() == nil {
		t.Fatal("no controller after load")
	}
	if got := co.Current().Tracker().Total(); got != 2 {
		t.Errorf("entry hall enemy total = %d, want 2", got)
	}
}

func TestCoordinatorFailedLoadKeepsStage(t *testing.T) {
	co := testCoordinator()
	if _, err := co.LoadStage("entry-hall"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	before := co.Current()
	co.RecordDefeat("entry-hall#0")
	door, _ := before.Door("exit")
	stateBefore := door.State()

	events, err := co.RequestTransition(TransitionRequest{
		TargetMap: "oubliette",
		TargetPos: core.Vec2{X: 64, Y: 64},
	})
	if err == nil {
		t.Fatal("transition to a missing stage should fail")
	}
	var loadErr *MapLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error type = %T, want *MapLoadError", err)
	}
	if loadErr.TargetMap != "oubliette" {
		t.Errorf("failed target = %q, want oubliette", loadErr.TargetMap)
	}
	if len(events) != 0 {
		t.Errorf("failed transition emitted %d events, want 0", len(events))
	}

	// The active stage is untouched: same controller, same progress.
	if co.Current() != before {
		t.Error("failed transition replaced the controller")
	}
	if co.CurrentStageID() != "entry-hall" {
		t.Errorf("current stage = %q, want entry-hall", co.CurrentStageID())
	}
	if got := co.Current().Tracker().Remaining(); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}
	if door.State() != stateBefore {
		t.Errorf("door state changed from %v to %v", stateBefore, door.State())
	}
}

func TestCoordinatorTransitionEvents(t *testing.T) {
	co := testCoordinator()
	if _, err := co.LoadStage("entry-hall"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	events, err := co.RequestTransition(TransitionRequest{
		TargetMap: "guard-room",
		TargetPos: core.Vec2{X: 64, Y: 240},
	})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("transition emitted no events")
	}
	tr, ok := events[0].(TransitionEvent)
	if !ok {
		t.Fatalf("first event type = %T, want TransitionEvent", events[0])
	}
	if tr.From != "entry-hall" || tr.To != "guard-room" {
		t.Errorf("transition = %s -> %s, want entry-hall -> guard-room", tr.From, tr.To)
	}
	if co.CurrentStageID() != "guard-room" {
		t.Errorf("current stage = %q, want guard-room", co.CurrentStageID())
	}
}

func TestCoordinatorDefeatsSurviveRevisit(t *testing.T) {
	co := testCoordinator()
	if _, err := co.LoadStage("entry-hall"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	co.RecordDefeat("entry-hall#0")
	ev := co.RecordDefeat("entry-hall#1")
	if len(ev) != 1 {
		t.Fatalf("final defeat emitted %d events, want 1", len(ev))
	}

	if _, err := co.RequestTransition(TransitionRequest{TargetMap: "guard-room"}); err != nil {
		t.Fatalf("transition out failed: %v", err)
	}

	// Coming back: defeats are remembered, the stage re-clears at load.
	events, err := co.RequestTransition(TransitionRequest{TargetMap: "entry-hall"})
	if err != nil {
		t.Fatalf("transition back failed: %v", err)
	}
	var cleared bool
	for _, e := range events {
		if _, ok := e.(ClearEvent); ok {
			cleared = true
		}
	}
	if !cleared {
		t.Error("revisit of an emptied stage did not emit a clear event")
	}
	if co.Current().Status() != StatusCleared {
		t.Errorf("status = %v, want cleared", co.Current().Status())
	}
	door, _ := co.Current().Door("exit")
	if door.State() != DoorUnlocked {
		t.Errorf("door state = %v, want unlocked", door.State())
	}

	if !co.IsDefeated("entry-hall", "entry-hall#0") {
		t.Error("entry-hall#0 not remembered as defeated")
	}
	if co.IsDefeated("entry-hall", "entry-hall#9") {
		t.Error("unknown entity remembered as defeated")
	}
	if co.IsDefeated("guard-room", "entry-hall#0") {
		t.Error("defeat leaked into another stage's memory")
	}
}

func TestCoordinatorItemMemory(t *testing.T) {
	co := testCoordinator()
	if _, err := co.LoadStage("entry-hall"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	co.RecordItemTaken(0)
	if !co.IsItemTaken("entry-hall", 0) {
		t.Error("item 0 not remembered as taken")
	}
	if co.IsItemTaken("entry-hall", 1) {
		t.Error("item 1 wrongly remembered as taken")
	}
	if co.IsItemTaken("guard-room", 0) {
		t.Error("item memory leaked into another stage")
	}
}

func TestCoordinatorVisitedStages(t *testing.T) {
	co := testCoordinator()
	if _, err := co.LoadStage("guard-room"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	co.RecordDefeat("guard-room#0")
	if _, err := co.RequestTransition(TransitionRequest{TargetMap: "entry-hall"}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	co.RecordItemTaken(0)

	got := co.VisitedStages()
	want := []string{"entry-hall", "guard-room"}
	if len(got) != len(want) {
		t.Fatalf("visited stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
