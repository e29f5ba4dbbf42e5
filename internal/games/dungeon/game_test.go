package dungeon

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// resetSelections clears the package-level menu/CLI selections so tests
// do not leak config into each other.
func resetSelections(t *testing.T) {
	t.Helper()
	clear := func() {
		configPath = ""
		difficultyPreset = ""
		selectedStage = ""
		stagesDir = ""
	}
	clear()
	t.Cleanup(clear)
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	resetSelections(t)
	g := New()
	g.Reset(core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24, TickRate: 60})
	if g.loadFailed {
		t.Fatalf("campaign failed to load: %s", g.loadError)
	}
	return g
}

func inputWith(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestGameIDs(t *testing.T) {
	if got := New().ID(); got != "campaign" {
		t.Errorf("campaign ID = %q", got)
	}
	if got := NewArena().ID(); got != "arena" {
		t.Errorf("arena ID = %q", got)
	}
	if New().Title() == "" || NewArena().Title() == "" {
		t.Error("empty title")
	}
}

func TestResetLoadsCampaignStart(t *testing.T) {
	g := newTestGame(t, 1)

	if got := g.coord.CurrentStageID(); got != "entry-hall" {
		t.Errorf("start stage = %q, want entry-hall", got)
	}
	spawn := g.coord.Current().Stage().Spawn
	if g.player.Pos != spawn {
		t.Errorf("player pos = %v, want spawn %v", g.player.Pos, spawn)
	}
	if len(g.enemies) != 2 {
		t.Errorf("enemies = %d, want 2", len(g.enemies))
	}
	if len(g.items) != 1 {
		t.Errorf("items = %d, want 1", len(g.items))
	}
	st := g.State()
	if st.Score != 0 || st.GameOver || st.Paused {
		t.Errorf("fresh state = %+v", st)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() *Game {
		g := newTestGame(t, 42)
		for i := 0; i < 40; i++ {
			g.Step(inputWith(core.ActionRight, core.ActionAttack))
		}
		for i := 0; i < 30; i++ {
			g.Step(inputWith(core.ActionDown))
		}
		for i := 0; i < 120; i++ {
			g.Step(core.NewInputFrame())
		}
		return g
	}

	g1 := run()
	g2 := run()

	if g1.player.Pos != g2.player.Pos {
		t.Errorf("player positions diverged: %v vs %v", g1.player.Pos, g2.player.Pos)
	}
	if len(g1.enemies) != len(g2.enemies) {
		t.Fatalf("enemy counts diverged: %d vs %d", len(g1.enemies), len(g2.enemies))
	}
	for i := range g1.enemies {
		if g1.enemies[i].Pos != g2.enemies[i].Pos {
			t.Errorf("enemy %d positions diverged: %v vs %v", i, g1.enemies[i].Pos, g2.enemies[i].Pos)
		}
	}
	if g1.DebugState() != g2.DebugState() {
		t.Errorf("states diverged:\n%s\n%s", g1.DebugState(), g2.DebugState())
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	g := newTestGame(t, 9)
	start := g.player.Pos

	g.Step(inputWith(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("pause input did not pause")
	}

	g.Step(inputWith(core.ActionRight))
	if g.player.Pos != start {
		t.Errorf("player moved while paused: %v", g.player.Pos)
	}

	g.Step(inputWith(core.ActionPause))
	if g.State().Paused {
		t.Fatal("second pause input did not resume")
	}
	g.Step(inputWith(core.ActionRight))
	if g.player.Pos.X <= start.X {
		t.Errorf("player did not move after resume: %v", g.player.Pos)
	}
}

func TestMovementBlockedByWalls(t *testing.T) {
	g := newTestGame(t, 11)
	g.player.Pos = core.Vec2{X: 60, Y: 240}

	for i := 0; i < 300; i++ {
		g.Step(inputWith(core.ActionLeft))
	}

	if g.player.Pos.X >= 60 {
		t.Error("player never moved left")
	}
	// The western wall occupies x < 32; the player body must stay out.
	if g.player.Pos.X < 32+entityHalf {
		t.Errorf("player clipped into the wall: x = %v", g.player.Pos.X)
	}
	if g.player.Pos.Y != 240 {
		t.Errorf("straight horizontal walk drifted to y = %v", g.player.Pos.Y)
	}
}

func TestAttacksClearTheStage(t *testing.T) {
	g := newTestGame(t, 2)

	// Stand west of the first guard, facing it.
	g.player.Pos = core.Vec2{X: 370, Y: 176}
	for i := 0; i < 40; i++ {
		g.Step(inputWith(core.ActionAttack))
	}

	if len(g.enemies) != 1 {
		t.Fatalf("enemies after first kill = %d, want 1", len(g.enemies))
	}
	if g.score != 10 {
		t.Errorf("score = %d, want 10", g.score)
	}
	if g.player.XP != 10 {
		t.Errorf("xp = %d, want 10", g.player.XP)
	}
	if got := g.coord.Current().Tracker().Remaining(); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}
	if !g.coord.IsDefeated("entry-hall", "entry-hall#0") {
		t.Error("first kill not recorded in visit memory")
	}
	door, _ := g.coord.Current().Door("exit")
	if door.State() != DoorLocked {
		t.Errorf("door state = %v, want locked while guarded", door.State())
	}

	// Second guard empties the stage and unlocks the exit.
	g.player.Pos = core.Vec2{X: 370, Y: 304}
	for i := 0; i < 70; i++ {
		g.Step(inputWith(core.ActionAttack))
	}

	if len(g.enemies) != 0 {
		t.Fatalf("enemies after second kill = %d, want 0", len(g.enemies))
	}
	if want := 20 + stageClearBonus; g.score != want {
		t.Errorf("score = %d, want %d", g.score, want)
	}
	if g.coord.Current().Status() != StatusCleared {
		t.Errorf("status = %v, want cleared", g.coord.Current().Status())
	}
	if door.State() != DoorUnlocked {
		t.Errorf("door state = %v, want unlocked", door.State())
	}
	if g.banner != "Stage cleared! Doors unlocked" {
		t.Errorf("banner = %q", g.banner)
	}
	if g.player.Dead() || g.State().GameOver {
		t.Error("player should survive two basic guards")
	}
}

func TestDoorInteractDefersTransition(t *testing.T) {
	g := newTestGame(t, 7)
	g.coord.RecordDefeat("entry-hall#0")
	g.coord.RecordDefeat("entry-hall#1")
	g.enemies = nil
	g.player.Pos = core.Vec2{X: 560, Y: 240}
	g.interactCool = 0

	// The interact frame only queues the swap.
	g.Step(inputWith(core.ActionInteract))
	if g.coord.CurrentStageID() != "entry-hall" {
		t.Fatalf("stage swapped on the interact frame: %q", g.coord.CurrentStageID())
	}
	if g.pending == nil {
		t.Fatal("no transition queued")
	}
	if g.pending.TargetMap != "guard-room" {
		t.Errorf("queued target = %q, want guard-room", g.pending.TargetMap)
	}
	door, _ := g.coord.Current().Door("exit")
	if door.State() != DoorOpen {
		t.Errorf("door state = %v, want open", door.State())
	}

	// The next frame applies it: new stage, player placed, cooldown on.
	g.Step(core.NewInputFrame())
	if g.coord.CurrentStageID() != "guard-room" {
		t.Fatalf("stage = %q, want guard-room", g.coord.CurrentStageID())
	}
	want := core.Vec2{X: 64, Y: 240}
	if g.player.Pos != want {
		t.Errorf("player pos = %v, want %v", g.player.Pos, want)
	}
	if g.pending != nil {
		t.Error("transition request not consumed")
	}
	if g.interactCool != transitionCooldown {
		t.Errorf("interact cooldown = %v, want %v", g.interactCool, transitionCooldown)
	}
	if len(g.enemies) != 3 {
		t.Errorf("guard room enemies = %d, want 3", len(g.enemies))
	}
	if g.banner != "Entering Guard Room" {
		t.Errorf("banner = %q", g.banner)
	}
}

func TestTransitionCooldownBlocksBounce(t *testing.T) {
	g := newTestGame(t, 7)
	g.coord.RecordDefeat("entry-hall#0")
	g.coord.RecordDefeat("entry-hall#1")
	g.enemies = nil
	g.player.Pos = core.Vec2{X: 560, Y: 240}
	g.interactCool = 0
	g.Step(inputWith(core.ActionInteract))
	g.Step(core.NewInputFrame())

	// Arrival point sits next to the return door, but the post-load
	// cooldown swallows the interaction.
	g.Step(inputWith(core.ActionInteract))
	if g.pending != nil {
		t.Fatal("interact during cooldown queued a transition")
	}
	if g.coord.CurrentStageID() != "guard-room" {
		t.Errorf("stage = %q, want guard-room", g.coord.CurrentStageID())
	}

	// Once the cooldown is over the door answers again, and the guard
	// room is still hostile, so it answers locked.
	g.interactCool = 0
	g.Step(inputWith(core.ActionInteract))
	if g.pending != nil {
		t.Fatal("locked door queued a transition")
	}
	if g.banner != "The door is locked" {
		t.Errorf("banner = %q", g.banner)
	}
}

func TestVictoryGateEndsRun(t *testing.T) {
	g := newTestGame(t, 3)
	if _, err := g.coord.LoadStage("throne-room"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	g.spawnStageEntities()
	for i := 0; i < 3; i++ {
		g.coord.RecordDefeat(fmt.Sprintf("throne-room#%d", i))
	}
	g.enemies = nil
	g.player.Pos = core.Vec2{X: 336, Y: 144}
	g.interactCool = 0

	g.Step(inputWith(core.ActionInteract))
	if g.pending == nil || g.pending.TargetMap != "victory" {
		t.Fatalf("queued transition = %+v, want victory", g.pending)
	}

	g.Step(core.NewInputFrame())
	if !g.won {
		t.Fatal("run not won after passing the gate")
	}
	if !g.State().GameOver {
		t.Error("state should report the run as over")
	}
	if g.score != victoryBonus {
		t.Errorf("score = %d, want %d", g.score, victoryBonus)
	}
	if g.banner != "You escaped the dungeon!" {
		t.Errorf("banner = %q", g.banner)
	}

	// Frozen after the win.
	pos := g.player.Pos
	g.Step(inputWith(core.ActionRight))
	if g.player.Pos != pos {
		t.Error("simulation kept running after victory")
	}
}

func TestArenaAnyExitWins(t *testing.T) {
	resetSelections(t)
	SetStartStage("guard-room")
	g := NewArena()
	g.Reset(core.RuntimeConfig{Seed: 9, ScreenW: 80, ScreenH: 24, TickRate: 60})
	if g.loadFailed {
		t.Fatalf("arena failed to load: %s", g.loadError)
	}
	if got := g.coord.CurrentStageID(); got != "guard-room" {
		t.Fatalf("start stage = %q, want guard-room", got)
	}

	for i := 0; i < 3; i++ {
		g.coord.RecordDefeat(fmt.Sprintf("guard-room#%d", i))
	}
	g.enemies = nil
	g.player.Pos = core.Vec2{X: 64, Y: 240}
	g.interactCool = 0

	// Even the door leading backwards ends an arena run as a win.
	g.Step(inputWith(core.ActionInteract))
	if g.pending == nil || g.pending.TargetMap != "entry-hall" {
		t.Fatalf("queued transition = %+v, want entry-hall", g.pending)
	}
	g.Step(core.NewInputFrame())

	if !g.won {
		t.Fatal("arena run not won after leaving the stage")
	}
	if g.coord.CurrentStageID() != "guard-room" {
		t.Errorf("stage = %q, the arena stage should stay live", g.coord.CurrentStageID())
	}
	if g.score != victoryBonus {
		t.Errorf("score = %d, want %d", g.score, victoryBonus)
	}
}

func TestRestartStartsFresh(t *testing.T) {
	g := newTestGame(t, 5)
	g.score = 77
	g.gameOver = true

	g.Step(inputWith(core.ActionRestart))

	if g.State().GameOver {
		t.Fatal("restart did not clear game over")
	}
	if g.score != 0 {
		t.Errorf("score = %d, want 0", g.score)
	}
	if g.coord.CurrentStageID() != "entry-hall" {
		t.Errorf("stage = %q, want entry-hall", g.coord.CurrentStageID())
	}
	if len(g.enemies) != 2 {
		t.Errorf("enemies = %d, want 2", len(g.enemies))
	}
}

func TestItemPickupHeals(t *testing.T) {
	g := newTestGame(t, 4)
	g.player.TakeDamage(60)
	g.player.Pos = core.Vec2{X: 176, Y: 240}

	g.Step(core.NewInputFrame())

	if g.player.HP != 90 {
		t.Errorf("hp after potion = %d, want 90", g.player.HP)
	}
	if len(g.items) != 0 {
		t.Errorf("items = %d, want 0", len(g.items))
	}
	if !g.coord.IsItemTaken("entry-hall", 0) {
		t.Error("pickup not recorded in visit memory")
	}
	if g.banner != "Health restored" {
		t.Errorf("banner = %q", g.banner)
	}
}

func TestArenaStartsOnSelectedStage(t *testing.T) {
	resetSelections(t)
	SetStartStage("crypt")
	if GetStartStage() != "crypt" {
		t.Fatalf("selected stage = %q", GetStartStage())
	}

	g := NewArena()
	g.Reset(core.RuntimeConfig{Seed: 1, ScreenW: 80, ScreenH: 24, TickRate: 60})
	if g.loadFailed {
		t.Fatalf("arena failed to load: %s", g.loadError)
	}
	if g.coord.CurrentStageID() != "crypt" {
		t.Errorf("stage = %q, want crypt", g.coord.CurrentStageID())
	}
	if len(g.enemies) != 4 {
		t.Errorf("crypt enemies = %d, want 4", len(g.enemies))
	}
}

func TestStartStageLoadFailure(t *testing.T) {
	resetSelections(t)
	SetStartStage("oubliette")

	g := NewArena()
	g.Reset(core.RuntimeConfig{Seed: 1, ScreenW: 80, ScreenH: 24, TickRate: 60})

	if !g.loadFailed {
		t.Fatal("missing stage did not fail the load")
	}
	if !g.State().GameOver {
		t.Error("failed load should end the run")
	}

	// Stepping and rendering a dead game must be safe.
	g.Step(core.NewInputFrame())
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Failed to load stage") {
		t.Error("load failure not shown on screen")
	}
}

func TestRenderFrame(t *testing.T) {
	g := newTestGame(t, 6)
	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	for _, want := range []string{"@", "#", "HP", "+"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered frame missing %q", want)
		}
	}
}
