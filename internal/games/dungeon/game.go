// Package dungeon implements a top-down action dungeon crawl: fight
// through connected stages, clear each one to unlock its doors, and
// reach the final gate. Pure game logic; the platform handles input
// mapping, timing, and terminal rendering.
package dungeon

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon/stages"
	"github.com/vovakirdan/tui-dungeon/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	// ModeCampaign runs the stage graph from the configured start.
	ModeCampaign Mode = "campaign"
	// ModeArena starts on one chosen stage instead of the campaign
	// opening; everything else plays the same.
	ModeArena Mode = "arena"
)

// transitionCooldown is how long after a stage load door interactions
// are ignored, so walking in next to a door cannot instantly bounce the
// player back.
const transitionCooldown = 1.0

// bannerDuration is how long HUD notices stay up, in ticks.
const bannerDuration = 120

// stageClearBonus is added to the score the first time a stage clears.
const stageClearBonus = 25

// victoryBonus is added to the score for finishing the run.
const victoryBonus = 100

// Game implements the dungeon crawl.
type Game struct {
	mode Mode

	rng  *rand.Rand
	tick uint64
	dt   float64

	cfg        config.DungeonConfig
	difficulty *config.DifficultyManager

	catalog *stages.Catalog
	coord   *Coordinator
	events  *EventQueue

	player  *Player
	enemies []*Enemy
	items   []*Item

	// Transition requested this frame, applied at the start of the
	// next one so per-frame updates never iterate a half-swapped stage.
	pending      *TransitionRequest
	interactCool float64

	banner      string
	bannerTicks int

	clearedStages map[string]bool

	score    int
	won      bool
	gameOver bool
	paused   bool

	loadFailed bool
	loadError  string

	screenW int
	screenH int
}

// Package-level variables for config/difficulty selection, set by the
// CLI or menu before Reset.
var (
	configPath       string
	difficultyPreset string
	selectedStage    string
	stagesDir        string
)

// SetConfigPath sets the config file path.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = preset
}

// SetStartStage sets the stage an arena run starts on. Empty means the
// configured campaign start.
func SetStartStage(id string) {
	selectedStage = id
}

// GetStartStage returns the currently selected arena stage.
func GetStartStage() string {
	return selectedStage
}

// SetStagesDir sets an extra stage directory, overriding the config.
func SetStagesDir(dir string) {
	stagesDir = dir
}

// StageInfo identifies a stage for menus and CLI listings.
type StageInfo struct {
	ID   string
	Name string
}

// StageList returns the stages reachable under the current selection,
// in catalog order.
func StageList() ([]StageInfo, error) {
	dcfg, err := config.LoadDungeon(configPath)
	if err != nil {
		dcfg = config.DefaultDungeonConfig()
	}
	dir := dcfg.Stages.Dir
	if stagesDir != "" {
		dir = stagesDir
	}

	all, err := stages.NewCatalog(dir).LoadAll()
	if err != nil {
		return nil, err
	}

	infos := make([]StageInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, StageInfo{ID: s.ID, Name: s.Name})
	}
	return infos, nil
}

// New creates a new campaign mode dungeon game.
func New() *Game {
	return &Game{mode: ModeCampaign}
}

// NewArena creates a new arena mode dungeon game.
func NewArena() *Game {
	return &Game{mode: ModeArena}
}

func init() {
	registry.Register("campaign", func() registry.Game {
		return New()
	})
	registry.Register("arena", func() registry.Game {
		return NewArena()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeArena {
		return "arena"
	}
	return "campaign"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeArena {
		return "Dungeon (Arena)"
	}
	return "Dungeon Crawl"
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	dcfg, err := config.LoadDungeon(configPath)
	if err != nil {
		dcfg = config.DefaultDungeonConfig()
	}
	if difficultyPreset != "" {
		config.ApplyDungeonPreset(&dcfg, config.DifficultyPreset(difficultyPreset))
	}
	g.cfg = dcfg
	g.difficulty = config.NewDifficultyManager(dcfg.Difficulty)

	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.tick = 0
	g.score = 0
	g.won = false
	g.gameOver = false
	g.paused = false
	g.loadFailed = false
	g.loadError = ""
	g.pending = nil
	g.banner = ""
	g.bannerTicks = 0
	g.clearedStages = make(map[string]bool)
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH

	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	g.dt = 1.0 / float64(tickRate)

	dir := g.cfg.Stages.Dir
	if stagesDir != "" {
		dir = stagesDir
	}
	g.catalog = stages.NewCatalog(dir)
	g.coord = NewCoordinator(g.catalog)
	g.events = NewEventQueue()

	start := g.cfg.Stages.Start
	if g.mode == ModeArena && selectedStage != "" {
		start = selectedStage
	}

	events, err := g.coord.LoadStage(start)
	if err != nil {
		g.loadFailed = true
		g.loadError = err.Error()
		g.gameOver = true
		return
	}
	g.events.PushAll(events)

	stage := g.coord.Current().Stage()
	g.player = NewPlayer(stage.Spawn)
	g.player.SetBaseSpeed(g.cfg.Player.Speed)
	if g.cfg.Player.MaxHealth > 0 {
		g.player.MaxHP = g.cfg.Player.MaxHealth
		g.player.HP = g.cfg.Player.MaxHealth
	}
	if g.cfg.Player.AttackPower > 0 {
		g.player.Attack = g.cfg.Player.AttackPower
	}

	g.spawnStageEntities()
	g.interactCool = transitionCooldown
}

// Step advances the game by one tick.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	g.tick++

	// Handle restart
	if input.Has(core.ActionRestart) && (g.gameOver || g.won) {
		g.Reset(core.RuntimeConfig{
			Seed:     g.restartSeed(),
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: int(1.0/g.dt + 0.5),
		})
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if input.Has(core.ActionPause) {
		g.paused = !g.paused
	}

	if g.gameOver || g.won || g.paused || g.loadFailed {
		return core.StepResult{State: g.State()}
	}

	// A transition requested last frame is applied before anything else
	// observes this frame, and consumes it entirely.
	if g.pending != nil {
		req := *g.pending
		g.pending = nil
		g.applyTransition(req)
		g.drainEvents()
		return core.StepResult{State: g.State()}
	}

	if g.interactCool > 0 {
		g.interactCool -= g.dt
	}
	if g.bannerTicks > 0 {
		g.bannerTicks--
		if g.bannerTicks == 0 {
			g.banner = ""
		}
	}
	g.player.Tick(g.dt)

	stage := g.coord.Current().Stage()

	g.player.Move(moveDirection(input), g.dt, &stage)

	if input.Has(core.ActionAttack) {
		g.playerAttack()
	}
	if input.Has(core.ActionInteract) {
		g.tryInteract()
	}

	g.updateEnemies(&stage)
	g.pickupItems()

	g.drainEvents()
	return core.StepResult{State: g.State()}
}

// restartSeed derives a fresh seed for a restart.
func (g *Game) restartSeed() int64 {
	if g.rng == nil {
		return 1
	}
	return g.rng.Int63()
}

// moveDirection maps held movement actions to a direction vector.
func moveDirection(input core.InputFrame) core.Vec2 {
	var dir core.Vec2
	if input.Has(core.ActionUp) {
		dir.Y--
	}
	if input.Has(core.ActionDown) {
		dir.Y++
	}
	if input.Has(core.ActionLeft) {
		dir.X--
	}
	if input.Has(core.ActionRight) {
		dir.X++
	}
	return dir
}

// playerAttack swings at every enemy in range on the player's facing
// side. Defeats are routed through the coordinator so the stage tracker
// and visit memory both see them.
func (g *Game) playerAttack() {
	if !g.player.TryAttack() {
		return
	}

	alive := g.enemies[:0]
	for _, e := range g.enemies {
		toEnemy := e.Pos.Sub(g.player.Pos)
		inRange := g.player.Pos.Dist(e.Pos) <= PlayerAttackRange
		inFront := toEnemy.X*g.player.Facing.X+toEnemy.Y*g.player.Facing.Y >= 0
		if inRange && inFront {
			e.TakeDamage(g.player.Attack)
		}
		if !e.Dead() {
			alive = append(alive, e)
			continue
		}
		g.score += e.Stats.XP
		if levels := g.player.GainXP(e.Stats.XP); levels > 0 {
			g.events.Push(LevelUpEvent{Level: g.player.Level})
		}
		g.events.PushAll(g.coord.RecordDefeat(e.ID))
	}
	g.enemies = alive
}

// tryInteract uses the nearest door in range, if any. A transition
// request is deferred to the next frame; at most one may be pending.
func (g *Game) tryInteract() {
	if g.interactCool > 0 || g.pending != nil {
		return
	}

	door := g.nearestDoor()
	if door == nil {
		return
	}

	req, events, err := g.coord.Current().OnDoorInteract(door.ID, g.player.Pos)
	g.events.PushAll(events)
	if err != nil {
		return
	}
	g.pending = &req
}

// nearestDoor returns the closest door within interaction range, or
// nil.
func (g *Game) nearestDoor() *Door {
	var nearest *Door
	best := DoorInteractRadius
	for _, d := range g.coord.Current().Doors() {
		if dist := g.player.Pos.Dist(d.Pos); dist <= best {
			best = dist
			nearest = d
		}
	}
	return nearest
}

// updateEnemies runs enemy AI and applies their damage to the player.
func (g *Game) updateEnemies(stage *stages.Stage) {
	for _, e := range g.enemies {
		if dmg := e.Update(g.dt, g.player.Pos, stage, g.rng); dmg > 0 {
			g.player.TakeDamage(dmg)
		}
	}
	if g.player.Dead() {
		g.gameOver = true
		g.events.Push(PlayerDiedEvent{})
	}
}

// pickupItems collects items the player is standing on.
func (g *Game) pickupItems() {
	remaining := g.items[:0]
	for _, it := range g.items {
		if g.player.Pos.Dist(it.Pos) > PickupRadius {
			remaining = append(remaining, it)
			continue
		}
		if levels := g.player.ApplyItem(it.Effect()); levels > 0 {
			g.events.Push(LevelUpEvent{Level: g.player.Level})
		}
		g.coord.RecordItemTaken(it.Index)
		g.events.Push(ItemPickedUpEvent{Kind: it.Kind})
	}
	g.items = remaining
}

// applyTransition performs the deferred stage swap, or ends the run at
// the victory gate. Arena runs cover a single stage, so leaving through
// any door ends them as a win. On a failed load the current stage stays
// live and the player just sees a notice.
func (g *Game) applyTransition(req TransitionRequest) {
	if req.TargetMap == stages.TargetVictory || g.mode == ModeArena {
		g.won = true
		g.score += victoryBonus
		g.events.Push(VictoryEvent{})
		return
	}

	events, err := g.coord.RequestTransition(req)
	if err != nil {
		g.setBanner("The way is blocked")
		return
	}
	g.events.PushAll(events)

	// Player placement happens only after the new controller is live.
	g.player.Pos = req.TargetPos
	g.spawnStageEntities()
	g.interactCool = transitionCooldown
}

// spawnStageEntities populates enemies and items from the active stage,
// skipping everything earlier visits already removed.
func (g *Game) spawnStageEntities() {
	stage := g.coord.Current().Stage()

	hp := g.cfg.Enemies.HealthMult * g.difficulty.EnemyHealthMult(g.score, int(g.tick))
	dmg := g.cfg.Enemies.DamageMult * g.difficulty.EnemyDamageMult(g.score, int(g.tick))
	spd := g.cfg.Enemies.SpeedMult * g.difficulty.EnemySpeedMult(g.score, int(g.tick))

	g.enemies = nil
	for i, spawn := range stage.Enemies() {
		id := fmt.Sprintf("%s#%d", stage.ID, i)
		if g.coord.IsDefeated(stage.ID, id) {
			continue
		}
		stats := scaleStats(statsFor(spawn.Kind), hp, dmg, spd)
		g.enemies = append(g.enemies, NewEnemy(id, spawn.Kind, spawn.Position, stats))
	}

	g.items = nil
	for i, spawn := range stage.Items() {
		if g.coord.IsItemTaken(stage.ID, i) {
			continue
		}
		g.items = append(g.items, &Item{Index: i, Kind: spawn.Kind, Pos: spawn.Position})
	}
}

// scaleStats applies config and difficulty multipliers to base stats.
func scaleStats(base EnemyStats, hp, dmg, spd float64) EnemyStats {
	scaled := EnemyStats{
		MaxHP:  core.Max(1, int(float64(base.MaxHP)*hp+0.5)),
		Speed:  base.Speed * spd,
		Damage: core.Max(1, int(float64(base.Damage)*dmg+0.5)),
		XP:     base.XP,
	}
	return scaled
}

// drainEvents empties the frame's event queue into HUD state.
func (g *Game) drainEvents() {
	for _, ev := range g.events.Drain() {
		switch ev := ev.(type) {
		case ClearEvent:
			if !g.clearedStages[ev.StageID] {
				g.clearedStages[ev.StageID] = true
				g.score += stageClearBonus
			}
			g.setBanner("Stage cleared! Doors unlocked")
		case DoorLockedEvent:
			g.setBanner("The door is locked")
		case TransitionEvent:
			g.setBanner("Entering " + g.stageName(ev.To))
		case ItemPickedUpEvent:
			g.setBanner(itemBanner(ev.Kind))
		case LevelUpEvent:
			g.setBanner(fmt.Sprintf("Level %d!", ev.Level))
		case VictoryEvent:
			g.setBanner("You escaped the dungeon!")
		case PlayerDiedEvent:
			g.setBanner("You died")
		}
	}
}

// itemBanner names an item pickup for the HUD.
func itemBanner(kind string) string {
	switch kind {
	case "health_potion":
		return "Health restored"
	case "experience_gem":
		return "Experience gained"
	case "iron_sword":
		return "Attack up"
	case "speed_boots":
		return "Speed up"
	default:
		return "Picked up " + kind
	}
}

// stageName resolves a stage id to its display name, falling back to
// the id.
func (g *Game) stageName(id string) string {
	if g.coord.CurrentStageID() == id {
		return g.coord.Current().Stage().Name
	}
	if s, err := g.catalog.LoadByID(id); err == nil {
		return s.Name
	}
	return id
}

// setBanner shows a HUD notice for a couple of seconds.
func (g *Game) setBanner(msg string) {
	g.banner = msg
	g.bannerTicks = bannerDuration
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.gameOver || g.won,
		Paused:   g.paused,
	}
}

// Progress is a point-in-time summary of a run. The platform uses it to
// persist run results and to relay standings between racing sessions.
type Progress struct {
	Stage         string
	StageName     string
	StagesCleared int
	Score         int
	HP            int
	Escaped       bool
	Dead          bool
}

// Progress reports where the run currently stands.
func (g *Game) Progress() Progress {
	p := Progress{
		Score:         g.score,
		StagesCleared: len(g.clearedStages),
		Escaped:       g.won,
		Dead:          g.gameOver && !g.won,
	}
	if g.player != nil {
		p.HP = g.player.HP
	}
	if g.coord != nil && g.coord.Current() != nil {
		p.Stage = g.coord.CurrentStageID()
		p.StageName = g.coord.Current().Stage().Name
	}
	return p
}

// --- Debug helper ---

// DebugState returns a string representation of the game state.
func (g *Game) DebugState() string {
	if g.coord == nil || g.coord.Current() == nil {
		return "no stage loaded"
	}
	c := g.coord.Current()
	return fmt.Sprintf("Tick: %d, Stage: %s (%s), Remaining: %d/%d, HP: %d/%d, Score: %d, Visited: %d",
		g.tick, c.Stage().ID, c.Status(), c.Tracker().Remaining(), c.Tracker().Total(),
		g.player.HP, g.player.MaxHP, g.score, len(g.coord.VisitedStages()))
}
