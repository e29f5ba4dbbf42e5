package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon"
	"github.com/vovakirdan/tui-dungeon/internal/race"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

// RaceState represents the current state of the race flow.
type RaceState int

const (
	RaceStateChooseMode    RaceState = iota // Choose Host or Join
	RaceStateHostWaiting                    // Hosting, waiting for joiner
	RaceStateJoinEnterCode                  // Entering join code
	RaceStateJoinWaiting                    // Waiting to connect to host
	RaceStateRacing                         // Running the shared-seed dungeon
	RaceStateEnded                          // Race has ended
)

// progressReportTicks is how many ticks pass between progress reports
// to the coordinator while a race runs. Finishing reports immediately.
const progressReportTicks = 30

// raceStripRows is how many screen rows the rival status strip takes.
const raceStripRows = 2

// RaceFlowModel handles the whole head-to-head flow: matchmaking,
// running the local dungeon from the shared seed, and the verdict.
type RaceFlowModel struct {
	state       RaceState
	width       int
	height      int
	keyMapper   *KeyMapper
	store       *storage.Store
	sessionID   race.SessionID
	coordinator *race.Coordinator

	// Host state
	lobbyCode string

	// Join state
	joinCodeInput string
	joinError     string

	// Race state
	matchID      race.MatchID
	side         race.RacerID
	opponentID   race.SessionID
	config       core.RuntimeConfig
	game         *dungeon.Game
	screen       *core.Screen
	inputFrame   core.InputFrame
	opponent     race.ProgressReport
	haveOpponent bool
	tickCount    uint64
	finalSent    bool
	runSaved     bool

	// Result state
	ended      *race.RaceEndedEvent
	backToMenu bool
	quitting   bool

	// For receiving events from the coordinator
	eventChan <-chan race.SessionEvent
}

// NewRaceFlowModel creates a new race flow model.
func NewRaceFlowModel(
	store *storage.Store,
	sessionID race.SessionID,
	coordinator *race.Coordinator,
	eventChan <-chan race.SessionEvent,
	cfg core.RuntimeConfig,
) RaceFlowModel {
	return RaceFlowModel{
		state:       RaceStateChooseMode,
		width:       cfg.ScreenW,
		height:      cfg.ScreenH,
		keyMapper:   NewKeyMapper(),
		store:       store,
		sessionID:   sessionID,
		coordinator: coordinator,
		config:      cfg,
		inputFrame:  core.NewInputFrame(),
		eventChan:   eventChan,
	}
}

// Init initializes the race flow model.
func (m RaceFlowModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for coordinator events.
func (m RaceFlowModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if m.eventChan == nil {
			return nil
		}
		evt, ok := <-m.eventChan
		if !ok {
			return nil
		}
		return evt
	}
}

// Update handles messages.
func (m RaceFlowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		// Mid-race resizes only adjust the viewport; the run goes on
		if m.screen != nil {
			m.screen.Resize(msg.Width, raceViewportH(msg.Height))
		}
		return m, nil
	case TickMsg:
		return m.handleTick()
	case race.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.state = RaceStateHostWaiting
		return m, m.waitForEvent()
	case race.LobbyJoinedEvent:
		m.side = msg.Side
		m.opponentID = msg.OpponentID
		return m, m.waitForEvent()
	case race.LobbyErrorEvent:
		m.joinError = msg.Message
		if m.state == RaceStateJoinWaiting {
			m.state = RaceStateJoinEnterCode
		}
		return m, m.waitForEvent()
	case race.LobbyPlayerLeftEvent:
		// Joiner backed out; keep hosting
		return m, m.waitForEvent()
	case race.RaceStartedEvent:
		return m.startRace(msg)
	case race.OpponentProgressEvent:
		if msg.MatchID == m.matchID {
			m.opponent = msg.Report
			m.haveOpponent = true
		}
		return m, m.waitForEvent()
	case race.RaceEndedEvent:
		return m.finishRace(msg)
	}
	return m, nil
}

// startRace sets up the local dungeon run from the shared seed.
func (m RaceFlowModel) startRace(msg race.RaceStartedEvent) (tea.Model, tea.Cmd) {
	m.matchID = msg.MatchID
	m.side = msg.Side
	m.state = RaceStateRacing
	m.config.Seed = msg.Seed
	m.game = dungeon.New()
	m.screen = core.NewScreen(m.config.ScreenW, raceViewportH(m.config.ScreenH))
	m.game.Reset(m.config)
	m.inputFrame = core.NewInputFrame()
	m.opponent = race.ProgressReport{}
	m.haveOpponent = false
	m.tickCount = 0
	m.finalSent = false
	m.runSaved = false

	return m, tea.Batch(tickCmd(m.config.TickRate), m.waitForEvent())
}

// finishRace records the verdict and stops the local run.
func (m RaceFlowModel) finishRace(msg race.RaceEndedEvent) (tea.Model, tea.Cmd) {
	if m.matchID != "" && msg.MatchID != m.matchID {
		return m, m.waitForEvent()
	}
	ended := msg
	m.ended = &ended
	m.state = RaceStateEnded

	// A run cut short by the verdict still goes on the board
	m.saveRun()

	return m, nil
}

// raceViewportH returns the game viewport height, reserving rows for
// the rival strip.
func raceViewportH(screenH int) int {
	h := screenH - raceStripRows
	if h < 10 {
		h = 10
	}
	return h
}

// handleTick advances the local run and reports progress.
func (m RaceFlowModel) handleTick() (tea.Model, tea.Cmd) {
	if m.state != RaceStateRacing || m.game == nil {
		// Ticks from a finished race; let the loop die
		return m, nil
	}

	m.game.Step(m.inputFrame)
	m.inputFrame.Clear()
	m.tickCount++

	p := m.game.Progress()
	report := reportFromProgress(p)

	switch {
	case report.Finished() && !m.finalSent:
		m.finalSent = true
		m.coordinator.Send(race.ProgressMsg{
			MatchID: m.matchID,
			Racer:   m.side,
			Report:  report,
		})
		m.saveRun()
	case !report.Finished() && m.tickCount%progressReportTicks == 0:
		m.coordinator.Send(race.ProgressMsg{
			MatchID: m.matchID,
			Racer:   m.side,
			Report:  report,
		})
	}

	return m, tickCmd(m.config.TickRate)
}

// reportFromProgress converts a local run summary to the wire form.
func reportFromProgress(p dungeon.Progress) race.ProgressReport {
	return race.ProgressReport{
		Stage:         p.Stage,
		StageName:     p.StageName,
		StagesCleared: p.StagesCleared,
		Score:         p.Score,
		HP:            p.HP,
		Escaped:       p.Escaped,
		Dead:          p.Dead,
	}
}

// saveRun persists the racer's own run under the race mode. Runs cut
// short by the verdict are recorded as abandoned.
func (m *RaceFlowModel) saveRun() {
	if m.runSaved || m.store == nil || m.game == nil {
		return
	}
	m.runSaved = true
	//nolint:errcheck // Best-effort save
	m.store.SaveRun(runEntryFrom("race", m.game.Progress()))
}

func (m RaceFlowModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global quit
	if key == "ctrl+c" {
		return m.quitFlow()
	}

	switch m.state {
	case RaceStateChooseMode:
		return m.handleChooseModeKey(msg)
	case RaceStateHostWaiting:
		return m.handleHostWaitingKey(msg)
	case RaceStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case RaceStateJoinWaiting:
		return m.handleJoinWaitingKey(msg)
	case RaceStateRacing:
		return m.handleRacingKey(msg)
	case RaceStateEnded:
		return m.handleEndedKey(msg)
	}

	return m, nil
}

// quitFlow leaves any lobby or race before quitting entirely.
func (m RaceFlowModel) quitFlow() (tea.Model, tea.Cmd) {
	m.sendLeave()
	m.quitting = true
	return m, tea.Quit
}

// sendLeave tells the coordinator this session is walking away from
// whatever it is in.
func (m RaceFlowModel) sendLeave() {
	switch m.state {
	case RaceStateHostWaiting:
		m.coordinator.Send(race.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case RaceStateJoinWaiting:
		m.coordinator.Send(race.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	case RaceStateRacing:
		m.coordinator.Send(race.LeaveRaceMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

func (m RaceFlowModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		// Host
		m.coordinator.Send(race.CreateLobbyMsg{SessionID: m.sessionID})
		return m, m.waitForEvent()
	case "j", "J", "2":
		// Join
		m.state = RaceStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
		return m, nil
	case "esc", "b":
		m.backToMenu = true
		return m, nil
	case "q":
		return m.quitFlow()
	}

	return m, nil
}

func (m RaceFlowModel) handleHostWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		// Cancel lobby
		m.coordinator.Send(race.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
		m.backToMenu = true
		return m, nil
	case "q":
		return m.quitFlow()
	}

	return m, nil
}

func (m RaceFlowModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = RaceStateChooseMode
		return m, nil
	case "enter":
		if m.joinCodeInput != "" {
			m.state = RaceStateJoinWaiting
			m.joinError = ""
			m.coordinator.Send(race.JoinLobbyMsg{
				SessionID: m.sessionID,
				Code:      m.joinCodeInput,
			})
			return m, m.waitForEvent()
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		// Accept alphanumeric input for code
		if len(key) == 1 && len(m.joinCodeInput) < 6 {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}

	return m, nil
}

func (m RaceFlowModel) handleJoinWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		// Leave lobby attempt
		m.coordinator.Send(race.LeaveLobbyMsg{
			SessionID: m.sessionID,
			Code:      m.joinCodeInput,
		})
		m.state = RaceStateJoinEnterCode
		return m, nil
	}

	return m, nil
}

func (m RaceFlowModel) handleRacingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quitFlow()
	case "esc":
		// Walking out forfeits
		m.coordinator.Send(race.LeaveRaceMsg{SessionID: m.sessionID, MatchID: m.matchID})
		m.backToMenu = true
		return m, nil
	case "r":
		// No restarts mid-race; both runs share one seed
		return m, nil
	}

	m.keyMapper.MapKeyToFrame(msg, &m.inputFrame)
	return m, nil
}

func (m RaceFlowModel) handleEndedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "b", " ":
		m.backToMenu = true
		return m, nil
	case "q":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current state.
func (m RaceFlowModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case RaceStateChooseMode:
		return m.viewChooseMode()
	case RaceStateHostWaiting:
		return m.viewHostWaiting()
	case RaceStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case RaceStateJoinWaiting:
		return m.viewJoinWaiting()
	case RaceStateRacing:
		return m.viewRacing()
	case RaceStateEnded:
		return m.viewEnded()
	}

	return ""
}

func (m RaceFlowModel) viewChooseMode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("DUNGEON RACE", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Same dungeon, same seed. First out wins.", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("[H] Host a race", m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[J] Join a race", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Back  |  Q: Quit", m.width))

	return b.String()
}

func (m RaceFlowModel) viewHostWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("HOSTING RACE", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Share this code with your rival:", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", m.lobbyCode), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Waiting for a rival to join...", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Cancel  |  Q: Quit", m.width))

	return b.String()
}

func (m RaceFlowModel) viewJoinEnterCode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("JOIN RACE", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter the race code:", m.width))
	b.WriteString("\n\n")

	// Display code input with cursor
	codeDisplay := m.joinCodeInput
	if len(codeDisplay) < 6 {
		codeDisplay += "_"
		codeDisplay += strings.Repeat(" ", 5-len(m.joinCodeInput))
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
	b.WriteString("\n")

	if m.joinError != "" {
		b.WriteString("\n")
		b.WriteString(centerText(fmt.Sprintf("Error: %s", m.joinError), m.width))
	}

	b.WriteString("\n\n")
	b.WriteString(centerText("Enter: Connect  |  Esc: Back", m.width))

	return b.String()
}

func (m RaceFlowModel) viewJoinWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("CONNECTING", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Joining race: %s", m.joinCodeInput), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Please wait...", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Esc: Cancel", m.width))

	return b.String()
}

func (m RaceFlowModel) viewRacing() string {
	if m.game == nil || m.screen == nil {
		return ""
	}

	m.game.Render(m.screen)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.rivalStrip())

	return b.String()
}

// rivalStrip is the one-line opponent standing shown under the game.
func (m RaceFlowModel) rivalStrip() string {
	var rival string
	switch {
	case !m.haveOpponent:
		rival = "Rival: on their way..."
	case m.opponent.Escaped:
		rival = fmt.Sprintf("Rival: escaped with %d!", m.opponent.Score)
	case m.opponent.Dead:
		rival = fmt.Sprintf("Rival: fell at %s (score %d)", m.opponent.StageName, m.opponent.Score)
	default:
		rival = fmt.Sprintf("Rival: %s | stages %d | score %d | HP %d",
			m.opponent.StageName, m.opponent.StagesCleared, m.opponent.Score, m.opponent.HP)
	}

	if m.finalSent {
		rival += "  |  Your run is in, waiting for the verdict..."
	}

	return centerText(rival, m.width)
}

func (m RaceFlowModel) viewEnded() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("RACE OVER", m.width))
	b.WriteString("\n\n")

	if m.ended != nil {
		b.WriteString(centerText(m.ended.Reason.String(), m.width))
		b.WriteString("\n\n")

		var verdict string
		switch m.ended.Winner {
		case 0:
			verdict = "Dead heat. Nobody takes the purse."
		case m.side:
			verdict = "You win!"
		default:
			verdict = "Your rival takes it."
		}
		b.WriteString(centerText(verdict, m.width))
		b.WriteString("\n\n")

		mine, theirs := m.ended.Report1, m.ended.Report2
		if m.side == race.Racer2 {
			mine, theirs = theirs, mine
		}
		b.WriteString(centerText(fmt.Sprintf("You:   score %d | stages %d", mine.Score, mine.StagesCleared), m.width))
		b.WriteString("\n")
		b.WriteString(centerText(fmt.Sprintf("Rival: score %d | stages %d", theirs.Score, theirs.StagesCleared), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Enter: Back to menu  |  Q: Quit", m.width))

	return b.String()
}

// State returns the current race flow state.
func (m RaceFlowModel) State() RaceState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m RaceFlowModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m RaceFlowModel) IsQuitting() bool {
	return m.quitting
}

// MatchID returns the match ID if a race was started.
func (m RaceFlowModel) MatchID() race.MatchID {
	return m.matchID
}

// Side returns which side this session races.
func (m RaceFlowModel) Side() race.RacerID {
	return m.side
}

// LobbyCode returns the lobby code.
func (m RaceFlowModel) LobbyCode() string {
	return m.lobbyCode
}
