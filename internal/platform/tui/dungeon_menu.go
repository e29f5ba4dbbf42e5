package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/games/dungeon"
)

// DungeonSelection holds the user's choices from the run selector.
type DungeonSelection struct {
	StartStage string // "" = configured campaign start
	Difficulty string // "" = config default
}

// difficultyPresets are the presets offered by the selector. The
// config file accepts more; these are the ones worth a menu entry.
var difficultyPresets = []string{"easy", "normal", "hard"}

type dungeonSelectState int

const (
	dungeonSelectMain dungeonSelectState = iota
	dungeonSelectStage
	dungeonSelectDifficulty
)

// DungeonModeModel lets users pick a starting stage and difficulty
// before a run. Campaign runs only pick difficulty; arena runs also
// pick the stage.
type DungeonModeModel struct {
	arena      bool
	state      dungeonSelectState
	cursor     int
	stageCur   int
	diffCur    int
	stages     []dungeon.StageInfo
	width      int
	height     int
	keyMapper  *KeyMapper
	selection  DungeonSelection
	choosing   bool
	quitting   bool
	back       bool
}

// NewDungeonModeModel creates a new run selector model.
func NewDungeonModeModel(arena bool, width, height int) DungeonModeModel {
	m := DungeonModeModel{
		arena:     arena,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
		choosing:  true,
	}

	if arena {
		// Best effort; an empty list just disables the stage submenu.
		if infos, err := dungeon.StageList(); err == nil {
			m.stages = infos
		}
	}

	return m
}

// Init initializes the model.
func (m DungeonModeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DungeonModeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m DungeonModeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch m.state {
	case dungeonSelectStage:
		return m.handleStageKey(action)
	case dungeonSelectDifficulty:
		return m.handleDifficultyKey(action)
	}
	return m.handleMainKey(action)
}

// mainOptions returns the labels for the top-level selector list.
func (m DungeonModeModel) mainOptions() []string {
	diff := m.selection.Difficulty
	if diff == "" {
		diff = "default"
	}

	if m.arena {
		stage := m.selection.StartStage
		if stage == "" && len(m.stages) > 0 {
			stage = m.stages[0].ID
		}
		return []string{
			"Enter the arena",
			fmt.Sprintf("Stage: %s", stage),
			fmt.Sprintf("Difficulty: %s", diff),
		}
	}
	return []string{
		"Begin the descent",
		fmt.Sprintf("Difficulty: %s", diff),
	}
}

func (m DungeonModeModel) handleMainKey(action MenuAction) (tea.Model, tea.Cmd) {
	options := m.mainOptions()

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		switch {
		case m.cursor == 0:
			// Arena runs default to the first catalog stage.
			if m.arena && m.selection.StartStage == "" && len(m.stages) > 0 {
				m.selection.StartStage = m.stages[0].ID
			}
			m.choosing = false
			return m, tea.Quit
		case m.arena && m.cursor == 1:
			m.state = dungeonSelectStage
			m.stageCur = 0
		default:
			m.state = dungeonSelectDifficulty
			m.diffCur = 0
			for i, p := range difficultyPresets {
				if p == m.selection.Difficulty {
					m.diffCur = i
				}
			}
		}
	case MenuActionBack:
		m.back = true
		return m, tea.Quit
	}

	return m, nil
}

func (m DungeonModeModel) handleStageKey(action MenuAction) (tea.Model, tea.Cmd) {
	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.stageCur > 0 {
			m.stageCur--
		}
	case MenuActionDown:
		if m.stageCur < len(m.stages)-1 {
			m.stageCur++
		}
	case MenuActionSelect:
		if len(m.stages) > 0 {
			m.selection.StartStage = m.stages[m.stageCur].ID
			m.choosing = false
			return m, tea.Quit
		}
	case MenuActionBack:
		m.state = dungeonSelectMain
	}

	return m, nil
}

func (m DungeonModeModel) handleDifficultyKey(action MenuAction) (tea.Model, tea.Cmd) {
	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.diffCur > 0 {
			m.diffCur--
		}
	case MenuActionDown:
		if m.diffCur < len(difficultyPresets)-1 {
			m.diffCur++
		}
	case MenuActionSelect:
		m.selection.Difficulty = difficultyPresets[m.diffCur]
		m.state = dungeonSelectMain
	case MenuActionBack:
		m.state = dungeonSelectMain
	}

	return m, nil
}

// View renders the selector.
func (m DungeonModeModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case dungeonSelectStage:
		return m.viewStageSelect()
	case dungeonSelectDifficulty:
		return m.viewDifficultySelect()
	}
	return m.viewMain()
}

func (m DungeonModeModel) viewMain() string {
	var b strings.Builder

	title := "C A M P A I G N"
	if m.arena {
		title = "A R E N A"
	}

	b.WriteString("\n")
	b.WriteString(centerText(title, m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Prepare your run:", m.width))
	b.WriteString("\n\n")

	for i, option := range m.mainOptions() {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, option), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Enter: Select  |  Esc: Back  |  Q: Quit", m.width))

	return b.String()
}

func (m DungeonModeModel) viewStageSelect() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("SELECT STAGE", m.width))
	b.WriteString("\n\n")

	if len(m.stages) == 0 {
		b.WriteString(centerText("No stages found", m.width))
		b.WriteString("\n")
	}

	for i, s := range m.stages {
		cursor := "  "
		if i == m.stageCur {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%2d. %s", cursor, i+1, s.Name)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Enter: Select  |  Esc: Back  |  Q: Quit", m.width))

	return b.String()
}

func (m DungeonModeModel) viewDifficultySelect() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("DIFFICULTY", m.width))
	b.WriteString("\n\n")

	for i, p := range difficultyPresets {
		cursor := "  "
		if i == m.diffCur {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, p), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Enter: Select  |  Esc: Back  |  Q: Quit", m.width))

	return b.String()
}

// Selected returns the selection, or nil if still choosing.
func (m DungeonModeModel) Selected() *DungeonSelection {
	if m.choosing {
		return nil
	}
	return &m.selection
}

// IsChoosing returns true if still in selection mode.
func (m DungeonModeModel) IsChoosing() bool {
	return m.choosing
}

// IsQuitting returns true if user wants to quit.
func (m DungeonModeModel) IsQuitting() bool {
	return m.quitting
}

// WantsBack returns true if user pressed back.
func (m DungeonModeModel) WantsBack() bool {
	return m.back
}

// RunDungeonSelector runs the run selector and returns the selection.
// A nil selection means the user backed out or quit.
func RunDungeonSelector(arena bool, cfg core.RuntimeConfig) (*DungeonSelection, core.RuntimeConfig, error) {
	model := NewDungeonModeModel(arena, cfg.ScreenW, cfg.ScreenH)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, cfg, err
	}

	m, ok := finalModel.(DungeonModeModel)
	if !ok {
		return nil, cfg, nil
	}

	if m.IsQuitting() || m.WantsBack() {
		return nil, cfg, nil
	}

	return m.Selected(), cfg, nil
}
