package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	stateMenu = iota
	stateLive
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// menu picks a preset and then hands over to the live Model.
type menu struct {
	state   int
	cursor  int
	presets []string
	tuning  dynamo.TuningConfig
	live    Model
}

func NewMenu(tuning dynamo.TuningConfig) *menu {
	return &menu{
		state:   stateMenu,
		presets: config.ListPresets(),
		tuning:  tuning,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateLive {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, m.start()
	}
	return m, nil
}

func (m *menu) start() tea.Cmd {
	name := m.presets[m.cursor]
	p := config.GetPreset(name)
	m.live = NewModel(m.tuning, p.Force, p.Drag, name)
	m.state = stateLive
	return m.live.Init()
}

func (m menu) View() string {
	if m.state == stateLive {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("SPRINGSIM") + "\n    " + menuSub.Render("damped spring playground") + "\n    " + menuSub.Render("────────────────────────") + "\n\n")
	for i, name := range m.presets {
		p := config.GetPreset(name)
		desc := fmt.Sprintf("F=%-6g D=%-5g %s", p.Force, p.Drag, p.Description)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-8s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-8s", name)), menuIdle.Render(desc)))
		}
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" select  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(tuning dynamo.TuningConfig) error {
	_, err := tea.NewProgram(NewMenu(tuning), tea.WithAltScreen()).Run()
	return err
}
