package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Choice is one scenario offered by the picker. DeltaT and EndTime are the
// scenario defaults and can be edited before starting.
type Choice struct {
	Name        string
	Description string
	DeltaT      float64
	EndTime     float64
}

// Starter turns an edited choice into a simulation builder.
type Starter func(c Choice) Builder

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var paramNames = []string{"dt", "t_end", "steps/tick"}

type picker struct {
	state, cursor int
	choices       []Choice
	start         Starter
	selected      Choice
	stepsPerTick  float64
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

// NewPicker returns a model that lists choices, lets the user edit the time
// step and end time, then hands over to the live view.
func NewPicker(choices []Choice, start Starter) tea.Model {
	return &picker{
		state:        stateMenu,
		choices:      choices,
		start:        start,
		stepsPerTick: 4,
	}
}

func (m *picker) Init() tea.Cmd { return nil }

func (m *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m, m.menuKey(msg)
		case stateConfig:
			return m, m.configKey(msg)
		}
	}
	return m, nil
}

func (m *picker) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.choices) == 0 {
			return nil
		}
		m.selected = m.choices[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return nil
}

func (m *picker) param(i int) *float64 {
	switch paramNames[i] {
	case "dt":
		return &m.selected.DeltaT
	case "t_end":
		return &m.selected.EndTime
	}
	return &m.stepsPerTick
}

func (m *picker) configKey(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				*m.param(m.paramCursor) = v
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-eE+") {
				m.editBuf += s
			}
		}
		return nil
	}
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(*m.param(m.paramCursor), 'g', -1, 64)
	case "left", "h":
		p := m.param(m.paramCursor)
		*p /= 2
	case "right", "l":
		p := m.param(m.paramCursor)
		*p *= 2
	case "s":
		live, err := NewModel(m.selected.Name, m.start(m.selected), int(m.stepsPerTick))
		if err != nil {
			m.err = err
			return nil
		}
		m.liveModel, m.state = live, stateSim
		return m.liveModel.Init()
	}
	return nil
}

func (m *picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func header(title, sub string) string {
	return "\n\n    " + pickTitle.Render(title) + "\n    " + pickSub.Render(sub) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m *picker) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("GRAVSIM", "n-body gravitational simulator"))
	for i, c := range m.choices {
		desc := c.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-14s", c.Name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-14s", c.Name)), pickFaint.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m *picker) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.selected.Name), m.selected.Description))
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%10.4g", *m.param(i))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", name)), pickDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", pickIdle.Render(fmt.Sprintf("  %-10s", name)), pickFaint.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "halve/double", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive runs the picker full screen until the user quits.
func RunInteractive(choices []Choice, start Starter) error {
	_, err := tea.NewProgram(NewPicker(choices, start), tea.WithAltScreen()).Run()
	return err
}

// RunLive runs a single live view full screen.
func RunLive(title string, build Builder, stepsPerTick int) error {
	m, err := NewModel(title, build, stepsPerTick)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
