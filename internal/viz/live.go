package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/nbody"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 240
	maxStepsPerTick = 1 << 12
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Builder creates a fresh simulation. The live view calls it on start and
// on every reset.
type Builder func() (*nbody.Simulation, error)

// Model steps an nbody.Simulation on a timer and draws it on a braille
// canvas.
type Model struct {
	title         string
	build         Builder
	sim           *nbody.Simulation
	err           error
	stepsPerTick  int
	canvas        *Canvas
	camera        *Camera
	trails        [][]Vec3
	energyHistory []float64
	e0            float64
	p0            nbody.Vector
	running       bool
	showHelp      bool
}

// NewModel builds the first simulation and fits the camera to it.
func NewModel(title string, build Builder, stepsPerTick int) (Model, error) {
	m := Model{
		title:        title,
		build:        build,
		stepsPerTick: max(1, stepsPerTick),
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(),
		running:      true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				m.running = false
			}
		case "]":
			m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
		case "[":
			m.stepsPerTick = max(1, m.stepsPerTick/2)
		case "f":
			if m.sim != nil {
				m.camera.Fit(m.sim.Grid())
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick steps and stops at the end of the run or
// once the state stops being finite.
func (m *Model) advance() {
	if m.sim == nil {
		return
	}
	g := m.sim.Grid()
	for i := 0; i < m.stepsPerTick && !m.sim.Done(); i++ {
		m.sim.Step()
		m.recordTrails(g)
		if !g.IsFinite() {
			break
		}
	}
	m.energyHistory = append(m.energyHistory, g.TotalEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	if m.sim.Done() || !g.IsFinite() {
		m.running = false
	}
}

func (m *Model) recordTrails(g *nbody.Grid) {
	for i, p := range g.Particles() {
		m.trails[i] = append(m.trails[i], Lift(p.Position))
		if len(m.trails[i]) > trailCapacity {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

// reset rebuilds the simulation from the builder.
func (m *Model) reset() error {
	sim, err := m.build()
	if err != nil {
		return err
	}
	g := sim.Grid()
	m.sim = sim
	m.err = nil
	m.e0 = g.TotalEnergy()
	m.p0 = g.TotalMomentum()
	m.energyHistory = m.energyHistory[:0]
	m.trails = make([][]Vec3, g.Len())
	m.recordTrails(g)
	m.camera.Fit(g)
	m.running = true
	return nil
}

// status reports the run state shown in the stats panel.
func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.sim == nil:
		return StatusError.Render("NO SIMULATION")
	case !m.sim.Grid().IsFinite():
		return StatusError.Render("NON-FINITE")
	case m.sim.Done():
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	if m.err != nil {
		s.WriteString(StatusError.Render(m.err.Error()) + "\n\n")
	}

	if m.sim != nil {
		g := m.sim.Grid()
		if len(m.energyHistory) > 1 {
			chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
			s.WriteString(GraphStyle.Render(chart) + "\n\n")
		}
		planned := m.sim.PlannedSteps()
		progress := 1.0
		if planned > 0 {
			progress = float64(m.sim.StepCount()) / float64(planned)
		}
		e := g.TotalEnergy()
		s.WriteString(Metric("Time", fmt.Sprintf("%.4g / %.4g", m.sim.Time(), m.sim.EndTime())) + "\n")
		s.WriteString(Metric("Step", fmt.Sprintf("%d / %d", m.sim.StepCount(), planned)) + "\n")
		s.WriteString(MetricLabel.Render("Progress") + ProgressBar(progress, 20) + "\n")
		s.WriteString(Metric("Bodies", fmt.Sprintf("%d (dim %d)", g.Len(), g.Dim())) + "\n")
		s.WriteString(Metric("Energy", fmt.Sprintf("%.6g", e)) + "\n")
		s.WriteString(Metric("Drift", fmt.Sprintf("%.3e", nbody.EnergyDrift(m.e0, e))) + "\n")
		s.WriteString(Metric("ΔP", fmt.Sprintf("%.3e", g.TotalMomentum().Sub(m.p0).Norm())) + "\n")
		s.WriteString(Metric("Speed", fmt.Sprintf("%d steps/tick", m.stepsPerTick)) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  F:Fit    ?:Help\n[ ]:Speed +/-:Zoom"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Restart from the start   ║
║  Q        - Quit                     ║
║  [ / ]    - Halve/double speed       ║
║  + / -    - Zoom in/out              ║
║  x/X y/Y  - Rotate the view          ║
║  F        - Fit view to bodies       ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// draw renders trails as dots and bodies as discs scaled by mass, centered
// on the current center of mass.
func (m *Model) draw() {
	m.canvas.Clear()
	if m.sim == nil {
		return
	}
	g := m.sim.Grid()
	center := Lift(g.CenterOfMass())
	if !finite3(center) {
		center = Vec3{}
	}
	sw, sh := m.canvas.DotWidth(), m.canvas.DotHeight()

	for _, trail := range m.trails {
		for _, p := range trail {
			if x, y, _, ok := m.camera.Project(p, center, sw, sh); ok {
				m.canvas.Set(x, y)
			}
		}
	}

	maxMass := 0.0
	for _, p := range g.Particles() {
		maxMass = math.Max(maxMass, p.Mass)
	}
	for _, p := range g.Particles() {
		x, y, _, ok := m.camera.Project(Lift(p.Position), center, sw, sh)
		if !ok {
			continue
		}
		m.canvas.Disc(x, y, bodyRadius(p.Mass, maxMass))
	}
}

// bodyRadius maps mass to a disc radius of 1 to 3 dots using the cube root
// of the mass ratio.
func bodyRadius(mass, maxMass float64) int {
	if !(maxMass > 0) {
		return 1
	}
	r := int(math.Round(3 * math.Cbrt(mass/maxMass)))
	return max(1, min(3, r))
}

func finite3(v Vec3) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
