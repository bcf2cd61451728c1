package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gravsim/internal/nbody"
)

func binaryBuilder(dt, tEnd float64) Builder {
	return func() (*nbody.Simulation, error) {
		a, err := nbody.NewParticle(1, nbody.Vector{-0.5, 0}, nbody.Vector{0, -0.5})
		if err != nil {
			return nil, err
		}
		b, err := nbody.NewParticle(1, nbody.Vector{0.5, 0}, nbody.Vector{0, 0.5})
		if err != nil {
			return nil, err
		}
		g, err := nbody.NewGrid([]*nbody.Particle{a, b})
		if err != nil {
			return nil, err
		}
		return nbody.New(g, dt, tEnd)
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModelBuildError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewModel("bad", func() (*nbody.Simulation, error) { return nil, boom }, 1)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestModelAdvancesAndStops(t *testing.T) {
	m, err := NewModel("binary", binaryBuilder(0.01, 0.1), 4)
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, TickMsg{})
	if got := m.sim.StepCount(); got != 4 {
		t.Fatalf("steps after one tick = %d, want 4", got)
	}
	if len(m.trails[0]) != 5 {
		t.Errorf("trail length = %d, want 5", len(m.trails[0]))
	}

	for range 10 {
		m = send(t, m, TickMsg{})
	}
	if got := m.sim.StepCount(); got != 10 {
		t.Errorf("steps = %d, want the planned 10", got)
	}
	if m.running {
		t.Error("model still running after the end time")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("view does not report DONE")
	}
}

func TestModelKeys(t *testing.T) {
	m, err := NewModel("binary", binaryBuilder(0.01, 1), 2)
	if err != nil {
		t.Fatal(err)
	}

	m = send(t, m, key(" "))
	if m.running {
		t.Fatal("space did not pause")
	}
	m = send(t, m, TickMsg{})
	if m.sim.StepCount() != 0 {
		t.Error("paused model advanced")
	}

	m = send(t, m, key("]"))
	if m.stepsPerTick != 4 {
		t.Errorf("stepsPerTick = %d, want 4", m.stepsPerTick)
	}
	m = send(t, m, key("["))
	m = send(t, m, key("["))
	m = send(t, m, key("["))
	if m.stepsPerTick != 1 {
		t.Errorf("stepsPerTick = %d, want floor of 1", m.stepsPerTick)
	}

	zoom := m.camera.Zoom
	m = send(t, m, key("+"))
	if m.camera.Zoom <= zoom {
		t.Error("+ did not zoom in")
	}

	m = send(t, m, key(" "))
	m = send(t, m, TickMsg{})
	if m.sim.StepCount() != 1 {
		t.Fatalf("steps = %d, want 1", m.sim.StepCount())
	}
	m = send(t, m, key("r"))
	if m.sim.StepCount() != 0 || !m.running || len(m.energyHistory) != 0 {
		t.Error("reset did not rebuild the simulation")
	}

	m = send(t, m, key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay not shown")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q returned no command")
	}
}

func TestModelDrawsBodies(t *testing.T) {
	m, err := NewModel("binary", binaryBuilder(0.01, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	m.draw()
	lit := 0
	for y := 0; y < m.canvas.DotHeight(); y++ {
		for x := 0; x < m.canvas.DotWidth(); x++ {
			if m.canvas.IsSet(x, y) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("nothing drawn")
	}
}

func TestBodyRadius(t *testing.T) {
	if r := bodyRadius(1, 1); r != 3 {
		t.Errorf("heaviest radius = %d, want 3", r)
	}
	if r := bodyRadius(1e-6, 1); r != 1 {
		t.Errorf("light radius = %d, want 1", r)
	}
	if r := bodyRadius(1, 0); r != 1 {
		t.Errorf("zero max mass radius = %d, want 1", r)
	}
}

func TestPickerStartsLiveView(t *testing.T) {
	var started Choice
	choices := []Choice{
		{Name: "one", Description: "first", DeltaT: 0.01, EndTime: 1},
		{Name: "two", Description: "second", DeltaT: 0.02, EndTime: 2},
	}
	p := NewPicker(choices, func(c Choice) Builder {
		started = c
		return binaryBuilder(c.DeltaT, c.EndTime)
	})

	p, _ = p.Update(key("j"))
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(p.View(), "TWO") {
		t.Fatal("config screen not shown for the second choice")
	}

	// Double dt then start.
	p, _ = p.Update(key("l"))
	p, cmd := p.Update(key("s"))
	if cmd == nil {
		t.Error("start returned no tick command")
	}
	if started.Name != "two" || started.DeltaT != 0.04 || started.EndTime != 2 {
		t.Errorf("started %+v", started)
	}
	if !strings.Contains(p.View(), "TWO") {
		t.Error("live view not shown")
	}
}
