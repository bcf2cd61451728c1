package nbody

// Observer is notified with the grid after the primed initial state and
// after every completed step. Observers must not mutate the grid.
type Observer interface {
	OnStep(g *Grid, step int, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(g *Grid, step int, t float64)

func (f ObserverFunc) OnStep(g *Grid, step int, t float64) { f(g, step, t) }

// Metric accumulates a scalar over the observed states of a run.
type Metric interface {
	Name() string
	Observe(g *Grid, t float64)
	Value() float64
	Reset()
}

type Result struct {
	Steps           int
	FinalTime       float64
	InitialEnergy   float64
	FinalEnergy     float64
	EnergyDrift     float64
	InitialMomentum Vector
	FinalMomentum   Vector
	Metrics         map[string]float64
	// Finite is false once any position or velocity has become NaN or Inf.
	Finite bool
}
