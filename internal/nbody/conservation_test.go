package nbody_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/nbody"
)

func mustParticle(mass float64, pos, vel nbody.Vector) *nbody.Particle {
	p, err := nbody.NewParticle(mass, pos, vel)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Simulation", func() {
	var grid *nbody.Grid

	Context("with an equal-mass circular binary", func() {
		const period = 4.442882938158366

		BeforeEach(func() {
			v := math.Sqrt(0.5)
			var err error
			grid, err = nbody.NewGrid([]*nbody.Particle{
				mustParticle(1, nbody.Vector{-0.5, 0}, nbody.Vector{0, -v}),
				mustParticle(1, nbody.Vector{0.5, 0}, nbody.Vector{0, v}),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with the expected total energy", func() {
			Expect(grid.TotalEnergy()).To(BeNumerically("~", -0.5, 1e-12))
		})

		It("keeps energy drift small over ten periods", func() {
			sim, err := nbody.New(grid, 0.01, 10*period)
			Expect(err).NotTo(HaveOccurred())

			result, err := sim.Simulate(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Finite).To(BeTrue())
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-3))
		})

		It("keeps the separation bounded", func() {
			sim, err := nbody.New(grid, 0.01, 2*period, nbody.WithObserver(
				nbody.ObserverFunc(func(g *nbody.Grid, step int, t float64) {
					sep := g.Particle(0).Position.Sub(g.Particle(1).Position).Norm()
					Expect(sep).To(BeNumerically("~", 1, 1e-3))
				})))
			Expect(err).NotTo(HaveOccurred())
			_, err = sim.Simulate(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("with an asymmetric three-body system", func() {
		BeforeEach(func() {
			var err error
			grid, err = nbody.NewGrid([]*nbody.Particle{
				mustParticle(3, nbody.Vector{1, 3, 0.5}, nbody.Vector{0.1, 0, 0}),
				mustParticle(4, nbody.Vector{-2, -1, 0}, nbody.Vector{0, -0.2, 0.05}),
				mustParticle(5, nbody.Vector{1, -1, -0.3}, nbody.Vector{-0.1, 0.1, 0}),
			}, nbody.WithMinDistance(1e-3))
			Expect(err).NotTo(HaveOccurred())
		})

		It("conserves total momentum", func() {
			p0 := grid.TotalMomentum()

			sim, err := nbody.New(grid, 0.001, 1)
			Expect(err).NotTo(HaveOccurred())
			result, err := sim.Simulate(context.Background())
			Expect(err).NotTo(HaveOccurred())

			for d := range p0 {
				Expect(result.FinalMomentum[d]).To(BeNumerically("~", p0[d], 1e-10))
			}
		})

		It("keeps the center of mass moving uniformly", func() {
			m := grid.TotalMomentum()
			com0 := grid.CenterOfMass()
			total := 12.0

			sim, err := nbody.New(grid, 0.001, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = sim.Simulate(context.Background())
			Expect(err).NotTo(HaveOccurred())

			com := grid.CenterOfMass()
			for d := range com {
				Expect(com[d]).To(BeNumerically("~", com0[d]+m[d]/total*sim.Time(), 1e-9))
			}
		})
	})
})
