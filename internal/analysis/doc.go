// Package analysis extracts orbital information from recorded runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectral estimate of an orbit's
//     period from a sampled coordinate or separation series
//   - [Column] and [Separation]: series extraction from stored frames
//   - [NewPhasePortrait]: 2D scatter of any two packed state columns
//   - [LyapunovExponent]: divergence rate of two nearby configurations
//
// # Orbital Period
//
// A circular binary shows its period as the dominant peak of either body's
// x coordinate:
//
//	x := analysis.Column(frames, layout.PositionIndex(1, 0))
//	period, err := analysis.DominantPeriod(x, dt*float64(every))
package analysis
