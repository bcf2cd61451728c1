// Package viz provides terminal visualization for n-body runs.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that steps a simulation and draws bodies with trails
//   - [NewPicker]: scenario picker that hands over to the live view
//   - [Canvas]: Braille-based pixel canvas, also used for static plots
//   - [Camera]: orthographic projection of 2D and 3D positions
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Restart from the initial configuration
//	[ ]   - Halve/double steps per frame
//	+ -   - Zoom
//	x y   - Rotate (shift reverses)
//	F     - Fit view to bodies
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
