// Package viz is the live terminal view of a handful of springs, built on
// Bubble Tea.
//
// [Model] drives four springs through a [sim.Driver] each frame:
//
//   - a scalar spring drawn as a bar, retargeted from the keyboard
//   - a 2D vector spring chasing a crosshair on a Braille [Canvas]
//   - a colour spring feeding a swatch through an [adapter.Component]
//   - a rotation spring turning a wireframe cube
//
// [RunInteractive] opens a preset picker first and then the live view.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset
//	←/→   - Move the bar target
//	WASD  - Move the crosshair
//	[ ]   - Yaw the cube target, , . pitch it
//	C     - Next swatch colour
//	Tab   - Select force or drag, ↑/↓ adjust it
//	I     - Cycle integration mode
//	F     - Toggle fixed update rate
//	E     - Snap everything to equilibrium
//	T     - Cycle themes
//	?     - Show help overlay
package viz
