// Package viz draws incline runs in the terminal.
//
// A [Panel] bundles the collaborators a runner feeds on every step: three
// [Series] strip charts, a [Trail], a [MotionMap] and a [Timer]. A [Scene]
// projects the x-y plane onto a braille [Canvas]. [LiveModel] animates a
// run with Bubble Tea and can record it to GIF through a [Recorder].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart with the current parameters
//	Tab   - Select parameter
//	Up/Dn - Tune parameter by 5%
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
