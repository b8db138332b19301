// Package viz renders recorded arm episodes in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, with [Viewport] mapping world
//     coordinates onto it
//   - [Replay]: Bubble Tea model that animates a trajectory
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart
//	[ ]   - Scrub backward/forward
//	+ -   - Playback speed
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
