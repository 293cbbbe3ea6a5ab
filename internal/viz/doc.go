// Package viz draws planning trees and flights in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas with per-cell ink
//   - [Scene], [RenderTree], [RenderMission]: top-down projections
//   - [LiveModel]: Bubble Tea program stepping a closed-loop flight
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single control cycle while paused
//	R     - Restart the mission
//	Tab   - Toggle the search tree overlay
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
