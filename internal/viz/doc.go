// Package viz renders axis runs in the terminal.
//
//   - [PlotTrace]: target and position over time as an ASCII chart
//   - [Dial]: a Braille sketch of a rotary mechanism's angle and target
//   - [LiveModel]: a Bubble Tea view that streams a running bench and
//     retunes its gains while it runs
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	Tab    - Select the next gain
//	Up/K   - Raise the selected gain by 5%
//	Down/J - Lower the selected gain by 5%
//	T      - Cycle colour themes
//	Q      - Quit
package viz
