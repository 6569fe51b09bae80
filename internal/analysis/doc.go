// Package analysis inspects recorded axis traces.
//
//   - [Spectrum] and [DominantFrequency]: frequency content of a signal,
//     used to spot ringing in a tuned loop
//   - [NewPhasePortrait]: error against error rate, rendered as ASCII
//   - [BandExits]: how often a settled axis drifts back out of its
//     tolerance band
//
// A loop that hunts around its setpoint shows up as a clear peak away from
// zero in the spectrum of its error:
//
//	f, _ := analysis.DominantFrequency(result.ErrorSignal(), cfg.Dt)
package analysis
