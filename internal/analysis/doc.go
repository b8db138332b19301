// Package analysis summarises stored episode trajectories.
//
//   - [Analyze]: distance statistics, path lengths and reward totals
//   - [HeadingRates] and [PowerSpectrum]: spectrum of the target's noisy turning
//   - [ClosingPortrait] and [PortraitToASCII]: distance against closing speed
//
// A run that ends in success shows the portrait collapsing onto the
// tolerance line:
//
//	p := analysis.ClosingPortrait(snaps)
//	fmt.Print(analysis.PortraitToASCII(p, 60, 20))
package analysis
