// Package spectrum turns tabulated emission spectra into energy samplers.
//
// A spectrum table is integrated with the trapezoid rule into a
// CumulativeDistribution, which is then inverted by binary search and linear
// interpolation of energy against cumulative weight. The distribution is built
// once and is immutable, so one instance may be shared by goroutines that each
// own their random stream.
//
// The Library type is a SpectrumProvider holding named material components;
// DefaultLibrary ships the liquid and gaseous xenon scintillation spectra.
package spectrum
