package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/san-kum/armsim/internal/arm"
)

// HeadingRates is the target's turn rate between consecutive snapshots.
// Snapshots with no time advance are skipped.
func HeadingRates(snaps []arm.Snapshot) []float64 {
	if len(snaps) < 2 {
		return nil
	}
	rates := make([]float64, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		dt := snaps[i].Time - snaps[i-1].Time
		if dt <= 0 {
			continue
		}
		dtheta := wrapAngle(snaps[i].Target.Angle() - snaps[i-1].Target.Angle())
		rates = append(rates, dtheta/dt)
	}
	return rates
}

// Spectrum is a one sided amplitude spectrum. Freq is in cycles per unit
// time when built with a positive dt, otherwise cycles per sample.
type Spectrum struct {
	Freq      []float64
	Amplitude []float64
}

// PowerSpectrum returns the amplitude of each non-negative frequency of data
// sampled every dt.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	if len(data) == 0 {
		return Spectrum{}
	}
	fft := fourier.NewFFT(len(data))
	coeff := fft.Coefficients(nil, data)

	s := Spectrum{
		Freq:      make([]float64, len(coeff)),
		Amplitude: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freq[i] = fft.Freq(i)
		if dt > 0 {
			s.Freq[i] /= dt
		}
		s.Amplitude[i] = cmplx.Abs(c)
	}
	return s
}

// Peak returns the strongest non-DC frequency, or 0 when there is none.
func (s Spectrum) Peak() float64 {
	best, freq := 0.0, 0.0
	for i := 1; i < len(s.Amplitude); i++ {
		if s.Amplitude[i] > best {
			best, freq = s.Amplitude[i], s.Freq[i]
		}
	}
	return freq
}
