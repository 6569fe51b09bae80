package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

type Bin struct {
	Frequency float64
	Magnitude float64
}

// Spectrum returns the single-sided magnitude spectrum of a signal sampled
// every dt seconds. The mean is removed and a Hann window applied first.
func Spectrum(signal []float64, dt float64) []Bin {
	n := len(signal)
	if n < 2 || dt <= 0 {
		return nil
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range signal {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	coeffs := fft.FFTReal(windowed)
	bins := make([]Bin, n/2+1)
	for k := range bins {
		bins[k] = Bin{
			Frequency: float64(k) / (float64(n) * dt),
			Magnitude: cmplx.Abs(coeffs[k]) * 2 / float64(n),
		}
	}
	return bins
}

// DominantFrequency is the strongest non-DC component of the signal.
func DominantFrequency(signal []float64, dt float64) (freq, magnitude float64) {
	bins := Spectrum(signal, dt)
	for _, b := range bins[min(1, len(bins)):] {
		if b.Magnitude > magnitude {
			freq, magnitude = b.Frequency, b.Magnitude
		}
	}
	return freq, magnitude
}
