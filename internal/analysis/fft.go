package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

var ErrShortSeries = errors.New("analysis: series too short")

// PowerSpectrum returns the FFT magnitude of the first len(data)/2 bins.
// Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in a
// series sampled every dt. The mean is removed first and the DC bin is
// ignored; the peak is refined by parabolic interpolation.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrShortSeries
	}

	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-floats.Sum(data)/float64(len(data)), centered)

	ps := PowerSpectrum(centered)
	k := 1 + floats.MaxIdx(ps[1:])
	if ps[k] == 0 {
		return 0, errors.New("analysis: series has no oscillation")
	}

	peak := float64(k)
	if k+1 < len(ps) {
		a, b, c := ps[k-1], ps[k], ps[k+1]
		if den := a - 2*b + c; den != 0 {
			peak += 0.5 * (a - c) / den
		}
	}

	period := float64(len(data)) * dt / peak
	if math.IsNaN(period) || math.IsInf(period, 0) {
		return 0, errors.New("analysis: no finite period")
	}
	return period, nil
}
