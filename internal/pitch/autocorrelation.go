package pitch

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Autocorrelation returns the full linear autocorrelation of signal, computed
// through the FFT. The result has length 2*len(signal) and is rotated so the
// zero lag sits at index len(signal): out[len(signal)+k] is the correlation at
// lag k for -len(signal) <= k < len(signal).
func Autocorrelation(signal []float64) []float64 {
	return autocorrelate(signal, nil)
}

// autocorrelate is Autocorrelation with a reusable zero-padding buffer.
func autocorrelate(signal, scratch []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}
	length := 2 * n

	// zero pad by a factor of two so the circular correlation has no wrap-around
	if cap(scratch) < length {
		scratch = make([]float64, length)
	}
	padded := scratch[:length]
	copy(padded, signal)
	for i := n; i < length; i++ {
		padded[i] = 0
	}

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = c * cmplx.Conj(c)
	}
	corr := fft.IFFT(spectrum)

	// rotate right by n so the zero-lag peak lands in the middle
	out := make([]float64, length)
	for i, c := range corr {
		out[(i+n)%length] = real(c)
	}
	return out
}

// DirectAutocorrelation computes the same sequence as Autocorrelation by
// summing lagged products directly. It is O(N^2) and exists to verify the
// FFT path.
func DirectAutocorrelation(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}
	out := make([]float64, 2*n)
	for lag := -(n - 1); lag < n; lag++ {
		var sum float64
		for i := 0; i < n; i++ {
			j := i + lag
			if j < 0 || j >= n {
				continue
			}
			sum += signal[i] * signal[j]
		}
		out[n+lag] = sum
	}
	return out
}
