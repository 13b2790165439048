// Package pitch estimates the fundamental frequency of a single audio frame
// from the spacing of its autocorrelation peaks.
package pitch

import "math"

// Estimator finds the fundamental frequency of fixed-size frames. It keeps a
// scratch buffer between calls and must not be shared between goroutines.
type Estimator struct {
	order   Order
	scratch []float64
}

// NewEstimator creates an estimator that selects peaks using order.
func NewEstimator(order Order) *Estimator {
	return &Estimator{order: order}
}

// Order returns the peak selection rule in use.
func (e *Estimator) Order() Order {
	return e.order
}

// Volume is the loudness measure used by the gate: the sum of absolute
// sample values.
func Volume(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += math.Abs(s)
	}
	return sum
}

// Estimate returns the fundamental frequency of frame in Hz. The second
// result is false when the frame is too quiet (volume <= minVolume) or the
// autocorrelation does not show a usable period.
func (e *Estimator) Estimate(frame []float64, minVolume float64, sampleRate int) (float64, bool) {
	if sampleRate <= 0 || Volume(frame) <= minVolume {
		return 0, false
	}

	if cap(e.scratch) < 2*len(frame) {
		e.scratch = make([]float64, 2*len(frame))
	}
	corr := autocorrelate(frame, e.scratch)

	peaks := FindPeaks(corr)
	if len(peaks) < 2 {
		return 0, false
	}

	a, b := SelectPair(peaks, e.order)
	distance := a.Position() - b.Position()
	if distance < 0 {
		distance = -distance
	}
	if distance == 0 {
		return 0, false
	}
	return float64(sampleRate) / float64(distance), true
}

// Estimate runs a one-off estimate with the default peak order.
func Estimate(frame []float64, minVolume float64, sampleRate int) (float64, bool) {
	return NewEstimator(ByProminence).Estimate(frame, minVolume, sampleRate)
}
