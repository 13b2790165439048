package pitch

import "math"

// Peak is a local maximum of a sequence.
type Peak struct {
	Start      int     // first index of the plateau
	End        int     // last index of the plateau (== Start for a sharp peak)
	Height     float64 // value at the peak
	Prominence float64 // height above the higher of the two surrounding bases
}

// Position returns the middle of the peak's plateau.
func (p Peak) Position() int {
	return (p.Start + p.End) / 2
}

// Order selects which two peaks define the fundamental period.
type Order int

const (
	// ByProminence takes the two most prominent peaks. Equal prominences are
	// broken by position, leftmost first.
	ByProminence Order = iota
	// ByPosition takes the two leftmost peaks.
	ByPosition
)

func (o Order) String() string {
	switch o {
	case ByProminence:
		return "prominence"
	case ByPosition:
		return "position"
	default:
		return "unknown"
	}
}

// FindPeaks returns every local maximum of data in position order. A run of
// equal samples counts as one peak when both of its outer neighbours are
// strictly lower. The first and last samples are never peaks.
func FindPeaks(data []float64) []Peak {
	n := len(data)
	if n < 3 {
		return nil
	}

	peaks := make([]Peak, 0, 16)
	i := 1
	for i < n-1 {
		if !(data[i] > data[i-1]) {
			i++
			continue
		}

		// walk to the end of a possible plateau
		end := i
		for end+1 < n && data[end+1] == data[i] {
			end++
		}
		if end+1 < n && data[end+1] < data[i] {
			peaks = append(peaks, Peak{Start: i, End: end, Height: data[i]})
		}
		i = end + 1
	}

	for k := range peaks {
		peaks[k].Prominence = prominence(data, peaks[k])
	}
	return peaks
}

// prominence measures how far a peak rises above the deepest point between
// it and the nearest strictly higher sample on each side (or the border),
// taking the shallower of the two sides as the reference.
func prominence(data []float64, p Peak) float64 {
	leftMin := p.Height
	for i := p.Start - 1; i >= 0 && data[i] <= p.Height; i-- {
		leftMin = math.Min(leftMin, data[i])
	}
	rightMin := p.Height
	for i := p.End + 1; i < len(data) && data[i] <= p.Height; i++ {
		rightMin = math.Min(rightMin, data[i])
	}
	return p.Height - math.Max(leftMin, rightMin)
}

// SelectPair picks the two peaks used for the period estimate. The caller
// must pass at least two peaks in position order.
func SelectPair(peaks []Peak, order Order) (Peak, Peak) {
	if order == ByPosition {
		return peaks[0], peaks[1]
	}

	first, second := -1, -1
	for i, p := range peaks {
		switch {
		case first < 0 || p.Prominence > peaks[first].Prominence:
			second = first
			first = i
		case second < 0 || p.Prominence > peaks[second].Prominence:
			second = i
		}
	}
	return peaks[first], peaks[second]
}
