package pitch

import (
	"math"
	"math/rand"
	"testing"
)

const (
	testSampleRate = 44100
	testFrameSize  = 512
)

func sine(freq, phase, amplitude float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i)+phase)
	}
	return out
}

func semitones(a, b float64) float64 {
	return math.Abs(12 * math.Log2(a/b))
}

func TestAutocorrelationMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{8, 64, 512, 1000} {
		signal := make([]float64, n)
		for i := range signal {
			signal[i] = rng.Float64()*2 - 1
		}

		got := Autocorrelation(signal)
		want := DirectAutocorrelation(signal)
		if len(got) != 2*n || len(want) != 2*n {
			t.Fatalf("n=%d: expected length %d, got %d/%d", n, 2*n, len(got), len(want))
		}
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-8 {
				t.Fatalf("n=%d index %d: fft %v, direct %v", n, i, got[i], want[i])
			}
		}
	}
}

func TestAutocorrelationZeroLagInCenter(t *testing.T) {
	signal := sine(440, 0.3, 0.8, testFrameSize, testSampleRate)
	corr := Autocorrelation(signal)

	var energy float64
	for _, s := range signal {
		energy += s * s
	}
	if math.Abs(corr[testFrameSize]-energy) > 1e-9 {
		t.Errorf("Expected zero lag %v, got %v", energy, corr[testFrameSize])
	}
	for i, v := range corr {
		if v > corr[testFrameSize]+1e-9 {
			t.Errorf("Index %d exceeds zero-lag value: %v > %v", i, v, corr[testFrameSize])
		}
	}
}

func TestAutocorrelationEmpty(t *testing.T) {
	if Autocorrelation(nil) != nil {
		t.Error("Expected nil autocorrelation for empty input")
	}
}

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name      string
		data      []float64
		positions []int
	}{
		{"empty", nil, nil},
		{"monotonic", []float64{1, 2, 3, 4}, nil},
		{"single", []float64{0, 1, 0}, []int{1}},
		{"two", []float64{0, 3, 1, 2, 0}, []int{1, 3}},
		{"plateau", []float64{0, 2, 2, 2, 0}, []int{2}},
		{"even plateau", []float64{0, 2, 2, 0}, []int{1}},
		{"shoulder is not a peak", []float64{0, 2, 2, 3, 0}, []int{3}},
		{"edges ignored", []float64{5, 1, 5}, nil},
		{"plateau at border", []float64{0, 1, 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peaks := FindPeaks(tt.data)
			if len(peaks) != len(tt.positions) {
				t.Fatalf("Expected %d peaks, got %d (%+v)", len(tt.positions), len(peaks), peaks)
			}
			for i, p := range peaks {
				if p.Position() != tt.positions[i] {
					t.Errorf("Peak %d: expected position %d, got %d", i, tt.positions[i], p.Position())
				}
			}
		})
	}
}

func TestPeakProminence(t *testing.T) {
	data := []float64{0, 5, 1, 3, 2, 4, 0}
	peaks := FindPeaks(data)
	if len(peaks) != 3 {
		t.Fatalf("Expected 3 peaks, got %d", len(peaks))
	}

	expected := []float64{5, 1, 3}
	for i, p := range peaks {
		if p.Prominence != expected[i] {
			t.Errorf("Peak at %d: expected prominence %v, got %v", p.Position(), expected[i], p.Prominence)
		}
	}
}

func TestSelectPair(t *testing.T) {
	peaks := FindPeaks([]float64{0, 1, 0, 5, 0, 3, 0, 3, 0})

	a, b := SelectPair(peaks, ByPosition)
	if a.Position() != 1 || b.Position() != 3 {
		t.Errorf("ByPosition: expected 1 and 3, got %d and %d", a.Position(), b.Position())
	}

	a, b = SelectPair(peaks, ByProminence)
	if a.Position() != 3 || b.Position() != 5 {
		t.Errorf("ByProminence: expected 3 and 5, got %d and %d", a.Position(), b.Position())
	}
}

func TestEstimateSilence(t *testing.T) {
	frame := make([]float64, testFrameSize)
	if _, ok := Estimate(frame, 0, testSampleRate); ok {
		t.Error("Expected no detection for an all-zero frame")
	}
}

func TestEstimateBelowVolumeGate(t *testing.T) {
	// content does not matter once the summed amplitude is under the gate
	frames := [][]float64{
		sine(440, 0, 0.001, testFrameSize, testSampleRate),
		sine(261.63, 1, 0.0005, testFrameSize, testSampleRate),
	}
	for i, frame := range frames {
		vol := Volume(frame)
		if _, ok := Estimate(frame, vol, testSampleRate); ok {
			t.Errorf("Frame %d: expected no detection at volume == min volume", i)
		}
		if _, ok := Estimate(frame, vol+1, testSampleRate); ok {
			t.Errorf("Frame %d: expected no detection below min volume", i)
		}
	}
}

func TestEstimateInvalidSampleRate(t *testing.T) {
	frame := sine(440, 0, 0.5, testFrameSize, testSampleRate)
	if _, ok := Estimate(frame, 0, 0); ok {
		t.Error("Expected no detection for a zero sample rate")
	}
}

var sinePhases = []float64{0, 0.7, 1.9, 3.1, 4.4, 5.8}

// withinSemitone reports whether a 512 sample frame of a sine at f is
// detected within one semitone.
func withinSemitone(est *Estimator, f, phase float64) bool {
	frame := sine(f, phase, 0.5, testFrameSize, testSampleRate)
	got, ok := est.Estimate(frame, 0.12, testSampleRate)
	return ok && semitones(got, f) <= 1
}

func TestEstimateSine(t *testing.T) {
	est := NewEstimator(ByProminence)

	for f := 140.0; f <= 2000; f += 5 {
		for _, ph := range sinePhases {
			frame := sine(f, ph, 0.5, testFrameSize, testSampleRate)
			got, ok := est.Estimate(frame, 0.12, testSampleRate)
			if !ok {
				t.Errorf("%.2f Hz phase %.1f: no detection", f, ph)
				continue
			}
			if d := semitones(got, f); d > 1 {
				t.Errorf("%.2f Hz phase %.1f: estimated %.2f Hz (%.2f semitones off)", f, ph, got, d)
			}
		}
	}
}

func TestEstimateBelowFrameResolution(t *testing.T) {
	// Under 140 Hz a 512 sample frame at 44.1 kHz holds fewer than two
	// clean periods, so some sines are missed or land on the wrong note.
	est := NewEstimator(ByProminence)

	misses := 0
	for f := 80.0; f <= 135; f += 5 {
		for _, ph := range sinePhases {
			if !withinSemitone(est, f, ph) {
				misses++
			}
		}
	}
	if misses == 0 {
		t.Error("Expected 80-135 Hz to exceed what a 512 sample frame resolves")
	}
}

func TestEstimateMiddleC(t *testing.T) {
	frame := sine(261.63, 0, 0.5, testFrameSize, testSampleRate)
	got, ok := Estimate(frame, 0.12, testSampleRate)
	if !ok {
		t.Fatal("Expected a detection for middle C")
	}
	// zero lag to first period lag is 168 samples
	if math.Abs(got-float64(testSampleRate)/168) > 1e-9 {
		t.Errorf("Expected %.3f Hz, got %.3f Hz", float64(testSampleRate)/168, got)
	}
}

func TestEstimateLargerFrames(t *testing.T) {
	// a 1024 sample frame resolves the low C of an LC harmonica
	for _, size := range []int{1024, 2048} {
		frame := sine(130.81, 0.4, 0.5, size, testSampleRate)
		got, ok := Estimate(frame, 0.12, testSampleRate)
		if !ok {
			t.Fatalf("size %d: no detection", size)
		}
		if d := semitones(got, 130.81); d > 0.5 {
			t.Errorf("size %d: estimated %.2f Hz (%.2f semitones off)", size, got, d)
		}
	}
}

func TestEstimatorReuse(t *testing.T) {
	est := NewEstimator(ByProminence)
	a := sine(440, 0, 0.5, testFrameSize, testSampleRate)
	b := sine(880, 0, 0.5, testFrameSize, testSampleRate)

	f1, _ := est.Estimate(a, 0, testSampleRate)
	f2, _ := est.Estimate(b, 0, testSampleRate)
	f3, _ := est.Estimate(a, 0, testSampleRate)
	if f1 != f3 {
		t.Errorf("Expected repeat estimate %v, got %v", f1, f3)
	}
	if semitones(f2, 880) > 1 {
		t.Errorf("Expected ~880 Hz, got %v", f2)
	}
}

func TestVolume(t *testing.T) {
	if v := Volume([]float64{-1, 0.5, -0.25, 0}); v != 1.75 {
		t.Errorf("Expected volume 1.75, got %v", v)
	}
}

func TestOrderString(t *testing.T) {
	if ByProminence.String() != "prominence" || ByPosition.String() != "position" {
		t.Error("unexpected order names")
	}
}
