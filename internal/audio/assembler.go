package audio

// Frame is a fixed-length block of mono samples analysed as a unit.
type Frame []float64

// FrameAssembler collects single samples into frames of a fixed size.
type FrameAssembler struct {
	size int
	buf  []float64
}

// NewFrameAssembler creates an assembler producing frames of size samples.
func NewFrameAssembler(size int) *FrameAssembler {
	if size < 1 {
		size = 1
	}
	return &FrameAssembler{
		size: size,
		buf:  make([]float64, 0, size),
	}
}

// Size returns the frame length.
func (a *FrameAssembler) Size() int {
	return a.size
}

// Pending returns the number of samples waiting for the next frame.
func (a *FrameAssembler) Pending() int {
	return len(a.buf)
}

// Push appends one sample. When the frame is complete it returns a copy of
// it and true, and the internal buffer starts over without reallocating.
func (a *FrameAssembler) Push(sample float64) (Frame, bool) {
	a.buf = append(a.buf, sample)
	if len(a.buf) < a.size {
		return nil, false
	}
	frame := make(Frame, a.size)
	copy(frame, a.buf)
	a.buf = a.buf[:0]
	return frame, true
}

// PushAll pushes every sample and calls emit for each completed frame, in
// order.
func (a *FrameAssembler) PushAll(samples []float64, emit func(Frame)) {
	for _, s := range samples {
		if frame, ok := a.Push(s); ok {
			emit(frame)
		}
	}
}

// Reset drops any partially assembled frame.
func (a *FrameAssembler) Reset() {
	a.buf = a.buf[:0]
}

// FirstChannel extracts the first channel of interleaved samples.
func FirstChannel(interleaved []float64, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}
	out := make([]float64, 0, len(interleaved)/channels)
	for i := 0; i+channels <= len(interleaved); i += channels {
		out = append(out, interleaved[i])
	}
	return out
}

// AppendFirstChannel32 appends the first channel of interleaved float32
// samples, as delivered by capture devices, to dst.
func AppendFirstChannel32(dst []float64, interleaved []float32, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	for i := 0; i < len(interleaved); i += channels {
		dst = append(dst, float64(interleaved[i]))
	}
	return dst
}
