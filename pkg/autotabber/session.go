package autotabber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/internal/debounce"
	"github.com/himanishpuri/AutoTabber/internal/pitch"
	"github.com/himanishpuri/AutoTabber/internal/tab"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

var sessionIDs atomic.Int64

// Session runs the tab pipeline over one source. A session owns its
// debouncer, so concurrent sessions share no state. Run must not be called
// concurrently on the same session.
type Session struct {
	id  int64
	cfg *Config
	key tab.Key
	log Logger
	est *pitch.Estimator
	deb *debounce.Debouncer

	frames   atomic.Int64
	detected atomic.Int64
	emitted  atomic.Int64
	dropped  atomic.Int64
}

// NewSession validates the options and prepares a session. An unknown key
// is reported as ErrInvalidKey before any audio is read.
func NewSession(opts ...Option) (*Session, error) {
	cfg, key, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return newSession(cfg, key), nil
}

func newSession(cfg *Config, key tab.Key) *Session {
	id := sessionIDs.Add(1)

	var log Logger = cfg.Logger
	switch l := cfg.Logger.(type) {
	case nil:
		log = logger.GetLogger().WithPrefix(fmt.Sprintf("[session %d]", id))
	case *logger.Logger:
		log = l.WithPrefix(fmt.Sprintf("[session %d]", id))
	}

	return &Session{
		id:  id,
		cfg: cfg,
		key: key,
		log: log,
		est: pitch.NewEstimator(cfg.PeakOrder),
		deb: debounce.New(cfg.debounceConfig()),
	}
}

// Key returns the instrument key the session transcribes for.
func (s *Session) Key() tab.Key {
	return s.key
}

// Stats returns the session counters. It is safe to call while Run is in
// progress.
func (s *Session) Stats() Stats {
	return Stats{
		Frames:   s.frames.Load(),
		Detected: s.detected.Load(),
		Emitted:  s.emitted.Load(),
		Dropped:  s.dropped.Load(),
	}
}

// Run reads src until it ends, writing fragments to sink in order. One
// goroutine reads and assembles frames while another analyses them. The
// first failure stops both and is returned. When ctx is cancelled, frames
// still queued are discarded and ctx.Err() is returned.
func (s *Session) Run(ctx context.Context, src SampleSource, sink Sink) error {
	rate := src.SampleRate()
	if rate <= 0 {
		return fmt.Errorf("%w: source sample rate %d", ErrInvalidConfig, rate)
	}

	s.deb.Reset()
	s.frames.Store(0)
	s.detected.Store(0)
	s.emitted.Store(0)
	s.dropped.Store(0)

	s.log.Debugf("starting: key=%s frame=%d count=%d volume=%.3f rate=%d overflow=%s",
		s.key, s.cfg.FrameSize, s.cfg.MinCount, s.cfg.MinVolume, rate, s.cfg.Overflow)

	q := newFrameQueue(s.cfg.Overflow, s.cfg.QueueSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.produce(gctx, src, q)
	})
	g.Go(func() error {
		return s.consume(gctx, rate, q, sink)
	})

	err := g.Wait()
	s.dropped.Store(q.dropped())

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.log.Debugf("cancelled after %d frames", s.frames.Load())
		return ctxErr
	}
	if err != nil {
		return err
	}

	st := s.Stats()
	if st.Dropped > 0 {
		s.log.Warnf("dropped %d of %d frames; consumer could not keep up", st.Dropped, st.Frames+st.Dropped)
	}
	s.log.Debugf("finished: frames=%d detected=%d emitted=%d", st.Frames, st.Detected, st.Emitted)
	return nil
}

func (s *Session) produce(ctx context.Context, src SampleSource, q frameQueue) error {
	asm := audio.NewFrameAssembler(s.cfg.FrameSize)
	buf := make([]float64, s.cfg.FrameSize)

	for {
		n, err := src.ReadSamples(ctx, buf)
		for _, x := range buf[:n] {
			frame, ok := asm.Push(x)
			if !ok {
				continue
			}
			if perr := q.push(ctx, frame); perr != nil {
				return perr
			}
		}

		if errors.Is(err, io.EOF) {
			if p := asm.Pending(); p > 0 {
				s.log.Debugf("ignoring %d trailing samples", p)
			}
			q.close()
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading samples: %w", err)
		}
	}
}

func (s *Session) consume(ctx context.Context, rate int, q frameQueue, sink Sink) error {
	for {
		frame, ok, err := q.pop(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		idx := s.frames.Add(1) - 1

		for _, f := range s.process(frame, rate, idx) {
			if err := sink.WriteFragment(f); err != nil {
				return fmt.Errorf("writing fragment: %w", err)
			}
			if f.IsNote() {
				s.emitted.Add(1)
			}
		}
	}
}

// process runs one frame through pitch estimation, note mapping and the
// debouncer.
func (s *Session) process(frame audio.Frame, rate int, idx int64) []Fragment {
	var (
		symbol string
		note   uint8
	)
	if freq, ok := s.est.Estimate(frame, s.cfg.MinVolume, rate); ok {
		note = tab.MIDI(freq)
		symbol = tab.Symbol(note, s.key)
		if symbol != "" {
			s.detected.Add(1)
		}
	}

	frags := s.deb.Feed(symbol)
	if len(frags) == 0 {
		return nil
	}
	out := make([]Fragment, len(frags))
	for i, f := range frags {
		out[i] = Fragment{Fragment: f, Frame: idx}
		if f.Kind == KindNote && f.Symbol != "" {
			out[i].MIDI = note
		}
	}
	return out
}
