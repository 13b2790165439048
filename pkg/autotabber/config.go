package autotabber

import (
	"errors"
	"fmt"

	"github.com/himanishpuri/AutoTabber/internal/debounce"
	"github.com/himanishpuri/AutoTabber/internal/pitch"
	"github.com/himanishpuri/AutoTabber/internal/tab"
)

var (
	// ErrInvalidConfig wraps every rejected option value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidKey is returned for key names outside the supported set.
	ErrInvalidKey = tab.ErrInvalidKey
)

// OverflowPolicy decides what the producer does when the frame queue is full.
type OverflowPolicy int

const (
	// OverflowBlock makes the producer wait. Suited to file sources.
	OverflowBlock OverflowPolicy = iota
	// OverflowDrop discards frames the consumer cannot keep up with.
	OverflowDrop
	// OverflowUnbounded lets the queue grow without limit.
	OverflowUnbounded
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDrop:
		return "drop"
	case OverflowUnbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy maps "block", "drop" or "unbounded" to a policy.
func ParseOverflowPolicy(name string) (OverflowPolicy, error) {
	for _, p := range []OverflowPolicy{OverflowBlock, OverflowDrop, OverflowUnbounded} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: overflow policy %q", ErrInvalidConfig, name)
}

// PeakOrder selects which two autocorrelation peaks measure the period.
type PeakOrder = pitch.Order

const (
	ByProminence = pitch.ByProminence
	ByPosition   = pitch.ByPosition
)

// ParsePeakOrder maps "prominence" or "position" to a PeakOrder.
func ParsePeakOrder(name string) (PeakOrder, error) {
	switch name {
	case "prominence":
		return ByProminence, nil
	case "position":
		return ByPosition, nil
	}
	return 0, fmt.Errorf("%w: peak order %q", ErrInvalidConfig, name)
}

type Config struct {
	FrameSize      int
	MinCount       int
	MinVolume      float64
	Key            string
	Full           bool
	PeakOrder      PeakOrder
	Overflow       OverflowPolicy
	QueueSize      int
	LineWidth      int
	BreakOnSilence bool

	DBPath         string // empty disables recording history
	TempDir        string
	SaveRecordings bool
	CaptureRate    int    // 0 uses the input device default
	RecordTo       string // when set, live input is also written to this WAV file

	Logger     Logger
	Storage    Storage
	Microphone MicrophoneOpener
}

type Option func(*Config)

func WithFrameSize(n int) Option {
	return func(c *Config) {
		c.FrameSize = n
	}
}

func WithMinCount(n int) Option {
	return func(c *Config) {
		c.MinCount = n
	}
}

func WithMinVolume(v float64) Option {
	return func(c *Config) {
		c.MinVolume = v
	}
}

func WithKey(name string) Option {
	return func(c *Config) {
		c.Key = name
	}
}

func WithFull(full bool) Option {
	return func(c *Config) {
		c.Full = full
	}
}

func WithPeakOrder(o PeakOrder) Option {
	return func(c *Config) {
		c.PeakOrder = o
	}
}

func WithOverflow(p OverflowPolicy) Option {
	return func(c *Config) {
		c.Overflow = p
	}
}

func WithQueueSize(n int) Option {
	return func(c *Config) {
		c.QueueSize = n
	}
}

func WithLineWidth(n int) Option {
	return func(c *Config) {
		c.LineWidth = n
	}
}

func WithBreakOnSilence(on bool) Option {
	return func(c *Config) {
		c.BreakOnSilence = on
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSaveRecordings(save bool) Option {
	return func(c *Config) {
		c.SaveRecordings = save
	}
}

func WithCaptureRate(rate int) Option {
	return func(c *Config) {
		c.CaptureRate = rate
	}
}

func WithRecordTo(path string) Option {
	return func(c *Config) {
		c.RecordTo = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithMicrophone(open MicrophoneOpener) Option {
	return func(c *Config) {
		c.Microphone = open
	}
}

func defaultConfig() *Config {
	return &Config{
		FrameSize:      512,
		MinCount:       4,
		MinVolume:      0.12,
		Key:            "C",
		Full:           false,
		PeakOrder:      ByProminence,
		Overflow:       OverflowBlock,
		QueueSize:      64,
		LineWidth:      debounce.DefaultLineWidth,
		TempDir:        "/tmp",
		SaveRecordings: true,
	}
}

func newConfig(opts []Option) (*Config, tab.Key, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	key, err := cfg.validate()
	if err != nil {
		return nil, 0, err
	}
	return cfg, key, nil
}

// validate checks every field and returns the parsed key.
func (c *Config) validate() (tab.Key, error) {
	key, err := tab.ParseKey(c.Key)
	if err != nil {
		return 0, err
	}
	switch {
	case c.FrameSize < 4:
		return 0, fmt.Errorf("%w: frame size %d", ErrInvalidConfig, c.FrameSize)
	case c.MinCount < 1:
		return 0, fmt.Errorf("%w: min count %d", ErrInvalidConfig, c.MinCount)
	case c.MinVolume < 0:
		return 0, fmt.Errorf("%w: min volume %v", ErrInvalidConfig, c.MinVolume)
	case c.QueueSize < 1:
		return 0, fmt.Errorf("%w: queue size %d", ErrInvalidConfig, c.QueueSize)
	case c.LineWidth < 1:
		return 0, fmt.Errorf("%w: line width %d", ErrInvalidConfig, c.LineWidth)
	case c.CaptureRate < 0:
		return 0, fmt.Errorf("%w: capture rate %d", ErrInvalidConfig, c.CaptureRate)
	}
	switch c.Overflow {
	case OverflowBlock, OverflowDrop, OverflowUnbounded:
	default:
		return 0, fmt.Errorf("%w: overflow policy %d", ErrInvalidConfig, int(c.Overflow))
	}
	switch c.PeakOrder {
	case ByProminence, ByPosition:
	default:
		return 0, fmt.Errorf("%w: peak order %d", ErrInvalidConfig, int(c.PeakOrder))
	}
	return key, nil
}

func (c *Config) debounceConfig() debounce.Config {
	return debounce.Config{
		MinCount:       c.MinCount,
		Full:           c.Full,
		LineWidth:      c.LineWidth,
		BreakOnSilence: c.BreakOnSilence,
	}
}
