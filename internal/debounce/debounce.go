// Package debounce turns a noisy per-frame stream of tab symbols into stable
// note emissions and line breaks.
package debounce

const (
	// DefaultLineWidth is the number of notes written before a line break.
	DefaultLineWidth = 20

	// Separator follows every emitted symbol.
	Separator = " "

	// LineBreak ends a line of notes.
	LineBreak = "\n"
)

// Kind distinguishes note fragments from line breaks.
type Kind int

const (
	KindNote Kind = iota
	KindBreak
)

// Fragment is one unit of output.
type Fragment struct {
	Kind   Kind
	Symbol string // empty for breaks, and for silent frames in full mode
	// EndLine marks a full mode note that closes its own line.
	EndLine bool
}

// Text renders the fragment the way it is written to a text sink.
func (f Fragment) Text() string {
	switch {
	case f.Kind == KindBreak:
		return LineBreak
	case f.EndLine:
		return f.Symbol + Separator + LineBreak
	}
	return f.Symbol + Separator
}

// Config controls the emission policy.
type Config struct {
	// MinCount is the number of identical consecutive symbols required
	// before the symbol is emitted. Values below 1 are treated as 1.
	MinCount int

	// Full emits every symbol, empty ones included, on its own line and
	// ignores MinCount.
	Full bool

	// LineWidth is the number of emitted notes per line. Zero means
	// DefaultLineWidth.
	LineWidth int

	// BreakOnSilence ends the current line once silence has lasted
	// MinCount frames.
	BreakOnSilence bool
}

// State is a snapshot of the debouncer's internal counters.
type State struct {
	Previous   string
	Count      int
	SinceBreak int
}

// Debouncer holds the per-session state. It is not safe for concurrent use;
// each session owns exactly one.
type Debouncer struct {
	cfg   Config
	state State
}

// New creates a debouncer in its initial state.
func New(cfg Config) *Debouncer {
	if cfg.MinCount < 1 {
		cfg.MinCount = 1
	}
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = DefaultLineWidth
	}
	return &Debouncer{cfg: cfg}
}

// Config returns the effective configuration.
func (d *Debouncer) Config() Config {
	return d.cfg
}

// State returns the current counters.
func (d *Debouncer) State() State {
	return d.state
}

// Reset returns the debouncer to its initial state.
func (d *Debouncer) Reset() {
	d.state = State{}
}

// Feed consumes the symbol detected in one frame and returns the fragments
// to write, in order. Most frames produce nothing.
func (d *Debouncer) Feed(symbol string) []Fragment {
	if d.cfg.Full {
		return []Fragment{{Kind: KindNote, Symbol: symbol, EndLine: true}}
	}

	st := &d.state
	if symbol == st.Previous {
		st.Count++
	} else {
		st.Count = 1
	}
	st.Previous = symbol

	if st.Count != d.cfg.MinCount {
		return nil
	}

	if symbol == "" {
		if d.cfg.BreakOnSilence && st.SinceBreak > 0 {
			st.SinceBreak = 0
			return []Fragment{{Kind: KindBreak}}
		}
		return nil
	}

	out := []Fragment{{Kind: KindNote, Symbol: symbol}}
	st.SinceBreak++
	if st.SinceBreak == d.cfg.LineWidth {
		st.SinceBreak = 0
		out = append(out, Fragment{Kind: KindBreak})
	}
	return out
}
