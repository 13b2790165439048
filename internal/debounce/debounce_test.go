package debounce

import (
	"strings"
	"testing"
)

func feedAll(d *Debouncer, symbols ...string) []Fragment {
	var out []Fragment
	for _, s := range symbols {
		out = append(out, d.Feed(s)...)
	}
	return out
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestEmitsOnMinCountFrame(t *testing.T) {
	for _, minCount := range []int{1, 2, 4, 7} {
		d := New(Config{MinCount: minCount})
		for i := 1; i <= minCount; i++ {
			frags := d.Feed("4")
			if i < minCount && len(frags) != 0 {
				t.Fatalf("minCount %d: emitted early on frame %d", minCount, i)
			}
			if i == minCount {
				if len(frags) != 1 || frags[0].Text() != "4 " {
					t.Fatalf("minCount %d: expected single \"4 \" emission, got %+v", minCount, frags)
				}
			}
		}
	}
}

func TestSustainedNoteEmitsOnce(t *testing.T) {
	d := New(Config{MinCount: 3})
	out := feedAll(d, repeat("-2", 50)...)
	if len(out) != 1 {
		t.Fatalf("Expected 1 emission for a sustained note, got %d", len(out))
	}
	if d.State().Count != 50 {
		t.Errorf("Expected repeat count 50, got %d", d.State().Count)
	}
}

func TestInterruptedRunDoesNotEmit(t *testing.T) {
	d := New(Config{MinCount: 4})
	out := feedAll(d, "1", "1", "1", "2", "1", "1", "1")
	if len(out) != 0 {
		t.Fatalf("Expected no emissions, got %+v", out)
	}
}

func TestSilenceNeverEmitted(t *testing.T) {
	d := New(Config{MinCount: 4})
	out := feedAll(d, repeat("", 10)...)
	if len(out) != 0 {
		t.Fatalf("Expected no output for silence, got %+v", out)
	}
}

func TestRepeatedNoteAfterGap(t *testing.T) {
	d := New(Config{MinCount: 2})
	out := feedAll(d, "5", "5", "", "5", "5")
	if render(out) != "5 5 " {
		t.Errorf("Expected \"5 5 \", got %q", render(out))
	}
}

func TestLineWrap(t *testing.T) {
	d := New(Config{MinCount: 1})
	var out []Fragment
	for i := 0; i < 21; i++ {
		sym := "1"
		if i%2 == 1 {
			sym = "2"
		}
		out = append(out, d.Feed(sym)...)
		if i == 19 {
			if d.State().SinceBreak != 0 {
				t.Errorf("Expected counter reset after 20 notes, got %d", d.State().SinceBreak)
			}
		}
	}

	if len(out) != 22 {
		t.Fatalf("Expected 21 notes and 1 break, got %d fragments", len(out))
	}
	if out[20].Kind != KindBreak {
		t.Errorf("Expected fragment 20 to be a line break, got %+v", out[20])
	}
	if out[21].Kind != KindNote {
		t.Errorf("Expected 21st note after the break, got %+v", out[21])
	}
	if d.State().SinceBreak != 1 {
		t.Errorf("Expected 1 note since break, got %d", d.State().SinceBreak)
	}

	lines := strings.Split(render(out), "\n")
	if len(lines) != 2 || len(strings.Fields(lines[0])) != 20 {
		t.Errorf("Unexpected layout %q", render(out))
	}
}

func TestCustomLineWidth(t *testing.T) {
	d := New(Config{MinCount: 1, LineWidth: 3})
	out := feedAll(d, "1", "2", "3", "4")
	if got := render(out); got != "1 2 3 \n4 " {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestFullModeTotality(t *testing.T) {
	d := New(Config{MinCount: 4, Full: true})
	symbols := []string{"", "", "1", "1", "-2", ""}

	for i, s := range symbols {
		out := d.Feed(s)
		if len(out) != 1 {
			t.Fatalf("Frame %d: expected exactly one fragment, got %d", i, len(out))
		}
		if f := out[0]; f.Kind != KindNote || f.Symbol != s || !f.EndLine {
			t.Errorf("Frame %d: expected line-ending note %q, got %+v", i, s, f)
		}
	}

	d.Reset()
	if got := render(feedAll(d, symbols...)); got != " \n \n1 \n1 \n-2 \n \n" {
		t.Errorf("Unexpected full mode text %q", got)
	}
}

func TestBreakOnSilence(t *testing.T) {
	d := New(Config{MinCount: 2, BreakOnSilence: true})
	out := feedAll(d, "", "", "6", "6", "", "", "", "-6", "-6")
	if got := render(out); got != "6 \n-6 " {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestMinCountClamp(t *testing.T) {
	d := New(Config{MinCount: 0})
	if d.Config().MinCount != 1 || d.Config().LineWidth != DefaultLineWidth {
		t.Errorf("Unexpected effective config %+v", d.Config())
	}
	if len(d.Feed("3")) != 1 {
		t.Error("Expected immediate emission with min count 1")
	}
}

func TestReset(t *testing.T) {
	d := New(Config{MinCount: 2})
	d.Feed("1")
	d.Reset()
	if d.State() != (State{}) {
		t.Errorf("Expected initial state, got %+v", d.State())
	}
	if len(d.Feed("1")) != 0 {
		t.Error("Expected count to restart after reset")
	}
}

func render(fragments []Fragment) string {
	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Text())
	}
	return sb.String()
}
