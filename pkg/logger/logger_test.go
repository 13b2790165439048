package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	return New(Config{
		Level:  level,
		Output: buf,
	})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, WARN)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: DEBUG, Prefix: "[autotab]", Output: &buf})
	child := parent.WithPrefix("[session 1]")

	child.Info("started")
	if got := buf.String(); !strings.Contains(got, "[INFO] [autotab] [session 1] started") {
		t.Errorf("unexpected line %q", got)
	}

	child.SetLevel(ERROR)
	child.Info("hidden")
	parent.Info("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("child level change was ignored")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Error("child level change leaked to parent")
	}
}

func TestFatalCallsExit(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, INFO)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("boom")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", DEBUG, true},
		{" INFO ", INFO, true},
		{"warning", WARN, true},
		{"Error", ERROR, true},
		{"fatal", FATAL, true},
		{"", INFO, false},
		{"loud", INFO, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSetShowTime(t *testing.T) {
	var buf bytes.Buffer
	prev := GetLogger().Level()
	SetLevel(INFO)
	SetOutput(&buf)
	SetColorize(false)
	defer func() {
		SetLevel(prev)
		SetOutput(os.Stderr)
		SetColorize(true)
		SetShowTime(true)
	}()

	SetShowTime(false)
	Warn("plain")
	if got := buf.String(); !strings.HasPrefix(got, "[WARN] plain") {
		t.Errorf("expected no timestamp, got %q", got)
	}

	buf.Reset()
	SetShowTime(true)
	Warn("stamped")
	if got := buf.String(); strings.HasPrefix(got, "[WARN]") || !strings.Contains(got, "[WARN] stamped") {
		t.Errorf("expected a timestamp before the level, got %q", got)
	}
}
