package audio

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestIsWAV(t *testing.T) {
	tests := map[string]bool{
		"take.wav":     true,
		"TAKE.WAV":     true,
		"x/y/z.wave":   true,
		"song.mp3":     false,
		"noextension":  false,
		"archive.wav.": false,
	}
	for path, want := range tests {
		if got := IsWAV(path); got != want {
			t.Errorf("IsWAV(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestConvertToWAV(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "input.wav")
	if err := WriteWAVFile(in, sine(440, 22050, 22050), 22050); err != nil {
		t.Fatal(err)
	}

	out, err := ConvertToWAV(context.Background(), in, filepath.Join(dir, "out"), ConvertWAVConfig{SampleRate: 11025})
	if err != nil {
		t.Fatalf("ConvertToWAV: %v", err)
	}

	src, err := OpenWAV(out)
	if err != nil {
		t.Fatalf("OpenWAV(%s): %v", out, err)
	}
	defer src.Close()
	if src.SampleRate() != 11025 || src.Channels() != 1 {
		t.Errorf("Unexpected format rate=%d channels=%d", src.SampleRate(), src.Channels())
	}
}

func TestConvertToWAVMissingInput(t *testing.T) {
	_, err := ConvertToWAV(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), t.TempDir(), ConvertWAVConfig{})
	if err == nil {
		t.Error("Expected error for missing input")
	}
}
