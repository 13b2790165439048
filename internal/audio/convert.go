package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/AutoTabber/pkg/utils"
)

// ConvertWAVConfig controls ffmpeg conversion of recordings.
type ConvertWAVConfig struct {
	SampleRate int           // 0 keeps the source rate
	Timeout    time.Duration // applied when ctx has no deadline; default 30s
}

// IsWAV reports whether path looks like a WAV file by extension.
func IsWAV(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".wav" || ext == ".wave"
}

// ConvertToWAV converts any recording ffmpeg can read into a 16-bit PCM mono
// WAV in outputDir and returns its path. Only the first input channel is
// kept; channels are not mixed.
func ConvertToWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if _, err := os.Stat(inputPath); err != nil {
		return "", err
	}
	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, baseName+".wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	args := []string{
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-af", "pan=mono|c0=c0", // first channel only
	}
	if cfg.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(cfg.SampleRate))
	}
	args = append(args, "-c:a", "pcm_s16le", tmpPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// OpenRecording opens path as a sample source, converting it through ffmpeg
// first when it is not a WAV file. The returned cleanup removes any
// intermediate file and is safe to call once the source is closed.
func OpenRecording(ctx context.Context, path, tempDir string) (*WAVSource, func(), error) {
	if IsWAV(path) {
		src, err := OpenWAV(path)
		return src, func() {}, err
	}

	wavPath, err := ConvertToWAV(ctx, path, tempDir, ConvertWAVConfig{})
	if err != nil {
		return nil, func() {}, fmt.Errorf("audio conversion failed: %w", err)
	}
	cleanup := func() { utils.DeleteFile(wavPath) }

	src, err := OpenWAV(wavPath)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return src, cleanup, nil
}
