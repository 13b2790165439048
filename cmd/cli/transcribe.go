package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/internal/export"
	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

var (
	midiOut     string
	recordTo    string
	captureRate int
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Transcribe the microphone until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService(cmd,
			autotabber.WithCaptureRate(captureRate),
			autotabber.WithRecordTo(recordTo),
		)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(os.Stderr, "🎤 Listening... press Ctrl+C to stop")
		return transcribe(func(sink autotabber.Sink) (*autotabber.Result, error) {
			return svc.Listen(ctx, sink)
		})
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <audio_file>",
	Short: "Transcribe a recording",
	Long: `Transcribe a recording. WAV files are read directly; other formats are
converted with ffmpeg first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return transcribe(func(sink autotabber.Sink) (*autotabber.Result, error) {
			return svc.TranscribeFile(ctx, args[0], sink)
		})
	},
}

var measureCmd = &cobra.Command{
	Use:   "measure [audio_file]",
	Short: "Print per-frame volume to help choose --min-volume",
	Long: `Print the summed absolute amplitude of every frame. Without a file the
microphone is measured until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var src autotabber.SampleSource
		if len(args) == 1 {
			wav, cleanup, err := audio.OpenRecording(ctx, args[0], tempDir)
			if err != nil {
				return err
			}
			defer cleanup()
			src = wav
		} else {
			mic, err := autotabber.OpenMicrophone(captureRate)
			if err != nil {
				return err
			}
			src = mic
		}
		defer src.Close()

		out := bufio.NewWriter(os.Stdout)
		defer out.Flush()

		sum, err := svc.MeasureVolume(ctx, src, func(r autotabber.VolumeReading) {
			mark := ""
			if r.Gated {
				mark = " (silent)"
			}
			fmt.Fprintf(out, "%8d  %10.4f  peak %10.4f  mean %10.4f%s\n", r.Frame, r.Volume, r.Peak, r.Mean, mark)
			if len(args) == 0 {
				out.Flush()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		out.Flush()
		fmt.Fprintf(os.Stderr, "\n📊 %d frames: min %.4f, mean %.4f, peak %.4f\n", sum.Frames, sum.Min, sum.Mean, sum.Peak)
		return nil
	},
}

// transcribe runs fn with stdout as the tab sink and an optional MIDI
// export, then reports the result on stderr.
func transcribe(fn func(autotabber.Sink) (*autotabber.Result, error)) error {
	log := logger.GetLogger()

	out := bufio.NewWriter(os.Stdout)
	sinks := autotabber.MultiSink{autotabber.NewWriterSink(out)}

	var mw *export.MIDIWriter
	if midiOut != "" {
		mw = export.NewMIDIWriter()
		sinks = append(sinks, autotabber.MIDISink{W: mw})
	}

	res, err := fn(sinks)
	out.Flush()
	if res == nil {
		log.Errorf("Transcription failed: %v", err)
		return err
	}
	if res.Text != "" && res.Text[len(res.Text)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Transcription failed: %v", err)
		return err
	}

	if mw != nil {
		if werr := mw.WriteFile(midiOut); werr != nil {
			return werr
		}
		fmt.Fprintf(os.Stderr, "🎹 Wrote %d notes to %s\n", mw.Len(), midiOut)
	}

	fmt.Fprintf(os.Stderr, "✅ %d notes from %d frames", len(res.Notes), res.Frames)
	if res.Dropped > 0 {
		fmt.Fprintf(os.Stderr, " (%d frames dropped)", res.Dropped)
	}
	fmt.Fprintln(os.Stderr)
	if res.RecordingID != "" {
		fmt.Fprintf(os.Stderr, "   Saved as %s\n", res.RecordingID)
	}
	return nil
}

func init() {
	addTranscriptionFlags(listenCmd, "drop")
	addTranscriptionFlags(fileCmd, "block")
	addTranscriptionFlags(measureCmd, "block")

	for _, c := range []*cobra.Command{listenCmd, fileCmd} {
		c.Flags().StringVar(&midiOut, "midi", "", "Also write the emitted notes to this MIDI file")
	}
	listenCmd.Flags().StringVar(&recordTo, "record", "", "Save the microphone input to this WAV file")
	for _, c := range []*cobra.Command{listenCmd, measureCmd} {
		c.Flags().IntVar(&captureRate, "rate", 0, "Capture sample rate in Hz (0 = device default)")
	}

	rootCmd.AddCommand(listenCmd, fileCmd, measureCmd)
}
