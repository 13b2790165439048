//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"fmt"
	"io"
	"syscall/js"

	"github.com/himanishpuri/AutoTabber/internal/audio"
	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidOptions
	ErrorProcessing
)

// sessionOptions reads the optional settings object:
// {key, count, bufferSize, minVolume, full, breakOnSilence, peakOrder}.
func sessionOptions(v js.Value) ([]autotabber.Option, error) {
	opts := []autotabber.Option{
		autotabber.WithLogger(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})),
	}
	if v.IsUndefined() || v.IsNull() {
		return opts, nil
	}
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("options must be an object")
	}

	if k := v.Get("key"); k.Type() == js.TypeString {
		opts = append(opts, autotabber.WithKey(k.String()))
	}
	if c := v.Get("count"); c.Type() == js.TypeNumber {
		opts = append(opts, autotabber.WithMinCount(c.Int()))
	}
	if b := v.Get("bufferSize"); b.Type() == js.TypeNumber {
		opts = append(opts, autotabber.WithFrameSize(b.Int()))
	}
	if m := v.Get("minVolume"); m.Type() == js.TypeNumber {
		opts = append(opts, autotabber.WithMinVolume(m.Float()))
	}
	if f := v.Get("full"); f.Type() == js.TypeBoolean {
		opts = append(opts, autotabber.WithFull(f.Bool()))
	}
	if s := v.Get("breakOnSilence"); s.Type() == js.TypeBoolean {
		opts = append(opts, autotabber.WithBreakOnSilence(s.Bool()))
	}
	if p := v.Get("peakOrder"); p.Type() == js.TypeString {
		order, err := autotabber.ParsePeakOrder(p.String())
		if err != nil {
			return nil, err
		}
		opts = append(opts, autotabber.WithPeakOrder(order))
	}
	return opts, nil
}

// Transcribes audio samples into harmonica tab.
// Returns: {error: number, data: {text, notes} | string}
func autotabTranscribe(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 3 arguments: audioArray, sampleRate, channels")
	}

	audioDataJS := args[0]
	sampleRateJS := args[1]
	channelsJS := args[2]

	if audioDataJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray must be an Array or Float64Array")
	}
	if sampleRateJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate must be a number")
	}
	if channelsJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "channels must be a number")
	}

	sampleRate := sampleRateJS.Int()
	channels := channelsJS.Int()
	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid channel count: %d", channels))
	}

	length := audioDataJS.Length()
	samples := make([]float64, length)
	for i := 0; i < length; i++ {
		val := audioDataJS.Index(i)
		if val.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("audioArray element %d is not a number", i))
		}
		samples[i] = val.Float()
	}
	samples = audio.FirstChannel(samples, channels)

	var optsJS js.Value
	if len(args) > 3 {
		optsJS = args[3]
	}
	opts, err := sessionOptions(optsJS)
	if err != nil {
		return makeErrorResponse(ErrorInvalidOptions, err.Error())
	}
	sess, err := autotabber.NewSession(opts...)
	if err != nil {
		return makeErrorResponse(ErrorInvalidOptions, err.Error())
	}

	rec := autotabber.NewRecordingSink()
	if err := sess.Run(context.Background(), audio.NewSliceSource(samples, sampleRate), rec); err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Transcription failed: %v", err))
	}

	notes := js.Global().Get("Array").New()
	for i, n := range rec.Notes() {
		obj := js.Global().Get("Object").New()
		obj.Set("symbol", n.Symbol)
		obj.Set("midi", int(n.MIDI))
		obj.Set("frame", n.Frame)
		notes.SetIndex(i, obj)
	}

	data := js.Global().Get("Object").New()
	data.Set("text", rec.Text())
	data.Set("key", sess.Key().String())
	data.Set("frames", sess.Stats().Frames)
	data.Set("notes", notes)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "🔧 AutoTabber WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("autotabTranscribe", js.FuncOf(autotabTranscribe))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "❌ window object is undefined!")
	}

	if !console.IsUndefined() {
		console.Call("log", "✅ AutoTabber WASM module loaded and ready")
	}

	<-done
}
