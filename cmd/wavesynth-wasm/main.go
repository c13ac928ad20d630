//go:build js && wasm

package main

import (
	"os"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/synth"
)

const maxFrames = 128

var (
	engine       *synth.Engine
	store        *synth.ParamStore
	queue        *synth.EventQueue
	conv         *room.Convolver
	events       []synth.Event
	planar       [][]float32
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmSetSustain", js.FuncOf(wasmSetSustain))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmLoadIR", js.FuncOf(wasmLoadIR))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM wavesynth module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()

	cfg := synth.DefaultConfig()
	cfg.Voices = 32
	engine = synth.NewEngine(cfg)
	engine.Prepare(float64(sampleRate), maxFrames)
	store = synth.NewParamStore()
	queue = synth.NewEventQueue(256)
	events = make([]synth.Event, 0, 256)
	conv = nil

	planar = make([][]float32, cfg.Channels)
	for ch := range planar {
		planar[ch] = make([]float32, maxFrames)
	}
	outputBuffer = make([]float32, maxFrames*cfg.Channels)

	println("Synth initialized at", sampleRate, "Hz")
	return nil
}

func wasmNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || engine == nil {
		return nil
	}
	queue.Push(synth.NoteOn(args[0].Int(), float32(args[1].Int())/127))
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return nil
	}
	queue.Push(synth.NoteOff(args[0].Int()))
	return nil
}

func wasmSetSustain(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return nil
	}
	v := 0
	if args[0].Bool() {
		v = 127
	}
	queue.Push(synth.ControlChange(synth.CCSustainPedal, v))
	return nil
}

// wasmSetParam(name, value) returns false for unknown names.
func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || store == nil {
		return false
	}
	return store.Set(args[0].String(), float32(args[1].Float())) == nil
}

// wasmLoadIR(arrayBuffer, wetMix) decodes a WAV IR and enables the room stage.
func wasmLoadIR(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return false
	}
	arrayBuffer := js.Global().Get("Uint8Array").New(args[0])
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		println("IR data is empty")
		return false
	}
	irData := make([]byte, length)
	js.CopyBytesToGo(irData, arrayBuffer)

	tmpFile := "/tmp/ir.wav"
	if err := os.WriteFile(tmpFile, irData, 0o644); err != nil {
		println("Failed to write IR file:", err.Error())
		return false
	}

	c, err := room.New(int(engine.SampleRate()), engine.Config().Channels, room.DefaultPartSize)
	if err == nil {
		err = c.LoadIR(tmpFile)
	}
	if err != nil {
		println("Failed to load IR:", err.Error())
		return false
	}
	wet := float32(0.3)
	if len(args) > 1 {
		wet = float32(args[1].Float())
	}
	c.SetMix(wet, 1-wet)
	conv = c

	println("IR loaded:", c.IRLength(), "samples")
	return true
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return 0
	}
	numFrames := min(args[0].Int(), maxFrames)
	if numFrames < 1 {
		return 0
	}

	block := planar
	if numFrames < maxFrames {
		block = make([][]float32, len(planar))
		for ch := range planar {
			block[ch] = planar[ch][:numFrames]
		}
	}
	events = queue.Drain(events[:0])
	engine.ProcessBlock(block, events, store.Snapshot())
	// Partial partitions would be zero padded and drop the wet tail.
	if conv != nil && numFrames%conv.PartSize() == 0 {
		if err := conv.Process(block); err != nil {
			println("room:", err.Error())
		}
	}

	channels := len(block)
	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < channels; ch++ {
			outputBuffer[i*channels+ch] = block[ch][i]
		}
	}

	// Pointer into WASM linear memory.
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
