// Package wavio reads and writes PCM WAV files and converts sample rates
// for the offline tools.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAV decodes path into one float32 slice per channel.
func ReadWAV(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([][]float32, ch)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < ch; c++ {
			out[c][i] = float32(buf.Data[i*ch+c])
		}
	}
	return out, buf.Format.SampleRate, nil
}

// WriteWAV writes interleaved samples as 16-bit PCM, creating parent
// directories as needed.
func WriteWAV(path string, interleaved []float32, sampleRate, channels int) error {
	if channels < 1 {
		return fmt.Errorf("invalid channel count %d", channels)
	}
	if len(interleaved)%channels != 0 {
		return fmt.Errorf("%d samples do not split into %d channels", len(interleaved), channels)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           interleaved,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}
	return nil
}

// Interleave packs equally long channels frame by frame.
func Interleave(chs [][]float32) []float32 {
	if len(chs) == 0 {
		return nil
	}
	n := len(chs[0])
	out := make([]float32, n*len(chs))
	for i := 0; i < n; i++ {
		for c, ch := range chs {
			out[i*len(chs)+c] = ch[i]
		}
	}
	return out
}

// Deinterleave splits frame-packed samples into channels.
func Deinterleave(interleaved []float32, channels int) [][]float32 {
	if channels < 1 {
		return nil
	}
	n := len(interleaved) / channels
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, n)
		for i := 0; i < n; i++ {
			out[c][i] = interleaved[i*channels+c]
		}
	}
	return out
}
