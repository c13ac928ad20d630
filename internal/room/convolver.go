// Package room adds a convolution reverb to rendered audio, using an
// impulse response loaded from WAV or synthesized from a room description.
package room

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-wavesynth/internal/wavio"
)

// DefaultPartSize is the convolution partition length in samples.
const DefaultPartSize = 128

// Convolver runs one streaming overlap-add convolution per channel and
// mixes the result with the dry signal.
type Convolver struct {
	sampleRate int
	partSize   int
	irLen      int

	ola []*dspconv.StreamingOverlapAddT[float32, complex64]

	// Pre-allocated part buffers.
	block  []float32
	wetOut []float32

	wet float32
	dry float32
}

// New creates a convolver for channels at sampleRate with an identity IR,
// fully wet.
func New(sampleRate, channels, partSize int) (*Convolver, error) {
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if partSize < 1 {
		partSize = DefaultPartSize
	}
	c := &Convolver{
		sampleRate: sampleRate,
		partSize:   partSize,
		ola:        make([]*dspconv.StreamingOverlapAddT[float32, complex64], channels),
		block:      make([]float32, partSize),
		wetOut:     make([]float32, partSize),
		wet:        1,
	}
	if err := c.SetIR([][]float32{{1}}); err != nil {
		return nil, err
	}
	return c, nil
}

// SetIR installs impulse responses. With fewer IRs than channels the
// last IR is reused for the remaining channels.
func (c *Convolver) SetIR(irs [][]float32) error {
	if len(irs) == 0 {
		return fmt.Errorf("no impulse response")
	}
	ola := make([]*dspconv.StreamingOverlapAddT[float32, complex64], len(c.ola))
	irLen := 0
	for ch := range ola {
		ir := irs[min(ch, len(irs)-1)]
		if len(ir) == 0 {
			ir = []float32{1}
		}
		o, err := dspconv.NewStreamingOverlapAdd32(ir, c.partSize)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		ola[ch] = o
		irLen = max(irLen, len(ir))
	}
	c.ola = ola
	c.irLen = irLen
	c.Reset()
	return nil
}

// LoadIR reads a mono or multichannel IR and resamples it to the
// convolver's rate.
func (c *Convolver) LoadIR(path string) error {
	chs, srcRate, err := wavio.ReadWAV(path)
	if err != nil {
		return err
	}
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	if len(chs[0]) == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}
	for i := range chs {
		chs[i], err = wavio.Resample32(chs[i], srcRate, c.sampleRate)
		if err != nil {
			return fmt.Errorf("resample %s: %w", path, err)
		}
	}
	return c.SetIR(chs)
}

// SetMix sets the wet and dry gains.
func (c *Convolver) SetMix(wet, dry float32) {
	c.wet = wet
	c.dry = dry
}

// IRLength returns the longest installed IR in samples.
func (c *Convolver) IRLength() int { return c.irLen }

// PartSize returns the partition length.
func (c *Convolver) PartSize() int { return c.partSize }

// Process convolves every channel in place. Channels beyond the configured
// count pass through. A trailing partial part is zero padded and its wet
// overlap is lost, so streaming callers must pass multiples of PartSize;
// only the last call of a stream may be shorter.
func (c *Convolver) Process(buf [][]float32) error {
	for ch := range buf {
		if ch >= len(c.ola) {
			break
		}
		x := buf[ch]
		for start := 0; start < len(x); start += c.partSize {
			end := min(start+c.partSize, len(x))
			n := copy(c.block, x[start:end])
			clear(c.block[n:])
			if err := c.ola[ch].ProcessBlockTo(c.wetOut, c.block); err != nil {
				return fmt.Errorf("convolve channel %d: %w", ch, err)
			}
			for i := 0; i < n; i++ {
				x[start+i] = c.dry*x[start+i] + c.wet*c.wetOut[i]
			}
		}
	}
	return nil
}

// Reset clears convolution history.
func (c *Convolver) Reset() {
	for _, o := range c.ola {
		if o != nil {
			o.Reset()
		}
	}
}
