// Package synth is the polyphonic voice engine: a fixed voice pool rendering
// wavetable voices additively into the host buffer, followed by one global
// ladder filter. Everything reachable from Engine.ProcessBlock runs without
// allocating, locking or logging.
package synth

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

// Config fixes the engine's shape at construction time.
type Config struct {
	Voices int
	// Channels is the maximum number of output channels per block.
	Channels int
	// InputChannels below this index keep host content; the synth adds to them.
	InputChannels int
	TableSize     int
}

// DefaultConfig returns a stereo, 127-voice engine with 128-point tables.
func DefaultConfig() Config {
	return Config{
		Voices:        DefaultVoices,
		Channels:      2,
		InputChannels: 0,
		TableSize:     dsp.DefaultTableSize,
	}
}

// Engine is the block render pipeline.
type Engine struct {
	cfg    Config
	bank   *dsp.Bank
	pool   *Pool
	filter *FilterStage
	scope  atomic.Pointer[Scope]

	sampleRate   float64
	maxBlockSize int
	prepared     bool
}

// NewEngine builds the wavetable bank and voice arena. Prepare must be
// called before the first ProcessBlock.
func NewEngine(cfg Config) *Engine {
	if cfg.Voices < 1 {
		cfg.Voices = DefaultVoices
	}
	if cfg.Channels < 1 {
		cfg.Channels = 2
	}
	if cfg.InputChannels < 0 {
		cfg.InputChannels = 0
	}
	if cfg.TableSize < 2 {
		cfg.TableSize = dsp.DefaultTableSize
	}
	bank := dsp.NewBank(cfg.TableSize)
	e := &Engine{
		cfg:  cfg,
		bank: bank,
		pool: NewPool(cfg.Voices, bank),
	}
	e.scope.Store(NewScope(0))
	return e
}

// Prepare sizes every buffer for sampleRate and maxBlockSize. It allocates
// and must not run concurrently with ProcessBlock.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) {
	if sampleRate <= 0 {
		panic(fmt.Sprintf("synth: invalid sample rate %v", sampleRate))
	}
	if maxBlockSize < 1 {
		panic(fmt.Sprintf("synth: invalid block size %d", maxBlockSize))
	}
	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.pool.SetSampleRate(sampleRate)
	if e.filter == nil {
		e.filter = NewFilterStage(sampleRate, e.cfg.Channels)
	} else {
		e.filter.Prepare(sampleRate, e.cfg.Channels)
	}
	e.scope.Store(NewScope(maxBlockSize))
	e.prepared = true
}

// ProcessBlock renders one block into buf, whose channels all have the same
// length. events are applied at the start of the block in order; p is the
// parameter snapshot for the whole block.
func (e *Engine) ProcessBlock(buf [][]float32, events []Event, p Params) {
	if !e.prepared {
		panic("synth: ProcessBlock before Prepare")
	}
	if len(buf) == 0 || len(buf) > e.cfg.Channels {
		panic(fmt.Sprintf("synth: %d channels, engine supports 1..%d", len(buf), e.cfg.Channels))
	}
	n := len(buf[0])
	if n > e.maxBlockSize {
		panic(fmt.Sprintf("synth: block of %d exceeds prepared size %d", n, e.maxBlockSize))
	}
	for ch := range buf {
		if len(buf[ch]) != n {
			panic("synth: channel lengths differ")
		}
	}

	for ch := e.cfg.InputChannels; ch < len(buf); ch++ {
		clear(buf[ch])
	}

	e.pool.ApplyParams(p)
	e.filter.Configure(p)

	for _, ev := range events {
		e.pool.HandleEvent(ev)
	}

	e.pool.Render(buf, 0, n)
	e.filter.Process(buf)
	e.scope.Load().Publish(buf[0])
}

// Scope returns the published copy of the last block's first channel.
func (e *Engine) Scope() *Scope {
	return e.scope.Load()
}

// ActiveVoices returns the number of sounding voices.
func (e *Engine) ActiveVoices() int {
	return e.pool.ActiveCount()
}

// SampleRate returns the prepared sample rate, or 0.
func (e *Engine) SampleRate() float64 {
	return e.sampleRate
}

// MaxBlockSize returns the prepared block size, or 0.
func (e *Engine) MaxBlockSize() int {
	return e.maxBlockSize
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Pool exposes the voice pool.
func (e *Engine) Pool() *Pool {
	return e.pool
}

// Filter exposes the filter stage; nil before Prepare.
func (e *Engine) Filter() *FilterStage {
	return e.filter
}

// Bank returns the shared wavetable bank.
func (e *Engine) Bank() *dsp.Bank {
	return e.bank
}
