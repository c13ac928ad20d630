package main

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/synth"
)

// host renders the engine on demand for the audio device. Read is called
// from the device goroutine only.
type host struct {
	eng   *synth.Engine
	store *synth.ParamStore
	queue *synth.EventQueue
	conv  *room.Convolver

	channels int
	buf      [][]float32
	events   []synth.Event
	pending  []byte
	off      int

	active atomic.Int32
	pedal  atomic.Bool
	errs   atomic.Int64
}

func newHost(eng *synth.Engine, store *synth.ParamStore, queue *synth.EventQueue, conv *room.Convolver) *host {
	cfg := eng.Config()
	h := &host{
		eng:      eng,
		store:    store,
		queue:    queue,
		conv:     conv,
		channels: cfg.Channels,
		buf:      make([][]float32, cfg.Channels),
		events:   make([]synth.Event, 0, 256),
		pending:  make([]byte, 0, eng.MaxBlockSize()*cfg.Channels*4),
	}
	for ch := range h.buf {
		h.buf[ch] = make([]float32, eng.MaxBlockSize())
	}
	return h
}

func (h *host) renderBlock() {
	h.events = h.queue.Drain(h.events[:0])
	h.eng.ProcessBlock(h.buf, h.events, h.store.Snapshot())
	if h.conv != nil {
		if err := h.conv.Process(h.buf); err != nil {
			h.errs.Add(1)
		}
	}
	h.active.Store(int32(h.eng.ActiveVoices()))
	h.pedal.Store(h.eng.Pool().SustainPedal())

	n := len(h.buf[0])
	h.pending = h.pending[:n*h.channels*4]
	for i := 0; i < n; i++ {
		for ch := 0; ch < h.channels; ch++ {
			v := max(-1, min(1, h.buf[ch][i]))
			binary.LittleEndian.PutUint32(h.pending[(i*h.channels+ch)*4:], math.Float32bits(v))
		}
	}
	h.off = 0
}

// Read fills p with interleaved float32 little-endian frames.
func (h *host) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if h.off >= len(h.pending) {
			h.renderBlock()
		}
		c := copy(p[n:], h.pending[h.off:])
		h.off += c
		n += c
	}
	return n, nil
}

// ActiveVoices returns the voice count after the last rendered block.
func (h *host) ActiveVoices() int { return int(h.active.Load()) }

// Pedal reports the sustain pedal after the last rendered block.
func (h *host) Pedal() bool { return h.pedal.Load() }

// sender serializes event producers in front of the single-producer queue.
type sender struct {
	mu      sync.Mutex
	queue   *synth.EventQueue
	dropped atomic.Int64
}

func (s *sender) Send(e synth.Event) {
	s.mu.Lock()
	ok := s.queue.Push(e)
	s.mu.Unlock()
	if !ok {
		s.dropped.Add(1)
	}
}
