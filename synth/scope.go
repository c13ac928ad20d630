package synth

import (
	"math"
	"sync/atomic"
)

// Scope holds a copy of the last rendered block of channel 0 for a display
// running on another goroutine. The audio thread overwrites it wholesale;
// readers may see a mix of two consecutive blocks.
type Scope struct {
	samples []atomic.Uint32
	n       atomic.Int64
	blocks  atomic.Uint64
}

// NewScope allocates room for capacity samples.
func NewScope(capacity int) *Scope {
	if capacity < 0 {
		capacity = 0
	}
	return &Scope{samples: make([]atomic.Uint32, capacity)}
}

// Publish copies src (truncated to capacity) and bumps the block counter.
func (s *Scope) Publish(src []float32) {
	n := len(src)
	if n > len(s.samples) {
		n = len(s.samples)
	}
	for i := 0; i < n; i++ {
		s.samples[i].Store(math.Float32bits(src[i]))
	}
	s.n.Store(int64(n))
	s.blocks.Add(1)
}

// Snapshot copies the latest block into dst, reusing its storage.
func (s *Scope) Snapshot(dst []float32) []float32 {
	n := int(s.n.Load())
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, math.Float32frombits(s.samples[i].Load()))
	}
	return dst
}

// Len returns the length of the latest block.
func (s *Scope) Len() int { return int(s.n.Load()) }

// Cap returns the capacity.
func (s *Scope) Cap() int { return len(s.samples) }

// Blocks counts published blocks.
func (s *Scope) Blocks() uint64 { return s.blocks.Load() }
