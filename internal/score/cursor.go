package score

import (
	"math"

	"github.com/cwbudde/algo-wavesynth/synth"
)

// Cursor walks a score block by block.
type Cursor struct {
	score      *Score
	sampleRate float64
	next       int
	pos        int64
	end        int64
}

// Cursor returns a cursor at time zero for sampleRate.
func (s *Score) Cursor(sampleRate float64) *Cursor {
	return &Cursor{
		score:      s,
		sampleRate: sampleRate,
		end:        int64(math.Ceil(s.Duration() * sampleRate)),
	}
}

func (c *Cursor) sampleOf(t float64) int64 {
	return int64(math.Round(t * c.sampleRate))
}

// Next advances by n samples. Events starting inside the block are appended
// to events; parameter changes are written into store. Both are applied at
// the block start, the engine's timing granularity.
func (c *Cursor) Next(n int, events []synth.Event, store *synth.ParamStore) []synth.Event {
	limit := c.pos + int64(n)
	for c.next < len(c.score.Entries) {
		e := c.score.Entries[c.next]
		if c.sampleOf(e.Time) >= limit {
			break
		}
		if e.IsParam() {
			if store != nil {
				// Names were validated when the script ran.
				_ = store.Set(e.Param, e.Value)
			}
		} else {
			events = append(events, e.Event)
		}
		c.next++
	}
	c.pos = limit
	return events
}

// Position returns the number of samples consumed.
func (c *Cursor) Position() int64 { return c.pos }

// TotalSamples returns the score duration in samples.
func (c *Cursor) TotalSamples() int64 { return c.end }

// Done reports whether the whole score, tail included, has been consumed.
func (c *Cursor) Done() bool {
	return c.next >= len(c.score.Entries) && c.pos >= c.end
}
