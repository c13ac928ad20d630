package synth

import "sync/atomic"

// EventQueue is a bounded single-producer single-consumer ring. One goroutine
// pushes (MIDI reader, keyboard) while the audio callback drains.
type EventQueue struct {
	buf  []Event
	mask uint64
	head atomic.Uint64 // next read
	tail atomic.Uint64 // next write
}

// NewEventQueue allocates a queue holding at least capacity events.
func NewEventQueue(capacity int) *EventQueue {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &EventQueue{buf: make([]Event, n), mask: uint64(n - 1)}
}

// Push appends e. It reports false when the queue is full.
func (q *EventQueue) Push(e Event) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = e
	q.tail.Store(tail + 1)
	return true
}

// Drain appends pending events to dst without growing it past its capacity
// and returns the extended slice. Events that do not fit stay queued.
func (q *EventQueue) Drain(dst []Event) []Event {
	head := q.head.Load()
	tail := q.tail.Load()
	for head != tail && len(dst) < cap(dst) {
		dst = append(dst, q.buf[head&q.mask])
		head++
	}
	q.head.Store(head)
	return dst
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}
