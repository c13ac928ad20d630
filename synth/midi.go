package synth

// EventKind distinguishes the MIDI messages the engine reacts to.
type EventKind uint8

const (
	EventNoteOn EventKind = iota + 1
	EventNoteOff
	EventControlChange
	EventPitchWheel
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventControlChange:
		return "cc"
	case EventPitchWheel:
		return "pitch-wheel"
	default:
		return "unknown"
	}
}

// Controller numbers with engine-level meaning.
const (
	CCSustainPedal = 64
	CCAllSoundOff  = 120
	CCAllNotesOff  = 123
)

// PitchWheelCenter is the 14-bit pitch wheel rest position.
const PitchWheelCenter = 8192

// Event is one MIDI message. All events of a block are applied at the
// block start, in slice order.
type Event struct {
	Kind    EventKind
	Channel int

	Note     int
	Velocity float32 // 0..1

	Controller int
	Value      int // CC value 0..127 or pitch wheel 0..16383
}

// NoteOn builds a note-on event; velocity is 0..1.
func NoteOn(note int, velocity float32) Event {
	return Event{Kind: EventNoteOn, Note: note, Velocity: velocity}
}

// NoteOff builds a note-off event.
func NoteOff(note int) Event {
	return Event{Kind: EventNoteOff, Note: note}
}

// ControlChange builds a controller event.
func ControlChange(controller, value int) Event {
	return Event{Kind: EventControlChange, Controller: controller, Value: value}
}

// ParseMIDI decodes a channel voice message. Note-on with velocity zero is
// reported as note-off. ok is false for messages the engine ignores.
func ParseMIDI(status, data1, data2 int) (ev Event, ok bool) {
	ev.Channel = status&0x0f + 1
	data1 &= 0x7f
	data2 &= 0x7f
	switch status & 0xf0 {
	case 0x90:
		if data2 == 0 {
			ev.Kind = EventNoteOff
			ev.Note = data1
			return ev, true
		}
		ev.Kind = EventNoteOn
		ev.Note = data1
		ev.Velocity = float32(data2) / 127
		return ev, true
	case 0x80:
		ev.Kind = EventNoteOff
		ev.Note = data1
		ev.Velocity = float32(data2) / 127
		return ev, true
	case 0xb0:
		ev.Kind = EventControlChange
		ev.Controller = data1
		ev.Value = data2
		return ev, true
	case 0xe0:
		ev.Kind = EventPitchWheel
		ev.Value = data2<<7 | data1
		return ev, true
	}
	return Event{}, false
}
