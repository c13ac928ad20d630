package main

import (
	"fmt"
	"log"
	"time"

	"github.com/rakyll/portmidi"

	"github.com/cwbudde/algo-wavesynth/synth"
)

// defaultKnobs binds controller numbers to parameters, scaled over each
// parameter's range.
var defaultKnobs = map[int]string{
	7:  synth.ParamVolume,
	71: synth.ParamLadderResonance,
	72: synth.ParamRelease,
	73: synth.ParamAttack,
	74: synth.ParamLadderCutoff,
	75: synth.ParamDecay,
	76: synth.ParamLadderDrive,
	79: synth.ParamSustain,
}

// router maps parsed MIDI messages onto the engine queue and knob bindings.
type router struct {
	send    func(synth.Event)
	store   *synth.ParamStore
	knobs   map[int]string
	channel int
}

// route handles one raw message. channel 0 accepts every channel.
func (r *router) route(status, data1, data2 int) {
	ev, ok := synth.ParseMIDI(status, data1, data2)
	if !ok {
		return
	}
	if r.channel != 0 && ev.Channel != r.channel {
		return
	}
	if ev.Kind == synth.EventControlChange {
		if name, bound := r.knobs[ev.Controller]; bound {
			_ = r.store.SetNormalized(name, float32(ev.Value)/127)
			return
		}
	}
	r.send(ev)
}

type midiInput struct {
	stream *portmidi.Stream
	stop   chan struct{}
	done   chan struct{}
}

// openMIDI opens device id, or the default input when id < 0.
func openMIDI(id int, r *router) (*midiInput, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, err
	}
	dev := portmidi.DeviceID(id)
	if id < 0 {
		dev = portmidi.DefaultInputDeviceID()
	}
	if dev < 0 {
		portmidi.Terminate()
		return nil, fmt.Errorf("no MIDI input device")
	}
	in, err := portmidi.NewInputStream(dev, 1024)
	if err != nil {
		portmidi.Terminate()
		return nil, err
	}
	if info := portmidi.Info(dev); info != nil {
		log.Printf("midi: listening on %s", info.Name)
	}

	m := &midiInput{stream: in, stop: make(chan struct{}), done: make(chan struct{})}
	go m.run(r)
	return m, nil
}

func (m *midiInput) run(r *router) {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		default:
		}
		ready, err := m.stream.Poll()
		if err != nil {
			log.Printf("midi: poll: %v", err)
			return
		}
		if !ready {
			time.Sleep(time.Millisecond)
			continue
		}
		events, err := m.stream.Read(1024)
		if err != nil {
			log.Printf("midi: read: %v", err)
			return
		}
		for _, e := range events {
			r.route(int(e.Status), int(e.Data1), int(e.Data2))
		}
	}
}

func (m *midiInput) Close() {
	close(m.stop)
	<-m.done
	_ = m.stream.Close()
	portmidi.Terminate()
}
