package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/cwbudde/algo-wavesynth/internal/room"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	blockSize := flag.Int("block-size", 256, "Render block size in frames")
	voices := flag.Int("voices", 0, "Voice count override (0 = preset)")
	irPath := flag.String("ir", "", "Room IR WAV path (optional)")
	roomT60 := flag.Float64("room-t60", 0, "Synthetic room T60 in seconds when no IR is set (0 = off)")
	useMIDI := flag.Bool("midi", true, "Read the MIDI input device")
	midiDevice := flag.Int("midi-device", -1, "MIDI input device ID (-1 = default)")
	midiChannel := flag.Int("midi-channel", 0, "MIDI channel 1-16 (0 = all)")
	gate := flag.Duration("gate", 300*time.Millisecond, "Note length for computer-keyboard notes")
	flag.Parse()

	p := preset.Default()
	if *presetPath != "" {
		var err error
		if p, err = preset.Load(*presetPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
	}
	if *voices > 0 {
		p.Config.Voices = *voices
	}
	if *irPath != "" {
		p.IRWavPath = *irPath
	}

	eng := synth.NewEngine(p.Config)
	eng.Prepare(float64(*sampleRate), *blockSize)
	store := synth.NewParamStore()
	store.Load(p.Params)
	queue := synth.NewEventQueue(1024)
	snd := &sender{queue: queue}

	var conv *room.Convolver
	if p.IRWavPath != "" || *roomT60 > 0 {
		var err error
		conv, err = room.New(*sampleRate, p.Config.Channels, room.DefaultPartSize)
		if err == nil && p.IRWavPath != "" {
			err = conv.LoadIR(p.IRWavPath)
		} else if err == nil {
			rc := room.DefaultRoomConfig()
			rc.LowT60S = *roomT60
			rc.HighT60S = min(rc.HighT60S, *roomT60)
			err = conv.SetRoom(rc)
		}
		if err == nil && *blockSize%conv.PartSize() != 0 {
			err = fmt.Errorf("block size %d is not a multiple of partition size %d", *blockSize, conv.PartSize())
		}
		if err != nil {
			log.Printf("room: %v; continuing dry", err)
			conv = nil
		} else {
			conv.SetMix(p.IRWetMix, 1-p.IRWetMix)
		}
	}

	h := newHost(eng, store, queue, conv)
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: p.Config.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(2 * *blockSize * int(time.Second) / *sampleRate),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready
	player := ctx.NewPlayer(h)
	player.Play()
	defer player.Close()

	if *useMIDI {
		r := &router{send: snd.Send, store: store, knobs: defaultKnobs, channel: *midiChannel}
		in, err := openMIDI(*midiDevice, r)
		if err != nil {
			log.Printf("midi: %v; keyboard only", err)
		} else {
			defer in.Close()
		}
	}

	status, err := newStatusLine(eng.Scope, float64(*sampleRate), 1024)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = term.Restore(fd, old) }()

	fmt.Printf("%s\r\n", keyHelp)
	keys := make(chan byte, 16)
	go func() {
		b := make([]byte, 1)
		for {
			if n, err := os.Stdin.Read(b); err != nil {
				close(keys)
				return
			} else if n == 1 {
				keys <- b[0]
			}
		}
	}()

	kb := newKeyboard(snd.Send, store, *gate)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case b, ok := <-keys:
			if !ok || kb.handle(b) {
				fmt.Print("\r\n")
				if n := snd.dropped.Load(); n > 0 {
					log.Printf("dropped %d events on a full queue\r", n)
				}
				if n := h.errs.Load(); n > 0 {
					log.Printf("room convolver failed on %d blocks\r", n)
				}
				return
			}
		case <-tick.C:
			status.write(os.Stdout, h.ActiveVoices(), h.Pedal(), store.Snapshot())
		}
	}
}
