package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadAppliesAllSections(t *testing.T) {
	path := writePreset(t, `{
  "wave_type": "saw",
  "attack": 0.2,
  "decay": 0.3,
  "sustain": 0.6,
  "release": 1.5,
  "volume": 0.8,
  "filter": {
    "enabled": true,
    "mode": "LPF24",
    "cutoff_hz": 1200,
    "resonance": 0.4,
    "drive": 2.5
  },
  "voices": 16,
  "table_size": 2048,
  "ir_wav_path": "room.wav",
  "ir_wet_mix": 0.5
}`)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	prm := p.Params
	if prm.WaveType != dsp.WaveSaw || prm.Attack != 0.2 || prm.Decay != 0.3 || prm.Sustain != 0.6 ||
		prm.Release != 1.5 || prm.Volume != 0.8 {
		t.Fatalf("voice fields mismatch: %+v", prm)
	}
	if !prm.FilterEnabled || prm.FilterMode != dsp.LPF24 || prm.Cutoff != 1200 || prm.Resonance != 0.4 || prm.Drive != 2.5 {
		t.Fatalf("filter fields mismatch: %+v", prm)
	}
	if p.Config.Voices != 16 || p.Config.TableSize != 2048 {
		t.Fatalf("config mismatch: %+v", p.Config)
	}
	if want := filepath.Join(filepath.Dir(path), "room.wav"); p.IRWavPath != want || p.IRWetMix != 0.5 {
		t.Fatalf("ir mismatch: path=%q mix=%f", p.IRWavPath, p.IRWetMix)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := writePreset(t, `{"release": 2}`)
	prm, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	want := Default().Params
	want.Release = 2
	if *prm != want {
		t.Fatalf("got %+v want %+v", *prm, want)
	}
}

func TestLoadAppliesRawParams(t *testing.T) {
	path := writePreset(t, `{"attack": 0.5, "params": {"ladderbutton": 1, "laddermode": 3, "attack": 0.9}}`)
	prm, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if !prm.FilterEnabled || prm.FilterMode != dsp.LPF24 || prm.Attack != 0.9 {
		t.Fatalf("raw params not applied: %+v", *prm)
	}
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad json", `{"attack": `},
		{"unknown wave", `{"wave_type": "noise"}`},
		{"unknown mode", `{"filter": {"mode": "notch"}}`},
		{"attack range", `{"attack": 5}`},
		{"cutoff range", `{"filter": {"cutoff_hz": 0}}`},
		{"drive range", `{"filter": {"drive": 0.5}}`},
		{"voices", `{"voices": 0}`},
		{"table size", `{"table_size": 1}`},
		{"wet mix", `{"ir_wet_mix": 2}`},
		{"unknown param", `{"params": {"pan": 0.5}}`},
		{"param range", `{"params": {"volume": 3}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writePreset(t, tc.content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
