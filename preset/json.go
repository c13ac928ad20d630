package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/algo-wavesynth/dsp"
	"github.com/cwbudde/algo-wavesynth/synth"
)

// File is the JSON schema for synth presets. Every field is optional and
// overrides the defaults only when present.
type File struct {
	WaveType *string        `json:"wave_type"`
	Attack   *float32       `json:"attack"`
	Decay    *float32       `json:"decay"`
	Sustain  *float32       `json:"sustain"`
	Release  *float32       `json:"release"`
	Volume   *float32       `json:"volume"`
	Filter   *FilterSetting `json:"filter"`

	Voices    *int `json:"voices"`
	TableSize *int `json:"table_size"`

	IRWavPath string   `json:"ir_wav_path"`
	IRWetMix  *float32 `json:"ir_wet_mix"`

	// Params holds raw parameter-store values keyed by name, applied last.
	Params map[string]float32 `json:"params"`
}

// FilterSetting is the ladder section of a preset file.
type FilterSetting struct {
	Enabled   *bool    `json:"enabled"`
	Mode      *string  `json:"mode"`
	CutoffHz  *float32 `json:"cutoff_hz"`
	Resonance *float32 `json:"resonance"`
	Drive     *float32 `json:"drive"`
}

// Preset is a resolved preset: the parameter snapshot, engine shape and
// optional room IR.
type Preset struct {
	Params    synth.Params
	Config    synth.Config
	IRWavPath string
	IRWetMix  float32
}

// Default returns the factory preset.
func Default() *Preset {
	return &Preset{
		Params:   synth.DefaultParams(),
		Config:   synth.DefaultConfig(),
		IRWetMix: 0.3,
	}
}

// Load reads a preset file and applies it on top of Default. A relative
// IR path is resolved against the preset's directory.
func Load(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := Default()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.IRWavPath != "" && !filepath.IsAbs(p.IRWavPath) {
		base := filepath.Dir(path)
		p.IRWavPath = filepath.Clean(filepath.Join(base, p.IRWavPath))
	}
	return p, nil
}

// LoadJSON loads only the parameter snapshot of a preset file.
func LoadJSON(path string) (*synth.Params, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &p.Params, nil
}

func checkRange(name string, v float32) error {
	min, max, _, err := synth.ParamRange(name)
	if err != nil {
		return err
	}
	if v < min || v > max {
		return fmt.Errorf("%s must be in [%g,%g], got %g", name, min, max, v)
	}
	return nil
}

type floatField struct {
	name string
	src  *float32
	dst  *float32
}

// ApplyFile applies a parsed preset file onto an existing preset.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}
	p := &dst.Params

	if f.WaveType != nil {
		w, err := dsp.ParseWaveType(*f.WaveType)
		if err != nil {
			return err
		}
		p.WaveType = w
	}
	floats := []floatField{
		{synth.ParamAttack, f.Attack, &p.Attack},
		{synth.ParamDecay, f.Decay, &p.Decay},
		{synth.ParamSustain, f.Sustain, &p.Sustain},
		{synth.ParamRelease, f.Release, &p.Release},
		{synth.ParamVolume, f.Volume, &p.Volume},
	}
	if fs := f.Filter; fs != nil {
		if fs.Enabled != nil {
			p.FilterEnabled = *fs.Enabled
		}
		if fs.Mode != nil {
			m, err := dsp.ParseLadderMode(*fs.Mode)
			if err != nil {
				return err
			}
			p.FilterMode = m
		}
		floats = append(floats,
			floatField{synth.ParamLadderCutoff, fs.CutoffHz, &p.Cutoff},
			floatField{synth.ParamLadderResonance, fs.Resonance, &p.Resonance},
			floatField{synth.ParamLadderDrive, fs.Drive, &p.Drive},
		)
	}
	for _, fl := range floats {
		if fl.src == nil {
			continue
		}
		if err := checkRange(fl.name, *fl.src); err != nil {
			return err
		}
		*fl.dst = *fl.src
	}

	if f.Voices != nil {
		if *f.Voices < 1 || *f.Voices > 1024 {
			return fmt.Errorf("voices must be in [1,1024], got %d", *f.Voices)
		}
		dst.Config.Voices = *f.Voices
	}
	if f.TableSize != nil {
		if *f.TableSize < 2 {
			return fmt.Errorf("table_size must be >= 2, got %d", *f.TableSize)
		}
		dst.Config.TableSize = *f.TableSize
	}
	if f.IRWavPath != "" {
		dst.IRWavPath = strings.TrimSpace(f.IRWavPath)
	}
	if f.IRWetMix != nil {
		if *f.IRWetMix < 0 || *f.IRWetMix > 1 {
			return fmt.Errorf("ir_wet_mix must be in [0,1]")
		}
		dst.IRWetMix = *f.IRWetMix
	}

	if len(f.Params) == 0 {
		return nil
	}
	store := synth.NewParamStore()
	store.Load(*p)
	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := checkRange(k, f.Params[k]); err != nil {
			return fmt.Errorf("params: %w", err)
		}
		if err := store.Set(k, f.Params[k]); err != nil {
			return fmt.Errorf("params: %w", err)
		}
	}
	*p = store.Snapshot()
	return nil
}
