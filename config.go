package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"chipplay/emu"
	"chipplay/emu/log"
)

type Config struct {
	Playback PlaybackConfig `toml:"playback"`

	// Equalizer overrides the equalizer of the file format when set.
	Equalizer *EqualizerConfig `toml:"equalizer,omitempty"`

	Output OutputConfig `toml:"output"`
}

type PlaybackConfig struct {
	SampleRate           int     `toml:"sample_rate"`
	Tempo                float64 `toml:"tempo"`
	Gain                 float64 `toml:"gain"`
	FadeMsec             int     `toml:"fade_ms"`
	IgnoreSilence        bool    `toml:"ignore_silence"`
	MaxInitialSilenceMs  int     `toml:"max_initial_silence_ms"`
	MaxTrailingSilenceMs int     `toml:"max_trailing_silence_ms"`
}

type EqualizerConfig struct {
	Treble     float64 `toml:"treble"`
	TrebleFreq float64 `toml:"treble_freq"`
	Bass       float64 `toml:"bass"`
}

type OutputConfig struct {
	Backend    string `toml:"backend"` // "sdl" or "oto"
	BufferMsec int    `toml:"buffer_ms"`
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "chipplay")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

var defaultConfig = Config{
	Playback: PlaybackConfig{
		SampleRate:           44100,
		Tempo:                1,
		Gain:                 1,
		FadeMsec:             emu.DefaultFade,
		MaxInitialSilenceMs:  emu.DefaultMaxInitialSilence,
		MaxTrailingSilenceMs: emu.DefaultMaxTrailingSilence,
	},
	Output: OutputConfig{
		Backend:    "sdl",
		BufferMsec: 100,
	},
}

const cfgFilename = "config.toml"

func configPath(path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration at path, or in the chipplay
// config directory if path is empty. Missing settings keep their default
// value.
func LoadConfigOrDefault(path string) Config {
	cfg := defaultConfig
	path = configPath(path)
	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		log.ModEmu.InfoZ("loaded config").String("path", path).End()
	case errors.Is(err, fs.ErrNotExist):
		return defaultConfig
	default:
		log.ModEmu.WarnZ("invalid config, using defaults").String("path", path).Error("err", err).End()
		return defaultConfig
	}
	return cfg
}

// SaveConfig into path, or into the chipplay config directory if path is
// empty.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(path), buf, 0644)
}

// playerOptions returns the options of the players created with cfg.
func (cfg *Config) playerOptions() []emu.Option {
	return []emu.Option{
		emu.WithGain(cfg.Playback.Gain),
		emu.WithMaxInitialSilence(cfg.Playback.MaxInitialSilenceMs),
		emu.WithMaxTrailingSilence(cfg.Playback.MaxTrailingSilenceMs),
	}
}

// openPlayer opens the music file at path and sets the player up.
func openPlayer(path string, cfg *Config) (*emu.Player, error) {
	p, err := emu.OpenFile(path, cfg.playerOptions()...)
	if err != nil {
		return nil, err
	}
	if err := p.SetSampleRate(cfg.Playback.SampleRate); err != nil {
		return nil, err
	}
	p.SetTempo(cfg.Playback.Tempo)
	p.IgnoreSilence(cfg.Playback.IgnoreSilence)
	if eq := cfg.Equalizer; eq != nil {
		p.SetEqualizer(emu.Equalizer{
			Treble:     eq.Treble,
			TrebleFreq: eq.TrebleFreq,
			Bass:       eq.Bass,
		})
	}
	return p, nil
}

// startTrack starts track n, fading it out at the end of its play length.
func startTrack(p *emu.Player, n int, cfg *Config) (emu.TrackInfo, error) {
	info, err := p.TrackInfo(n)
	if err != nil {
		return info, err
	}
	if err := p.StartTrack(n); err != nil {
		return info, err
	}

	fade := info.Fade
	if fade < 0 {
		fade = cfg.Playback.FadeMsec
	}
	p.SetFade(info.PlayLength, fade)
	return info, nil
}
