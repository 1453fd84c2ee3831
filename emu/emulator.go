// Package emu plays the tracks of game music files. A Player wraps the
// emulator of one file and turns it into a stream of 16-bit stereo PCM,
// with silence detection, fading, equalization and seeking.
package emu

import (
	"bytes"
	"errors"
	"fmt"

	"chipplay/hw/audio"
	"chipplay/hw/hwdefs"
	"chipplay/nsf"
	"chipplay/zxay"
)

type (
	System   = hwdefs.System
	TrackSet = hwdefs.TrackSet
	Track    = hwdefs.Track
)

const (
	NES      = hwdefs.NES
	Spectrum = hwdefs.Spectrum
)

// Emulator is the hardware of a music format: a CPU running the driver code
// of the file, and the sound chips it writes to. The formats are *nsf.Emu
// and *zxay.Emu.
type Emulator interface {
	Info() TrackSet
	VoiceNames() []string

	// SetSampleRate creates the mixer outputs of the voices, in voice
	// order.
	SetSampleRate(rate int, m *audio.Mixer)

	// SetVoice connects voice i to o. A nil output mutes the voice.
	SetVoice(i int, o *audio.Output)
	SetTempo(t float64)

	// StartTrack resets the hardware and starts track n of the file.
	StartTrack(n int) error

	// RunClocks emulates at least d clocks and ends the sound chips frame.
	// It returns the length of the frame.
	RunClocks(d int) (int, error)
	ClockRate() float64

	// Warning returns and clears the most recent warning.
	Warning() string
}

var (
	_ Emulator = (*nsf.Emu)(nil)
	_ Emulator = (*zxay.Emu)(nil)
)

// Format specific settings.
type format struct {
	eq        Equalizer
	lookahead int
}

var formats = map[System]format{
	NES:      {eq: Equalizer{Treble: -1, TrebleFreq: DefaultTrebleFreq, Bass: 80}, lookahead: 6},
	Spectrum: {eq: Equalizer{Treble: 0, TrebleFreq: DefaultTrebleFreq, Bass: 1}, lookahead: 6},
}

var (
	errShort = errors.New("file too small")
)

// NewEmulator identifies the format of data from its magic tag and creates
// its emulator.
func NewEmulator(data []byte) (Emulator, error) {
	switch {
	case bytes.HasPrefix(data, []byte(nsf.Magic)), bytes.HasPrefix(data, []byte(nsf.MagicNSFE)):
		f, err := nsf.Parse(data)
		if err != nil {
			return nil, err
		}
		return nsf.New(f), nil
	case bytes.HasPrefix(data, []byte(zxay.Magic)):
		f, err := zxay.Parse(data)
		if err != nil {
			return nil, err
		}
		return zxay.New(f), nil
	case len(data) < 4:
		return nil, fmt.Errorf("%w: %w", ErrFileType, errShort)
	}
	return nil, fmt.Errorf("%w: unknown tag %q", ErrFileType, data[:min(len(data), 8)])
}
