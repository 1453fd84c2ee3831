package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"chipplay/emu/log"
	"chipplay/hw/audio"
	"chipplay/loader"
	"chipplay/m3u"
)

const (
	DefaultFade               = 8000  // ms
	DefaultMaxInitialSilence  = 21000 // ms
	DefaultMaxTrailingSilence = 6000  // ms

	MinTempo = 0.02
	MaxTempo = 4.0

	// The emulator runs by frames of 1/framesPerSec s.
	framesPerSec = 50
	mixerMsec    = 100

	// Skips longer than this mute the voices.
	skipThreshold = 32768
)

// Option configures a Player.
type Option func(*Player)

// WithGain sets the overall gain. It must be set before the sample rate.
func WithGain(g float64) Option {
	return func(p *Player) { p.gain = g }
}

// WithMaxInitialSilence sets how much silence is skipped at the start of a
// track, in ms.
func WithMaxInitialSilence(ms int) Option {
	return func(p *Player) { p.maxInitial = ms }
}

// WithMaxTrailingSilence sets how long a silence ends a track, in ms.
func WithMaxTrailingSilence(ms int) Option {
	return func(p *Player) { p.maxSilence = ms }
}

// A Player plays the tracks of a music file. Its methods must not be called
// concurrently.
type Player struct {
	emu    Emulator
	info   TrackSet
	format format

	gain       float64
	maxInitial int // ms
	maxSilence int // ms

	rate   int
	mixer  *audio.Mixer
	filter *trackFilter
	eq     Equalizer
	eqf    eqFilter

	ignoreSilence bool
	tempo         float64
	muteMask      int
	track         int // current track, -1 if none
	warning       string
	closed        bool

	playlist *m3u.Playlist
}

// Open creates a player for the music file held in data.
func Open(data []byte, opts ...Option) (*Player, error) {
	e, err := NewEmulator(data)
	if err != nil {
		return nil, err
	}
	return New(e, opts...), nil
}

// OpenFile creates a player for the music file at path, which may also be
// an archive holding it. The playlist found next to the file, with the same
// name and the .m3u extension, is loaded.
func OpenFile(path string, opts ...Option) (*Player, error) {
	data, _, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := Open(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m3uPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".m3u"
	switch err := p.LoadM3UFile(m3uPath); {
	case err == nil:
		log.ModEmu.InfoZ("loaded playlist").String("path", m3uPath).End()
	case errors.Is(err, fs.ErrNotExist):
	default:
		p.setWarning(fmt.Sprintf("Can't load m3u: %v", err))
	}
	return p, nil
}

// New creates a player for the emulator e.
func New(e Emulator, opts ...Option) *Player {
	p := &Player{
		emu:        e,
		info:       e.Info(),
		gain:       1,
		maxInitial: DefaultMaxInitialSilence,
		maxSilence: DefaultMaxTrailingSilence,
		tempo:      1,
		track:      -1,
	}
	p.format = formats[p.info.System]
	p.eq = p.format.eq
	for _, opt := range opts {
		opt(p)
	}
	p.pollWarning()
	return p
}

// Info returns the information of the file header.
func (p *Player) Info() TrackSet { return p.info }

func (p *Player) System() System { return p.info.System }

// SetSampleRate sets the output sample rate. It can only be called once,
// before starting a track.
func (p *Player) SetSampleRate(rate int) error {
	switch {
	case p.closed:
		return ErrClosed
	case p.mixer != nil:
		return ErrSampleRateSet
	case rate < audio.MinSampleRate || rate > audio.MaxSampleRate:
		return fmt.Errorf("%w: %d", ErrBadSampleRate, rate)
	}

	p.rate = rate
	p.mixer = audio.NewMixer(rate, mixerMsec, p.gain)
	p.emu.SetSampleRate(rate, p.mixer)
	p.eqf.setup(p.eq, rate)

	p.filter = newTrackFilter(p, filterSetup{
		maxInitial: p.msecToFrames(p.maxInitial),
		maxSilence: p.msecToFrames(p.maxSilence),
		lookahead:  max(1, p.format.lookahead),
	})
	p.filter.ignoreSilence = p.ignoreSilence
	p.emu.SetTempo(p.tempo)
	p.applyMute(p.muteMask)

	log.ModEmu.DebugZ("sample rate").
		Int("rate", rate).
		Int("frame", p.frameClocks()).
		End()
	return nil
}

func (p *Player) SampleRate() int { return p.rate }

// TrackCount returns the number of tracks, which is the number of entries
// of the playlist when one is loaded.
func (p *Player) TrackCount() int {
	if p.playlist != nil {
		return len(p.playlist.Entries)
	}
	return p.info.Count
}

// remapTrack returns the track of the file played for track n.
func (p *Player) remapTrack(n int) (int, error) {
	if n < 0 || n >= p.TrackCount() {
		return 0, fmt.Errorf("%w: %d", ErrBadTrack, n)
	}
	if p.playlist == nil {
		return n, nil
	}

	e := p.playlist.Entries[n]
	raw := 0
	if e.Track >= 0 {
		raw = e.Track
		if e.Decimal {
			raw--
		}
	}
	if raw < 0 || raw >= p.info.Count {
		return 0, fmt.Errorf("%w: invalid track %d in m3u playlist", ErrBadTrack, e.Track)
	}
	return raw, nil
}

// StartTrack starts track n, skipping its initial silence.
func (p *Player) StartTrack(n int) error {
	switch {
	case p.closed:
		return ErrClosed
	case p.mixer == nil:
		return ErrNoSampleRate
	}
	raw, err := p.remapTrack(n)
	if err != nil {
		return err
	}

	p.warning = ""
	p.track = -1
	p.filter.stop()
	p.mixer.Clear()
	p.eqf.reset()
	if err := p.emu.StartTrack(raw); err != nil {
		return err
	}
	p.track = n
	p.pollWarning()

	log.ModEmu.InfoZ("start track").Int("track", n).Int("raw", raw).End()

	if err := p.filter.startTrack(); err != nil {
		p.setWarning(err.Error())
	}
	return nil
}

func (p *Player) CurrentTrack() int { return p.track }

func (p *Player) playing() error {
	switch {
	case p.closed:
		return ErrClosed
	case p.track < 0:
		return ErrNoTrack
	}
	return nil
}

// Play fills out with len(out)/2 stereo frames. len(out) must be even.
func (p *Player) Play(out []int16) error {
	if err := p.playing(); err != nil {
		return err
	}
	if len(out)%2 != 0 {
		return ErrOddCount
	}
	if err := p.filter.play(out); err != nil {
		p.setWarning(err.Error())
	}
	return nil
}

// frameClocks returns the length of an emulation frame. It follows the
// clock rate, which a track may change by switching hardware.
func (p *Player) frameClocks() int {
	return int(p.emu.ClockRate() / framesPerSec)
}

// play implements source. It runs the emulator by frames until out is full.
func (p *Player) play(out []int16) error {
	frames := len(out) / 2
	pos := 0
	for {
		pos += p.mixer.ReadSamples(out[pos*2:])
		if pos >= frames {
			break
		}
		clocks, err := p.emu.RunClocks(p.frameClocks())
		p.mixer.EndFrame(clocks)
		p.pollWarning()
		if err != nil {
			clear(out[pos*2:])
			return err
		}
	}
	p.eqf.apply(out)
	return nil
}

// skip implements source.
func (p *Player) skip(count int) error {
	if count > skipThreshold {
		// Run most of a long skip muted, leaving enough to be played
		// normally for the voices to settle.
		saved := p.muteMask
		p.applyMute(^0)
		n := (count - skipThreshold/2) &^ (bufFrames - 1)
		count -= n
		err := p.filter.skipBlocks(n)
		p.applyMute(saved)
		if err != nil {
			return err
		}
	}
	return p.filter.skipBlocks(count)
}

func (p *Player) msecToFrames(ms int) int {
	sec := ms / 1000
	ms -= sec * 1000
	return sec*p.rate + ms*p.rate/1000
}

// Tell returns the output position in the track, in ms.
func (p *Player) Tell() int {
	if p.filter == nil || p.track < 0 {
		return 0
	}
	t := p.filter.outTime
	sec := t / p.rate
	return sec*1000 + (t-sec*p.rate)*1000/p.rate
}

// Seek moves to ms in the current track. Seeking backwards restarts the
// track.
func (p *Player) Seek(ms int) error {
	if err := p.playing(); err != nil {
		return err
	}
	if ms == p.Tell() {
		return nil
	}

	target := p.msecToFrames(max(0, ms))
	if target < p.filter.outTime {
		start, step := p.filter.fadeStart, p.filter.fadeStep
		if err := p.StartTrack(p.track); err != nil {
			return err
		}
		p.filter.fadeStart, p.filter.fadeStep = start, step
	}
	return p.Skip(target - p.filter.outTime)
}

// Skip advances the current track by count stereo frames, without
// producing them.
func (p *Player) Skip(count int) error {
	if err := p.playing(); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("emu: negative skip %d", count)
	}
	if err := p.filter.skip(count); err != nil {
		p.setWarning(err.Error())
	}
	return nil
}

// SetFade fades the current track out from startMs, over lengthMs.
// A lengthMs <= 0 selects DefaultFade.
func (p *Player) SetFade(startMs, lengthMs int) {
	if p.filter == nil {
		return
	}
	if lengthMs <= 0 {
		lengthMs = DefaultFade
	}
	p.filter.setFade(p.msecToFrames(startMs), p.msecToFrames(lengthMs))
}

// TrackEnded reports whether the current track has ended, by fading out
// or by a long silence.
func (p *Player) TrackEnded() bool {
	return p.filter == nil || p.track < 0 || p.filter.ended()
}

// SetTempo sets the playback speed, 1 being normal.
func (p *Player) SetTempo(t float64) {
	p.tempo = max(MinTempo, min(MaxTempo, t))
	p.emu.SetTempo(p.tempo)
}

func (p *Player) Tempo() float64 { return p.tempo }

// IgnoreSilence disables the silence detection: the initial silence is
// played and silence never ends a track.
func (p *Player) IgnoreSilence(ignore bool) {
	p.ignoreSilence = ignore
	if p.filter != nil {
		p.filter.ignoreSilence = ignore
	}
}

func (p *Player) VoiceCount() int { return len(p.emu.VoiceNames()) }

func (p *Player) VoiceNames() []string { return p.emu.VoiceNames() }

// MuteVoice mutes or unmutes voice i.
func (p *Player) MuteVoice(i int, mute bool) {
	mask := p.muteMask
	if mute {
		mask |= 1 << i
	} else {
		mask &^= 1 << i
	}
	p.MuteVoices(mask)
}

// MuteVoices mutes the voices whose bit is set in mask.
func (p *Player) MuteVoices(mask int) {
	p.muteMask = mask
	p.applyMute(mask)
}

func (p *Player) MuteMask() int { return p.muteMask }

func (p *Player) applyMute(mask int) {
	if p.mixer == nil {
		return
	}
	for i := range p.VoiceCount() {
		if mask&(1<<i) != 0 {
			p.emu.SetVoice(i, nil)
		} else {
			p.emu.SetVoice(i, p.mixer.Output(i))
		}
	}
}

// SetEqualizer changes the frequency response of the output.
func (p *Player) SetEqualizer(eq Equalizer) {
	p.eq = eq
	if p.mixer != nil {
		p.eqf.setup(eq, p.rate)
	}
}

func (p *Player) Equalizer() Equalizer { return p.eq }

// DefaultEqualizer returns the equalizer matching the hardware of the file.
func (p *Player) DefaultEqualizer() Equalizer { return p.format.eq }

// Warning returns the most recent warning, about the file or the current
// track.
func (p *Player) Warning() string { return p.warning }

func (p *Player) setWarning(w string) {
	if w != p.warning {
		log.ModEmu.WarnZ(w).Int("track", p.track).End()
	}
	p.warning = w
}

func (p *Player) pollWarning() {
	if w := p.emu.Warning(); w != "" {
		p.setWarning(w)
	}
}

// LoadM3U loads a playlist, which replaces the tracks of the file by its
// entries.
func (p *Player) LoadM3U(r io.Reader) error {
	pl, err := m3u.Parse(r)
	if err != nil {
		return err
	}
	p.playlist = pl
	if pl.FirstError != 0 {
		p.setWarning(fmt.Sprintf("Problem in m3u at line %d", pl.FirstError))
	}
	return nil
}

// LoadM3UFile loads the playlist at path.
func (p *Player) LoadM3UFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.LoadM3U(f)
}

// Close releases the buffers. The player can't play afterwards.
func (p *Player) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	p.mixer = nil
	p.filter = nil
	p.track = -1
	return nil
}
