// Package audio turns the amplitude deltas emitted by the sound chips into
// band-limited stereo PCM.
package audio

import (
	"math"

	"github.com/arl/blip"

	"chipplay/emu/log"
)

const (
	MinSampleRate = 8000
	MaxSampleRate = 96000
)

// FullScale is the output amplitude of a voice at volume 1.0.
const FullScale = 32767

// maxDelta bounds the scaled deltas passed to the synthesis buffers, which
// multiply them by 15-bit kernel values in 32-bit arithmetic. It is a swing
// from negative to positive full scale.
const maxDelta = 2 * FullScale

// Mixer owns the left and right synthesis buffers. Sound chips never write
// samples: each voice has an Output onto which it adds amplitude deltas at
// precise clock times, and the Mixer turns the frame into PCM when ended.
type Mixer struct {
	bufleft  *blip.Buffer
	bufright *blip.Buffer

	// When no output is panned, only the left buffer is synthesized and
	// copied to the right channel.
	hasPanning bool

	outputs []*Output

	clockRate  float64
	sampleRate int
	gain       float64
}

// NewMixer creates a mixer producing sampleRate frames per second, able to
// buffer bufferMsec milliseconds of audio. gain scales every voice.
func NewMixer(sampleRate, bufferMsec int, gain float64) *Mixer {
	size := sampleRate * bufferMsec / 1000
	return &Mixer{
		bufleft:    blip.NewBuffer(size),
		bufright:   blip.NewBuffer(size),
		sampleRate: sampleRate,
		gain:       gain,
	}
}

func (m *Mixer) SampleRate() int    { return m.sampleRate }
func (m *Mixer) ClockRate() float64 { return m.clockRate }
func (m *Mixer) Gain() float64      { return m.gain }

// SetClockRate sets the rate of the clock in which the frame times are
// expressed.
func (m *Mixer) SetClockRate(clockRate float64) {
	m.clockRate = clockRate
	m.bufleft.SetRates(clockRate, float64(m.sampleRate))
	m.bufright.SetRates(clockRate, float64(m.sampleRate))

	log.ModSound.DebugZ("mixer rates").
		Int("clock", int(clockRate)).
		Int("rate", m.sampleRate).
		End()
}

// NewOutput creates the output of one voice.
func (m *Mixer) NewOutput() *Output {
	o := &Output{mixer: m}
	o.update()
	m.outputs = append(m.outputs, o)
	return o
}

// Output returns the i-th output created with NewOutput.
func (m *Mixer) Output(i int) *Output {
	return m.outputs[i]
}

func (m *Mixer) NumOutputs() int { return len(m.outputs) }

func (m *Mixer) updatePanning() {
	hasPanning := false
	for _, o := range m.outputs {
		if o.pan != 0 {
			hasPanning = true
			break
		}
	}
	if hasPanning && !m.hasPanning {
		// The right buffer wasn't synthesized so far.
		m.bufright.Clear()
	}
	m.hasPanning = hasPanning
}

// Clear discards all buffered samples and pending deltas.
func (m *Mixer) Clear() {
	m.bufleft.Clear()
	m.bufright.Clear()
}

// ClocksNeeded returns the length of the frame, in clocks, needed to make
// nframes more frames available.
func (m *Mixer) ClocksNeeded(nframes int) int {
	return m.bufleft.ClocksNeeded(nframes)
}

// EndFrame makes the samples synthesized before clock time 'clocks'
// available, and starts a new frame at that time.
func (m *Mixer) EndFrame(clocks int) {
	m.bufleft.EndFrame(clocks)
	if m.hasPanning {
		m.bufright.EndFrame(clocks)
	}
}

// SamplesAvail returns the number of buffered stereo frames.
func (m *Mixer) SamplesAvail() int {
	return m.bufleft.SamplesAvailable()
}

// ReadSamples reads interleaved stereo frames into out and returns the
// number of frames read.
func (m *Mixer) ReadSamples(out []int16) int {
	n := m.bufleft.ReadSamples(out, len(out)/2, blip.Stereo)
	if m.hasPanning {
		m.bufright.ReadSamples(out[1:], n, blip.Stereo)
	} else {
		for i := 0; i < n*2; i += 2 {
			out[i+1] = out[i]
		}
	}
	return n
}

// Output is the connection of one voice to the mixer.
type Output struct {
	mixer *Mixer

	volume float64 // full-scale fraction per amplitude unit
	pan    float64 // -1 (left) to +1 (right)

	left, right float64
}

// SetVolume sets the fraction of the full scale represented by one unit of
// the amplitude deltas passed to Offset.
func (o *Output) SetVolume(v float64) {
	o.volume = v
	o.update()
}

// SetPan sets the stereo position of the voice, from -1 (left) to 1 (right).
func (o *Output) SetPan(pan float64) {
	o.pan = max(-1, min(1, pan))
	o.update()
	o.mixer.updatePanning()
}

func (o *Output) Pan() float64 { return o.pan }

func (o *Output) update() {
	g := o.volume * FullScale * o.mixer.gain
	o.left = g * min(1, 1-o.pan)
	o.right = g * min(1, 1+o.pan)
}

// Offset adds an amplitude change of delta units at the given clock time of
// the current frame.
func (o *Output) Offset(time int, delta int) {
	if delta == 0 {
		return
	}
	m := o.mixer
	m.bufleft.AddDelta(uint64(time), scale(delta, o.left))
	if m.hasPanning {
		m.bufright.AddDelta(uint64(time), scale(delta, o.right))
	}
}

// scale returns delta*gain, saturated to maxDelta.
func scale(delta int, gain float64) int32 {
	d := math.Round(float64(delta) * gain)
	return int32(max(-maxDelta, min(maxDelta, d)))
}
