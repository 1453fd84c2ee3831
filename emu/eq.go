package emu

import "math"

// DefaultTrebleFreq is the frequency above which the treble gain applies.
const DefaultTrebleFreq = 8000

// Equalizer shapes the frequency response of the output.
type Equalizer struct {
	Treble     float64 // gain in dB of the content above TrebleFreq
	TrebleFreq float64 // Hz
	Bass       float64 // high-pass cutoff frequency, Hz. 0 disables it.
}

// eqFilter applies an Equalizer to interleaved stereo samples.
type eqFilter struct {
	bass    float64 // high-pass coefficient, 0 when disabled
	lowpass float64 // coefficient of the low-pass splitting the treble band
	treble  float64 // linear gain, 1 when disabled

	ch [2]eqState
}

type eqState struct {
	in, hp float64 // last input and high-pass output
	lp     float64
}

// onePole returns the RC and sampling period of a one-pole filter with
// cutoff frequency freq.
func onePole(freq float64, rate int) (rc, dt float64) {
	return 1 / (2 * math.Pi * freq), 1 / float64(rate)
}

func (f *eqFilter) setup(eq Equalizer, rate int) {
	f.bass = 0
	if eq.Bass > 0 {
		rc, dt := onePole(eq.Bass, rate)
		f.bass = rc / (rc + dt)
	}

	f.treble = 1
	f.lowpass = 0
	if eq.Treble != 0 && eq.TrebleFreq > 0 && eq.TrebleFreq < float64(rate)/2 {
		rc, dt := onePole(eq.TrebleFreq, rate)
		f.lowpass = dt / (rc + dt)
		f.treble = math.Pow(10, eq.Treble/20)
	}
	f.reset()
}

func (f *eqFilter) reset() {
	f.ch = [2]eqState{}
}

func (f *eqFilter) enabled() bool {
	return f.bass != 0 || f.treble != 1
}

func (f *eqFilter) apply(buf []int16) {
	if !f.enabled() {
		return
	}
	for i, s := range buf {
		st := &f.ch[i&1]
		x := float64(s)
		if f.bass != 0 {
			st.hp = f.bass * (st.hp + x - st.in)
			st.in = x
			x = st.hp
		}
		if f.treble != 1 {
			st.lp += f.lowpass * (x - st.lp)
			x = st.lp + f.treble*(x-st.lp)
		}
		buf[i] = clamp16(x)
	}
}

func clamp16(x float64) int16 {
	switch {
	case x > math.MaxInt16:
		return math.MaxInt16
	case x < math.MinInt16:
		return math.MinInt16
	}
	return int16(math.Round(x))
}
