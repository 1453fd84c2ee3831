// Package ay emulates the General Instrument AY-3-8910 sound chip and the 1-bit
// beeper of the ZX Spectrum.
//
// Times are expressed in clocks of the CPU, which runs twice as fast as the
// AY.
package ay

import (
	"chipplay/emu/log"
	"chipplay/hw/audio"
	"chipplay/hw/snapshot"
)

const (
	NumRegs = 16

	periodFactor      = 16
	noisePeriodFactor = 2 * periodFactor
	envPeriodFactor   = 2 * periodFactor

	// Tones above this frequency are played as a disabled tone at half
	// volume.
	inaudibleFreq = 16384

	beeperLevel = ampRange * 8 / 10
)

// Mixer register flags.
const (
	toneOff  = 0x01
	noiseOff = 0x08
)

// VoiceVolume is the volume to set on the output of every voice.
const VoiceVolume = 0.7 / 3 / ampRange

var readMasks = [NumRegs]uint8{
	0xFF, 0x0F, 0xFF, 0x0F, 0xFF, 0x0F, 0x1F, 0x3F,
	0x1F, 0x1F, 0x1F, 0xFF, 0xFF, 0x0F, 0x00, 0x00,
}

type tone struct {
	period  int // in clocks
	delay   int // clocks until the next phase flip
	phase   uint8
	lastAmp int

	out *audio.Output
}

func (t *tone) addOutput(time, amp int) {
	if amp == t.lastAmp {
		return
	}
	if t.out != nil {
		t.out.Offset(time, amp-t.lastAmp)
	}
	t.lastAmp = amp
}

type AY struct {
	regs [NumRegs]uint8
	addr uint8

	tones [3]tone

	noiseLFSR  uint32
	noiseDelay int

	envWave  *[envLength]uint8
	envPos   int // -48 to -1
	envDelay int

	beeperAmp int
	beeperOut *audio.Output

	lastTime  int // time up to which the chip has run
	inaudible int // tones with a period up to this are inaudible
}

// New creates an AY whose times are expressed in clocks of a CPU running at
// clockRate Hz.
func New(clockRate float64) *AY {
	a := &AY{}
	a.SetClockRate(clockRate)
	a.Reset()
	return a
}

// SetClockRate changes the rate of the CPU clock. The AY keeps running at
// half that rate.
func (a *AY) SetClockRate(clockRate float64) {
	a.inaudible = (int(clockRate) + inaudibleFreq) / (inaudibleFreq * 2)
}

// SetOutput connects voice v to out. A nil output mutes the voice, it then
// keeps running silently.
func (a *AY) SetOutput(v Voice, out *audio.Output) {
	switch v {
	case Wave1, Wave2, Wave3:
		a.tones[v].out = out
	case Beeper:
		a.beeperOut = out
	default:
		panic("ay: invalid voice " + v.String())
	}
}

// Reset puts the chip in its power-up state: all registers cleared, tones and
// noise disabled. Voice outputs are kept.
func (a *AY) Reset() {
	a.addr = 0
	a.lastTime = 0
	a.noiseLFSR = 1
	a.noiseDelay = noisePeriodFactor

	for i := range a.tones {
		a.tones[i].period = periodFactor
		a.tones[i].delay = periodFactor
		a.tones[i].phase = 0
		a.tones[i].lastAmp = 0
	}

	a.regs = [NumRegs]uint8{}
	a.regs[7] = 0xFF
	a.writeData(13, 0)
	a.envDelay = a.envPeriod()
	a.beeperAmp = 0
}

// SelectReg latches the register number accessed by the next data read or
// write.
func (a *AY) SelectReg(addr uint8) {
	a.addr = addr & 0x0F
}

// Read returns the value of the selected register.
func (a *AY) Read() uint8 {
	return a.regs[a.addr] & readMasks[a.addr]
}

// Write writes val to the selected register, at the given time.
func (a *AY) Write(time int, val uint8) {
	a.WriteReg(time, a.addr, val)
}

// WriteReg writes val to register addr, at the given time. The oscillators
// are first run up to that time.
func (a *AY) WriteReg(time int, addr, val uint8) {
	addr &= 0x0F
	a.run(time)
	a.writeData(addr, val)

	log.ModSound.DebugZ("write ay").
		Uint8("reg", addr).
		Hex8("val", val).
		End()
}

func (a *AY) writeData(addr, val uint8) {
	if addr == 13 {
		a.envWave = &envWaves[envShape(val)]
		a.envPos = -envLength
		a.envDelay = a.envPeriod()
	}
	a.regs[addr] = val

	// Period changes take effect on the current half-cycle.
	if i := addr >> 1; i < 3 {
		t := &a.tones[i]
		period := (int(a.regs[i*2+1]&0x0F)<<8 | int(a.regs[i*2])) * periodFactor
		if period == 0 {
			period = periodFactor
		}
		t.delay = max(0, t.delay+period-t.period)
		t.period = period
	}
}

func (a *AY) noisePeriod() int {
	period := int(a.regs[6]&0x1F) * noisePeriodFactor
	if period == 0 {
		period = noisePeriodFactor
	}
	return period
}

func (a *AY) envPeriod() int {
	period := (int(a.regs[12])<<8 | int(a.regs[11])) * envPeriodFactor
	if period == 0 {
		period = envPeriodFactor
	}
	return period
}

func (a *AY) envLevel() int {
	return int(a.envWave[a.envPos+envLength])
}

// updateOutputs sends the current amplitude of each tone to the mixer.
func (a *AY) updateOutputs(time int) {
	for i := range a.tones {
		t := &a.tones[i]
		mode := int(a.regs[7] >> i)

		halfVol := 0
		if t.period <= a.inaudible && mode&toneOff == 0 {
			halfVol = 1
			mode |= toneOff
		}

		vol := a.regs[8+i]
		level := int(ampTable[vol&0x0F])
		if vol&0x10 != 0 {
			level = a.envLevel()
		}
		// The AY-3-8910 DAC range is half of the YM2149.
		volume := level >> (halfVol + 1)

		amp := 0
		if (mode|int(t.phase))&1&(mode>>3|int(a.noiseLFSR)) != 0 {
			amp = volume
		}
		t.addOutput(time, amp)
	}
}

// run advances tones, noise and envelope up to 'until', one event at a time.
func (a *AY) run(until int) {
	a.updateOutputs(a.lastTime)

	for a.lastTime < until {
		step := min(until-a.lastTime, a.noiseDelay, a.envDelay)
		for i := range a.tones {
			step = min(step, a.tones[i].delay)
		}
		a.lastTime += step

		for i := range a.tones {
			t := &a.tones[i]
			t.delay -= step
			if t.delay == 0 {
				t.phase ^= 1
				t.delay = t.period
			}
		}

		a.noiseDelay -= step
		if a.noiseDelay == 0 {
			a.noiseLFSR = -(a.noiseLFSR & 1) & 0x12000 ^ a.noiseLFSR>>1
			a.noiseDelay = a.noisePeriod()
		}

		a.envDelay -= step
		if a.envDelay == 0 {
			a.envPos++
			if a.envPos >= 0 {
				a.envPos -= 32
			}
			a.envDelay = a.envPeriod()
		}

		a.updateOutputs(a.lastTime)
	}
}

// SetBeeper sets the level of the beeper at the given time.
func (a *AY) SetBeeper(time int, on bool) {
	amp := 0
	if on {
		amp = beeperLevel
	}
	if amp == a.beeperAmp {
		return
	}
	if a.beeperOut != nil {
		a.beeperOut.Offset(time, amp-a.beeperAmp)
	}
	a.beeperAmp = amp
}

// EndFrame runs the chip up to the given time, then makes that time the start
// of the next frame.
func (a *AY) EndFrame(time int) {
	a.run(time)
	a.lastTime -= time
}

func (a *AY) State() *snapshot.AY {
	state := snapshot.AY{
		Regs:       a.regs,
		Addr:       a.addr,
		NoiseLFSR:  a.noiseLFSR,
		NoiseDelay: a.noiseDelay,
		EnvPos:     a.envPos,
		EnvDelay:   a.envDelay,
		LastTime:   a.lastTime,
		BeeperAmp:  a.beeperAmp,
	}
	for i, t := range a.tones {
		state.Tones[i] = snapshot.AYTone{
			Period:  t.period,
			Delay:   t.delay,
			Phase:   t.phase,
			LastAmp: t.lastAmp,
		}
	}
	return &state
}
