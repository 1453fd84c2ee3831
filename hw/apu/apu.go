// Package apu emulates the sound generators of the Ricoh 2A03, the CPU of the
// NES, driven by register writes timestamped in CPU clocks.
package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/audio"
	"chipplay/hw/hwdefs"
	"chipplay/hw/snapshot"
)

// Register range.
const (
	StartAddr    = 0x4000
	EndAddr      = 0x4017
	StatusAddr   = 0x4015
	FrameCtrAddr = 0x4017
)

// Voice volumes, in full-scale fraction per amplitude unit.
var voiceVolume = [NumVoices]float64{
	Square1:  0.125 / 15 / 1.11,
	Square2:  0.125 / 15 / 1.11,
	Triangle: 0.150 / 15 / 1.11,
	Noise:    0.095 / 15 / 1.11,
	DMC:      0.450 / 2048 / 1.11,
}

// VoiceVolume returns the volume to set on the output of voice v.
func VoiceVolume(v Voice) float64 {
	return voiceVolume[v]
}

type APU struct {
	square1  squareChannel
	square2  squareChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	frameCounter frameCounter

	lastTime int // time up to which the channels have run
	tempo    float64
	pal      bool
}

func New() *APU {
	a := &APU{tempo: 1}
	a.square1.isChannel1 = true
	a.Reset(false, 0)
	return a
}

func (a *APU) timer(v Voice) *timer {
	switch v {
	case Square1:
		return &a.square1.timer
	case Square2:
		return &a.square2.timer
	case Triangle:
		return &a.triangle.timer
	case Noise:
		return &a.noise.timer
	case DMC:
		return &a.dmc.timer
	}
	panic("apu: invalid voice " + v.String())
}

// SetOutput connects voice v to out. A nil output mutes the voice, it then
// keeps running silently.
func (a *APU) SetOutput(v Voice, out *audio.Output) {
	a.timer(v).out = out
}

// SetDMCReader sets the function the DMC fetches its sample bytes with.
func (a *APU) SetDMCReader(r Reader) {
	a.dmc.read = r
}

// SetTempo scales the frame sequencer rate. The step already scheduled
// keeps its time, the following ones use the new period.
func (a *APU) SetTempo(tempo float64) {
	a.tempo = tempo
	a.frameCounter.period = framePeriod(a.pal, tempo)
}

// Reset puts the APU in its power-up state, with the DMC DAC at initialDMC.
// Voice outputs and the DMC reader are kept.
func (a *APU) Reset(pal bool, initialDMC int) {
	a.pal = pal
	a.lastTime = 0

	a.square1.reset()
	a.square2.reset()
	a.triangle.reset()
	a.noise.reset()
	a.dmc.reset(pal, initialDMC)
	a.frameCounter.reset(framePeriod(pal, a.tempo))

	// Power-up writes, as if the CPU did them. The DAC keeps its initial
	// level.
	for addr := uint16(StartAddr); addr < 0x4014; addr++ {
		if addr == 0x4011 {
			continue
		}
		val := uint8(0)
		if addr&3 == 0 {
			val = 0x10
		}
		a.Write(0, addr, val)
	}

	log.ModSound.InfoZ("apu reset").
		Bool("pal", pal).
		Int("dmc", initialDMC).
		Int("frame period", a.frameCounter.period).
		End()
}

// Write writes val at addr, at the given CPU time. Addresses out of the
// register range are ignored.
func (a *APU) Write(time int, addr uint16, val uint8) {
	if addr < StartAddr || addr > EndAddr {
		return
	}
	a.run(time)

	switch {
	case addr < 0x4004:
		a.square1.write(addr&3, val)
	case addr < 0x4008:
		a.square2.write(addr&3, val)
	case addr < 0x400C:
		a.triangle.write(addr&3, val)
	case addr < 0x4010:
		a.noise.write(addr&3, val)
	case addr < 0x4014:
		a.dmc.write(addr&3, val)
	case addr == StatusAddr:
		a.writeStatus(val)
	case addr == FrameCtrAddr:
		if ftyp := a.frameCounter.write(time, val); ftyp != noFrame {
			a.frameTick(ftyp)
		}
	}
}

func (a *APU) writeStatus(val uint8) {
	log.ModSound.DebugZ("write status").Hex8("val", val).End()

	// Writing to $4015 clears the DMC interrupt flag.
	a.dmc.irqFlag = false

	a.square1.envelope.lenCounter.setEnabled(val&0x01 == 0x01)
	a.square2.envelope.lenCounter.setEnabled(val&0x02 == 0x02)
	a.triangle.lenCounter.setEnabled(val&0x04 == 0x04)
	a.noise.envelope.lenCounter.setEnabled(val&0x08 == 0x08)
	a.dmc.setEnabled(val&0x10 == 0x10)
}

func (a *APU) status() uint8 {
	var status uint8
	if a.square1.envelope.lenCounter.status() {
		status |= 0x01
	}
	if a.square2.envelope.lenCounter.status() {
		status |= 0x02
	}
	if a.triangle.lenCounter.status() {
		status |= 0x04
	}
	if a.noise.envelope.lenCounter.status() {
		status |= 0x08
	}
	if a.dmc.status() {
		status |= 0x10
	}
	if a.frameCounter.irqFlag {
		status |= 0x40
	}
	if a.dmc.irqFlag {
		status |= 0x80
	}
	return status
}

// ReadStatus reads $4015 at the given CPU time. Reading clears the frame
// counter interrupt flag.
func (a *APU) ReadStatus(time int) uint8 {
	a.run(time)
	status := a.status()
	a.frameCounter.irqFlag = false
	return status
}

// IRQ returns the units requesting an interrupt at the given time.
func (a *APU) IRQ(time int) hwdefs.IRQSource {
	a.run(time)
	var irq hwdefs.IRQSource
	if a.frameCounter.irqFlag {
		irq |= hwdefs.FrameCounter
	}
	if a.dmc.irqFlag {
		irq |= hwdefs.DMC
	}
	return irq
}

func (a *APU) frameTick(ftyp frameType) {
	// Quarter & half frames clock envelopes & linear counter.
	a.square1.envelope.tick()
	a.square2.envelope.tick()
	a.triangle.tickLinearCounter()
	a.noise.envelope.tick()

	if ftyp == halfFrame {
		// Half frames clock length counters & sweep.
		a.square1.envelope.lenCounter.tick()
		a.square2.envelope.lenCounter.tick()
		a.triangle.lenCounter.tick()
		a.noise.envelope.lenCounter.tick()

		a.square1.tickSweep()
		a.square2.tickSweep()
	}
}

// run updates the frame counter and all channels up to 'until'.
func (a *APU) run(until int) {
	for a.lastTime < until {
		end := min(until, a.frameCounter.next)

		a.square1.run(end)
		a.square2.run(end)
		a.triangle.run(end)
		a.noise.run(end)
		a.dmc.run(end)
		a.lastTime = end

		if end == a.frameCounter.next {
			if ftyp := a.frameCounter.clock(); ftyp != noFrame {
				a.frameTick(ftyp)
			}
		}
	}
}

// EndFrame runs the APU up to the given time, then makes that time the start
// of the next frame.
func (a *APU) EndFrame(time int) {
	a.run(time)

	a.square1.timer.endFrame(time)
	a.square2.timer.endFrame(time)
	a.triangle.timer.endFrame(time)
	a.noise.timer.endFrame(time)
	a.dmc.timer.endFrame(time)
	a.frameCounter.endFrame(time)
	a.lastTime -= time
}

func (a *APU) State() *snapshot.NESAPU {
	var state snapshot.NESAPU
	a.square1.saveState(&state.Square1)
	a.square2.saveState(&state.Square2)
	a.triangle.saveState(&state.Triangle)
	a.noise.saveState(&state.Noise)
	a.dmc.saveState(&state.DMC)
	a.frameCounter.saveState(&state.FrameCounter)
	state.LastTime = a.lastTime
	return &state
}
