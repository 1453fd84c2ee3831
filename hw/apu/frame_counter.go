package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// Frame sequencer steps, for the 4-step and 5-step modes.
var stepFrames = [2][]frameType{
	{quarterFrame, halfFrame, quarterFrame, halfFrame},
	{quarterFrame, halfFrame, quarterFrame, noFrame, halfFrame},
}

const (
	framePeriodNTSC = 7458
	framePeriodPAL  = 8314
)

// frameCounter clocks envelopes, linear counter, length counters and sweep
// units at a fixed rate, derived from the CPU clock.
type frameCounter struct {
	period  int
	next    int // time of the next step
	step    int
	mode    uint8 // last value written to $4017
	irqFlag bool
}

func framePeriod(pal bool, tempo float64) int {
	base := framePeriodNTSC
	if pal {
		base = framePeriodPAL
	}
	return int(float64(base)/tempo) &^ 1
}

func (fc *frameCounter) stepMode() int {
	return int(fc.mode >> 7)
}

func (fc *frameCounter) inhibitIRQ() bool {
	return fc.mode&0x40 == 0x40
}

func (fc *frameCounter) reset(period int) {
	fc.period = period
	fc.next = period
	fc.step = 0
	fc.mode = 0
	fc.irqFlag = false
}

// write handles a write to $4017 at the given time. It returns the frame
// clocked immediately, if any.
func (fc *frameCounter) write(time int, val uint8) frameType {
	log.ModSound.DebugZ("write framecounter").Hex8("val", val).End()

	fc.mode = val
	if fc.inhibitIRQ() {
		fc.irqFlag = false
	}

	// Reset sequence after $4017 is written to.
	fc.step = 0
	fc.next = time + fc.period

	if fc.stepMode() != 0 {
		// Writing to $4017 with bit 7 set immediately generates a clock for
		// both the quarter frame and the half frame units.
		return halfFrame
	}
	return noFrame
}

// clock runs the step due at fc.next and schedules the following one.
func (fc *frameCounter) clock() frameType {
	steps := stepFrames[fc.stepMode()]
	ftyp := steps[fc.step]

	if fc.stepMode() == 0 && fc.step == len(steps)-1 && !fc.inhibitIRQ() {
		fc.irqFlag = true
	}

	fc.step++
	if fc.step == len(steps) {
		fc.step = 0
	}
	fc.next += fc.period
	return ftyp
}

func (fc *frameCounter) endFrame(time int) {
	fc.next -= time
}

func (fc *frameCounter) saveState(state *snapshot.APUFrameCounter) {
	state.Period = fc.period
	state.Next = fc.next
	state.Step = fc.step
	state.Mode = fc.mode
	state.IRQFlag = fc.irqFlag
}
