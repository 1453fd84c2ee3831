package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// noiseChannel generates pseudo-random 1-bit noise at 16 different frequencies.
//
//	      Timer --> Shift Register   Length Counter
//	                    |                |
//	                    v                v
//	Envelope -------> Gate ----------> Gate --> (to mixer)
type noiseChannel struct {
	envelope envelope
	timer    timer

	shiftReg uint16
	mode     bool // mode flag.
}

var noisePeriodLUT = [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068}

func (nc *noiseChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0:
		nc.envelope.init(val)
	case 2:
		nc.timer.period = int(noisePeriodLUT[val&0x0F]) - 1
		nc.mode = val&0x80 != 0
	case 3:
		nc.envelope.lenCounter.load(val >> 3)
		nc.envelope.restart()
	}

	log.ModSound.DebugZ("write noise").
		Uint16("reg", reg).
		Hex8("val", val).
		End()
}

func (nc *noiseChannel) run(targetCycle int) {
	for nc.timer.run(targetCycle) {
		// Feedback is calculated as the exclusive-OR of bit 0 and one other
		// bit: bit 6 if Mode flag is set, otherwise bit 1.
		modebit := 1
		if nc.mode {
			modebit = 6
		}

		feedback := nc.shiftReg&0x01 ^ nc.shiftReg>>modebit&0x01
		nc.shiftReg >>= 1
		nc.shiftReg |= feedback << 14

		if nc.isMuted() {
			nc.timer.addOutput(0)
		} else {
			nc.timer.addOutput(nc.envelope.output())
		}
	}
}

func (nc *noiseChannel) isMuted() bool {
	// The mixer receives the current envelope volume except when bit 0 of the
	// shift register is set, or the length counter is zero.
	return nc.shiftReg&0x01 == 0x01
}

func (nc *noiseChannel) reset() {
	nc.envelope.reset()
	nc.timer.reset()

	nc.timer.period = int(noisePeriodLUT[0]) - 1
	nc.shiftReg = 1
	nc.mode = false
}

func (nc *noiseChannel) saveState(state *snapshot.APUNoise) {
	nc.timer.saveState(&state.Timer)
	nc.envelope.saveState(&state.Envelope)
	state.ShiftReg = nc.shiftReg
	state.Mode = nc.mode
}
