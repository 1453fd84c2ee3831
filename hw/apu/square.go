package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// There are two square channels beginning at registers $4000 and $4004. Each
// contains the following: Envelope Generator, Sweep Unit, Timer with
// divide-by-two on the output, 8-step sequencer, Length Counter.
//
//	               +---------+    +---------+
//	               |  Sweep  |--->|Timer / 2|
//	               +---------+    +---------+
//	                    |              |
//	                    |              v
//	                    |         +---------+    +---------+
//	                    |         |Sequencer|    | Length  |
//	                    |         +---------+    +---------+
//	                    |              |              |
//	                    v              v              v
//	+---------+        |\             |\             |\          +---------+
//	|Envelope |------->| >----------->| >----------->| >-------->|   DAC   |
//	+---------+        |/             |/             |/          +---------+
type squareChannel struct {
	envelope envelope
	timer    timer

	isChannel1 bool

	duty    uint8
	dutyPos uint8

	sweepEnabled      bool
	sweepPeriod       uint8
	sweepNegate       bool
	sweepShift        uint8
	reloadSweep       bool
	sweepDivider      uint8
	sweepTargetPeriod uint32
	realPeriod        uint16
}

func (sc *squareChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0:
		sc.envelope.init(val)
		sc.duty = (val & 0xC0) >> 6
	case 1:
		sc.initSweep(val)
	case 2:
		sc.setPeriod(sc.realPeriod&0x0700 | uint16(val))
	case 3:
		sc.envelope.lenCounter.load(val >> 3)
		sc.setPeriod(sc.realPeriod&0xFF | uint16(val&0x07)<<8)

		// sequencer is restarted at the first value of the current sequence.
		sc.dutyPos = 0

		// envelope is also restarted.
		sc.envelope.restart()
	}

	log.ModSound.DebugZ("write square").
		Bool("ch1", sc.isChannel1).
		Uint16("reg", reg).
		Hex8("val", val).
		End()
}

func (sc *squareChannel) isMuted() bool {
	// A period of t < 8, either set explicitly or via a sweep period update,
	// silences the corresponding pulse channel.
	return sc.realPeriod < 8 || (!sc.sweepNegate && sc.sweepTargetPeriod > 0x7FF)
}

func (sc *squareChannel) initSweep(val uint8) {
	sc.sweepEnabled = val&0x80 == 0x80
	sc.sweepNegate = val&0x08 == 0x08

	// The divider's period is set to P + 1
	sc.sweepPeriod = (val&0x70)>>4 + 1
	sc.sweepShift = val & 0x07

	sc.updateTargetPeriod()

	// Side effects: Sets the reload flag
	sc.reloadSweep = true
}

func (sc *squareChannel) updateTargetPeriod() {
	shift := sc.realPeriod >> sc.sweepShift
	if sc.sweepNegate {
		sc.sweepTargetPeriod = uint32(sc.realPeriod - shift)
		if sc.isChannel1 {
			// As a result, a negative sweep on pulse channel 1 will subtract
			// the shifted period value minus 1
			sc.sweepTargetPeriod--
		}
	} else {
		sc.sweepTargetPeriod = uint32(sc.realPeriod + shift)
	}
}

func (sc *squareChannel) setPeriod(period uint16) {
	sc.realPeriod = period
	sc.timer.period = int(period)*2 + 1
	sc.updateTargetPeriod()
}

// duty cycle sequences for the square channels.
var squareDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0},
}

func (sc *squareChannel) updateOutput() {
	if sc.isMuted() {
		sc.timer.addOutput(0)
		return
	}
	sc.timer.addOutput(int(squareDuty[sc.duty][sc.dutyPos]) * sc.envelope.output())
}

func (sc *squareChannel) run(targetCycle int) {
	if sc.isMuted() {
		sc.timer.addOutput(0)
		sc.timer.skip(targetCycle)
		return
	}
	for sc.timer.run(targetCycle) {
		sc.dutyPos = (sc.dutyPos - 1) & 0x07
		sc.updateOutput()
	}
}

func (sc *squareChannel) reset() {
	sc.envelope.reset()
	sc.timer.reset()

	sc.duty = 0
	sc.dutyPos = 0
	sc.realPeriod = 0

	sc.sweepEnabled = false
	sc.sweepPeriod = 0
	sc.sweepNegate = false
	sc.sweepShift = 0
	sc.reloadSweep = false
	sc.sweepDivider = 0
	sc.sweepTargetPeriod = 0
	sc.updateTargetPeriod()
}

func (sc *squareChannel) tickSweep() {
	sc.sweepDivider--
	if sc.sweepDivider == 0 {
		if sc.sweepShift > 0 && sc.sweepEnabled && sc.realPeriod >= 8 && sc.sweepTargetPeriod <= 0x7FF {
			sc.setPeriod(uint16(sc.sweepTargetPeriod))
		}
		sc.sweepDivider = sc.sweepPeriod
	}

	if sc.reloadSweep {
		sc.sweepDivider = sc.sweepPeriod
		sc.reloadSweep = false
	}
}

func (sc *squareChannel) saveState(state *snapshot.APUSquare) {
	sc.timer.saveState(&state.Timer)
	sc.envelope.saveState(&state.Envelope)
	state.Duty = sc.duty
	state.DutyPos = sc.dutyPos
	state.SweepEnabled = sc.sweepEnabled
	state.SweepPeriod = sc.sweepPeriod
	state.SweepNegate = sc.sweepNegate
	state.SweepShift = sc.sweepShift
	state.ReloadSweep = sc.reloadSweep
	state.SweepDivider = sc.sweepDivider
	state.SweepTargetPeriod = sc.sweepTargetPeriod
	state.RealPeriod = sc.realPeriod
}
