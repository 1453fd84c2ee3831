package apu

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// The triangleChannel contains the following: Timer, 32-step sequencer, Length
// Counter, Linear Counter, 4-bit DAC.
//
//	+---------+    +---------+
//	|LinearCtr|    | Length  |
//	+---------+    +---------+
//	     |              |
//	     v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
type triangleChannel struct {
	lenCounter lengthCounter
	timer      timer

	linearCounter       uint8
	linearCounterReload uint8
	linearReload        bool
	linearCtrl          bool

	pos uint8 // current position on "triangleSequence".
}

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8,
	7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// ultrasonic periods are held at the middle of the DAC range.
const triangleMidLevel = 7

func (tc *triangleChannel) write(reg uint16, val uint8) {
	switch reg {
	case 0:
		tc.linearCtrl = val&0x80 == 0x80
		tc.linearCounterReload = val & 0x7F
		tc.lenCounter.init(tc.linearCtrl)
	case 2:
		tc.timer.period = tc.timer.period&0xFF00 | int(val)
	case 3:
		tc.lenCounter.load(val >> 3)
		tc.timer.period = tc.timer.period&0xFF | int(val&0x07)<<8

		// Sets the linear counter reload flag (side effect).
		tc.linearReload = true
	}

	log.ModSound.DebugZ("write triangle").
		Uint16("reg", reg).
		Hex8("val", val).
		Int("period", tc.timer.period).
		End()
}

func (tc *triangleChannel) run(targetCycle int) {
	if tc.timer.period+1 < 3 {
		tc.timer.addOutput(triangleMidLevel)
		tc.timer.skip(targetCycle)
		return
	}
	if !tc.lenCounter.status() || tc.linearCounter == 0 {
		// The sequencer is frozen, the output holds its level.
		tc.timer.skip(targetCycle)
		return
	}
	for tc.timer.run(targetCycle) {
		tc.pos = (tc.pos + 1) & 0x1F
		tc.timer.addOutput(int(triangleSequence[tc.pos]))
	}
}

func (tc *triangleChannel) reset() {
	tc.timer.reset()
	tc.timer.lastOutput = triangleMidLevel // no click at power-up
	tc.lenCounter.reset()

	tc.linearCounter = 0
	tc.linearCounterReload = 0
	tc.linearReload = false
	tc.linearCtrl = false
	tc.pos = 0
}

func (tc *triangleChannel) tickLinearCounter() {
	if tc.linearReload {
		tc.linearCounter = tc.linearCounterReload
	} else if tc.linearCounter > 0 {
		tc.linearCounter--
	}

	if !tc.linearCtrl {
		tc.linearReload = false
	}
}

func (tc *triangleChannel) saveState(state *snapshot.APUTriangle) {
	tc.timer.saveState(&state.Timer)
	tc.lenCounter.saveState(&state.LengthCounter)
	state.LinearCounter = tc.linearCounter
	state.LinearCounterReload = tc.linearCounterReload
	state.LinearReload = tc.linearReload
	state.LinearCtrl = tc.linearCtrl
	state.Pos = tc.pos
}
