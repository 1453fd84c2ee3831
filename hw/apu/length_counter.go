package apu

import "chipplay/hw/snapshot"

var lengthLUT = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences its channel once it reaches 0, unless halted.
type lengthCounter struct {
	enabled bool
	halt    bool
	counter uint8
}

func (lc *lengthCounter) reset() {
	lc.enabled = false
	lc.halt = false
	lc.counter = 0
}

func (lc *lengthCounter) init(halt bool) {
	lc.halt = halt
}

func (lc *lengthCounter) load(val uint8) {
	if lc.enabled {
		lc.counter = lengthLUT[val&0x1F]
	}
}

func (lc *lengthCounter) status() bool {
	return lc.counter > 0
}

func (lc *lengthCounter) tick() {
	if lc.counter > 0 && !lc.halt {
		lc.counter--
	}
}

func (lc *lengthCounter) setEnabled(enabled bool) {
	if !enabled {
		lc.counter = 0
	}
	lc.enabled = enabled
}

func (lc *lengthCounter) saveState(state *snapshot.APULengthCounter) {
	state.Enabled = lc.enabled
	state.Halt = lc.halt
	state.Counter = lc.counter
}
