package apu

import (
	"chipplay/hw/audio"
	"chipplay/hw/snapshot"
)

// timer divides the CPU clock. Each time it reaches 0 it clocks the channel
// sequencer, which may change the channel output.
type timer struct {
	prevCycle  int // time up to which the timer has run
	timer      int
	period     int
	lastOutput int

	out *audio.Output
}

func (t *timer) reset() {
	t.prevCycle = 0
	t.timer = 0
	t.period = 0
	t.lastOutput = 0
}

// run advances the timer toward targetCycle. It returns true, and stops, each
// time the timer clocks the sequencer.
func (t *timer) run(targetCycle int) bool {
	n := targetCycle - t.prevCycle
	if n > t.timer {
		t.prevCycle += t.timer + 1
		t.timer = t.period
		return true
	}

	t.timer -= n
	t.prevCycle = targetCycle
	return false
}

// skip advances the timer to targetCycle without clocking the sequencer.
func (t *timer) skip(targetCycle int) {
	n := targetCycle - t.prevCycle
	if t.period > 0 {
		n %= t.period + 1
	}
	t.timer -= n
	if t.timer < 0 {
		t.timer += t.period + 1
	}
	t.prevCycle = targetCycle
}

// addOutput sends the change of amplitude to the mixer, at the time of the
// last clock. A muted channel keeps track of its amplitude.
func (t *timer) addOutput(output int) {
	if output == t.lastOutput {
		return
	}
	if t.out != nil {
		t.out.Offset(t.prevCycle, output-t.lastOutput)
	}
	t.lastOutput = output
}

func (t *timer) endFrame(time int) {
	t.prevCycle -= time
}

func (t *timer) saveState(state *snapshot.APUTimer) {
	state.PrevCycle = t.prevCycle
	state.Timer = t.timer
	state.Period = t.period
	state.LastOutput = t.lastOutput
}
