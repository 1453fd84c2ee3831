package apu

import "chipplay/hw/snapshot"

type envelope struct {
	lenCounter lengthCounter

	constantVolume bool
	volume         uint8

	start   bool
	divider int8
	counter uint8
}

func (env *envelope) init(val uint8) {
	env.lenCounter.init(val&0x20 == 0x20)
	env.constantVolume = val&0x10 == 0x10
	env.volume = val & 0x0F
}

func (env *envelope) restart() {
	env.start = true
}

func (env *envelope) output() int {
	if !env.lenCounter.status() {
		return 0
	}
	if env.constantVolume {
		return int(env.volume)
	}
	return int(env.counter)
}

func (env *envelope) reset() {
	env.lenCounter.reset()
	env.constantVolume = false
	env.volume = 0
	env.start = false
	env.divider = 0
	env.counter = 0
}

func (env *envelope) tick() {
	if env.start {
		env.start = false
		env.counter = 15
		env.divider = int8(env.volume)
		return
	}

	env.divider--
	if env.divider < 0 {
		env.divider = int8(env.volume)
		if env.counter > 0 {
			env.counter--
		} else if env.lenCounter.halt {
			// Loop flag.
			env.counter = 15
		}
	}
}

func (env *envelope) saveState(state *snapshot.APUEnvelope) {
	env.lenCounter.saveState(&state.LengthCounter)
	state.ConstantVolume = env.constantVolume
	state.Volume = env.volume
	state.Start = env.start
	state.Divider = env.divider
	state.Counter = env.counter
}
