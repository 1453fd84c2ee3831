package nsf

import (
	"chipplay/emu/log"
	"chipplay/hw/apu"
	"chipplay/hw/audio"
	"chipplay/hw/hwdefs"
	"chipplay/hw/m6502"
	"chipplay/hw/snapshot"
)

const (
	ClockNTSC = 1789772.727272727
	ClockPAL  = 1662607.125

	// Overall gain of the 2A03 voices.
	Gain = 1.4

	// Number of play periods before play may interrupt a running init.
	initialPlayDelay = 7

	// Clocks between two checks of the APU interrupt line, while the CPU
	// accepts interrupts.
	irqPoll = 64
)

// Runtime warnings.
const (
	warnIllegal = "Illegal instruction"
	warnBank    = "Invalid bank"
	warnOverrun = "Play routine overran its time slice"
)

// Emu plays the tracks of an NSF or NSFE file. It drives the 6502 through
// the init and play routines of the file, and the 2A03 APU through the
// register writes of the CPU.
type Emu struct {
	file *File
	cpu  *m6502.CPU
	apu  *apu.APU
	mem  *memory

	playPeriod int // at tempo 1
	period     int // at current tempo
	nextPlay   int
	playExtra  int
	playDelay  int
	saved      *snapshot.CPU6502 // init state, while play interrupts it

	corrupted int
	warning   string
	overrun   bool
}

// New creates the emulator for the tracks of f.
func New(f *File) *Emu {
	e := &Emu{
		file: f,
		apu:  apu.New(),
	}
	e.cpu = m6502.NewCPU(nil)
	e.cpu.IdleAddr = idleAddr
	e.mem = newMemory(f, e.apu, e.cpu)
	e.cpu.Bus = e.mem
	e.apu.SetDMCReader(e.mem.readDMC)

	e.playPeriod = f.PlayPeriod()
	e.period = e.playPeriod
	if len(f.Warnings) > 0 {
		e.warning = f.Warnings[len(f.Warnings)-1]
	}
	return e
}

// ClockRate returns the CPU clock rate of the system the file was made for.
func (hdr *Header) ClockRate() float64 {
	if hdr.PAL() {
		return ClockPAL
	}
	return ClockNTSC
}

// PlayPeriod returns the number of clocks between two calls to play.
func (hdr *Header) PlayPeriod() int {
	clocks, value, rate := 29780, uint16(0x411A), hdr.NTSCSpeed
	if hdr.PAL() {
		clocks, value, rate = 33247, 0x4E20, hdr.PALSpeed
	}
	if rate == 0 {
		rate = value
	}
	if rate != value {
		clocks = int(float64(rate) * hdr.ClockRate() / 1e6)
	}
	return clocks
}

func (e *Emu) Info() hwdefs.TrackSet { return e.file.TrackSet() }
func (e *Emu) ClockRate() float64    { return e.file.ClockRate() }

func (e *Emu) VoiceNames() []string {
	names := make([]string, apu.NumVoices)
	for v := range apu.Voice(apu.NumVoices) {
		names[v] = v.String()
	}
	return names
}

// SetSampleRate creates the mixer outputs of the APU voices, in voice order.
func (e *Emu) SetSampleRate(rate int, m *audio.Mixer) {
	m.SetClockRate(e.ClockRate())
	for v := range apu.Voice(apu.NumVoices) {
		o := m.NewOutput()
		o.SetVolume(apu.VoiceVolume(v) * Gain)
		e.apu.SetOutput(v, o)
	}
}

// SetVoice connects voice i to o. A nil output mutes the voice.
func (e *Emu) SetVoice(i int, o *audio.Output) {
	e.apu.SetOutput(apu.Voice(i), o)
}

// SetTempo scales the play period, and the APU frame sequencer, by 1/t.
func (e *Emu) SetTempo(t float64) {
	e.period = int(float64(e.playPeriod) / t)
	e.apu.SetTempo(t)
}

// Warning returns the most recent warning, and clears it.
func (e *Emu) Warning() string {
	w := e.warning
	e.warning = ""
	return w
}

func (e *Emu) warn(msg string) {
	if e.warning != msg {
		log.ModTrack.WarnZ(msg).End()
	}
	e.warning = msg
}

// StartTrack resets the hardware and calls init for track n. Init runs
// during the following RunClocks calls.
func (e *Emu) StartTrack(n int) error {
	n = e.file.RemapTrack(n)
	pal := e.file.PAL()

	e.apu.Reset(pal, 0)
	e.apu.Write(0, apu.StatusAddr, 0x0F)
	e.apu.Write(0, apu.FrameCtrAddr, 0x40)

	e.mem.reset(&e.file.Header)

	e.cpu.Reset()
	e.cpu.SetTime(0)

	e.nextPlay = e.period
	e.playExtra = 0
	e.playDelay = initialPlayDelay
	e.saved = nil
	e.corrupted = 0
	e.overrun = false

	e.cpu.A = uint8(n)
	e.cpu.X = 0
	if pal {
		e.cpu.X = 1
	}
	e.cpu.SP = 0xFF
	e.jsr(e.file.InitAddr)

	log.ModTrack.InfoZ("start track").
		Int("track", n).
		Hex16("init", e.file.InitAddr).
		Int("period", e.period).
		End()
	return nil
}

// jsr calls the routine at addr, returning to the idle address.
func (e *Emu) jsr(addr uint16) {
	e.cpu.Push16(idleAddr - 1)
	e.cpu.PC = addr
	e.cpu.Resume()
}

func (e *Emu) time() int { return int(e.cpu.Cycles) }

func (e *Emu) runOnce(end int) {
	limit := min(e.nextPlay, end)
	if e.cpu.IRQEnabled() {
		limit = min(limit, e.time()+irqPoll)
	}
	e.cpu.Run(int64(limit))

	if e.cpu.Halted() {
		// Init or play returned.
		e.playDelay = 1
		if e.saved != nil {
			// Resume init, which play interrupted.
			st := *e.saved
			st.Cycles = e.cpu.Cycles
			st.Corrupted = e.cpu.Corrupted()
			e.cpu.SetState(&st)
			e.cpu.Resume()
			e.saved = nil
		} else if e.time() < limit {
			e.cpu.SetTime(int64(limit))
		}
	}

	if e.cpu.IRQEnabled() {
		if irq := e.apu.IRQ(e.time()); irq != 0 {
			log.ModCPU.DebugZ("irq").Stringer("src", irq).Int("time", e.time()).End()
			e.cpu.IRQ()
		}
	}

	if e.time() < e.nextPlay {
		return
	}

	e.playExtra ^= 1
	e.nextPlay += e.period + e.playExtra

	switch {
	case e.playDelay > 0:
		e.playDelay--
		if e.playDelay > 0 {
			return
		}
		if !e.cpu.Halted() {
			e.saved = e.cpu.State()
			log.ModTrack.DebugZ("play called during init").
				Hex16("pc", e.cpu.PC).
				End()
		}
		e.jsr(e.file.PlayAddr)
	case !e.overrun:
		e.overrun = true
		e.warn(warnOverrun)
	}
}

// RunClocks runs the CPU for d clocks, calling play at each play period,
// then ends the APU frame and rebases the clocks. It returns d.
func (e *Emu) RunClocks(d int) (int, error) {
	for e.time() < d {
		e.runOnce(d)
	}
	e.cpu.AdjustTime(int64(-d))
	e.nextPlay = max(0, e.nextPlay-d)
	e.apu.EndFrame(d)

	if n := e.cpu.Corrupted(); n > e.corrupted {
		e.corrupted = n
		e.warn(warnIllegal)
	}
	if e.mem.invalidBank {
		e.mem.invalidBank = false
		e.warn(warnBank)
	}
	return d, nil
}

// State returns a copy of the CPU and APU state.
func (e *Emu) State() (*snapshot.CPU6502, *snapshot.NESAPU) {
	return e.cpu.State(), e.apu.State()
}
