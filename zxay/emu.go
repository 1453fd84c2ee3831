package zxay

import (
	"fmt"

	"chipplay/emu/log"
	"chipplay/hw/audio"
	"chipplay/hw/ay"
	"chipplay/hw/hwdefs"
	"chipplay/hw/hwio"
	"chipplay/hw/snapshot"
	"chipplay/hw/z80"
)

const (
	// Clock is the CPU clock of the 128K Spectrum.
	Clock = 3546900

	// CPCClock is the clock of the Amstrad CPC. Tracks switch to it when
	// they first write to the AY through the CPC ports.
	CPCClock = 2000000

	// Clocks between two interrupts, 50Hz.
	playPeriod = 70908

	memSize  = 0x10000
	pageBits = 14
	ramAddr  = 0x4000

	// Vector low byte on the data bus during an interrupt.
	busVector = 0xFF
)

// Runtime warnings.
const (
	warnIllegal = "Illegal instruction"
	warnOverrun = "Play routine overran its time slice"
)

// Driver stubs at $0000. The init and play addresses are patched in.
var (
	// The init code installs its own interrupt handler.
	passiveStub = []byte{
		0xF3,             // DI
		0xCD, 0x00, 0x00, // CALL init
		0xED, 0x5E,       // LOOP: IM 2
		0xFB,             // EI
		0x76,             // HALT
		0x18, 0xFA,       // JR LOOP
	}

	activeStub = []byte{
		0xF3,             // DI
		0xCD, 0x00, 0x00, // CALL init
		0xED, 0x56,       // LOOP: IM 1
		0xFB,             // EI
		0x76,             // HALT
		0xCD, 0x00, 0x00, // CALL play
		0x18, 0xF7,       // JR LOOP
	}
)

// Emu plays the tracks of an AY file. The Z80 runs the code of the file in
// the 64kB of a Spectrum, with a 50Hz interrupt. Tracks written for the
// Amstrad CPC are detected by the ports they use.
type Emu struct {
	file  *File
	cpu   *z80.CPU
	ay    *ay.AY
	mem   *hwio.PageMap
	mixer *audio.Mixer

	clock    float64
	tempo    float64
	period   int
	nextPlay int

	// Hardware detected from the port writes. Once one is seen, the ports
	// of the other are ignored.
	spectrum bool
	cpc      bool
	cpcLatch uint8

	playing   bool // an interrupt was accepted since the track started
	overrun   bool
	corrupted int
	warning   string
}

// New creates the emulator for the tracks of f.
func New(f *File) *Emu {
	e := &Emu{
		file:  f,
		ay:    ay.New(Clock),
		mem:   hwio.NewPageMap("zxay", memSize, pageBits, 0xFF),
		clock: Clock,
		tempo: 1,
	}
	e.setPeriod()
	e.mem.Map(0, memSize, 0, memSize, true)
	e.cpu = z80.NewCPU((*bus)(e))
	if len(f.Warnings) > 0 {
		e.warning = f.Warnings[len(f.Warnings)-1]
	}
	return e
}

func (e *Emu) Info() hwdefs.TrackSet { return e.file.TrackSet() }
func (e *Emu) ClockRate() float64    { return e.clock }

func (e *Emu) VoiceNames() []string {
	names := make([]string, ay.NumVoices)
	for v := range ay.Voice(ay.NumVoices) {
		names[v] = v.String()
	}
	return names
}

// SetSampleRate creates the mixer outputs of the AY voices and the beeper.
func (e *Emu) SetSampleRate(rate int, m *audio.Mixer) {
	e.mixer = m
	m.SetClockRate(e.clock)
	for v := range ay.Voice(ay.NumVoices) {
		o := m.NewOutput()
		o.SetVolume(ay.VoiceVolume)
		e.ay.SetOutput(v, o)
	}
}

// SetVoice connects voice i to o. A nil output mutes the voice.
func (e *Emu) SetVoice(i int, o *audio.Output) {
	e.ay.SetOutput(ay.Voice(i), o)
}

// SetTempo scales the interrupt period by 1/t.
func (e *Emu) SetTempo(t float64) {
	e.tempo = t
	e.setPeriod()
}

func (e *Emu) setPeriod() {
	period := float64(playPeriod)
	if e.clock != Clock {
		period = e.clock / 50
	}
	e.period = int(period / e.tempo)
}

// setClock changes the CPU clock rate, and the interrupt period with it.
func (e *Emu) setClock(clock float64) {
	if clock == e.clock {
		return
	}
	e.clock = clock
	e.ay.SetClockRate(clock)
	if e.mixer != nil {
		e.mixer.SetClockRate(clock)
	}
	e.setPeriod()
}

// enableCPC switches to the CPC clock on the first write to the CPC ports.
// The CPC has no beeper.
func (e *Emu) enableCPC() {
	if e.cpc {
		return
	}
	e.cpc = true
	e.ay.SetBeeper(e.time(), false)
	e.setClock(CPCClock)
	e.nextPlay = min(e.nextPlay, e.time()+e.period)

	log.ModSound.DebugZ("cpc mode").
		Int("clock", CPCClock).
		Int("period", e.period).
		End()
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

// StartTrack fills the memory with the blocks of track n, installs the
// driver stub, and sets up the CPU to run it.
func (e *Emu) StartTrack(n int) error {
	mem := e.mem.Arena()
	fill(mem[0x0000:0x0100], 0xC9) // RET at RST vectors
	fill(mem[0x0100:ramAddr], 0xFF)
	clear(mem[ramAddr:])

	s, err := e.file.load(n, mem, e.warn)
	if err != nil {
		return fmt.Errorf("track %d: %w", n, err)
	}

	stub := passiveStub
	if s.play != 0 {
		stub = activeStub
	}
	copy(mem, stub)
	mem[2], mem[3] = uint8(s.init), uint8(s.init>>8)
	if s.play != 0 {
		mem[9], mem[10] = uint8(s.play), uint8(s.play>>8)
	}
	mem[0x38] = 0xFB // EI, followed by RET

	e.spectrum, e.cpc, e.cpcLatch = false, false, 0
	e.setClock(Clock)

	e.ay.Reset()
	// Some tunes expect the tones enabled.
	e.ay.WriteReg(0, 7, 0x38)

	e.cpu.Reset()
	e.cpu.SetTime(0)
	pair := uint16(s.hiReg)<<8 | uint16(s.loReg)
	e.cpu.SetAF(pair)
	e.cpu.BC, e.cpu.DE, e.cpu.HL = pair, pair, pair
	e.cpu.AF2, e.cpu.BC2, e.cpu.DE2, e.cpu.HL2 = pair, pair, pair, pair
	e.cpu.IX, e.cpu.IY = pair, pair
	e.cpu.SP = s.stack
	e.cpu.I = 3
	e.cpu.PC = 0

	e.nextPlay = e.period
	e.playing = false
	e.overrun = false
	e.corrupted = 0

	log.ModTrack.InfoZ("start track").
		Int("track", n).
		Hex16("init", s.init).
		Hex16("play", s.play).
		Hex16("stack", s.stack).
		End()
	return nil
}

func fill(p []byte, val uint8) {
	for i := range p {
		p[i] = val
	}
}

func (e *Emu) time() int { return int(e.cpu.Cycles) }

// interrupt raises the 50Hz interrupt. It is lost if the CPU runs with
// interrupts disabled, which after the first one means the play routine
// did not return in time.
func (e *Emu) interrupt() {
	if e.cpu.Interrupt(busVector) {
		e.playing = true
		return
	}
	if e.playing && !e.overrun {
		e.overrun = true
		e.warn(warnOverrun)
	}
}

// RunClocks runs the CPU for about d clocks, raising an interrupt at each
// play period. It returns the actual length of the frame, which ends on an
// instruction boundary.
func (e *Emu) RunClocks(d int) (int, error) {
	for e.time() < d {
		e.cpu.Run(int64(min(d, e.nextPlay)))
		if e.time() >= e.nextPlay {
			e.nextPlay += e.period
			e.interrupt()
		}
	}

	end := e.time()
	e.nextPlay = max(0, e.nextPlay-end)
	e.cpu.AdjustTime(int64(-end))
	e.ay.EndFrame(end)

	if n := e.cpu.Corrupted(); n > e.corrupted {
		e.corrupted = n
		e.warn(warnIllegal)
	}
	return end, nil
}

// State returns a copy of the CPU and AY state.
func (e *Emu) State() (*snapshot.Z80, *snapshot.AY) {
	return e.cpu.State(), e.ay.State()
}

// bus is the memory and I/O space of the Spectrum, as seen by the Z80.
type bus Emu

func (b *bus) Read8(addr uint16) uint8       { return b.mem.Read8(addr) }
func (b *bus) Write8(addr uint16, val uint8) { b.mem.Write8(addr, val) }

// Spectrum ports, decoded on the address bits the 128K decodes.
const (
	spectrumMask    = 0xFEFF
	spectrumRegPort = 0xFEFD // $FFFD
	spectrumValPort = 0xBEFD // $BFFD
	beeperPort      = 0xFE   // low byte only
)

// CPC ports, decoded on the high byte. $F4xx latches a value, which a
// write to $F6xx sends to the AY as a register number or data.
const (
	cpcLatchPort = 0xF4
	cpcCtrlPort  = 0xF6

	cpcCtrlMask = 0xC0
	cpcSelect   = 0xC0
	cpcWrite    = 0x80
)

func (b *bus) In(port uint16) uint8 {
	if !b.cpc && port&spectrumMask == spectrumRegPort {
		return b.ay.Read()
	}
	return 0xFF
}

func (b *bus) Out(port uint16, val uint8) {
	e := (*Emu)(b)
	time := int(b.cpu.Cycles)

	if port&0xFF == beeperPort && !b.cpc {
		b.ay.SetBeeper(time, val&0x10 != 0)
		return
	}
	if !b.cpc {
		switch port & spectrumMask {
		case spectrumRegPort:
			b.spectrum = true
			b.ay.SelectReg(val)
			return
		case spectrumValPort:
			b.spectrum = true
			b.ay.Write(time, val)
			return
		}
	}
	if !b.spectrum {
		switch port >> 8 {
		case cpcLatchPort:
			b.cpcLatch = val
			e.enableCPC()
			return
		case cpcCtrlPort:
			switch val & cpcCtrlMask {
			case cpcSelect:
				b.ay.SelectReg(b.cpcLatch)
				e.enableCPC()
				return
			case cpcWrite:
				e.enableCPC()
				b.ay.Write(time, b.cpcLatch)
				return
			}
		}
	}
	log.ModSound.DebugZ("unmapped out").
		Hex16("port", port).
		Hex8("val", val).
		End()
}
