// Package snapshot holds plain copies of the emulated hardware state. They
// are used to check that a track restart brings every component back to the
// exact same state.
package snapshot

type CPU6502 struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles    int64
	Halted    bool
	Corrupted int
}

type Z80 struct {
	AF, BC, DE, HL     uint16
	AF2, BC2, DE2, HL2 uint16
	IX, IY, SP, PC     uint16
	I, R, IM           uint8
	IFF1, IFF2         bool

	Cycles    int64
	Halted    bool
	Corrupted int
}

type NESAPU struct {
	Square1      APUSquare
	Square2      APUSquare
	Triangle     APUTriangle
	Noise        APUNoise
	DMC          APUDMC
	FrameCounter APUFrameCounter

	LastTime int
}

type APUTimer struct {
	PrevCycle  int
	Timer      int
	Period     int
	LastOutput int
}

type APULengthCounter struct {
	Enabled bool
	Halt    bool
	Counter uint8
}

type APUEnvelope struct {
	LengthCounter  APULengthCounter
	ConstantVolume bool
	Volume         uint8
	Start          bool
	Divider        int8
	Counter        uint8
}

type APUSquare struct {
	Timer    APUTimer
	Envelope APUEnvelope

	Duty    uint8
	DutyPos uint8

	SweepEnabled      bool
	SweepPeriod       uint8
	SweepNegate       bool
	SweepShift        uint8
	ReloadSweep       bool
	SweepDivider      uint8
	SweepTargetPeriod uint32
	RealPeriod        uint16
}

type APUTriangle struct {
	Timer         APUTimer
	LengthCounter APULengthCounter

	LinearCounter       uint8
	LinearCounterReload uint8
	LinearReload        bool
	LinearCtrl          bool
	Pos                 uint8
}

type APUNoise struct {
	Timer    APUTimer
	Envelope APUEnvelope

	ShiftReg uint16
	Mode     bool
}

type APUDMC struct {
	Timer APUTimer

	SampleAddr  uint16
	SampleLen   uint16
	CurrentAddr uint16
	Remaining   uint16
	OutputLevel uint8
	ReadBuf     uint8
	BitsLeft    uint8
	ShiftReg    uint8
	IRQEnabled  bool
	Loop        bool
	BufEmpty    bool
	Silence     bool
	IRQFlag     bool
}

type APUFrameCounter struct {
	Period  int
	Next    int
	Step    int
	Mode    uint8
	IRQFlag bool
}

type AY struct {
	Regs [16]uint8
	Addr uint8

	Tones      [3]AYTone
	NoiseLFSR  uint32
	NoiseDelay int
	EnvPos     int
	EnvDelay   int
	LastTime   int

	BeeperAmp int
}

type AYTone struct {
	Period  int
	Delay   int
	Phase   uint8
	LastAmp int
}
