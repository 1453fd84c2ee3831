package tests

import (
	"encoding/binary"
)

// NSF fixture layout. Init is at LoadAddr, play at LoadAddr+PlayOffset.
const (
	LoadAddr   = 0x8000
	PlayOffset = 0x40
)

// RAM locations updated by the canned 6502 drivers.
const (
	PlayCount = 0x00 // incremented by each play call
	InitDone  = 0x01 // incremented when init returns
	TrackArg  = 0x02 // A at init
	PALArg    = 0x03 // X at init

	// 16-bit play counter of LateToneDriver.
	LateCount = 0x04
)

// LateTonePlays is the play call at which LateToneDriver starts its tone,
// about 20 seconds into the track.
const LateTonePlays = 1200

// Driver6502 is the machine code of an init and a play routine.
type Driver6502 struct {
	Init []byte
	Play []byte
}

var (
	// SilentDriver writes nothing to the APU.
	SilentDriver = Driver6502{
		Init: []byte{
			0x85, TrackArg, // STA $02
			0x86, PALArg,   // STX $03
			0xE6, InitDone, // INC $01
			0x60,           // RTS
		},
		Play: []byte{
			0xE6, PlayCount, // INC $00
			0x60,            // RTS
		},
	}

	// ToneDriver starts a constant square wave on Square 1 in init.
	ToneDriver = Driver6502{
		Init: []byte{
			0x85, TrackArg,               // STA $02
			0xA9, 0xBF, 0x8D, 0x00, 0x40, // LDA #$BF; STA $4000
			0xA9, 0x00, 0x8D, 0x01, 0x40, // LDA #$00; STA $4001
			0xA9, 0xFD, 0x8D, 0x02, 0x40, // LDA #$FD; STA $4002
			0xA9, 0x00, 0x8D, 0x03, 0x40, // LDA #$00; STA $4003
			0xE6, InitDone,               // INC $01
			0x60,                         // RTS
		},
		Play: SilentDriver.Play,
	}

	// SlowInitDriver spends about 330000 clocks in init, which is more
	// than 7 play periods.
	SlowInitDriver = Driver6502{
		Init: []byte{
			0xA2, 0x00,     // LDX #0
			0xA0, 0x00,     // LDY #0
			0x88,           // DEY
			0xD0, 0xFD,     // BNE -3
			0xCA,           // DEX
			0xD0, 0xFA,     // BNE -6
			0xE6, InitDone, // INC $01
			0x60,           // RTS
		},
		Play: SilentDriver.Play,
	}

	// OverrunDriver never returns from play.
	OverrunDriver = Driver6502{
		Init: SilentDriver.Init,
		Play: []byte{
			0xE6, PlayCount,                                                            // INC $00
			0x4C, (LoadAddr + PlayOffset + 2) & 0xFF, (LoadAddr + PlayOffset + 2) >> 8, // JMP *
		},
	}

	// IllegalDriver executes a KIL opcode in init.
	IllegalDriver = Driver6502{
		Init: []byte{
			0x02,           // KIL
			0xE6, InitDone, // INC $01
			0x60,           // RTS
		},
		Play: SilentDriver.Play,
	}
)

// LateToneDriver is silent for LateTonePlays play calls, then starts the
// tone of ToneDriver.
var LateToneDriver = Driver6502{
	Init: SilentDriver.Init,
	Play: append([]byte{
		0xE6, LateCount,              // INC $04
		0xD0, 0x02,                   // BNE +2
		0xE6, LateCount + 1,          // INC $05
		0xA5, LateCount,              // LDA $04
		0xC9, LateTonePlays & 0xFF,   // CMP #lo
		0xD0, 0x1A,                   // BNE done
		0xA5, LateCount + 1,          // LDA $05
		0xC9, LateTonePlays >> 8,     // CMP #hi
		0xD0, 0x14,                   // BNE done
		0xA9, 0xBF, 0x8D, 0x00, 0x40, // LDA #$BF; STA $4000
		0xA9, 0x00, 0x8D, 0x01, 0x40, // LDA #$00; STA $4001
		0xA9, 0xFD, 0x8D, 0x02, 0x40, // LDA #$FD; STA $4002
		0xA9, 0x00, 0x8D, 0x03, 0x40, // LDA #$00; STA $4003
	}, 0x60), // done: RTS
}

// ToneThenStop returns a driver playing a tone that play silences after n
// calls.
func ToneThenStop(n uint8) Driver6502 {
	return Driver6502{
		Init: ToneDriver.Init,
		Play: []byte{
			0xE6, PlayCount,  // INC $00
			0xA5, PlayCount,  // LDA $00
			0xC9, n,          // CMP #n
			0xD0, 0x05,       // BNE +5
			0xA9, 0x00,       // LDA #0
			0x8D, 0x15, 0x40, // STA $4015
			0x60,             // RTS
		},
	}
}

// NSF describes a file built by Bytes.
type NSF struct {
	Version   uint8 // 1 if zero
	Tracks    uint8 // 1 if zero
	First     uint8 // 1-based, 1 if zero
	PAL       bool
	Banks     [8]uint8
	ChipFlags uint8
	NTSCSpeed uint16 // $411A if zero
	Game      string
	Author    string
	Copyright string
	Driver    Driver6502
	Data      []byte // replaces the driver when set
	LoadAddr  uint16 // LoadAddr if zero
	InitAddr  uint16 // load address if zero
	PlayAddr  uint16 // load address + PlayOffset if zero
}

// Bytes returns the NSF file.
func (n NSF) Bytes() []byte {
	le := binary.LittleEndian
	hdr := make([]byte, 0x80)
	copy(hdr, "NESM\x1a")
	hdr[5] = or(n.Version, 1)
	hdr[6] = or(n.Tracks, 1)
	hdr[7] = or(n.First, 1)

	load := n.LoadAddr
	if load == 0 {
		load = LoadAddr
	}
	init, play := n.InitAddr, n.PlayAddr
	if init == 0 {
		init = load
	}
	if play == 0 {
		play = load + PlayOffset
	}
	le.PutUint16(hdr[8:], load)
	le.PutUint16(hdr[10:], init)
	le.PutUint16(hdr[12:], play)
	copy(hdr[0x0E:0x2D], n.Game)
	copy(hdr[0x2E:0x4D], n.Author)
	copy(hdr[0x4E:0x6D], n.Copyright)
	speed := n.NTSCSpeed
	if speed == 0 {
		speed = 0x411A
	}
	le.PutUint16(hdr[0x6E:], speed)
	copy(hdr[0x70:], n.Banks[:])
	le.PutUint16(hdr[0x78:], 0x4E20)
	if n.PAL {
		hdr[0x7A] = 1
	}
	hdr[0x7B] = n.ChipFlags

	data := n.Data
	if data == nil {
		data = n.Driver.Code()
	}
	return append(hdr, data...)
}

// Code returns the ROM image of the driver, with init at offset 0 and play
// at PlayOffset.
func (d Driver6502) Code() []byte {
	if len(d.Init) > PlayOffset {
		panic("tests: init routine too long")
	}
	code := make([]byte, PlayOffset+len(d.Play))
	copy(code, d.Init)
	copy(code[PlayOffset:], d.Play)
	return code
}

// NSFE describes an NSFE file built by Bytes.
type NSFE struct {
	Tracks   uint8
	First    uint8 // 0-based
	Driver   Driver6502
	Auth     []string
	Times    []int32
	Fades    []int32
	Labels   []string
	Playlist []uint8
	Extra    []Chunk // appended before NEND
}

// Chunk is a raw NSFE chunk.
type Chunk struct {
	ID   string
	Data []byte
}

func (n NSFE) Bytes() []byte {
	le := binary.LittleEndian
	buf := []byte("NSFE")
	add := func(id string, data []byte) {
		buf = le.AppendUint32(buf, uint32(len(data)))
		buf = append(buf, id...)
		buf = append(buf, data...)
	}

	info := make([]byte, 10)
	le.PutUint16(info[0:], LoadAddr)
	le.PutUint16(info[2:], LoadAddr)
	le.PutUint16(info[4:], LoadAddr+PlayOffset)
	info[8] = or(n.Tracks, 1)
	info[9] = n.First
	add("INFO", info)
	add("DATA", n.Driver.Code())

	if n.Auth != nil {
		add("auth", cstrings(n.Auth))
	}
	if n.Times != nil {
		add("time", int32s(n.Times))
	}
	if n.Fades != nil {
		add("fade", int32s(n.Fades))
	}
	if n.Labels != nil {
		add("tlbl", cstrings(n.Labels))
	}
	if n.Playlist != nil {
		add("plst", n.Playlist)
	}
	for _, c := range n.Extra {
		add(c.ID, c.Data)
	}
	add("NEND", nil)
	return buf
}

func cstrings(strs []string) []byte {
	var buf []byte
	for _, s := range strs {
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return buf
}

func int32s(vals []int32) []byte {
	var buf []byte
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return buf
}

func or(v, def uint8) uint8 {
	if v == 0 {
		return def
	}
	return v
}
