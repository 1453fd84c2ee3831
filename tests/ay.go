package tests

import (
	"encoding/binary"
)

// AY fixture layout. Init is at CodeAddr, play at CodeAddr+PlayOffsetZ80.
const (
	CodeAddr      = 0x8000
	PlayOffsetZ80 = 0x100
	StackAddr     = 0xF000
)

// RAM locations updated by the canned Z80 drivers.
const (
	PlayCountZ80 = 0xC000
	InitDoneZ80  = 0xC001
)

// DriverZ80 is the machine code of an init and a play routine.
type DriverZ80 struct {
	Init []byte
	Play []byte
}

// Code returns the memory block of the driver, with init at offset 0 and
// play at PlayOffsetZ80.
func (d DriverZ80) Code() []byte {
	if len(d.Init) > PlayOffsetZ80 {
		panic("tests: init routine too long")
	}
	code := make([]byte, PlayOffsetZ80+len(d.Play))
	copy(code, d.Init)
	copy(code[PlayOffsetZ80:], d.Play)
	return code
}

// WriteAY returns the Z80 code writing val into AY register reg, through
// ports $FFFD and $BFFD. It uses A and BC.
func WriteAY(reg, val uint8) []byte {
	return []byte{
		0x01, 0xFD, 0xFF, // LD BC,$FFFD
		0x3E, reg,        // LD A,reg
		0xED, 0x79,       // OUT (C),A
		0x06, 0xBF,       // LD B,$BF
		0x3E, val,        // LD A,val
		0xED, 0x79,       // OUT (C),A
	}
}

// WriteCPC returns the Z80 code writing val into AY register reg, through
// the CPC ports: $F4xx latches a byte, $F6C0 selects the register and $F680
// writes the data. It uses BC.
func WriteCPC(reg, val uint8) []byte {
	return []byte{
		0x01, reg, 0xF4,  // LD BC,$F4reg
		0xED, 0x49,       // OUT (C),C
		0x01, 0xC0, 0xF6, // LD BC,$F6C0
		0xED, 0x49,       // OUT (C),C
		0x01, 0x00, 0xF6, // LD BC,$F600
		0xED, 0x49,       // OUT (C),C
		0x01, val, 0xF4,  // LD BC,$F4val
		0xED, 0x49,       // OUT (C),C
		0x01, 0x80, 0xF6, // LD BC,$F680
		0xED, 0x49,       // OUT (C),C
		0x01, 0x00, 0xF6, // LD BC,$F600
		0xED, 0x49,       // OUT (C),C
	}
}

var (
	incInitDone  = []byte{0x21, InitDoneZ80 & 0xFF, InitDoneZ80 >> 8, 0x34}   // LD HL,InitDone; INC (HL)
	incPlayCount = []byte{0x21, PlayCountZ80 & 0xFF, PlayCountZ80 >> 8, 0x34} // LD HL,PlayCount; INC (HL)
	ret          = []byte{0xC9}
)

func code(parts ...[]byte) []byte {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

var (
	// SilentZ80 counts the calls to init and play.
	SilentZ80 = DriverZ80{
		Init: code(incInitDone, ret),
		Play: code(incPlayCount, ret),
	}

	// ToneZ80 plays a constant tone on channel A.
	ToneZ80 = DriverZ80{
		Init: code(
			WriteAY(0, 0xFD),
			WriteAY(1, 0x00),
			WriteAY(7, 0x3E),
			WriteAY(8, 0x0F),
			incInitDone,
			ret,
		),
		Play: SilentZ80.Play,
	}

	// CPCToneZ80 plays the tone of ToneZ80 through the CPC ports.
	CPCToneZ80 = DriverZ80{
		Init: code(
			WriteCPC(0, 0xFD),
			WriteCPC(1, 0x00),
			WriteCPC(7, 0x3E),
			WriteCPC(8, 0x0F),
			incInitDone,
			ret,
		),
		Play: SilentZ80.Play,
	}

	// BeeperZ80 toggles the beeper at each play call.
	BeeperZ80 = DriverZ80{
		Init: SilentZ80.Init,
		Play: code(
			incPlayCount,
			[]byte{
				0x7E,       // LD A,(HL)
				0x07,       // RLCA
				0x07,       // RLCA
				0x07,       // RLCA
				0x07,       // RLCA
				0xE6, 0x10, // AND $10
				0xD3, 0xFE, // OUT ($FE),A
			},
			ret,
		),
	}

	// OverrunZ80 disables the interrupts and never returns from play.
	OverrunZ80 = DriverZ80{
		Init: SilentZ80.Init,
		Play: code([]byte{0xF3}, incPlayCount, []byte{0x18, 0xFE}), // DI; ...; JR *
	}

	// IllegalZ80 executes an undefined ED opcode in init.
	IllegalZ80 = DriverZ80{
		Init: code([]byte{0xED, 0x00}, incInitDone, ret),
		Play: SilentZ80.Play,
	}

	// PassiveZ80 installs its play routine as an IM 2 handler, with the
	// vector at $FEFF (I = $FE). It must be used in a passive track.
	PassiveZ80 = DriverZ80{
		Init: code(
			[]byte{
				0x3E, 0xFE,                                                               // LD A,$FE
				0xED, 0x47,                                                               // LD I,A
				0x21, (CodeAddr + PlayOffsetZ80) & 0xFF, (CodeAddr + PlayOffsetZ80) >> 8, // LD HL,handler
				0x22, 0xFF, 0xFE,                                                         // LD ($FEFF),HL
			},
			incInitDone,
			ret,
		),
		Play: code(incPlayCount, []byte{0xFB, 0xC9}), // EI; RET
	}
)

// AYTrack describes one track of an AY file.
type AYTrack struct {
	Name   string
	Length uint16 // frames
	Fade   uint16 // frames
	HiReg  uint8
	LoReg  uint8
	Init   uint16 // CodeAddr if zero
	Driver DriverZ80

	// Passive tracks have no play address, their init installs an
	// interrupt handler.
	Passive bool

	Blocks []AYBlock // the driver code at CodeAddr if nil
}

// AYBlock is a memory block of a track.
type AYBlock struct {
	Addr uint16
	Data []byte
}

// AY describes an AY file built by Bytes.
type AY struct {
	Version uint8
	Author  string
	Misc    string
	First   uint8
	Tracks  []AYTrack
}

// Bytes returns the AY file. The layout is: header, track table, track
// records, entry points, block tables, block data and strings.
func (a AY) Bytes() []byte {
	be := binary.BigEndian
	buf := make([]byte, 0x14)
	copy(buf, "ZXAYEMUL")
	buf[8] = a.Version
	buf[16] = uint8(len(a.Tracks) - 1)
	buf[17] = a.First

	ptr := func(pos, target int) {
		be.PutUint16(buf[pos:], uint16(int16(target-pos)))
	}
	grow := func(n int) int {
		pos := len(buf)
		buf = append(buf, make([]byte, n)...)
		return pos
	}
	str := func(pos int, s string) {
		ptr(pos, len(buf))
		buf = append(buf, s...)
		buf = append(buf, 0)
	}

	table := grow(4 * len(a.Tracks))
	ptr(18, table)

	records := make([]int, len(a.Tracks))
	for i, t := range a.Tracks {
		records[i] = grow(14)
		ptr(table+i*4+2, records[i])
		be.PutUint16(buf[records[i]+4:], t.Length)
		be.PutUint16(buf[records[i]+6:], t.Fade)
		buf[records[i]+8] = t.HiReg
		buf[records[i]+9] = t.LoReg
	}

	for i, t := range a.Tracks {
		points := grow(6)
		ptr(records[i]+10, points)
		init := t.Init
		if init == 0 {
			init = CodeAddr
		}
		be.PutUint16(buf[points:], StackAddr)
		be.PutUint16(buf[points+2:], init)
		if !t.Passive {
			be.PutUint16(buf[points+4:], CodeAddr+PlayOffsetZ80)
		}
	}

	type pending struct {
		pos  int
		data []byte
	}
	var data []pending
	for i, t := range a.Tracks {
		blocks := t.Blocks
		if blocks == nil {
			blocks = []AYBlock{{Addr: CodeAddr, Data: t.Driver.Code()}}
		}
		tbl := grow(6*len(blocks) + 8)
		ptr(records[i]+12, tbl)
		for j, b := range blocks {
			be.PutUint16(buf[tbl+j*6:], b.Addr)
			be.PutUint16(buf[tbl+j*6+2:], uint16(len(b.Data)))
			data = append(data, pending{tbl + j*6 + 4, b.Data})
		}
	}
	for _, d := range data {
		ptr(d.pos, len(buf))
		buf = append(buf, d.data...)
	}

	str(12, a.Author)
	str(14, a.Misc)
	for i, t := range a.Tracks {
		str(table+i*4, t.Name)
	}
	return buf
}
