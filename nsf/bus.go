package nsf

import (
	"chipplay/emu/log"
	"chipplay/hw/apu"
	"chipplay/hw/hwio"
	"chipplay/hw/m6502"
)

// Memory layout.
const (
	ramSize   = 0x0800
	sramAddr  = 0x6000
	sramSize  = 0x2000
	romAddr   = 0x8000
	bankSize  = 0x1000
	bankCount = 8
	pageBits  = 11 // 2kB pages

	// The CPU halts when it returns to idleAddr, the device answers
	// HaltOpcode there.
	idleAddr = 0x5FF6

	sramBankAddr = 0x5FF6 // $5FF6-$5FF7
	bankAddr     = 0x5FF8 // $5FF8-$5FFF
)

// Arena offsets.
const (
	ramOff  = 0
	sramOff = ramOff + ramSize
	romOff  = sramOff + sramSize
)

// memory is the NSF address space: a page map over RAM, SRAM and the ROM
// banks, plus the device handling the APU and the bank registers.
type memory struct {
	*hwio.PageMap

	apu *apu.APU
	cpu *m6502.CPU

	image []byte // file data, for images loaded below the ROM

	nbanks   int  // ROM banks in the arena, excluding the zero bank
	zeroBank int  // arena offset of the bank returned for invalid numbers
	sramBank bool // $5FF6-$5FF7 are bank registers

	invalidBank bool
}

// newMemory creates the address space for f. The ROM image is copied once
// into the arena, preceded by LoadAddr%bankSize bytes of padding, and is
// never modified.
func newMemory(f *File, a *apu.APU, cpu *m6502.CPU) *memory {
	pad := int(f.LoadAddr) % bankSize
	romSize := (pad + len(f.Data) + bankSize - 1) / bankSize * bankSize

	m := &memory{
		PageMap:  hwio.NewPageMap("nsf", romOff+romSize+bankSize, pageBits, 0),
		apu:      a,
		cpu:      cpu,
		nbanks:   romSize / bankSize,
		zeroBank: romOff + romSize,
		sramBank: f.BankSwitched(),
		image:    f.Data,
	}
	copy(m.Arena()[romOff+pad:], f.Data)
	m.SetDevice((*registers)(m))
	return m
}

// reset clears RAM and SRAM and maps the initial banks.
func (m *memory) reset(hdr *Header) {
	clear(m.Arena()[ramOff:romOff])
	m.invalidBank = false

	m.UnmapAll()
	m.Map(0x0000, 0x2000, ramOff, ramSize, true)
	m.Map(sramAddr, sramSize, sramOff, sramSize, true)

	var banks [bankCount]uint8
	if hdr.BankSwitched() {
		banks = hdr.Banks
	} else {
		// Not bank-switched, banks follow the load address.
		first := (int(hdr.LoadAddr) - sramAddr) / bankSize
		for i := range banks {
			bank := i + (romAddr-sramAddr)/bankSize - first
			if bank < 0 || bank >= m.nbanks {
				bank = 0
			}
			banks[i] = uint8(bank)
		}
	}
	for i, b := range banks {
		m.mapBank(i, b)
	}
	if !hdr.BankSwitched() && hdr.LoadAddr < romAddr {
		m.loadLow(hdr.LoadAddr)
	}
}

// loadLow copies the file data into RAM or SRAM, at the load address.
func (m *memory) loadLow(load uint16) {
	arena := m.Arena()
	switch {
	case int(load) < ramSize:
		copy(arena[ramOff+int(load):ramOff+ramSize], m.image)
	case load >= sramAddr:
		copy(arena[sramOff+int(load)-sramAddr:sramOff+sramSize], m.image)
	default:
		return
	}
	log.ModMem.DebugZ("image loaded below ROM").Hex16("addr", load).End()
}

func (m *memory) bankOffset(bank uint8) int {
	if int(bank) >= m.nbanks {
		m.invalidBank = true
		log.ModMem.DebugZ("invalid bank").Uint8("bank", bank).End()
		return m.zeroBank
	}
	return romOff + int(bank)*bankSize
}

// mapBank maps ROM bank at $8000 + i*4kB.
func (m *memory) mapBank(i int, bank uint8) {
	m.Map(uint16(romAddr+i*bankSize), bankSize, m.bankOffset(bank), bankSize, false)
}

// copySRAMBank copies a ROM bank into the i-th 4kB half of the SRAM.
func (m *memory) copySRAMBank(i int, bank uint8) {
	arena := m.Arena()
	off := m.bankOffset(bank)
	copy(arena[sramOff+i*bankSize:sramOff+(i+1)*bankSize], arena[off:off+bankSize])
}

// registers is the device handling the accesses to the unmapped pages.
type registers memory

func (r *registers) time() int {
	return int(r.cpu.Cycles)
}

func (r *registers) Read8(addr uint16, peek bool) uint8 {
	switch {
	case addr == idleAddr:
		return m6502.HaltOpcode
	case addr == apu.StatusAddr:
		if peek {
			return 0
		}
		return r.apu.ReadStatus(r.time())
	}
	return uint8(addr >> 8)
}

func (r *registers) Write8(addr uint16, val uint8) {
	m := (*memory)(r)
	switch {
	case addr >= apu.StartAddr && addr <= apu.EndAddr:
		r.apu.Write(r.time(), addr, val)
	case addr >= bankAddr:
		m.mapBank(int(addr-bankAddr), val)
	case addr >= sramBankAddr && r.sramBank:
		m.copySRAMBank(int(addr-sramBankAddr), val)
	default:
		log.ModMem.DebugZ("unmapped write").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
	}
}

// readDMC is the reader of the DMC samples.
func (m *memory) readDMC(addr uint16) uint8 {
	return m.Peek8(addr)
}
