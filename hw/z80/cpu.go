// Package z80 implements the Zilog Z80, with T-state timing.
package z80

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// Bus is the memory and I/O space seen by the CPU.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	In(port uint16) uint8
	Out(port uint16, val uint8)
}

type CPU struct {
	Bus Bus

	Cycles int64 // T-states

	// cpu registers
	A, F               uint8
	BC, DE, HL         uint16
	AF2, BC2, DE2, HL2 uint16 // shadow registers
	IX, IY, SP, PC     uint16
	I, R               uint8
	IM                 uint8
	IFF1, IFF2         bool

	halted    bool
	corrupted int

	xy *uint16 // HL, IX or IY, depending on the current prefix
}

func NewCPU(bus Bus) *CPU {
	c := &CPU{Bus: bus}
	c.Reset()
	return c
}

// Reset puts the CPU in its power-up state. The clock is not touched.
func (c *CPU) Reset() {
	c.A, c.F = 0xFF, 0xFF
	c.BC, c.DE, c.HL = 0, 0, 0
	c.AF2, c.BC2, c.DE2, c.HL2 = 0, 0, 0, 0
	c.IX, c.IY = 0, 0
	c.SP = 0xFFFF
	c.PC = 0
	c.I, c.R = 0, 0
	c.IM = 0
	c.IFF1, c.IFF2 = false, false
	c.halted = false
	c.corrupted = 0
	c.xy = &c.HL
}

func (c *CPU) AF() uint16 { return uint16(c.A)<<8 | uint16(c.F) }

func (c *CPU) SetAF(v uint16) {
	c.A = uint8(v >> 8)
	c.F = uint8(v)
}

// Time returns the current clock time.
func (c *CPU) Time() int64 { return c.Cycles }

// SetTime sets the clock time.
func (c *CPU) SetTime(t int64) { c.Cycles = t }

// AdjustTime adds delta to the clock time.
func (c *CPU) AdjustTime(delta int64) { c.Cycles += delta }

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Corrupted returns the number of undefined instructions executed since the
// last reset.
func (c *CPU) Corrupted() int { return c.corrupted }

// Run executes instructions until the clock reaches until. A halted CPU
// executes internal NOPs until then.
func (c *CPU) Run(until int64) {
	for c.Cycles < until {
		if c.halted {
			n := (until - c.Cycles + 3) / 4
			c.Cycles += 4 * n
			c.R = c.R&0x80 | (c.R+uint8(n))&0x7F
			return
		}
		c.Step()
	}
}

// Step executes a single instruction.
func (c *CPU) Step() {
	if c.halted {
		c.Cycles += 4
		c.incR()
		return
	}
	c.xy = &c.HL
	c.exec(c.fetchOp())
}

// Interrupt requests a maskable interrupt. It returns false if interrupts are
// disabled. In IM 2, vector is the low byte put on the data bus.
func (c *CPU) Interrupt(vector uint8) bool {
	if !c.IFF1 {
		return false
	}
	c.halted = false
	c.IFF1, c.IFF2 = false, false
	c.incR()
	c.push16(c.PC)
	switch c.IM {
	case 2:
		c.PC = c.read16(uint16(c.I)<<8 | uint16(vector))
		c.Cycles += 19
	case 0:
		// Only RST instructions make sense on the data bus.
		c.PC = 0x0038
		if vector&0xC7 == 0xC7 {
			c.PC = uint16(vector & 0x38)
		}
		c.Cycles += 13
	default:
		c.PC = 0x0038
		c.Cycles += 13
	}
	return true
}

func (c *CPU) incR() {
	c.R = c.R&0x80 | (c.R+1)&0x7F
}

func (c *CPU) fetchOp() uint8 {
	c.incR()
	return c.fetch8()
}

func (c *CPU) fetch8() uint8 {
	val := c.Bus.Read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.Bus.Read8(addr)
	hi := c.Bus.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) write16(addr, val uint16) {
	c.Bus.Write8(addr, uint8(val))
	c.Bus.Write8(addr+1, uint8(val>>8))
}

func (c *CPU) push16(val uint16) {
	c.SP--
	c.Bus.Write8(c.SP, uint8(val>>8))
	c.SP--
	c.Bus.Write8(c.SP, uint8(val))
}

func (c *CPU) pop16() uint16 {
	val := c.read16(c.SP)
	c.SP += 2
	return val
}

// Push16 pushes a 16-bit value on the stack, without using cycles.
func (c *CPU) Push16(val uint16) { c.push16(val) }

func (c *CPU) indexed() bool { return c.xy != &c.HL }

func (c *CPU) illegal(prefix, opcode uint8) {
	c.corrupted++
	log.ModCPU.DebugZ("undefined instruction").
		Hex16("PC", c.PC-2).
		Hex8("prefix", prefix).
		Hex8("opcode", opcode).
		End()
}

func (c *CPU) State() *snapshot.Z80 {
	return &snapshot.Z80{
		AF:        c.AF(),
		BC:        c.BC,
		DE:        c.DE,
		HL:        c.HL,
		AF2:       c.AF2,
		BC2:       c.BC2,
		DE2:       c.DE2,
		HL2:       c.HL2,
		IX:        c.IX,
		IY:        c.IY,
		SP:        c.SP,
		PC:        c.PC,
		I:         c.I,
		R:         c.R,
		IM:        c.IM,
		IFF1:      c.IFF1,
		IFF2:      c.IFF2,
		Cycles:    c.Cycles,
		Halted:    c.halted,
		Corrupted: c.corrupted,
	}
}
