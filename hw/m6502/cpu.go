// Package m6502 implements the MOS 6502 instruction set, as found in the
// Ricoh 2A03 of the NES (no decimal mode).
package m6502

import (
	"chipplay/emu/log"
	"chipplay/hw/snapshot"
)

// IRQVector holds the address of the interrupt handler, also used by BRK.
const IRQVector = uint16(0xFFFE)

// HaltOpcode is the opcode that stops the CPU when executed at IdleAddr.
// Anywhere else it's an illegal instruction.
const HaltOpcode = 0x22

// Bus is the memory seen by the CPU.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

type CPU struct {
	Bus Bus

	// IdleAddr is the address at which the CPU stops when it executes
	// HaltOpcode. The coordinators use it as the return address of the
	// routines they call.
	IdleAddr uint16

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	halted    bool
	corrupted int
}

func NewCPU(bus Bus) *CPU {
	c := &CPU{Bus: bus}
	c.Reset()
	return c
}

// Reset puts the CPU in its power-up state. The clock is not touched.
func (c *CPU) Reset() {
	c.A = 0x00
	c.X = 0x00
	c.Y = 0x00
	c.SP = 0xFD
	c.P = Interrupt | Reserved
	c.PC = 0x0000
	c.halted = false
	c.corrupted = 0
}

// Time returns the current clock time.
func (c *CPU) Time() int64 { return c.Cycles }

// SetTime sets the clock time.
func (c *CPU) SetTime(t int64) { c.Cycles = t }

// AdjustTime adds delta to the clock time. Used to rebase the clock at the
// end of a frame.
func (c *CPU) AdjustTime(delta int64) { c.Cycles += delta }

// Halted reports whether the CPU stopped at IdleAddr.
func (c *CPU) Halted() bool { return c.halted }

// Resume clears the halted state.
func (c *CPU) Resume() { c.halted = false }

// Corrupted returns the number of illegal instructions executed since the
// last reset.
func (c *CPU) Corrupted() int { return c.corrupted }

// Run executes instructions until the clock reaches until, or the CPU halts.
// The last instruction may overshoot until by a few cycles.
func (c *CPU) Run(until int64) {
	for c.Cycles < until && !c.halted {
		opcode := c.fetch8()
		ops[opcode](c)
	}
}

// Step executes a single instruction.
func (c *CPU) Step() {
	if !c.halted {
		ops[c.fetch8()](c)
	}
}

func (c *CPU) tick() {
	c.Cycles++
}

func (c *CPU) Read8(addr uint16) uint8 {
	c.Cycles++
	return c.Bus.Read8(addr)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Cycles++
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) fetch8() uint8 {
	val := c.Read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.Write8(0x0100|uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.Read8(0x0100 | uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

// Push pushes a 16-bit value on the stack, without using cycles. The
// coordinators use it to set up return addresses.
func (c *CPU) Push16(val uint16) {
	c.Bus.Write8(0x0100|uint16(c.SP), uint8(val>>8))
	c.SP--
	c.Bus.Write8(0x0100|uint16(c.SP), uint8(val))
	c.SP--
}

/* interrupts */

func (c *CPU) interrupt(vector uint16, brk bool) {
	c.push16(c.PC)
	p := c.P | Reserved
	p.set(Break, brk)
	c.push8(uint8(p))
	c.P |= Interrupt
	c.PC = c.Read16(vector)
	c.halted = false
}

// IRQEnabled reports whether the I flag lets interrupt requests through.
func (c *CPU) IRQEnabled() bool { return !c.P.has(Interrupt) }

// IRQ runs the interrupt sequence if interrupts are enabled, and reports
// whether it did. A halted CPU wakes up to run the handler.
func (c *CPU) IRQ() bool {
	if c.P.has(Interrupt) {
		return false
	}
	c.tick()
	c.tick()
	c.interrupt(IRQVector, false)
	return true
}

func (c *CPU) illegal(opcode uint8) {
	c.corrupted++
	if !log.ModCPU.Enabled(log.DebugLevel) {
		return
	}
	pc := c.PC - 1
	instr, _ := Disasm(c.Bus, pc)
	log.ModCPU.DebugZ("illegal instruction").
		Hex16("PC", pc).
		Hex8("opcode", opcode).
		String("instr", instr).
		End()
}

func (c *CPU) State() *snapshot.CPU6502 {
	return &snapshot.CPU6502{
		PC:        c.PC,
		SP:        c.SP,
		P:         uint8(c.P),
		A:         c.A,
		X:         c.X,
		Y:         c.Y,
		Cycles:    c.Cycles,
		Halted:    c.halted,
		Corrupted: c.corrupted,
	}
}

func (c *CPU) SetState(state *snapshot.CPU6502) {
	c.PC = state.PC
	c.SP = state.SP
	c.P = P(state.P)
	c.A = state.A
	c.X = state.X
	c.Y = state.Y
	c.Cycles = state.Cycles
	c.halted = state.Halted
	c.corrupted = state.Corrupted
}
