package m6502

/* read instructions */

func lda(c *CPU, val uint8) { c.A = val; c.P.setNZ(val) }
func ldx(c *CPU, val uint8) { c.X = val; c.P.setNZ(val) }
func ldy(c *CPU, val uint8) { c.Y = val; c.P.setNZ(val) }
func lax(c *CPU, val uint8) { c.A = val; c.X = val; c.P.setNZ(val) }
func and(c *CPU, val uint8) { c.A &= val; c.P.setNZ(c.A) }
func ora(c *CPU, val uint8) { c.A |= val; c.P.setNZ(c.A) }
func eor(c *CPU, val uint8) { c.A ^= val; c.P.setNZ(c.A) }
func nop(*CPU, uint8)       {}

// add memory to accumulator with carry. The 2A03 has no decimal mode.
func adc(c *CPU, val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(c.P.carry())
	c.P.set(Overflow, (c.A^uint8(sum))&(val^uint8(sum))&0x80 != 0)
	c.P.set(Carry, sum > 0xFF)
	c.A = uint8(sum)
	c.P.setNZ(c.A)
}

// substract memory from accumulator with borrow.
func sbc(c *CPU, val uint8) {
	adc(c, val^0xFF)
}

func compare(c *CPU, reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.setNZ(reg - val)
}

func cmp(c *CPU, val uint8) { compare(c, c.A, val) }
func cpx(c *CPU, val uint8) { compare(c, c.X, val) }
func cpy(c *CPU, val uint8) { compare(c, c.Y, val) }

func bit(c *CPU, val uint8) {
	c.P &^= Zero | Overflow | Negative
	c.P |= P(val & (Overflow | Negative))
	if c.A&val == 0 {
		c.P |= Zero
	}
}

func anc(c *CPU, val uint8) {
	and(c, val)
	c.P.set(Carry, c.A&0x80 != 0)
}

func alr(c *CPU, val uint8) {
	c.A = lsr(c, c.A&val)
}

func arr(c *CPU, val uint8) {
	c.A = (c.A&val)>>1 | c.P.carry()<<7
	c.P.setNZ(c.A)
	c.P.set(Carry, c.A&0x40 != 0)
	c.P.set(Overflow, (c.A>>6^c.A>>5)&1 != 0)
}

func axs(c *CPU, val uint8) {
	ax := c.A & c.X
	c.P.set(Carry, ax >= val)
	c.X = ax - val
	c.P.setNZ(c.X)
}

/* store instructions */

func sta(c *CPU) uint8 { return c.A }
func stx(c *CPU) uint8 { return c.X }
func sty(c *CPU) uint8 { return c.Y }
func sax(c *CPU) uint8 { return c.A & c.X }

/* read-modify-write instructions */

func asl(c *CPU, val uint8) uint8 {
	c.P.set(Carry, val&0x80 != 0)
	val <<= 1
	c.P.setNZ(val)
	return val
}

func lsr(c *CPU, val uint8) uint8 {
	c.P.set(Carry, val&0x01 != 0)
	val >>= 1
	c.P.setNZ(val)
	return val
}

func rol(c *CPU, val uint8) uint8 {
	carry := c.P.carry()
	c.P.set(Carry, val&0x80 != 0)
	val = val<<1 | carry
	c.P.setNZ(val)
	return val
}

func ror(c *CPU, val uint8) uint8 {
	carry := c.P.carry()
	c.P.set(Carry, val&0x01 != 0)
	val = val>>1 | carry<<7
	c.P.setNZ(val)
	return val
}

func inc(c *CPU, val uint8) uint8 { val++; c.P.setNZ(val); return val }
func dec(c *CPU, val uint8) uint8 { val--; c.P.setNZ(val); return val }

func slo(c *CPU, val uint8) uint8 { val = asl(c, val); ora(c, val); return val }
func rla(c *CPU, val uint8) uint8 { val = rol(c, val); and(c, val); return val }
func sre(c *CPU, val uint8) uint8 { val = lsr(c, val); eor(c, val); return val }
func rra(c *CPU, val uint8) uint8 { val = ror(c, val); adc(c, val); return val }
func dcp(c *CPU, val uint8) uint8 { val--; cmp(c, val); return val }
func isc(c *CPU, val uint8) uint8 { val++; sbc(c, val); return val }

/* other instructions */

func implied(f func(c *CPU)) func(c *CPU) {
	return func(c *CPU) {
		c.tick()
		f(c)
	}
}

func flag(flag P, v bool) func(c *CPU) {
	return implied(func(c *CPU) { c.P.set(flag, v) })
}

func branch(flag P, v bool) func(c *CPU) {
	return func(c *CPU) {
		off := int8(c.fetch8())
		if c.P.has(flag) != v {
			return
		}
		c.tick()
		dst := uint16(int32(c.PC) + int32(off))
		if pagecrossed(c.PC, dst) {
			c.tick()
		}
		c.PC = dst
	}
}

func BRK(c *CPU) {
	c.fetch8() // padding byte
	c.interrupt(IRQVector, true)
}

func JSR(c *CPU) {
	lo := c.fetch8()
	c.tick()
	c.push16(c.PC)
	hi := c.Read8(c.PC)
	c.PC = uint16(hi)<<8 | uint16(lo)
}

func RTS(c *CPU) {
	c.tick()
	c.tick()
	c.PC = c.pull16()
	c.tick()
	c.PC++
}

func RTI(c *CPU) {
	c.tick()
	c.tick()
	c.P = P(c.pull8())&^Break | Reserved
	c.PC = c.pull16()
}

func JMPabs(c *CPU) { c.PC = c.fetch16() }
func JMPind(c *CPU) { c.PC = c.address(ind, false) }

func PHA(c *CPU) { c.tick(); c.push8(c.A) }
func PHP(c *CPU) { c.tick(); c.push8(uint8(c.P | Break | Reserved)) }

func PLA(c *CPU) {
	c.tick()
	c.tick()
	c.A = c.pull8()
	c.P.setNZ(c.A)
}

func PLP(c *CPU) {
	c.tick()
	c.tick()
	c.P = P(c.pull8())&^Break | Reserved
}

func TAX(c *CPU) { c.X = c.A; c.P.setNZ(c.X) }
func TAY(c *CPU) { c.Y = c.A; c.P.setNZ(c.Y) }
func TXA(c *CPU) { c.A = c.X; c.P.setNZ(c.A) }
func TYA(c *CPU) { c.A = c.Y; c.P.setNZ(c.A) }
func TSX(c *CPU) { c.X = c.SP; c.P.setNZ(c.X) }
func TXS(c *CPU) { c.SP = c.X }
func INX(c *CPU) { c.X++; c.P.setNZ(c.X) }
func INY(c *CPU) { c.Y++; c.P.setNZ(c.Y) }
func DEX(c *CPU) { c.X--; c.P.setNZ(c.X) }
func DEY(c *CPU) { c.Y--; c.P.setNZ(c.Y) }
func NOP(c *CPU) {}

// kil jams a real 6502. Here it stops the CPU only at the idle address, and
// is a cheap no-op everywhere else so that damaged files still play.
func kil(opcode uint8) func(c *CPU) {
	return func(c *CPU) {
		if c.PC-1 == c.IdleAddr {
			c.PC--
			c.halted = true
			return
		}
		c.tick()
		c.illegal(opcode)
	}
}

// unstable skips the operand of an opcode whose behavior depends on the
// chip revision, and treats it as a no-op.
func unstable(opcode uint8, m mode) func(c *CPU) {
	return func(c *CPU) {
		c.tick()
		c.illegal(opcode)
		c.PC += uint16(m.operandSize())
	}
}
