package z80

// T-states of unprefixed opcodes. Conditional instructions are listed with
// their not-taken time.
var cycles = [256]uint8{
	4, 10, 7, 6, 4, 4, 7, 4, 4, 11, 7, 6, 4, 4, 7, 4, // 00
	8, 10, 7, 6, 4, 4, 7, 4, 12, 11, 7, 6, 4, 4, 7, 4, // 10
	7, 10, 16, 6, 4, 4, 7, 4, 7, 11, 16, 6, 4, 4, 7, 4, // 20
	7, 10, 13, 6, 11, 11, 10, 4, 7, 11, 13, 6, 4, 4, 7, 4, // 30
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 40
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 50
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 60
	7, 7, 7, 7, 7, 7, 4, 7, 4, 4, 4, 4, 4, 4, 7, 4, // 70
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 80
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // 90
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // A0
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4, // B0
	5, 10, 10, 10, 10, 11, 7, 11, 5, 10, 10, 0, 10, 17, 7, 11, // C0
	5, 10, 10, 11, 10, 11, 7, 11, 5, 4, 10, 11, 10, 0, 7, 11, // D0
	5, 10, 10, 19, 10, 11, 7, 11, 5, 4, 10, 4, 10, 0, 7, 11, // E0
	5, 10, 10, 4, 10, 11, 7, 11, 5, 6, 10, 4, 10, 0, 7, 11, // F0
}

func (c *CPU) exec(op uint8) {
	// A chain of DD/FD prefixes only keeps the last one.
	for op == 0xDD || op == 0xFD {
		if op == 0xDD {
			c.xy = &c.IX
		} else {
			c.xy = &c.IY
		}
		c.Cycles += 4
		op = c.fetchOp()
	}

	switch op {
	case 0xCB:
		if c.indexed() {
			c.execIndexedCB()
			return
		}
		c.execCB(c.fetchOp())
	case 0xED:
		c.xy = &c.HL
		c.execED(c.fetchOp())
	default:
		c.execMain(op)
	}
}

// reg8 returns the register encoded r (B, C, D, E, H, L, -, A). With an
// index prefix, H and L are the halves of the index register.
func (c *CPU) reg8(r uint8, xy *uint16) uint8 {
	switch r {
	case 0:
		return uint8(c.BC >> 8)
	case 1:
		return uint8(c.BC)
	case 2:
		return uint8(c.DE >> 8)
	case 3:
		return uint8(c.DE)
	case 4:
		return uint8(*xy >> 8)
	case 5:
		return uint8(*xy)
	case 7:
		return c.A
	}
	panic("z80: (HL) is not a register")
}

func (c *CPU) setReg8(r, v uint8, xy *uint16) {
	switch r {
	case 0:
		c.BC = c.BC&0x00FF | uint16(v)<<8
	case 1:
		c.BC = c.BC&0xFF00 | uint16(v)
	case 2:
		c.DE = c.DE&0x00FF | uint16(v)<<8
	case 3:
		c.DE = c.DE&0xFF00 | uint16(v)
	case 4:
		*xy = *xy&0x00FF | uint16(v)<<8
	case 5:
		*xy = *xy&0xFF00 | uint16(v)
	case 7:
		c.A = v
	default:
		panic("z80: (HL) is not a register")
	}
}

// rp returns the register pair encoded p: BC, DE, HL (or index), SP.
func (c *CPU) rp(p uint8) *uint16 {
	switch p {
	case 0:
		return &c.BC
	case 1:
		return &c.DE
	case 2:
		return c.xy
	}
	return &c.SP
}

// memAddr returns the address of the (HL) operand, or (IX+d) with an index
// prefix, in which case the displacement is fetched.
func (c *CPU) memAddr() uint16 {
	if !c.indexed() {
		return c.HL
	}
	d := int8(c.fetch8())
	c.Cycles += 8
	return *c.xy + uint16(d)
}

func (c *CPU) operand8(r uint8) uint8 {
	if r == 6 {
		return c.Bus.Read8(c.memAddr())
	}
	return c.reg8(r, c.xy)
}

func (c *CPU) execMain(op uint8) {
	c.Cycles += int64(cycles[op])

	x, y, z := op>>6, op>>3&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 0:
		c.execX0(y, z, p, q)
	case 1:
		switch {
		case op == 0x76:
			c.halted = true
		case z == 6:
			// LD r,(IX+d) loads H and L, not the index halves.
			c.setReg8(y, c.Bus.Read8(c.memAddr()), &c.HL)
		case y == 6:
			addr := c.memAddr()
			c.Bus.Write8(addr, c.reg8(z, &c.HL))
		default:
			c.setReg8(y, c.reg8(z, c.xy), c.xy)
		}
	case 2:
		c.alu(y, c.operand8(z))
	case 3:
		c.execX3(y, z, p, q)
	}
}

func (c *CPU) execX0(y, z, p, q uint8) {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1:
			af := c.AF()
			c.SetAF(c.AF2)
			c.AF2 = af
		case 2: // DJNZ
			d := int8(c.fetch8())
			c.BC -= 0x100
			if c.BC>>8 != 0 {
				c.PC += uint16(d)
				c.Cycles += 5
			}
		case 3:
			d := int8(c.fetch8())
			c.PC += uint16(d)
		default:
			d := int8(c.fetch8())
			if c.cond(y - 4) {
				c.PC += uint16(d)
				c.Cycles += 5
			}
		}
	case 1:
		if q == 0 {
			*c.rp(p) = c.fetch16()
		} else {
			*c.xy = c.add16(*c.xy, *c.rp(p))
		}
	case 2:
		switch y {
		case 0:
			c.Bus.Write8(c.BC, c.A)
		case 1:
			c.A = c.Bus.Read8(c.BC)
		case 2:
			c.Bus.Write8(c.DE, c.A)
		case 3:
			c.A = c.Bus.Read8(c.DE)
		case 4:
			c.write16(c.fetch16(), *c.xy)
		case 5:
			*c.xy = c.read16(c.fetch16())
		case 6:
			c.Bus.Write8(c.fetch16(), c.A)
		case 7:
			c.A = c.Bus.Read8(c.fetch16())
		}
	case 3:
		if q == 0 {
			*c.rp(p)++
		} else {
			*c.rp(p)--
		}
	case 4:
		if y == 6 {
			addr := c.memAddr()
			c.Bus.Write8(addr, c.inc8(c.Bus.Read8(addr)))
		} else {
			c.setReg8(y, c.inc8(c.reg8(y, c.xy)), c.xy)
		}
	case 5:
		if y == 6 {
			addr := c.memAddr()
			c.Bus.Write8(addr, c.dec8(c.Bus.Read8(addr)))
		} else {
			c.setReg8(y, c.dec8(c.reg8(y, c.xy)), c.xy)
		}
	case 6:
		if y == 6 {
			addr := c.memAddr()
			if c.indexed() {
				c.Cycles -= 3
			}
			c.Bus.Write8(addr, c.fetch8())
		} else {
			c.setReg8(y, c.fetch8(), c.xy)
		}
	case 7:
		switch y {
		case 0, 1, 2, 3:
			c.rota(y)
		case 4:
			c.daa()
		case 5: // CPL
			c.A = ^c.A
			c.F = c.F&(flagS|flagZ|flagPV|flagC) | flagH | flagN | c.A&flagXY
		case 6: // SCF
			c.F = c.F&(flagS|flagZ|flagPV) | flagC | c.A&flagXY
		case 7: // CCF
			f := c.F&(flagS|flagZ|flagPV) | c.A&flagXY
			if c.F&flagC != 0 {
				f |= flagH
			} else {
				f |= flagC
			}
			c.F = f
		}
	}
}

func (c *CPU) execX3(y, z, p, q uint8) {
	switch z {
	case 0:
		if c.cond(y) {
			c.PC = c.pop16()
			c.Cycles += 6
		}
	case 1:
		if q == 0 {
			if p == 3 {
				c.SetAF(c.pop16())
			} else {
				*c.rp(p) = c.pop16()
			}
			return
		}
		switch p {
		case 0:
			c.PC = c.pop16()
		case 1: // EXX
			c.BC, c.BC2 = c.BC2, c.BC
			c.DE, c.DE2 = c.DE2, c.DE
			c.HL, c.HL2 = c.HL2, c.HL
		case 2:
			c.PC = *c.xy
		case 3:
			c.SP = *c.xy
		}
	case 2:
		nn := c.fetch16()
		if c.cond(y) {
			c.PC = nn
		}
	case 3:
		switch y {
		case 0:
			c.PC = c.fetch16()
		case 2:
			n := c.fetch8()
			c.Bus.Out(uint16(c.A)<<8|uint16(n), c.A)
		case 3:
			n := c.fetch8()
			c.A = c.Bus.In(uint16(c.A)<<8 | uint16(n))
		case 4: // EX (SP),HL
			v := c.read16(c.SP)
			c.write16(c.SP, *c.xy)
			*c.xy = v
		case 5: // EX DE,HL is never indexed.
			c.DE, c.HL = c.HL, c.DE
		case 6:
			c.IFF1, c.IFF2 = false, false
		case 7:
			c.IFF1, c.IFF2 = true, true
		}
	case 4:
		nn := c.fetch16()
		if c.cond(y) {
			c.push16(c.PC)
			c.PC = nn
			c.Cycles += 7
		}
	case 5:
		switch {
		case q == 0 && p == 3:
			c.push16(c.AF())
		case q == 0:
			c.push16(*c.rp(p))
		default: // CALL nn, prefixes are decoded earlier.
			nn := c.fetch16()
			c.push16(c.PC)
			c.PC = nn
		}
	case 6:
		c.alu(y, c.fetch8())
	case 7:
		c.push16(c.PC)
		c.PC = uint16(y) * 8
	}
}

func (c *CPU) execCB(op uint8) {
	x, y, z := op>>6, op>>3&7, op&7

	var v uint8
	if z == 6 {
		v = c.Bus.Read8(c.HL)
		if x == 1 {
			c.Cycles += 12
		} else {
			c.Cycles += 15
		}
	} else {
		v = c.reg8(z, &c.HL)
		c.Cycles += 8
	}

	var res uint8
	switch x {
	case 0:
		res = c.rot(y, v)
	case 1:
		c.bit(y, v, v)
		return
	case 2:
		res = v &^ (1 << y)
	case 3:
		res = v | 1<<y
	}

	if z == 6 {
		c.Bus.Write8(c.HL, res)
	} else {
		c.setReg8(z, res, &c.HL)
	}
}

// execIndexedCB runs DDCB and FDCB instructions. The displacement comes
// before the opcode, and the opcode fetch doesn't increment R.
func (c *CPU) execIndexedCB() {
	d := int8(c.fetch8())
	op := c.fetch8()
	addr := *c.xy + uint16(d)
	x, y, z := op>>6, op>>3&7, op&7

	v := c.Bus.Read8(addr)
	if x == 1 {
		c.Cycles += 16
		c.bit(y, v, uint8(addr>>8))
		return
	}
	c.Cycles += 19

	var res uint8
	switch x {
	case 0:
		res = c.rot(y, v)
	case 2:
		res = v &^ (1 << y)
	case 3:
		res = v | 1<<y
	}
	c.Bus.Write8(addr, res)
	// Undocumented: the result is also copied into a register.
	if z != 6 {
		c.setReg8(z, res, &c.HL)
	}
}
