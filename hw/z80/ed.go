package z80

var imModes = [4]uint8{0, 0, 1, 2}

func (c *CPU) execED(op uint8) {
	x, y, z := op>>6, op>>3&7, op&7
	p, q := y>>1, y&1

	switch {
	case x == 1:
		c.execED1(op, y, z, p, q)
	case x == 2 && z <= 3 && y >= 4:
		c.execBlock(y, z)
	default:
		c.Cycles += 8
		c.illegal(0xED, op)
	}
}

func (c *CPU) execED1(op, y, z, p, q uint8) {
	switch z {
	case 0: // IN r,(C)
		c.Cycles += 12
		v := c.Bus.In(c.BC)
		c.F = c.F&flagC | sz53p[v]
		if y != 6 {
			c.setReg8(y, v, &c.HL)
		}
	case 1: // OUT (C),r
		c.Cycles += 12
		var v uint8
		if y != 6 {
			v = c.reg8(y, &c.HL)
		}
		c.Bus.Out(c.BC, v)
	case 2:
		c.Cycles += 15
		if q == 0 {
			c.sbc16(*c.rp(p))
		} else {
			c.adc16(*c.rp(p))
		}
	case 3:
		c.Cycles += 20
		nn := c.fetch16()
		if q == 0 {
			c.write16(nn, *c.rp(p))
		} else {
			*c.rp(p) = c.read16(nn)
		}
	case 4: // NEG
		c.Cycles += 8
		a := c.A
		c.A = 0
		c.A = c.sub8(a, 0)
	case 5: // RETN, RETI
		c.Cycles += 14
		c.IFF1 = c.IFF2
		c.PC = c.pop16()
	case 6:
		c.Cycles += 8
		c.IM = imModes[y&3]
	case 7:
		switch y {
		case 0:
			c.Cycles += 9
			c.I = c.A
		case 1:
			c.Cycles += 9
			c.R = c.A
		case 2, 3:
			c.Cycles += 9
			if y == 2 {
				c.A = c.I
			} else {
				c.A = c.R
			}
			c.F = c.F&flagC | sz53[c.A]
			if c.IFF2 {
				c.F |= flagPV
			}
		case 4: // RRD
			c.Cycles += 18
			v := c.Bus.Read8(c.HL)
			c.Bus.Write8(c.HL, c.A<<4|v>>4)
			c.A = c.A&0xF0 | v&0x0F
			c.F = c.F&flagC | sz53p[c.A]
		case 5: // RLD
			c.Cycles += 18
			v := c.Bus.Read8(c.HL)
			c.Bus.Write8(c.HL, v<<4|c.A&0x0F)
			c.A = c.A&0xF0 | v>>4
			c.F = c.F&flagC | sz53p[c.A]
		default:
			c.Cycles += 8
			c.illegal(0xED, op)
		}
	}
}

// execBlock runs LDI, CPI, INI, OUTI and their decrementing and repeating
// forms. y is 4 (inc), 5 (dec), 6 (inc repeat) or 7 (dec repeat).
func (c *CPU) execBlock(y, z uint8) {
	step := uint16(1)
	if y&1 != 0 {
		step = 0xFFFF
	}
	repeat := y >= 6
	again := false

	c.Cycles += 16
	switch z {
	case 0: // LDI
		v := c.Bus.Read8(c.HL)
		c.Bus.Write8(c.DE, v)
		c.HL += step
		c.DE += step
		c.BC--
		n := v + c.A
		c.F = c.F&(flagS|flagZ|flagC) | n&flagX | (n&0x02)<<4
		if c.BC != 0 {
			c.F |= flagPV
		}
		again = c.BC != 0
	case 1: // CPI
		v := c.Bus.Read8(c.HL)
		res := c.A - v
		c.HL += step
		c.BC--
		f := c.F&flagC | flagN | sz53[res]&^flagXY | (c.A^v^res)&flagH
		n := res
		if f&flagH != 0 {
			n--
		}
		f |= n&flagX | (n&0x02)<<4
		if c.BC != 0 {
			f |= flagPV
		}
		c.F = f
		again = c.BC != 0 && res != 0
	case 2: // INI
		v := c.Bus.In(c.BC)
		c.Bus.Write8(c.HL, v)
		c.HL += step
		c.BC -= 0x100
		c.F = sz53[uint8(c.BC>>8)] | flagN
		again = c.BC>>8 != 0
	case 3: // OUTI
		v := c.Bus.Read8(c.HL)
		c.BC -= 0x100
		c.Bus.Out(c.BC, v)
		c.HL += step
		c.F = sz53[uint8(c.BC>>8)] | flagN
		again = c.BC>>8 != 0
	}

	if repeat && again {
		c.PC -= 2
		c.Cycles += 5
	}
}
