package z80

func (c *CPU) add8(v, carry uint8) {
	a := c.A
	r := uint16(a) + uint16(v) + uint16(carry)
	res := uint8(r)
	c.F = sz53[res] | uint8(r>>8)&flagC | (a^v^res)&flagH | (^(a^v)&(a^res)&0x80)>>5
	c.A = res
}

func (c *CPU) sub8(v, carry uint8) uint8 {
	a := c.A
	r := uint16(a) - uint16(v) - uint16(carry)
	res := uint8(r)
	c.F = sz53[res] | flagN | uint8(r>>8)&flagC | (a^v^res)&flagH | ((a^v)&(a^res)&0x80)>>5
	return res
}

// alu runs the 8-bit arithmetic operation encoded in bits 3-5 of an opcode:
// ADD, ADC, SUB, SBC, AND, XOR, OR, CP.
func (c *CPU) alu(op, v uint8) {
	switch op {
	case 0:
		c.add8(v, 0)
	case 1:
		c.add8(v, c.F&flagC)
	case 2:
		c.A = c.sub8(v, 0)
	case 3:
		c.A = c.sub8(v, c.F&flagC)
	case 4:
		c.A &= v
		c.F = sz53p[c.A] | flagH
	case 5:
		c.A ^= v
		c.F = sz53p[c.A]
	case 6:
		c.A |= v
		c.F = sz53p[c.A]
	case 7:
		c.sub8(v, 0)
		c.F = c.F&^flagXY | v&flagXY
	}
}

func (c *CPU) inc8(v uint8) uint8 {
	res := v + 1
	f := c.F&flagC | sz53[res]
	if v&0x0F == 0x0F {
		f |= flagH
	}
	if v == 0x7F {
		f |= flagPV
	}
	c.F = f
	return res
}

func (c *CPU) dec8(v uint8) uint8 {
	res := v - 1
	f := c.F&flagC | flagN | sz53[res]
	if v&0x0F == 0 {
		f |= flagH
	}
	if v == 0x80 {
		f |= flagPV
	}
	c.F = f
	return res
}

func (c *CPU) add16(a, b uint16) uint16 {
	r := uint32(a) + uint32(b)
	res := uint16(r)
	c.F = c.F&(flagS|flagZ|flagPV) |
		uint8((a^b^res)>>8)&flagH |
		uint8(r>>16)&flagC |
		uint8(res>>8)&flagXY
	return res
}

func (c *CPU) adc16(v uint16) {
	hl := c.HL
	r := uint32(hl) + uint32(v) + uint32(c.F&flagC)
	res := uint16(r)
	f := uint8(res>>8)&(flagS|flagXY) |
		uint8((hl^v^res)>>8)&flagH |
		uint8(r>>16)&flagC |
		uint8((^(hl^v)&(hl^res)&0x8000)>>13)
	if res == 0 {
		f |= flagZ
	}
	c.F = f
	c.HL = res
}

func (c *CPU) sbc16(v uint16) {
	hl := c.HL
	r := uint32(hl) - uint32(v) - uint32(c.F&flagC)
	res := uint16(r)
	f := flagN | uint8(res>>8)&(flagS|flagXY) |
		uint8((hl^v^res)>>8)&flagH |
		uint8(r>>16)&flagC |
		uint8(((hl^v)&(hl^res)&0x8000)>>13)
	if res == 0 {
		f |= flagZ
	}
	c.F = f
	c.HL = res
}

// rot runs the CB-prefixed shift or rotation encoded in bits 3-5:
// RLC, RRC, RL, RR, SLA, SRA, SLL, SRL.
func (c *CPU) rot(op, v uint8) uint8 {
	var res, carry uint8
	switch op {
	case 0:
		carry = v >> 7
		res = v<<1 | carry
	case 1:
		carry = v & 1
		res = v>>1 | carry<<7
	case 2:
		carry = v >> 7
		res = v<<1 | c.F&flagC
	case 3:
		carry = v & 1
		res = v>>1 | (c.F&flagC)<<7
	case 4:
		carry = v >> 7
		res = v << 1
	case 5:
		carry = v & 1
		res = v>>1 | v&0x80
	case 6:
		carry = v >> 7
		res = v<<1 | 1
	case 7:
		carry = v & 1
		res = v >> 1
	}
	c.F = sz53p[res] | carry
	return res
}

// rota runs the accumulator rotations RLCA, RRCA, RLA and RRA, which leave
// S, Z and P/V alone.
func (c *CPU) rota(op uint8) {
	f := c.F
	c.A = c.rot(op, c.A)
	c.F = f&(flagS|flagZ|flagPV) | c.A&flagXY | c.F&flagC
}

func (c *CPU) bit(n, v uint8, xy uint8) {
	r := v & (1 << n)
	c.F = c.F&flagC | flagH | sz53p[r]&^flagXY | xy&flagXY
}

func (c *CPU) daa() {
	a := c.A
	var diff uint8
	carry := c.F & flagC
	if c.F&flagH != 0 || a&0x0F > 9 {
		diff = 0x06
	}
	if carry != 0 || a > 0x99 {
		diff |= 0x60
		carry = flagC
	}

	var res, half uint8
	if c.F&flagN != 0 {
		res = a - diff
		if c.F&flagH != 0 && a&0x0F < 6 {
			half = flagH
		}
	} else {
		res = a + diff
		if a&0x0F > 9 {
			half = flagH
		}
	}
	c.A = res
	c.F = sz53p[res] | carry | c.F&flagN | half
}
