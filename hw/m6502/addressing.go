package m6502

// Addressing modes.
type mode uint8

const (
	imp mode = iota // implied
	acc             // accumulator
	imm             // immediate
	zpg             // zero page
	zpx             // zero page, X
	zpy             // zero page, Y
	abs             // absolute
	abx             // absolute, X
	aby             // absolute, Y
	ind             // indirect (JMP only)
	izx             // (indirect, X)
	izy             // (indirect), Y
	rel             // relative (branches)
)

var modeNames = [...]string{
	imp: "imp", acc: "acc", imm: "imm", zpg: "zpg", zpx: "zpx", zpy: "zpy",
	abs: "abs", abx: "abx", aby: "aby", ind: "ind", izx: "izx", izy: "izy", rel: "rel",
}

func (m mode) String() string { return modeNames[m] }

// operandSize returns the number of bytes following the opcode.
func (m mode) operandSize() int {
	switch m {
	case imp, acc:
		return 0
	case abs, abx, aby, ind:
		return 2
	}
	return 1
}

func pagecrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// address fetches the operand and computes the effective address. When
// forced is false, indexed modes only pay the extra cycle when a page
// boundary is crossed (read instructions).
func (c *CPU) address(m mode, forced bool) uint16 {
	switch m {
	case zpg:
		return uint16(c.fetch8())
	case zpx:
		zp := c.fetch8()
		c.tick()
		return uint16(zp + c.X)
	case zpy:
		zp := c.fetch8()
		c.tick()
		return uint16(zp + c.Y)
	case abs:
		return c.fetch16()
	case abx:
		return c.indexed(c.fetch16(), c.X, forced)
	case aby:
		return c.indexed(c.fetch16(), c.Y, forced)
	case izx:
		zp := c.fetch8()
		c.tick()
		return c.zpr16(zp + c.X)
	case izy:
		return c.indexed(c.zpr16(c.fetch8()), c.Y, forced)
	case ind:
		ptr := c.fetch16()
		lo := c.Read8(ptr)
		// The high byte doesn't cross pages.
		hi := c.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		return uint16(hi)<<8 | uint16(lo)
	}
	panic("m6502: no effective address for mode " + m.String())
}

func (c *CPU) indexed(base uint16, idx uint8, forced bool) uint16 {
	dst := base + uint16(idx)
	if forced || pagecrossed(base, dst) {
		c.tick()
	}
	return dst
}

// read 16 bits from the zero page, handling page wrap.
func (c *CPU) zpr16(zp uint8) uint16 {
	lo := c.Read8(uint16(zp))
	hi := c.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// operand returns the value of the operand of a read instruction.
func (c *CPU) operand(m mode) uint8 {
	if m == imm {
		return c.fetch8()
	}
	return c.Read8(c.address(m, false))
}
