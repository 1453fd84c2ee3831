package m6502

import "fmt"

type opdef struct {
	n  string                  // name
	m  mode                    // addressing mode
	rd func(*CPU, uint8)       // read instruction
	wr func(*CPU) uint8        // store instruction
	rw func(*CPU, uint8) uint8 // read-modify-write instruction

	f func(*CPU) // any other instruction, handles its own operand
	u bool       // unstable opcode, executed as a no-op
}

var defs = [256]opdef{
	0x00: {n: "BRK", m: imp, f: BRK},
	0x01: {n: "ORA", m: izx, rd: ora},
	0x02: {n: "KIL", m: imp},
	0x03: {n: "SLO", m: izx, rw: slo},
	0x04: {n: "NOP", m: zpg, rd: nop},
	0x05: {n: "ORA", m: zpg, rd: ora},
	0x06: {n: "ASL", m: zpg, rw: asl},
	0x07: {n: "SLO", m: zpg, rw: slo},
	0x08: {n: "PHP", m: imp, f: PHP},
	0x09: {n: "ORA", m: imm, rd: ora},
	0x0A: {n: "ASL", m: acc, rw: asl},
	0x0B: {n: "ANC", m: imm, rd: anc},
	0x0C: {n: "NOP", m: abs, rd: nop},
	0x0D: {n: "ORA", m: abs, rd: ora},
	0x0E: {n: "ASL", m: abs, rw: asl},
	0x0F: {n: "SLO", m: abs, rw: slo},
	0x10: {n: "BPL", m: rel, f: branch(Negative, false)},
	0x11: {n: "ORA", m: izy, rd: ora},
	0x12: {n: "KIL", m: imp},
	0x13: {n: "SLO", m: izy, rw: slo},
	0x14: {n: "NOP", m: zpx, rd: nop},
	0x15: {n: "ORA", m: zpx, rd: ora},
	0x16: {n: "ASL", m: zpx, rw: asl},
	0x17: {n: "SLO", m: zpx, rw: slo},
	0x18: {n: "CLC", m: imp, f: flag(Carry, false)},
	0x19: {n: "ORA", m: aby, rd: ora},
	0x1A: {n: "NOP", m: imp, f: implied(NOP)},
	0x1B: {n: "SLO", m: aby, rw: slo},
	0x1C: {n: "NOP", m: abx, rd: nop},
	0x1D: {n: "ORA", m: abx, rd: ora},
	0x1E: {n: "ASL", m: abx, rw: asl},
	0x1F: {n: "SLO", m: abx, rw: slo},
	0x20: {n: "JSR", m: abs, f: JSR},
	0x21: {n: "AND", m: izx, rd: and},
	0x22: {n: "KIL", m: imp},
	0x23: {n: "RLA", m: izx, rw: rla},
	0x24: {n: "BIT", m: zpg, rd: bit},
	0x25: {n: "AND", m: zpg, rd: and},
	0x26: {n: "ROL", m: zpg, rw: rol},
	0x27: {n: "RLA", m: zpg, rw: rla},
	0x28: {n: "PLP", m: imp, f: PLP},
	0x29: {n: "AND", m: imm, rd: and},
	0x2A: {n: "ROL", m: acc, rw: rol},
	0x2B: {n: "ANC", m: imm, rd: anc},
	0x2C: {n: "BIT", m: abs, rd: bit},
	0x2D: {n: "AND", m: abs, rd: and},
	0x2E: {n: "ROL", m: abs, rw: rol},
	0x2F: {n: "RLA", m: abs, rw: rla},
	0x30: {n: "BMI", m: rel, f: branch(Negative, true)},
	0x31: {n: "AND", m: izy, rd: and},
	0x32: {n: "KIL", m: imp},
	0x33: {n: "RLA", m: izy, rw: rla},
	0x34: {n: "NOP", m: zpx, rd: nop},
	0x35: {n: "AND", m: zpx, rd: and},
	0x36: {n: "ROL", m: zpx, rw: rol},
	0x37: {n: "RLA", m: zpx, rw: rla},
	0x38: {n: "SEC", m: imp, f: flag(Carry, true)},
	0x39: {n: "AND", m: aby, rd: and},
	0x3A: {n: "NOP", m: imp, f: implied(NOP)},
	0x3B: {n: "RLA", m: aby, rw: rla},
	0x3C: {n: "NOP", m: abx, rd: nop},
	0x3D: {n: "AND", m: abx, rd: and},
	0x3E: {n: "ROL", m: abx, rw: rol},
	0x3F: {n: "RLA", m: abx, rw: rla},
	0x40: {n: "RTI", m: imp, f: RTI},
	0x41: {n: "EOR", m: izx, rd: eor},
	0x42: {n: "KIL", m: imp},
	0x43: {n: "SRE", m: izx, rw: sre},
	0x44: {n: "NOP", m: zpg, rd: nop},
	0x45: {n: "EOR", m: zpg, rd: eor},
	0x46: {n: "LSR", m: zpg, rw: lsr},
	0x47: {n: "SRE", m: zpg, rw: sre},
	0x48: {n: "PHA", m: imp, f: PHA},
	0x49: {n: "EOR", m: imm, rd: eor},
	0x4A: {n: "LSR", m: acc, rw: lsr},
	0x4B: {n: "ALR", m: imm, rd: alr},
	0x4C: {n: "JMP", m: abs, f: JMPabs},
	0x4D: {n: "EOR", m: abs, rd: eor},
	0x4E: {n: "LSR", m: abs, rw: lsr},
	0x4F: {n: "SRE", m: abs, rw: sre},
	0x50: {n: "BVC", m: rel, f: branch(Overflow, false)},
	0x51: {n: "EOR", m: izy, rd: eor},
	0x52: {n: "KIL", m: imp},
	0x53: {n: "SRE", m: izy, rw: sre},
	0x54: {n: "NOP", m: zpx, rd: nop},
	0x55: {n: "EOR", m: zpx, rd: eor},
	0x56: {n: "LSR", m: zpx, rw: lsr},
	0x57: {n: "SRE", m: zpx, rw: sre},
	0x58: {n: "CLI", m: imp, f: flag(Interrupt, false)},
	0x59: {n: "EOR", m: aby, rd: eor},
	0x5A: {n: "NOP", m: imp, f: implied(NOP)},
	0x5B: {n: "SRE", m: aby, rw: sre},
	0x5C: {n: "NOP", m: abx, rd: nop},
	0x5D: {n: "EOR", m: abx, rd: eor},
	0x5E: {n: "LSR", m: abx, rw: lsr},
	0x5F: {n: "SRE", m: abx, rw: sre},
	0x60: {n: "RTS", m: imp, f: RTS},
	0x61: {n: "ADC", m: izx, rd: adc},
	0x62: {n: "KIL", m: imp},
	0x63: {n: "RRA", m: izx, rw: rra},
	0x64: {n: "NOP", m: zpg, rd: nop},
	0x65: {n: "ADC", m: zpg, rd: adc},
	0x66: {n: "ROR", m: zpg, rw: ror},
	0x67: {n: "RRA", m: zpg, rw: rra},
	0x68: {n: "PLA", m: imp, f: PLA},
	0x69: {n: "ADC", m: imm, rd: adc},
	0x6A: {n: "ROR", m: acc, rw: ror},
	0x6B: {n: "ARR", m: imm, rd: arr},
	0x6C: {n: "JMP", m: ind, f: JMPind},
	0x6D: {n: "ADC", m: abs, rd: adc},
	0x6E: {n: "ROR", m: abs, rw: ror},
	0x6F: {n: "RRA", m: abs, rw: rra},
	0x70: {n: "BVS", m: rel, f: branch(Overflow, true)},
	0x71: {n: "ADC", m: izy, rd: adc},
	0x72: {n: "KIL", m: imp},
	0x73: {n: "RRA", m: izy, rw: rra},
	0x74: {n: "NOP", m: zpx, rd: nop},
	0x75: {n: "ADC", m: zpx, rd: adc},
	0x76: {n: "ROR", m: zpx, rw: ror},
	0x77: {n: "RRA", m: zpx, rw: rra},
	0x78: {n: "SEI", m: imp, f: flag(Interrupt, true)},
	0x79: {n: "ADC", m: aby, rd: adc},
	0x7A: {n: "NOP", m: imp, f: implied(NOP)},
	0x7B: {n: "RRA", m: aby, rw: rra},
	0x7C: {n: "NOP", m: abx, rd: nop},
	0x7D: {n: "ADC", m: abx, rd: adc},
	0x7E: {n: "ROR", m: abx, rw: ror},
	0x7F: {n: "RRA", m: abx, rw: rra},
	0x80: {n: "NOP", m: imm, rd: nop},
	0x81: {n: "STA", m: izx, wr: sta},
	0x82: {n: "NOP", m: imm, rd: nop},
	0x83: {n: "SAX", m: izx, wr: sax},
	0x84: {n: "STY", m: zpg, wr: sty},
	0x85: {n: "STA", m: zpg, wr: sta},
	0x86: {n: "STX", m: zpg, wr: stx},
	0x87: {n: "SAX", m: zpg, wr: sax},
	0x88: {n: "DEY", m: imp, f: implied(DEY)},
	0x89: {n: "NOP", m: imm, rd: nop},
	0x8A: {n: "TXA", m: imp, f: implied(TXA)},
	0x8B: {n: "ANE", m: imm, u: true},
	0x8C: {n: "STY", m: abs, wr: sty},
	0x8D: {n: "STA", m: abs, wr: sta},
	0x8E: {n: "STX", m: abs, wr: stx},
	0x8F: {n: "SAX", m: abs, wr: sax},
	0x90: {n: "BCC", m: rel, f: branch(Carry, false)},
	0x91: {n: "STA", m: izy, wr: sta},
	0x92: {n: "KIL", m: imp},
	0x93: {n: "SHA", m: izy, u: true},
	0x94: {n: "STY", m: zpx, wr: sty},
	0x95: {n: "STA", m: zpx, wr: sta},
	0x96: {n: "STX", m: zpy, wr: stx},
	0x97: {n: "SAX", m: zpy, wr: sax},
	0x98: {n: "TYA", m: imp, f: implied(TYA)},
	0x99: {n: "STA", m: aby, wr: sta},
	0x9A: {n: "TXS", m: imp, f: implied(TXS)},
	0x9B: {n: "TAS", m: aby, u: true},
	0x9C: {n: "SHY", m: abx, u: true},
	0x9D: {n: "STA", m: abx, wr: sta},
	0x9E: {n: "SHX", m: aby, u: true},
	0x9F: {n: "SHA", m: aby, u: true},
	0xA0: {n: "LDY", m: imm, rd: ldy},
	0xA1: {n: "LDA", m: izx, rd: lda},
	0xA2: {n: "LDX", m: imm, rd: ldx},
	0xA3: {n: "LAX", m: izx, rd: lax},
	0xA4: {n: "LDY", m: zpg, rd: ldy},
	0xA5: {n: "LDA", m: zpg, rd: lda},
	0xA6: {n: "LDX", m: zpg, rd: ldx},
	0xA7: {n: "LAX", m: zpg, rd: lax},
	0xA8: {n: "TAY", m: imp, f: implied(TAY)},
	0xA9: {n: "LDA", m: imm, rd: lda},
	0xAA: {n: "TAX", m: imp, f: implied(TAX)},
	0xAB: {n: "LXA", m: imm, u: true},
	0xAC: {n: "LDY", m: abs, rd: ldy},
	0xAD: {n: "LDA", m: abs, rd: lda},
	0xAE: {n: "LDX", m: abs, rd: ldx},
	0xAF: {n: "LAX", m: abs, rd: lax},
	0xB0: {n: "BCS", m: rel, f: branch(Carry, true)},
	0xB1: {n: "LDA", m: izy, rd: lda},
	0xB2: {n: "KIL", m: imp},
	0xB3: {n: "LAX", m: izy, rd: lax},
	0xB4: {n: "LDY", m: zpx, rd: ldy},
	0xB5: {n: "LDA", m: zpx, rd: lda},
	0xB6: {n: "LDX", m: zpy, rd: ldx},
	0xB7: {n: "LAX", m: zpy, rd: lax},
	0xB8: {n: "CLV", m: imp, f: flag(Overflow, false)},
	0xB9: {n: "LDA", m: aby, rd: lda},
	0xBA: {n: "TSX", m: imp, f: implied(TSX)},
	0xBB: {n: "LAS", m: aby, u: true},
	0xBC: {n: "LDY", m: abx, rd: ldy},
	0xBD: {n: "LDA", m: abx, rd: lda},
	0xBE: {n: "LDX", m: aby, rd: ldx},
	0xBF: {n: "LAX", m: aby, rd: lax},
	0xC0: {n: "CPY", m: imm, rd: cpy},
	0xC1: {n: "CMP", m: izx, rd: cmp},
	0xC2: {n: "NOP", m: imm, rd: nop},
	0xC3: {n: "DCP", m: izx, rw: dcp},
	0xC4: {n: "CPY", m: zpg, rd: cpy},
	0xC5: {n: "CMP", m: zpg, rd: cmp},
	0xC6: {n: "DEC", m: zpg, rw: dec},
	0xC7: {n: "DCP", m: zpg, rw: dcp},
	0xC8: {n: "INY", m: imp, f: implied(INY)},
	0xC9: {n: "CMP", m: imm, rd: cmp},
	0xCA: {n: "DEX", m: imp, f: implied(DEX)},
	0xCB: {n: "AXS", m: imm, rd: axs},
	0xCC: {n: "CPY", m: abs, rd: cpy},
	0xCD: {n: "CMP", m: abs, rd: cmp},
	0xCE: {n: "DEC", m: abs, rw: dec},
	0xCF: {n: "DCP", m: abs, rw: dcp},
	0xD0: {n: "BNE", m: rel, f: branch(Zero, false)},
	0xD1: {n: "CMP", m: izy, rd: cmp},
	0xD2: {n: "KIL", m: imp},
	0xD3: {n: "DCP", m: izy, rw: dcp},
	0xD4: {n: "NOP", m: zpx, rd: nop},
	0xD5: {n: "CMP", m: zpx, rd: cmp},
	0xD6: {n: "DEC", m: zpx, rw: dec},
	0xD7: {n: "DCP", m: zpx, rw: dcp},
	0xD8: {n: "CLD", m: imp, f: flag(Decimal, false)},
	0xD9: {n: "CMP", m: aby, rd: cmp},
	0xDA: {n: "NOP", m: imp, f: implied(NOP)},
	0xDB: {n: "DCP", m: aby, rw: dcp},
	0xDC: {n: "NOP", m: abx, rd: nop},
	0xDD: {n: "CMP", m: abx, rd: cmp},
	0xDE: {n: "DEC", m: abx, rw: dec},
	0xDF: {n: "DCP", m: abx, rw: dcp},
	0xE0: {n: "CPX", m: imm, rd: cpx},
	0xE1: {n: "SBC", m: izx, rd: sbc},
	0xE2: {n: "NOP", m: imm, rd: nop},
	0xE3: {n: "ISC", m: izx, rw: isc},
	0xE4: {n: "CPX", m: zpg, rd: cpx},
	0xE5: {n: "SBC", m: zpg, rd: sbc},
	0xE6: {n: "INC", m: zpg, rw: inc},
	0xE7: {n: "ISC", m: zpg, rw: isc},
	0xE8: {n: "INX", m: imp, f: implied(INX)},
	0xE9: {n: "SBC", m: imm, rd: sbc},
	0xEA: {n: "NOP", m: imp, f: implied(NOP)},
	0xEB: {n: "SBC", m: imm, rd: sbc},
	0xEC: {n: "CPX", m: abs, rd: cpx},
	0xED: {n: "SBC", m: abs, rd: sbc},
	0xEE: {n: "INC", m: abs, rw: inc},
	0xEF: {n: "ISC", m: abs, rw: isc},
	0xF0: {n: "BEQ", m: rel, f: branch(Zero, true)},
	0xF1: {n: "SBC", m: izy, rd: sbc},
	0xF2: {n: "KIL", m: imp},
	0xF3: {n: "ISC", m: izy, rw: isc},
	0xF4: {n: "NOP", m: zpx, rd: nop},
	0xF5: {n: "SBC", m: zpx, rd: sbc},
	0xF6: {n: "INC", m: zpx, rw: inc},
	0xF7: {n: "ISC", m: zpx, rw: isc},
	0xF8: {n: "SED", m: imp, f: flag(Decimal, true)},
	0xF9: {n: "SBC", m: aby, rd: sbc},
	0xFA: {n: "NOP", m: imp, f: implied(NOP)},
	0xFB: {n: "ISC", m: aby, rw: isc},
	0xFC: {n: "NOP", m: abx, rd: nop},
	0xFD: {n: "SBC", m: abx, rd: sbc},
	0xFE: {n: "INC", m: abx, rw: inc},
	0xFF: {n: "ISC", m: abx, rw: isc},
}

var ops [256]func(c *CPU)

func init() {
	for i, d := range defs {
		ops[i] = d.compile(uint8(i))
	}
}

func (d opdef) compile(opcode uint8) func(c *CPU) {
	switch {
	case d.n == "KIL":
		return kil(opcode)
	case d.u:
		return unstable(opcode, d.m)
	case d.f != nil:
		return d.f
	case d.rd != nil:
		return func(c *CPU) {
			d.rd(c, c.operand(d.m))
		}
	case d.wr != nil:
		return func(c *CPU) {
			addr := c.address(d.m, true)
			c.Write8(addr, d.wr(c))
		}
	case d.rw != nil && d.m == acc:
		return func(c *CPU) {
			c.tick()
			c.A = d.rw(c, c.A)
		}
	case d.rw != nil:
		return func(c *CPU) {
			addr := c.address(d.m, true)
			val := c.Read8(addr)
			c.tick() // dummy write
			c.Write8(addr, d.rw(c, val))
		}
	}
	panic(fmt.Sprintf("m6502: opcode %02X has no implementation", opcode))
}

// Disasm returns the text of the instruction at pc, and its length.
func Disasm(bus Bus, pc uint16) (string, int) {
	op := bus.Read8(pc)
	d := defs[op]
	n := 1 + d.m.operandSize()

	b1 := bus.Read8(pc + 1)
	w := uint16(bus.Read8(pc+2))<<8 | uint16(b1)
	var oper string
	switch d.m {
	case imp:
	case acc:
		oper = "A"
	case imm:
		oper = fmt.Sprintf("#$%02X", b1)
	case zpg:
		oper = fmt.Sprintf("$%02X", b1)
	case zpx:
		oper = fmt.Sprintf("$%02X,X", b1)
	case zpy:
		oper = fmt.Sprintf("$%02X,Y", b1)
	case abs:
		oper = fmt.Sprintf("$%04X", w)
	case abx:
		oper = fmt.Sprintf("$%04X,X", w)
	case aby:
		oper = fmt.Sprintf("$%04X,Y", w)
	case ind:
		oper = fmt.Sprintf("($%04X)", w)
	case izx:
		oper = fmt.Sprintf("($%02X,X)", b1)
	case izy:
		oper = fmt.Sprintf("($%02X),Y", b1)
	case rel:
		oper = fmt.Sprintf("$%04X", uint16(int32(pc)+2+int32(int8(b1))))
	}
	if oper == "" {
		return d.n, n
	}
	return d.n + " " + oper, n
}
