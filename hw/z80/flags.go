package z80

// Flag bits of the F register. X and Y are the undocumented copies of bits 3
// and 5 of the last result.
const (
	flagC  = 0x01
	flagN  = 0x02
	flagPV = 0x04
	flagX  = 0x08
	flagH  = 0x10
	flagY  = 0x20
	flagZ  = 0x40
	flagS  = 0x80

	flagXY = flagX | flagY
)

// sign, zero, X and Y flags of a value, with and without parity.
var sz53, sz53p [256]uint8

func init() {
	for i := range 256 {
		v := uint8(i)
		sz53[i] = v & (flagS | flagXY)
		if v == 0 {
			sz53[i] |= flagZ
		}
		parity := v ^ v>>4
		parity ^= parity >> 2
		parity ^= parity >> 1
		sz53p[i] = sz53[i]
		if parity&1 == 0 {
			sz53p[i] |= flagPV
		}
	}
}

// cond evaluates the condition encoded in bits 3-5 of an opcode:
// NZ, Z, NC, C, PO, PE, P, M.
func (c *CPU) cond(cc uint8) bool {
	var f uint8
	switch cc >> 1 {
	case 0:
		f = flagZ
	case 1:
		f = flagC
	case 2:
		f = flagPV
	case 3:
		f = flagS
	}
	return (c.F&f != 0) == (cc&1 == 1)
}
