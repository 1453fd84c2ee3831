package hwio

// Device handles the accesses to pages that aren't backed by the arena:
// memory-mapped registers, bank-switch registers, sentinel addresses.
type Device interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// OpenBus is a Device returning a constant value for every read and ignoring
// all writes.
type OpenBus uint8

func (b OpenBus) Read8(uint16, bool) uint8 { return uint8(b) }
func (OpenBus) Write8(uint16, uint8)        {}

func Read16(d Device, addr uint16) uint16 {
	lo := d.Read8(addr, false)
	hi := d.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

func Write16(d Device, addr uint16, val uint16) {
	d.Write8(addr, uint8(val&0xff))
	d.Write8(addr+1, uint8(val>>8))
}
