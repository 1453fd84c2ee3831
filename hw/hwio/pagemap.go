package hwio

import (
	"fmt"

	"chipplay/emu/log"
)

// Unmapped is the arena offset of pages routed to the I/O device.
const Unmapped = -1

type page struct {
	off      int32 // offset in the arena, or Unmapped
	writable bool
}

// PageMap is a 64kB address space made of fixed-size pages. Each page either
// points into a single owned byte arena (holding RAM and ROM images) or is
// routed to the I/O Device. Remapping a page is O(1) and is visible on the
// very next access.
type PageMap struct {
	Name string

	arena []byte
	pages []page
	shift uint
	mask  uint16

	io Device
}

// NewPageMap creates a page map with an arena of arenaSize bytes and pages
// of 1<<pageBits bytes. All pages start unmapped, and accesses to unmapped
// pages read as openBus until a Device is set.
func NewPageMap(name string, arenaSize int, pageBits uint, openBus uint8) *PageMap {
	if pageBits == 0 || pageBits > 16 {
		panic(fmt.Sprintf("hwio: invalid page size 1<<%d", pageBits))
	}
	m := &PageMap{
		Name:  name,
		arena: make([]byte, arenaSize),
		pages: make([]page, 1<<(16-pageBits)),
		shift: pageBits,
		mask:  uint16(1<<pageBits - 1),
		io:    OpenBus(openBus),
	}
	m.UnmapAll()
	return m
}

// Arena returns the backing memory. ROM images are copied there once, RAM
// areas are cleared by the owner on reset.
func (m *PageMap) Arena() []byte { return m.arena }

func (m *PageMap) PageSize() int { return 1 << m.shift }
func (m *PageMap) NumPages() int { return len(m.pages) }

// SetDevice sets the device receiving accesses to unmapped pages.
func (m *PageMap) SetDevice(d Device) { m.io = d }

func (m *PageMap) UnmapAll() {
	for i := range m.pages {
		m.pages[i] = page{off: Unmapped}
	}
}

// MapPage points page n at the given arena offset. It reports false, and
// unmaps the page, if the page would extend past the arena.
func (m *PageMap) MapPage(n int, off int, writable bool) bool {
	if off < 0 || off+m.PageSize() > len(m.arena) {
		log.ModMem.DebugZ("page out of arena").
			String("map", m.Name).
			Int("page", n).
			Int("off", off).
			End()
		m.pages[n] = page{off: Unmapped}
		return false
	}
	m.pages[n] = page{off: int32(off), writable: writable}
	return true
}

// Map maps size bytes starting at addr onto the arena area starting at off.
// If size is larger than the area length, the area is mirrored.
func (m *PageMap) Map(addr uint16, size int, off int, length int, writable bool) {
	ps := m.PageSize()
	first := int(addr) >> m.shift
	for i := 0; i < size/ps; i++ {
		m.MapPage(first+i, off+(i*ps)%length, writable)
	}
}

// Unmap routes size bytes starting at addr to the device.
func (m *PageMap) Unmap(addr uint16, size int) {
	first := int(addr) >> m.shift
	for i := 0; i < size>>m.shift; i++ {
		m.pages[first+i] = page{off: Unmapped}
	}
}

// PageOffset returns the arena offset of the page containing addr, or
// Unmapped.
func (m *PageMap) PageOffset(addr uint16) int {
	return int(m.pages[addr>>m.shift].off)
}

func (m *PageMap) Read8(addr uint16) uint8 {
	p := m.pages[addr>>m.shift]
	if p.off != Unmapped {
		return m.arena[int(p.off)+int(addr&m.mask)]
	}
	return m.io.Read8(addr, false)
}

// Peek8 reads a byte without side effects.
func (m *PageMap) Peek8(addr uint16) uint8 {
	p := m.pages[addr>>m.shift]
	if p.off != Unmapped {
		return m.arena[int(p.off)+int(addr&m.mask)]
	}
	return m.io.Read8(addr, true)
}

func (m *PageMap) Write8(addr uint16, val uint8) {
	p := m.pages[addr>>m.shift]
	switch {
	case p.off == Unmapped:
		m.io.Write8(addr, val)
	case p.writable:
		m.arena[int(p.off)+int(addr&m.mask)] = val
	default:
		log.ModMem.DebugZ("Write8 to read-only page").
			String("map", m.Name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
	}
}
