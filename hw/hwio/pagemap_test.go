package hwio_test

import (
	"testing"

	"chipplay/hw/hwio"
)

type testDevice struct {
	regs   [0x10]uint8
	writes int
}

func (d *testDevice) Read8(addr uint16, peek bool) uint8 {
	if addr >= 0x4000 && addr < 0x4010 {
		return d.regs[addr-0x4000]
	}
	return uint8(addr >> 8)
}

func (d *testDevice) Write8(addr uint16, val uint8) {
	d.writes++
	if addr >= 0x4000 && addr < 0x4010 {
		d.regs[addr-0x4000] = val
	}
}

type testMap struct {
	t testing.TB
	*hwio.PageMap
}

func (m testMap) wantRead8(addr uint16, want uint8) {
	m.t.Helper()
	if got := m.Read8(addr); got != want {
		m.t.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestPageMapRAMMirror(t *testing.T) {
	m := testMap{t, hwio.NewPageMap("bus", 0x800, 11, 0xFF)}
	m.Map(0x0000, 0x2000, 0, 0x800, true)

	m.wantRead8(0x0000, 0)
	m.Write8(0x0010, 0x12)
	m.wantRead8(0x0010, 0x12)
	m.wantRead8(0x0810, 0x12)
	m.wantRead8(0x1810, 0x12)

	// Not mapped and no device: open bus.
	m.wantRead8(0x2000, 0xFF)
	m.wantRead8(0xFFFF, 0xFF)
}

func TestPageMapReadOnly(t *testing.T) {
	m := testMap{t, hwio.NewPageMap("bus", 0x1000, 11, 0)}
	copy(m.Arena()[0x800:], []byte{0xA9, 0x42})
	m.Map(0x8000, 0x800, 0x800, 0x800, false)

	m.wantRead8(0x8000, 0xA9)
	m.Write8(0x8000, 0x00)
	m.wantRead8(0x8000, 0xA9)
}

func TestPageMapDevice(t *testing.T) {
	m := testMap{t, hwio.NewPageMap("bus", 0x800, 11, 0)}
	dev := &testDevice{}
	m.SetDevice(dev)

	m.Write8(0x4003, 0x77)
	m.wantRead8(0x4003, 0x77)
	m.wantRead8(0x5FF0, 0x5F)
	if got := m.Peek8(0x4003); got != 0x77 {
		t.Errorf("Peek8(4003) = %02X, want 77", got)
	}
	if dev.writes != 1 {
		t.Errorf("device got %d writes, want 1", dev.writes)
	}
}

func TestPageMapSwitch(t *testing.T) {
	m := testMap{t, hwio.NewPageMap("bus", 0x2000, 12, 0)}
	m.Arena()[0x0000] = 0xAA
	m.Arena()[0x1000] = 0xBB

	m.MapPage(8, 0x0000, false)
	m.wantRead8(0x8000, 0xAA)
	m.MapPage(8, 0x1000, false)
	m.wantRead8(0x8000, 0xBB)

	if got := m.PageOffset(0x8FFF); got != 0x1000 {
		t.Errorf("PageOffset(8FFF) = %x, want 0x1000", got)
	}

	// Mapping past the arena unmaps the page.
	if m.MapPage(8, 0x1800, false) {
		t.Errorf("MapPage past arena end should fail")
	}
	if got := m.PageOffset(0x8000); got != hwio.Unmapped {
		t.Errorf("PageOffset(8000) = %x, want Unmapped", got)
	}
	m.wantRead8(0x8000, 0)
}
