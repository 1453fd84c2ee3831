package m6502

import (
	"testing"
)

type ram [0x10000]uint8

func (r *ram) Read8(addr uint16) uint8       { return r[addr] }
func (r *ram) Write8(addr uint16, val uint8) { r[addr] = val }

// newTestCPU returns a CPU with prog loaded at $0200 and PC pointing at it.
// $FFF0 holds the halt opcode, and is the idle address.
func newTestCPU(prog ...uint8) (*CPU, *ram) {
	mem := &ram{}
	copy(mem[0x0200:], prog)
	mem[0xFFF0] = HaltOpcode
	cpu := NewCPU(mem)
	cpu.IdleAddr = 0xFFF0
	cpu.PC = 0x0200
	return cpu, mem
}

func wantReg8(t *testing.T, name string, got, want uint8) {
	t.Helper()
	if got != want {
		t.Errorf("got %s=$%02X, want $%02X", name, got, want)
	}
}

func wantP(t *testing.T, got, want P) {
	t.Helper()
	if got != want {
		t.Errorf("got P=$%02X(%s), want $%02X(%s)", uint8(got), got, uint8(want), want)
	}
}

func wantCycles(t *testing.T, cpu *CPU, want int64) {
	t.Helper()
	if cpu.Cycles != want {
		t.Errorf("got %d cycles, want %d", cpu.Cycles, want)
	}
}
