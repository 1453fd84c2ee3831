package z80

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chipplay/hw/snapshot"
)

type portWrite struct {
	port uint16
	val  uint8
}

type testBus struct {
	mem   [0x10000]uint8
	in    uint8
	outs  []portWrite
	ports []uint16
}

func (b *testBus) Read8(addr uint16) uint8       { return b.mem[addr] }
func (b *testBus) Write8(addr uint16, val uint8) { b.mem[addr] = val }
func (b *testBus) In(port uint16) uint8 {
	b.ports = append(b.ports, port)
	return b.in
}
func (b *testBus) Out(port uint16, val uint8) {
	b.outs = append(b.outs, portWrite{port, val})
}

// newTestCPU returns a CPU with prog loaded at $0000.
func newTestCPU(prog ...uint8) (*CPU, *testBus) {
	bus := &testBus{}
	copy(bus.mem[:], prog)
	return NewCPU(bus), bus
}

func steps(c *CPU, n int) {
	for range n {
		c.Step()
	}
}

func wantCycles(t *testing.T, c *CPU, want int64) {
	t.Helper()
	if c.Cycles != want {
		t.Errorf("got %d T-states, want %d", c.Cycles, want)
	}
}

func TestLoadsAndArithmetic(t *testing.T) {
	cpu, _ := newTestCPU(
		0x3E, 0x7F, // LD A,$7F
		0x06, 0x01, // LD B,$01
		0x80,       // ADD A,B
		0x90,       // SUB B
		0xFE, 0x7F, // CP $7F
	)
	steps(cpu, 3)
	if cpu.A != 0x80 {
		t.Fatalf("A = $%02X, want $80", cpu.A)
	}
	if cpu.F&flagPV == 0 || cpu.F&flagS == 0 || cpu.F&flagH == 0 {
		t.Errorf("ADD $7F+$01: wrong flags $%02X", cpu.F)
	}
	steps(cpu, 2)
	if cpu.A != 0x7F {
		t.Errorf("A = $%02X, want $7F", cpu.A)
	}
	if cpu.F&flagZ == 0 || cpu.F&flagN == 0 {
		t.Errorf("CP equal: wrong flags $%02X", cpu.F)
	}
	wantCycles(t, cpu, 7+7+4+4+7)
}

func TestCallRetTiming(t *testing.T) {
	cpu, bus := newTestCPU(
		0x31, 0x00, 0x80, // LD SP,$8000
		0xCD, 0x10, 0x00, // CALL $0010
		0x76, // HALT
	)
	bus.mem[0x10] = 0xC9 // RET

	steps(cpu, 2)
	if cpu.PC != 0x0010 || cpu.SP != 0x7FFE {
		t.Fatalf("after CALL: PC=$%04X SP=$%04X", cpu.PC, cpu.SP)
	}
	steps(cpu, 2)
	if !cpu.Halted() {
		t.Errorf("CPU should be halted")
	}
	wantCycles(t, cpu, 10+17+10+4)
}

func TestConditionalTiming(t *testing.T) {
	cpu, _ := newTestCPU(
		0x06, 0x03, // LD B,3
		0x10, 0xFE, // DJNZ $-0
		0xAF,       // XOR A
		0x20, 0x10, // JR NZ (not taken)
		0x28, 0x00, // JR Z (taken)
	)
	steps(cpu, 1+3+1+2)
	if cpu.PC != 0x0009 {
		t.Errorf("PC = $%04X, want $0009", cpu.PC)
	}
	wantCycles(t, cpu, 7+13+13+8+4+7+12)
}

func TestIndexed(t *testing.T) {
	cpu, bus := newTestCPU(
		0xDD, 0x21, 0x00, 0x40, // LD IX,$4000
		0xDD, 0x36, 0x05, 0x42, // LD (IX+5),$42
		0xDD, 0x34, 0x05, // INC (IX+5)
		0xDD, 0x66, 0x05, // LD H,(IX+5)
		0xDD, 0x26, 0x12, // LD IXH,$12
		0xFD, 0x21, 0x10, 0x40, // LD IY,$4010
		0xFD, 0xCB, 0xFB, 0xC6, // SET 0,(IY-5)
	)
	steps(cpu, 7)
	if bus.mem[0x4005] != 0x43 {
		t.Errorf("(IX+5) = $%02X, want $43", bus.mem[0x4005])
	}
	if cpu.HL>>8 != 0x43 {
		t.Errorf("H = $%02X, want $43", cpu.HL>>8)
	}
	if cpu.IX != 0x1200 {
		t.Errorf("IX = $%04X, want $1200", cpu.IX)
	}
	if bus.mem[0x400B] != 0x01 {
		t.Errorf("(IY-5) = $%02X, want $01", bus.mem[0x400B])
	}
	wantCycles(t, cpu, 14+19+23+19+11+14+23)
}

func TestBlockTransfer(t *testing.T) {
	cpu, bus := newTestCPU(
		0x21, 0x00, 0x40, // LD HL,$4000
		0x11, 0x00, 0x50, // LD DE,$5000
		0x01, 0x03, 0x00, // LD BC,3
		0xED, 0xB0, // LDIR
	)
	copy(bus.mem[0x4000:], []uint8{1, 2, 3})
	steps(cpu, 3+3)

	if got := bus.mem[0x5000:0x5003]; !cmp.Equal(got, []uint8{1, 2, 3}) {
		t.Errorf("copied % x, want 01 02 03", got)
	}
	if cpu.BC != 0 || cpu.HL != 0x4003 || cpu.DE != 0x5003 {
		t.Errorf("BC=$%04X HL=$%04X DE=$%04X", cpu.BC, cpu.HL, cpu.DE)
	}
	if cpu.PC != 0x000B {
		t.Errorf("PC = $%04X, want $000B", cpu.PC)
	}
	wantCycles(t, cpu, 30+21+21+16)
}

func TestPorts(t *testing.T) {
	cpu, bus := newTestCPU(
		0x01, 0xFD, 0xFF, // LD BC,$FFFD
		0x3E, 0x07, // LD A,7
		0xED, 0x79, // OUT (C),A
		0x3E, 0x10, // LD A,$10
		0xD3, 0xFE, // OUT ($FE),A
		0xED, 0x78, // IN A,(C)
	)
	bus.in = 0x5A
	steps(cpu, 6)

	want := []portWrite{{0xFFFD, 0x07}, {0x10FE, 0x10}}
	if diff := cmp.Diff(want, bus.outs, cmp.AllowUnexported(portWrite{})); diff != "" {
		t.Errorf("port writes mismatch (-want +got):\n%s", diff)
	}
	if cpu.A != 0x5A {
		t.Errorf("A = $%02X, want $5A", cpu.A)
	}
}

func TestInterruptModes(t *testing.T) {
	t.Run("IM 1", func(t *testing.T) {
		cpu, bus := newTestCPU(
			0x31, 0x00, 0x80, // LD SP,$8000
			0xED, 0x56, // IM 1
			0xFB, // EI
			0x76, // HALT
		)
		bus.mem[0x38] = 0xC9
		cpu.Run(1000)
		if !cpu.Halted() {
			t.Fatalf("CPU should be halted")
		}
		if cpu.Cycles < 1000 || cpu.Cycles >= 1004 {
			t.Errorf("halted clock = %d, want within one NOP of 1000", cpu.Cycles)
		}
		if !cpu.Interrupt(0xFF) {
			t.Fatalf("interrupt refused")
		}
		if cpu.PC != 0x0038 || cpu.Halted() {
			t.Errorf("PC=$%04X halted=%t", cpu.PC, cpu.Halted())
		}
		if cpu.Interrupt(0xFF) {
			t.Errorf("nested interrupt accepted with IFF1 clear")
		}
		cpu.Step()
		if cpu.PC != 0x0007 {
			t.Errorf("RET to $%04X, want $0007", cpu.PC)
		}
	})
	t.Run("IM 2", func(t *testing.T) {
		cpu, bus := newTestCPU(
			0x31, 0x00, 0x80, // LD SP,$8000
			0x3E, 0x30, // LD A,$30
			0xED, 0x47, // LD I,A
			0xED, 0x5E, // IM 2
			0xFB, // EI
			0x76, // HALT
		)
		bus.mem[0x30FF] = 0x00
		bus.mem[0x3100] = 0x90
		cpu.Run(100)
		cpu.Interrupt(0xFF)
		if cpu.PC != 0x9000 {
			t.Errorf("PC = $%04X, want $9000", cpu.PC)
		}
	})
}

func TestUndefinedED(t *testing.T) {
	cpu, _ := newTestCPU(
		0xED, 0x00, // undefined
		0xED, 0x77, // undefined
		0x00,
	)
	steps(cpu, 3)
	if cpu.Corrupted() != 2 {
		t.Errorf("corrupted = %d, want 2", cpu.Corrupted())
	}
	if cpu.PC != 5 {
		t.Errorf("PC = $%04X, want $0005", cpu.PC)
	}
	wantCycles(t, cpu, 8+8+4)
}

func TestDAA(t *testing.T) {
	cpu, _ := newTestCPU(
		0x3E, 0x19, // LD A,$19
		0xC6, 0x28, // ADD A,$28
		0x27, // DAA
		0xD6, 0x08, // SUB 8
		0x27, // DAA
	)
	steps(cpu, 3)
	if cpu.A != 0x47 {
		t.Errorf("19+28 = $%02X, want $47", cpu.A)
	}
	steps(cpu, 2)
	if cpu.A != 0x39 {
		t.Errorf("47-08 = $%02X, want $39", cpu.A)
	}
}

func TestState(t *testing.T) {
	cpu, _ := newTestCPU(
		0x21, 0x34, 0x12, // LD HL,$1234
		0xD9, // EXX
		0x23, // INC HL
	)
	steps(cpu, 3)

	got := cpu.State()
	want := &snapshot.Z80{
		HL:     0x0001,
		HL2:    0x1234,
		SP:     cpu.SP,
		PC:     0x0005,
		AF:     0xFFFF,
		R:      got.R,
		Cycles: cpu.Cycles,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}
