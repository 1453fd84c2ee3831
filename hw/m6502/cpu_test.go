package m6502

import (
	"bytes"
	"os"
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"

	"chipplay/emu/log"
)

func TestAllOpcodesAreImplemented(t *testing.T) {
	for opcode, op := range ops {
		if op == nil {
			t.Errorf("opcode %02x not implemented", opcode)
		}
	}
}

func TestPString(t *testing.T) {
	tests := []struct {
		p    P
		want string
	}{
		{0x00, "nvubdizc"},
		{0xFF, "NVUBDIZC"},
		{Interrupt | Reserved, "nvUbdIzc"},
		{Carry | Negative, "NvubdizC"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("P(%02X).String() = %q, want %q", uint8(tt.p), got, tt.want)
		}
	}
}

func TestADC(t *testing.T) {
	tests := []struct {
		a, val uint8
		carry  bool
		want   uint8
		wantC  bool
		wantV  bool
		wantZ  bool
		wantN  bool
	}{
		{a: 0x01, val: 0x01, want: 0x02},
		{a: 0x7F, val: 0x01, want: 0x80, wantV: true, wantN: true},
		{a: 0xFF, val: 0x01, want: 0x00, wantC: true, wantZ: true},
		{a: 0x80, val: 0x80, want: 0x00, wantC: true, wantV: true, wantZ: true},
		{a: 0x10, val: 0x10, carry: true, want: 0x21},
	}
	for _, tt := range tests {
		cpu, _ := newTestCPU(0x69, tt.val) // ADC #val
		cpu.A = tt.a
		cpu.P.set(Carry, tt.carry)
		cpu.Step()

		wantReg8(t, "A", cpu.A, tt.want)
		if cpu.P.has(Carry) != tt.wantC || cpu.P.has(Overflow) != tt.wantV ||
			cpu.P.has(Zero) != tt.wantZ || cpu.P.has(Negative) != tt.wantN {
			t.Errorf("%02X+%02X: wrong flags %s", tt.a, tt.val, cpu.P)
		}
		wantCycles(t, cpu, 2)
	}
}

func TestSBC(t *testing.T) {
	cpu, _ := newTestCPU(
		0x38,       // SEC
		0xE9, 0x01, // SBC #$01
		0xE9, 0x01, // SBC #$01
	)
	cpu.A = 0x01
	cpu.Step()
	cpu.Step()
	wantReg8(t, "A", cpu.A, 0x00)
	if !cpu.P.has(Carry) || !cpu.P.has(Zero) {
		t.Errorf("wrong flags after 1-1: %s", cpu.P)
	}
	cpu.Step()
	wantReg8(t, "A", cpu.A, 0xFF)
	if cpu.P.has(Carry) || !cpu.P.has(Negative) {
		t.Errorf("wrong flags after 0-1: %s", cpu.P)
	}
}

func TestJSRRTS(t *testing.T) {
	cpu, mem := newTestCPU(
		0x20, 0x10, 0x02, // JSR $0210
	)
	mem[0x0210] = 0xE8 // INX
	mem[0x0211] = 0x60 // RTS

	cpu.Step()
	if cpu.PC != 0x0210 {
		t.Fatalf("PC = $%04X after JSR, want $0210", cpu.PC)
	}
	wantCycles(t, cpu, 6)
	// JSR pushes the address of its last byte.
	if got := uint16(mem[0x01FD])<<8 | uint16(mem[0x01FC]); got != 0x0202 {
		t.Errorf("pushed return address $%04X, want $0202", got)
	}

	cpu.Step()
	cpu.Step()
	if cpu.PC != 0x0203 {
		t.Errorf("PC = $%04X after RTS, want $0203", cpu.PC)
	}
	wantReg8(t, "X", cpu.X, 1)
	wantReg8(t, "SP", cpu.SP, 0xFD)
	wantCycles(t, cpu, 6+2+6)
}

func TestRunHaltsAtIdle(t *testing.T) {
	cpu, _ := newTestCPU(
		0xA9, 0x42, // LDA #$42
		0x60,       // RTS
	)
	// Simulate a call from the idle address.
	cpu.Push16(cpu.IdleAddr - 1)

	cpu.Run(1000)
	if !cpu.Halted() {
		t.Fatalf("CPU didn't halt, PC=$%04X", cpu.PC)
	}
	if cpu.PC != cpu.IdleAddr {
		t.Errorf("PC = $%04X, want $%04X", cpu.PC, cpu.IdleAddr)
	}
	wantReg8(t, "A", cpu.A, 0x42)
	wantCycles(t, cpu, 2+6+1)
	if cpu.Corrupted() != 0 {
		t.Errorf("corrupted = %d, want 0", cpu.Corrupted())
	}

	// Halted CPU doesn't move.
	cycles := cpu.Cycles
	cpu.Run(2000)
	wantCycles(t, cpu, cycles)
}

func TestIllegalInstructions(t *testing.T) {
	cpu, _ := newTestCPU(
		0x02,             // KIL, outside the idle address
		0x9C, 0x00, 0x30, // SHY $3000,X
		0xE8,             // INX
	)
	cpu.Step()
	cpu.Step()
	cpu.Step()

	if cpu.Halted() {
		t.Errorf("CPU halted on illegal opcode")
	}
	if got := cpu.Corrupted(); got != 2 {
		t.Errorf("corrupted = %d, want 2", got)
	}
	if cpu.PC != 0x0205 {
		t.Errorf("PC = $%04X, want $0205", cpu.PC)
	}
	wantReg8(t, "X", cpu.X, 1)
}

func TestIllegalInstructionLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	log.EnableDebugModules(log.ModCPU.Mask())
	defer log.DisableDebugModules(log.ModuleMaskAll)

	cpu, _ := newTestCPU(0x9C, 0x00, 0x30) // SHY $3000,X
	cpu.Step()

	out := buf.String()
	for _, want := range []string{"illegal instruction", "PC=0200", "opcode=9c", "SHY $3000,X"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func TestBranchTiming(t *testing.T) {
	tests := []struct {
		name   string
		pc     uint16
		offset uint8
		z      bool
		wantPC uint16
		cycles int64
	}{
		{"not taken", 0x0200, 0x10, false, 0x0202, 2},
		{"taken", 0x0200, 0x10, true, 0x0212, 3},
		{"taken backward", 0x0210, 0xFE, true, 0x0210, 3},
		{"page crossed", 0x02F0, 0x20, true, 0x0312, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := newTestCPU()
			mem[tt.pc] = 0xF0 // BEQ
			mem[tt.pc+1] = tt.offset
			cpu.PC = tt.pc
			cpu.P.set(Zero, tt.z)
			cpu.Step()

			if cpu.PC != tt.wantPC {
				t.Errorf("PC = $%04X, want $%04X", cpu.PC, tt.wantPC)
			}
			wantCycles(t, cpu, tt.cycles)
		})
	}
}

func TestIndexedCycles(t *testing.T) {
	tests := []struct {
		name   string
		prog   []uint8
		x      uint8
		cycles int64
	}{
		{"LDA abs,X", []uint8{0xBD, 0x00, 0x30}, 0x01, 4},
		{"LDA abs,X crossed", []uint8{0xBD, 0xFF, 0x30}, 0x01, 5},
		{"STA abs,X", []uint8{0x9D, 0x00, 0x30}, 0x01, 5},
		{"INC abs,X", []uint8{0xFE, 0x00, 0x30}, 0x01, 7},
		{"INC zp", []uint8{0xE6, 0x10}, 0x00, 5},
		{"ASL A", []uint8{0x0A}, 0x00, 2},
		{"JMP (ind)", []uint8{0x6C, 0x00, 0x30}, 0x00, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(tt.prog...)
			cpu.X = tt.x
			cpu.Step()
			wantCycles(t, cpu, tt.cycles)
		})
	}
}

func TestJMPIndirectPageWrap(t *testing.T) {
	cpu, mem := newTestCPU(0x6C, 0xFF, 0x30) // JMP ($30FF)
	mem[0x30FF] = 0x34
	mem[0x3000] = 0x12
	mem[0x3100] = 0xFF
	cpu.Step()
	if cpu.PC != 0x1234 {
		t.Errorf("PC = $%04X, want $1234", cpu.PC)
	}
}

func TestStackOps(t *testing.T) {
	cpu, _ := newTestCPU(
		0x08, // PHP
		0x68, // PLA
	)
	cpu.P = Carry | Reserved
	cpu.Step()
	cpu.Step()
	// PHP pushes B and U set.
	wantReg8(t, "A", cpu.A, uint8(Carry|Reserved|Break))
	wantCycles(t, cpu, 3+4)
}

func TestIRQ(t *testing.T) {
	cpu, mem := newTestCPU()
	mem[0xFFFE] = 0x00
	mem[0xFFFF] = 0x80

	cpu.P = Interrupt | Reserved
	if cpu.IRQEnabled() || cpu.IRQ() || cpu.PC != 0x0200 {
		t.Fatalf("masked IRQ was taken")
	}

	cpu.P = Reserved
	if !cpu.IRQEnabled() || !cpu.IRQ() {
		t.Fatalf("IRQ not taken")
	}
	if cpu.PC != 0x8000 {
		t.Errorf("PC = $%04X, want $8000", cpu.PC)
	}
	wantCycles(t, cpu, 7)
	wantP(t, P(mem[0x01FB]), Reserved)
	if !cpu.P.has(Interrupt) {
		t.Errorf("I flag not set after IRQ")
	}
}

func TestStateRoundTrip(t *testing.T) {
	cpu, _ := newTestCPU(0xA2, 0x10, 0xE8) // LDX #$10; INX
	cpu.Step()
	saved := cpu.State()

	cpu.Step()
	cpu.SetState(saved)
	if diff := gocmp.Diff(saved, cpu.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	cpu.Step()
	wantReg8(t, "X", cpu.X, 0x11)
}

func TestDisasm(t *testing.T) {
	_, mem := newTestCPU(
		0xBD, 0x34, 0x12, // LDA $1234,X
		0xD0, 0xFB,       // BNE $0200
		0x0A,             // ASL A
	)
	tests := []struct {
		pc   uint16
		want string
		n    int
	}{
		{0x0200, "LDA $1234,X", 3},
		{0x0203, "BNE $0200", 2},
		{0x0205, "ASL A", 1},
	}
	for _, tt := range tests {
		got, n := Disasm(mem, tt.pc)
		if got != tt.want || n != tt.n {
			t.Errorf("Disasm($%04X) = %q, %d, want %q, %d", tt.pc, got, n, tt.want, tt.n)
		}
	}
}
