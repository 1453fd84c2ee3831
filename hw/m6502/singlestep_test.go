package m6502

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"chipplay/tests"
)

var documented = map[string]bool{
	"ADC": true, "AND": true, "ASL": true, "BCC": true, "BCS": true, "BEQ": true,
	"BIT": true, "BMI": true, "BNE": true, "BPL": true, "BRK": true, "BVC": true,
	"BVS": true, "CLC": true, "CLD": true, "CLI": true, "CLV": true, "CMP": true,
	"CPX": true, "CPY": true, "DEC": true, "DEX": true, "DEY": true, "EOR": true,
	"INC": true, "INX": true, "INY": true, "JMP": true, "JSR": true, "LDA": true,
	"LDX": true, "LDY": true, "LSR": true, "ORA": true, "PHA": true, "PHP": true,
	"PLA": true, "PLP": true, "ROL": true, "ROR": true, "RTI": true, "RTS": true,
	"SBC": true, "SEC": true, "SED": true, "SEI": true, "STA": true, "STX": true,
	"STY": true, "TAX": true, "TAY": true, "TSX": true, "TXA": true, "TXS": true,
	"TYA": true,
}

// Break and Reserved have no storage in the chip.
const pmask = ^uint8(Break | Reserved)

type singleStepState struct {
	PC  int     `json:"pc"`
	SP  int     `json:"s"`
	A   int     `json:"a"`
	X   int     `json:"x"`
	Y   int     `json:"y"`
	P   int     `json:"p"`
	RAM [][]int `json:"ram"`
}

type singleStepTest struct {
	Name    string          `json:"name"`
	Initial singleStepState `json:"initial"`
	Final   singleStepState `json:"final"`
	Cycles  [][]any         `json:"cycles"`
}

// TestSingleStep runs the single-step tests of the documented opcodes.
func TestSingleStep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test")
	}

	dir := tests.SingleStep6502Path(t)
	for opcode := range 256 {
		if !documented[defs[opcode].n] {
			continue
		}
		opstr := fmt.Sprintf("%02x", opcode)
		t.Run(opstr, func(t *testing.T) {
			t.Parallel()
			runSingleStep(t, filepath.Join(dir, opstr+".json"))
		})
	}
}

func runSingleStep(t *testing.T, path string) {
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var tcs []singleStepTest
	if err := json.Unmarshal(buf, &tcs); err != nil {
		t.Fatal(err)
	}

	mem := &ram{}
	for _, tc := range tcs {
		clear(mem[:])
		for _, row := range tc.Initial.RAM {
			mem[row[0]] = uint8(row[1])
		}

		cpu := &CPU{Bus: mem}
		cpu.PC = uint16(tc.Initial.PC)
		cpu.SP = uint8(tc.Initial.SP)
		cpu.A = uint8(tc.Initial.A)
		cpu.X = uint8(tc.Initial.X)
		cpu.Y = uint8(tc.Initial.Y)
		cpu.P = P(tc.Initial.P)

		cpu.Step()

		want := tc.Final
		if cpu.PC != uint16(want.PC) || cpu.SP != uint8(want.SP) ||
			cpu.A != uint8(want.A) || cpu.X != uint8(want.X) || cpu.Y != uint8(want.Y) ||
			uint8(cpu.P)&pmask != uint8(want.P)&pmask {
			t.Errorf("%s: got PC=$%04X SP=$%02X A=$%02X X=$%02X Y=$%02X P=$%02X, want PC=$%04X SP=$%02X A=$%02X X=$%02X Y=$%02X P=$%02X",
				tc.Name, cpu.PC, cpu.SP, cpu.A, cpu.X, cpu.Y, uint8(cpu.P),
				want.PC, want.SP, want.A, want.X, want.Y, want.P)
		}
		if cpu.Cycles != int64(len(tc.Cycles)) {
			t.Errorf("%s: got %d cycles, want %d", tc.Name, cpu.Cycles, len(tc.Cycles))
		}
		for _, row := range want.RAM {
			if got := mem[row[0]]; got != uint8(row[1]) {
				t.Errorf("%s: ram[$%04X] = $%02X, want $%02X", tc.Name, row[0], got, row[1])
			}
		}
		if t.Failed() {
			return
		}
	}
}
