package log

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/Sirupsen/logrus.v0"
)

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("ModuleByName(%q) not found", name)
		}
		if got := mod.String(); got != name {
			t.Errorf("Module(%d).String() = %q, want %q", mod, got, name)
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName(<error>) should not be found")
	}
}

func TestEnabled(t *testing.T) {
	defer DisableDebugModules(ModuleMaskAll)

	if ModSound.Enabled(DebugLevel) {
		t.Fatalf("debug level should be disabled by default")
	}
	if !ModSound.Enabled(WarnLevel) {
		t.Fatalf("warn level should always be enabled")
	}

	EnableDebugModules(ModSound.Mask())
	if !ModSound.Enabled(DebugLevel) {
		t.Errorf("debug level should be enabled for sound")
	}
	if ModCPU.Enabled(DebugLevel) {
		t.Errorf("debug level should not be enabled for cpu")
	}
}

func TestEntryZ(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer SetOutput(os.Stderr)

	if z := ModM3U.DebugZ("hidden"); z != nil {
		t.Fatalf("DebugZ on disabled module should return nil")
	}
	// Calls on a nil entry are no-ops.
	ModM3U.DebugZ("hidden").Hex16("addr", 0x1234).End()

	ModCPU.WarnZ("illegal opcode").Hex16("pc", 0x8123).Hex8("op", 0x02).End()

	out := buf.String()
	for _, want := range []string{"illegal opcode", "pc=8123", "op=02", "_mod=cpu"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

type fieldName string

func (n fieldName) String() string { return "name:" + string(n) }

func TestZFieldValue(t *testing.T) {
	tests := []struct {
		field ZField
		want  string
	}{
		{ZField{Type: FieldTypeBool, Boolean: true}, "true"},
		{ZField{Type: FieldTypeString, String: "pulse"}, "pulse"},
		{ZField{Type: FieldTypeInt, Integer: uint64(0xFFFFFFFFFFFFFFFF)}, "-1"},
		{ZField{Type: FieldTypeUint, Integer: 4017}, "4017"},
		{ZField{Type: FieldTypeHex8, Integer: 0x0A}, "0a"},
		{ZField{Type: FieldTypeHex16, Integer: 0x4A}, "004a"},
		{ZField{Type: FieldTypeError}, "<nil>"},
		{ZField{Type: FieldTypeError, Error: os.ErrNotExist}, os.ErrNotExist.Error()},
		{ZField{Type: FieldTypeStringer, Interface: fieldName("tri")}, "name:tri"},
		{ZField{Type: FieldTypeUnknown}, ""},
	}
	for _, tt := range tests {
		if got := tt.field.Value(); got != tt.want {
			t.Errorf("ZField{Type: %d}.Value() = %q, want %q", tt.field.Type, got, tt.want)
		}
	}
}
