package log

import (
	"bytes"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

type testContext struct{ pc uint16 }

func (c *testContext) AddLogContext(e *EntryZ) {
	e.Hex16("pc", c.pc)
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func wantFields(t *testing.T, out string, fields ...string) {
	t.Helper()

	for _, f := range fields {
		if !strings.Contains(out, f) {
			t.Errorf("log output misses %q:\n%s", f, out)
		}
	}
}

func TestEntryZ(t *testing.T) {
	buf := captureOutput(t)
	mod := NewModule("testz")

	if e := mod.DebugZ("disabled"); e != nil {
		t.Fatalf("DebugZ of disabled module should be nil")
	}
	// Chaining on a nil entry is a no-op.
	mod.DebugZ("disabled").Hex8("val", 1).End()
	if buf.Len() != 0 {
		t.Fatalf("disabled entry was logged: %s", buf)
	}

	EnableDebugModules(mod.Mask())
	defer DisableDebugModules(mod.Mask())

	ctx := &testContext{pc: 0xC000}
	AddContext(ctx)
	defer RemoveContext(ctx)

	mod.DebugZ("write").
		Hex8("val", 0x1F).
		Hex16("addr", 0x2000).
		Bool("ok", true).
		Int("n", -3).
		String("name", "ppu").
		End()

	wantFields(t, buf.String(),
		"level=debug", "msg=write", "_mod=testz",
		"val=1f", "addr=2000", "ok=true", "n=-3", "name=ppu", "pc=c000")
}

func TestWarningsAlwaysEnabled(t *testing.T) {
	buf := captureOutput(t)
	mod := NewModule("testwarn")

	if !mod.Enabled(WarnLevel) || mod.Enabled(InfoLevel) {
		t.Fatalf("only warnings and above should be enabled by default")
	}

	mod.WithField("k", "v").Warnf("warn %d", 1)
	wantFields(t, buf.String(), "level=warning", `msg="warn 1"`, "k=v", "_mod=testwarn")
}

func TestModules(t *testing.T) {
	mod, ok := ModuleByName("ppu")
	if !ok || mod != ModPPU {
		t.Errorf("ModuleByName(ppu) = %v, %t", mod, ok)
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName(<error>) should fail")
	}

	names := ModuleNames()
	if !slices.IsSorted(names) {
		t.Errorf("ModuleNames() not sorted: %v", names)
	}
	for _, want := range []string{"cart", "cpu", "dma", "emu", "hwio", "mem", "ppu"} {
		if !slices.Contains(names, want) {
			t.Errorf("ModuleNames() misses %s", want)
		}
	}
}

func TestFieldValue(t *testing.T) {
	tcs := []struct {
		f    ZField
		want string
	}{
		{ZField{Type: FieldTypeHex8, Integer: 0xA}, "0a"},
		{ZField{Type: FieldTypeHex16, Integer: 0xBEF}, "0bef"},
		{ZField{Type: FieldTypeInt, Integer: -42}, "-42"},
		{ZField{Type: FieldTypeBool}, "false"},
		{ZField{Type: FieldTypeBool, Integer: 1}, "true"},
		{ZField{Type: FieldTypeError}, "<nil>"},
		{ZField{Type: FieldTypeError, Interface: errors.New("boom")}, "boom"},
		{ZField{Type: FieldTypeStringer, Interface: ModCPU}, "cpu"},
		{ZField{Type: FieldTypeUnknown}, "<unknown>"},
	}
	for _, tc := range tcs {
		if got := tc.f.Value(); got != tc.want {
			t.Errorf("Value(%+v) = %q, want %q", tc.f, got, tc.want)
		}
	}
}
