package wasmenc

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

var i32 = api.ValueTypeI32

func TestModuleBuilder_Empty(t *testing.T) {
	got := NewModuleBuilder().Build()
	// header plus an empty export section
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x07, 0x01, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Build() = % x, want % x", got, want)
	}
}

func TestModuleBuilder_Instantiate(t *testing.T) {
	b := NewModuleBuilder()
	b.SetMemory("memory", 1)
	counter := b.AddGlobal("counter", 40)
	b.AddGlobal("", 0)

	// bump(n) -> counter += n; return counter
	b.AddFunc("bump", []api.ValueType{i32}, []api.ValueType{i32}, nil, []byte{
		OpGlobalGet, byte(counter),
		OpLocalGet, 0,
		OpI32Add,
		OpGlobalSet, byte(counter),
		OpGlobalGet, byte(counter),
	})

	// poke(addr, v) stores v at addr using a local copy of v
	b.AddFunc("poke", []api.ValueType{i32, i32}, nil, []api.ValueType{i32}, []byte{
		OpLocalGet, 1,
		OpLocalSet, 2,
		OpLocalGet, 0,
		OpLocalGet, 2,
		OpI32Store, 0x02, 0x00,
	})

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, b.Build())
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	res, err := mod.ExportedFunction("bump").Call(ctx, 2)
	if err != nil {
		t.Fatalf("bump: %v", err)
	}
	if uint32(res[0]) != 42 {
		t.Errorf("bump(2) = %d, want 42", uint32(res[0]))
	}
	if g := mod.ExportedGlobal("counter"); g == nil || uint32(g.Get()) != 42 {
		t.Error("counter global not exported or not updated")
	}

	if _, err := mod.ExportedFunction("poke").Call(ctx, 16, 0xCAFE); err != nil {
		t.Fatalf("poke: %v", err)
	}
	v, ok := mod.ExportedMemory("memory").ReadUint32Le(16)
	if !ok || v != 0xCAFE {
		t.Errorf("memory[16] = %#x, %v", v, ok)
	}
}

func TestModuleBuilder_PrivateExportsOmitted(t *testing.T) {
	b := NewModuleBuilder()
	b.SetMemory("", 1)
	b.AddGlobal("", 1)
	b.AddFunc("", nil, nil, nil, nil)

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, b.Build())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if n := len(compiled.ExportedFunctions()); n != 0 {
		t.Errorf("exported functions = %d, want 0", n)
	}
	if n := len(compiled.ExportedMemories()); n != 0 {
		t.Errorf("exported memories = %d, want 0", n)
	}
}
