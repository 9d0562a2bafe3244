package lldtest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/go-lld/internal/wasmenc"
)

// Exported counters of StubModule.
const (
	GlobalProduced   = "produced"
	GlobalReleased   = "released"
	GlobalLastFlavor = "last_flavor"
)

// StubHeapBase is where the stub's bump allocator starts.
const StubHeapBase = 1024

// stubPages is the stub's memory size. free is a no-op, so every
// invocation consumes heap until the instance is discarded.
const stubPages = 16

// StubModule returns a wasm module implementing the reactor contract:
//
//	malloc(size) -> ptr            bump allocator, 8-byte aligned
//	free(ptr)                      no-op
//	link_with_lld(out, flavor, argc, argv)
//	lld_free(rec)
//
// link_with_lld fails with a null diagnostic pointer when argc is 0. Otherwise
// it copies the last argument into a new buffer and returns it as the
// diagnostics; success is false when that argument starts with '!'. An empty
// last argument succeeds with a null pointer. lld_free overwrites the first
// diagnostic byte with 'X'. Globals produced, released and last_flavor are
// exported for inspection.
func StubModule() []byte {
	i32 := api.ValueTypeI32
	b := wasmenc.NewModuleBuilder()
	b.SetMemory("memory", stubPages)

	heap := byte(b.AddGlobal("", StubHeapBase))
	produced := byte(b.AddGlobal(GlobalProduced, 0))
	released := byte(b.AddGlobal(GlobalReleased, 0))
	lastFlavor := byte(b.AddGlobal(GlobalLastFlavor, -1))

	malloc := byte(b.AddFunc("malloc", []api.ValueType{i32}, []api.ValueType{i32}, nil, []byte{
		wasmenc.OpGlobalGet, heap, // result: current heap pointer
		wasmenc.OpGlobalGet, heap,
		wasmenc.OpLocalGet, 0,
		wasmenc.OpI32Add,
		wasmenc.OpI32Const, 7,
		wasmenc.OpI32Add,
		wasmenc.OpI32Const, 0x78, // -8
		wasmenc.OpI32And,
		wasmenc.OpGlobalSet, heap,
	}))

	b.AddFunc("free", []api.ValueType{i32}, nil, nil, nil)

	// params: 0 out, 1 flavor, 2 argc, 3 argv; locals: 4 src, 5 len, 6 dst
	b.AddFunc("link_with_lld", []api.ValueType{i32, i32, i32, i32}, nil, []api.ValueType{i32, i32, i32}, []byte{
		wasmenc.OpGlobalGet, produced,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Add,
		wasmenc.OpGlobalSet, produced,

		wasmenc.OpLocalGet, 1,
		wasmenc.OpGlobalSet, lastFlavor,

		// argc == 0: failure, null messages
		wasmenc.OpLocalGet, 2,
		wasmenc.OpI32Eqz,
		wasmenc.OpIf, wasmenc.BlockTypeEmpty,
		wasmenc.OpLocalGet, 0, wasmenc.OpI32Const, 0, wasmenc.OpI32Store8, 0x00, 0x00,
		wasmenc.OpLocalGet, 0, wasmenc.OpI32Const, 0, wasmenc.OpI32Store, 0x02, 0x04,
		wasmenc.OpReturn,
		wasmenc.OpEnd,

		// src = argv[argc-1]
		wasmenc.OpLocalGet, 3,
		wasmenc.OpLocalGet, 2,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Sub,
		wasmenc.OpI32Const, 2,
		wasmenc.OpI32Shl,
		wasmenc.OpI32Add,
		wasmenc.OpI32Load, 0x02, 0x00,
		wasmenc.OpLocalSet, 4,

		// len = strlen(src)
		wasmenc.OpBlock, wasmenc.BlockTypeEmpty,
		wasmenc.OpLoop, wasmenc.BlockTypeEmpty,
		wasmenc.OpLocalGet, 4,
		wasmenc.OpLocalGet, 5,
		wasmenc.OpI32Add,
		wasmenc.OpI32Load8U, 0x00, 0x00,
		wasmenc.OpI32Eqz,
		wasmenc.OpBrIf, 1,
		wasmenc.OpLocalGet, 5,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Add,
		wasmenc.OpLocalSet, 5,
		wasmenc.OpBr, 0,
		wasmenc.OpEnd,
		wasmenc.OpEnd,

		// empty last argument: success, null messages
		wasmenc.OpLocalGet, 5,
		wasmenc.OpI32Eqz,
		wasmenc.OpIf, wasmenc.BlockTypeEmpty,
		wasmenc.OpLocalGet, 0, wasmenc.OpI32Const, 1, wasmenc.OpI32Store8, 0x00, 0x00,
		wasmenc.OpLocalGet, 0, wasmenc.OpI32Const, 0, wasmenc.OpI32Store, 0x02, 0x04,
		wasmenc.OpReturn,
		wasmenc.OpEnd,

		// dst = malloc(len+1); memory.copy(dst, src, len+1)
		wasmenc.OpLocalGet, 5,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Add,
		wasmenc.OpCall, malloc,
		wasmenc.OpLocalSet, 6,
		wasmenc.OpLocalGet, 6,
		wasmenc.OpLocalGet, 4,
		wasmenc.OpLocalGet, 5,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Add,
		wasmenc.OpMiscPrefix, wasmenc.MiscMemoryCopy, 0x00, 0x00,

		// out.success = src[0] != '!'
		wasmenc.OpLocalGet, 0,
		wasmenc.OpLocalGet, 4,
		wasmenc.OpI32Load8U, 0x00, 0x00,
		wasmenc.OpI32Const, '!',
		wasmenc.OpI32Ne,
		wasmenc.OpI32Store8, 0x00, 0x00,

		// out.messages = dst
		wasmenc.OpLocalGet, 0,
		wasmenc.OpLocalGet, 6,
		wasmenc.OpI32Store, 0x02, 0x04,
	})

	// params: 0 rec; locals: 1 msg
	b.AddFunc("lld_free", []api.ValueType{i32}, nil, []api.ValueType{i32}, []byte{
		wasmenc.OpGlobalGet, released,
		wasmenc.OpI32Const, 1,
		wasmenc.OpI32Add,
		wasmenc.OpGlobalSet, released,

		wasmenc.OpLocalGet, 0,
		wasmenc.OpI32Load, 0x02, 0x04,
		wasmenc.OpLocalTee, 1,
		wasmenc.OpIf, wasmenc.BlockTypeEmpty,
		wasmenc.OpLocalGet, 1,
		wasmenc.OpI32Const, 0xd8, 0x00, // 'X'
		wasmenc.OpI32Store8, 0x00, 0x00,
		wasmenc.OpEnd,
	})

	return b.Build()
}
