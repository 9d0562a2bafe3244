// Package wasmenc encodes small WebAssembly modules from hand-written bodies.
//
// # Encoding
//
// LEB128 (Little Endian Base 128) encoding for WebAssembly integers:
//
//	encoded := wasmenc.EncodeULEB128(300)   // unsigned
//	encoded := wasmenc.EncodeSLEB128(-100)  // signed
//
// # Modules
//
// ModuleBuilder assembles a module with one memory, mutable i32 globals and
// functions whose instruction bytes are supplied by the caller:
//
//	b := wasmenc.NewModuleBuilder()
//	b.SetMemory("memory", 1)
//	heap := b.AddGlobal("heap", 1024)
//	b.AddFunc("next", nil, []api.ValueType{api.ValueTypeI32}, nil,
//		[]byte{wasmenc.OpGlobalGet, byte(heap)})
//	wasm := b.Build()
//
// This package is internal and backs the test doubles in lldtest.
package wasmenc
