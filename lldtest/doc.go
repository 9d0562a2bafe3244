// Package lldtest provides instrumentable stand-ins for the native linker.
//
// Stub is an in-memory lld.Entry. Its records own a simulated foreign
// buffer that is overwritten on release, and it counts produced and
// released records so tests can check the copy-then-release protocol:
//
//	stub := lldtest.NewStub(lldtest.Echo)
//	b := lld.New(stub, lld.Options{})
//	res, _ := b.Invoke(ctx, lld.ELF, []string{"-o", "a.out", "main.o"})
//	// res.Messages == "main.o", stub.Outstanding() == 0
//
// StubModule synthesizes a wasm module that honours the reactor contract
// (memory, malloc, free, link_with_lld, lld_free) without any toolchain.
package lldtest
