// Package reactor reaches LLD compiled to a WASI reactor module, in-process
// through wazero.
//
// The module must export:
//
//	memory                                  linear memory
//	malloc(size i32) -> i32                 allocation for argv and records
//	free(ptr i32)
//	link_with_lld(out, flavor, argc, argv)  wasm32 C ABI, struct returned via out
//	lld_free(rec i32)                       frees rec's diagnostic buffer
//
// and may export _initialize, which is called once after instantiation.
//
// A Reactor implements lld.Entry:
//
//	r, err := reactor.New(ctx, nil, &reactor.Config{Module: wasmBytes, Dir: "."})
//	if err != nil {
//		return err
//	}
//	b := lld.New(r, lld.Options{})
//	defer b.Close(ctx)
//	res, err := b.Invoke(ctx, lld.WASM, []string{"-o", "app.wasm", "main.o"})
//
// # Record layout
//
// LLDInvokeResult in wasm32 memory is 8 bytes: success (u8) at offset 0 and
// the messages pointer (u32) at offset 4.
//
// # Thread Safety
//
// A Reactor serializes its own calls; the guest is single-threaded.
package reactor
