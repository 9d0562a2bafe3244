// Package lld invokes the LLD linker in-process and returns its outcome as
// Go values.
//
// A Bridge drives one backend entry point, link_with_lld(flavor, argc, argv),
// and converts the foreign LLDInvokeResult into a Result that owns its data:
// the diagnostic text is copied out and the foreign record is released
// exactly once, on every path.
//
// # Architecture Overview
//
//	lld/                 Bridge, Result, Flavor, Worker
//	├── native/          cgo backend over a statically linked LLD (-tags lld)
//	├── reactor/         wazero backend over LLD compiled to a WASI reactor
//	├── lldtest/         Stub entry and stub reactor module for tests
//	├── errors/          Structured error types
//	├── internal/argv/   Go strings to NUL-terminated argument buffers
//	├── internal/wasmenc Minimal wasm module encoder
//	└── cmd/lld/         Command line and interactive front end
//
// # Quick Start
//
// Link through the native backend:
//
//	warnings, err := native.Link(ctx, lld.ELF, []string{"-o", "app", "main.o"})
//	if diag, ok := errors.Diagnostics(err); ok {
//		fmt.Fprintln(os.Stderr, diag)
//	}
//
// Or through a reactor module:
//
//	r, err := reactor.New(ctx, nil, &reactor.Config{Module: wasm, Dir: "."})
//	b := lld.New(r, lld.Options{})
//	defer b.Close(ctx)
//	res, err := b.Invoke(ctx, lld.WASM, []string{"-o", "app.wasm", "main.o"})
//
// Invoke returns an error only when the bridge itself fails; a failed link is
// a Result with Success false. Link turns that into a link_failure error.
//
// # Thread Safety
//
// LLD is not reentrant. Every invocation in the process, across bridges and
// backends, is serialized by one lock. Worker additionally pins invocations
// to a single OS thread and lets callers bound their wait with a context.
//
// # Logging
//
// Logging uses zap and is off by default. SetLogger installs a logger for the
// package; Options.Logger overrides it per bridge. Only debug-level
// invocation traces are written.
package lld
