// Package native reaches link_with_lld in a statically linked LLD through
// cgo.
//
// The backend is compiled only with cgo and the lld build tag. LLVM and LLD
// are located through the usual cgo environment, for example:
//
//	export CGO_CPPFLAGS="$(llvm-config --cppflags)"
//	export CGO_CXXFLAGS="$(llvm-config --cxxflags)"
//	export CGO_LDFLAGS="$(llvm-config --ldflags --libs --system-libs)"
//	go build -tags lld ./...
//
// Without the tag Open reports an unsupported error and the package-level
// helpers fail the same way, so callers can fall back to the reactor
// backend.
//
// Invoke and Link use a default bridge opened on first use:
//
//	warnings, err := native.Link(ctx, lld.ELF, []string{"-o", "app", "main.o"})
package native
