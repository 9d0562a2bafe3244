//go:build cgo && lld

package native

/*
#cgo CXXFLAGS: -std=c++17
#cgo LDFLAGS: -llldCommon -llldELF -llldCOFF -llldMachO -llldWasm -lstdc++
#include <stdlib.h>
#include <string.h>
#include "lld_shim.h"
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	lld "github.com/wippyai/go-lld"
	"github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
)

const symbolRelease = "lld_free"

// Available reports whether the native backend was compiled in.
const Available = true

// Library is an lld.Entry over the statically linked shim.
type Library struct {
	mu     sync.Mutex
	closed bool
}

// Open returns the native entry point.
func Open() (*Library, error) {
	return &Library{}, nil
}

// Link implements lld.Entry.
func (l *Library) Link(_ context.Context, flavor lld.Flavor, vec argv.Vector) (lld.Record, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, errors.Closed("native library")
	}

	argc := vec.Len()
	var table **C.char
	if argc > 0 {
		raw := C.malloc(C.size_t(argc) * C.size_t(unsafe.Sizeof(uintptr(0))))
		if raw == nil {
			return nil, errors.AllocationFailed(errors.PhaseMarshal, uint32(argc)*uint32(unsafe.Sizeof(uintptr(0))), nil)
		}
		defer C.free(raw)
		table = (**C.char)(raw)

		ptrs := unsafe.Slice(table, argc)
		for i := range ptrs {
			ptrs[i] = nil
		}
		defer func() {
			for _, p := range ptrs {
				if p != nil {
					C.free(unsafe.Pointer(p))
				}
			}
		}()
		for i := 0; i < argc; i++ {
			// Bytes already carries the terminator.
			ptrs[i] = (*C.char)(C.CBytes(vec.Bytes(i)))
		}
	}

	raw := C.link_with_lld(C.LLDFlavor(flavor), C.int(argc), table)
	return &record{raw: raw}, nil
}

// Close marks the library closed. LLD stays linked into the process.
func (l *Library) Close(context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

// record holds LLDInvokeResult by value; only messages points at C memory.
type record struct {
	raw      C.LLDInvokeResult
	released bool
}

func (r *record) Success() bool {
	return bool(r.raw.success)
}

func (r *record) Messages() ([]byte, error) {
	if r.released {
		return nil, errors.New(errors.PhaseCopy, errors.KindReleased).
			Symbol(symbolRelease).
			Detail("messages read after release").
			Build()
	}
	if r.raw.messages == nil {
		return nil, nil
	}
	n := C.strlen(r.raw.messages)
	return unsafe.Slice((*byte)(unsafe.Pointer(r.raw.messages)), int(n)), nil
}

func (r *record) Release(context.Context) error {
	if r.released {
		return errors.AlreadyReleased(symbolRelease)
	}
	r.released = true
	C.lld_free(&r.raw)
	return nil
}
