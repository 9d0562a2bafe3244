package reactor

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/go-lld/errors"
)

// guestMemory adapts wazero api.Memory to bounds-checked reads and writes.
type guestMemory struct {
	mem api.Memory
}

// Write writes bytes to memory.
func (m *guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMarshal, offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *guestMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseCopy, offset, 1)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseCopy, offset, 4)
	}
	return v, nil
}

// ReadCString returns a view of the NUL-terminated string at offset,
// terminator excluded. The view aliases guest memory.
func (m *guestMemory) ReadCString(offset uint32) ([]byte, error) {
	size := m.mem.Size()
	if offset >= size {
		return nil, errors.OutOfBounds(errors.PhaseCopy, offset, 1)
	}
	view, ok := m.mem.Read(offset, size-offset)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseCopy, offset, size-offset)
	}
	n := bytes.IndexByte(view, 0)
	if n < 0 {
		return nil, errors.New(errors.PhaseCopy, errors.KindOutOfBounds).
			Value(offset).
			Detail("string at %d is not NUL-terminated", offset).
			Build()
	}
	return view[:n:n], nil
}

// guestAllocator calls the module's malloc and free exports.
type guestAllocator struct {
	mem    *guestMemory
	malloc api.Function
	free   api.Function
}

// Alloc allocates size bytes in guest memory.
func (a *guestAllocator) Alloc(ctx context.Context, size uint32) (uint32, error) {
	results, err := a.malloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseMarshal, size, err)
	}
	if len(results) == 0 || uint32(results[0]) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseMarshal, size, nil)
	}
	return uint32(results[0]), nil
}

// AllocBytes copies data into a fresh guest allocation.
func (a *guestAllocator) AllocBytes(ctx context.Context, data []byte) (uint32, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return 0, errors.Overflow(errors.PhaseMarshal, nil, len(data), "wasm32 size")
	}
	ptr, err := a.Alloc(ctx, uint32(len(data)))
	if err != nil {
		return 0, err
	}
	if err := a.mem.Write(ptr, data); err != nil {
		a.Free(ctx, ptr)
		return 0, err
	}
	return ptr, nil
}

// AllocTable writes ptrs as a wasm32 char** table.
func (a *guestAllocator) AllocTable(ctx context.Context, ptrs []uint32) (uint32, error) {
	table := make([]byte, 4*len(ptrs))
	for i, p := range ptrs {
		binary.LittleEndian.PutUint32(table[i*4:], p)
	}
	return a.AllocBytes(ctx, table)
}

// Free releases a guest allocation. Null is ignored.
func (a *guestAllocator) Free(ctx context.Context, ptr uint32) {
	if ptr != 0 {
		_, _ = a.free.Call(ctx, uint64(ptr))
	}
}
