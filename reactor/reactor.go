package reactor

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	lld "github.com/wippyai/go-lld"
	"github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
)

// Reactor is an lld.Entry backed by a linker module running in wazero.
type Reactor struct {
	runtime     wazero.Runtime
	compiled    wazero.CompiledModule
	mod         api.Module
	mem         *guestMemory
	alloc       *guestAllocator
	link        api.Function
	release     api.Function
	log         *zap.Logger
	mu          sync.Mutex
	ownsRuntime bool
	closed      bool
}

// New compiles and instantiates cfg.Module in rt. A nil rt makes the Reactor
// create, and later close, its own runtime.
func New(ctx context.Context, rt wazero.Runtime, cfg *Config) (*Reactor, error) {
	if cfg == nil || len(cfg.Module) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, "reactor module bytes are required")
	}

	r := &Reactor{
		runtime: rt,
		log:     Logger().Named("reactor"),
	}
	if rt == nil {
		runtimeCfg := wazero.NewRuntimeConfig()
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		r.runtime = wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
		r.ownsRuntime = true
	}

	if err := r.instantiate(ctx, cfg); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	r.log.Debug("reactor ready",
		zap.String("name", cfg.Name),
		zap.Uint32("memory", r.mem.mem.Size()),
	)
	return r, nil
}

func (r *Reactor) instantiate(ctx context.Context, cfg *Config) error {
	if r.runtime.Module(wasi_snapshot_preview1.ModuleName) == nil {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
			return errors.Load("instantiate WASI", err)
		}
	}

	compiled, err := r.runtime.CompileModule(ctx, cfg.Module)
	if err != nil {
		return errors.Load("compile module", err)
	}
	r.compiled = compiled

	mod, err := r.runtime.InstantiateModule(ctx, compiled, cfg.moduleConfig())
	if err != nil {
		return errors.Load("instantiate module", err)
	}
	r.mod = mod

	var missing []string
	lookup := func(name string) api.Function {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			missing = append(missing, name)
		}
		return fn
	}
	malloc := lookup(ExportMalloc)
	free := lookup(ExportFree)
	r.link = lookup(ExportLink)
	r.release = lookup(ExportRelease)

	memory := mod.Memory()
	if memory == nil {
		missing = append(missing, "memory")
	}
	if len(missing) > 0 {
		name := cfg.Name
		if name == "" {
			name = "linker module"
		}
		return errors.NewMissingExportsError(name, missing)
	}

	r.mem = &guestMemory{mem: memory}
	r.alloc = &guestAllocator{mem: r.mem, malloc: malloc, free: free}

	if initFn := mod.ExportedFunction(ExportInitialize); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			return errors.Call(errors.PhaseLoad, ExportInitialize, err)
		}
	}
	return nil
}

// Link implements lld.Entry. It marshals vec into guest memory, calls
// link_with_lld and frees the marshalled argv before returning.
func (r *Reactor) Link(ctx context.Context, flavor lld.Flavor, vec argv.Vector) (lld.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.Closed("reactor")
	}

	argc := vec.Len()
	ptrs := make([]uint32, 0, argc)
	defer func() {
		for _, p := range ptrs {
			r.alloc.Free(ctx, p)
		}
	}()

	for i := 0; i < argc; i++ {
		p, err := r.alloc.AllocBytes(ctx, vec.Bytes(i))
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, p)
	}

	var table uint32
	if argc > 0 {
		var err error
		table, err = r.alloc.AllocTable(ctx, ptrs)
		if err != nil {
			return nil, err
		}
		defer r.alloc.Free(ctx, table)
	}

	out, err := r.alloc.AllocBytes(ctx, make([]byte, RecordSize))
	if err != nil {
		return nil, err
	}

	if _, err := r.link.Call(ctx, uint64(out), uint64(uint32(flavor)), uint64(argc), uint64(table)); err != nil {
		// A trapped call may have left the record half written; only the
		// storage is ours to free.
		r.alloc.Free(ctx, out)
		return nil, errors.Call(errors.PhaseInvoke, ExportLink, err)
	}

	rec := &record{reactor: r, addr: out}
	success, err := r.mem.ReadU8(out + recordSuccessOffset)
	if err == nil {
		rec.messages, err = r.mem.ReadU32(out + recordMessagesOffset)
	}
	if err != nil {
		// The guest populated the record; release it before reporting.
		_ = r.releaseLocked(ctx, rec)
		return nil, err
	}
	rec.success = success != 0
	return rec, nil
}

func (r *Reactor) releaseLocked(ctx context.Context, rec *record) error {
	_, err := r.release.Call(ctx, uint64(rec.addr))
	r.alloc.Free(ctx, rec.addr)
	rec.released = true
	if err != nil {
		return errors.Call(errors.PhaseRelease, ExportRelease, err)
	}
	return nil
}

// Close closes the module and, when owned, the runtime.
func (r *Reactor) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	if r.mod != nil {
		firstErr = r.mod.Close(ctx)
	}
	if r.compiled != nil {
		if err := r.compiled.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := r.closeRuntime(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (r *Reactor) closeRuntime(ctx context.Context) error {
	if r.ownsRuntime && r.runtime != nil {
		return r.runtime.Close(ctx)
	}
	return nil
}

// record is an LLDInvokeResult living in guest memory at addr.
type record struct {
	reactor  *Reactor
	addr     uint32
	messages uint32
	success  bool
	released bool
}

func (rec *record) Success() bool {
	return rec.success
}

// Messages returns a view of guest memory; it is invalidated by Release
// and by any later call into the guest.
func (rec *record) Messages() ([]byte, error) {
	r := rec.reactor
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.released {
		return nil, errors.New(errors.PhaseCopy, errors.KindReleased).
			Symbol(ExportRelease).
			Detail("messages read after release").
			Build()
	}
	if rec.messages == 0 {
		return nil, nil
	}
	return r.mem.ReadCString(rec.messages)
}

func (rec *record) Release(ctx context.Context) error {
	r := rec.reactor
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.released {
		return errors.AlreadyReleased(ExportRelease)
	}
	if r.closed {
		// Guest memory is gone with the module.
		rec.released = true
		return errors.Closed("reactor")
	}
	return r.releaseLocked(ctx, rec)
}
