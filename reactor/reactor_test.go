package reactor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	lld "github.com/wippyai/go-lld"
	lldErrors "github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
	"github.com/wippyai/go-lld/internal/wasmenc"
	"github.com/wippyai/go-lld/lldtest"
)

func newStubReactor(t *testing.T) (*Reactor, *lld.Bridge) {
	t.Helper()
	ctx := context.Background()

	r, err := New(ctx, nil, &Config{Module: lldtest.StubModule()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b := lld.New(r, lld.Options{})
	t.Cleanup(func() { _ = b.Close(ctx) })
	return r, b
}

func global(t *testing.T, r *Reactor, name string) int32 {
	t.Helper()
	g := r.mod.ExportedGlobal(name)
	if g == nil {
		t.Fatalf("global %q not exported", name)
	}
	return int32(uint32(g.Get()))
}

func TestNew_RequiresModule(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []*Config{nil, {}} {
		_, err := New(ctx, nil, cfg)
		if !errors.Is(err, &lldErrors.Error{Phase: lldErrors.PhaseConfig, Kind: lldErrors.KindInvalidInput}) {
			t.Errorf("New(%v) error = %v", cfg, err)
		}
	}
}

func TestNew_InvalidModule(t *testing.T) {
	_, err := New(context.Background(), nil, &Config{Module: []byte("not wasm")})
	if !errors.Is(err, &lldErrors.Error{Phase: lldErrors.PhaseLoad, Kind: lldErrors.KindInstantiation}) {
		t.Errorf("error = %v, want load failure", err)
	}
}

func TestNew_MissingExports(t *testing.T) {
	b := wasmenc.NewModuleBuilder()
	b.SetMemory("memory", 1)
	b.AddFunc(ExportMalloc, []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}, nil,
		[]byte{wasmenc.OpI32Const, 0})

	_, err := New(context.Background(), nil, &Config{Module: b.Build(), Name: "half.wasm"})

	var missing *lldErrors.MissingExportsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingExportsError", err)
	}
	want := []string{ExportFree, ExportLink, ExportRelease}
	if strings.Join(missing.Exports, ",") != strings.Join(want, ",") {
		t.Errorf("missing = %v, want %v", missing.Exports, want)
	}
	if missing.Module != "half.wasm" {
		t.Errorf("module = %q", missing.Module)
	}
}

func TestNew_SharedRuntime(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	// Two anonymous reactors in one runtime; WASI is instantiated once.
	first, err := New(ctx, rt, &Config{Module: lldtest.StubModule()})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := New(ctx, rt, &Config{Module: lldtest.StubModule()})
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if err := first.Close(ctx); err != nil {
		t.Errorf("close first: %v", err)
	}

	vec, _ := argv.Encode([]string{"still-alive"})
	rec, err := second.Link(ctx, lld.ELF, vec)
	if err != nil {
		t.Fatalf("second reactor should survive closing the first: %v", err)
	}
	if err := rec.Release(ctx); err != nil {
		t.Errorf("release: %v", err)
	}
	if err := second.Close(ctx); err != nil {
		t.Errorf("close second: %v", err)
	}
}

func TestInvoke_Success(t *testing.T) {
	r, b := newStubReactor(t)

	res, err := b.Invoke(context.Background(), lld.ELF, []string{"-o", "a.out", "main.o"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.Success || res.Messages != "main.o" {
		t.Errorf("result = %+v, want success with main.o", res)
	}
	if err := res.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}

	if got := global(t, r, lldtest.GlobalProduced); got != 1 {
		t.Errorf("produced = %d, want 1", got)
	}
	if got := global(t, r, lldtest.GlobalReleased); got != 1 {
		t.Errorf("released = %d, want 1", got)
	}
	if got := global(t, r, lldtest.GlobalLastFlavor); got != int32(lld.ELF) {
		t.Errorf("last_flavor = %d, want %d", got, lld.ELF)
	}
}

func TestInvoke_FailureReleases(t *testing.T) {
	r, b := newStubReactor(t)

	res, err := b.Invoke(context.Background(), lld.COFF, []string{"/out:a.exe", "!cannot open missing.obj"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	diag, ok := lldErrors.Diagnostics(res.Err())
	if !ok || !strings.Contains(diag, "missing.obj") {
		t.Errorf("diagnostics = %q, %v", diag, ok)
	}
	if got := global(t, r, lldtest.GlobalReleased); got != 1 {
		t.Errorf("released = %d, want 1 after failure", got)
	}
}

func TestInvoke_NullMessages(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		success bool
	}{
		{name: "no arguments fail", args: nil, success: false},
		{name: "empty last argument succeeds", args: []string{"-o", ""}, success: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, b := newStubReactor(t)

			res, err := b.Invoke(context.Background(), lld.WASM, tt.args)
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if res.Success != tt.success {
				t.Errorf("success = %v, want %v", res.Success, tt.success)
			}
			if res.Messages != "" {
				t.Errorf("messages = %q, want empty", res.Messages)
			}
			if got := global(t, r, lldtest.GlobalReleased); got != 1 {
				t.Errorf("released = %d, want 1", got)
			}
		})
	}
}

func TestInvoke_EmbeddedNULSkipsCall(t *testing.T) {
	r, b := newStubReactor(t)

	_, err := b.Invoke(context.Background(), lld.ELF, []string{"-o", "a\x00.out"})
	if idx, ok := lldErrors.ArgIndex(err); !ok || idx != 1 {
		t.Fatalf("error = %v, want encoding error at 1", err)
	}
	if got := global(t, r, lldtest.GlobalProduced); got != 0 {
		t.Errorf("produced = %d, want 0", got)
	}
}

func TestInvoke_CopySurvivesRelease(t *testing.T) {
	r, _ := newStubReactor(t)
	ctx := context.Background()

	vec, err := argv.Encode([]string{"-o", "out", "diagnostic text"})
	if err != nil {
		t.Fatal(err)
	}
	rec, err := r.Link(ctx, lld.MACHO, vec)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	view, err := rec.Messages()
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	copied := string(view)
	addr := rec.(*record).messages

	if err := rec.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	b, ok := r.mod.Memory().ReadByte(addr)
	if !ok || b != 'X' {
		t.Fatalf("guest buffer not overwritten on release: %q", b)
	}
	if copied != "diagnostic text" {
		t.Errorf("copy changed after release: %q", copied)
	}

	if _, err := rec.Messages(); !errors.Is(err, &lldErrors.Error{Phase: lldErrors.PhaseCopy, Kind: lldErrors.KindReleased}) {
		t.Errorf("Messages after release error = %v", err)
	}
}

func TestRecord_DoubleRelease(t *testing.T) {
	r, _ := newStubReactor(t)
	ctx := context.Background()

	vec, _ := argv.Encode([]string{"x"})
	rec, err := r.Link(ctx, lld.ELF, vec)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rec.Release(ctx); !errors.Is(err, lldErrors.AlreadyReleased(ExportRelease)) {
		t.Errorf("second Release error = %v", err)
	}
	if got := global(t, r, lldtest.GlobalReleased); got != 1 {
		t.Errorf("released = %d, want 1", got)
	}
}

func TestInvoke_SequentialFlavors(t *testing.T) {
	r, b := newStubReactor(t)
	ctx := context.Background()

	first, err := b.Invoke(ctx, lld.ELF, []string{"-o", "a.out", "first-diagnostic-longer"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Invoke(ctx, lld.WASM, []string{"-o", "a.wasm", "second"})
	if err != nil {
		t.Fatal(err)
	}

	if first.Messages != "first-diagnostic-longer" || first.Flavor != lld.ELF {
		t.Errorf("first = %+v", first)
	}
	if second.Messages != "second" || second.Flavor != lld.WASM {
		t.Errorf("second = %+v", second)
	}
	if got := global(t, r, lldtest.GlobalLastFlavor); got != int32(lld.WASM) {
		t.Errorf("last_flavor = %d, want %d", got, lld.WASM)
	}
}

func TestInvoke_ConcurrentCallersSerialized(t *testing.T) {
	r, b := newStubReactor(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("input-%02d.o", i)
			res, err := b.Invoke(ctx, lld.Flavor(i%4), []string{"-o", "out", want})
			if err != nil {
				errs <- err
				return
			}
			if res.Messages != want || !res.Success {
				errs <- fmt.Errorf("call %d: got %+v", i, res)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if p, rel := global(t, r, lldtest.GlobalProduced), global(t, r, lldtest.GlobalReleased); p != n || rel != n {
		t.Errorf("produced=%d released=%d, want %d each", p, rel, n)
	}
}

func TestClose(t *testing.T) {
	r, err := New(context.Background(), nil, &Config{Module: lldtest.StubModule()})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := r.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}

	_, err = r.Link(ctx, lld.ELF, argv.Vector{})
	if !errors.Is(err, &lldErrors.Error{Phase: lldErrors.PhaseInvoke, Kind: lldErrors.KindClosed}) {
		t.Errorf("Link after Close error = %v", err)
	}
}
