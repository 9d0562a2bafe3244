package lld

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
)

// invokeMu serializes every invocation in the process. LLD keeps global
// state and is not safe for concurrent use, whatever backend reaches it.
var invokeMu sync.Mutex

// Options configures a Bridge.
type Options struct {
	// Logger receives debug traces of each invocation. Nil uses Logger().
	// Errors are returned, never logged.
	Logger *zap.Logger
}

// Bridge invokes the linker entry point through an Entry and turns the
// foreign record into a Go-owned Result.
// Thread-safe: invocations from any goroutine are serialized process-wide.
type Bridge struct {
	entry  Entry
	log    *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// New creates a Bridge over entry.
func New(entry Entry, opts Options) *Bridge {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Bridge{
		entry: entry,
		log:   log.Named("lld"),
	}
}

// Invoke runs the linker once for flavor with args and returns its outcome.
//
// The returned error covers only failures of the bridge itself: an argument
// with an embedded NUL (no call is made), a closed bridge or a backend
// fault. A linker that reports failure yields a Result with Success false
// and a nil error; use Result.Err or Link to treat it as an error.
//
// The call blocks until the linker returns. ctx is checked before the call
// and handed to the backend; a running link is not cancelled.
func (b *Bridge) Invoke(ctx context.Context, flavor Flavor, args []string) (*Result, error) {
	vec, err := argv.Encode(args)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, errors.Closed("bridge")
	}

	invokeMu.Lock()
	defer invokeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := b.invoke(ctx, flavor, vec)
	if err != nil {
		return nil, err
	}

	if ce := b.log.Check(zap.DebugLevel, "invocation complete"); ce != nil {
		ce.Write(
			zap.Stringer("flavor", flavor),
			zap.Int("argc", vec.Len()),
			zap.Bool("success", res.Success),
			zap.Int("messages", len(res.Messages)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return res, nil
}

// invoke holds the copy-then-release protocol: the record is released on
// every path once obtained, and only after its messages were copied.
func (b *Bridge) invoke(ctx context.Context, flavor Flavor, vec argv.Vector) (res *Result, err error) {
	rec, err := b.entry.Link(ctx, flavor, vec)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Release even if the context ended during the call.
		if relErr := rec.Release(context.WithoutCancel(ctx)); relErr != nil && err == nil {
			res, err = nil, relErr
		}
	}()

	view, err := rec.Messages()
	if err != nil {
		return nil, err
	}

	return &Result{
		Success:  rec.Success(),
		Messages: copyMessages(view),
		Flavor:   flavor,
	}, nil
}

// Link runs Invoke and converts a linker failure into an error.
// Diagnostics of a successful link are returned as the first value.
func (b *Bridge) Link(ctx context.Context, flavor Flavor, args []string) (string, error) {
	res, err := b.Invoke(ctx, flavor, args)
	if err != nil {
		return "", err
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.Messages, nil
}

// Close closes the underlying entry. Invocations in flight complete first.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.entry.Close(ctx)
}
