package native

import (
	"context"
	"sync"

	lld "github.com/wippyai/go-lld"
)

var (
	defaultOnce   sync.Once
	defaultBridge *lld.Bridge
	defaultErr    error
)

// Bridge returns the process-wide bridge over the native library, opening
// it on first use. It is never closed.
func Bridge() (*lld.Bridge, error) {
	defaultOnce.Do(func() {
		lib, err := Open()
		if err != nil {
			defaultErr = err
			return
		}
		defaultBridge = lld.New(lib, lld.Options{})
	})
	return defaultBridge, defaultErr
}

// Invoke runs the linker through the default bridge.
func Invoke(ctx context.Context, flavor lld.Flavor, args []string) (*lld.Result, error) {
	b, err := Bridge()
	if err != nil {
		return nil, err
	}
	return b.Invoke(ctx, flavor, args)
}

// Link runs the linker through the default bridge and converts a linker
// failure into an error. The diagnostics of a successful link are returned.
func Link(ctx context.Context, flavor lld.Flavor, args []string) (string, error) {
	b, err := Bridge()
	if err != nil {
		return "", err
	}
	return b.Link(ctx, flavor, args)
}
