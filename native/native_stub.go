//go:build !(cgo && lld)

package native

import (
	"context"

	lld "github.com/wippyai/go-lld"
	"github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
)

// Available reports whether the native backend was compiled in.
const Available = false

// Library is the native entry point. This build has none.
type Library struct{}

// Open reports that the native backend is not compiled in.
func Open() (*Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "native backend not compiled in (build with cgo and -tags lld)")
}

// Link implements lld.Entry.
func (l *Library) Link(context.Context, lld.Flavor, argv.Vector) (lld.Record, error) {
	return nil, errors.NotInitialized(errors.PhaseInvoke, "native library")
}

// Close implements lld.Entry.
func (l *Library) Close(context.Context) error {
	return nil
}
