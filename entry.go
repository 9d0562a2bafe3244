package lld

import (
	"context"

	"github.com/wippyai/go-lld/internal/argv"
)

// Entry is a backend that reaches the link_with_lld entry point.
//
// Link marshals vec into foreign memory, calls the entry point exactly once
// and frees the marshalled argv before returning. It never copies or releases
// the record it returns; that is the bridge's job.
type Entry interface {
	Link(ctx context.Context, flavor Flavor, vec argv.Vector) (Record, error)
	Close(ctx context.Context) error
}

// Record is a foreign-owned invocation outcome (LLDInvokeResult).
//
// Messages returns a view into foreign memory, nil when the diagnostic
// pointer is null. The view is valid only until Release. Release frees the
// foreign buffer and must be called exactly once.
type Record interface {
	Success() bool
	Messages() ([]byte, error)
	Release(ctx context.Context) error
}
