package lld

import (
	"context"
	"runtime"
	"sync"

	"github.com/wippyai/go-lld/errors"
)

type job struct {
	ctx    context.Context
	done   chan jobResult
	args   []string
	flavor Flavor
}

type jobResult struct {
	res *Result
	err error
}

// Worker runs every invocation of a Bridge on one dedicated OS thread.
//
// Callers wait with a context: when it ends first they get ctx.Err() while
// the link already in progress runs to completion and its record is still
// released. This bounds the wait, not the linker.
type Worker struct {
	bridge *Bridge
	jobs   chan job
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWorker starts the worker thread for b.
func NewWorker(b *Bridge) *Worker {
	w := &Worker{
		bridge: b,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer w.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case j := <-w.jobs:
			// The caller may have given up during the handoff.
			if err := j.ctx.Err(); err != nil {
				j.done <- jobResult{err: err}
				continue
			}
			res, err := w.bridge.Invoke(context.WithoutCancel(j.ctx), j.flavor, j.args)
			j.done <- jobResult{res: res, err: err}
		case <-w.quit:
			return
		}
	}
}

// Invoke queues an invocation and waits for its result or for ctx.
func (w *Worker) Invoke(ctx context.Context, flavor Flavor, args []string) (*Result, error) {
	j := job{
		ctx:    ctx,
		flavor: flavor,
		args:   args,
		done:   make(chan jobResult, 1),
	}

	select {
	case w.jobs <- j:
	case <-w.quit:
		return nil, errors.Closed("worker")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-j.done:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the worker after the current job. It does not close the bridge.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.quit) })
	w.wg.Wait()
}
