package lldtest

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	lld "github.com/wippyai/go-lld"
	"github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/internal/argv"
)

// Scribble is written over a record's buffer when it is released.
const Scribble = 0xDD

// Response is what the stub linker reports for one call.
// Null makes the diagnostic pointer null regardless of Messages.
type Response struct {
	Messages string
	Success  bool
	Null     bool
}

// Responder decides the outcome of a call.
type Responder func(flavor lld.Flavor, args []string) Response

// Echo succeeds with the last argument as diagnostics. No arguments fail
// with a null diagnostic pointer; an empty last argument succeeds with one.
func Echo(_ lld.Flavor, args []string) Response {
	if len(args) == 0 {
		return Response{Null: true}
	}
	last := args[len(args)-1]
	return Response{Success: true, Messages: last, Null: last == ""}
}

// Fixed returns a responder with a constant outcome.
func Fixed(success bool, messages string) Responder {
	return func(lld.Flavor, []string) Response {
		return Response{Success: success, Messages: messages, Null: messages == ""}
	}
}

// Call is one recorded entry point invocation.
type Call struct {
	Args   []string
	Flavor lld.Flavor
}

// Stub is an instrumentable lld.Entry.
type Stub struct {
	respond  Responder
	calls    []Call
	records  []*stubRecord
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	produced int
	released int
	mu       sync.Mutex
	closed   bool
}

// NewStub creates a stub that answers with respond.
func NewStub(respond Responder) *Stub {
	return &Stub{respond: respond}
}

// SetDelay makes each call block for d, widening race windows in tests.
func (s *Stub) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Link implements lld.Entry.
func (s *Stub) Link(_ context.Context, flavor lld.Flavor, vec argv.Vector) (lld.Record, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.Closed("stub")
	}
	delay := s.delay
	s.mu.Unlock()

	args := vec.Strings()
	if delay > 0 {
		time.Sleep(delay)
	}
	resp := s.respond(flavor, args)

	rec := &stubRecord{stub: s, success: resp.Success}
	if !resp.Null {
		rec.buf = append([]byte(resp.Messages), 0)
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Flavor: flavor, Args: args})
	s.records = append(s.records, rec)
	s.produced++
	s.mu.Unlock()
	return rec, nil
}

// Close implements lld.Entry.
func (s *Stub) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Calls returns the recorded calls in order.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Produced returns how many records Link handed out.
func (s *Stub) Produced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.produced
}

// Released returns how many records were released.
func (s *Stub) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Outstanding returns produced minus released records.
func (s *Stub) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.produced - s.released
}

// MaxConcurrent returns the highest number of overlapping Link calls seen.
func (s *Stub) MaxConcurrent() int {
	return int(s.maxSeen.Load())
}

// Buffer returns the simulated foreign buffer of record i, terminator
// included. After release it holds Scribble bytes.
func (s *Stub) Buffer(i int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[i].buf
}

type stubRecord struct {
	stub     *Stub
	buf      []byte
	success  bool
	released bool
}

func (r *stubRecord) Success() bool {
	return r.success
}

func (r *stubRecord) Messages() ([]byte, error) {
	r.stub.mu.Lock()
	defer r.stub.mu.Unlock()
	if r.released {
		return nil, errors.New(errors.PhaseCopy, errors.KindReleased).
			Detail("messages read after release").
			Build()
	}
	if r.buf == nil {
		return nil, nil
	}
	return r.buf[:bytes.IndexByte(r.buf, 0)], nil
}

func (r *stubRecord) Release(context.Context) error {
	r.stub.mu.Lock()
	defer r.stub.mu.Unlock()
	if r.released {
		return errors.AlreadyReleased("lld_free")
	}
	r.released = true
	for i := range r.buf {
		r.buf[i] = Scribble
	}
	r.stub.released++
	return nil
}
