// Package counted provides a layered stream that counts the bytes read
// and written on its next layer. It is the reference shape for building
// wrapper streams on async.Base: structural boilerplate aside, a
// rate limiter, tracer, or fault injector is built the same way.
package counted

import (
	"sync/atomic"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

// Stream counts bytes transferred through its next layer. Counters are
// unsigned, start at zero, and only ever grow; partial transfers on
// errored operations still count, because the transferred amount is
// known. Counter updates are atomic, so the wrapper stays correct when
// its executor delivers completions concurrently.
type Stream struct {
	next         laminar.Stream
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

var _ laminar.Stream = (*Stream)(nil)
var _ laminar.Layered = (*Stream)(nil)

// New wraps next in a counting layer.
func New(next laminar.Stream) *Stream {
	if next == nil {
		panic("programming error: counted stream over nil next layer")
	}
	return &Stream{next: next}
}

// NextLayer returns the wrapped stream.
func (s *Stream) NextLayer() any {
	return s.next
}

// Executor returns the next layer's executor: completion handlers of
// operations on this wrapper run wherever the transport runs them.
func (s *Stream) Executor() exec.Executor {
	return s.next.Executor()
}

// BytesRead returns the total bytes read since construction.
func (s *Stream) BytesRead() uint64 {
	return s.bytesRead.Load()
}

// BytesWritten returns the total bytes written since construction.
func (s *Stream) BytesWritten() uint64 {
	return s.bytesWritten.Load()
}

// ReadSome reads from the next layer and counts the transfer.
func (s *Stream) ReadSome(p []byte) (int, error) {
	n, err := s.next.ReadSome(p)
	s.bytesRead.Add(uint64(n))
	return n, err
}

// WriteSome writes to the next layer and counts the transfer.
func (s *Stream) WriteSome(p []byte) (int, error) {
	n, err := s.next.WriteSome(p)
	s.bytesWritten.Add(uint64(n))
	return n, err
}

// readOp is the per-call composed operation for AsyncReadSome. It is
// handler-compatible: the next layer invokes Complete with its result.
type readOp struct {
	*async.Base[int]
	s *Stream
}

func (o *readOp) Complete(err error, n int) {
	// Count before forwarding, error or not.
	o.s.bytesRead.Add(uint64(n))
	o.CompleteNow(err, n)
}

// AsyncReadSome reads from the next layer asynchronously, counting the
// transfer before the caller's handler is invoked.
func (s *Stream) AsyncReadSome(p []byte, h async.Handler[int]) {
	op := &readOp{
		Base: async.NewBase[int](h, s.Executor()),
		s:    s,
	}
	s.next.AsyncReadSome(p, op)
}

type writeOp struct {
	*async.Base[int]
	s *Stream
}

func (o *writeOp) Complete(err error, n int) {
	o.s.bytesWritten.Add(uint64(n))
	o.CompleteNow(err, n)
}

// AsyncWriteSome writes to the next layer asynchronously, counting the
// transfer before the caller's handler is invoked.
func (s *Stream) AsyncWriteSome(p []byte, h async.Handler[int]) {
	op := &writeOp{
		Base: async.NewBase[int](h, s.Executor()),
		s:    s,
	}
	s.next.AsyncWriteSome(p, op)
}
