package laminar

import (
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

// ioExecutor resolves the executor of the implied I/O object for a
// composed operation: the stream's own executor when it carries one,
// else the handler's. Operations cannot run without one.
func ioExecutor(s, h any) exec.Executor {
	if c, ok := s.(exec.Carrier); ok {
		if ex := c.Executor(); ex != nil {
			return ex
		}
	}
	if c, ok := h.(exec.Carrier); ok {
		if ex := c.Executor(); ex != nil {
			return ex
		}
	}
	panic("programming error: no executor associated with stream or handler")
}

// ReadFull reads exactly len(p) bytes from s by repeated ReadSome
// calls. It returns the bytes transferred so far alongside the first
// error encountered.
func ReadFull(s Reader, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := s.ReadSome(p[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFull writes all of p to s by repeated WriteSome calls.
func WriteFull(s Writer, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := s.WriteSome(p[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readFullOp is the composed operation behind AsyncReadFull: it
// suspends into the next layer once per ReadSome round and re-issues
// until the buffer is full, an error surfaces, or a terminal
// cancellation is observed.
type readFullOp struct {
	*async.Base[int]
	s AsyncReader
	p []byte
	n int
}

// Complete is the continuation invoked by the next layer after each
// round. Bookkeeping happens before the forwarded completion.
func (o *readFullOp) Complete(err error, n int) {
	o.n += n
	if err == nil && o.n < len(o.p) && !o.Abandoned() {
		if o.Cancelled() == async.CancelTerminal {
			err = async.ErrAborted
		} else {
			o.s.AsyncReadSome(o.p[o.n:], o)
			return
		}
	}
	o.CompleteNow(err, o.n)
}

// AsyncReadFull reads exactly len(p) bytes from s via repeated
// AsyncReadSome calls, eventually invoking h once with the total
// transferred and the first error encountered. The returned operation
// handle allows cancellation while in flight.
func AsyncReadFull(s AsyncReader, p []byte, h async.Handler[int]) *async.Base[int] {
	op := &readFullOp{
		Base: async.NewBase[int](h, ioExecutor(s, h)),
		s:    s,
		p:    p,
	}
	if len(p) == 0 {
		op.CompleteNow(nil, 0)
		return op.Base
	}
	s.AsyncReadSome(p, op)
	return op.Base
}

type writeFullOp struct {
	*async.Base[int]
	s AsyncWriter
	p []byte
	n int
}

func (o *writeFullOp) Complete(err error, n int) {
	o.n += n
	if err == nil && o.n < len(o.p) && !o.Abandoned() {
		if o.Cancelled() == async.CancelTerminal {
			err = async.ErrAborted
		} else {
			o.s.AsyncWriteSome(o.p[o.n:], o)
			return
		}
	}
	o.CompleteNow(err, o.n)
}

// AsyncWriteFull writes all of p to s via repeated AsyncWriteSome
// calls; see AsyncReadFull for the completion contract.
func AsyncWriteFull(s AsyncWriter, p []byte, h async.Handler[int]) *async.Base[int] {
	op := &writeFullOp{
		Base: async.NewBase[int](h, ioExecutor(s, h)),
		s:    s,
		p:    p,
	}
	if len(p) == 0 {
		op.CompleteNow(nil, 0)
		return op.Base
	}
	s.AsyncWriteSome(p, op)
	return op.Base
}
