// Package mem provides an in-memory full-duplex stream pair: the
// concrete transport used by tests and examples. Both endpoints offer
// all four stream capabilities, deliver asynchronous completions on the
// executor supplied at construction, and support scripted read failures
// for exercising error propagation through wrapper layers.
package mem

import (
	"io"
	"sync"

	"github.com/google/uuid"
	pool "github.com/libp2p/go-buffer-pool"
	"github.com/sirupsen/logrus"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

var log = logrus.WithField("prefix", "laminar/mem")

// pendingRead is the single outstanding asynchronous read allowed per
// endpoint, parked until data, failure, or close delivers it.
type pendingRead struct {
	p  []byte
	op *async.Base[int]
}

// Stream is one endpoint of an in-memory pipe. Reads consume data
// written by the peer endpoint; writes feed the peer's read buffer and
// never block.
type Stream struct {
	id   string
	ex   exec.Executor
	peer *Stream

	mu      sync.Mutex
	avail   *sync.Cond
	buf     []byte // pool-owned inbound data
	off     int    // read offset into buf
	closed  bool   // Close called on this endpoint
	eof     bool   // peer endpoint closed; drain then io.EOF
	failErr error  // armed: next read reports this after draining
	pending *pendingRead
}

var _ laminar.Stream = (*Stream)(nil)

// Pipe creates a connected pair of endpoints whose asynchronous
// completions are dispatched on ex.
func Pipe(ex exec.Executor) (*Stream, *Stream) {
	if ex == nil {
		panic("programming error: mem pipe with nil executor")
	}
	a := newStream(ex)
	b := newStream(ex)
	a.peer, b.peer = b, a
	log.Debugf("pipe created: %s <-> %s", a.id, b.id)
	return a, b
}

func newStream(ex exec.Executor) *Stream {
	s := &Stream{
		id: uuid.NewString()[:8],
		ex: ex,
	}
	s.avail = sync.NewCond(&s.mu)
	return s
}

// ID returns the endpoint's identifier, used in logs.
func (s *Stream) ID() string { return s.id }

// Executor returns the executor completions are dispatched on.
func (s *Stream) Executor() exec.Executor { return s.ex }

// FailRead arms a one-shot read failure: the next read on this endpoint
// reports err together with whatever bytes are buffered at that point,
// so wrappers can be tested against partial transfers ending in error.
func (s *Stream) FailRead(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
	s.avail.Broadcast()
	s.deliverPending()
}

// consume copies buffered bytes into p under s.mu and releases the
// backing buffer once drained.
func (s *Stream) consume(p []byte) int {
	n := copy(p, s.buf[s.off:])
	s.off += n
	if s.off == len(s.buf) {
		if s.buf != nil {
			pool.Put(s.buf)
		}
		s.buf, s.off = nil, 0
	}
	return n
}

// ReadSome blocks until data, a scripted failure, or close.
func (s *Stream) ReadSome(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if n, ready, err := s.readLocked(p); ready {
			return n, err
		}
		s.avail.Wait()
	}
}

// readLocked attempts one read under s.mu, reporting whether a
// result is ready. Ordering: scripted failure beats data beats close.
func (s *Stream) readLocked(p []byte) (n int, ready bool, err error) {
	if s.failErr != nil {
		n = s.consume(p)
		err = s.failErr
		s.failErr = nil
		return n, true, err
	}
	if s.off < len(s.buf) {
		return s.consume(p), true, nil
	}
	if s.closed {
		return 0, true, laminar.ErrClosed
	}
	if s.eof {
		return 0, true, io.EOF
	}
	return 0, false, nil
}

// AsyncReadSome parks at most one read per endpoint; a second
// outstanding read is a programming error.
func (s *Stream) AsyncReadSome(p []byte, h async.Handler[int]) {
	op := async.NewBase[int](h, s.ex)
	if len(p) == 0 {
		op.Complete(nil, 0)
		return
	}
	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		panic("programming error: overlapping async reads on mem stream")
	}
	if n, ready, err := s.readLocked(p); ready {
		s.mu.Unlock()
		op.Complete(err, n)
		return
	}
	s.pending = &pendingRead{p: p, op: op}
	s.mu.Unlock()
}

// deliverPending completes the parked read if one is ready.
func (s *Stream) deliverPending() {
	s.mu.Lock()
	pend := s.pending
	if pend == nil {
		s.mu.Unlock()
		return
	}
	n, ready, err := s.readLocked(pend.p)
	if !ready {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()
	pend.op.Complete(err, n)
}

// WriteSome appends p to the peer's read buffer. In-memory writes never
// block and always transfer the full buffer.
func (s *Stream) WriteSome(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, laminar.ErrClosed
	}

	peer := s.peer
	peer.mu.Lock()
	if peer.closed || peer.eof {
		peer.mu.Unlock()
		return 0, laminar.ErrClosed
	}
	if len(p) > 0 {
		peer.appendLocked(p)
	}
	peer.mu.Unlock()
	peer.avail.Broadcast()
	peer.deliverPending()
	return len(p), nil
}

// AsyncWriteSome completes on the deferred path; mem writes cannot
// suspend, but the handler still must not run before the call returns.
func (s *Stream) AsyncWriteSome(p []byte, h async.Handler[int]) {
	op := async.NewBase[int](h, s.ex)
	n, err := s.WriteSome(p)
	op.Complete(err, n)
}

// appendLocked grows the pool-backed inbound buffer as needed.
func (s *Stream) appendLocked(p []byte) {
	have := len(s.buf) - s.off
	if cap(s.buf)-len(s.buf) < len(p) {
		grown := pool.Get(have + len(p))[:0]
		grown = append(grown, s.buf[s.off:]...)
		if s.buf != nil {
			pool.Put(s.buf)
		}
		s.buf, s.off = grown, 0
	}
	s.buf = append(s.buf, p...)
}

// Close shuts down this endpoint: its own pending and future reads fail
// with ErrClosed, writes on either end fail with ErrClosed, and the
// peer reads io.EOF once it drains what was already written.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.avail.Broadcast()
	s.deliverPending()

	peer := s.peer
	peer.mu.Lock()
	already := peer.eof
	peer.eof = true
	peer.mu.Unlock()
	if !already {
		peer.avail.Broadcast()
		peer.deliverPending()
	}
	log.Debugf("endpoint %s closed", s.id)
	return nil
}
