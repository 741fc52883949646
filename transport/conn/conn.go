// Package conn adapts any io.ReadWriteCloser — a net.Conn, an OS pipe,
// a muxed substream — to the laminar stream concept. Synchronous
// operations map directly onto Read and Write; asynchronous operations
// offload the blocking call to an I/O executor and deliver the
// completion on the stream's executor.
package conn

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

var log = logrus.WithField("prefix", "laminar/conn")

// Stream is a concrete (lowest-layer) transport over an
// io.ReadWriteCloser.
type Stream struct {
	rw io.ReadWriteCloser
	ex exec.Executor
	io exec.Executor
}

var _ laminar.Stream = (*Stream)(nil)

// Option configures a Stream.
type Option func(*Stream)

// WithIOExecutor sets the executor blocking reads and writes are
// offloaded to. It must be able to run them concurrently with the
// completion executor; a Loop cannot serve both roles. Defaults to a
// goroutine per in-flight operation.
func WithIOExecutor(ioEx exec.Executor) Option {
	return func(s *Stream) { s.io = ioEx }
}

// New adapts rw. Completions are dispatched on ex.
func New(rw io.ReadWriteCloser, ex exec.Executor, opts ...Option) *Stream {
	if rw == nil || ex == nil {
		panic("programming error: conn stream needs a connection and an executor")
	}
	s := &Stream{rw: rw, ex: ex, io: spawner{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// spawner runs each blocking operation on its own goroutine.
type spawner struct{}

func (spawner) Post(fn func())     { go fn() }
func (spawner) Dispatch(fn func()) { go fn() }

// Conn returns the adapted connection, for transport-specific
// operations reached through LowestLayer.
func (s *Stream) Conn() io.ReadWriteCloser { return s.rw }

// Executor returns the completion executor.
func (s *Stream) Executor() exec.Executor { return s.ex }

// ReadSome reads some bytes, blocking the calling goroutine.
func (s *Stream) ReadSome(p []byte) (int, error) {
	return s.rw.Read(p)
}

// WriteSome writes some bytes, blocking the calling goroutine.
func (s *Stream) WriteSome(p []byte) (int, error) {
	return s.rw.Write(p)
}

// AsyncReadSome offloads a blocking read and completes on the deferred
// path, so the handler never runs inside this call.
func (s *Stream) AsyncReadSome(p []byte, h async.Handler[int]) {
	op := async.NewBase[int](h, s.ex)
	s.io.Post(func() {
		n, err := s.rw.Read(p)
		op.Complete(err, n)
	})
}

// AsyncWriteSome offloads a blocking write; see AsyncReadSome.
func (s *Stream) AsyncWriteSome(p []byte, h async.Handler[int]) {
	op := async.NewBase[int](h, s.ex)
	s.io.Post(func() {
		n, err := s.rw.Write(p)
		op.Complete(err, n)
	})
}

// Close closes the adapted connection. Blocked reads and writes unblock
// with the connection's own error provided rw honors the net.Conn close
// contract.
func (s *Stream) Close() error {
	log.Debug("conn stream closed")
	return s.rw.Close()
}
