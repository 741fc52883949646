package laminar

import (
	"errors"

	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

// ErrClosed is returned by stream operations on a closed stream or a
// stream whose peer has gone away mid-write. Reads that drain cleanly
// after a peer close report io.EOF instead.
var ErrClosed = errors.New("stream closed")

// Reader is the synchronous read capability: read some available bytes
// into p, blocking until at least one byte is available, and return the
// number of bytes transferred. Transport failures are reported through
// the error return alongside any partial count.
type Reader interface {
	ReadSome(p []byte) (n int, err error)
}

// Writer is the synchronous write capability, symmetric to Reader.
type Writer interface {
	WriteSome(p []byte) (n int, err error)
}

// AsyncReader is the asynchronous read capability. AsyncReadSome
// returns immediately; h is eventually invoked exactly once with the
// error indicator and the number of bytes transferred into p. The
// buffer must remain valid until then.
type AsyncReader interface {
	AsyncReadSome(p []byte, h async.Handler[int])
}

// AsyncWriter is the asynchronous write capability, symmetric to
// AsyncReader.
type AsyncWriter interface {
	AsyncWriteSome(p []byte, h async.Handler[int])
}

// Stream is a full-duplex stream offering all four capabilities plus an
// associated executor. Wrappers that must forward both worlds (counted,
// secure layers) compose over this; leaf transports and thin adapters
// may implement any subset and be classified with Classify.
type Stream interface {
	Reader
	Writer
	AsyncReader
	AsyncWriter
	exec.Carrier
}
