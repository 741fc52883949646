// Package yamux layers stream multiplexing over any synchronous-capable
// laminar stream using hashicorp/yamux. Each muxed substream is itself
// a laminar stream whose next layer is the session's carrier, so lowest
// layer resolution drills from a substream through the carrier stack
// down to the concrete transport.
package yamux

import (
	"io"

	"github.com/hashicorp/yamux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/exec"
	"github.com/laminar-io/laminar/transport/conn"
)

var log = logrus.WithField("prefix", "laminar/yamux")

// Session multiplexes substreams over a carrier stream.
type Session struct {
	sess    *yamux.Session
	carrier laminar.Stream
	ex      exec.Executor
}

// Client starts the client side of a session over carrier, dispatching
// substream completions on ex. The carrier must expose synchronous
// reads and writes; yamux drives it from its own goroutines.
func Client(carrier laminar.Stream, ex exec.Executor) (*Session, error) {
	return newSession(carrier, ex, true)
}

// Server starts the server side of a session over carrier.
func Server(carrier laminar.Stream, ex exec.Executor) (*Session, error) {
	return newSession(carrier, ex, false)
}

func newSession(carrier laminar.Stream, ex exec.Executor, client bool) (*Session, error) {
	if carrier == nil {
		panic("programming error: yamux session over nil carrier")
	}
	if ex == nil {
		panic("programming error: yamux session with nil executor")
	}

	cfg := yamux.DefaultConfig()
	cfg.LogOutput = log.WriterLevel(logrus.DebugLevel)

	var sess *yamux.Session
	var err error
	if client {
		sess, err = yamux.Client(&carrierRW{s: carrier}, cfg)
	} else {
		sess, err = yamux.Server(&carrierRW{s: carrier}, cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "yamux session")
	}
	return &Session{sess: sess, carrier: carrier, ex: ex}, nil
}

// Open opens a new substream towards the peer.
func (s *Session) Open() (*Stream, error) {
	ys, err := s.sess.OpenStream()
	if err != nil {
		return nil, errors.Wrap(err, "yamux open")
	}
	log.Debugf("substream %d opened", ys.StreamID())
	return s.wrap(ys), nil
}

// Accept waits for a substream opened by the peer.
func (s *Session) Accept() (*Stream, error) {
	ys, err := s.sess.AcceptStream()
	if err != nil {
		return nil, errors.Wrap(err, "yamux accept")
	}
	log.Debugf("substream %d accepted", ys.StreamID())
	return s.wrap(ys), nil
}

func (s *Session) wrap(ys *yamux.Stream) *Stream {
	return &Stream{Stream: conn.New(ys, s.ex), sess: s}
}

// Close tears down the session and all substreams.
func (s *Session) Close() error {
	return s.sess.Close()
}

// IsClosed reports whether the session has been torn down.
func (s *Session) IsClosed() bool {
	return s.sess.IsClosed()
}

// Stream is one muxed substream. It inherits the conn adapter's four
// capabilities and layers over the session carrier.
type Stream struct {
	*conn.Stream
	sess *Session
}

var _ laminar.Stream = (*Stream)(nil)
var _ laminar.Layered = (*Stream)(nil)

// NextLayer returns the session's carrier stream.
func (st *Stream) NextLayer() any {
	return st.sess.carrier
}

// carrierRW adapts a laminar stream to the io.ReadWriteCloser yamux
// expects. yamux requires full writes, so Write loops via WriteFull.
type carrierRW struct {
	s laminar.Stream
}

func (c *carrierRW) Read(p []byte) (int, error) {
	return c.s.ReadSome(p)
}

func (c *carrierRW) Write(p []byte) (int, error) {
	return laminar.WriteFull(c.s, p)
}

func (c *carrierRW) Close() error {
	if cl, ok := c.s.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
