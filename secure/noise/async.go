package noise

import (
	"encoding/binary"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/pkg/errors"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
)

const (
	stageHeader = iota
	stageBody
)

// readOp is the composed asynchronous read: suspend for the frame
// header, suspend for the body, decrypt, forward. The pre-completion
// hook returns the frame buffer to the pool exactly once, whichever
// path completes the operation.
type readOp struct {
	*async.Base[int]
	s      *Stream
	p      []byte
	hdr    [2]byte
	frame  []byte
	retain bool
	stage  int
}

func (o *readOp) release() {
	if o.frame != nil && !o.retain {
		pool.Put(o.frame)
	}
}

// Complete is invoked by AsyncReadFull once per stage.
func (o *readOp) Complete(err error, n int) {
	if err != nil {
		o.CompleteNow(err, 0)
		return
	}

	switch o.stage {
	case stageHeader:
		if o.Abandoned() || o.Cancelled() == async.CancelTerminal {
			o.CompleteNow(async.ErrAborted, 0)
			return
		}
		ln := int(binary.BigEndian.Uint16(o.hdr[:]))
		if ln == 0 {
			o.CompleteNow(errors.New("noise: empty frame"), 0)
			return
		}
		o.frame = pool.Get(ln)
		o.stage = stageBody
		laminar.AsyncReadFull(o.s.next, o.frame, o)

	case stageBody:
		plain, derr := o.s.dec.Decrypt(o.frame[:0], nil, o.frame)
		if derr != nil {
			o.CompleteNow(errors.Wrap(derr, "noise decrypt"), 0)
			return
		}
		served := copy(o.p, plain)
		if served < len(plain) {
			o.s.rmu.Lock()
			o.s.retainLocked(o.frame, plain[served:])
			o.s.rmu.Unlock()
			o.retain = true
		}
		o.CompleteNow(nil, served)

	default:
		panic("programming error: noise read op in unknown stage")
	}
}

// AsyncReadSome is the asynchronous counterpart of ReadSome. At most
// one read operation may be in flight per stream.
func (s *Stream) AsyncReadSome(p []byte, h async.Handler[int]) {
	op := &readOp{s: s, p: p}
	op.Base = async.NewBase[int](h, s.Executor(), async.WithBeforeComplete(op.release))
	if len(p) == 0 {
		op.CompleteNow(nil, 0)
		return
	}

	s.rmu.Lock()
	if s.plain != nil {
		n := s.serveLocked(p)
		s.rmu.Unlock()
		op.CompleteNow(nil, n)
		return
	}
	s.rmu.Unlock()

	laminar.AsyncReadFull(s.next, op.hdr[:], op)
}

// writeOp forwards the frame-write result, reporting the plaintext
// bytes consumed rather than the ciphertext bytes moved.
type writeOp struct {
	*async.Base[int]
	buf []byte
	n   int
}

func (o *writeOp) release() {
	pool.Put(o.buf)
}

func (o *writeOp) Complete(err error, _ int) {
	if err != nil {
		o.CompleteNow(err, 0)
		return
	}
	o.CompleteNow(nil, o.n)
}

// AsyncWriteSome encrypts at most one frame's worth of p and sends it
// asynchronously. The frame is sealed at initiation, so frame order on
// the wire matches initiation order. At most one write operation may be
// in flight per stream.
func (s *Stream) AsyncWriteSome(p []byte, h async.Handler[int]) {
	if len(p) == 0 {
		base := async.NewBase[int](h, s.Executor())
		base.CompleteNow(nil, 0)
		return
	}
	n := len(p)
	if n > maxPlaintext {
		n = maxPlaintext
	}

	s.wmu.Lock()
	buf := pool.Get(2 + n + tagSize)
	ct, err := s.enc.Encrypt(buf[:2], nil, p[:n])
	s.wmu.Unlock()

	op := &writeOp{buf: buf, n: n}
	op.Base = async.NewBase[int](h, s.Executor(), async.WithBeforeComplete(op.release))
	if err != nil {
		op.CompleteNow(errors.Wrap(err, "noise encrypt"), 0)
		return
	}
	binary.BigEndian.PutUint16(ct, uint16(len(ct)-2))
	laminar.AsyncWriteFull(s.next, ct, op)
}
