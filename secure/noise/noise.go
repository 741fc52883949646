// Package noise layers an encrypted tunnel over any laminar stream
// using the Noise XX handshake (25519/ChaChaPoly/SHA256). Transport
// messages are length-framed ciphertexts, so a read from this layer is
// a genuinely multi-step composed operation: header, then body, then
// decrypt, with a cancellation check between suspension points.
package noise

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"github.com/flynn/noise"
	pool "github.com/libp2p/go-buffer-pool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/exec"
)

var log = logrus.WithField("prefix", "laminar/noise")

const (
	// tagSize is the ChaChaPoly AEAD overhead per frame.
	tagSize = 16
	// maxFrame is the largest ciphertext a 2-byte length can carry.
	maxFrame = 65535
	// maxPlaintext is the largest plaintext one frame can carry.
	maxPlaintext = maxFrame - tagSize
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// Config holds the handshake parameters of one endpoint.
type Config struct {
	// StaticKeypair identifies this endpoint. Generated when zero.
	StaticKeypair noise.DHKey
	// Prologue must match on both endpoints when set.
	Prologue []byte
}

// Stream is the encrypted wrapper layer. At most one read and one write
// operation may be outstanding at a time, matching the stream concept's
// contract for composed operations.
type Stream struct {
	next   laminar.Stream
	remote []byte

	wmu sync.Mutex
	enc *noise.CipherState

	rmu   sync.Mutex
	dec   *noise.CipherState
	plain []byte // pool-owned decrypted leftover
	poff  int
}

var _ laminar.Stream = (*Stream)(nil)
var _ laminar.Layered = (*Stream)(nil)

// Client performs the initiator side of the handshake over next,
// blocking until the tunnel is established.
func Client(next laminar.Stream, cfg Config) (*Stream, error) {
	return handshake(next, cfg, true)
}

// Server performs the responder side of the handshake over next.
func Server(next laminar.Stream, cfg Config) (*Stream, error) {
	return handshake(next, cfg, false)
}

func handshake(next laminar.Stream, cfg Config, initiator bool) (*Stream, error) {
	if next == nil {
		panic("programming error: noise stream over nil next layer")
	}
	key := cfg.StaticKeypair
	if len(key.Private) == 0 {
		var err error
		key, err = noise.DH25519.GenerateKeypair(rand.Reader)
		if err != nil {
			return nil, errors.Wrap(err, "noise keygen")
		}
	}

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: key,
		Prologue:      cfg.Prologue,
	})
	if err != nil {
		return nil, errors.Wrap(err, "noise handshake init")
	}

	s := &Stream{next: next}
	if initiator {
		err = s.runHandshake(hs, []hsStep{hsWrite, hsRead, hsWrite})
	} else {
		err = s.runHandshake(hs, []hsStep{hsRead, hsWrite, hsRead})
	}
	if err != nil {
		return nil, err
	}
	s.remote = hs.PeerStatic()
	log.Debugf("handshake complete, initiator=%v", initiator)
	return s, nil
}

type hsStep int

const (
	hsWrite hsStep = iota
	hsRead
)

// runHandshake drives the message pattern synchronously over the next
// layer. The cipher-state pair is produced by the final message; the
// first state always encrypts initiator-to-responder traffic.
func (s *Stream) runHandshake(hs *noise.HandshakeState, steps []hsStep) error {
	initiator := steps[0] == hsWrite
	for _, step := range steps {
		var cs1, cs2 *noise.CipherState
		var err error
		switch step {
		case hsWrite:
			var msg []byte
			msg, cs1, cs2, err = hs.WriteMessage(nil, nil)
			if err != nil {
				return errors.Wrap(err, "noise handshake write")
			}
			if err := s.writeFrame(msg); err != nil {
				return errors.Wrap(err, "noise handshake send")
			}
		case hsRead:
			msg, err := s.readFrame()
			if err != nil {
				return errors.Wrap(err, "noise handshake recv")
			}
			_, cs1, cs2, err = hs.ReadMessage(nil, msg)
			pool.Put(msg)
			if err != nil {
				return errors.Wrap(err, "noise handshake read")
			}
		}
		if cs1 != nil {
			if initiator {
				s.enc, s.dec = cs1, cs2
			} else {
				s.enc, s.dec = cs2, cs1
			}
		}
	}
	return nil
}

// writeFrame sends one length-prefixed message on the next layer.
func (s *Stream) writeFrame(msg []byte) error {
	if len(msg) > maxFrame {
		panic("programming error: noise frame exceeds length prefix")
	}
	buf := pool.Get(2 + len(msg))
	binary.BigEndian.PutUint16(buf, uint16(len(msg)))
	copy(buf[2:], msg)
	_, err := laminar.WriteFull(s.next, buf)
	pool.Put(buf)
	return err
}

// readFrame reads one length-prefixed message from the next layer into
// a pool buffer owned by the caller.
func (s *Stream) readFrame() ([]byte, error) {
	var hdr [2]byte
	if _, err := laminar.ReadFull(s.next, hdr[:]); err != nil {
		return nil, err
	}
	ln := int(binary.BigEndian.Uint16(hdr[:]))
	if ln == 0 {
		return nil, errors.New("noise: empty frame")
	}
	frame := pool.Get(ln)
	if _, err := laminar.ReadFull(s.next, frame); err != nil {
		pool.Put(frame)
		return nil, err
	}
	return frame, nil
}

// NextLayer returns the stream the tunnel runs over.
func (s *Stream) NextLayer() any { return s.next }

// Executor returns the next layer's executor.
func (s *Stream) Executor() exec.Executor { return s.next.Executor() }

// RemoteStatic returns the peer's static public key, for callers that
// authenticate it.
func (s *Stream) RemoteStatic() []byte { return s.remote }

// serveLocked copies decrypted leftover into p under rmu.
func (s *Stream) serveLocked(p []byte) int {
	n := copy(p, s.plain[s.poff:])
	s.poff += n
	if s.poff == len(s.plain) {
		pool.Put(s.plain)
		s.plain, s.poff = nil, 0
	}
	return n
}

// retainLocked stashes undelivered plaintext for the next read. frame
// is pool-owned and keeps living as the leftover buffer.
func (s *Stream) retainLocked(frame, rest []byte) {
	s.plain = frame[:len(rest)]
	if &frame[0] != &rest[0] {
		copy(s.plain, rest)
	}
	s.poff = 0
}

// ReadSome decrypts and returns some plaintext, reading exactly one
// frame from the next layer when no leftover is buffered. Next-layer
// errors are forwarded unchanged; decrypt failures are this layer's
// own.
func (s *Stream) ReadSome(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.rmu.Lock()
	defer s.rmu.Unlock()
	if s.plain != nil {
		return s.serveLocked(p), nil
	}

	frame, err := s.readFrame()
	if err != nil {
		return 0, err
	}
	plain, err := s.dec.Decrypt(frame[:0], nil, frame)
	if err != nil {
		pool.Put(frame)
		return 0, errors.Wrap(err, "noise decrypt")
	}
	n := copy(p, plain)
	if n < len(plain) {
		s.retainLocked(frame, plain[n:])
		return n, nil
	}
	pool.Put(frame)
	return n, nil
}

// WriteSome encrypts and sends at most one frame's worth of p,
// returning the number of plaintext bytes consumed.
func (s *Stream) WriteSome(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := len(p)
	if n > maxPlaintext {
		n = maxPlaintext
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	buf := pool.Get(2 + n + tagSize)
	ct, err := s.enc.Encrypt(buf[:2], nil, p[:n])
	if err != nil {
		pool.Put(buf)
		return 0, errors.Wrap(err, "noise encrypt")
	}
	binary.BigEndian.PutUint16(ct, uint16(len(ct)-2))
	if _, err := laminar.WriteFull(s.next, ct); err != nil {
		pool.Put(buf)
		return 0, err
	}
	pool.Put(buf)
	return n, nil
}

// Close closes the next layer when it supports closing.
func (s *Stream) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
