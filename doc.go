// Package laminar is the transport-abstraction core of a protocol
// implementation library: protocol logic written against its stream
// concept runs unmodified over raw sockets, encrypted tunnels, muxed
// sessions, or in-memory test doubles.
//
// A stream type opts into any subset of four independent capabilities —
// synchronous reads and writes (Reader, Writer) and asynchronous reads
// and writes (AsyncReader, AsyncWriter) — which generic code classifies
// with Classify or the Is*Stream predicates. Wrapper streams hold
// exactly one next-layer stream and expose it through Layered;
// LowestLayer walks an arbitrarily deep stack down to the concrete
// transport when transport-specific operations are needed.
//
// Asynchronous operations follow the composed-operation pattern built
// on async.Base: the per-call operation object owns the caller's
// handler and a work guard on its executor, issues the suspending call
// on the next layer with itself as the continuation, post-processes the
// result, and forwards completion exactly once. The counted package is
// the reference wrapper; AsyncReadFull and AsyncWriteFull are the
// reference multi-suspension operations.
package laminar
