package async

import (
	"sync/atomic"

	"github.com/laminar-io/laminar/exec"
)

const (
	statePending int32 = iota
	stateCompleted
	stateAbandoned
)

// Base is the per-operation state shared by every composed operation:
// it owns the caller's handler, the handler's associated executor, and
// a work guard on that executor, and it guarantees the handler is
// dispatched at most once.
//
// A composed operation embeds *Base and is itself handler-compatible:
// its Complete method (shadowing the embedded one) receives the next
// layer's result, does its local bookkeeping, and forwards through
// Base.Complete or Base.CompleteNow.
type Base[T any] struct {
	h      Handler[T]
	ex     exec.Executor
	imm    exec.Executor
	guard  *exec.WorkGuard
	before func()
	cancel atomic.Int32
	state  atomic.Int32
}

// Option configures a Base at construction.
type Option func(*options)

type options struct {
	before func()
	cancel CancelKind
}

// WithBeforeComplete installs fn to run exactly once immediately before
// the handler is dispatched, whichever completion path is taken. Used
// for bookkeeping that must precede the caller's handler (releasing a
// lock, settling a counter) without duplicating it per call site.
func WithBeforeComplete(fn func()) Option {
	return func(o *options) { o.before = fn }
}

// WithCancelState overrides the initial cancellation state.
func WithCancelState(k CancelKind) Option {
	return func(o *options) { o.cancel = k }
}

// NewBase takes ownership of h and derives its associated executor,
// falling back to ioEx — the executor of the stream the operation was
// initiated on — when the handler does not carry one. A work guard on
// the derived executor is held until the operation completes or is
// abandoned.
func NewBase[T any](h Handler[T], ioEx exec.Executor, opts ...Option) *Base[T] {
	if h == nil {
		panic("programming error: nil completion handler")
	}
	if ioEx == nil {
		panic("programming error: nil I/O object executor")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ex := ioEx
	if c, ok := h.(exec.Carrier); ok {
		if hex := c.Executor(); hex != nil {
			ex = hex
		}
	}
	imm := ex
	if c, ok := h.(exec.ImmediateCarrier); ok {
		if iex := c.ImmediateExecutor(); iex != nil {
			imm = iex
		}
	}

	b := &Base[T]{
		h:      h,
		ex:     ex,
		imm:    imm,
		guard:  exec.NewWorkGuard(ex),
		before: o.before,
	}
	b.cancel.Store(int32(o.cancel))
	return b
}

// Executor returns the handler's associated executor.
func (b *Base[T]) Executor() exec.Executor {
	return b.ex
}

// ImmediateExecutor returns the executor used by CompleteNow. It equals
// Executor unless the handler carried a distinct immediate executor.
func (b *Base[T]) ImmediateExecutor() exec.Executor {
	return b.imm
}

// Complete dispatches the handler with the given result on its
// associated executor using the deferred path: the handler never runs
// before Complete returns. The work guard is released once the handler
// is queued. Completing twice is a programming error.
func (b *Base[T]) Complete(err error, v T) {
	b.finish(b.ex.Post, err, v)
}

// CompleteNow is Complete on the immediate path: when the calling
// goroutine is already on the immediate executor the handler runs
// inline, avoiding a queue round trip; otherwise it is posted exactly
// as Complete would.
func (b *Base[T]) CompleteNow(err error, v T) {
	b.finish(b.imm.Dispatch, err, v)
}

func (b *Base[T]) finish(run func(func()), err error, v T) {
	if !b.state.CompareAndSwap(statePending, stateCompleted) {
		if b.state.Load() == stateAbandoned {
			// A sub-operation of an abandoned chain delivering its
			// result: release resources, discard the result, never
			// touch the dropped handler.
			if b.before != nil {
				b.before()
				b.before = nil
			}
			return
		}
		panic("programming error: completion handler invoked twice")
	}
	h := b.h
	b.h = nil

	// The handler must be dispatched exactly once even if the
	// before-hook panics, and the guard must not outlive this call.
	defer func() {
		run(func() { h.Complete(err, v) })
		b.guard.Release()
	}()
	if b.before != nil {
		b.before()
	}
}

// Abandon destroys the operation without invoking the handler: the
// handler is dropped and the work guard released. Abandoning is not an
// error and is idempotent. A completion arriving afterwards — an
// in-flight sub-operation unwinding — is dropped silently, running the
// before-hook so pooled resources are still released.
func (b *Base[T]) Abandon() {
	if !b.state.CompareAndSwap(statePending, stateAbandoned) {
		return
	}
	b.h = nil
	b.guard.Release()
}

// Abandoned reports whether the operation was abandoned. Composed
// operations check it before re-issuing into the next layer.
func (b *Base[T]) Abandoned() bool {
	return b.state.Load() == stateAbandoned
}

// Cancel escalates the operation's cancellation state. Signals only
// escalate; delivering a weaker kind after a stronger one is a no-op.
func (b *Base[T]) Cancel(k CancelKind) {
	for {
		cur := b.cancel.Load()
		if int32(k) <= cur {
			return
		}
		if b.cancel.CompareAndSwap(cur, int32(k)) {
			return
		}
	}
}

// Cancelled returns the currently observed cancellation state.
func (b *Base[T]) Cancelled() CancelKind {
	return CancelKind(b.cancel.Load())
}
