package async

import "github.com/laminar-io/laminar/exec"

// Handler is the completion callback of one asynchronous operation. The
// result is an error indicator plus an operation-specific value; stream
// operations use Handler[int] with the byte count. A handler is invoked
// at most once over its lifetime.
type Handler[T any] interface {
	Complete(err error, v T)
}

// Func adapts a plain function to a Handler.
type Func[T any] func(err error, v T)

func (f Func[T]) Complete(err error, v T) { f(err, v) }

// Bind associates ex with h as its executor. A Base built from the
// returned handler dispatches completions on ex instead of the
// initiating stream's executor.
func Bind[T any](ex exec.Executor, h Handler[T]) Handler[T] {
	if ex == nil || h == nil {
		panic("programming error: Bind with nil executor or handler")
	}
	return &bound[T]{h: h, ex: ex}
}

// BindImmediate associates ex with h as its immediate executor, used by
// CompleteNow when an operation finishes synchronously. The normal
// executor association of h is preserved.
func BindImmediate[T any](ex exec.Executor, h Handler[T]) Handler[T] {
	if ex == nil || h == nil {
		panic("programming error: BindImmediate with nil executor or handler")
	}
	return &boundImmediate[T]{h: h, ex: ex}
}

type bound[T any] struct {
	h  Handler[T]
	ex exec.Executor
}

func (b *bound[T]) Complete(err error, v T) { b.h.Complete(err, v) }
func (b *bound[T]) Executor() exec.Executor { return b.ex }

func (b *bound[T]) ImmediateExecutor() exec.Executor {
	if c, ok := b.h.(exec.ImmediateCarrier); ok {
		return c.ImmediateExecutor()
	}
	return b.ex
}

type boundImmediate[T any] struct {
	h  Handler[T]
	ex exec.Executor
}

func (b *boundImmediate[T]) Complete(err error, v T)          { b.h.Complete(err, v) }
func (b *boundImmediate[T]) ImmediateExecutor() exec.Executor { return b.ex }

func (b *boundImmediate[T]) Executor() exec.Executor {
	if c, ok := b.h.(exec.Carrier); ok {
		return c.Executor()
	}
	return nil
}
