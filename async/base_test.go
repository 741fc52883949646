package async_test

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

func TestCompleteDispatchesExactlyOnce(t *testing.T) {
	loop := exec.NewLoop()

	calls := 0
	base := async.NewBase[int](async.Func[int](func(err error, n int) {
		require.NoError(t, err)
		require.Equal(t, 7, n)
		calls++
	}), loop)

	base.Complete(nil, 7)
	require.Zero(t, calls, "deferred completion must not run before the loop does")

	loop.Run()
	require.Equal(t, 1, calls)
}

func TestCompleteTwicePanics(t *testing.T) {
	loop := exec.NewLoop()
	base := async.NewBase[int](async.Func[int](func(error, int) {}), loop)

	base.Complete(nil, 0)
	require.Panics(t, func() { base.Complete(nil, 0) })
}

func TestAbandonDropsHandlerAndReleasesGuard(t *testing.T) {
	loop := exec.NewLoop()

	called := false
	base := async.NewBase[int](async.Func[int](func(error, int) { called = true }), loop)

	base.Abandon()
	base.Abandon() // idempotent

	// The guard must be gone: an idle loop returns immediately instead
	// of waiting on outstanding work.
	require.Zero(t, loop.Run())
	require.False(t, called)
}

// A completion racing in after abandonment is dropped without touching
// the handler; the before-hook still runs so pooled resources are
// released by whichever sub-operation unwinds last.
func TestCompleteAfterAbandonDropsSilently(t *testing.T) {
	loop := exec.NewLoop()

	called := false
	released := 0
	base := async.NewBase[int](
		async.Func[int](func(error, int) { called = true }),
		loop,
		async.WithBeforeComplete(func() { released++ }),
	)

	base.Abandon()
	require.True(t, base.Abandoned())
	require.NotPanics(t, func() { base.CompleteNow(io.EOF, 3) })
	require.NotPanics(t, func() { base.Complete(nil, 0) })

	require.Zero(t, loop.Run())
	require.False(t, called)
	require.Equal(t, 1, released)
}

func TestBeforeCompleteHookRunsOnceBeforeHandler(t *testing.T) {
	loop := exec.NewLoop()

	var order []string
	base := async.NewBase[int](
		async.Func[int](func(error, int) { order = append(order, "handler") }),
		loop,
		async.WithBeforeComplete(func() { order = append(order, "hook") }),
	)

	base.Complete(nil, 0)
	loop.Run()
	require.Equal(t, []string{"hook", "handler"}, order)
}

func TestBeforeCompleteHookPanicStillCompletesHandler(t *testing.T) {
	loop := exec.NewLoop()

	called := false
	base := async.NewBase[int](
		async.Func[int](func(error, int) { called = true }),
		loop,
		async.WithBeforeComplete(func() { panic("hook failure") }),
	)

	require.Panics(t, func() { base.Complete(nil, 0) })
	loop.Run()
	require.True(t, called)
}

func TestBoundHandlerExecutorWins(t *testing.T) {
	ioLoop := exec.NewLoop()
	handlerLoop := exec.NewLoop()

	calls := 0
	h := async.Bind[int](handlerLoop, async.Func[int](func(error, int) { calls++ }))
	base := async.NewBase[int](h, ioLoop)
	require.Same(t, handlerLoop, base.Executor())

	base.Complete(nil, 0)
	require.Zero(t, ioLoop.Run(), "handler must not be dispatched on the I/O executor")
	require.Equal(t, 1, handlerLoop.Run())
	require.Equal(t, 1, calls)
}

func TestBindImmediatePreservesNormalExecutor(t *testing.T) {
	ioLoop := exec.NewLoop()
	immLoop := exec.NewLoop()

	h := async.BindImmediate[int](immLoop, async.Func[int](func(error, int) {}))
	base := async.NewBase[int](h, ioLoop)

	require.Same(t, ioLoop, base.Executor())
	require.Same(t, immLoop, base.ImmediateExecutor())
	base.Abandon()
}

func TestCompleteNowInlineOnImmediateExecutor(t *testing.T) {
	loop := exec.NewLoop()

	var order []string
	loop.Post(func() {
		order = append(order, "op-start")
		base := async.NewBase[int](async.Func[int](func(error, int) {
			order = append(order, "handler")
		}), loop)
		base.CompleteNow(nil, 0)
		order = append(order, "op-end")
	})

	loop.Run()
	require.Equal(t, []string{"op-start", "handler", "op-end"}, order)
}

func TestCancelOnlyEscalates(t *testing.T) {
	loop := exec.NewLoop()
	base := async.NewBase[int](async.Func[int](func(error, int) {}), loop)
	defer base.Abandon()

	require.Equal(t, async.CancelNone, base.Cancelled())
	base.Cancel(async.CancelPartial)
	require.Equal(t, async.CancelPartial, base.Cancelled())
	base.Cancel(async.CancelNone)
	require.Equal(t, async.CancelPartial, base.Cancelled())
	base.Cancel(async.CancelTerminal)
	base.Cancel(async.CancelPartial)
	require.Equal(t, async.CancelTerminal, base.Cancelled())
}

func TestNewBaseRejectsNilArguments(t *testing.T) {
	loop := exec.NewLoop()
	require.Panics(t, func() { async.NewBase[int](nil, loop) })
	require.Panics(t, func() {
		async.NewBase[int](async.Func[int](func(error, int) {}), nil)
	})
}

func TestErrAbortedIsDistinct(t *testing.T) {
	wrapped := errors.Wrap(async.ErrAborted, "op failed")
	require.ErrorIs(t, wrapped, async.ErrAborted)
}
