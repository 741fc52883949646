package exec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopRunsPostedTasksInOrder(t *testing.T) {
	loop := NewLoop()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		loop.Post(func() { order = append(order, i) })
	}

	require.Equal(t, 3, loop.Run())
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestLoopRunReturnsWhenIdle(t *testing.T) {
	loop := NewLoop()
	require.Zero(t, loop.Run())
}

func TestLoopWorkGuardKeepsRunAlive(t *testing.T) {
	loop := NewLoop()
	guard := NewWorkGuard(loop)

	ran := false
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Post(func() { ran = true })
		guard.Release()
	}()

	loop.Run()
	wg.Wait()
	require.True(t, ran)
}

func TestWorkGuardReleaseIdempotent(t *testing.T) {
	loop := NewLoop()
	guard := NewWorkGuard(loop)

	guard.Release()
	guard.Release()
	require.True(t, guard.Released())

	// A double release would underflow the work count and Run would
	// have parked forever; an idle loop must return immediately.
	require.Zero(t, loop.Run())
}

func TestLoopDispatchInlineFromLoopGoroutine(t *testing.T) {
	loop := NewLoop()

	var order []string
	loop.Post(func() {
		order = append(order, "task-start")
		loop.Dispatch(func() { order = append(order, "inline") })
		loop.Post(func() { order = append(order, "deferred") })
		order = append(order, "task-end")
	})

	loop.Run()
	require.Equal(t, []string{"task-start", "inline", "task-end", "deferred"}, order)
}

func TestLoopDispatchFromForeignGoroutinePosts(t *testing.T) {
	loop := NewLoop()

	ran := false
	loop.Dispatch(func() { ran = true })
	require.False(t, ran, "dispatch off the loop goroutine must not run inline")

	loop.Run()
	require.True(t, ran)
}

func TestLoopStopAndRestart(t *testing.T) {
	loop := NewLoop()
	loop.Stop()

	loop.Post(func() {})
	require.Zero(t, loop.Run())
	require.True(t, loop.Stopped())

	loop.Restart()
	require.Equal(t, 1, loop.Run())
}
