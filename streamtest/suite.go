// Package streamtest provides a conformance suite for laminar stream
// implementations plus a gomock mock of the full Stream interface.
// Transport and wrapper packages run the suite against their own
// factory so every layer honors the same stream contract.
package streamtest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/exec"
)

var testData = []byte("this is some test data")

// Factory builds a connected stream pair whose asynchronous completions
// run on ex, plus a cleanup function.
type Factory func(t *testing.T, ex exec.Executor) (a, b laminar.Stream, cleanup func())

// Run exercises the stream contract against the factory's pair.
func Run(t *testing.T, f Factory) {
	t.Run("Capabilities", func(t *testing.T) { subtestCapabilities(t, f) })
	t.Run("SyncEcho", func(t *testing.T) { subtestSyncEcho(t, f) })
	t.Run("AsyncEcho", func(t *testing.T) { subtestAsyncEcho(t, f) })
	t.Run("ZeroLengthWrite", func(t *testing.T) { subtestZeroLengthWrite(t, f) })
}

func subtestCapabilities(t *testing.T, f Factory) {
	loop := exec.NewLoop()
	a, b, cleanup := f(t, loop)
	defer cleanup()

	for _, s := range []laminar.Stream{a, b} {
		caps := laminar.Classify(s)
		require.True(t, caps.SyncRead)
		require.True(t, caps.SyncWrite)
		require.True(t, caps.AsyncRead)
		require.True(t, caps.AsyncWrite)
	}
}

func subtestSyncEcho(t *testing.T, f Factory) {
	loop := exec.NewLoop()
	a, b, cleanup := f(t, loop)
	defer cleanup()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, len(testData))
		_, err := laminar.ReadFull(b, buf)
		if err != nil {
			t.Error(err)
			return
		}
		if _, err := laminar.WriteFull(b, buf); err != nil {
			t.Error(err)
		}
	}()

	_, err := laminar.WriteFull(a, testData)
	require.NoError(t, err)

	echo := make([]byte, len(testData))
	_, err = laminar.ReadFull(a, echo)
	require.NoError(t, err)
	require.Equal(t, testData, echo)
	wg.Wait()
}

func subtestAsyncEcho(t *testing.T, f Factory) {
	loop := exec.NewLoop()
	a, b, cleanup := f(t, loop)
	defer cleanup()

	buf := make([]byte, len(testData))
	var readErr, writeErr error
	done := 0

	laminar.AsyncReadFull(b, buf, async.Func[int](func(err error, n int) {
		readErr = err
		done++
	}))
	laminar.AsyncWriteFull(a, testData, async.Func[int](func(err error, n int) {
		writeErr = err
		done++
	}))

	loop.Run()
	require.Equal(t, 2, done)
	require.NoError(t, readErr)
	require.NoError(t, writeErr)
	require.Equal(t, testData, buf)
}

func subtestZeroLengthWrite(t *testing.T, f Factory) {
	loop := exec.NewLoop()
	a, _, cleanup := f(t, loop)
	defer cleanup()

	n, err := a.WriteSome(nil)
	require.NoError(t, err)
	require.Zero(t, n)
}
