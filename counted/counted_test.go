package counted_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/async"
	"github.com/laminar-io/laminar/counted"
	"github.com/laminar-io/laminar/exec"
	"github.com/laminar-io/laminar/streamtest"
	"github.com/laminar-io/laminar/transport/mem"
)

func TestBytesWrittenSumsEveryWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The transport always reports success with the full requested
	// length, including the zero-length write.
	m := streamtest.NewMockStream(ctrl)
	m.EXPECT().WriteSome(gomock.Any()).Times(3).DoAndReturn(func(p []byte) (int, error) {
		return len(p), nil
	})

	cs := counted.New(m)
	for _, size := range []int{10, 0, 5} {
		n, err := cs.WriteSome(make([]byte, size))
		require.NoError(t, err)
		require.Equal(t, size, n)
	}
	require.EqualValues(t, 15, cs.BytesWritten())
	require.Zero(t, cs.BytesRead())
}

func TestSyncReadCountsPartialTransferOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	m := streamtest.NewMockStream(ctrl)
	m.EXPECT().ReadSome(gomock.Any()).Return(3, boom)

	cs := counted.New(m)
	n, err := cs.ReadSome(make([]byte, 8))
	require.Equal(t, boom, err)
	require.Equal(t, 3, n)
	require.EqualValues(t, 3, cs.BytesRead(), "partial transfers still count")
}

func TestCountersStartAtZero(t *testing.T) {
	loop := exec.NewLoop()
	a, _ := mem.Pipe(loop)
	cs := counted.New(a)
	require.Zero(t, cs.BytesRead())
	require.Zero(t, cs.BytesWritten())
}

func TestAsyncReadCountsBeforeForwarding(t *testing.T) {
	loop := exec.NewLoop()
	a, b := mem.Pipe(loop)
	cs := counted.New(a)

	_, err := b.WriteSome([]byte("hello"))
	require.NoError(t, err)

	done := false
	cs.AsyncReadSome(make([]byte, 16), async.Func[int](func(err error, n int) {
		require.NoError(t, err)
		require.Equal(t, 5, n)
		// The wrapper's bookkeeping happens-before the forwarded
		// completion.
		require.EqualValues(t, 5, cs.BytesRead())
		done = true
	}))

	loop.Run()
	require.True(t, done)
}

func TestAsyncReadErrorCountsPartialAndForwardsError(t *testing.T) {
	loop := exec.NewLoop()
	a, b := mem.Pipe(loop)
	cs := counted.New(a)

	boom := errors.New("read broke")
	_, err := b.WriteSome([]byte("abcd"))
	require.NoError(t, err)
	a.FailRead(boom)

	var gotErr error
	gotN := -1
	cs.AsyncReadSome(make([]byte, 16), async.Func[int](func(err error, n int) {
		gotErr, gotN = err, n
	}))

	loop.Run()
	require.Equal(t, boom, gotErr)
	require.Equal(t, 4, gotN)
	require.EqualValues(t, 4, cs.BytesRead())
}

func TestAsyncWriteCounts(t *testing.T) {
	loop := exec.NewLoop()
	a, b := mem.Pipe(loop)
	cs := counted.New(a)

	cs.AsyncWriteSome([]byte("payload"), async.Func[int](func(err error, n int) {
		require.NoError(t, err)
		require.Equal(t, 7, n)
	}))
	loop.Run()
	require.EqualValues(t, 7, cs.BytesWritten())

	buf := make([]byte, 7)
	_, err := laminar.ReadFull(b, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), buf)
}

func TestWrapperIsLayered(t *testing.T) {
	loop := exec.NewLoop()
	a, _ := mem.Pipe(loop)
	cs := counted.New(a)

	require.Same(t, a, cs.NextLayer())
	require.Same(t, a, laminar.LowestLayer(cs))
	require.Same(t, loop, cs.Executor())
}

func TestSuiteOverCountedPair(t *testing.T) {
	streamtest.Run(t, func(t *testing.T, ex exec.Executor) (laminar.Stream, laminar.Stream, func()) {
		a, b := mem.Pipe(ex)
		return counted.New(a), counted.New(b), func() {
			a.Close()
			b.Close()
		}
	})
}
