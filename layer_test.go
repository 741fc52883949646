package laminar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/counted"
	"github.com/laminar-io/laminar/exec"
	"github.com/laminar-io/laminar/transport/mem"
)

func TestLowestLayerOfConcreteTransportIsItself(t *testing.T) {
	a, _ := mem.Pipe(exec.NewLoop())
	require.Same(t, a, laminar.LowestLayer(a))
}

func TestLowestLayerWalksArbitraryDepth(t *testing.T) {
	transport, _ := mem.Pipe(exec.NewLoop())

	// Stack depth 3: counted over counted over counted over mem.
	var s laminar.Stream = transport
	for i := 0; i < 3; i++ {
		s = counted.New(s)
	}

	// Manual unwrap must agree with the resolver, reference for
	// reference.
	manual := any(s)
	for i := 0; i < 3; i++ {
		manual = manual.(laminar.Layered).NextLayer()
	}
	require.Same(t, transport, manual)
	require.Same(t, transport, laminar.LowestLayer(s))
}

func TestLowestLayerAs(t *testing.T) {
	transport, _ := mem.Pipe(exec.NewLoop())
	wrapper := counted.New(counted.New(transport))

	got, ok := laminar.LowestLayerAs[*mem.Stream](wrapper)
	require.True(t, ok)
	require.Same(t, transport, got)

	_, ok = laminar.LowestLayerAs[*counted.Stream](wrapper)
	require.False(t, ok, "the lowest layer is past every wrapper")
}
