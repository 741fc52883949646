package laminar_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laminar-io/laminar"
	"github.com/laminar-io/laminar/counted"
	"github.com/laminar-io/laminar/exec"
	yamuxmux "github.com/laminar-io/laminar/mux/yamux"
	"github.com/laminar-io/laminar/secure/noise"
	"github.com/laminar-io/laminar/transport/mem"
)

// TestFourLayerStack drives the canonical deep stack: a counting
// wrapper over a muxed substream over an encrypted tunnel over the
// in-memory transport, checking lowest-layer resolution and end-to-end
// traffic through every layer.
func TestFourLayerStack(t *testing.T) {
	loop := exec.NewLoop()
	rawA, rawB := mem.Pipe(loop)

	var secA, secB *noise.Stream
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		secB, err = noise.Server(rawB, noise.Config{})
		if err != nil {
			t.Error(err)
		}
	}()
	var err error
	secA, err = noise.Client(rawA, noise.Config{})
	require.NoError(t, err)
	wg.Wait()
	require.NotNil(t, secB)

	sessA, err := yamuxmux.Client(secA, loop)
	require.NoError(t, err)
	sessB, err := yamuxmux.Server(secB, loop)
	require.NoError(t, err)
	defer sessA.Close()
	defer sessB.Close()

	var subB *yamuxmux.Stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		var aerr error
		subB, aerr = sessB.Accept()
		if aerr != nil {
			t.Error(aerr)
		}
	}()
	subA, err := sessA.Open()
	require.NoError(t, err)
	wg.Wait()
	require.NotNil(t, subB)

	cs := counted.New(subA)

	// Lowest layer drills through counting, muxing, and encryption
	// down to the in-memory endpoint.
	require.Same(t, rawA, laminar.LowestLayer(cs))
	lowest, ok := laminar.LowestLayerAs[*mem.Stream](cs)
	require.True(t, ok)
	require.Same(t, rawA, lowest)

	payload := []byte("through four layers and back")
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, len(payload))
		if _, rerr := laminar.ReadFull(subB, buf); rerr != nil {
			t.Error(rerr)
			return
		}
		if _, werr := laminar.WriteFull(subB, buf); werr != nil {
			t.Error(werr)
		}
	}()

	_, err = laminar.WriteFull(cs, payload)
	require.NoError(t, err)
	echo := make([]byte, len(payload))
	_, err = laminar.ReadFull(cs, echo)
	require.NoError(t, err)
	wg.Wait()

	require.Equal(t, payload, echo)
	require.EqualValues(t, len(payload), cs.BytesWritten())
	require.EqualValues(t, len(payload), cs.BytesRead())
}
