package laminar

// Layered is implemented by wrapper streams. A wrapper holds exactly
// one next-layer stream — composition, not embedding of the next
// layer's public surface — and chains terminate at a concrete transport
// that does not implement Layered. Chains are acyclic by construction:
// a wrapper is built from an already fully formed next layer, so it can
// never hold itself below itself.
type Layered interface {
	NextLayer() any
}

// LowestLayer walks the next-layer chain of s and returns the
// bottommost concrete transport, or s itself when s is not a wrapper.
// Generic code uses it to reach transport-specific operations that the
// stream concept does not carry.
func LowestLayer(s any) any {
	for {
		l, ok := s.(Layered)
		if !ok {
			return s
		}
		next := l.NextLayer()
		if next == nil {
			return s
		}
		s = next
	}
}

// LowestLayerAs resolves the lowest layer of s and asserts it to T,
// reporting whether the concrete transport has that type.
func LowestLayerAs[T any](s any) (T, bool) {
	t, ok := LowestLayer(s).(T)
	return t, ok
}
