package exec

import "sync/atomic"

// WorkGuard keeps an executor's substrate alive for the duration of an
// asynchronous operation. A tracking executor (see WorkTracker) will not
// shut down for lack of work while at least one guard on it is held.
//
// Release is idempotent and implied exactly once per guard; a guard that
// is never released pins its executor forever.
type WorkGuard struct {
	ex       Executor
	released atomic.Bool
}

// NewWorkGuard acquires a guard on ex. Executors that do not implement
// WorkTracker get a no-op guard bound to them.
func NewWorkGuard(ex Executor) *WorkGuard {
	if ex == nil {
		panic("programming error: work guard on nil executor")
	}
	if t, ok := ex.(WorkTracker); ok {
		t.WorkStarted()
	}
	return &WorkGuard{ex: ex}
}

// Executor returns the executor the guard is bound to.
func (g *WorkGuard) Executor() Executor {
	return g.ex
}

// Release drops the guard's hold on the executor. Calling it again, or
// on an already released guard, is a no-op.
func (g *WorkGuard) Release() {
	if g == nil || !g.released.CompareAndSwap(false, true) {
		return
	}
	if t, ok := g.ex.(WorkTracker); ok {
		t.WorkFinished()
	}
}

// Released reports whether the guard has been released.
func (g *WorkGuard) Released() bool {
	return g.released.Load()
}
