package exec

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is an executor backed by a fixed set of worker goroutines. It
// may run completion handlers concurrently, so anything completed on a
// Pool must synchronize its shared state (the counted wrapper's atomic
// counters, for example).
type Pool struct {
	tasks chan func()
	group *errgroup.Group
	once  sync.Once
}

var _ Executor = (*Pool)(nil)

// NewPool starts a pool with the given number of workers, defaulting to
// GOMAXPROCS when workers is not positive.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		tasks: make(chan func(), 128),
		group: new(errgroup.Group),
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	return p
}

func (p *Pool) work() error {
	for fn := range p.tasks {
		fn()
	}
	return nil
}

// Post hands fn to a worker. Posting to a closed pool is a programming
// error and panics.
func (p *Pool) Post(fn func()) {
	if fn == nil {
		panic("programming error: nil task posted to pool")
	}
	p.tasks <- fn
}

// Dispatch behaves like Post: a pool never knows whether inline
// execution is safe for the caller, so it never runs anything inline.
func (p *Pool) Dispatch(fn func()) {
	p.Post(fn)
}

// Close stops accepting tasks and waits for workers to drain the queue.
func (p *Pool) Close() error {
	p.once.Do(func() { close(p.tasks) })
	return p.group.Wait()
}
