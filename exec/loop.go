package exec

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// Loop is a single-threaded executor: one goroutine calls Run and
// executes every posted task in FIFO order. Run returns once there are
// no queued tasks and no outstanding work guards, so an in-flight
// asynchronous operation (which holds a guard) keeps the loop alive
// until its completion handler has been delivered.
type Loop struct {
	mu      sync.Mutex
	wake    *sync.Cond
	tasks   *queue.Queue
	work    int
	stopped bool

	// id of the goroutine currently inside Run, 0 when idle.
	runner atomic.Int64
}

var _ Executor = (*Loop)(nil)
var _ WorkTracker = (*Loop)(nil)

func NewLoop() *Loop {
	l := &Loop{tasks: queue.New()}
	l.wake = sync.NewCond(&l.mu)
	return l
}

// Post queues fn to be executed by the goroutine running the loop.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		panic("programming error: nil task posted to loop")
	}
	l.mu.Lock()
	l.tasks.Add(fn)
	l.mu.Unlock()
	l.wake.Broadcast()
}

// Dispatch runs fn immediately when called from within a task the loop
// is currently executing; posting would only reorder it behind tasks
// queued later. From any other goroutine it is identical to Post.
func (l *Loop) Dispatch(fn func()) {
	if l.runner.Load() == gid() {
		fn()
		return
	}
	l.Post(fn)
}

// Run executes queued tasks until the loop is stopped or runs out of
// work (no queued tasks and no outstanding work guards). It returns the
// number of tasks executed. Only one goroutine may run a loop at a time.
func (l *Loop) Run() int {
	if !l.runner.CompareAndSwap(0, gid()) {
		panic("programming error: Loop.Run called concurrently")
	}
	defer l.runner.Store(0)

	n := 0
	l.mu.Lock()
	for {
		for l.tasks.Length() == 0 && l.work > 0 && !l.stopped {
			l.wake.Wait()
		}
		if l.stopped || l.tasks.Length() == 0 {
			break
		}
		fn := l.tasks.Remove().(func())
		l.mu.Unlock()
		fn()
		n++
		l.mu.Lock()
	}
	l.mu.Unlock()
	return n
}

// Stop makes Run return as soon as the currently executing task (if
// any) finishes. Queued tasks are kept; Restart allows running again.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.wake.Broadcast()
}

// Stopped reports whether Stop has been called since the last Restart.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Restart clears the stopped state so the loop can be run again.
func (l *Loop) Restart() {
	l.mu.Lock()
	l.stopped = false
	l.mu.Unlock()
}

// WorkStarted records one unit of outstanding work. Run will not return
// for lack of tasks while the count is above zero.
func (l *Loop) WorkStarted() {
	l.mu.Lock()
	l.work++
	l.mu.Unlock()
}

// WorkFinished records completion of one unit of outstanding work.
func (l *Loop) WorkFinished() {
	l.mu.Lock()
	l.work--
	if l.work < 0 {
		l.mu.Unlock()
		panic("programming error: loop work count underflow")
	}
	idle := l.work == 0
	l.mu.Unlock()
	if idle {
		l.wake.Broadcast()
	}
}
