package exec

// Executor is the execution context of the library: the place where
// completion handlers and deferred work run. Implementations may be
// single-threaded (Loop) or backed by a pool of goroutines (Pool);
// callers must be correct under both.
type Executor interface {
	// Post schedules fn for later execution. It never runs fn before
	// returning, regardless of which goroutine calls it.
	Post(fn func())

	// Dispatch runs fn inline when the calling goroutine is already
	// running on this executor and doing so is re-entrancy safe.
	// Otherwise it behaves exactly like Post.
	Dispatch(fn func())
}

// WorkTracker is implemented by executors that count outstanding work.
// A tracking executor must not consider itself idle while the counter
// is above zero, even if it has no queued tasks.
type WorkTracker interface {
	WorkStarted()
	WorkFinished()
}

// Carrier is implemented by values that have an associated executor,
// such as streams and bound completion handlers. Generic code detects
// it with a type assertion, the same way io.ReaderFrom is detected.
type Carrier interface {
	Executor() Executor
}

// ImmediateCarrier is implemented by handlers that want synchronous
// completions delivered somewhere other than their normal executor.
// When absent, the immediate executor defaults to the normal one.
type ImmediateCarrier interface {
	ImmediateExecutor() Executor
}
