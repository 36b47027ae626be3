// Package sync provides the kernel's synchronization primitives: a spinlock
// and the compare-and-swap operation it is built on.
package sync

var (
	// yieldFn, when non-nil, is invoked periodically while busy-waiting so
	// another task can make progress and release the lock.
	yieldFn func()
)

// spinsBeforeYield is the number of failed acquisition attempts between
// yields.
const spinsBeforeYield = 100

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint64
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for spins := uint(0); !l.TryToAcquire(); spins++ {
		if spins%spinsBeforeYield == spinsBeforeYield-1 && yieldFn != nil {
			yieldFn()
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return CompareAndSwapUint64(&l.state, 0, 1)
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	CompareAndSwapUint64(&l.state, 1, 0)
}
