package authflow

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Guard lets at most one submission of a flow run at a time.
type Guard struct {
	sem      *semaphore.Weighted
	inFlight atomic.Bool

	mu        sync.Mutex
	listeners []func(bool)
}

// NewGuard creates an idle guard
func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// TryBegin marks the guard in flight. It returns false without blocking if
// a submission is already running.
func (g *Guard) TryBegin() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.inFlight.Store(true)
	g.emit(true)
	return true
}

// End marks the guard idle again. Calls without a matching TryBegin are
// ignored.
func (g *Guard) End() {
	if !g.inFlight.CompareAndSwap(true, false) {
		return
	}
	g.sem.Release(1)
	g.emit(false)
}

// InFlight reports whether a submission is running
func (g *Guard) InFlight() bool {
	return g.inFlight.Load()
}

// OnChange registers fn to be called with the new state on every
// transition. Front ends use it to disable their submit control.
func (g *Guard) OnChange(fn func(inFlight bool)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

func (g *Guard) emit(inFlight bool) {
	g.mu.Lock()
	listeners := make([]func(bool), len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(inFlight)
	}
}
