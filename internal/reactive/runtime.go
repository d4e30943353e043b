// Package reactive implements signals, computed values, effects, batching and
// resources on top of an explicit tracking context, the Runtime.
//
// A Runtime and everything bound to it belong to one goroutine. Reads made
// while a computation runs record a dependency edge from the signal to that
// computation; writes notify the signal's subscribers either immediately or,
// inside Batch, once at the end of the outermost batch. The only entry point
// that is safe from other goroutines is Dispatch.
package reactive

import (
	"context"
	"sync"
)

// subscriber is a notification target: a computed value, an effect or a
// plain Subscribe callback.
type subscriber struct {
	notify  func()
	deps    []*source
	active  bool
	running bool
}

// source is the type-erased subscriber set every signal carries.
type source struct {
	subs []*subscriber
}

func (s *source) add(sub *subscriber) bool {
	for _, existing := range s.subs {
		if existing == sub {
			return false
		}
	}
	s.subs = append(s.subs, sub)
	return true
}

func (s *source) remove(sub *subscriber) {
	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// clearDeps removes every dependency edge of a computation.
func (sub *subscriber) clearDeps() {
	for _, src := range sub.deps {
		src.remove(sub)
	}
	sub.deps = sub.deps[:0]
}

// Runtime is the tracking context shared by a group of signals.
type Runtime struct {
	current    *subscriber
	batchDepth int
	pending    []*subscriber
	queued     map[*subscriber]bool

	mu    sync.Mutex
	inbox []func()
	wake  chan struct{}
}

// NewRuntime creates an empty tracking context.
func NewRuntime() *Runtime {
	return &Runtime{
		queued: make(map[*subscriber]bool),
		wake:   make(chan struct{}, 1),
	}
}

// track records a read of src by the running computation, if any.
func (rt *Runtime) track(src *source) {
	if rt.current == nil {
		return
	}
	if src.add(rt.current) {
		rt.current.deps = append(rt.current.deps, src)
	}
}

// runTracked runs fn as sub's computation. The previous run's dependencies
// are dropped first so each run tracks exactly what it reads.
func (rt *Runtime) runTracked(sub *subscriber, fn func()) {
	sub.clearDeps()
	prev := rt.current
	rt.current = sub
	sub.running = true
	defer func() {
		sub.running = false
		rt.current = prev
		if !sub.active {
			// Disposed during its own run.
			sub.clearDeps()
		}
	}()
	fn()
}

// notify delivers a change of src to its subscribers.
func (rt *Runtime) notify(src *source) {
	if len(src.subs) == 0 {
		return
	}
	subs := make([]*subscriber, len(src.subs))
	copy(subs, src.subs)

	if rt.batchDepth > 0 {
		for _, sub := range subs {
			if !rt.queued[sub] {
				rt.queued[sub] = true
				rt.pending = append(rt.pending, sub)
			}
		}
		return
	}
	for _, sub := range subs {
		invoke(sub)
	}
}

func invoke(sub *subscriber) {
	// A computation that writes a signal it reads would otherwise recurse.
	if sub.active && !sub.running {
		sub.notify()
	}
}

// Batch runs fn with notifications deferred. When the outermost batch
// returns, every subscriber notified inside it runs exactly once, in the
// order it was first notified. A panic in fn leaves pending notifications
// for the next flush.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	completed := false
	defer func() {
		rt.batchDepth--
		if completed && rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
	completed = true
}

// Batching reports whether a batch is active.
func (rt *Runtime) Batching() bool {
	return rt.batchDepth > 0
}

func (rt *Runtime) flush() {
	for len(rt.pending) > 0 {
		pending := rt.pending
		rt.pending = nil
		for _, sub := range pending {
			delete(rt.queued, sub)
		}
		for _, sub := range pending {
			invoke(sub)
		}
	}
}

// Untrack runs fn without a current computation, so its reads create no
// dependencies.
func (rt *Runtime) Untrack(fn func()) {
	prev := rt.current
	rt.current = nil
	defer func() { rt.current = prev }()
	fn()
}

// Dispatch queues fn to run on the runtime's goroutine during the next Tick.
// It is safe to call from any goroutine.
func (rt *Runtime) Dispatch(fn func()) {
	rt.mu.Lock()
	rt.inbox = append(rt.inbox, fn)
	rt.mu.Unlock()

	select {
	case rt.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives whenever dispatched work is waiting.
func (rt *Runtime) Wake() <-chan struct{} {
	return rt.wake
}

// Tick runs all dispatched work inside one batch and returns how many
// functions ran.
func (rt *Runtime) Tick() int {
	rt.mu.Lock()
	work := rt.inbox
	rt.inbox = nil
	rt.mu.Unlock()

	if len(work) == 0 {
		return 0
	}
	rt.Batch(func() {
		for _, fn := range work {
			fn()
		}
	})
	return len(work)
}

// Run processes dispatched work until ctx is done.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rt.wake:
			rt.Tick()
		}
	}
}
