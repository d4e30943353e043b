package reactive

// Computed is a derived signal. It recomputes whenever a signal read by its
// last calculation changes, and notifies its own subscribers only when the
// result differs.
type Computed[T any] struct {
	rt    *Runtime
	sub   *subscriber
	calc  func() T
	value *Signal[T]
}

// NewComputed evaluates calc immediately and keeps the result up to date.
func NewComputed[T any](rt *Runtime, calc func() T, opts ...SignalOption[T]) *Computed[T] {
	c := &Computed[T]{rt: rt, calc: calc}
	c.sub = &subscriber{active: true, notify: c.recompute}

	var initial T
	rt.runTracked(c.sub, func() { initial = calc() })
	c.value = NewSignal(rt, initial, opts...)
	return c
}

func (c *Computed[T]) recompute() {
	var next T
	c.rt.runTracked(c.sub, func() { next = c.calc() })
	c.value.Set(next)
}

// Get returns the cached result, tracking the read.
func (c *Computed[T]) Get() T { return c.value.Get() }

// Peek returns the cached result without tracking.
func (c *Computed[T]) Peek() T { return c.value.Peek() }

// GetAny implements AnyReader.
func (c *Computed[T]) GetAny() any { return c.Get() }

// IsReactive implements AnyReader.
func (c *Computed[T]) IsReactive() bool { return true }

// Subscribe registers fn to run after the result changes.
func (c *Computed[T]) Subscribe(fn func()) (unsubscribe func()) {
	return c.value.Subscribe(fn)
}

// Dispose stops recomputation and detaches from every dependency. The last
// value remains readable.
func (c *Computed[T]) Dispose() {
	c.sub.active = false
	c.sub.clearDeps()
}
