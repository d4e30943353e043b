package reactive

// Reader is the read capability shared by signals, computed values,
// resources and Value.
type Reader[T any] interface {
	AnyReader
	// Get returns the current value and records a dependency when called
	// inside a computation.
	Get() T
	// Peek returns the current value without recording a dependency.
	Peek() T
	// Subscribe registers fn to run after every change and returns a
	// function that revokes the subscription.
	Subscribe(fn func()) (unsubscribe func())
}

// AnyReader is the type-erased form of Reader, for consumers such as the
// DOM that bind values of any type.
type AnyReader interface {
	GetAny() any
	IsReactive() bool
}

// Signal is a mutable reactive cell.
type Signal[T any] struct {
	rt    *Runtime
	src   source
	value T
	equal func(a, b T) bool
}

// SignalOption configures a Signal.
type SignalOption[T any] func(*Signal[T])

// WithEquals replaces the default sameness check used to skip no-op writes.
func WithEquals[T any](equal func(a, b T) bool) SignalOption[T] {
	return func(s *Signal[T]) {
		s.equal = equal
	}
}

// NewSignal creates a signal bound to rt.
func NewSignal[T any](rt *Runtime, initial T, opts ...SignalOption[T]) *Signal[T] {
	s := &Signal[T]{
		rt:    rt,
		value: initial,
		equal: Same[T],
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value, tracking the read.
func (s *Signal[T]) Get() T {
	s.rt.track(&s.src)
	return s.value
}

// Peek returns the value without tracking.
func (s *Signal[T]) Peek() T {
	return s.value
}

// GetAny implements AnyReader.
func (s *Signal[T]) GetAny() any {
	return s.Get()
}

// IsReactive implements AnyReader.
func (s *Signal[T]) IsReactive() bool {
	return true
}

// Set stores v and notifies subscribers. Writing a value that is the same as
// the current one does nothing.
func (s *Signal[T]) Set(v T) {
	if s.equal(s.value, v) {
		return
	}
	s.value = v
	s.rt.notify(&s.src)
}

// Update sets the signal to fn applied to its current value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// Subscribe registers fn to run after every change.
func (s *Signal[T]) Subscribe(fn func()) (unsubscribe func()) {
	return subscribe(&s.src, fn)
}

// Subscribers returns the number of live subscriptions and dependent
// computations.
func (s *Signal[T]) Subscribers() int {
	return len(s.src.subs)
}

func subscribe(src *source, fn func()) func() {
	sub := &subscriber{notify: fn, active: true}
	src.add(sub)
	return func() {
		sub.active = false
		src.remove(sub)
	}
}
