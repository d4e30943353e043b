package reactive

// Value is either a plain value or a reactive Reader. Consumers branch on
// IsReactive instead of inspecting the dynamic type.
type Value[T any] struct {
	static T
	reader Reader[T]
}

// Static wraps a plain value.
func Static[T any](v T) Value[T] {
	return Value[T]{static: v}
}

// Reactive wraps a reader. A nil reader yields a static zero value.
func Reactive[T any](r Reader[T]) Value[T] {
	return Value[T]{reader: r}
}

// Get returns the current value, tracking the read when reactive.
func (v Value[T]) Get() T {
	if v.reader != nil {
		return v.reader.Get()
	}
	return v.static
}

// GetAny implements AnyReader.
func (v Value[T]) GetAny() any { return v.Get() }

// IsReactive reports whether the value wraps a reader.
func (v Value[T]) IsReactive() bool {
	return v.reader != nil
}

// Reader returns the wrapped reader, or nil for a static value.
func (v Value[T]) Reader() Reader[T] {
	return v.reader
}
