package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalSubscribeSkipsSameValue(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	calls := 0
	s.Subscribe(func() { calls++ })

	s.Set(1)
	s.Set(1)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Get())
}

func TestSignalSetBackToPreviousValue(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, "v0")

	calls := 0
	s.Subscribe(func() { calls++ })

	s.Set("v1")
	assert.Equal(t, 1, calls)
	s.Set("v1")
	assert.Equal(t, 1, calls)
	s.Set("v0")
	assert.Equal(t, 2, calls)
}

func TestSignalUnsubscribe(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	a, b := 0, 0
	unsubA := s.Subscribe(func() { a++ })
	s.Subscribe(func() { b++ })
	require.Equal(t, 2, s.Subscribers())

	s.Set(1)
	unsubA()
	unsubA()
	s.Set(2)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, s.Subscribers())
}

func TestSignalUpdate(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 41)
	s.Update(func(v int) int { return v + 1 })
	assert.Equal(t, 42, s.Peek())
}

func TestSignalWithEquals(t *testing.T) {
	rt := NewRuntime()
	type point struct{ X, Y int }
	s := NewSignal(rt, point{1, 2}, WithEquals(func(a, b point) bool { return a.X == b.X }))

	calls := 0
	s.Subscribe(func() { calls++ })

	s.Set(point{1, 9})
	assert.Equal(t, 0, calls)
	assert.Equal(t, point{1, 2}, s.Peek())

	s.Set(point{2, 2})
	assert.Equal(t, 1, calls)
}

func TestSame(t *testing.T) {
	type item struct {
		ID   int
		Name string
	}
	shared := []int{1, 2}
	ptr := &item{ID: 1}
	m := map[string]int{"a": 1}

	assert.True(t, Same(1, 1))
	assert.False(t, Same(1, 2))
	assert.True(t, Same(item{1, "a"}, item{1, "a"}))
	assert.False(t, Same(item{1, "a"}, item{1, "b"}))
	assert.True(t, Same(shared, shared))
	assert.False(t, Same(shared, []int{1, 2}))
	assert.False(t, Same(shared, shared[:1]))
	assert.True(t, Same(ptr, ptr))
	assert.False(t, Same(ptr, &item{ID: 1}))
	assert.True(t, Same(m, m))
	assert.False(t, Same(m, map[string]int{"a": 1}))
	assert.True(t, Same[any](nil, nil))
	assert.False(t, Same[any](nil, 0))
	assert.False(t, Same[any](1, "1"))
	assert.False(t, Same[any]([]any{1}, []any{1}))

	fn := func() {}
	assert.False(t, Same(fn, fn))

	type holder struct{ V any }
	assert.False(t, Same(holder{[]int{1}}, holder{[]int{1}}))
}

func TestValue(t *testing.T) {
	rt := NewRuntime()

	static := Static("plain")
	assert.False(t, static.IsReactive())
	assert.Nil(t, static.Reader())
	assert.Equal(t, "plain", static.Get())
	assert.Equal(t, "plain", static.GetAny())

	s := NewSignal(rt, "live")
	dynamic := Reactive[string](s)
	assert.True(t, dynamic.IsReactive())
	assert.Equal(t, "live", dynamic.Get())

	var seen []string
	rt.Effect(func() { seen = append(seen, dynamic.Get()) })
	s.Set("changed")
	assert.Equal(t, []string{"live", "changed"}, seen)
}
