package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchDeduplicatesNotifications(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)

	var sums []int
	rt.Effect(func() { sums = append(sums, a.Get()+b.Get()) })

	rt.Batch(func() {
		a.Set(1)
		b.Set(2)
		a.Set(3)
		assert.Equal(t, []int{0}, sums, "no run inside the batch")
		assert.True(t, rt.Batching())
	})

	assert.Equal(t, []int{0, 5}, sums)
	assert.False(t, rt.Batching())
}

func TestNestedBatchFlushesOnce(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	calls := 0
	s.Subscribe(func() { calls++ })

	rt.Batch(func() {
		s.Set(1)
		rt.Batch(func() {
			s.Set(2)
		})
		assert.Equal(t, 0, calls, "inner batch does not flush")
		s.Set(3)
	})

	assert.Equal(t, 1, calls)
}

func TestBatchSubscriberRegisteredBeforeSetRunsOnce(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, "v0")

	calls := 0
	s.Subscribe(func() { calls++ })

	rt.Batch(func() { s.Set("v1") })
	assert.Equal(t, 1, calls)

	rt.Batch(func() { s.Set("v1") })
	assert.Equal(t, 1, calls)
}

func TestBatchFlushOrder(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)

	var order []string
	b.Subscribe(func() { order = append(order, "b") })
	a.Subscribe(func() { order = append(order, "a") })

	rt.Batch(func() {
		b.Set(1)
		a.Set(1)
	})
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestBatchPanicKeepsPendingForNextFlush(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	calls := 0
	s.Subscribe(func() { calls++ })

	require.Panics(t, func() {
		rt.Batch(func() {
			s.Set(1)
			panic("boom")
		})
	})
	assert.Equal(t, 0, calls)
	assert.False(t, rt.Batching())

	rt.Batch(func() {})
	assert.Equal(t, 1, calls)
}

func TestDisposedEffectSkippedAtFlush(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	runs := 0
	dispose := rt.Effect(func() {
		runs++
		_ = s.Get()
	})

	rt.Batch(func() {
		s.Set(1)
		dispose()
	})
	assert.Equal(t, 1, runs)
}
