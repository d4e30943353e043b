package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectRunsImmediatelyAndOnChange(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 1)

	var seen []int
	rt.Effect(func() { seen = append(seen, count.Get()) })
	require.Equal(t, []int{1}, seen)

	count.Set(2)
	count.Set(2)
	count.Set(3)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestEffectDisposeRemovesEveryEdge(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)

	runs := 0
	dispose := rt.Effect(func() {
		runs++
		_ = a.Get() + b.Get()
	})
	require.Equal(t, 1, a.Subscribers())
	require.Equal(t, 1, b.Subscribers())

	dispose()
	assert.Equal(t, 0, a.Subscribers())
	assert.Equal(t, 0, b.Subscribers())

	a.Set(1)
	b.Set(1)
	assert.Equal(t, 1, runs)
}

func TestEffectTracksDynamicDependencies(t *testing.T) {
	rt := NewRuntime()
	useA := NewSignal(rt, true)
	a := NewSignal(rt, "a")
	b := NewSignal(rt, "b")

	var seen []string
	rt.Effect(func() {
		if useA.Get() {
			seen = append(seen, a.Get())
		} else {
			seen = append(seen, b.Get())
		}
	})

	useA.Set(false)
	assert.Equal(t, 0, a.Subscribers())

	a.Set("a2")
	b.Set("b2")
	assert.Equal(t, []string{"a", "b", "b2"}, seen)
}

func TestEffectWritingItsOwnDependencyDoesNotRecurse(t *testing.T) {
	rt := NewRuntime()
	n := NewSignal(rt, 0)

	runs := 0
	rt.Effect(func() {
		runs++
		if v := n.Get(); v < 5 {
			n.Set(v + 1)
		}
	})

	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, n.Peek())
}

func TestEffectDisposedDuringRun(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)

	var dispose func()
	runs := 0
	dispose = rt.Effect(func() {
		runs++
		if s.Get() > 0 && dispose != nil {
			dispose()
		}
	})

	s.Set(1)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 0, s.Subscribers())

	s.Set(2)
	assert.Equal(t, 2, runs)
}

func TestEffectPanicPropagates(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	rt.Effect(func() {
		if s.Get() == 1 {
			panic("effect failed")
		}
	})

	assert.PanicsWithValue(t, "effect failed", func() { s.Set(1) })
}

func TestUntrack(t *testing.T) {
	rt := NewRuntime()
	tracked := NewSignal(rt, 0)
	untracked := NewSignal(rt, 0)

	runs := 0
	rt.Effect(func() {
		runs++
		_ = tracked.Get()
		rt.Untrack(func() { _ = untracked.Get() })
	})

	untracked.Set(1)
	assert.Equal(t, 1, runs)
	tracked.Set(1)
	assert.Equal(t, 2, runs)
}

func TestComputed(t *testing.T) {
	rt := NewRuntime()
	first := NewSignal(rt, "Ada")
	last := NewSignal(rt, "Lovelace")

	evaluations := 0
	full := NewComputed(rt, func() string {
		evaluations++
		return first.Get() + " " + last.Get()
	})
	assert.Equal(t, "Ada Lovelace", full.Get())
	assert.Equal(t, 1, evaluations)

	notified := 0
	full.Subscribe(func() { notified++ })

	last.Set("Byron")
	assert.Equal(t, "Ada Byron", full.Peek())
	assert.Equal(t, 1, notified)

	full.Dispose()
	first.Set("Augusta")
	assert.Equal(t, "Ada Byron", full.Peek())
	assert.Equal(t, 2, evaluations)
}

func TestComputedSkipsUnchangedResult(t *testing.T) {
	rt := NewRuntime()
	n := NewSignal(rt, 2)
	parity := NewComputed(rt, func() bool { return n.Get()%2 == 0 })

	runs := 0
	rt.Effect(func() {
		runs++
		_ = parity.Get()
	})

	n.Set(4)
	assert.Equal(t, 1, runs)
	n.Set(5)
	assert.Equal(t, 2, runs)
	assert.False(t, parity.Get())
}

func TestComputedChain(t *testing.T) {
	rt := NewRuntime()
	base := NewSignal(rt, 1)
	double := NewComputed(rt, func() int { return base.Get() * 2 })
	quad := NewComputed(rt, func() int { return double.Get() * 2 })

	base.Set(3)
	assert.Equal(t, 12, quad.Get())
}
