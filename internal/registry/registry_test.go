package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	m := &Module{Name: "About", Route: "/about", FilePath: "pages/about.jsx", Hash: "1"}

	assert.True(t, r.Register(m))

	got, ok := r.Get("pages/about.jsx")
	require.True(t, ok)
	assert.Same(t, m, got)

	byRoute, ok := r.ByRoute("/about")
	require.True(t, ok)
	assert.Same(t, m, byRoute)

	_, ok = r.ByRoute("/missing")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}

func TestRegisterUnchangedIsNoop(t *testing.T) {
	r := New()
	events := r.Watch()

	r.Register(&Module{Route: "/", FilePath: "pages/index.jsx", Hash: "a"})
	assert.False(t, r.Register(&Module{Route: "/", FilePath: "pages/index.jsx", Hash: "a"}))
	assert.True(t, r.Register(&Module{Route: "/", FilePath: "pages/index.jsx", Hash: "b"}))

	first := <-events
	second := <-events
	assert.Equal(t, EventAdded, first.Type)
	assert.Equal(t, EventUpdated, second.Type)
	assert.Equal(t, "b", second.Module.Hash)
	assert.Len(t, events, 0)
}

func TestRemove(t *testing.T) {
	r := New()
	events := r.Watch()
	r.Register(&Module{Route: "/x", FilePath: "pages/x.jsx"})
	<-events

	assert.True(t, r.Remove("pages/x.jsx"))
	assert.False(t, r.Remove("pages/x.jsx"))

	event := <-events
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, "/x", event.Module.Route)
	assert.Equal(t, 0, r.Count())
}

func TestAllSortedByRoute(t *testing.T) {
	r := New()
	r.Register(&Module{Route: "/blog/:id", FilePath: "pages/blog/[id].jsx"})
	r.Register(&Module{Route: "/", FilePath: "pages/index.jsx"})
	r.Register(&Module{Route: "/about", FilePath: "pages/about/index.jsx"})
	r.Register(&Module{Route: "/about", FilePath: "pages/about.jsx"})

	var got []string
	for _, m := range r.All() {
		got = append(got, m.FilePath)
	}
	assert.Equal(t, []string{
		"pages/index.jsx",
		"pages/about.jsx",
		"pages/about/index.jsx",
		"pages/blog/[id].jsx",
	}, got)
}

func TestUnWatchClosesChannel(t *testing.T) {
	r := New()
	ch := r.Watch()
	r.UnWatch(ch)

	_, open := <-ch
	assert.False(t, open)

	// Registering after unwatch must not panic on the closed channel.
	r.Register(&Module{FilePath: "a.jsx"})
}

func TestFullWatcherDropsEvents(t *testing.T) {
	r := New()
	ch := r.Watch()
	for i := 0; i < 150; i++ {
		r.Register(&Module{FilePath: fmt.Sprintf("p%d.jsx", i)})
	}
	assert.Len(t, ch, 100)
	assert.Equal(t, 150, r.Count())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "updated", EventUpdated.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(9).String())
}

func TestConcurrentRegister(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Register(&Module{FilePath: fmt.Sprintf("w%d/%d.jsx", i, j)})
				_ = r.All()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 500, r.Count())
}
