package dom

import (
	"fmt"
	"testing"

	"github.com/conneroisu/signet/internal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type row struct {
	ID   int
	Name string
}

func (r row) Key() any { return r.ID }

func renderRow(d *Document) RenderFunc[row] {
	return func(item reactive.Reader[row], index reactive.Reader[int]) *html.Node {
		label := reactive.NewComputed(d.Runtime(), func() string {
			return fmt.Sprintf("%d:%s", index.Get(), item.Get().Name)
		})
		return d.H("li", nil, label)
	}
}

func TestEachReusesKeyedNodes(t *testing.T) {
	d := newDoc()
	rows := reactive.NewSignal(d.Runtime(), []row{{1, "a"}, {2, "b"}})

	list := Each(d, rows, renderRow(d))
	ul := d.H("ul", nil, list)

	require.Equal(t, `<ul><li>0:a</li><li>1:b</li><!--each--></ul>`, Render(ul))
	before := list.Nodes()
	require.Len(t, before, 2)
	removed, kept := before[0], before[1]

	rows.Set([]row{{2, "b"}, {3, "c"}})

	after := list.Nodes()
	require.Len(t, after, 2)
	assert.Same(t, kept, after[0], "node for id 2 is reused")
	assert.Same(t, kept, ul.FirstChild, "and moved first")
	assert.Nil(t, removed.Parent, "node for id 1 is detached")
	assert.Equal(t, 3, list.Renders(), "only id 3 is newly rendered")
	assert.Equal(t, `<ul><li>0:b</li><li>1:c</li><!--each--></ul>`, Render(ul))
}

func TestEachKeyedReorderWithoutRerender(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []string{"x", "y", "z"})

	list := EachKeyed(d, items, func(s string) any { return s },
		func(item reactive.Reader[string], index reactive.Reader[int]) *html.Node {
			return d.H("span", nil, item)
		})
	box := d.H("div", nil, list)
	nodes := list.Nodes()

	items.Set([]string{"z", "x", "y"})

	assert.Equal(t, `<div><span>z</span><span>x</span><span>y</span><!--each--></div>`, Render(box))
	assert.Equal(t, []*html.Node{nodes[2], nodes[0], nodes[1]}, list.Nodes())
	assert.Equal(t, 3, list.Renders())

	items.Set([]string{"y", "new", "z"})
	assert.Equal(t, `<div><span>y</span><span>new</span><span>z</span><!--each--></div>`, Render(box))
	assert.Equal(t, 4, list.Renders())
	assert.Nil(t, nodes[0].Parent)
}

func TestEachUnkeyedUsesPosition(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []string{"a", "b", "c"})

	list := Each(d, items, func(item reactive.Reader[string], index reactive.Reader[int]) *html.Node {
		return d.H("i", nil, item)
	})
	box := d.H("p", nil, list)
	first := list.Nodes()

	// Removing from the middle updates positions in place.
	items.Set([]string{"a", "c"})

	assert.Equal(t, `<p><i>a</i><i>c</i><!--each--></p>`, Render(box))
	assert.Same(t, first[0], list.Nodes()[0])
	assert.Same(t, first[1], list.Nodes()[1])
	assert.Nil(t, first[2].Parent)
	assert.Equal(t, 3, list.Renders())
}

func TestEachInsertsBeforeAnchorAmongSiblings(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []row{{1, "a"}})

	list := Each(d, items, func(item reactive.Reader[row], _ reactive.Reader[int]) *html.Node {
		return d.H("li", nil, item.Peek().Name)
	})
	ul := d.H("ul", nil, d.H("li", nil, "head"), list, d.H("li", nil, "tail"))

	items.Set([]row{{1, "a"}, {2, "b"}})
	assert.Equal(t, `<ul><li>head</li><li>a</li><li>b</li><!--each--><li>tail</li></ul>`, Render(ul))
}

func TestEachEmptyAndClear(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []row(nil))

	list := Each(d, items, renderRow(d))
	ul := d.H("ul", nil, list)
	assert.Equal(t, 0, list.Len())

	items.Set([]row{{1, "a"}, {2, "b"}})
	assert.Equal(t, 2, list.Len())

	items.Set([]row{})
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, `<ul><!--each--></ul>`, Render(ul))
}

func TestEachDuplicateKeys(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []row{{1, "a"}, {1, "b"}})

	list := Each(d, items, renderRow(d))
	ul := d.H("ul", nil, list)

	assert.Equal(t, 2, list.Len())
	assert.Equal(t, `<ul><li>0:a</li><li>1:b</li><!--each--></ul>`, Render(ul))
}

func TestEachRemovalReleasesBindings(t *testing.T) {
	d := newDoc()
	rt := d.Runtime()
	selected := reactive.NewSignal(rt, 0)
	items := reactive.NewSignal(rt, []row{{1, "a"}, {2, "b"}})

	list := Each(d, items, func(item reactive.Reader[row], _ reactive.Reader[int]) *html.Node {
		id := item.Peek().ID
		active := reactive.NewComputed(rt, func() bool { return selected.Get() == id })
		return d.H("li", Props{"data-active": active}, item.Peek().Name)
	})
	_ = d.H("ul", nil, list)
	nodes := list.Nodes()
	require.Equal(t, 1, d.Bindings(nodes[0]))

	items.Set([]row{{2, "b"}})
	assert.Equal(t, 0, d.Bindings(nodes[0]))
	assert.Equal(t, 1, d.Bindings(nodes[1]))

	selected.Set(2)
	_, ok := Attr(nodes[1], "data-active")
	assert.True(t, ok)
	selected.Set(1)
	_, ok = Attr(nodes[1], "data-active")
	assert.False(t, ok)
}

func TestEachDispose(t *testing.T) {
	d := newDoc()
	items := reactive.NewSignal(d.Runtime(), []row{{1, "a"}})

	list := Each(d, items, renderRow(d))
	ul := d.H("ul", nil, list)

	list.Dispose()
	list.Dispose()
	items.Set([]row{{1, "a"}, {2, "b"}})

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, 0, items.Subscribers())
	assert.Equal(t, `<ul><li>0:a</li><!--each--></ul>`, Render(ul))
}
