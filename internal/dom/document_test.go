package dom

import (
	"testing"

	"github.com/conneroisu/signet/internal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newDoc() *Document {
	return NewDocument(reactive.NewRuntime())
}

func TestHBuildsElements(t *testing.T) {
	d := newDoc()

	node := d.H("div", Props{"class": "map"},
		d.H("h1", Props{}, "Hello"),
		d.H("p", nil, "Count: ", 3),
	)

	assert.Equal(t, `<div class="map"><h1>Hello</h1><p>Count: 3</p></div>`, Render(node))
}

func TestHAttributes(t *testing.T) {
	d := newDoc()

	node := d.H("input", Props{
		"value":    "x",
		"disabled": nil,
		"checked":  false,
		"required": true,
		"size":     10,
	})

	assert.Equal(t, `<input disabled="" required="" size="10" value="x"/>`, Render(node))
	_, ok := Attr(node, "checked")
	assert.False(t, ok)
}

func TestHReactiveAttributeAndText(t *testing.T) {
	d := newDoc()
	rt := d.Runtime()
	cls := reactive.NewSignal(rt, "off")
	count := reactive.NewSignal(rt, 0)

	node := d.H("button", Props{"class": cls}, "Clicked ", count, " times")
	assert.Equal(t, `<button class="off">Clicked 0 times</button>`, Render(node))

	rt.Batch(func() {
		cls.Set("on")
		count.Set(2)
	})
	assert.Equal(t, `<button class="on">Clicked 2 times</button>`, Render(node))
	assert.Equal(t, 1, d.Bindings(node))
}

func TestHStaticValue(t *testing.T) {
	d := newDoc()
	node := d.H("span", Props{"title": reactive.Static("t")}, reactive.Static(5))
	assert.Equal(t, `<span title="t">5</span>`, Render(node))
	assert.Equal(t, 0, d.Bindings(node))
}

func TestHEventHandlers(t *testing.T) {
	d := newDoc()
	rt := d.Runtime()
	count := reactive.NewSignal(rt, 0)

	var got Event
	button := d.H("button", Props{
		"onClick": func() { count.Update(func(n int) int { return n + 1 }) },
		"@input":  func(e Event) { got = e },
	}, "+")

	assert.Equal(t, `<button>+</button>`, Render(button))

	assert.True(t, d.Dispatch(button, "click", nil))
	assert.True(t, d.Dispatch(button, "Click", nil))
	assert.Equal(t, 2, count.Peek())

	assert.True(t, d.Dispatch(button, "input", "abc"))
	assert.Equal(t, "abc", got.Data)
	assert.Same(t, button, got.Target)

	assert.False(t, d.Dispatch(button, "submit", nil))
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "click", eventName("onClick"))
	assert.Equal(t, "click", eventName("on:click"))
	assert.Equal(t, "click", eventName("@click"))
	assert.Equal(t, "keydown", eventName("onKeyDown"))
}

func TestHComponent(t *testing.T) {
	d := newDoc()

	var MyButton Component = func(props Props, children []any) *html.Node {
		return d.H("button", Props{"class": "btn", "aria-label": props["label"]}, children...)
	}

	node := d.H(MyButton, Props{"label": "Save"}, "Click me")
	assert.Equal(t, `<button aria-label="Save" class="btn">Click me</button>`, Render(node))

	plain := func(props Props, children []any) *html.Node { return d.Text("plain") }
	assert.Equal(t, "plain", Render(d.H(plain, nil)))

	bad := d.H(42, Props{"class": "x"}, "child")
	assert.Equal(t, html.CommentNode, bad.Type)
	assert.Equal(t, "<!--signet: unsupported tag type int-->", Render(bad))

	parent := d.H("div", nil, d.H(3.5, nil))
	assert.Equal(t, "<div><!--signet: unsupported tag type float64--></div>", Render(parent))
}

func TestFragmentChildrenMove(t *testing.T) {
	d := newDoc()
	frag := d.Fragment(d.H("li", nil, "a"), []any{d.H("li", nil, "b"), nil, true})

	ul := d.H("ul", nil, frag)
	assert.Equal(t, `<ul><li>a</li><li>b</li></ul>`, Render(ul))
	assert.Nil(t, frag.FirstChild)
}

func TestAppendMovesAttachedNode(t *testing.T) {
	d := newDoc()
	child := d.H("b", nil, "x")
	first := d.H("p", nil, child)
	second := d.H("div", nil, child)

	assert.Equal(t, `<p></p>`, Render(first))
	assert.Equal(t, `<div><b>x</b></div>`, Render(second))
}

func TestMountAndDispose(t *testing.T) {
	d := newDoc()
	rt := d.Runtime()
	name := reactive.NewSignal(rt, "Ada")

	root := d.H("main", Props{"id": "app"})
	greeting := d.H("p", Props{"onClick": func() {}}, "Hi ", name)
	d.Mount(root, greeting)
	assert.Equal(t, `<main id="app"><p>Hi Ada</p></main>`, Render(root))
	require.Equal(t, 1, name.Subscribers())

	d.Mount(root, "empty")
	assert.Equal(t, `<main id="app">empty</main>`, Render(root))
	assert.Equal(t, 0, name.Subscribers())
	assert.False(t, d.Dispatch(greeting, "click", nil))
}

func TestTextContent(t *testing.T) {
	d := newDoc()
	node := d.H("div", nil, "a", d.H("span", nil, "b"), "c")
	assert.Equal(t, "abc", TextContent(node))
}
