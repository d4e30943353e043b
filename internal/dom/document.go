// Package dom is an in-memory DOM for the reactive runtime. Nodes are
// golang.org/x/net/html nodes, so a tree renders to HTML with html.Render.
//
// H is the construction function compiled templates call:
// H(tag, props, children...). Reactive props and children are bound with
// effects owned by the node they update; Dispose releases them together
// with the node's event handlers.
package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/signet/internal/compiler"
	"github.com/conneroisu/signet/internal/reactive"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Props maps attribute and property names to values.
type Props map[string]any

// Component is a user-defined tag.
type Component func(props Props, children []any) *html.Node

// Event is delivered to handlers by Dispatch.
type Event struct {
	Type   string
	Target *html.Node
	Data   any
}

// Renderable is implemented by values that own a node, such as lists
// created by Each.
type Renderable interface {
	Node() *html.Node
}

// Document owns event handlers and reactive bindings for the nodes it
// creates.
type Document struct {
	rt       *reactive.Runtime
	handlers map[*html.Node]map[string]func(Event)
	bindings map[*html.Node][]func()
}

// NewDocument creates a document whose bindings run on rt.
func NewDocument(rt *reactive.Runtime) *Document {
	return &Document{
		rt:       rt,
		handlers: make(map[*html.Node]map[string]func(Event)),
		bindings: make(map[*html.Node][]func()),
	}
}

// Runtime returns the document's reactive runtime.
func (d *Document) Runtime() *reactive.Runtime {
	return d.rt
}

// H creates an element or calls a component. A tag of any other type
// yields a comment node naming the type instead of an element.
func (d *Document) H(tag any, props Props, children ...any) *html.Node {
	switch t := tag.(type) {
	case Component:
		return t(props, children)
	case func(Props, []any) *html.Node:
		return t(props, children)
	case string:
		el := &html.Node{Type: html.ElementNode, Data: t, DataAtom: atom.Lookup([]byte(t))}
		d.applyProps(el, props)
		d.Append(el, children...)
		return el
	default:
		return &html.Node{Type: html.CommentNode, Data: fmt.Sprintf("signet: unsupported tag type %T", tag)}
	}
}

// Fragment groups nodes without a wrapper element. Appending a fragment
// moves its children into the new parent.
func (d *Document) Fragment(children ...any) *html.Node {
	frag := &html.Node{Type: html.DocumentNode}
	d.Append(frag, children...)
	return frag
}

// Text creates a text node.
func (d *Document) Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func (d *Document) applyProps(el *html.Node, props Props) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := props[key]
		if compiler.IsEventHandler(key) {
			if d.on(el, eventName(key), value) {
				continue
			}
		}

		if r, ok := value.(reactive.AnyReader); ok && r.IsReactive() {
			key := key
			d.bind(el, func() { setAttr(el, key, r.GetAny()) })
			continue
		}
		if r, ok := value.(reactive.AnyReader); ok {
			value = r.GetAny()
		}
		setAttr(el, key, value)
	}
}

// on registers value as a handler when it is a function.
func (d *Document) on(el *html.Node, event string, value any) bool {
	var handler func(Event)
	switch fn := value.(type) {
	case func(Event):
		handler = fn
	case func():
		handler = func(Event) { fn() }
	default:
		return false
	}
	if d.handlers[el] == nil {
		d.handlers[el] = make(map[string]func(Event))
	}
	d.handlers[el][event] = handler
	return true
}

// eventName maps onClick, on:click and @click to "click".
func eventName(key string) string {
	switch {
	case strings.HasPrefix(key, "@"):
		key = key[1:]
	case strings.HasPrefix(key, "on:"):
		key = key[3:]
	case strings.HasPrefix(key, "on"):
		key = key[2:]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[i+1:]
	}
	return strings.ToLower(key)
}

// setAttr writes one attribute. nil and true produce a boolean attribute,
// false removes it.
func setAttr(el *html.Node, key string, value any) {
	var val string
	switch v := value.(type) {
	case nil:
	case bool:
		if !v {
			removeAttr(el, key)
			return
		}
	case string:
		val = v
	default:
		val = fmt.Sprint(v)
	}

	for i := range el.Attr {
		if el.Attr[i].Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(el *html.Node, key string) {
	for i := range el.Attr {
		if el.Attr[i].Key == key {
			el.Attr = append(el.Attr[:i], el.Attr[i+1:]...)
			return
		}
	}
}

// Attr returns the value of an attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Append adds children to parent. Strings and numbers become text nodes,
// slices are flattened, fragments are emptied into parent and reactive
// readers become text nodes kept current by an effect. nil and booleans
// render nothing.
func (d *Document) Append(parent *html.Node, children ...any) {
	for _, child := range children {
		d.appendChild(parent, child)
	}
}

func (d *Document) appendChild(parent *html.Node, child any) {
	switch c := child.(type) {
	case nil, bool:
	case *html.Node:
		if c == nil {
			return
		}
		if c.Type == html.DocumentNode {
			for c.FirstChild != nil {
				n := c.FirstChild
				c.RemoveChild(n)
				parent.AppendChild(n)
			}
			return
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		parent.AppendChild(c)
	case Renderable:
		d.appendChild(parent, c.Node())
	case string:
		parent.AppendChild(d.Text(c))
	case []any:
		for _, item := range c {
			d.appendChild(parent, item)
		}
	case []*html.Node:
		for _, item := range c {
			d.appendChild(parent, item)
		}
	case []string:
		for _, item := range c {
			d.appendChild(parent, item)
		}
	case reactive.AnyReader:
		text := d.Text("")
		parent.AppendChild(text)
		if !c.IsReactive() {
			text.Data = textOf(c.GetAny())
			return
		}
		d.bind(text, func() { text.Data = textOf(c.GetAny()) })
	default:
		parent.AppendChild(d.Text(fmt.Sprint(c)))
	}
}

func textOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(v)
}

// bind runs update as an effect owned by n.
func (d *Document) bind(n *html.Node, update func()) {
	dispose := d.rt.Effect(update)
	d.bindings[n] = append(d.bindings[n], dispose)
}

// Bindings returns the number of live reactive bindings owned by n.
func (d *Document) Bindings(n *html.Node) int {
	return len(d.bindings[n])
}

// Dispose releases the bindings and handlers of n and its descendants. The
// nodes stay in the tree.
func (d *Document) Dispose(n *html.Node) {
	if n == nil {
		return
	}
	for _, dispose := range d.bindings[n] {
		dispose()
	}
	delete(d.bindings, n)
	delete(d.handlers, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.Dispose(c)
	}
}

// Dispatch delivers an event to the handler registered on target and
// reports whether one ran.
func (d *Document) Dispatch(target *html.Node, event string, data any) bool {
	handler, ok := d.handlers[target][strings.ToLower(event)]
	if !ok {
		return false
	}
	handler(Event{Type: event, Target: target, Data: data})
	return true
}

// Mount replaces the children of root with node.
func (d *Document) Mount(root *html.Node, node any) *html.Node {
	for root.FirstChild != nil {
		c := root.FirstChild
		root.RemoveChild(c)
		d.Dispose(c)
	}
	d.appendChild(root, node)
	return root
}

// Render serializes n as HTML.
func Render(n *html.Node) string {
	var b strings.Builder
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&b, c); err != nil {
				return b.String()
			}
		}
		return b.String()
	}
	if err := html.Render(&b, n); err != nil {
		return b.String()
	}
	return b.String()
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}
