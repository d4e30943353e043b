package dom

import (
	"github.com/conneroisu/signet/internal/reactive"
	"golang.org/x/net/html"
)

// Keyed items supply their own identity to Each.
type Keyed interface {
	Key() any
}

// RenderFunc renders one list item. item and index are signals that the
// list updates in place when the item keeps its key across changes.
type RenderFunc[T any] func(item reactive.Reader[T], index reactive.Reader[int]) *html.Node

type record[T any] struct {
	item  *reactive.Signal[T]
	index *reactive.Signal[int]
	node  *html.Node
}

// List is a reactive list of rendered nodes followed by an anchor comment.
// Append it (or its Node) to a parent to place it.
type List[T any] struct {
	doc      *Document
	frag     *html.Node
	anchor   *html.Node
	key      func(item T, index int) any
	render   RenderFunc[T]
	records  map[any]*record[T]
	order    []*record[T]
	dispose  func()
	disposed bool
	renders  int
}

// dupKey distinguishes repeated keys within one array.
type dupKey struct {
	key   any
	index int
}

// Each renders list with render. Items implementing Keyed are matched by
// Key(); other items are matched by position, so inserting or removing in
// the middle of an unkeyed list updates every later record in place.
func Each[T any](doc *Document, list reactive.Reader[[]T], render RenderFunc[T]) *List[T] {
	return newList(doc, list, func(item T, index int) any {
		if k, ok := any(item).(Keyed); ok {
			return k.Key()
		}
		return index
	}, render)
}

// EachKeyed renders list matching items across changes by key(item).
func EachKeyed[T any](doc *Document, list reactive.Reader[[]T], key func(T) any, render RenderFunc[T]) *List[T] {
	return newList(doc, list, func(item T, _ int) any { return key(item) }, render)
}

func newList[T any](doc *Document, list reactive.Reader[[]T], key func(T, int) any, render RenderFunc[T]) *List[T] {
	l := &List[T]{
		doc:     doc,
		frag:    &html.Node{Type: html.DocumentNode},
		anchor:  &html.Node{Type: html.CommentNode, Data: "each"},
		key:     key,
		render:  render,
		records: make(map[any]*record[T]),
	}
	l.frag.AppendChild(l.anchor)
	l.dispose = doc.rt.Effect(func() {
		l.sync(list.Get())
	})
	return l
}

// sync reconciles the rendered nodes with items.
func (l *List[T]) sync(items []T) {
	if l.disposed {
		return
	}
	parent := l.anchor.Parent
	rt := l.doc.rt

	visited := make(map[any]bool, len(items))
	order := make([]*record[T], 0, len(items))

	for i, item := range items {
		k := l.key(item, i)
		if visited[k] {
			k = dupKey{key: k, index: i}
		}
		visited[k] = true

		rec, ok := l.records[k]
		if !ok {
			rec = &record[T]{
				item:  reactive.NewSignal(rt, item),
				index: reactive.NewSignal(rt, i),
			}
			rt.Untrack(func() { rec.node = l.render(rec.item, rec.index) })
			if rec.node == nil {
				rec.node = &html.Node{Type: html.CommentNode}
			}
			l.renders++
			parent.InsertBefore(rec.node, l.anchor)
			l.records[k] = rec
		} else {
			rec.item.Set(item)
			rec.index.Set(i)
		}
		order = append(order, rec)
	}

	for k, rec := range l.records {
		if !visited[k] {
			if rec.node.Parent != nil {
				rec.node.Parent.RemoveChild(rec.node)
			}
			l.doc.Dispose(rec.node)
			delete(l.records, k)
		}
	}

	// Walk backwards so each node ends up directly before its successor,
	// moving only nodes that are out of place.
	next := l.anchor
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i].node
		if n.NextSibling != next {
			parent.RemoveChild(n)
			parent.InsertBefore(n, next)
		}
		next = n
	}
	l.order = order
}

// Node returns the fragment holding the list. It is empty once the list has
// been appended somewhere.
func (l *List[T]) Node() *html.Node {
	return l.frag
}

// Anchor returns the comment node that marks the end of the list.
func (l *List[T]) Anchor() *html.Node {
	return l.anchor
}

// Nodes returns the rendered nodes in list order.
func (l *List[T]) Nodes() []*html.Node {
	nodes := make([]*html.Node, len(l.order))
	for i, rec := range l.order {
		nodes[i] = rec.node
	}
	return nodes
}

// Len returns the number of rendered items.
func (l *List[T]) Len() int {
	return len(l.order)
}

// Renders returns how many times the render function has been called.
func (l *List[T]) Renders() int {
	return l.renders
}

// Dispose stops the list from reacting and releases its items' bindings.
// Rendered nodes stay in place.
func (l *List[T]) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	l.dispose()
	for _, rec := range l.records {
		l.doc.Dispose(rec.node)
	}
}
