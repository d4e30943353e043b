package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(s string) []Node {
	return Parse(Tokenize(s))
}

func TestParseElementTree(t *testing.T) {
	nodes := parse(`<div class="map"><h1>{msg}</h1><p>Rendered!</p></div>`)
	require.Len(t, nodes, 1)

	div, ok := nodes[0].(*Element)
	require.True(t, ok)
	assert.Equal(t, "div", div.Tag)
	assert.Equal(t, []Attr{{Name: "class", Value: "map", Kind: AttrString}}, div.Attrs)
	require.Len(t, div.Children, 2)

	h1 := div.Children[0].(*Element)
	assert.Equal(t, []Node{&Expression{Code: "msg"}}, h1.Children)

	p := div.Children[1].(*Element)
	assert.Equal(t, []Node{&Text{Value: "Rendered!"}}, p.Children)
}

func TestParseAttributes(t *testing.T) {
	nodes := parse(`<input value={count} disabled type=text value2="{x}">`)
	require.Len(t, nodes, 1)
	el := nodes[0].(*Element)

	assert.Equal(t, []Attr{
		{Name: "value", Value: "count", Kind: AttrExpr},
		{Name: "disabled", Kind: AttrBool},
		{Name: "type", Value: "text", Kind: AttrString},
		{Name: "value2", Value: "{x}", Kind: AttrString},
	}, el.Attrs)
	assert.Empty(t, el.Children)
}

func TestParseDuplicateAttributeKeepsFirstPosition(t *testing.T) {
	el := parse(`<a x="1" y="2" x="3"></a>`)[0].(*Element)
	assert.Equal(t, []Attr{
		{Name: "x", Value: "3", Kind: AttrString},
		{Name: "y", Value: "2", Kind: AttrString},
	}, el.Attrs)
}

func TestParseVoidElementDoesNotSwallowSiblings(t *testing.T) {
	nodes := parse(`<br><p>after</p>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "br", nodes[0].(*Element).Tag)
	assert.Empty(t, nodes[0].(*Element).Children)
	assert.Equal(t, "p", nodes[1].(*Element).Tag)

	nodes = parse(`<img src="a.png"/><span/>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "span", nodes[1].(*Element).Tag)
}

func TestParseMarkupInsideExpression(t *testing.T) {
	nodes := parse(`<ul>{items.map(item => <li class="row">{item.name}</li>)}</ul>`)
	require.Len(t, nodes, 1)
	ul := nodes[0].(*Element)
	require.Len(t, ul.Children, 1)

	expr, ok := ul.Children[0].(*Expression)
	require.True(t, ok)
	assert.Equal(t, `items.map(item => h("li", {"class":"row"}, (item.name)))`, expr.Code)
}

func TestParseNestedBracesInExpression(t *testing.T) {
	nodes := parse(`{fn({a: 1})}`)
	require.Len(t, nodes, 1)
	assert.Equal(t, &Expression{Code: "fn({a: 1})"}, nodes[0])
}

func TestParseComponentInsideExpression(t *testing.T) {
	nodes := parse(`{ok ? <Badge kind="ok"/> : null}`)
	require.Len(t, nodes, 1)
	assert.Equal(t, &Expression{Code: `ok ? h(Badge, {"kind":"ok"}) : null`}, nodes[0])
}

func TestParseIsLenient(t *testing.T) {
	t.Run("stray closing tag", func(t *testing.T) {
		nodes := parse(`</span><p>x</p>`)
		require.Len(t, nodes, 1)
		assert.Equal(t, "p", nodes[0].(*Element).Tag)
	})

	t.Run("unclosed element runs to end", func(t *testing.T) {
		nodes := parse(`<div><p>x`)
		require.Len(t, nodes, 1)
		div := nodes[0].(*Element)
		require.Len(t, div.Children, 1)
		assert.Equal(t, []Node{&Text{Value: "x"}}, div.Children[0].(*Element).Children)
	})

	t.Run("unterminated expression", func(t *testing.T) {
		nodes := parse(`{a + b`)
		assert.Equal(t, []Node{&Expression{Code: "a + b"}}, nodes)
	})

	t.Run("empty token stream", func(t *testing.T) {
		assert.Empty(t, Parse(nil))
	})
}

func TestElementIsComponent(t *testing.T) {
	assert.True(t, (&Element{Tag: "MyButton"}).IsComponent())
	assert.False(t, (&Element{Tag: "button"}).IsComponent())
	assert.False(t, (&Element{}).IsComponent())
}
