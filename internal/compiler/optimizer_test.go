package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeMergesAdjacentText(t *testing.T) {
	in := []Node{
		&Text{Value: "a"},
		&Text{Value: " "},
		&Text{Value: "b"},
		&Expression{Code: "x"},
		&Text{Value: "c"},
	}

	out := Optimize(in)
	assert.Equal(t, []Node{
		&Text{Value: "a b"},
		&Expression{Code: "x"},
		&Text{Value: "c"},
	}, out)

	// Input is untouched.
	assert.Equal(t, &Text{Value: "a"}, in[0])
}

func TestOptimizeRecursesIntoChildren(t *testing.T) {
	child := &Element{Tag: "p", Children: []Node{&Text{Value: "x"}, &Text{Value: "y"}}}
	root := &Element{Tag: "div", Attrs: []Attr{{Name: "id", Value: "r", Kind: AttrString}}, Children: []Node{child}}

	out := Optimize([]Node{root})
	require.Len(t, out, 1)

	div := out[0].(*Element)
	assert.Equal(t, root.Attrs, div.Attrs)
	assert.NotSame(t, root, div)
	assert.Equal(t, []Node{&Text{Value: "xy"}}, div.Children[0].(*Element).Children)
	assert.Len(t, child.Children, 2)
}

func TestOptimizeIsIdempotent(t *testing.T) {
	templates := []string{
		`<div>a{b}c<p>d</p>e</div>`,
		"<ul>\n <li>1</li>\n <li>2</li>\n</ul>",
		`x } y <b>z</b> w`,
		``,
	}
	for _, tpl := range templates {
		once := Optimize(parse(tpl))
		assert.Equal(t, once, Optimize(once), tpl)
	}
}

func TestOptimizeKeepsWhitespaceText(t *testing.T) {
	out := Optimize([]Node{&Text{Value: "  "}, &Text{Value: "\n"}})
	assert.Equal(t, []Node{&Text{Value: "  \n"}}, out)
	assert.Equal(t, "null", Generate(out))
}
