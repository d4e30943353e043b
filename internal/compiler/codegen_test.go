package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileScenarios(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "nested elements with expression child",
			template: `<div class="map"><h1>{msg}</h1><p>Rendered!</p></div>`,
			expected: `h("div", {"class":"map"}, h("h1", {}, (msg)), h("p", {}, "Rendered!"))`,
		},
		{
			name:     "expression and boolean attributes",
			template: `<input value={count} disabled>`,
			expected: `h("input", {"value":count,"disabled":null})`,
		},
		{
			name:     "multiple roots",
			template: `<p>A</p><p>B</p>`,
			expected: `[h("p", {}, "A"), h("p", {}, "B")]`,
		},
		{
			name:     "component with handler",
			template: `<MyButton label="Save" onClick={handleSave}>Click me</MyButton>`,
			expected: `h(MyButton, {"label":"Save","onClick":handleSave}, "Click me")`,
		},
		{
			name:     "empty template",
			template: ``,
			expected: `null`,
		},
		{
			name:     "whitespace only template",
			template: "  \n\t ",
			expected: `null`,
		},
		{
			name:     "whitespace between elements is dropped",
			template: "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>",
			expected: `h("ul", {}, h("li", {}, "one"), h("li", {}, "two"))`,
		},
		{
			name:     "whitespace collapses and keeps edges",
			template: "<p>  Hello,\n   {name}  !</p>",
			expected: `h("p", {}, " Hello, ", (name), " !")`,
		},
		{
			name:     "list rendering with inline markup",
			template: `<ul>{items.map(x => <li>{x}</li>)}</ul>`,
			expected: `h("ul", {}, (items.map(x => h("li", {}, (x)))))`,
		},
		{
			name:     "object literal attribute",
			template: `<div style={{color: "red"}}></div>`,
			expected: `h("div", {"style":{color: "red"}})`,
		},
		{
			name:     "void element keeps its siblings",
			template: `<img src="a.png"><p>x</p>`,
			expected: `[h("img", {"src":"a.png"}), h("p", {}, "x")]`,
		},
		{
			name:     "whitespace-only literal attribute",
			template: `<i title=" "></i>`,
			expected: `h("i", {"title":" "})`,
		},
		{
			name:     "namespaced attribute stays literal",
			template: `<use xlink:href="a.svg"></use>`,
			expected: `h("use", {"xlink:href":"a.svg"})`,
		},
		{
			name:     "self-closing component",
			template: `<Spinner size="sm" />`,
			expected: `h(Spinner, {"size":"sm"})`,
		},
		{
			name:     "text with quotes and markup characters",
			template: `<p>say "hi" & 1 < 2</p>`,
			expected: `h("p", {}, "say \"hi\" & 1 < 2")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compile(tt.template, Options{}))
		})
	}
}

func TestAttributeSerialization(t *testing.T) {
	tests := []struct {
		name     string
		attr     Attr
		expected string
	}{
		{"boolean", Attr{Name: "hidden", Kind: AttrBool}, `{"hidden":null}`},
		{"empty string", Attr{Name: "alt", Value: "", Kind: AttrString}, `{"alt":null}`},
		{"literal", Attr{Name: "title", Value: "Hello", Kind: AttrString}, `{"title":"Hello"}`},
		{"whitespace literal", Attr{Name: "title", Value: " ", Kind: AttrString}, `{"title":" "}`},
		{"namespaced literal", Attr{Name: "xlink:href", Value: "a.svg", Kind: AttrString}, `{"xlink:href":"a.svg"}`},
		{"literal needing escapes", Attr{Name: "title", Value: `a"b\c`, Kind: AttrString}, `{"title":"a\"b\\c"}`},
		{"brace expression", Attr{Name: "value", Value: "count", Kind: AttrExpr}, `{"value":count}`},
		{"braced literal", Attr{Name: "value", Value: "{count + 1}", Kind: AttrString}, `{"value":count + 1}`},
		{"on prefix handler", Attr{Name: "onclick", Value: "save", Kind: AttrString}, `{"onclick":save}`},
		{"braced handler", Attr{Name: "onInput", Value: "{update}", Kind: AttrString}, `{"onInput":update}`},
		{"colon handler", Attr{Name: "on:tap", Value: "tap", Kind: AttrString}, `{"on:tap":tap}`},
		{"at handler", Attr{Name: "@click", Value: "go", Kind: AttrString}, `{"@click":go}`},
		{"bare on is a literal", Attr{Name: "on", Value: "yes", Kind: AttrString}, `{"on":"yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, genProps([]Attr{tt.attr}))
		})
	}
}

func TestGenerate(t *testing.T) {
	assert.Equal(t, "null", Generate(nil))
	assert.Equal(t, `"x"`, Generate([]Node{&Text{Value: "x"}}))
	assert.Equal(t, "(a)", Generate([]Node{&Expression{Code: "a"}}))
	assert.Equal(t, `["x", (a)]`, Generate([]Node{&Text{Value: "x"}, &Expression{Code: "a"}}))
	assert.Equal(t, "(a)", Generate([]Node{&Text{Value: "   "}, &Expression{Code: "a"}}))
}

func TestNormalizeSpace(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"   ":           " ",
		"a":             "a",
		"  a  b  ":      " a b ",
		"a\n\tb":        "a b",
		"\na":           " a",
		"a\u00a0":       "a ",
		"one two three": "one two three",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, normalizeSpace(in), "input %q", in)
	}
}

func TestIsEventHandler(t *testing.T) {
	for _, name := range []string{"onClick", "onclick", "on:click", "@click", "bind:value"} {
		assert.True(t, IsEventHandler(name), name)
	}
	for _, name := range []string{"on", "@", "on:", "class", "data-id", "xlink:href", "xml:lang"} {
		assert.False(t, IsEventHandler(name), name)
	}
}
