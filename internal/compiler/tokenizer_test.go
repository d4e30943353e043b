package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(kind TokenKind, value string) Token {
	return Token{Kind: kind, Value: value}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []Token
	}{
		{
			name:     "empty input",
			source:   "",
			expected: []Token{tok(TokenEOF, "")},
		},
		{
			name:   "element with quoted attribute",
			source: `<div class="map">hi</div>`,
			expected: []Token{
				tok(TokenTagOpen, "div"),
				tok(TokenAttrName, "class"),
				tok(TokenAttrValue, "map"),
				tok(TokenText, "hi"),
				tok(TokenTagClose, "div"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "brace attribute and boolean attribute",
			source: `<input value={count} disabled>`,
			expected: []Token{
				tok(TokenTagOpen, "input"),
				tok(TokenAttrName, "value"),
				tok(TokenExprOpen, ""),
				tok(TokenAttrValue, "count"),
				tok(TokenExprClose, ""),
				tok(TokenAttrName, "disabled"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "nested braces in attribute value",
			source: `<div style={{color: "}"}}/>`,
			expected: []Token{
				tok(TokenTagOpen, "div"),
				tok(TokenAttrName, "style"),
				tok(TokenExprOpen, ""),
				tok(TokenAttrValue, `{color: "}"}`),
				tok(TokenExprClose, ""),
				tok(TokenTagClose, "div"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "bare attribute value",
			source: `<td colspan=2 />`,
			expected: []Token{
				tok(TokenTagOpen, "td"),
				tok(TokenAttrName, "colspan"),
				tok(TokenAttrValue, "2"),
				tok(TokenTagClose, "td"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "self closing emits synthetic close",
			source: `<Card/>`,
			expected: []Token{
				tok(TokenTagOpen, "Card"),
				tok(TokenTagClose, "Card"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "markup inside expression",
			source: `{xs.map(x => <li>{x}</li>)}`,
			expected: []Token{
				tok(TokenExprOpen, ""),
				tok(TokenText, "xs.map(x => "),
				tok(TokenTagOpen, "li"),
				tok(TokenExprOpen, ""),
				tok(TokenText, "x"),
				tok(TokenExprClose, ""),
				tok(TokenTagClose, "li"),
				tok(TokenText, ")"),
				tok(TokenExprClose, ""),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "unmatched close brace is text",
			source: `a } b`,
			expected: []Token{
				tok(TokenText, "a } b"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "less-than not followed by a letter is text",
			source: `1 < 2`,
			expected: []Token{
				tok(TokenText, "1 < 2"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "unterminated quote runs to end",
			source: `<a href="/x`,
			expected: []Token{
				tok(TokenTagOpen, "a"),
				tok(TokenAttrName, "href"),
				tok(TokenAttrValue, "/x"),
				tok(TokenEOF, ""),
			},
		},
		{
			name:   "handler attribute names",
			source: `<b @click=go on:tap={tap}>`,
			expected: []Token{
				tok(TokenTagOpen, "b"),
				tok(TokenAttrName, "@click"),
				tok(TokenAttrValue, "go"),
				tok(TokenAttrName, "on:tap"),
				tok(TokenExprOpen, ""),
				tok(TokenAttrValue, "tap"),
				tok(TokenExprClose, ""),
				tok(TokenEOF, ""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.source))
		})
	}
}

func TestTokenizeAlwaysEndsWithSingleEOF(t *testing.T) {
	inputs := []string{
		"", "<", "</", "{", "}", "{{{", "<div", `<a b="`, `<a b={`, `<a b={"}`, "<<>>", "\x00",
	}
	for _, in := range inputs {
		tokens := Tokenize(in)
		require.NotEmpty(t, tokens, "input %q", in)
		assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Kind, "input %q", in)
		for _, tk := range tokens[:len(tokens)-1] {
			assert.NotEqual(t, TokenEOF, tk.Kind, "input %q", in)
		}
	}
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "EOF", tok(TokenEOF, "").String())
	assert.Equal(t, `TagOpen("div")`, tok(TokenTagOpen, "div").String())
	assert.Equal(t, `Text("abcdefghijklmnopqrstu...")`, tok(TokenText, "abcdefghijklmnopqrstuvwxyz").String())
	assert.Equal(t, "TokenKind(42)", TokenKind(42).String())
}
