package compiler

import "strings"

// parser holds the cursor over a token slice. The three parse routines are
// mutually recursive and share this state.
type parser struct {
	tokens []Token
	pos    int
}

// Parse builds a node tree from tokens. It never fails: stray tokens are
// skipped and unbalanced closing tags are ignored.
func Parse(tokens []Token) []Node {
	p := &parser{tokens: tokens}
	return p.parseNodes("", false)
}

func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(offset int) Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[i]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == TokenEOF
}

// parseNodes collects sibling nodes until the closing tag named stop (when
// hasStop) or the end of input.
func (p *parser) parseNodes(stop string, hasStop bool) []Node {
	var nodes []Node
	for !p.done() {
		tok := p.peek()
		switch tok.Kind {
		case TokenTagClose:
			p.next()
			if hasStop && tok.Value == stop {
				return nodes
			}
		case TokenTagOpen:
			nodes = append(nodes, p.parseElement())
		case TokenText:
			p.next()
			nodes = append(nodes, &Text{Value: tok.Value})
		case TokenExprOpen:
			nodes = append(nodes, p.parseExpr())
		default:
			p.next()
		}
	}
	return nodes
}

// parseElement consumes an opening tag, its attributes and its children up to
// the matching close.
func (p *parser) parseElement() *Element {
	el := &Element{Tag: p.next().Value}

attrs:
	for !p.done() {
		tok := p.peek()
		switch tok.Kind {
		case TokenAttrName:
			p.next()
			el.SetAttr(p.parseAttrValue(tok.Value))
		case TokenAttrValue:
			// A value with no name; nothing to attach it to.
			p.next()
		default:
			break attrs
		}
	}

	if voidElements[el.Tag] {
		if tok := p.peek(); tok.Kind == TokenTagClose && tok.Value == el.Tag {
			p.next()
		}
		return el
	}

	el.Children = p.parseNodes(el.Tag, true)
	return el
}

// voidElements never have children, so an unclosed <input> or <br> does not
// swallow its following siblings.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

func (p *parser) parseAttrValue(name string) Attr {
	switch p.peek().Kind {
	case TokenAttrValue:
		return Attr{Name: name, Value: p.next().Value, Kind: AttrString}
	case TokenExprOpen:
		if p.peekAt(1).Kind != TokenAttrValue {
			// Child expression content, not an attribute value.
			return Attr{Name: name, Kind: AttrBool}
		}
		p.next()
		value := p.next().Value
		if p.peek().Kind == TokenExprClose {
			p.next()
		}
		return Attr{Name: name, Value: value, Kind: AttrExpr}
	}
	return Attr{Name: name, Kind: AttrBool}
}

// parseExpr consumes a brace expression, including nested braces, and
// returns its source text. Markup found inside is parsed as an element and
// inlined as construction-call code.
func (p *parser) parseExpr() *Expression {
	p.next() // "{"
	var code strings.Builder
	depth := 1

	for !p.done() {
		tok := p.peek()
		switch tok.Kind {
		case TokenExprOpen:
			p.next()
			depth++
			code.WriteByte('{')
		case TokenExprClose:
			p.next()
			depth--
			if depth == 0 {
				return &Expression{Code: code.String()}
			}
			code.WriteByte('}')
		case TokenText:
			p.next()
			code.WriteString(tok.Value)
		case TokenTagOpen:
			code.WriteString(inline(p.parseElement()))
		default:
			p.next()
		}
	}
	return &Expression{Code: code.String()}
}

// inline renders a node parsed inside an expression directly to code.
func inline(n Node) string {
	switch n := n.(type) {
	case *Text:
		return genText(n)
	case *Expression:
		return genExpression(n)
	case *Element:
		children := make([]string, 0, len(n.Children))
		for _, child := range Optimize(n.Children) {
			if code := inline(child); code != "" {
				children = append(children, code)
			}
		}
		return genCall(n.Tag, n.Attrs, children)
	}
	return ""
}
