package compiler

// lexer is the cursor state of a single Tokenize call.
type lexer struct {
	src    string
	pos    int
	depth  int // brace depth of markup-level {…}
	tokens []Token
}

// Tokenize converts template source into a flat token sequence terminated by
// exactly one TokenEOF. It never fails: malformed input degrades to a
// best-effort stream (unmatched "}" at depth zero is text, unterminated quotes
// run to the end of input).
//
// Markup nested inside {…} is tokenized like top-level markup, which is what
// lets the parser recover markup embedded in expressions.
func Tokenize(source string) []Token {
	l := &lexer{
		src:    source,
		tokens: make([]Token, 0, len(source)/8+1),
	}
	l.run()
	return l.tokens
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '<' && l.at(1) == '/':
			l.closingTag()
		case c == '<' && isLetter(l.at(1)):
			l.openingTag()
		case c == '{':
			l.pos++
			l.depth++
			l.emit(TokenExprOpen, "")
		case c == '}' && l.depth > 0:
			l.pos++
			l.depth--
			l.emit(TokenExprClose, "")
		default:
			l.text()
		}
	}
	l.emit(TokenEOF, "")
}

func (l *lexer) emit(kind TokenKind, value string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Value: value})
}

// at returns the byte at pos+offset, or 0 past the end of input.
func (l *lexer) at(offset int) byte {
	i := l.pos + offset
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

// atDelimiter reports whether the cursor sits on something other than text.
func (l *lexer) atDelimiter() bool {
	switch l.src[l.pos] {
	case '{':
		return true
	case '}':
		return l.depth > 0
	case '<':
		next := l.at(1)
		return next == '/' || isLetter(next)
	}
	return false
}

func (l *lexer) text() {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && !l.atDelimiter() {
		l.pos++
	}
	l.emit(TokenText, l.src[start:l.pos])
}

func (l *lexer) closingTag() {
	l.pos += 2 // "</"
	name := l.ident()
	// Skip to the closing '>' but never past the start of other markup.
	for i := l.pos; i < len(l.src); i++ {
		c := l.src[i]
		if c == '>' {
			l.pos = i + 1
			break
		}
		if c == '<' || c == '{' || c == '}' {
			break
		}
	}
	l.emit(TokenTagClose, name)
}

func (l *lexer) openingTag() {
	l.pos++ // "<"
	name := l.ident()
	l.emit(TokenTagOpen, name)

	for l.pos < len(l.src) {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return
		}
		c := l.src[l.pos]
		switch {
		case c == '>':
			l.pos++
			return
		case c == '/' && l.at(1) == '>':
			l.pos += 2
			// Self-closing: keep the stream tag-balanced for the parser.
			l.emit(TokenTagClose, name)
			return
		case isAttrStart(c):
			l.emit(TokenAttrName, l.attrName())
			l.skipSpace()
			if l.at(0) == '=' {
				l.pos++
				l.skipSpace()
				l.attrValue()
			}
		default:
			l.pos++
		}
	}
}

func (l *lexer) attrValue() {
	if l.pos >= len(l.src) {
		return
	}
	switch c := l.src[l.pos]; c {
	case '"', '\'':
		l.pos++
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != c {
			l.pos++
		}
		l.emit(TokenAttrValue, l.src[start:l.pos])
		if l.pos < len(l.src) {
			l.pos++
		}
	case '{':
		l.pos++
		start := l.pos
		depth := 1
	scan:
		for l.pos < len(l.src) {
			switch l.src[l.pos] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					break scan
				}
			case '"', '\'', '`':
				l.skipQuoted()
				continue
			}
			l.pos++
		}
		inner := l.src[start:l.pos]
		if l.pos < len(l.src) {
			l.pos++
		}
		l.emit(TokenExprOpen, "")
		l.emit(TokenAttrValue, inner)
		l.emit(TokenExprClose, "")
	default:
		start := l.pos
		for l.pos < len(l.src) {
			b := l.src[l.pos]
			if isSpace(b) || b == '>' || (b == '/' && l.at(1) == '>') {
				break
			}
			l.pos++
		}
		l.emit(TokenAttrValue, l.src[start:l.pos])
	}
}

// skipQuoted advances past a quoted literal starting at the cursor, honouring
// backslash escapes. An unterminated literal runs to the end of input.
func (l *lexer) skipQuoted() {
	quote := l.src[l.pos]
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case quote:
			l.pos++
			return
		}
		l.pos++
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

func (l *lexer) ident() string {
	start := l.pos
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) attrName() string {
	start := l.pos
	for l.pos < len(l.src) && (isNameChar(l.src[l.pos]) || l.src[l.pos] == '@') {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_' || c == '.' || c == ':'
}

func isAttrStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '@' || c == ':'
}
