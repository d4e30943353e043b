package compiler

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenEOF       TokenKind = iota // end of input
	TokenTagOpen                    // <name
	TokenTagClose                   // </name> or the synthetic close of <name/>
	TokenAttrName                   // attribute name inside an opening tag
	TokenAttrValue                  // attribute value inside an opening tag
	TokenExprOpen                   // {
	TokenExprClose                  // }
	TokenText                       // raw text between delimiters
)

var tokenNames = map[TokenKind]string{
	TokenEOF:       "EOF",
	TokenTagOpen:   "TagOpen",
	TokenTagClose:  "TagClose",
	TokenAttrName:  "AttrName",
	TokenAttrValue: "AttrValue",
	TokenExprOpen:  "ExprOpen",
	TokenExprClose: "ExprClose",
	TokenText:      "Text",
}

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// MarshalText lets debug artifacts print kinds by name.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is a positionless lexical token. Tag tokens carry the tag name,
// attribute and text tokens carry their literal content.
type Token struct {
	Kind  TokenKind `yaml:"kind"`
	Value string    `yaml:"value,omitempty"`
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Kind.String()
	}
	lit := t.Value
	if len(lit) > 24 {
		lit = lit[:21] + "..."
	}
	return fmt.Sprintf("%s(%q)", t.Kind, lit)
}
