package compiler

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Constructor is the name of the DOM-construction function the generated
// code calls: Constructor(tag, props, ...children).
const Constructor = "h"

// Generate renders nodes as a construction-call expression. No nodes yield
// "null", one node yields its expression and several yield an array.
func Generate(nodes []Node) string {
	codes := generateAll(nodes)
	switch len(codes) {
	case 0:
		return "null"
	case 1:
		return codes[0]
	default:
		return "[" + strings.Join(codes, ", ") + "]"
	}
}

// generateAll renders each node, dropping empty contributions.
func generateAll(nodes []Node) []string {
	codes := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if code := generateNode(n); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func generateNode(n Node) string {
	switch n := n.(type) {
	case *Text:
		return genText(n)
	case *Expression:
		return genExpression(n)
	case *Element:
		return genCall(n.Tag, n.Attrs, generateAll(n.Children))
	}
	return ""
}

func genText(t *Text) string {
	normalized := normalizeSpace(t.Value)
	if strings.TrimSpace(normalized) == "" {
		return ""
	}
	return quote(normalized)
}

func genExpression(e *Expression) string {
	return "(" + e.Code + ")"
}

func genCall(tag string, attrs []Attr, children []string) string {
	var b strings.Builder
	b.WriteString(Constructor)
	b.WriteByte('(')
	if isComponentTag(tag) {
		b.WriteString(tag)
	} else {
		b.WriteString(quote(tag))
	}
	b.WriteString(", ")
	b.WriteString(genProps(attrs))
	for _, child := range children {
		b.WriteString(", ")
		b.WriteString(child)
	}
	b.WriteByte(')')
	return b.String()
}

// genProps serializes attributes to an object literal in source order.
// Event handlers and brace expressions are emitted as code; everything else
// is a quoted literal.
func genProps(attrs []Attr) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, a := range attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(a.Name))
		b.WriteByte(':')
		b.WriteString(propValue(a))
	}
	b.WriteByte('}')
	return b.String()
}

func propValue(a Attr) string {
	if a.Kind == AttrBool || a.Value == "" {
		return "null"
	}
	inner, braced := unwrapBraces(a.Value)
	switch {
	case IsEventHandler(a.Name):
		if braced {
			return inner
		}
		return a.Value
	case a.Kind == AttrExpr:
		return a.Value
	case braced:
		return inner
	}
	return quote(a.Value)
}

// directivePrefixes mark attributes whose value is code: on:click,
// bind:value, use:tooltip. Other namespaced names such as xlink:href stay
// literal.
var directivePrefixes = []string{"on:", "bind:", "use:"}

// IsEventHandler reports whether an attribute name follows a handler naming
// convention: onClick, on:click, bind:value, @click.
func IsEventHandler(name string) bool {
	switch {
	case strings.HasPrefix(name, "@") && len(name) > 1:
		return true
	case strings.HasPrefix(name, "on") && len(name) > 2:
		return true
	}
	for _, prefix := range directivePrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

func unwrapBraces(v string) (string, bool) {
	if len(v) >= 2 && v[0] == '{' && v[len(v)-1] == '}' {
		return v[1 : len(v)-1], true
	}
	return v, false
}

// normalizeSpace collapses whitespace runs to one space, keeping a single
// space on each side that originally had whitespace.
func normalizeSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(fields, " ")
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		out = " " + out
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		out += " "
	}
	return out
}

// quote returns s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(b.String(), "\n")
}
