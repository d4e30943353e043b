package compiler

// Node is an element of the template tree: *Element, *Text or *Expression.
type Node interface {
	node()
}

// AttrKind distinguishes how an attribute value was written.
type AttrKind int

const (
	// AttrBool is a bare attribute with no value, e.g. <input disabled>.
	AttrBool AttrKind = iota
	// AttrString is a literal value, quoted or bare.
	AttrString
	// AttrExpr is a brace expression; Value holds the inner source text.
	AttrExpr
)

// String returns the kind name used in debug artifacts.
func (k AttrKind) String() string {
	switch k {
	case AttrBool:
		return "bool"
	case AttrString:
		return "string"
	case AttrExpr:
		return "expr"
	default:
		return "unknown"
	}
}

// MarshalText lets debug artifacts print kinds by name.
func (k AttrKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Attr is one attribute of an element. Order within Element.Attrs is the
// order of first appearance in the source.
type Attr struct {
	Name  string   `yaml:"name"`
	Value string   `yaml:"value,omitempty"`
	Kind  AttrKind `yaml:"kind"`
}

// Element is a markup element or, when Tag starts with an uppercase letter,
// a component reference.
type Element struct {
	Tag      string `yaml:"tag"`
	Attrs    []Attr `yaml:"attrs,omitempty"`
	Children []Node `yaml:"children,omitempty"`
}

// Text is raw text, not yet whitespace-normalized.
type Text struct {
	Value string `yaml:"text"`
}

// Expression is host-language source emitted verbatim. Markup nested inside
// the original braces has already been lowered to construction calls.
type Expression struct {
	Code string `yaml:"expr"`
}

func (*Element) node()    {}
func (*Text) node()       {}
func (*Expression) node() {}

// IsComponent reports whether the element references a user component.
func (e *Element) IsComponent() bool {
	return isComponentTag(e.Tag)
}

// SetAttr adds an attribute, replacing the value of an existing attribute of
// the same name in place.
func (e *Element) SetAttr(a Attr) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == a.Name {
			e.Attrs[i] = a
			return
		}
	}
	e.Attrs = append(e.Attrs, a)
}

func isComponentTag(tag string) bool {
	return tag != "" && tag[0] >= 'A' && tag[0] <= 'Z'
}
