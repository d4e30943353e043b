package compiler

// Optimize merges runs of adjacent Text nodes, recursing into element
// children. Whitespace-only text is kept here and dropped by the generator,
// and expressions are never folded, which makes one pass a fixed point.
//
// The input tree is not modified; elements are copied when rebuilt.
func Optimize(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nodes
	}

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			if last, ok := lastText(out); ok {
				out[len(out)-1] = &Text{Value: last.Value + n.Value}
				continue
			}
			out = append(out, n)
		case *Element:
			el := *n
			el.Children = Optimize(n.Children)
			out = append(out, &el)
		default:
			out = append(out, n)
		}
	}
	return out
}

func lastText(nodes []Node) (*Text, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	t, ok := nodes[len(nodes)-1].(*Text)
	return t, ok
}
