package tree

import (
	"fmt"
	"math"
)

// Kind identifies which variant a Node holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Mapping
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Node is one value of a document. Scalar nodes are immutable; mapping and
// sequence nodes are mutated in place by the path operations.
type Node struct {
	kind  Kind
	b     bool
	num   float64
	str   string
	m     *Map
	items []*Node
}

// NewNull returns a JSON null node.
func NewNull() *Node { return &Node{kind: Null} }

// NewBool returns a boolean node.
func NewBool(v bool) *Node { return &Node{kind: Bool, b: v} }

// NewNumber returns a number node.
func NewNumber(v float64) *Node { return &Node{kind: Number, num: v} }

// NewString returns a string node.
func NewString(v string) *Node { return &Node{kind: String, str: v} }

// NewMapping returns a mapping node backed by m. A nil m yields an empty
// mapping.
func NewMapping(m *Map) *Node {
	if m == nil {
		m = NewMap()
	}
	return &Node{kind: Mapping, m: m}
}

// NewSequence returns a sequence node holding items. Nil items are stored
// as null nodes.
func NewSequence(items ...*Node) *Node {
	seq := make([]*Node, len(items))
	for i, it := range items {
		if it == nil {
			it = NewNull()
		}
		seq[i] = it
	}
	return &Node{kind: Sequence, items: seq}
}

// Kind reports the variant held by n. A nil node reports Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

// IsScalar reports whether n is neither a mapping nor a sequence.
func (n *Node) IsScalar() bool {
	switch n.Kind() {
	case Mapping, Sequence:
		return false
	default:
		return true
	}
}

// AsBool returns the boolean held by n.
func (n *Node) AsBool() (bool, bool) {
	if n == nil || n.kind != Bool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the number held by n.
func (n *Node) AsNumber() (float64, bool) {
	if n == nil || n.kind != Number {
		return 0, false
	}
	return n.num, true
}

// AsString returns the string held by n.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.kind != String {
		return "", false
	}
	return n.str, true
}

// Map returns the mapping held by n, or nil.
func (n *Node) Map() *Map {
	if n == nil || n.kind != Mapping {
		return nil
	}
	return n.m
}

// Items returns the elements of a sequence node, or nil.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != Sequence {
		return nil
	}
	return n.items
}

// Len returns the number of entries of a mapping or sequence, 0 otherwise.
func (n *Node) Len() int {
	switch n.Kind() {
	case Mapping:
		return n.m.Len()
	case Sequence:
		return len(n.items)
	default:
		return 0
	}
}

// Interface converts n to plain Go values: map[string]any, []any, float64,
// string, bool or nil.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case Null:
		return nil
	case Bool:
		return n.b
	case Number:
		return n.num
	case String:
		return n.str
	case Mapping:
		out := make(map[string]any, n.m.Len())
		n.m.Range(func(k string, v *Node) bool {
			out[k] = v.Interface()
			return true
		})
		return out
	case Sequence:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.Interface()
		}
		return out
	}
	panic(fmt.Sprintf("tree: unhandled kind %v", n.kind))
}

// Equal reports whether a and b hold the same value. Mapping key order is
// ignored. Two nil nodes are equal; a nil node never equals a Null node.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		return a.num == b.num || (math.IsNaN(a.num) && math.IsNaN(b.num))
	case String:
		return a.str == b.str
	case Mapping:
		if a.m.Len() != b.m.Len() {
			return false
		}
		equal := true
		a.m.Range(func(k string, v *Node) bool {
			other, ok := b.m.Get(k)
			equal = ok && Equal(v, other)
			return equal
		})
		return equal
	case Sequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders n as compact JSON.
func (n *Node) String() string {
	data, err := Encode(n, 0)
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(data)
}
