package tree

import (
	"fmt"
	"strconv"

	"github.com/arthur-debert/jsonstore/pkg/keypath"
)

// Get returns the node at path, or nil when any level of the path is
// missing or cannot be descended into. An empty path returns root.
//
// When root is a mapping holding path itself as a key, that entry wins over
// nested resolution.
func Get(root *Node, path string) *Node {
	if path == "" {
		return root
	}
	if v, ok := root.Map().Get(path); ok {
		return v
	}
	return walk(root, keypath.Split(path))
}

func walk(n *Node, segments []string) *Node {
	cur := n
	for _, seg := range segments {
		cur = child(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// child descends one level. Sequences are indexed by decimal segments.
func child(n *Node, seg string) *Node {
	switch n.Kind() {
	case Mapping:
		v, _ := n.m.Get(seg)
		return v
	case Sequence:
		idx, ok := index(seg, len(n.items))
		if !ok {
			return nil
		}
		return n.items[idx]
	case Null, Bool, Number, String:
		return nil
	}
	return nil
}

func index(seg string, length int) (int, bool) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= length || strconv.Itoa(idx) != seg {
		return 0, false
	}
	return idx, true
}

// Set stores value at path below root, which must be a mapping. Every
// intermediate level that is missing or is not a mapping is replaced by a
// new empty mapping. A nil value is stored as null.
func Set(root *Node, path string, value *Node) error {
	m := root.Map()
	if m == nil {
		return fmt.Errorf("cannot set %q: root is a %v, not a mapping", path, root.Kind())
	}
	if path == "" {
		return fmt.Errorf("cannot set an empty path")
	}
	if m.Has(path) {
		m.Set(path, value)
		return nil
	}

	segments := keypath.Split(path)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m.Get(seg)
		if !ok || next.Kind() != Mapping {
			next = NewMapping(nil)
			m.Set(seg, next)
		}
		m = next.m
	}
	m.Set(segments[len(segments)-1], value)
	return nil
}

// Has reports whether Get finds a node at path. A stored null is present.
func Has(root *Node, path string) bool {
	return Get(root, path) != nil
}

// HasOwn reports whether the last level of path is an own entry of its
// parent: a key of a mapping or an in-range index of a sequence.
func HasOwn(root *Node, path string) bool {
	if path == "" {
		return false
	}
	if root.Map().Has(path) {
		return true
	}
	parent, last, _ := keypath.Parent(path)
	p := walk(root, parent)
	switch p.Kind() {
	case Mapping:
		return p.m.Has(last)
	case Sequence:
		_, ok := index(last, len(p.items))
		return ok
	default:
		return false
	}
}

// Del removes the entry at path and reports whether anything was removed.
// Only mapping entries are removed; sequence elements stay in place.
func Del(root *Node, path string) bool {
	if path == "" {
		return false
	}
	m := root.Map()
	if m.Has(path) {
		return m.Delete(path)
	}
	parent, last, _ := keypath.Parent(path)
	p := walk(root, parent)
	if p.Kind() != Mapping {
		return false
	}
	return p.m.Delete(last)
}

// Union merges values into the sequence at path and stores the result.
//
// The current value counts as an empty sequence when absent and as a
// one-element sequence when it is not a sequence. Sequence arguments are
// flattened one level. Duplicate scalars are dropped, keeping the first
// occurrence; mappings and sequences are always kept.
func Union(root *Node, path string, values ...*Node) error {
	var merged []*Node
	switch cur := Get(root, path); cur.Kind() {
	case Sequence:
		merged = append(merged, cur.items...)
	default:
		if cur != nil {
			merged = append(merged, cur)
		}
	}
	for _, v := range values {
		if v.Kind() == Sequence {
			merged = append(merged, v.items...)
			continue
		}
		merged = append(merged, v)
	}

	out := make([]*Node, 0, len(merged))
	for _, v := range merged {
		if v == nil {
			v = NewNull()
		}
		if v.IsScalar() && containsScalar(out, v) {
			continue
		}
		out = append(out, v)
	}
	return Set(root, path, NewSequence(out...))
}

func containsScalar(items []*Node, v *Node) bool {
	for _, it := range items {
		if it.IsScalar() && Equal(it, v) {
			return true
		}
	}
	return false
}

// Clone deep-copies mappings and sequences. Scalar nodes are immutable and
// shared with the original.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case Mapping:
		m := NewMap()
		n.m.Range(func(k string, v *Node) bool {
			m.Set(k, Clone(v))
			return true
		})
		return NewMapping(m)
	case Sequence:
		items := make([]*Node, len(n.items))
		for i, it := range n.items {
			items[i] = Clone(it)
		}
		return &Node{kind: Sequence, items: items}
	case Null, Bool, Number, String:
		return n
	}
	panic(fmt.Sprintf("tree: unhandled kind %v", n.kind))
}
