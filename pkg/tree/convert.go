package tree

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromValue converts a Go value into a node.
//
// Nodes and maps are deep-copied with Clone, so the result never aliases
// containers the caller still holds. Plain Go values (nil,
// bool, numbers, json.Number, string, map[string]any, []any) are converted
// directly; keys of Go maps are sorted since Go maps carry no order. Any
// other value goes through encoding/json, so structs keep their field order
// and honour their json tags.
func FromValue(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case *Node:
		if x == nil {
			return NewNull(), nil
		}
		return Clone(x), nil
	case *Map:
		return Clone(NewMapping(x)), nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case float64:
		return NewNumber(x), nil
	case float32:
		return NewNumber(float64(x)), nil
	case int:
		return NewNumber(float64(x)), nil
	case int8:
		return NewNumber(float64(x)), nil
	case int16:
		return NewNumber(float64(x)), nil
	case int32:
		return NewNumber(float64(x)), nil
	case int64:
		return NewNumber(float64(x)), nil
	case uint:
		return NewNumber(float64(x)), nil
	case uint8:
		return NewNumber(float64(x)), nil
	case uint16:
		return NewNumber(float64(x)), nil
	case uint32:
		return NewNumber(float64(x)), nil
	case uint64:
		return NewNumber(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return NewNumber(f), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			child, err := FromValue(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m.Set(k, child)
		}
		return NewMapping(m), nil
	case []any:
		items := make([]*Node, len(x))
		for i, it := range x {
			child, err := FromValue(it)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = child
		}
		return NewSequence(items...), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T: %w", v, err)
	}
	return Decode(data)
}

// MustFromValue is like FromValue but panics on error.
func MustFromValue(v any) *Node {
	n, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return n
}
