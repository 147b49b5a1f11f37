package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) *Node {
	t.Helper()
	n, err := Decode([]byte(s))
	require.NoError(t, err)
	return n
}

func TestSetThenGet(t *testing.T) {
	values := []any{
		"text",
		42,
		3.5,
		true,
		nil,
		[]any{"x", 1.0, false},
		map[string]any{"nested": map[string]any{"deep": "value"}},
	}
	paths := []string{"a", "a.b", "a.b.c", `host\.name`, `servers.example\.com.port`}

	for _, path := range paths {
		for _, v := range values {
			root := NewMapping(nil)
			want := MustFromValue(v)
			require.NoError(t, Set(root, path, want))
			assert.True(t, Equal(want, Get(root, path)), "path %q value %v", path, v)
		}
	}
}

func TestGet(t *testing.T) {
	root := mustDecode(t, `{
		"a": {"b": {"c": 1}},
		"list": [10, {"name": "first"}],
		"x.y": "literal",
		"x": {"y": "nested"},
		"nothing": null
	}`)

	tests := []struct {
		name string
		path string
		want *Node
	}{
		{"whole tree", "", root},
		{"top level", "a", Get(root, "a")},
		{"nested", "a.b.c", NewNumber(1)},
		{"missing leaf", "a.b.d", nil},
		{"missing intermediate", "a.z.c", nil},
		{"through scalar", "a.b.c.d", nil},
		{"sequence index", "list.0", NewNumber(10)},
		{"inside sequence element", "list.1.name", NewString("first")},
		{"sequence out of range", "list.2", nil},
		{"sequence non numeric", "list.first", nil},
		{"literal key shadows nested", "x.y", NewString("literal")},
		{"escaped path reaches literal key", `x\.y`, NewString("literal")},
		{"stored null", "nothing", NewNull()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Get(root, tt.path)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.True(t, Equal(tt.want, got), "got %v", got)
		})
	}
}

func TestGetNilRoot(t *testing.T) {
	assert.Nil(t, Get(nil, "a.b"))
}

func TestSetOverwritesScalarsInTheWay(t *testing.T) {
	root := mustDecode(t, `{"a": "scalar", "b": [1, 2]}`)

	require.NoError(t, Set(root, "a.b.c", NewNumber(1)))
	require.NoError(t, Set(root, "b.0", NewString("x")))

	assert.Equal(t, `{"a":{"b":{"c":1}},"b":{"0":"x"}}`, root.String())
}

func TestSetKeepsSiblingsAndOrder(t *testing.T) {
	root := mustDecode(t, `{"z": 1, "a": {"m": 1, "b": 2}}`)

	require.NoError(t, Set(root, "a.m", NewNumber(3)))
	require.NoError(t, Set(root, "new", NewBool(true)))

	assert.Equal(t, `{"z":1,"a":{"m":3,"b":2},"new":true}`, root.String())
}

func TestSetEscapedKeyIsNotNested(t *testing.T) {
	root := NewMapping(nil)
	require.NoError(t, Set(root, `a\.b`, NewNumber(1)))

	assert.True(t, Equal(NewNumber(1), Get(root, `a\.b`)))
	assert.Nil(t, Get(root, "a"))
	assert.Equal(t, []string{"a.b"}, root.Map().Keys())
}

func TestSetErrors(t *testing.T) {
	assert.Error(t, Set(NewMapping(nil), "", NewNull()))
	assert.Error(t, Set(NewSequence(), "a", NewNull()))
	assert.Error(t, Set(nil, "a", NewNull()))
}

func TestHasAndHasOwn(t *testing.T) {
	root := mustDecode(t, `{"a": {"b": null}, "list": [1], "x.y": 1}`)

	tests := []struct {
		path       string
		wantHas    bool
		wantHasOwn bool
	}{
		{"a", true, true},
		{"a.b", true, true},
		{"a.c", false, false},
		{"a.b.c", false, false},
		{"list.0", true, true},
		{"list.1", false, false},
		{"x.y", true, true},
		{"missing.deep", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.wantHas, Has(root, tt.path), "Has")
			assert.Equal(t, tt.wantHasOwn, HasOwn(root, tt.path), "HasOwn")
		})
	}

	assert.False(t, HasOwn(root, ""))
}

func TestDel(t *testing.T) {
	root := mustDecode(t, `{"a": {"b": 1, "c": 2}, "x.y": 3, "x": {"y": 4}, "list": [1, 2]}`)

	assert.True(t, Del(root, "a.b"))
	assert.False(t, Has(root, "a.b"))
	assert.False(t, HasOwn(root, "a.b"))
	assert.True(t, Has(root, "a.c"), "sibling must survive")

	assert.True(t, Del(root, "x.y"), "literal key is removed first")
	assert.True(t, Equal(NewNumber(4), Get(root, "x.y")))

	assert.False(t, Del(root, "a.missing"))
	assert.False(t, Del(root, "nope.deep"))
	assert.False(t, Del(root, "list.0"), "sequence elements are not removed")
	assert.False(t, Del(root, ""))
}

func TestSetDelProperty(t *testing.T) {
	paths := []string{"k", "a.b", "a.b.c", `dotted\.key.inner`}

	for _, path := range paths {
		root := mustDecode(t, `{"sibling": 1, "a": {"other": 2}}`)
		require.NoError(t, Set(root, path, NewString("v")))
		require.True(t, Del(root, path))

		assert.False(t, Has(root, path), path)
		assert.False(t, HasOwn(root, path), path)
		assert.True(t, Equal(NewNumber(1), Get(root, "sibling")))
		assert.True(t, Equal(NewNumber(2), Get(root, "a.other")))
	}
}

func TestUnion(t *testing.T) {
	root := NewMapping(nil)

	require.NoError(t, Union(root, "tags", NewString("x"), NewString("y")))
	require.NoError(t, Union(root, "tags", NewString("y"), NewString("z")))

	assert.Equal(t, `["x","y","z"]`, Get(root, "tags").String())
}

func TestUnionWrapsAndFlattens(t *testing.T) {
	root := mustDecode(t, `{"one": "a", "obj": {"k": 1}}`)

	require.NoError(t, Union(root, "one", MustFromValue([]any{"b", "a"}), NewString("c")))
	assert.Equal(t, `["a","b","c"]`, Get(root, "one").String())

	require.NoError(t, Union(root, "obj", MustFromValue(map[string]any{"k": 1})))
	assert.Equal(t, `[{"k":1},{"k":1}]`, Get(root, "obj").String(), "mappings are never de-duplicated")

	require.NoError(t, Union(root, "nested.list", NewNumber(1), NewNumber(1), NewNull(), NewNull()))
	assert.Equal(t, `[1,null]`, Get(root, "nested.list").String())
}

func TestClone(t *testing.T) {
	orig := mustDecode(t, `{"a": {"b": [1, {"c": "d"}]}, "s": "text"}`)

	cp := Clone(orig)
	require.True(t, Equal(orig, cp))

	require.NoError(t, Set(cp, "a.b", NewString("changed")))
	assert.Equal(t, `[1,{"c":"d"}]`, Get(orig, "a.b").String())

	assert.Same(t, Get(orig, "s"), Get(cp, "s"), "scalars are shared")
	assert.NotSame(t, Get(orig, "a"), Get(cp, "a"))
	assert.Nil(t, Clone(nil))
}
