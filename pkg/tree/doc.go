// Package tree holds the in-memory document of a store.
//
// A document is a tree of *Node values. Every node has exactly one Kind:
// Null, Bool, Number, String, Mapping or Sequence. Mappings keep their keys
// in insertion order so that a document written to disk reads back with the
// same layout.
//
// A nil *Node means "undefined": the location does not exist. A node of
// kind Null is a present JSON null. Get, Has and HasOwn rely on this
// distinction.
//
// The path operations (Get, Set, Has, HasOwn, Del, Union) address nodes
// with dot paths parsed by package keypath. A mapping key that literally
// equals the whole path string takes precedence over nested resolution.
package tree
