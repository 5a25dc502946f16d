// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// Arena provides monotonic, append-only storage for the byte slices a
// parse needs to keep beyond the lifetime of the caller's input buffer
// (spec §4.2). It never frees individual allocations; the whole thing is
// dropped when the enclosing Demangle call returns.
type Arena struct {
	bytes [][]byte
}

// AllocBytes copies src into arena-owned storage and returns the copy. The
// parser uses this for every byte slice a node needs to outlive the
// Cursor's view of the caller's buffer.
func (a *Arena) AllocBytes(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	a.bytes = append(a.bytes, out)
	return out
}

// AllocString is AllocBytes for the common case of wanting a Go string
// back instead of a []byte.
func (a *Arena) AllocString(src []byte) string {
	return string(a.AllocBytes(src))
}

// Node is the marker every arena-interned value implements. Each concrete
// node also reports its NodeKind; Downcast itself decides legality with a
// Go type assertion on the stored value, not by comparing NodeKinds.
type Node interface {
	nodeKind() NodeKind
}

// TypeNode is the marker interface for the Type sub-kind: PrimitiveType,
// FunctionSignature, ThunkSignature, PointerType, TagType, ArrayType,
// CustomType.
type TypeNode interface {
	Node
	isType()
	qualifiers() Qualifiers
	appendQualifiers(Qualifiers)
	setQualifiers(Qualifiers)
}

// IdentifierNode is the marker interface for the Identifier sub-kind.
type IdentifierNode interface {
	Node
	isIdentifier()
}

// SymbolNode is the marker interface for the Symbol sub-kind.
type SymbolNode interface {
	Node
	isSymbol()
}

// Interner is a single append-only vector of tagged node storage. Handles
// are indices into it, never pointers, so the node graph can only ever
// reference earlier entries: cycles are structurally impossible (spec
// §5, §9).
type Interner struct {
	nodes []Node
}

// Handle is a lightweight, Copy-able reference to a node of (expected)
// kind T. Upcasting to a broader marker interface (TypeNode, Node, ...)
// is always valid and free; narrowing back down is a runtime-checked
// Downcast.
type Handle[T Node] struct {
	// idx is one past the node's position in the interner, so the zero
	// Handle is the absent one.
	idx int32
}

// NoHandle returns the zero (absent) handle for T.
func NoHandle[T Node]() Handle[T] {
	return Handle[T]{}
}

// Valid reports whether h refers to an interned node.
func (h Handle[T]) Valid() bool {
	return h.idx > 0
}

// Intern appends n to the interner and returns a handle to it.
func Intern[T Node](in *Interner, n T) Handle[T] {
	in.nodes = append(in.nodes, n)
	return Handle[T]{idx: int32(len(in.nodes))}
}

// Resolve dereferences h. It panics if h is invalid; callers must check
// Valid() first when the handle is optional. This mirrors spec §3.1
// invariant 1: a handle's static kind is at least as narrow as the
// stored node, so Resolve never needs a runtime check for a handle that
// was produced by Intern or a successful Downcast/Upcast.
func Resolve[T Node](in *Interner, h Handle[T]) T {
	return in.nodes[h.idx-1].(T)
}

// upcastNode widens h to the universal Node handle, the shape NodeArray
// and template-parameter-list items are stored in.
func (h Handle[T]) upcastNode() Handle[Node] {
	return Upcast[Node](h)
}

// Upcast widens a handle to a broader marker interface (e.g.
// Handle[*PointerType] -> Handle[TypeNode]). Always valid: a narrower
// kind is always assignable to a broader one.
func Upcast[To Node, From Node](h Handle[From]) Handle[To] {
	return Handle[To]{idx: h.idx}
}

// Downcast narrows h to a more specific kind, checking the interner's
// runtime discriminant. It is the only fallible handle conversion (spec
// §3.1 invariant 1: "narrower downcasts are guarded by a runtime
// discriminant check").
func Downcast[To Node, From Node](in *Interner, h Handle[From]) (Handle[To], bool) {
	if !h.Valid() {
		return NoHandle[To](), false
	}
	if _, ok := in.nodes[h.idx-1].(To); !ok {
		return NoHandle[To](), false
	}
	return Handle[To]{idx: h.idx}, true
}
