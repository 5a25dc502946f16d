// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// NodeKind names the concrete kind of an interned node. Handle downcasts
// do not consult it; Downcast uses a Go type assertion instead.
type NodeKind int

const (
	KindPrimitiveType NodeKind = iota
	KindFunctionSignature
	KindThunkSignature
	KindPointerType
	KindTagType
	KindArrayType
	KindCustomType

	KindNamed
	KindIntrinsicFunction
	KindLiteralOperator
	KindLocalStaticGuard
	KindConversionOperator
	KindStructor
	KindDynamicStructor
	KindVcallThunk
	KindRttiBaseClassDescriptor

	KindNodeArray
	KindQualifiedName
	KindTemplateParameterReference
	KindIntegerLiteral

	KindMd5
	KindSpecialTable
	KindLocalStaticGuardVariable
	KindEncodedStringLiteral
	KindVariable
	KindFunction
)

// --- shared embeddable bases -------------------------------------------------

// typeBase supplies the Qualifiers bitset every Type carries plus the
// isType() marker.
type typeBase struct {
	Quals Qualifiers
}

func (*typeBase) isType() {}

func (t *typeBase) qualifiers() Qualifiers { return t.Quals }

func (t *typeBase) appendQualifiers(q Qualifiers) { t.Quals |= q }

func (t *typeBase) setQualifiers(q Qualifiers) { t.Quals = q }

// identBase supplies the optional template-parameter list every
// Identifier carries plus the isIdentifier() marker.
type identBase struct {
	TemplateParams Handle[*NodeArray]
}

func (identBase) isIdentifier() {}

type symBase struct{}

func (symBase) isSymbol() {}

// --- Type variants -----------------------------------------------------------

// PrimitiveKind enumerates the fixed vocabulary of single-byte/underscore
// primitive types (spec §4.4.3).
type PrimitiveKind int

const (
	PrimVoid PrimitiveKind = iota
	PrimBool
	PrimChar
	PrimSChar
	PrimUChar
	PrimChar8
	PrimChar16
	PrimChar32
	PrimShort
	PrimUShort
	PrimInt
	PrimUInt
	PrimLong
	PrimULong
	PrimLongLong
	PrimULongLong
	PrimInt128
	PrimUInt128
	PrimWchar
	PrimFloat
	PrimDouble
	PrimLongDouble
	PrimNullptr
	PrimVarArgs
)

// PrimitiveType is a leaf built-in type.
type PrimitiveType struct {
	typeBase
	Prim PrimitiveKind
}

func (*PrimitiveType) nodeKind() NodeKind { return KindPrimitiveType }

// RefQualifier is the &/&& suffix on a member function (spec §4.4.4).
type RefQualifier int

const (
	RefNone RefQualifier = iota
	RefLValue
	RefRValue
)

// FunctionSignature is a function type: the shared payload of a free
// function, a member function, and (embedded) a thunk (spec §3.1).
type FunctionSignature struct {
	typeBase
	CallConv     CallingConv
	Class        FuncClass
	RefQualifier RefQualifier
	ReturnType   Handle[TypeNode] // absent for a structor
	IsVariadic   bool
	Params       Handle[*NodeArray] // absent means "no parameter list was written"
	IsNoexcept   bool
}

func (*FunctionSignature) nodeKind() NodeKind { return KindFunctionSignature }

func (f *FunctionSignature) hasThisQuals() bool {
	return !f.Class.Has(FCGlobal) && !f.Class.Has(FCStatic)
}

// ThunkSignature is a FunctionSignature plus the this-adjustor offsets a
// virtual-call thunk applies before forwarding (spec §3.1).
type ThunkSignature struct {
	FunctionSignature
	ThisAdjustor int64
}

func (*ThunkSignature) nodeKind() NodeKind { return KindThunkSignature }

// TagType is a class/struct/union/enum named type.
type TagType struct {
	typeBase
	Tag  TagKind
	Name Handle[*QualifiedName]
}

func (*TagType) nodeKind() NodeKind { return KindTagType }

// PointerType is a pointer, reference, rvalue-reference, or member
// pointer to another type.
type PointerType struct {
	typeBase
	Affinity     PointerAffinity
	IsMember     bool
	ClassName    Handle[*QualifiedName] // only set when IsMember
	Pointee      Handle[TypeNode]
}

func (*PointerType) nodeKind() NodeKind { return KindPointerType }

// ArrayType is a (possibly multi-dimensional) array type.
type ArrayType struct {
	typeBase
	Dimensions  Handle[*NodeArray] // of *IntegerLiteral
	ElementType Handle[TypeNode]
}

func (*ArrayType) nodeKind() NodeKind { return KindArrayType }

// CustomType wraps a single unqualified type name introduced by the `?`
// custom-type classifier byte (spec §4.4.3).
type CustomType struct {
	typeBase
	Name Handle[*QualifiedName]
}

func (*CustomType) nodeKind() NodeKind { return KindCustomType }

// --- Identifier variants -----------------------------------------------------

// Named is a plain identifier: a simple name, a back-referenced name, or
// the `anonymous namespace' key.
type Named struct {
	identBase
	Name string
}

func (*Named) nodeKind() NodeKind { return KindNamed }

// IntrinsicOperatorKind enumerates the encoded-operator function
// identifiers (spec §4.4.2's leaf-identifier grammar; table grounded on
// the reference implementation's function-identifier-code dispatch).
type IntrinsicOperatorKind int

const (
	OpNew IntrinsicOperatorKind = iota
	OpDelete
	OpAssign
	OpRShift
	OpLShift
	OpNot
	OpEquals
	OpNotEquals
	OpSubscript
	OpPointer
	OpIncrement
	OpDecrement
	OpMinus
	OpPlus
	OpDereference
	OpBitwiseAnd
	OpMemberPointer
	OpDivide
	OpModulus
	OpLessThan
	OpLessEqual
	OpGreaterThan
	OpGreaterEqual
	OpComma
	OpCall
	OpBitwiseNot
	OpBitwiseXor
	OpBitwiseOr
	OpLogicalAnd
	OpLogicalOr
	OpTimesEqual
	OpPlusEqual
	OpMinusEqual
	OpDivEqual
	OpModEqual
	OpRShiftEqual
	OpLShiftEqual
	OpAndEqual
	OpOrEqual
	OpXorEqual
	OpVBaseDtor
	OpVecDelDtor
	OpDefaultCtorClosure
	OpScalarDelDtor
	OpVecCtorIter
	OpVecDtorIter
	OpVecVbaseCtorIter
	OpVdispMap
	OpEHVecCtorIter
	OpEHVecDtorIter
	OpEHVecVbaseCtorIter
	OpCopyCtorClosure
	OpLocalVftableCtorClosure
	OpArrayNew
	OpArrayDelete
	OpManVectorCtorIter
	OpManVectorDtorIter
	OpEHVectorCopyCtorIter
	OpEHVectorVbaseCopyCtorIter
	OpVectorCopyCtorIter
	OpVectorVbaseCopyCtorIter
	OpManVectorVbaseCopyCtorIter
	OpCoAwait
	OpSpaceship
)

var intrinsicOperatorSpelling = map[IntrinsicOperatorKind]string{
	OpNew: "operator new", OpDelete: "operator delete", OpAssign: "operator=",
	OpRShift: "operator>>", OpLShift: "operator<<", OpNot: "operator!",
	OpEquals: "operator==", OpNotEquals: "operator!=", OpSubscript: "operator[]",
	OpPointer: "operator->", OpIncrement: "operator++", OpDecrement: "operator--",
	OpMinus: "operator-", OpPlus: "operator+", OpDereference: "operator*",
	OpBitwiseAnd: "operator&", OpMemberPointer: "operator->*", OpDivide: "operator/",
	OpModulus: "operator%", OpLessThan: "operator<", OpLessEqual: "operator<=",
	OpGreaterThan: "operator>", OpGreaterEqual: "operator>=", OpComma: "operator,",
	OpCall: "operator()", OpBitwiseNot: "operator~", OpBitwiseXor: "operator^",
	OpBitwiseOr: "operator|", OpLogicalAnd: "operator&&", OpLogicalOr: "operator||",
	OpTimesEqual: "operator*=", OpPlusEqual: "operator+=", OpMinusEqual: "operator-=",
	OpDivEqual: "operator/=", OpModEqual: "operator%=", OpRShiftEqual: "operator>>=",
	OpLShiftEqual: "operator<<=", OpAndEqual: "operator&=", OpOrEqual: "operator|=",
	OpXorEqual: "operator^=",
	OpVBaseDtor:               "`vbase dtor'",
	OpVecDelDtor:              "`vector deleting dtor'",
	OpDefaultCtorClosure:      "`default ctor closure'",
	OpScalarDelDtor:           "`scalar deleting dtor'",
	OpVecCtorIter:             "`vector ctor iterator'",
	OpVecDtorIter:             "`vector dtor iterator'",
	OpVecVbaseCtorIter:        "`vector vbase ctor iterator'",
	OpVdispMap:                "`virtual displacement map'",
	OpEHVecCtorIter:           "`eh vector ctor iterator'",
	OpEHVecDtorIter:           "`eh vector dtor iterator'",
	OpEHVecVbaseCtorIter:      "`eh vector vbase ctor iterator'",
	OpCopyCtorClosure:         "`copy ctor closure'",
	OpLocalVftableCtorClosure: "`local vftable ctor closure'",
	OpArrayNew:                "operator new[]",
	OpArrayDelete:             "operator delete[]",
	OpManVectorCtorIter:       "`managed vector ctor iterator'",
	OpManVectorDtorIter:       "`managed vector dtor iterator'",
	OpEHVectorCopyCtorIter:      "`EH vector copy ctor iterator'",
	OpEHVectorVbaseCopyCtorIter: "`EH vector vbase copy ctor iterator'",
	OpVectorCopyCtorIter:        "`vector copy ctor iterator'",
	OpVectorVbaseCopyCtorIter:   "`vector vbase copy ctor iterator'",
	OpManVectorVbaseCopyCtorIter: "`managed vector vbase copy ctor iterator'",
	OpCoAwait:                 "operator co_await",
	OpSpaceship:               "operator<=>",
}

// IntrinsicFunction is an operator identifier encoded as `?<code>` (or
// `?_<code>` / `?__<code>`).
type IntrinsicFunction struct {
	identBase
	Op IntrinsicOperatorKind
}

func (*IntrinsicFunction) nodeKind() NodeKind { return KindIntrinsicFunction }

// LiteralOperator is a user-defined literal operator name, `operator
// ""name`.
type LiteralOperator struct {
	identBase
	Name string
}

func (*LiteralOperator) nodeKind() NodeKind { return KindLiteralOperator }

// LocalStaticGuard is the `?_B` identifier guarding a function-local
// static's initialization.
type LocalStaticGuard struct {
	identBase
	ScopeIndex int
	IsThread   bool
}

func (*LocalStaticGuard) nodeKind() NodeKind { return KindLocalStaticGuard }

// ConversionOperator is `operator <type>`; TargetType is back-filled from
// the enclosing function's return type once it is known (spec §4.4.1).
type ConversionOperator struct {
	identBase
	TargetType Handle[TypeNode]
}

func (*ConversionOperator) nodeKind() NodeKind { return KindConversionOperator }

// StructorKind distinguishes constructor from destructor.
type StructorKind int

const (
	StructorCtor StructorKind = iota
	StructorDtor
)

// Structor is a constructor or destructor identifier. Class is back-filled
// after the enclosing QualifiedName is built and equals its next-to-last
// component (spec §3.2 invariant 6).
type Structor struct {
	identBase
	Kind  StructorKind
	Class string
}

func (*Structor) nodeKind() NodeKind { return KindStructor }

// DynamicStructorKind distinguishes a dynamic initializer from a dynamic
// atexit destructor (`?__E` / `?__F`).
type DynamicStructorKind int

const (
	DynamicInitializer DynamicStructorKind = iota
	DynamicAtexitDestructor
)

// DynamicStructor names the symbol synthesized for a dynamically
// initialized (namespace-scope) variable or its atexit cleanup.
type DynamicStructor struct {
	identBase
	Kind   DynamicStructorKind
	Target Handle[SymbolNode]
}

func (*DynamicStructor) nodeKind() NodeKind { return KindDynamicStructor }

// VcallThunk names a `?_9` virtual-call thunk identifier.
type VcallThunk struct {
	identBase
	OffsetInVTable uint64
}

func (*VcallThunk) nodeKind() NodeKind { return KindVcallThunk }

// RttiBaseClassDescriptor names an `?_R1` base-class-descriptor symbol.
type RttiBaseClassDescriptor struct {
	identBase
	NVOffset     uint64
	VBPtrOffset  int64
	VBTableOffset uint64
	Flags        uint64
}

func (*RttiBaseClassDescriptor) nodeKind() NodeKind { return KindRttiBaseClassDescriptor }

// --- container / leaf nodes --------------------------------------------------

// NodeArray is an ordered sequence of generic node handles (parameter
// lists, template argument lists, array dimensions).
type NodeArray struct {
	Items []Handle[Node]
}

func (*NodeArray) nodeKind() NodeKind { return KindNodeArray }

// QualifiedName is an ordered sequence of Identifier components, leaf
// last (spec §3.2 invariant 2: stored innermost-last, printed joined by
// "::").
type QualifiedName struct {
	Components []Handle[IdentifierNode]
}

func (*QualifiedName) nodeKind() NodeKind { return KindQualifiedName }

// Unqualified returns the leaf (innermost, last) component.
func (q *QualifiedName) Unqualified() Handle[IdentifierNode] {
	if len(q.Components) == 0 {
		return NoHandle[IdentifierNode]()
	}
	return q.Components[len(q.Components)-1]
}

// TemplateParameterReference is a `$1`/`$H`/`$E?`-style template argument
// that names a symbol rather than a type or integer.
type TemplateParameterReference struct {
	Symbol       Handle[SymbolNode]
	HasAffinity  bool
	Affinity     PointerAffinity
	ThunkOffsets [3]int64
	NumOffsets   int
	IsMemberPointer bool
}

func (*TemplateParameterReference) nodeKind() NodeKind { return KindTemplateParameterReference }

// IntegerLiteral is a 64-bit magnitude plus sign, used for template
// integer arguments and array dimensions.
type IntegerLiteral struct {
	Value      uint64
	IsNegative bool
}

func (*IntegerLiteral) nodeKind() NodeKind { return KindIntegerLiteral }

// --- Symbol variants ----------------------------------------------------------

// Md5 is an `??@...@` MD5-named symbol, passed through verbatim (spec
// non-goal (c): MD5 names are recognized, never decoded).
type Md5 struct {
	symBase
	Raw string
}

func (*Md5) nodeKind() NodeKind { return KindMd5 }

// SpecialTable names a vftable/vbtable/local-vftable/RTTI-family symbol.
type SpecialTable struct {
	symBase
	Name       Handle[*QualifiedName]
	TargetName []Handle[*QualifiedName] // base class for a vftable "for `X'" clause, at most one
	Literal    string                   // the fixed literal, e.g. "`vftable'"
	Quals      Qualifiers
}

func (*SpecialTable) nodeKind() NodeKind { return KindSpecialTable }

// LocalStaticGuardVariable names a `?_B`-guarded variable's guard symbol.
type LocalStaticGuardVariable struct {
	symBase
	Name     Handle[*QualifiedName]
	IsVisible bool
}

func (*LocalStaticGuardVariable) nodeKind() NodeKind { return KindLocalStaticGuardVariable }

// EncodedStringLiteral is a decoded `??_C@` string literal.
type EncodedStringLiteral struct {
	symBase
	Name          Handle[*QualifiedName]
	Decoded       string
	Char          CharKind
	IsTruncated   bool
}

func (*EncodedStringLiteral) nodeKind() NodeKind { return KindEncodedStringLiteral }

// Variable is a mangled data symbol: a qualified name, a storage class,
// and (usually) a type.
type Variable struct {
	symBase
	Name    Handle[*QualifiedName]
	Storage StorageClass
	HasType bool
	Type    Handle[TypeNode]
	Quals   Qualifiers
}

func (*Variable) nodeKind() NodeKind { return KindVariable }

// Function is a mangled function symbol: a qualified name plus a
// signature (FunctionSignature or ThunkSignature).
type Function struct {
	symBase
	Name      Handle[*QualifiedName]
	Signature Handle[TypeNode]
}

func (*Function) nodeKind() NodeKind { return KindFunction }
