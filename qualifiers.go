// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// Qualifiers is the cv-and-friends bitset every Type carries (spec §3.1).
// Multiple grammar productions may each contribute bits to the same type;
// precedence is "append" (bitwise OR), never "replace", except at the leaf
// production that first creates the type (spec §3.2 invariant 7).
type Qualifiers uint8

const (
	QualifierConst Qualifiers = 1 << iota
	QualifierVolatile
	QualifierFar
	QualifierHuge
	QualifierUnaligned
	QualifierRestrict
	QualifierPointer64
)

// Has reports whether every bit in want is set.
func (q Qualifiers) Has(want Qualifiers) bool { return q&want == want }

// PointerAffinity distinguishes *, &, and && on a PointerType.
type PointerAffinity int

const (
	AffinityPointer PointerAffinity = iota
	AffinityLValueReference
	AffinityRValueReference
)

// CallingConv is the ABI calling convention encoded in a function
// signature (spec §4.4.8). The zero value, CallingConvNone, is what a
// classifier byte that matches none of the known conventions leaves
// behind — the convention is simply omitted from output.
type CallingConv int

const (
	CallingConvNone CallingConv = iota
	CallingConvCdecl
	CallingConvPascal
	CallingConvThiscall
	CallingConvStdcall
	CallingConvFastcall
	CallingConvClrcall
	CallingConvEabi
	CallingConvVectorcall
	CallingConvSwift
	CallingConvSwiftAsync
)

// demangleCallingConvention classifies the calling-convention byte per
// spec §4.4.8.
func demangleCallingConvention(c *Cursor) (CallingConv, error) {
	b, ok := c.Consume()
	if !ok {
		return CallingConvNone, ErrInvalidCallingConvention
	}
	switch b {
	case 'A', 'B':
		return CallingConvCdecl, nil
	case 'C', 'D':
		return CallingConvPascal, nil
	case 'E', 'F':
		return CallingConvThiscall, nil
	case 'G', 'H':
		return CallingConvStdcall, nil
	case 'I', 'J':
		return CallingConvFastcall, nil
	case 'M', 'N':
		return CallingConvClrcall, nil
	case 'O', 'P':
		return CallingConvEabi, nil
	case 'Q':
		return CallingConvVectorcall, nil
	case 'S':
		return CallingConvSwift, nil
	case 'W':
		return CallingConvSwiftAsync, nil
	default:
		return CallingConvNone, nil
	}
}

// FuncClass is a bitset combining access, linkage, virtuality, and thunk
// kind for a function (spec §4.4.7, GLOSSARY).
type FuncClass uint16

const (
	FCPublic FuncClass = 1 << iota
	FCProtected
	FCPrivate
	FCGlobal
	FCStatic
	FCVirtual
	FCFar
	FCExternC
	FCNoParameterList
	FCVirtualThisAdjust
	FCVirtualThisAdjustEx
	FCStaticThisAdjust
)

func (f FuncClass) Has(want FuncClass) bool { return f&want == want }

// demangleFunctionClass classifies the function-class byte per spec
// §4.4.7: the private/protected/public x non-virtual/static/virtual/
// static-this-adjust x near/far matrix, plus Y/Z for global, 9 for
// extern-C no-parameter-list, and $ for the virtual-this-adjust family.
func demangleFunctionClass(c *Cursor) (FuncClass, error) {
	b, ok := c.Consume()
	if !ok {
		return 0, ErrInvalidFunctionClass
	}
	switch b {
	case '9':
		return FCExternC | FCNoParameterList, nil
	case 'A':
		return FCPrivate, nil
	case 'B':
		return FCPrivate | FCFar, nil
	case 'C':
		return FCPrivate | FCStatic, nil
	case 'D':
		return FCPrivate | FCStatic | FCFar, nil
	case 'E':
		return FCPrivate | FCVirtual, nil
	case 'F':
		return FCPrivate | FCVirtual | FCFar, nil
	case 'G':
		return FCPrivate | FCStaticThisAdjust, nil
	case 'H':
		return FCPrivate | FCStaticThisAdjust | FCFar, nil
	case 'I':
		return FCProtected, nil
	case 'J':
		return FCProtected | FCFar, nil
	case 'K':
		return FCProtected | FCStatic, nil
	case 'L':
		return FCProtected | FCStatic | FCFar, nil
	case 'M':
		return FCProtected | FCVirtual, nil
	case 'N':
		return FCProtected | FCVirtual | FCFar, nil
	case 'O':
		return FCProtected | FCVirtual | FCStaticThisAdjust, nil
	case 'P':
		return FCProtected | FCVirtual | FCStaticThisAdjust | FCFar, nil
	case 'Q':
		return FCPublic, nil
	case 'R':
		return FCPublic | FCFar, nil
	case 'S':
		return FCPublic | FCStatic, nil
	case 'T':
		return FCPublic | FCStatic | FCFar, nil
	case 'U':
		return FCPublic | FCVirtual, nil
	case 'V':
		return FCPublic | FCVirtual | FCFar, nil
	case 'W':
		return FCPublic | FCVirtual | FCStaticThisAdjust, nil
	case 'X':
		return FCPublic | FCVirtual | FCStaticThisAdjust | FCFar, nil
	case 'Y':
		return FCGlobal, nil
	case 'Z':
		return FCGlobal | FCFar, nil
	case '$':
		return demangleVirtualThisAdjustFunctionClass(c)
	default:
		return 0, ErrInvalidFunctionClass
	}
}

func demangleVirtualThisAdjustFunctionClass(c *Cursor) (FuncClass, error) {
	vflag := FCVirtualThisAdjust
	if c.ConsumeByte('R') {
		vflag |= FCVirtualThisAdjustEx
	}
	b, ok := c.Consume()
	if !ok {
		return 0, ErrInvalidFunctionClass
	}
	switch b {
	case '0':
		return FCPrivate | FCVirtual | vflag, nil
	case '1':
		return FCPrivate | FCVirtual | vflag | FCFar, nil
	case '2':
		return FCProtected | FCVirtual | vflag, nil
	case '3':
		return FCProtected | FCVirtual | vflag | FCFar, nil
	case '4':
		return FCPublic | FCVirtual | vflag, nil
	case '5':
		return FCPublic | FCVirtual | vflag | FCFar, nil
	default:
		return 0, ErrInvalidFunctionClass
	}
}

// TagKind distinguishes the four kinds of tag type (spec §4.4.3,
// GLOSSARY).
type TagKind int

const (
	TagClass TagKind = iota
	TagStruct
	TagUnion
	TagEnum
)

func (k TagKind) String() string {
	switch k {
	case TagClass:
		return "class"
	case TagStruct:
		return "struct"
	case TagUnion:
		return "union"
	case TagEnum:
		return "enum"
	default:
		return "?"
	}
}

// demangleTagKind classifies a T|U|V|W tag-type byte.
func demangleTagKind(b byte) (TagKind, bool) {
	switch b {
	case 'T':
		return TagUnion, true
	case 'U':
		return TagStruct, true
	case 'V':
		return TagClass, true
	case 'W':
		return TagEnum, true
	default:
		return 0, false
	}
}

// StorageClass distinguishes the five encoded-symbol storage classes for
// a Variable (spec §4.4.1, §4.4.7's digit table).
type StorageClass int

const (
	StoragePrivateStatic StorageClass = iota
	StorageProtectedStatic
	StoragePublicStatic
	StorageGlobal
	StorageFunctionLocalStatic
)

func demangleVariableStorageClass(c *Cursor) (StorageClass, error) {
	b, ok := c.Consume()
	if !ok {
		return 0, ErrInvalidVariableStorageClass
	}
	switch b {
	case '0':
		return StoragePrivateStatic, nil
	case '1':
		return StorageProtectedStatic, nil
	case '2':
		return StoragePublicStatic, nil
	case '3':
		return StorageGlobal, nil
	case '4':
		return StorageFunctionLocalStatic, nil
	default:
		return 0, ErrInvalidVariableStorageClass
	}
}

// CharKind drives the printed prefix of a decoded string literal (spec
// §4.4.9).
type CharKind int

const (
	CharChar CharKind = iota
	CharWchar
	CharChar16
	CharChar32
)

func (k CharKind) prefix() string {
	switch k {
	case CharWchar:
		return "L"
	case CharChar16:
		return "u"
	case CharChar32:
		return "U"
	default:
		return ""
	}
}

// QualMangleMode selects whether a type production expects a leading
// qualifier byte (spec §4.4.3).
type QualMangleMode int

const (
	// QualMangle always expects a qualifier byte.
	QualMangle QualMangleMode = iota
	// QualResult expects one only when a leading '?' is consumed.
	QualResult
	// QualDrop expects none at all.
	QualDrop
)

// demangleQualifiers classifies a cv-qualifier byte into (Qualifiers,
// isMember) per spec §4.4.3: Q/R/S/T are member (this-pointer)
// qualifiers, A/B/C/D are non-member.
func demangleQualifiers(c *Cursor) (Qualifiers, bool, error) {
	b, ok := c.Consume()
	if !ok {
		return 0, false, ErrInvalidQualifiers
	}
	switch b {
	case 'Q':
		return 0, true, nil
	case 'R':
		return QualifierConst, true, nil
	case 'S':
		return QualifierVolatile, true, nil
	case 'T':
		return QualifierConst | QualifierVolatile, true, nil
	case 'A':
		return 0, false, nil
	case 'B':
		return QualifierConst, false, nil
	case 'C':
		return QualifierVolatile, false, nil
	case 'D':
		return QualifierConst | QualifierVolatile, false, nil
	default:
		return 0, false, ErrInvalidQualifiers
	}
}

// demanglePointerCVQualifiers classifies the pointer classifier byte into
// (Qualifiers, PointerAffinity), recognizing the "$$Q" rvalue-reference
// spelling before falling back to the single-byte A/P/Q/R/S table (spec
// §4.4.3).
func demanglePointerCVQualifiers(c *Cursor) (Qualifiers, PointerAffinity, error) {
	if _, ok := c.ConsumeExact("$$Q"); ok {
		return 0, AffinityRValueReference, nil
	}
	b, ok := c.Consume()
	if !ok {
		return 0, 0, ErrInvalidPointerCVQualifiers
	}
	switch b {
	case 'A':
		return 0, AffinityLValueReference, nil
	case 'P':
		return 0, AffinityPointer, nil
	case 'Q':
		return QualifierConst, AffinityPointer, nil
	case 'R':
		return QualifierVolatile, AffinityPointer, nil
	case 'S':
		return QualifierConst | QualifierVolatile, AffinityPointer, nil
	default:
		return 0, 0, ErrInvalidPointerCVQualifiers
	}
}
