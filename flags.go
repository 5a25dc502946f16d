// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// Flags controls which parts of a declaration the printer emits. The zero
// value prints the fullest possible declaration; each bit suppresses one
// piece of it (spec §4.5).
type Flags uint32

// Display flag bits. Idempotent under the builder: ORing the same bit in
// twice is the same as ORing it in once (spec §8.1 property 3).
const (
	// NoCallingConvention suppresses the __cdecl/__stdcall/... token.
	NoCallingConvention Flags = 1 << iota
	// NoTagSpecifier suppresses the class/struct/union/enum tag keyword.
	NoTagSpecifier
	// NoAccessSpecifier suppresses public:/protected:/private:.
	NoAccessSpecifier
	// NoMemberType suppresses static/virtual/extern "C" on members.
	NoMemberType
	// NoReturnType suppresses a function's return type.
	NoReturnType
	// NoVariableType suppresses a variable symbol's type.
	NoVariableType
	// NoLeadingUnderscores strips the leading "__" from the calling-convention
	// keyword (__cdecl -> cdecl). Qualifier keywords such as __restrict and
	// __unaligned keep their underscores.
	NoLeadingUnderscores
	// NoMsKeywords drops the calling-convention keyword. Other MS-specific
	// spellings (__restrict, __unaligned, __int64) are still printed.
	NoMsKeywords
	// NoThisType suppresses this-qualifiers and the ref qualifier on member
	// functions.
	NoThisType
	// NameOnly emits just the qualified name and nothing else.
	NameOnly
)

// None is the default flag set: the fullest declaration the printer knows
// how to produce.
const None Flags = 0

// Has reports whether every bit in want is set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// With returns f with want's bits set. Applying the same flag twice (f.With(x).With(x))
// yields the same bitset as applying it once, since bitwise OR is idempotent.
func (f Flags) With(want Flags) Flags {
	return f | want
}
