// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// backrefCapacity is the hard, compile-time cap on each table (spec §3.2
// invariant 3, §4.3, §5).
const backrefCapacity = 10

// backrefs holds the two bounded memo tables for one parsing context:
// names (indexed by digits 0-9 in place of a name) and function
// parameter types (indexed by digits 0-9 in place of a parameter type).
// Entries never move once inserted within a given context (spec §3.2
// invariant 3).
type backrefs struct {
	names     [backrefCapacity]Handle[*Named]
	nameCount int

	types     [backrefCapacity]Handle[TypeNode]
	typeCount int
}

// saveState is the small Copy-able snapshot a template parameter list
// takes before parsing its body, so the outer context can be restored in
// O(1) afterward (spec §3.2 invariant 4, §4.3, §9).
type saveState struct {
	names     [backrefCapacity]Handle[*Named]
	nameCount int
	types     [backrefCapacity]Handle[TypeNode]
	typeCount int
}

func (b *backrefs) save() saveState {
	return saveState{
		names:     b.names,
		nameCount: b.nameCount,
		types:     b.types,
		typeCount: b.typeCount,
	}
}

func (b *backrefs) restore(s saveState) {
	b.names = s.names
	b.nameCount = s.nameCount
	b.types = s.types
	b.typeCount = s.typeCount
}

// reset clears both tables, as happens at the start of every top-level
// parse (spec §3.3).
func (b *backrefs) reset() {
	*b = backrefs{}
}

// nameIndex looks up backref digit i, returning false if it was never
// memorized or is out of range.
func (b *backrefs) nameIndex(i int) (Handle[*Named], bool) {
	if i < 0 || i >= b.nameCount {
		return NoHandle[*Named](), false
	}
	return b.names[i], true
}

// memorizeName records a "memorable" simple name, template instantiation,
// or anonymous-namespace key, deduplicating against existing entries
// (the reference implementation re-uses an existing slot rather than
// storing the same string twice, so a later identical name still
// resolves through the first index it got). Overflow is silent: the name
// simply cannot be back-referenced later (spec §3.2 invariant 3, §5).
func (b *backrefs) memorizeName(in *Interner, h Handle[*Named]) {
	name := Resolve(in, h)
	for i := 0; i < b.nameCount; i++ {
		if Resolve(in, b.names[i]).Name == name.Name {
			return
		}
	}
	if b.nameCount >= backrefCapacity {
		return
	}
	b.names[b.nameCount] = h
	b.nameCount++
}

// typeIndex looks up parameter-type backref digit i.
func (b *backrefs) typeIndex(i int) (Handle[TypeNode], bool) {
	if i < 0 || i >= b.typeCount {
		return NoHandle[TypeNode](), false
	}
	return b.types[i], true
}

// memorizeType records a parameter type whose encoding consumed more
// than one input byte (spec §4.3, §9 "single-byte types are not
// back-referenced"). Overflow of the type table is NOT silent: it is the
// one condition that raises TooManyBackRefs (spec §5).
func (b *backrefs) memorizeType(h Handle[TypeNode]) error {
	if b.typeCount >= backrefCapacity {
		return ErrTooManyBackRefs
	}
	b.types[b.typeCount] = h
	b.typeCount++
	return nil
}
