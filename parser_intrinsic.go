// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// specialIntrinsicKind enumerates the `?_X`/`?__X`-led symbol families
// that aren't plain qualified-name declarators (spec §4.4.10).
type specialIntrinsicKind int

const (
	sikNone specialIntrinsicKind = iota
	sikVftable
	sikVbtable
	sikVcallThunk
	sikTypeof
	sikLocalStaticGuard
	sikStringLiteralSymbol
	sikUdtReturning
	sikRttiTypeDescriptor
	sikRttiBaseClassDescriptor
	sikRttiBaseClassArray
	sikRttiClassHierarchyDescriptor
	sikRttiCompleteObjLocator
	sikLocalVftable
	sikDynamicInitializer
	sikDynamicAtexitDestructor
	sikLocalStaticThreadGuard
)

// consumeSpecialIntrinsicKind recognizes the fixed-literal prefixes that
// identify a special intrinsic symbol. The caller has already consumed
// the leading '?' shared with every other non-typeinfo symbol; every
// prefix starts with a second '?', which is put back when none matches.
func consumeSpecialIntrinsicKind(c *Cursor) specialIntrinsicKind {
	mark := c.Snapshot()
	if !c.ConsumeByte('?') {
		return sikNone
	}
	switch {
	case c.ConsumeExact2("_7"):
		return sikVftable
	case c.ConsumeExact2("_8"):
		return sikVbtable
	case c.ConsumeExact2("_9"):
		return sikVcallThunk
	case c.ConsumeExact2("_A"):
		return sikTypeof
	case c.ConsumeExact2("_B"):
		return sikLocalStaticGuard
	case c.ConsumeExact2("_C"):
		return sikStringLiteralSymbol
	case c.ConsumeExact2("_P"):
		return sikUdtReturning
	case c.ConsumeExact2("_R0"):
		return sikRttiTypeDescriptor
	case c.ConsumeExact2("_R1"):
		return sikRttiBaseClassDescriptor
	case c.ConsumeExact2("_R2"):
		return sikRttiBaseClassArray
	case c.ConsumeExact2("_R3"):
		return sikRttiClassHierarchyDescriptor
	case c.ConsumeExact2("_R4"):
		return sikRttiCompleteObjLocator
	case c.ConsumeExact2("_S"):
		return sikLocalVftable
	case c.ConsumeExact2("__E"):
		return sikDynamicInitializer
	case c.ConsumeExact2("__F"):
		return sikDynamicAtexitDestructor
	case c.ConsumeExact2("__J"):
		return sikLocalStaticThreadGuard
	default:
		c.Restore(mark)
		return sikNone
	}
}

// demangleSpecialIntrinsic is the (ok bool) dispatch parse() consults
// before falling back to the common qualified-name declarator path.
func (p *Parser) demangleSpecialIntrinsic(c *Cursor) (Handle[SymbolNode], bool, error) {
	mark := c.Snapshot()
	sik := consumeSpecialIntrinsicKind(c)
	if sik == sikNone {
		return NoHandle[SymbolNode](), false, nil
	}

	switch sik {
	case sikStringLiteralSymbol:
		lit, err := p.demangleStringLiteral(c)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](lit), true, nil

	case sikVftable, sikVbtable, sikLocalVftable, sikRttiCompleteObjLocator:
		t, err := p.demangleSpecialTableSymbolNode(c, sik)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](t), true, nil

	case sikVcallThunk:
		fn, err := p.demangleVcallThunkNode(c)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](fn), true, nil

	case sikLocalStaticGuard:
		v, err := p.demangleLocalStaticGuard(c, false)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](v), true, nil

	case sikLocalStaticThreadGuard:
		v, err := p.demangleLocalStaticGuard(c, true)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](v), true, nil

	case sikRttiTypeDescriptor:
		t, err := p.demangleType(c, QualResult)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		if _, ok := c.ConsumeExact("@8"); !ok {
			return NoHandle[SymbolNode](), false, ErrInvalidSpecialIntrinsic
		}
		if !c.IsEmpty() {
			return NoHandle[SymbolNode](), false, ErrInvalidSpecialIntrinsic
		}
		v := &Variable{Name: p.literalName("`RTTI Type Descriptor'"), HasType: true, Type: t}
		return Upcast[SymbolNode](Intern(p.in, v)), true, nil

	case sikRttiBaseClassArray:
		v, err := p.demangleUntypedVariable(c, "`RTTI Base Class Array'")
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](v), true, nil

	case sikRttiClassHierarchyDescriptor:
		v, err := p.demangleUntypedVariable(c, "`RTTI Class Hierarchy Descriptor'")
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](v), true, nil

	case sikRttiBaseClassDescriptor:
		v, err := p.demangleRttiBaseClassDescriptorNode(c)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](v), true, nil

	case sikDynamicInitializer:
		fn, err := p.demangleInitFiniStub(c, false)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](fn), true, nil

	case sikDynamicAtexitDestructor:
		fn, err := p.demangleInitFiniStub(c, true)
		if err != nil {
			return NoHandle[SymbolNode](), false, err
		}
		return Upcast[SymbolNode](fn), true, nil

	case sikTypeof, sikUdtReturning:
		// Neither is known to be emitted by any shipping toolchain; the
		// reference implementation leaves them unimplemented too (spec
		// non-goal: typeof/udt-returning intrinsics).
		c.Restore(mark)
		return NoHandle[SymbolNode](), false, ErrUnsupportedIntrinsic

	default:
		return NoHandle[SymbolNode](), false, ErrInvalidSpecialIntrinsic
	}
}

// demangleSpecialTableSymbolNode parses the vftable/vbtable/local-vftable/
// RTTI-complete-object-locator family: a name scope chain rooted at the
// fixed literal, a 6/7 disambiguator byte, qualifiers, and an optional
// "for `Base'" target-type clause (spec §4.4.10).
func (p *Parser) demangleSpecialTableSymbolNode(c *Cursor, sik specialIntrinsicKind) (Handle[*SpecialTable], error) {
	var literal string
	switch sik {
	case sikVftable:
		literal = "`vftable'"
	case sikVbtable:
		literal = "`vbtable'"
	case sikLocalVftable:
		literal = "`local vftable'"
	case sikRttiCompleteObjLocator:
		literal = "`RTTI Complete Object Locator'"
	default:
		return NoHandle[*SpecialTable](), ErrInvalidSpecialTableSymbolNode
	}

	ni := Intern(p.in, &Named{Name: literal})
	name, err := p.demangleNameScopeChain(c, Upcast[IdentifierNode](ni))
	if err != nil {
		return NoHandle[*SpecialTable](), err
	}

	if _, ok := c.ConsumeIf(func(b byte) bool { return b == '6' || b == '7' }); !ok {
		return NoHandle[*SpecialTable](), ErrInvalidSpecialTableSymbolNode
	}

	quals, _, err := demangleQualifiers(c)
	if err != nil {
		return NoHandle[*SpecialTable](), err
	}

	st := &SpecialTable{Name: name, Literal: literal, Quals: quals}
	if !c.ConsumeByte('@') {
		qn, err := p.demangleFullyQualifiedTypeName(c)
		if err != nil {
			return NoHandle[*SpecialTable](), err
		}
		st.TargetName = []Handle[*QualifiedName]{qn}
	}
	return Intern(p.in, st), nil
}

// demangleLocalStaticGuard parses the `?_B`/`?__J` local-static-guard
// variable: a name scope chain rooted at the guard identifier, a
// visibility byte, and (if anything remains) a scope index.
func (p *Parser) demangleLocalStaticGuard(c *Cursor, isThread bool) (Handle[*LocalStaticGuardVariable], error) {
	lsgi := Intern(p.in, &LocalStaticGuard{IsThread: isThread})
	name, err := p.demangleNameScopeChain(c, Upcast[IdentifierNode](lsgi))
	if err != nil {
		return NoHandle[*LocalStaticGuardVariable](), err
	}

	var isVisible bool
	if _, ok := c.ConsumeExact("4IA"); ok {
		isVisible = false
	} else if c.ConsumeByte('5') {
		isVisible = true
	} else {
		return NoHandle[*LocalStaticGuardVariable](), ErrInvalidLocalStaticGuard
	}

	if !c.IsEmpty() {
		idx, err := demangleUnsigned(c)
		if err != nil {
			return NoHandle[*LocalStaticGuardVariable](), ErrInvalidLocalStaticGuard
		}
		Resolve(p.in, lsgi).ScopeIndex = int(idx)
	}

	return Intern(p.in, &LocalStaticGuardVariable{Name: name, IsVisible: isVisible}), nil
}

// demangleUntypedVariable parses the fixed-literal-named, no-type RTTI
// auxiliary variables (base class array, class hierarchy descriptor): a
// name scope chain plus a trailing '8' sentinel byte.
func (p *Parser) demangleUntypedVariable(c *Cursor, literal string) (Handle[*Variable], error) {
	ni := Intern(p.in, &Named{Name: literal})
	name, err := p.demangleNameScopeChain(c, Upcast[IdentifierNode](ni))
	if err != nil {
		return NoHandle[*Variable](), err
	}
	if !c.ConsumeByte('8') {
		return NoHandle[*Variable](), ErrInvalidUntypedVariable
	}
	return Intern(p.in, &Variable{Name: name}), nil
}

// demangleRttiBaseClassDescriptorNode parses the `?_R1` base-class
// descriptor's four numeric fields, then its name scope chain and
// trailing '8' sentinel, the same shape demangleUntypedVariable uses.
func (p *Parser) demangleRttiBaseClassDescriptorNode(c *Cursor) (Handle[*Variable], error) {
	nvOffset, err := demangleUnsigned(c)
	if err != nil {
		return NoHandle[*Variable](), ErrInvalidRttiBaseClassDescriptor
	}
	vbptrOffset, err := demangleSigned(c)
	if err != nil {
		return NoHandle[*Variable](), ErrInvalidRttiBaseClassDescriptor
	}
	vbtableOffset, err := demangleUnsigned(c)
	if err != nil {
		return NoHandle[*Variable](), ErrInvalidRttiBaseClassDescriptor
	}
	flags, err := demangleUnsigned(c)
	if err != nil {
		return NoHandle[*Variable](), ErrInvalidRttiBaseClassDescriptor
	}

	rbcdn := Intern(p.in, &RttiBaseClassDescriptor{
		NVOffset:      nvOffset,
		VBPtrOffset:   vbptrOffset,
		VBTableOffset: vbtableOffset,
		Flags:         flags,
	})
	name, err := p.demangleNameScopeChain(c, Upcast[IdentifierNode](rbcdn))
	if err != nil {
		return NoHandle[*Variable](), err
	}
	if !c.ConsumeByte('8') {
		return NoHandle[*Variable](), ErrInvalidRttiBaseClassDescriptor
	}
	return Intern(p.in, &Variable{Name: name}), nil
}

// demangleVcallThunkNode parses a `?_9` virtual-call thunk: a name scope
// chain, a fixed "$B<offset>A" marker, and a no-parameter-list thunk
// signature carrying only a calling convention.
func (p *Parser) demangleVcallThunkNode(c *Cursor) (Handle[*Function], error) {
	vtin := Intern(p.in, &VcallThunk{})
	name, err := p.demangleNameScopeChain(c, Upcast[IdentifierNode](vtin))
	if err != nil {
		return NoHandle[*Function](), err
	}

	if _, ok := c.ConsumeExact("$B"); !ok {
		return NoHandle[*Function](), ErrInvalidVcallThunkNode
	}
	off, err := demangleUnsigned(c)
	if err != nil {
		return NoHandle[*Function](), ErrInvalidVcallThunkNode
	}
	Resolve(p.in, vtin).OffsetInVTable = off
	if !c.ConsumeByte('A') {
		return NoHandle[*Function](), ErrInvalidVcallThunkNode
	}

	cc, err := demangleCallingConvention(c)
	if err != nil {
		return NoHandle[*Function](), err
	}
	fs := &FunctionSignature{CallConv: cc, Class: FCNoParameterList}
	sig := Upcast[TypeNode](Intern(p.in, fs))

	return Intern(p.in, &Function{Name: name, Signature: sig}), nil
}

// demangleInitFiniStub parses a `?__E`/`?__F` dynamic-initializer or
// dynamic-atexit-destructor stub: an optional known-static-data-member
// marker, the wrapped declarator, and (for older, slightly malformed
// manglings) a lenient trailing-'@' count (spec §4.4.10).
func (p *Parser) demangleInitFiniStub(c *Cursor, isDestructor bool) (Handle[*Function], error) {
	isKnownStaticDataMember := c.ConsumeByte('?')

	sym, err := p.demangleDeclarator(c)
	if err != nil {
		return NoHandle[*Function](), err
	}

	switch s := Resolve(p.in, sym).(type) {
	case *Variable:
		if isKnownStaticDataMember {
			if _, ok := c.ConsumeExact("@@"); !ok {
				return NoHandle[*Function](), ErrInvalidInitFiniStub
			}
		} else if !c.ConsumeByte('@') {
			return NoHandle[*Function](), ErrInvalidInitFiniStub
		}

		fn, err := p.demangleFunctionEncoding(c)
		if err != nil {
			return NoHandle[*Function](), err
		}
		dsin := Intern(p.in, &DynamicStructor{Kind: dynamicStructorKindOf(isDestructor), Target: sym})
		name := Intern(p.in, &QualifiedName{Components: []Handle[IdentifierNode]{Upcast[IdentifierNode](dsin)}})
		Resolve(p.in, fn).Name = name
		return fn, nil

	case *Function:
		if isKnownStaticDataMember {
			return NoHandle[*Function](), ErrInvalidInitFiniStub
		}
		if !s.Name.Valid() {
			return NoHandle[*Function](), ErrInvalidInitFiniStub
		}
		target := Intern(p.in, &Function{Name: s.Name, Signature: s.Signature})
		dstn := Intern(p.in, &DynamicStructor{Kind: dynamicStructorKindOf(isDestructor), Target: Upcast[SymbolNode](target)})
		name := Intern(p.in, &QualifiedName{Components: []Handle[IdentifierNode]{Upcast[IdentifierNode](dstn)}})
		s.Name = name
		fn, _ := Downcast[*Function](p.in, sym)
		return fn, nil

	default:
		return NoHandle[*Function](), ErrInvalidInitFiniStub
	}
}

func dynamicStructorKindOf(isDestructor bool) DynamicStructorKind {
	if isDestructor {
		return DynamicAtexitDestructor
	}
	return DynamicInitializer
}
