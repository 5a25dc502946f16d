// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// Parser holds the per-invocation mutable state a single top-level parse
// needs: the arena and interner it allocates into, and the backref tables
// it memorizes into as it goes (spec §5: all of this is discarded once
// Demangle returns).
type Parser struct {
	ar   *Arena
	in   *Interner
	bref backrefs
}

func newParser(ar *Arena, in *Interner) *Parser {
	return &Parser{ar: ar, in: in}
}

// parse is the grammar's top-level production (spec §4's entry point).
// Typeinfo names are the one demangled entity that starts with '.'
// instead of '?' — they're strings embedded in RTTI data, not symbols.
func (p *Parser) parse(c *Cursor) (Handle[SymbolNode], error) {
	if c.StartsWith(".") {
		return p.demangleTypeinfoName(c)
	}
	if c.StartsWith("??@") {
		return p.demangleMd5Name(c)
	}
	if !c.ConsumeByte('?') {
		return NoHandle[SymbolNode](), ErrUnexpectedEOF
	}
	// ?$ is a template instantiation; every other '?'-led name is an
	// operator or a special intrinsic.
	if sym, ok, err := p.demangleSpecialIntrinsic(c); err != nil {
		return NoHandle[SymbolNode](), err
	} else if ok {
		return sym, nil
	}
	return p.demangleDeclarator(c)
}

// demangleDeclarator handles the common case: a fully qualified symbol
// name followed by its variable or function encoding.
func (p *Parser) demangleDeclarator(c *Cursor) (Handle[SymbolNode], error) {
	qn, err := p.demangleFullyQualifiedSymbolName(c)
	if err != nil {
		return NoHandle[SymbolNode](), err
	}
	sym, err := p.demangleEncodedSymbol(c, qn)
	if err != nil {
		return NoHandle[SymbolNode](), err
	}
	setSymbolName(p.in, sym, qn)

	uqn := Resolve(p.in, qn).Unqualified()
	if !uqn.Valid() {
		return NoHandle[SymbolNode](), ErrInvalidDeclarator
	}
	if co, ok := Downcast[*ConversionOperator](p.in, uqn); ok {
		if !Resolve(p.in, co).TargetType.Valid() {
			return NoHandle[SymbolNode](), ErrInvalidDeclarator
		}
	}
	return sym, nil
}

// demangleEncodedSymbol dispatches on the byte after the qualified name:
// a storage-class digit means a variable, anything else a function.
func (p *Parser) demangleEncodedSymbol(c *Cursor, name Handle[*QualifiedName]) (Handle[SymbolNode], error) {
	b, ok := c.Peek()
	if !ok {
		return NoHandle[SymbolNode](), ErrInvalidEncodedSymbol
	}
	if b >= '0' && b <= '4' {
		sc, err := demangleVariableStorageClass(c)
		if err != nil {
			return NoHandle[SymbolNode](), err
		}
		v, err := p.demangleVariableEncoding(c, sc)
		if err != nil {
			return NoHandle[SymbolNode](), err
		}
		return Upcast[SymbolNode](v), nil
	}

	fn, err := p.demangleFunctionEncoding(c)
	if err != nil {
		return NoHandle[SymbolNode](), err
	}
	f := Resolve(p.in, fn)
	if uqn := Resolve(p.in, name).Unqualified(); uqn.Valid() {
		if co, ok := Downcast[*ConversionOperator](p.in, uqn); ok {
			Resolve(p.in, co).TargetType = signatureReturnType(p.in, f.Signature)
		}
	}
	return Upcast[SymbolNode](fn), nil
}

func setSymbolName(in *Interner, h Handle[SymbolNode], name Handle[*QualifiedName]) {
	switch s := Resolve(in, h).(type) {
	case *Variable:
		s.Name = name
	case *Function:
		s.Name = name
	case *SpecialTable:
		s.Name = name
	case *LocalStaticGuardVariable:
		s.Name = name
	case *EncodedStringLiteral:
		s.Name = name
	}
}

func signatureReturnType(in *Interner, h Handle[TypeNode]) Handle[TypeNode] {
	switch t := Resolve(in, h).(type) {
	case *FunctionSignature:
		return t.ReturnType
	case *ThunkSignature:
		return t.ReturnType
	default:
		return NoHandle[TypeNode]()
	}
}

// demangleTypeinfoName handles the leading-'.'  `.?AVFoo@@` spelling: a
// bare qualified type name synthesized into a variable symbol named
// "`RTTI Type Descriptor Name'" (non-goal: this is recognized, not a
// full RTTI container decode).
func (p *Parser) demangleTypeinfoName(c *Cursor) (Handle[SymbolNode], error) {
	if !c.ConsumeByte('.') {
		return NoHandle[SymbolNode](), ErrInvalidTypeinfoName
	}
	t, err := p.demangleType(c, QualResult)
	if err != nil {
		return NoHandle[SymbolNode](), err
	}
	if !c.IsEmpty() {
		return NoHandle[SymbolNode](), ErrInvalidTypeinfoName
	}
	v := &Variable{
		Name:    p.literalName("`RTTI Type Descriptor Name'"),
		HasType: true,
		Type:    t,
	}
	return Upcast[SymbolNode](Intern(p.in, v)), nil
}

// demangleMd5Name recognizes (but never decodes) an MD5-named symbol:
// `??@` + 32 hex characters + `@`, with an optional `??_R4@` suffix for
// an MD5-named complete object locator (non-goal (c)).
func (p *Parser) demangleMd5Name(c *Cursor) (Handle[SymbolNode], error) {
	start := c.Remaining()
	if _, ok := c.ConsumeExact("??@"); !ok {
		return NoHandle[SymbolNode](), ErrInvalidMd5Name
	}
	stop, ok := c.Find('@')
	if !ok {
		return NoHandle[SymbolNode](), ErrInvalidMd5Name
	}
	if _, ok := c.ConsumeN(stop + 1); !ok {
		return NoHandle[SymbolNode](), ErrInvalidMd5Name
	}
	c.ConsumeExact("??_R4@")

	raw := start[:len(start)-c.Len()]
	m := &Md5{Raw: p.ar.AllocString(raw)}
	return Upcast[SymbolNode](Intern(p.in, m)), nil
}

// literalName wraps a fixed literal string (e.g. "`vftable'") as a
// single-component QualifiedName, the shape every synthesized special
// symbol name needs.
func (p *Parser) literalName(lit string) Handle[*QualifiedName] {
	n := Intern(p.in, &Named{Name: lit})
	qn := &QualifiedName{Components: []Handle[IdentifierNode]{Upcast[IdentifierNode](n)}}
	return Intern(p.in, qn)
}

// demangleVariableEncoding parses a Variable's <type> <cvr-qualifiers>
// tail (spec §4.4.1): a member pointer variable additionally repeats (and
// discards) its class's fully qualified name, and applies its trailing
// qualifier byte to the pointee rather than the pointer itself.
func (p *Parser) demangleVariableEncoding(c *Cursor, sc StorageClass) (Handle[*Variable], error) {
	t, err := p.demangleType(c, QualDrop)
	if err != nil {
		return NoHandle[*Variable](), err
	}

	if ptr, ok := Downcast[*PointerType](p.in, t); ok {
		pt := Resolve(p.in, ptr)
		pt.appendQualifiers(demanglePointerExtQualifiers(c))
		extraQuals, _, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[*Variable](), err
		}
		if pt.IsMember {
			if _, err := p.demangleFullyQualifiedTypeName(c); err != nil {
				return NoHandle[*Variable](), err
			}
		}
		Resolve(p.in, pt.Pointee).appendQualifiers(extraQuals)
	} else {
		q, _, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[*Variable](), err
		}
		Resolve(p.in, t).setQualifiers(q)
	}

	v := &Variable{Storage: sc, HasType: true, Type: t}
	return Intern(p.in, v), nil
}

// demanglePointerExtQualifiers reads the optional E (__ptr64), I
// (__restrict), F (__unaligned) bytes following a pointer classifier
// (spec §4.4.3).
func demanglePointerExtQualifiers(c *Cursor) Qualifiers {
	var q Qualifiers
	if c.ConsumeByte('E') {
		q |= QualifierPointer64
	}
	if c.ConsumeByte('I') {
		q |= QualifierRestrict
	}
	if c.ConsumeByte('F') {
		q |= QualifierUnaligned
	}
	return q
}

// demangleFunctionEncoding parses a Function's class/this-adjustment/
// signature tail (spec §4.4.7).
func (p *Parser) demangleFunctionEncoding(c *Cursor) (Handle[*Function], error) {
	var extra FuncClass
	if _, ok := c.ConsumeExact("$$J0"); ok {
		extra |= FCExternC
	}
	if c.IsEmpty() {
		return NoHandle[*Function](), ErrInvalidFunctionEncoding
	}

	fc, err := demangleFunctionClass(c)
	if err != nil {
		return NoHandle[*Function](), err
	}
	fc |= extra

	var thisAdjustor int64
	isThunk := false
	switch {
	case fc.Has(FCStaticThisAdjust):
		isThunk = true
		v, err := demangleSigned(c)
		if err != nil {
			return NoHandle[*Function](), err
		}
		thisAdjustor = v
	case fc.Has(FCVirtualThisAdjust):
		isThunk = true
		if fc.Has(FCVirtualThisAdjustEx) {
			if _, err := demangleSigned(c); err != nil {
				return NoHandle[*Function](), err
			}
			if _, err := demangleSigned(c); err != nil {
				return NoHandle[*Function](), err
			}
		}
		if _, err := demangleSigned(c); err != nil {
			return NoHandle[*Function](), err
		}
		v, err := demangleSigned(c)
		if err != nil {
			return NoHandle[*Function](), err
		}
		thisAdjustor = v
	}

	var sig Handle[TypeNode]
	if fc.Has(FCNoParameterList) {
		fs := &FunctionSignature{}
		sig = Upcast[TypeNode](Intern(p.in, fs))
	} else {
		hasThisQuals := !fc.Has(FCGlobal) && !fc.Has(FCStatic)
		fs, err := p.demangleFunctionType(c, hasThisQuals)
		if err != nil {
			return NoHandle[*Function](), err
		}
		sig = Upcast[TypeNode](fs)
	}

	if isThunk {
		base := Resolve(p.in, sig).(*FunctionSignature)
		th := &ThunkSignature{FunctionSignature: *base, ThisAdjustor: thisAdjustor}
		sig = Upcast[TypeNode](Intern(p.in, th))
	}
	switch s := Resolve(p.in, sig).(type) {
	case *FunctionSignature:
		s.Class = fc
	case *ThunkSignature:
		s.Class = fc
	}

	fn := &Function{Signature: sig}
	return Intern(p.in, fn), nil
}
