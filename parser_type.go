// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// demangleType dispatches on the classifier byte(s) at the cursor to one
// of the six Type productions (spec §4.4.3), then folds in any cv
// qualifiers the mode dictates.
func (p *Parser) demangleType(c *Cursor, qmm QualMangleMode) (Handle[TypeNode], error) {
	var quals Qualifiers
	switch qmm {
	case QualMangle:
		q, _, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[TypeNode](), err
		}
		quals = q
	case QualResult:
		if c.ConsumeByte('?') {
			q, _, err := demangleQualifiers(c)
			if err != nil {
				return NoHandle[TypeNode](), err
			}
			quals = q
		}
	case QualDrop:
	}

	if c.IsEmpty() {
		return NoHandle[TypeNode](), ErrInvalidType
	}

	var t Handle[TypeNode]
	var err error
	switch {
	case isTagType(c):
		h, e := p.demangleClassType(c)
		t, err = Upcast[TypeNode](h), e
	case isPointerType(c):
		switch isMemberPointer(c) {
		case 1:
			h, e := p.demangleMemberPointerType(c)
			t, err = Upcast[TypeNode](h), e
		case 0:
			h, e := p.demanglePointerType(c)
			t, err = Upcast[TypeNode](h), e
		default:
			return NoHandle[TypeNode](), ErrInvalidType
		}
	case isArrayType(c):
		h, e := p.demangleArrayType(c)
		t, err = Upcast[TypeNode](h), e
	case isFunctionType(c):
		switch {
		case c.ConsumeExact2("$$A8@@"):
			h, e := p.demangleFunctionType(c, true)
			t, err = Upcast[TypeNode](h), e
		case c.ConsumeExact2("$$A6"):
			h, e := p.demangleFunctionType(c, false)
			t, err = Upcast[TypeNode](h), e
		default:
			return NoHandle[TypeNode](), ErrInvalidType
		}
	case isCustomType(c):
		h, e := p.demangleCustomType(c)
		t, err = Upcast[TypeNode](h), e
	default:
		h, e := p.demanglePrimitiveType(c)
		t, err = Upcast[TypeNode](h), e
	}
	if err != nil {
		return NoHandle[TypeNode](), err
	}

	Resolve(p.in, t).appendQualifiers(quals)
	return t, nil
}

// isTagType, isPointerType, isMemberPointer, isArrayType, isFunctionType,
// and isCustomType are lookahead classifiers grounded on the reference
// implementation's own byte-pattern predicates; none of them consume.

func isTagType(c *Cursor) bool {
	b, ok := c.Peek()
	return ok && (b == 'T' || b == 'U' || b == 'V' || b == 'W')
}

func isArrayType(c *Cursor) bool {
	b, ok := c.Peek()
	return ok && b == 'Y'
}

func isCustomType(c *Cursor) bool {
	b, ok := c.Peek()
	return ok && b == '?'
}

func isFunctionType(c *Cursor) bool {
	return c.StartsWith("$$A8@@") || c.StartsWith("$$A6")
}

func isPointerType(c *Cursor) bool {
	if c.StartsWith("$$Q") {
		return true
	}
	b, ok := c.Peek()
	return ok && (b == 'A' || b == 'P' || b == 'Q' || b == 'R' || b == 'S')
}

// isMemberPointer returns 1 for a member pointer, 0 for a non-member
// pointer/reference, -1 when undecidable (the caller treats that as an
// error, matching the reference's Option<bool>::None).
func isMemberPointer(c *Cursor) int {
	look := NewCursor(c.Remaining())
	b, ok := look.Consume()
	if !ok {
		return -1
	}
	switch b {
	case '$', 'A':
		return 0
	case 'P', 'Q', 'R', 'S':
	default:
		return -1
	}

	if d, ok := look.Peek(); ok && d >= '0' && d <= '9' {
		look.Consume()
		switch d {
		case '6':
			return 0
		case '8':
			return 1
		default:
			return -1
		}
	}

	look.ConsumeByte('E')
	look.ConsumeByte('I')
	look.ConsumeByte('F')

	d, ok := look.Peek()
	if !ok {
		return -1
	}
	switch d {
	case 'A', 'B', 'C', 'D':
		return 0
	case 'Q', 'R', 'S', 'T':
		return 1
	default:
		return -1
	}
}

// ConsumeExact2 is a small helper around ConsumeExact that discards the
// captured slice; demangleType only needs the boolean.
func (c *Cursor) ConsumeExact2(lit string) bool {
	_, ok := c.ConsumeExact(lit)
	return ok
}

func (p *Parser) demanglePrimitiveType(c *Cursor) (Handle[*PrimitiveType], error) {
	var kind PrimitiveKind
	if _, ok := c.ConsumeExact("$$T"); ok {
		kind = PrimNullptr
	} else {
		b, ok := c.Consume()
		if !ok {
			return NoHandle[*PrimitiveType](), ErrInvalidPrimitiveType
		}
		switch b {
		case 'X':
			kind = PrimVoid
		case 'D':
			kind = PrimChar
		case 'C':
			kind = PrimSChar
		case 'E':
			kind = PrimUChar
		case 'F':
			kind = PrimShort
		case 'G':
			kind = PrimUShort
		case 'H':
			kind = PrimInt
		case 'I':
			kind = PrimUInt
		case 'J':
			kind = PrimLong
		case 'K':
			kind = PrimULong
		case 'M':
			kind = PrimFloat
		case 'N':
			kind = PrimDouble
		case 'O':
			kind = PrimLongDouble
		case '_':
			b2, ok := c.Consume()
			if !ok {
				return NoHandle[*PrimitiveType](), ErrInvalidPrimitiveType
			}
			switch b2 {
			case 'N':
				kind = PrimBool
			case 'J':
				kind = PrimLongLong
			case 'K':
				kind = PrimULongLong
			case 'W':
				kind = PrimWchar
			case 'Q':
				kind = PrimChar8
			case 'S':
				kind = PrimChar16
			case 'U':
				kind = PrimChar32
			default:
				return NoHandle[*PrimitiveType](), ErrInvalidPrimitiveType
			}
		default:
			return NoHandle[*PrimitiveType](), ErrInvalidPrimitiveType
		}
	}
	return Intern(p.in, &PrimitiveType{Prim: kind}), nil
}

func (p *Parser) demangleCustomType(c *Cursor) (Handle[*CustomType], error) {
	if !c.ConsumeByte('?') {
		return NoHandle[*CustomType](), ErrInvalidCustomType
	}
	id, err := p.demangleUnqualifiedTypeName(c, true)
	if err != nil {
		return NoHandle[*CustomType](), err
	}
	if !c.ConsumeByte('@') {
		return NoHandle[*CustomType](), ErrInvalidCustomType
	}
	qn := Intern(p.in, &QualifiedName{Components: []Handle[IdentifierNode]{id}})
	return Intern(p.in, &CustomType{Name: qn}), nil
}

func (p *Parser) demangleClassType(c *Cursor) (Handle[*TagType], error) {
	b, ok := c.Consume()
	if !ok {
		return NoHandle[*TagType](), ErrInvalidClassType
	}
	var tag TagKind
	switch b {
	case 'T':
		tag = TagUnion
	case 'U':
		tag = TagStruct
	case 'V':
		tag = TagClass
	case 'W':
		if !c.ConsumeByte('4') {
			return NoHandle[*TagType](), ErrInvalidClassType
		}
		tag = TagEnum
	default:
		return NoHandle[*TagType](), ErrInvalidClassType
	}

	name, err := p.demangleFullyQualifiedTypeName(c)
	if err != nil {
		return NoHandle[*TagType](), err
	}
	return Intern(p.in, &TagType{Tag: tag, Name: name}), nil
}

// demanglePointerType parses `E? <pointer-cv-qualifiers> <ext-qualifiers>
// <type>`; a pointer to a non-member function spells its pointee as `6`
// directly rather than going through the generic <type> production.
func (p *Parser) demanglePointerType(c *Cursor) (Handle[*PointerType], error) {
	quals, affinity, err := demanglePointerCVQualifiers(c)
	if err != nil {
		return NoHandle[*PointerType](), err
	}

	var pointee Handle[TypeNode]
	if c.ConsumeByte('6') {
		fs, err := p.demangleFunctionType(c, false)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		pointee = Upcast[TypeNode](fs)
	} else {
		quals |= demanglePointerExtQualifiers(c)
		t, err := p.demangleType(c, QualMangle)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		pointee = t
	}

	return Intern(p.in, &PointerType{Affinity: affinity, Pointee: pointee, typeBase: typeBase{Quals: quals}}), nil
}

func (p *Parser) demangleMemberPointerType(c *Cursor) (Handle[*PointerType], error) {
	quals, affinity, err := demanglePointerCVQualifiers(c)
	if err != nil {
		return NoHandle[*PointerType](), err
	}
	if affinity != AffinityPointer {
		return NoHandle[*PointerType](), ErrInvalidMemberPointerType
	}
	quals |= demanglePointerExtQualifiers(c)

	var className Handle[*QualifiedName]
	var pointee Handle[TypeNode]
	if c.ConsumeByte('8') {
		cn, err := p.demangleFullyQualifiedTypeName(c)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		fs, err := p.demangleFunctionType(c, true)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		className, pointee = cn, Upcast[TypeNode](fs)
	} else {
		pointeeQuals, isMember, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		if !isMember {
			return NoHandle[*PointerType](), ErrInvalidMemberPointerType
		}
		cn, err := p.demangleFullyQualifiedTypeName(c)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		t, err := p.demangleType(c, QualDrop)
		if err != nil {
			return NoHandle[*PointerType](), err
		}
		Resolve(p.in, t).setQualifiers(pointeeQuals)
		className, pointee = cn, t
	}

	return Intern(p.in, &PointerType{
		typeBase:  typeBase{Quals: quals},
		Affinity:  affinity,
		IsMember:  true,
		ClassName: className,
		Pointee:   pointee,
	}), nil
}

// demangleFunctionType parses a function's this-qualifiers (when
// hasThisQuals), calling convention, return type, parameter list, and
// throw specification (spec §4.4.4).
func (p *Parser) demangleFunctionType(c *Cursor, hasThisQuals bool) (Handle[*FunctionSignature], error) {
	fs := &FunctionSignature{}
	if hasThisQuals {
		fs.Quals = demanglePointerExtQualifiers(c)
		fs.RefQualifier = demangleFunctionRefQualifier(c)
		q, _, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[*FunctionSignature](), err
		}
		fs.Quals |= q
	}

	cc, err := demangleCallingConvention(c)
	if err != nil {
		return NoHandle[*FunctionSignature](), err
	}
	fs.CallConv = cc

	if !c.ConsumeByte('@') {
		rt, err := p.demangleType(c, QualResult)
		if err != nil {
			return NoHandle[*FunctionSignature](), err
		}
		fs.ReturnType = rt
	}

	params, variadic, err := p.demangleFunctionParameterList(c)
	if err != nil {
		return NoHandle[*FunctionSignature](), err
	}
	fs.Params, fs.IsVariadic = params, variadic

	noexcept, err := demangleThrowSpecification(c)
	if err != nil {
		return NoHandle[*FunctionSignature](), err
	}
	fs.IsNoexcept = noexcept

	return Intern(p.in, fs), nil
}

func demangleFunctionRefQualifier(c *Cursor) RefQualifier {
	switch {
	case c.ConsumeByte('G'):
		return RefLValue
	case c.ConsumeByte('H'):
		return RefRValue
	default:
		return RefNone
	}
}

func demangleThrowSpecification(c *Cursor) (bool, error) {
	if _, ok := c.ConsumeExact("_E"); ok {
		return true, nil
	}
	if c.ConsumeByte('Z') {
		return false, nil
	}
	return false, ErrInvalidThrowSpecification
}

func (p *Parser) demangleArrayType(c *Cursor) (Handle[*ArrayType], error) {
	if !c.ConsumeByte('Y') {
		return NoHandle[*ArrayType](), ErrInvalidArrayType
	}
	rank, negative, err := demangleNumber(c)
	if err != nil {
		return NoHandle[*ArrayType](), err
	}
	if negative || rank == 0 {
		return NoHandle[*ArrayType](), ErrInvalidArrayType
	}

	dims := make([]Handle[Node], 0, rank)
	for i := uint64(0); i < rank; i++ {
		v, neg, err := demangleNumber(c)
		if err != nil {
			return NoHandle[*ArrayType](), err
		}
		if neg {
			return NoHandle[*ArrayType](), ErrInvalidArrayType
		}
		dims = append(dims, Intern(p.in, &IntegerLiteral{Value: v}).upcastNode())
	}
	dimArr := Intern(p.in, &NodeArray{Items: dims})

	var quals Qualifiers
	if _, ok := c.ConsumeExact("$$C"); ok {
		q, isMember, err := demangleQualifiers(c)
		if err != nil {
			return NoHandle[*ArrayType](), err
		}
		if isMember {
			return NoHandle[*ArrayType](), ErrInvalidArrayType
		}
		quals = q
	}

	elem, err := p.demangleType(c, QualDrop)
	if err != nil {
		return NoHandle[*ArrayType](), err
	}
	return Intern(p.in, &ArrayType{typeBase: typeBase{Quals: quals}, Dimensions: dimArr, ElementType: elem}), nil
}

// demangleFunctionParameterList reads parameters up to the terminating
// `@` (fixed-arity) or `Z` (variadic) byte, back-referencing any type
// whose encoding consumed more than one byte (spec §4.3, §9).
func (p *Parser) demangleFunctionParameterList(c *Cursor) (Handle[*NodeArray], bool, error) {
	if c.ConsumeByte('X') {
		return NoHandle[*NodeArray](), false, nil
	}

	var items []Handle[Node]
	for {
		b, ok := c.Peek()
		if ok && (b == '@' || b == 'Z') {
			break
		}
		if !ok {
			return NoHandle[*NodeArray](), false, ErrInvalidFunctionParameterList
		}
		if b >= '0' && b <= '9' {
			c.Consume()
			t, ok := p.bref.typeIndex(int(b - '0'))
			if !ok {
				return NoHandle[*NodeArray](), false, ErrInvalidFunctionParameterList
			}
			items = append(items, t.upcastNode())
			continue
		}
		before := c.Len()
		t, err := p.demangleType(c, QualDrop)
		if err != nil {
			return NoHandle[*NodeArray](), false, err
		}
		items = append(items, t.upcastNode())
		switch before - c.Len() {
		case 0:
			return NoHandle[*NodeArray](), false, ErrInvalidFunctionParameterList
		case 1:
		default:
			if err := p.bref.memorizeType(t); err != nil {
				return NoHandle[*NodeArray](), false, err
			}
		}
	}

	if c.ConsumeByte('@') {
		return Intern(p.in, &NodeArray{Items: items}), false, nil
	}
	if c.ConsumeByte('Z') {
		return Intern(p.in, &NodeArray{Items: items}), true, nil
	}
	return NoHandle[*NodeArray](), false, ErrInvalidFunctionParameterList
}
