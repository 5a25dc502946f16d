// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// nameBackrefBehavior controls whether demangleUnqualifiedSymbolName
// memorizes the identifier it produces for later back-reference (spec
// §4.3): template instantiations and simple names are memorable, but a
// function template's own leaf name never is.
type nameBackrefBehavior int

const (
	nbbNone nameBackrefBehavior = iota
	nbbTemplate
	nbbSimple
)

// demangleFullyQualifiedTypeName parses `A@B@C@@` as C::B::A, the form
// used everywhere a bare type name is expected (spec §4.4.3's class-type
// production).
func (p *Parser) demangleFullyQualifiedTypeName(c *Cursor) (Handle[*QualifiedName], error) {
	id, err := p.demangleUnqualifiedTypeName(c, true)
	if err != nil {
		return NoHandle[*QualifiedName](), err
	}
	return p.demangleNameScopeChain(c, id)
}

// demangleFullyQualifiedSymbolName is demangleFullyQualifiedTypeName's
// counterpart for a symbol's name: only its leaf component may be a
// function-identifier-code or (non-memorized) function template
// instantiation; a structor's Class is backfilled from the scope's
// second-to-last component once the chain is complete (spec §3.2
// invariant 6).
func (p *Parser) demangleFullyQualifiedSymbolName(c *Cursor) (Handle[*QualifiedName], error) {
	id, err := p.demangleUnqualifiedSymbolName(c, nbbSimple)
	if err != nil {
		return NoHandle[*QualifiedName](), err
	}
	qn, err := p.demangleNameScopeChain(c, id)
	if err != nil {
		return NoHandle[*QualifiedName](), err
	}

	if sin, ok := Downcast[*Structor](p.in, id); ok {
		comps := Resolve(p.in, qn).Components
		idx := len(comps) - 2
		if idx < 0 {
			return NoHandle[*QualifiedName](), ErrInvalidFullyQualifiedSymbolName
		}
		classNamed, ok := Downcast[*Named](p.in, comps[idx])
		if !ok {
			return NoHandle[*QualifiedName](), ErrInvalidFullyQualifiedSymbolName
		}
		Resolve(p.in, sin).Class = Resolve(p.in, classNamed).Name
	}
	return qn, nil
}

func (p *Parser) demangleUnqualifiedTypeName(c *Cursor, memorize bool) (Handle[IdentifierNode], error) {
	if b, ok := c.Peek(); ok && b >= '0' && b <= '9' {
		n, err := p.demangleBackRefName(c)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		return Upcast[IdentifierNode](n), nil
	}
	if c.StartsWith("?$") {
		return p.demangleTemplateInstantiationName(c, nbbTemplate)
	}
	n, err := p.demangleSimpleName(c, memorize)
	if err != nil {
		return NoHandle[IdentifierNode](), err
	}
	return Upcast[IdentifierNode](n), nil
}

func (p *Parser) demangleUnqualifiedSymbolName(c *Cursor, nbb nameBackrefBehavior) (Handle[IdentifierNode], error) {
	if b, ok := c.Peek(); ok && b >= '0' && b <= '9' {
		n, err := p.demangleBackRefName(c)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		return Upcast[IdentifierNode](n), nil
	}
	if c.StartsWith("?$") {
		return p.demangleTemplateInstantiationName(c, nbb)
	}
	if c.StartsWith("?") {
		return p.demangleFunctionIdentifierCode(c)
	}
	n, err := p.demangleSimpleName(c, nbb == nbbSimple)
	if err != nil {
		return NoHandle[IdentifierNode](), err
	}
	return Upcast[IdentifierNode](n), nil
}

// demangleNameScopeChain reads zero or more outer-scope pieces following
// an already-parsed innermost identifier, terminated by '@', storing the
// chain innermost-last (spec §3.2 invariant 2).
func (p *Parser) demangleNameScopeChain(c *Cursor, innermost Handle[IdentifierNode]) (Handle[*QualifiedName], error) {
	components := []Handle[IdentifierNode]{innermost}
	for {
		if c.ConsumeByte('@') {
			for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
				components[i], components[j] = components[j], components[i]
			}
			qn := &QualifiedName{Components: components}
			return Intern(p.in, qn), nil
		}
		if c.IsEmpty() {
			return NoHandle[*QualifiedName](), ErrInvalidNameScopeChain
		}
		piece, err := p.demangleNameScopePiece(c)
		if err != nil {
			return NoHandle[*QualifiedName](), err
		}
		components = append(components, piece)
	}
}

func (p *Parser) demangleNameScopePiece(c *Cursor) (Handle[IdentifierNode], error) {
	if b, ok := c.Peek(); ok && b >= '0' && b <= '9' {
		n, err := p.demangleBackRefName(c)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		return Upcast[IdentifierNode](n), nil
	}
	if c.StartsWith("?$") {
		return p.demangleTemplateInstantiationName(c, nbbTemplate)
	}
	if c.StartsWith("?A") {
		n, err := p.demangleAnonymousNamespaceName(c)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		return Upcast[IdentifierNode](n), nil
	}
	if c.StartsWith("?") && c.Len() >= 2 {
		if b2, _ := c.PeekAt(1); b2 >= '0' && b2 <= '9' {
			n, err := p.demangleLocallyScopedNamePiece(c)
			if err != nil {
				return NoHandle[IdentifierNode](), err
			}
			return Upcast[IdentifierNode](n), nil
		}
	}
	n, err := p.demangleSimpleName(c, true)
	if err != nil {
		return NoHandle[IdentifierNode](), err
	}
	return Upcast[IdentifierNode](n), nil
}

func (p *Parser) demangleBackRefName(c *Cursor) (Handle[*Named], error) {
	b, ok := c.ConsumeIf(func(b byte) bool { return b >= '0' && b <= '9' })
	if !ok {
		return NoHandle[*Named](), ErrInvalidBackRef
	}
	n, ok := p.bref.nameIndex(int(b - '0'))
	if !ok {
		return NoHandle[*Named](), ErrInvalidBackRef
	}
	return n, nil
}

func (p *Parser) demangleSimpleName(c *Cursor, memorize bool) (Handle[*Named], error) {
	s, err := p.demangleSimpleString(c, memorize)
	if err != nil {
		return NoHandle[*Named](), err
	}
	return Intern(p.in, &Named{Name: s}), nil
}

// demangleSimpleString reads a `@`-terminated raw name, optionally
// memorizing it as a name back-reference (spec §4.3).
func (p *Parser) demangleSimpleString(c *Cursor, memorize bool) (string, error) {
	pos, ok := c.Find('@')
	if !ok || pos == 0 {
		return "", ErrInvalidSimpleString
	}
	raw, ok := c.ConsumeN(pos)
	if !ok {
		return "", ErrInvalidSimpleString
	}
	if !c.ConsumeByte('@') {
		return "", ErrInvalidSimpleString
	}
	s := p.ar.AllocString(raw)
	if memorize {
		p.memorizeString(s)
	}
	return s, nil
}

// memorizeString is memorizeName's string-first entry point, used by
// productions (anonymous namespace, template identifier rendering) that
// have a ready-made string rather than an already-interned *Named.
func (p *Parser) memorizeString(s string) {
	h := Intern(p.in, &Named{Name: s})
	p.bref.memorizeName(p.in, h)
}

func (p *Parser) demangleAnonymousNamespaceName(c *Cursor) (Handle[*Named], error) {
	if _, ok := c.ConsumeExact("?A"); !ok {
		return NoHandle[*Named](), ErrInvalidAnonymousNamespaceName
	}
	pos, ok := c.Find('@')
	if !ok {
		return NoHandle[*Named](), ErrInvalidAnonymousNamespaceName
	}
	key, ok := c.ConsumeN(pos)
	if !ok {
		return NoHandle[*Named](), ErrInvalidAnonymousNamespaceName
	}
	p.memorizeString(p.ar.AllocString(key))
	if !c.ConsumeByte('@') {
		return NoHandle[*Named](), ErrInvalidAnonymousNamespaceName
	}
	return Intern(p.in, &Named{Name: "`anonymous namespace'"}), nil
}

// demangleLocallyScopedNamePiece parses `?<number>?<scope>` into
// "`<scope>'::`<number>'", the name MSVC gives an entity declared inside
// a function body (spec GLOSSARY: "locally scoped name").
func (p *Parser) demangleLocallyScopedNamePiece(c *Cursor) (Handle[*Named], error) {
	if !c.ConsumeByte('?') {
		return NoHandle[*Named](), ErrInvalidLocallyScopedNamePiece
	}
	number, negative, err := demangleNumber(c)
	if err != nil {
		return NoHandle[*Named](), err
	}
	if negative {
		return NoHandle[*Named](), ErrInvalidLocallyScopedNamePiece
	}
	if !c.ConsumeByte('?') {
		return NoHandle[*Named](), ErrInvalidLocallyScopedNamePiece
	}
	scope, err := p.parse(c)
	if err != nil {
		return NoHandle[*Named](), err
	}
	rendered := printSymbol(p.in, scope, None)
	name := "`" + rendered + "'::`" + formatUint(number) + "'"
	return Intern(p.in, &Named{Name: name}), nil
}

// demangleTemplateInstantiationName parses `?$Name<args>`. The outer
// backref tables are saved and a fresh set used for the template's own
// body, since a template argument's internal back-references must not
// see (or pollute) the enclosing context (spec §3.2 invariant 4).
func (p *Parser) demangleTemplateInstantiationName(c *Cursor, nbb nameBackrefBehavior) (Handle[IdentifierNode], error) {
	if _, ok := c.ConsumeExact("?$"); !ok {
		return NoHandle[IdentifierNode](), ErrInvalidTemplateInstantiationName
	}

	saved := p.bref.save()
	p.bref.reset()

	id, err := p.demangleUnqualifiedSymbolName(c, nbbSimple)
	if err != nil {
		p.bref.restore(saved)
		return NoHandle[IdentifierNode](), err
	}
	params, err := p.demangleTemplateParameterList(c)
	if err != nil {
		p.bref.restore(saved)
		return NoHandle[IdentifierNode](), err
	}
	setTemplateParams(p.in, id, params)

	p.bref.restore(saved)

	if nbb == nbbTemplate {
		switch Resolve(p.in, id).(type) {
		case *ConversionOperator, *Structor:
			return NoHandle[IdentifierNode](), ErrInvalidTemplateInstantiationName
		}
		p.memorizeIdentifier(id)
	}
	return id, nil
}

func setTemplateParams(in *Interner, id Handle[IdentifierNode], params Handle[*NodeArray]) {
	switch n := Resolve(in, id).(type) {
	case *Named:
		n.TemplateParams = params
	case *IntrinsicFunction:
		n.TemplateParams = params
	case *LiteralOperator:
		n.TemplateParams = params
	case *LocalStaticGuard:
		n.TemplateParams = params
	case *ConversionOperator:
		n.TemplateParams = params
	case *Structor:
		n.TemplateParams = params
	case *DynamicStructor:
		n.TemplateParams = params
	case *VcallThunk:
		n.TemplateParams = params
	case *RttiBaseClassDescriptor:
		n.TemplateParams = params
	}
}

// memorizeIdentifier renders id (with default flags) and memorizes that
// rendering as a name back-reference, mirroring how the reference
// implementation back-references a template instantiation by its
// printed spelling rather than its structure.
func (p *Parser) memorizeIdentifier(id Handle[IdentifierNode]) {
	p.memorizeString(printIdentifier(p.in, id, None))
}

// --- function identifier codes (operators, structors, literal ops) ---------

func (p *Parser) demangleFunctionIdentifierCode(c *Cursor) (Handle[IdentifierNode], error) {
	if !c.ConsumeByte('?') {
		return NoHandle[IdentifierNode](), ErrInvalidFunctionIdentifierCode
	}
	if _, ok := c.ConsumeExact("__"); ok {
		return p.demangleFunctionIdentifierCodeGroup(c, groupDoubleUnder)
	}
	if c.ConsumeByte('_') {
		return p.demangleFunctionIdentifierCodeGroup(c, groupUnder)
	}
	return p.demangleFunctionIdentifierCodeGroup(c, groupBasic)
}

type identifierCodeGroup int

const (
	groupBasic identifierCodeGroup = iota
	groupUnder
	groupDoubleUnder
)

func (p *Parser) demangleFunctionIdentifierCodeGroup(c *Cursor, group identifierCodeGroup) (Handle[IdentifierNode], error) {
	ch, ok := c.Consume()
	if !ok {
		return NoHandle[IdentifierNode](), ErrInvalidFunctionIdentifierCode
	}
	switch {
	case group == groupBasic && (ch == '0' || ch == '1'):
		s := Intern(p.in, &Structor{Kind: map[bool]StructorKind{false: StructorCtor, true: StructorDtor}[ch == '1']})
		return Upcast[IdentifierNode](s), nil
	case group == groupBasic && ch == 'B':
		co := Intern(p.in, &ConversionOperator{TargetType: NoHandle[TypeNode]()})
		return Upcast[IdentifierNode](co), nil
	case group == groupDoubleUnder && ch == 'K':
		name, err := p.demangleSimpleString(c, false)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		lo := Intern(p.in, &LiteralOperator{Name: name})
		return Upcast[IdentifierNode](lo), nil
	default:
		op, err := translateIntrinsicFunctionCode(ch, group)
		if err != nil {
			return NoHandle[IdentifierNode](), err
		}
		fn := Intern(p.in, &IntrinsicFunction{Op: op})
		return Upcast[IdentifierNode](fn), nil
	}
}

// translateIntrinsicFunctionCode maps a single classifier byte within
// its group to an operator kind, per the reference implementation's
// three 36-entry lookup tables (grounded exactly on that table; entries
// left as errors are the ones the group dispatch handles specially
// before ever reaching here, or are simply unassigned).
func translateIntrinsicFunctionCode(ch byte, group identifierCodeGroup) (IntrinsicOperatorKind, error) {
	var i int
	switch {
	case ch >= '0' && ch <= '9':
		i = int(ch - '0')
	case ch >= 'A' && ch <= 'Z':
		i = int(ch-'A') + 10
	default:
		return 0, ErrInvalidIntrinsicFunctionCode
	}

	var table [36]int // 1-based IntrinsicOperatorKind+1, 0 = unassigned
	switch group {
	case groupBasic:
		table = [36]int{
			0, 0, int(OpNew) + 1, int(OpDelete) + 1, int(OpAssign) + 1, int(OpRShift) + 1,
			int(OpLShift) + 1, int(OpNot) + 1, int(OpEquals) + 1, int(OpNotEquals) + 1,
			int(OpSubscript) + 1, 0, int(OpPointer) + 1, int(OpDereference) + 1,
			int(OpIncrement) + 1, int(OpDecrement) + 1, int(OpMinus) + 1, int(OpPlus) + 1,
			int(OpBitwiseAnd) + 1, int(OpMemberPointer) + 1, int(OpDivide) + 1, int(OpModulus) + 1,
			int(OpLessThan) + 1, int(OpLessEqual) + 1, int(OpGreaterThan) + 1, int(OpGreaterEqual) + 1,
			int(OpComma) + 1, int(OpCall) + 1, int(OpBitwiseNot) + 1, int(OpBitwiseXor) + 1,
			int(OpBitwiseOr) + 1, int(OpLogicalAnd) + 1, int(OpLogicalOr) + 1, int(OpTimesEqual) + 1,
			int(OpPlusEqual) + 1, int(OpMinusEqual) + 1,
		}
	case groupUnder:
		table = [36]int{
			int(OpDivEqual) + 1, int(OpModEqual) + 1, int(OpRShiftEqual) + 1, int(OpLShiftEqual) + 1,
			int(OpAndEqual) + 1, int(OpOrEqual) + 1, int(OpXorEqual) + 1,
			0, 0, 0, 0, 0, 0, // ?_7 vftable .. ?_C string literal: special intrinsics
			int(OpVBaseDtor) + 1, int(OpVecDelDtor) + 1, int(OpDefaultCtorClosure) + 1,
			int(OpScalarDelDtor) + 1, int(OpVecCtorIter) + 1, int(OpVecDtorIter) + 1,
			int(OpVecVbaseCtorIter) + 1, int(OpVdispMap) + 1, int(OpEHVecCtorIter) + 1,
			int(OpEHVecDtorIter) + 1, int(OpEHVecVbaseCtorIter) + 1, int(OpCopyCtorClosure) + 1,
			0,                        // ?_P udt returning: special intrinsic
			0,                        // ?_Q unknown
			0,                        // ?_R0-?_R4: special intrinsics (consumed as 4-byte codes upstream)
			0,                        // ?_S local vftable: special intrinsic
			int(OpLocalVftableCtorClosure) + 1, int(OpArrayNew) + 1, int(OpArrayDelete) + 1,
			0, 0, 0, // ?_W, ?_X, ?_Y unused
		}
	case groupDoubleUnder:
		table = [36]int{
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			int(OpManVectorCtorIter) + 1, int(OpManVectorDtorIter) + 1, int(OpEHVectorCopyCtorIter) + 1,
			int(OpEHVectorVbaseCopyCtorIter) + 1,
			0, 0, // ?__E dynamic initializer, ?__F dynamic atexit destructor: special intrinsics
			int(OpVectorCopyCtorIter) + 1, int(OpVectorVbaseCopyCtorIter) + 1, int(OpManVectorVbaseCopyCtorIter) + 1,
			0,                     // ?__J local static thread guard: special intrinsic
			0,                     // ?__K operator ""_name: handled specially above
			int(OpCoAwait) + 1, int(OpSpaceship) + 1,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		}
	}
	if i < 0 || i >= len(table) || table[i] == 0 {
		return 0, ErrInvalidIntrinsicFunctionCode
	}
	return IntrinsicOperatorKind(table[i] - 1), nil
}
