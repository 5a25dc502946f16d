// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// demangleTemplateParameterList reads a `<args>@`-terminated template
// argument list. Unlike a function parameter list, template arguments
// never participate in back-referencing and the list can never be
// variadic — only '@' terminates it (spec §4.3, §4.4.2).
func (p *Parser) demangleTemplateParameterList(c *Cursor) (Handle[*NodeArray], error) {
	var items []Handle[Node]

	for !c.ConsumeByte('@') {
		if _, ok := c.ConsumeExact("$S"); ok {
			continue
		}
		if _, ok := c.ConsumeExact("$$$V"); ok {
			continue
		}
		if _, ok := c.ConsumeExact("$$V"); ok {
			continue
		}
		if _, ok := c.ConsumeExact("$$Z"); ok {
			continue
		}
		if c.IsEmpty() {
			return NoHandle[*NodeArray](), ErrInvalidTemplateParameterList
		}

		switch {
		case c.StartsWith("$$Y"):
			c.ConsumeExact("$$Y")
			qn, err := p.demangleFullyQualifiedTypeName(c)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			items = append(items, Upcast[Node](qn))

		case c.StartsWith("$$B"):
			c.ConsumeExact("$$B")
			t, err := p.demangleType(c, QualDrop)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			items = append(items, t.upcastNode())

		case c.StartsWith("$$C"):
			c.ConsumeExact("$$C")
			t, err := p.demangleType(c, QualMangle)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			items = append(items, t.upcastNode())

		case c.StartsWith("$1"), c.StartsWith("$H"), c.StartsWith("$I"), c.StartsWith("$J"):
			c.Consume()            // '$'
			kind, _ := c.Consume() // '1'/'H'/'I'/'J'
			ref, err := p.demanglePointerToMemberTemplateArg(c, kind)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			items = append(items, Upcast[Node](ref))

		case c.StartsWith("$E?"):
			c.ConsumeExact("$E")
			sym, err := p.parse(c)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			ref := Intern(p.in, &TemplateParameterReference{
				Symbol:      sym,
				HasAffinity: true,
				Affinity:    AffinityLValueReference,
			})
			items = append(items, Upcast[Node](ref))

		case c.StartsWith("$F"), c.StartsWith("$G"):
			c.Consume()            // '$'
			kind, _ := c.Consume() // 'F'/'G'
			count := 2
			if kind == 'G' {
				count = 3
			}
			ref := &TemplateParameterReference{IsMemberPointer: true}
			for i := 0; i < count; i++ {
				off, err := demangleSigned(c)
				if err != nil {
					return NoHandle[*NodeArray](), err
				}
				ref.ThunkOffsets[i] = off
				ref.NumOffsets++
			}
			items = append(items, Upcast[Node](Intern(p.in, ref)))

		case c.StartsWith("$0"):
			c.ConsumeExact("$0")
			v, neg, err := demangleNumber(c)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			lit := Intern(p.in, &IntegerLiteral{Value: v, IsNegative: neg})
			items = append(items, Upcast[Node](lit))

		default:
			t, err := p.demangleType(c, QualDrop)
			if err != nil {
				return NoHandle[*NodeArray](), err
			}
			items = append(items, t.upcastNode())
		}
	}

	return Intern(p.in, &NodeArray{Items: items}), nil
}

// demanglePointerToMemberTemplateArg parses the `$1`/`$H`/`$I`/`$J`
// pointer-to-member-function template argument: an optional referenced
// symbol followed by 0 (single inheritance), 1 (multiple), 2 (virtual),
// or 3 (unspecified inheritance) signed thunk offsets.
func (p *Parser) demanglePointerToMemberTemplateArg(c *Cursor, kind byte) (Handle[*TemplateParameterReference], error) {
	ref := &TemplateParameterReference{HasAffinity: true, Affinity: AffinityPointer, IsMemberPointer: true}

	if c.StartsWith("?") {
		sym, err := p.parse(c)
		if err != nil {
			return NoHandle[*TemplateParameterReference](), err
		}
		if qn := symbolName(p.in, sym); qn.Valid() {
			if uqn := Resolve(p.in, qn).Unqualified(); uqn.Valid() {
				p.memorizeIdentifier(uqn)
			}
		}
		ref.Symbol = sym
	}

	var count int
	switch kind {
	case '1':
		count = 0
	case 'H':
		count = 1
	case 'I':
		count = 2
	case 'J':
		count = 3
	default:
		return NoHandle[*TemplateParameterReference](), ErrInvalidTemplateParameterList
	}
	for i := 0; i < count; i++ {
		off, err := demangleSigned(c)
		if err != nil {
			return NoHandle[*TemplateParameterReference](), err
		}
		ref.ThunkOffsets[i] = off
		ref.NumOffsets++
	}

	return Intern(p.in, ref), nil
}

func symbolName(in *Interner, h Handle[SymbolNode]) Handle[*QualifiedName] {
	switch s := Resolve(in, h).(type) {
	case *Variable:
		return s.Name
	case *Function:
		return s.Name
	case *SpecialTable:
		return s.Name
	case *LocalStaticGuardVariable:
		return s.Name
	case *EncodedStringLiteral:
		return s.Name
	default:
		return NoHandle[*QualifiedName]()
	}
}
