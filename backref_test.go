// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "testing"

func TestBackrefsMemorizeNameDedup(t *testing.T) {
	in := &Interner{}
	b := &backrefs{}

	h1 := Intern(in, &Named{Name: "foo"})
	h2 := Intern(in, &Named{Name: "foo"})
	h3 := Intern(in, &Named{Name: "bar"})

	b.memorizeName(in, h1)
	b.memorizeName(in, h2)
	b.memorizeName(in, h3)

	if b.nameCount != 2 {
		t.Fatalf("nameCount = %d, want 2 (the duplicate \"foo\" should not get its own slot)", b.nameCount)
	}
	got, ok := b.nameIndex(0)
	if !ok || Resolve(in, got).Name != "foo" {
		t.Errorf("nameIndex(0) did not resolve to the first \"foo\"")
	}
}

func TestBackrefsTypeOverflow(t *testing.T) {
	in := &Interner{}
	b := &backrefs{}

	for i := 0; i < backrefCapacity; i++ {
		h := Upcast[TypeNode](Intern(in, &PrimitiveType{Prim: PrimInt}))
		if err := b.memorizeType(h); err != nil {
			t.Fatalf("memorizeType #%d: unexpected error %v", i, err)
		}
	}

	h := Upcast[TypeNode](Intern(in, &PrimitiveType{Prim: PrimInt}))
	if err := b.memorizeType(h); err != ErrTooManyBackRefs {
		t.Fatalf("memorizeType on the 11th entry = %v, want ErrTooManyBackRefs", err)
	}
}

func TestBackrefsSaveRestore(t *testing.T) {
	in := &Interner{}
	b := &backrefs{}

	h := Upcast[TypeNode](Intern(in, &PrimitiveType{Prim: PrimInt}))
	if err := b.memorizeType(h); err != nil {
		t.Fatalf("memorizeType: %v", err)
	}
	saved := b.save()

	h2 := Upcast[TypeNode](Intern(in, &PrimitiveType{Prim: PrimBool}))
	if err := b.memorizeType(h2); err != nil {
		t.Fatalf("memorizeType: %v", err)
	}
	if b.typeCount != 2 {
		t.Fatalf("typeCount = %d, want 2 before restore", b.typeCount)
	}

	b.restore(saved)
	if b.typeCount != 1 {
		t.Fatalf("typeCount = %d, want 1 after restore", b.typeCount)
	}
}

func TestBackrefsReset(t *testing.T) {
	in := &Interner{}
	b := &backrefs{}
	b.memorizeName(in, Intern(in, &Named{Name: "foo"}))
	b.memorizeType(Upcast[TypeNode](Intern(in, &PrimitiveType{Prim: PrimInt})))

	b.reset()

	if b.nameCount != 0 || b.typeCount != 0 {
		t.Fatalf("reset() left nameCount=%d typeCount=%d, want both 0", b.nameCount, b.typeCount)
	}
}
