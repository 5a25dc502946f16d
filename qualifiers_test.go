// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "testing"

func TestDemangleCallingConvention(t *testing.T) {
	tests := []struct {
		in   byte
		want CallingConv
	}{
		{'A', CallingConvCdecl},
		{'E', CallingConvThiscall},
		{'G', CallingConvStdcall},
		{'I', CallingConvFastcall},
		{'Q', CallingConvVectorcall},
		{'Z', CallingConvNone},
	}
	for _, tt := range tests {
		c := NewCursor([]byte{tt.in})
		got, err := demangleCallingConvention(c)
		if err != nil {
			t.Fatalf("demangleCallingConvention(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("demangleCallingConvention(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDemangleFunctionClassPublicCtor(t *testing.T) {
	// 'Q' is the byte this repo's own ??0klass@@QEAA@XZ scenario relies
	// on: a public, non-virtual, non-static member function.
	c := NewCursor([]byte("Q"))
	got, err := demangleFunctionClass(c)
	if err != nil {
		t.Fatalf("demangleFunctionClass: %v", err)
	}
	if got != FCPublic {
		t.Errorf("demangleFunctionClass('Q') = %v, want FCPublic", got)
	}
}

func TestDemangleFunctionClassVirtualThisAdjust(t *testing.T) {
	c := NewCursor([]byte("$4"))
	got, err := demangleFunctionClass(c)
	if err != nil {
		t.Fatalf("demangleFunctionClass: %v", err)
	}
	want := FCPublic | FCVirtual | FCVirtualThisAdjust
	if got != want {
		t.Errorf("demangleFunctionClass(\"$4\") = %v, want %v", got, want)
	}
}

func TestDemangleTagKind(t *testing.T) {
	tests := []struct {
		in   byte
		want TagKind
	}{
		{'T', TagUnion},
		{'U', TagStruct},
		{'V', TagClass},
		{'W', TagEnum},
	}
	for _, tt := range tests {
		got, ok := demangleTagKind(tt.in)
		if !ok || got != tt.want {
			t.Errorf("demangleTagKind(%q) = (%v, %v), want (%v, true)", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := demangleTagKind('Z'); ok {
		t.Error("demangleTagKind('Z') reported ok=true for an unrecognized byte")
	}
}

func TestDemangleQualifiers(t *testing.T) {
	tests := []struct {
		in         byte
		wantQuals  Qualifiers
		wantMember bool
	}{
		{'A', 0, false},
		{'B', QualifierConst, false},
		{'D', QualifierConst | QualifierVolatile, false},
		{'Q', 0, true},
		{'T', QualifierConst | QualifierVolatile, true},
	}
	for _, tt := range tests {
		c := NewCursor([]byte{tt.in})
		quals, member, err := demangleQualifiers(c)
		if err != nil {
			t.Fatalf("demangleQualifiers(%q): %v", tt.in, err)
		}
		if quals != tt.wantQuals || member != tt.wantMember {
			t.Errorf("demangleQualifiers(%q) = (%v, %v), want (%v, %v)",
				tt.in, quals, member, tt.wantQuals, tt.wantMember)
		}
	}
}

func TestDemanglePointerCVQualifiersRvalueRef(t *testing.T) {
	c := NewCursor([]byte("$$Qrest"))
	quals, affinity, err := demanglePointerCVQualifiers(c)
	if err != nil {
		t.Fatalf("demanglePointerCVQualifiers: %v", err)
	}
	if quals != 0 || affinity != AffinityRValueReference {
		t.Errorf("demanglePointerCVQualifiers(\"$$Q\") = (%v, %v), want (0, AffinityRValueReference)", quals, affinity)
	}
	if string(c.Remaining()) != "rest" {
		t.Errorf("Remaining() = %q, want %q", c.Remaining(), "rest")
	}
}

func TestCharKindPrefix(t *testing.T) {
	tests := []struct {
		kind CharKind
		want string
	}{
		{CharChar, ""},
		{CharWchar, "L"},
		{CharChar16, "u"},
		{CharChar32, "U"},
	}
	for _, tt := range tests {
		if got := tt.kind.prefix(); got != tt.want {
			t.Errorf("CharKind(%d).prefix() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
