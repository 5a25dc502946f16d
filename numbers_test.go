// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "testing"

func TestDemangleNumberSingleDigit(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 1},
		{"1", 2},
		{"9", 10},
	}
	for _, tt := range tests {
		c := NewCursor([]byte(tt.in))
		v, neg, err := demangleNumber(c)
		if err != nil {
			t.Fatalf("demangleNumber(%q): %v", tt.in, err)
		}
		if neg {
			t.Errorf("demangleNumber(%q) reported negative, want positive", tt.in)
		}
		if v != tt.want {
			t.Errorf("demangleNumber(%q) = %d, want %d", tt.in, v, tt.want)
		}
	}
}

func TestDemangleNumberHexMagnitude(t *testing.T) {
	// "BC@" is the multi-digit form: each hex digit A-P is rebased to
	// 0-15 and shifted in, terminated by '@'. 'B'=1, 'C'=2, so the
	// magnitude is (1<<4)+2 = 0x12 = 18.
	c := NewCursor([]byte("BC@"))
	v, neg, err := demangleNumber(c)
	if err != nil {
		t.Fatalf("demangleNumber: %v", err)
	}
	if neg {
		t.Error("demangleNumber reported negative for an unsigned literal")
	}
	if v != 0x12 {
		t.Errorf("demangleNumber(\"BC@\") = %#x, want 0x12", v)
	}
}

func TestDemangleNumberNegative(t *testing.T) {
	c := NewCursor([]byte("?0"))
	v, neg, err := demangleNumber(c)
	if err != nil {
		t.Fatalf("demangleNumber: %v", err)
	}
	if !neg {
		t.Error("demangleNumber did not report the leading '?' as negative")
	}
	if v != 1 {
		t.Errorf("demangleNumber(\"?0\") magnitude = %d, want 1", v)
	}
}

func TestDemangleNumberEmptyHexRun(t *testing.T) {
	// The reference implementation accepts a bare "@" as zero even though
	// the documented grammar requires at least one hex digit (spec §9).
	c := NewCursor([]byte("@"))
	v, _, err := demangleNumber(c)
	if err != nil {
		t.Fatalf("demangleNumber(\"@\"): %v", err)
	}
	if v != 0 {
		t.Errorf("demangleNumber(\"@\") = %d, want 0", v)
	}
}

func TestDemangleUnsignedRejectsNegative(t *testing.T) {
	c := NewCursor([]byte("?0"))
	if _, err := demangleUnsigned(c); err == nil {
		t.Error("demangleUnsigned accepted a negative-marked number")
	}
}

func TestDemangleSigned(t *testing.T) {
	c := NewCursor([]byte("?5"))
	v, err := demangleSigned(c)
	if err != nil {
		t.Fatalf("demangleSigned: %v", err)
	}
	if v != -6 {
		t.Errorf("demangleSigned(\"?5\") = %d, want -6", v)
	}
}
