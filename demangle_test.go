// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import (
	"strings"
	"testing"
)

func TestDemangleScenarios(t *testing.T) {
	tests := []struct {
		name    string
		mangled string
		want    string
	}{
		{"simple variable", "?x@@3HA", "int x"},
		{"pointer to const array", "?x@@3PEAY02$$CBHEA", "int const (*x)[3]"},
		{"constructor", "??0klass@@QEAA@XZ", "__cdecl klass::klass(void)"},
		{"parameter type backref", "?f1@@YAXPBD0@Z", "void __cdecl f1(char const *, char const *)"},
		{"narrow string literal", `??_C@_02PCEFGMJL@hi?$AA@`, `"hi"`},
		{"wide string literal", `??_C@_05OMLEGLOC@h?$AAi?$AA?$AA?$AA@`, `u"hi"`},
		{"rtti type descriptor name", ".?AUBase@@", "struct Base `RTTI Type Descriptor Name'"},
		{"rtti complete object locator", "??_R4Base@@6B@", "const Base::`RTTI Complete Object Locator'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Demangle([]byte(tt.mangled), None)
			if err != nil {
				t.Fatalf("Demangle(%q) returned error: %v", tt.mangled, err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Demangle(%q) = %q, want a string containing %q", tt.mangled, got, tt.want)
			}
		})
	}
}

func TestDemangleInvalidInputs(t *testing.T) {
	invalid := []string{
		"??",
		"??0@",
		"?@@8",
		"??_C@",
		"??_R0",
		".?AUBase@@@8",
	}

	for _, in := range invalid {
		t.Run(in, func(t *testing.T) {
			if _, err := Demangle([]byte(in), None); err == nil {
				t.Errorf("Demangle(%q) succeeded, want an error", in)
			}
		})
	}
}

func TestDemangleNameOnlyIsSubstringOfFull(t *testing.T) {
	const mangled = "??0klass@@QEAA@XZ"

	full, err := Demangle([]byte(mangled), None)
	if err != nil {
		t.Fatalf("Demangle full: %v", err)
	}
	nameOnly, err := Demangle([]byte(mangled), NameOnly)
	if err != nil {
		t.Fatalf("Demangle name-only: %v", err)
	}
	if !strings.Contains(full, nameOnly) {
		t.Errorf("NameOnly output %q is not a substring of the full output %q", nameOnly, full)
	}
	if nameOnly != "klass::klass" {
		t.Errorf("NameOnly output = %q, want %q", nameOnly, "klass::klass")
	}
}

func TestFlagsWithIsIdempotent(t *testing.T) {
	once := None.With(NoCallingConvention)
	twice := once.With(NoCallingConvention)
	if once != twice {
		t.Errorf("applying NoCallingConvention twice changed the bitset: %v != %v", once, twice)
	}
}

func TestDemangleArrayDimensions(t *testing.T) {
	// Scenario 2 (?x@@3PEAY02$$CBHEA -> int const (*x)[3]) with the
	// dimension digit dropped from 2 to 1: rank is still one dimension,
	// but it now decodes to 2 rather than 3.
	got, err := Demangle([]byte("?x@@3PEAY01$$CBHEA"), None)
	if err != nil {
		t.Fatalf("Demangle: %v", err)
	}
	if !strings.Contains(got, "[2]") {
		t.Errorf("Demangle = %q, want it to contain a [2] array dimension", got)
	}
}
