// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package demangle decodes Microsoft Visual C++ mangled symbol names
// (as produced by MSVC-family compilers, and by Clang targeting the
// MSVC ABI) into human-readable C++ declarations.
package demangle

// Demangle parses mangled and renders it back into a C++ declaration,
// honoring flags (see Flags and its constants). mangled need not be
// UTF-8 — it is the raw compiler-emitted byte string. A non-nil error
// names the first grammar production that failed to parse; nothing is
// retried or partially recovered (spec §7).
func Demangle(mangled []byte, flags Flags) (string, error) {
	ar := &Arena{}
	in := &Interner{}
	p := newParser(ar, in)

	c := NewCursor(mangled)
	sym, err := p.parse(c)
	if err != nil {
		return "", err
	}

	return printSymbol(in, sym, flags), nil
}
