// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package coffobj

import (
	"encoding/binary"
	"os"
	"testing"
)

// buildObj assembles a minimal in-memory COFF object: a 20-byte file
// header, a symbol table, and a string table, laid out the way a real
// `.obj` produced by link.exe's /lib archiver would be.
func buildObj(symbols [][8]byte, longNames []string) []byte {
	const headerSize = 20
	symTabOffset := uint32(headerSize)
	numSyms := uint32(len(symbols))

	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(buf[0:2], 0x8664) // IMAGE_FILE_MACHINE_AMD64
	binary.LittleEndian.PutUint32(buf[8:12], symTabOffset)
	binary.LittleEndian.PutUint32(buf[12:16], numSyms)

	for _, name := range symbols {
		rec := make([]byte, symbolRecordSize)
		copy(rec[0:8], name[:])
		binary.LittleEndian.PutUint32(rec[8:12], 0x1000)
		binary.LittleEndian.PutUint16(rec[12:14], 1)
		binary.LittleEndian.PutUint16(rec[14:16], 0x20)
		rec[16] = 2
		buf = append(buf, rec...)
	}

	strTab := []byte{0, 0, 0, 0}
	offsets := make([]uint32, len(longNames))
	for i, s := range longNames {
		offsets[i] = uint32(len(strTab))
		strTab = append(strTab, append([]byte(s), 0)...)
	}
	binary.LittleEndian.PutUint32(strTab[0:4], uint32(len(strTab)))
	buf = append(buf, strTab...)

	return buf
}

func shortName(s string) [8]byte {
	var n [8]byte
	copy(n[:], s)
	return n
}

func longNameRef(offset uint32) [8]byte {
	var n [8]byte
	binary.LittleEndian.PutUint32(n[4:8], offset)
	return n
}

func TestOpenBytesShortName(t *testing.T) {
	data := buildObj([][8]byte{shortName("_main")}, nil)

	obj, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	syms := obj.Symbols()
	if len(syms) != 1 {
		t.Fatalf("got %d symbols, want 1", len(syms))
	}
	if syms[0].Name != "_main" {
		t.Errorf("Name = %q, want %q", syms[0].Name, "_main")
	}
	if syms[0].Demangled != "_main" {
		t.Errorf("Demangled = %q, want unchanged name for a non-mangled symbol", syms[0].Demangled)
	}
}

func TestOpenBytesLongNameDemangles(t *testing.T) {
	mangled := "?x@@3HA"
	data := buildObj([][8]byte{longNameRef(4)}, []string{mangled})

	obj, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	syms := obj.Symbols()
	if len(syms) != 1 {
		t.Fatalf("got %d symbols, want 1", len(syms))
	}
	if syms[0].Name != mangled {
		t.Errorf("Name = %q, want %q", syms[0].Name, mangled)
	}
	const want = "int x"
	if syms[0].Demangled != want {
		t.Errorf("Demangled = %q, want %q", syms[0].Demangled, want)
	}
}

func TestOpenBytesTruncatedHeader(t *testing.T) {
	if _, err := OpenBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a file too small to hold a COFF header")
	}
}

func TestOpenBytesNoSymbols(t *testing.T) {
	data := buildObj(nil, nil)
	// buildObj with no symbols still writes a (useless) empty string table;
	// trim it back off so PointerToSymbolTable/NumberOfSymbols are exercised
	// as the "nothing to parse" case they represent here.
	data = data[:20]
	binary.LittleEndian.PutUint32(data[8:12], 0)
	binary.LittleEndian.PutUint32(data[12:16], 0)

	obj, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if len(obj.Symbols()) != 0 {
		t.Errorf("got %d symbols, want 0", len(obj.Symbols()))
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.obj"
	data := buildObj([][8]byte{shortName("_foo")}, nil)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	obj, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Close()

	syms := obj.Symbols()
	if len(syms) != 1 || syms[0].Name != "_foo" {
		t.Fatalf("Symbols() = %+v, want one symbol named _foo", syms)
	}
}
