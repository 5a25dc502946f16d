// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package coffobj reads the COFF symbol table out of a raw `.obj` file (or
// a flat member pulled out of a `.lib` archive) and demangles every symbol
// name it finds. Unlike a `.exe`/`.dll`, a `.obj` has no DOS stub and no NT
// header: it starts directly with the COFF file header, so this reader only
// ever looks at that header and the symbol/string tables that follow it.
package coffobj

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/demangle"
	"github.com/saferwall/demangle/internal/log"
)

// MaxSymbolsCount bounds how many COFF symbols we will ever parse out of
// one object file. Malformed or hostile input can claim an absurd
// NumberOfSymbols; without a cap that turns into an OOM.
const MaxSymbolsCount = 0x10000

// MaxSymStrLength bounds how many bytes of a single long (string-table)
// symbol name we will read.
const MaxSymStrLength = 0x50

var (
	errTooManySymbols  = errors.New("coffobj: symbol count is absurdly high")
	errTruncatedHeader = errors.New("coffobj: file too small to hold a COFF header")
	errTruncatedSymbol = errors.New("coffobj: symbol table runs past end of file")
	errNoStringTable   = errors.New("coffobj: no string table following the symbol table")
)

// fileHeaderSize is the size in bytes of the COFF IMAGE_FILE_HEADER that
// begins every `.obj`: Machine, NumberOfSections, TimeDateStamp,
// PointerToSymbolTable, NumberOfSymbols, SizeOfOptionalHeader,
// Characteristics.
const fileHeaderSize = 20

// symbolRecordSize is the size in bytes of one COFFSymbol record.
const symbolRecordSize = 18

// fileHeader mirrors the COFF IMAGE_FILE_HEADER fields we need; we have no
// use for SizeOfOptionalHeader or Characteristics beyond skipping past them.
type fileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// coffSymbol is the 18-byte on-disk COFF symbol table record.
type coffSymbol struct {
	Name               [8]byte
	Value              uint32
	SectionNumber      int16
	Type               uint16
	StorageClass       uint8
	NumberOfAuxSymbols uint8
}

// Symbol is one entry of an object file's symbol table, decoded and
// (best-effort) demangled.
type Symbol struct {
	// Name is the raw, still-mangled symbol name.
	Name string
	// Demangled is the C++ declaration demangle.Demangle produced from
	// Name, or Name itself if demangling failed or Name isn't a mangled
	// MSVC symbol to begin with.
	Demangled string
	// Value's meaning depends on SectionNumber/StorageClass: typically a
	// section-relative offset.
	Value uint32
	// SectionNumber is a one-based index into the (unparsed) section
	// table, or one of the IMAGE_SYM_* special values below zero.
	SectionNumber int16
	// Type is 0x20 for a function, 0x0 otherwise, per the COFF spec.
	Type uint16
	// StorageClass is the COFF IMAGE_SYM_CLASS_* storage class.
	StorageClass uint8
}

// Special SectionNumber values (spec: Microsoft PE/COFF, "Section Number
// Values").
const (
	SectionUndefined = 0
	SectionAbsolute  = -1
	SectionDebug     = -2
)

// ObjFile is an open, memory-mapped COFF object file.
type ObjFile struct {
	data    mmap.MMap
	raw     []byte
	f       *os.File
	header  fileHeader
	symbols []Symbol
	logger  *log.Helper
}

// Open memory-maps the object file at path and parses its symbol table.
func Open(path string) (*ObjFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	obj := &ObjFile{data: data, raw: data, f: f, logger: log.DefaultHelper()}
	if err := obj.parse(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

// OpenBytes parses an object file already resident in memory, e.g. a
// member extracted from a `.lib` archive by the caller.
func OpenBytes(data []byte) (*ObjFile, error) {
	obj := &ObjFile{raw: data, logger: log.DefaultHelper()}
	if err := obj.parse(); err != nil {
		return nil, err
	}
	return obj, nil
}

// Close releases the memory mapping (a no-op for OpenBytes-backed files).
func (o *ObjFile) Close() error {
	if o.data != nil {
		_ = o.data.Unmap()
	}
	if o.f != nil {
		return o.f.Close()
	}
	return nil
}

// Symbols returns every symbol table entry parsed from the object file.
func (o *ObjFile) Symbols() []Symbol {
	return o.symbols
}

func (o *ObjFile) parse() error {
	if len(o.raw) < fileHeaderSize {
		return errTruncatedHeader
	}

	o.header = fileHeader{
		Machine:              binary.LittleEndian.Uint16(o.raw[0:2]),
		NumberOfSections:     binary.LittleEndian.Uint16(o.raw[2:4]),
		TimeDateStamp:        binary.LittleEndian.Uint32(o.raw[4:8]),
		PointerToSymbolTable: binary.LittleEndian.Uint32(o.raw[8:12]),
		NumberOfSymbols:      binary.LittleEndian.Uint32(o.raw[12:16]),
		SizeOfOptionalHeader: binary.LittleEndian.Uint16(o.raw[16:18]),
		Characteristics:      binary.LittleEndian.Uint16(o.raw[18:20]),
	}

	if o.header.PointerToSymbolTable == 0 || o.header.NumberOfSymbols == 0 {
		return nil
	}
	if o.header.NumberOfSymbols > MaxSymbolsCount {
		return errTooManySymbols
	}

	raw, err := o.readSymbolRecords()
	if err != nil {
		return err
	}

	strTab, strTabOffset, err := o.stringTable()
	if err != nil {
		// No string table just means every long name is unresolvable;
		// short (<=8 byte) names still decode fine.
		o.logger.Warnf("coffobj: %v", err)
		strTab = nil
	}

	symbols := make([]Symbol, 0, len(raw))
	for _, sym := range raw {
		name := sym.name(strTab, strTabOffset)
		symbols = append(symbols, Symbol{
			Name:          name,
			Demangled:     o.demangleName(name),
			Value:         sym.Value,
			SectionNumber: sym.SectionNumber,
			Type:          sym.Type,
			StorageClass:  sym.StorageClass,
		})
	}
	o.symbols = symbols
	return nil
}

// readSymbolRecords decodes the flat array of 18-byte COFF symbol records
// starting at the COFF header's PointerToSymbolTable.
func (o *ObjFile) readSymbolRecords() ([]coffSymbol, error) {
	offset := o.header.PointerToSymbolTable
	count := o.header.NumberOfSymbols

	end := uint64(offset) + uint64(count)*symbolRecordSize
	if end > uint64(len(o.raw)) {
		return nil, errTruncatedSymbol
	}

	records := make([]coffSymbol, count)
	for i := uint32(0); i < count; i++ {
		buf := o.raw[offset : offset+symbolRecordSize]
		copy(records[i].Name[:], buf[0:8])
		records[i].Value = binary.LittleEndian.Uint32(buf[8:12])
		records[i].SectionNumber = int16(binary.LittleEndian.Uint16(buf[12:14]))
		records[i].Type = binary.LittleEndian.Uint16(buf[14:16])
		records[i].StorageClass = buf[16]
		records[i].NumberOfAuxSymbols = buf[17]
		offset += symbolRecordSize
	}
	return records, nil
}

// stringTable parses the COFF string table that immediately follows the
// symbol table: a 4-byte total size (including the size field itself),
// then null-terminated strings. It returns an offset-to-string map keyed
// the same way the symbol table's long-name offsets are, i.e. relative to
// the start of the string table (where the size field lives).
func (o *ObjFile) stringTable() (map[uint32]string, uint32, error) {
	tableStart := o.header.PointerToSymbolTable + o.header.NumberOfSymbols*symbolRecordSize
	if uint64(tableStart)+4 > uint64(len(o.raw)) {
		return nil, 0, errNoStringTable
	}

	size := binary.LittleEndian.Uint32(o.raw[tableStart : tableStart+4])
	if size <= 4 {
		return nil, 0, errNoStringTable
	}

	end := uint64(tableStart) + uint64(size)
	if end > uint64(len(o.raw)) {
		end = uint64(len(o.raw))
	}

	m := make(map[uint32]string)
	offset := tableStart + 4
	for uint64(offset) < end {
		rel := offset - tableStart
		n, s := readCString(o.raw[offset:uint32(end)], MaxSymStrLength)
		if n == 0 {
			break
		}
		m[rel] = s
		offset += n + 1
	}
	return m, tableStart, nil
}

// name decodes the symbol's 8-byte Name union: either an inline short name
// (if the first 4 bytes are nonzero), or a 4-byte zero prefix followed by
// a 4-byte offset into the string table.
func (s coffSymbol) name(strTab map[uint32]string, strTabOffset uint32) string {
	short := binary.LittleEndian.Uint32(s.Name[0:4])
	if short != 0 {
		return strings.TrimRight(string(s.Name[:]), "\x00")
	}

	long := binary.LittleEndian.Uint32(s.Name[4:8])
	if strTab == nil {
		return ""
	}
	return strTab[long]
}

func readCString(b []byte, maxLen int) (uint32, string) {
	n := bytes.IndexByte(b, 0)
	switch {
	case n < 0:
		return 0, ""
	case n > maxLen:
		n = maxLen
	}
	return uint32(n), string(b[:n])
}

// demangleName best-effort demangles name: a failure (e.g. name isn't an
// MSVC-mangled symbol at all — a plain C export, a section symbol, a
// local label) degrades to returning name unchanged rather than an error,
// since most COFF symbols in an arbitrary object file are not mangled.
func (o *ObjFile) demangleName(name string) string {
	if name == "" {
		return name
	}
	out, err := demangle.Demangle([]byte(name), demangle.None)
	if err != nil {
		o.logger.Debugf("coffobj: %s did not demangle: %v", name, err)
		return name
	}
	return out
}
