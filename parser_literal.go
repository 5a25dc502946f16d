// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// demangleStringLiteral parses an encoded `@_0`/`@_1` string literal
// body (spec §4.4.9): a narrow/wide flag, the original byte length, an
// 8-hex-digit CRC32 we have no use for but must skip over, and the
// encoded character data itself, terminated by '@'.
func (p *Parser) demangleStringLiteral(c *Cursor) (Handle[*EncodedStringLiteral], error) {
	if _, ok := c.ConsumeExact("@_"); !ok {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}
	f, ok := c.Consume()
	if !ok {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}
	isWide := f == '1'
	if !isWide && f != '0' {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}

	byteLen, negative, err := demangleNumber(c)
	if err != nil {
		return NoHandle[*EncodedStringLiteral](), err
	}
	minLen := uint64(1)
	if isWide {
		minLen = 2
	}
	if negative || byteLen < minLen {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}

	crcEnd, ok := c.Find('@')
	if !ok {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}
	if _, ok := c.ConsumeN(crcEnd + 1); !ok {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}
	if c.IsEmpty() {
		return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
	}

	var sb strings.Builder
	var kind CharKind
	var truncated bool

	if isWide {
		kind = CharWchar
		truncated = byteLen > 64

		var words []uint16
		for !c.ConsumeByte('@') {
			if c.Len() < 2 {
				return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
			}
			w, err := demangleWcharLiteral(c)
			if err != nil {
				return NoHandle[*EncodedStringLiteral](), err
			}
			words = append(words, w)
			byteLen -= 2
		}
		runes, err := decodeUTF16Words(words)
		if err != nil {
			return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
		}
		for i, r := range runes {
			if i+1 < len(runes) || truncated || byteLen != 0 {
				outputEscapedChar(&sb, uint32(r))
			}
		}
	} else {
		var bytes []byte
		for !c.ConsumeByte('@') {
			if c.IsEmpty() || len(bytes) >= 128 {
				return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
			}
			ch, err := demangleCharLiteral(c)
			if err != nil {
				return NoHandle[*EncodedStringLiteral](), err
			}
			bytes = append(bytes, ch)
		}

		truncated = byteLen > uint64(len(bytes))
		charBytes, ok := guessCharByteSize(bytes, byteLen)
		if !ok {
			return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
		}
		switch charBytes {
		case 1:
			kind = CharChar
		case 2:
			kind = CharChar16
		case 4:
			kind = CharChar32
		default:
			return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
		}

		numChars := len(bytes) / charBytes
		for i := 0; i < numChars; i++ {
			v, ok := decodeMultiByteChar(bytes, i, charBytes)
			if !ok {
				return NoHandle[*EncodedStringLiteral](), ErrInvalidStringLiteral
			}
			if i+1 < numChars || truncated {
				outputEscapedChar(&sb, v)
			}
		}
	}

	lit := &EncodedStringLiteral{Decoded: p.ar.AllocString([]byte(sb.String())), Char: kind, IsTruncated: truncated}
	return Intern(p.in, lit), nil
}

// decodeUTF16Words turns a run of big-endian 16-bit code units into
// runes via golang.org/x/text's UTF-16 decoder, rather than a hand-rolled
// surrogate-pair decode.
func decodeUTF16Words(words []uint16) ([]rune, error) {
	raw := make([]byte, len(words)*2)
	for i, w := range words {
		raw[2*i] = byte(w >> 8)
		raw[2*i+1] = byte(w)
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return nil, err
	}
	return []rune(string(out)), nil
}

func demangleWcharLiteral(c *Cursor) (uint16, error) {
	c1, err := demangleCharLiteral(c)
	if err != nil {
		return 0, err
	}
	c2, err := demangleCharLiteral(c)
	if err != nil {
		return 0, err
	}
	return uint16(c1)<<8 | uint16(c2), nil
}

// demangleCharLiteral decodes one byte of string-literal payload: a
// literal pass-through byte, or (after a leading '?') one of the
// escaped-character tables below (spec §4.4.9).
func demangleCharLiteral(c *Cursor) (byte, error) {
	ch, ok := c.Consume()
	if !ok {
		return 0, ErrInvalidCharLiteral
	}
	if ch != '?' {
		return ch, nil
	}

	esc, ok := c.Consume()
	if !ok {
		return 0, ErrInvalidCharLiteral
	}
	switch {
	case esc == '$':
		nibbles, ok := c.ConsumeN(2)
		if !ok {
			return 0, ErrInvalidCharLiteral
		}
		c1, ok1 := rebasedHexDigit(nibbles[0])
		c2, ok2 := rebasedHexDigit(nibbles[1])
		if !ok1 || !ok2 {
			return 0, ErrInvalidCharLiteral
		}
		return c1<<4 | c2, nil
	case esc >= '0' && esc <= '9':
		table := [10]byte{',', '/', '\\', ':', '.', ' ', '\n', '\t', '\'', '-'}
		return table[esc-'0'], nil
	case esc >= 'a' && esc <= 'z':
		return 0xE1 + (esc - 'a'), nil
	case esc >= 'A' && esc <= 'Z':
		return 0xC1 + (esc - 'A'), nil
	default:
		return 0, ErrInvalidCharLiteral
	}
}

func rebasedHexDigit(b byte) (byte, bool) {
	if b < 'A' || b > 'P' {
		return 0, false
	}
	return b - 'A', true
}

// outputEscapedChar writes c the way MSVC's own demangler prints a
// decoded string-literal character: named escapes for the C control
// characters, verbatim for printable ASCII, \xHH otherwise.
func outputEscapedChar(sb *strings.Builder, c uint32) {
	switch c {
	case 0x00:
		sb.WriteString(`\0`)
	case 0x27:
		sb.WriteString(`\'`)
	case 0x22:
		sb.WriteString(`\"`)
	case 0x5C:
		sb.WriteString(`\\`)
	case 0x07:
		sb.WriteString(`\a`)
	case 0x08:
		sb.WriteString(`\b`)
	case 0x0C:
		sb.WriteString(`\f`)
	case 0x0A:
		sb.WriteString(`\n`)
	case 0x0D:
		sb.WriteString(`\r`)
	case 0x09:
		sb.WriteString(`\t`)
	case 0x0B:
		sb.WriteString(`\v`)
	default:
		if c >= 0x20 && c <= 0x7E {
			sb.WriteByte(byte(c))
		} else {
			fmt.Fprintf(sb, `\x%02X`, c)
		}
	}
}

// guessCharByteSize infers whether an (at most 128-byte) narrow-string
// payload actually held char, char16_t, or char32_t data, the same
// embedded-null-counting heuristic MSVC's own demangler uses since the
// mangling itself doesn't record the character width directly.
func guessCharByteSize(bytes []byte, numBytes uint64) (int, bool) {
	switch {
	case numBytes == 0:
		return 0, false
	case numBytes%2 == 1:
		return 1, true
	case numBytes < 32:
		trailingNulls := 0
		for i := len(bytes) - 1; i >= 0 && bytes[i] == 0; i-- {
			trailingNulls++
		}
		switch {
		case trailingNulls >= 4 && numBytes%4 == 0:
			return 4, true
		case trailingNulls >= 2:
			return 2, true
		default:
			return 1, true
		}
	default:
		embeddedNulls := 0
		for _, b := range bytes {
			if b == 0 {
				embeddedNulls++
			}
		}
		switch {
		case embeddedNulls >= 2*len(bytes)/3 && numBytes%4 == 0:
			return 4, true
		case embeddedNulls >= len(bytes)/3:
			return 2, true
		default:
			return 1, true
		}
	}
}

// decodeMultiByteChar reassembles the charBytes-wide little-endian code
// unit at position charIndex from the raw decoded byte buffer.
func decodeMultiByteChar(bytes []byte, charIndex, charBytes int) (uint32, bool) {
	if charBytes != 1 && charBytes != 2 && charBytes != 4 {
		return 0, false
	}
	offset := charIndex * charBytes
	if offset+charBytes > len(bytes) {
		return 0, false
	}
	var result uint32
	for i := 0; i < charBytes; i++ {
		result |= uint32(bytes[offset+i]) << (8 * i)
	}
	return result, true
}
