// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

// demangleNumber parses spec §4.4.6's number grammar: an optional leading
// `?` marks the value negative (never confuse with the `?` that opens a
// qualified name or a special intrinsic — the caller only reaches here
// once it already knows a number is expected). A single digit 0-9 encodes
// 1..10. Otherwise, a run of rebased hex digits A-P (A=0 .. P=15)
// terminated by `@` encodes the magnitude, shifting left 4 bits and
// adding each nibble; overflow wraps, which is intentional (spec §9 open
// question: preserved upstream behavior, not "fixed").
//
// The reference grammar documents `<hex digit>+` (one or more) but the
// reference implementation accepts `<hex digit>*` (zero or more, i.e. a
// bare `@` decodes to 0) — spec §9 directs us to keep that discrepancy
// rather than tighten it.
func demangleNumber(c *Cursor) (value uint64, negative bool, err error) {
	if c.ConsumeByte('?') {
		negative = true
	}
	first, ok := c.Consume()
	if !ok {
		return 0, false, ErrInvalidNumber
	}
	if first >= '0' && first <= '9' {
		return uint64(first-'0') + 1, negative, nil
	}
	ch := first
	for {
		if ch == '@' {
			return value, negative, nil
		}
		if ch < 'A' || ch > 'P' {
			return 0, false, ErrInvalidNumber
		}
		value = value<<4 + uint64(ch-'A')
		next, ok := c.Consume()
		if !ok {
			return 0, false, ErrInvalidNumber
		}
		ch = next
	}
}

// demangleUnsigned parses a number and rejects a negative sign.
func demangleUnsigned(c *Cursor) (uint64, error) {
	v, neg, err := demangleNumber(c)
	if err != nil {
		return 0, err
	}
	if neg {
		return 0, ErrInvalidUnsigned
	}
	return v, nil
}

// demangleSigned parses a number, rejecting a magnitude too large for an
// int64.
func demangleSigned(c *Cursor) (int64, error) {
	v, neg, err := demangleNumber(c)
	if err != nil {
		return 0, err
	}
	if v > 1<<63-1 {
		return 0, ErrInvalidSigned
	}
	r := int64(v)
	if neg {
		r = -r
	}
	return r, nil
}
