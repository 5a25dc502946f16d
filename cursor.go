// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "bytes"

// Cursor is a byte-wise advancing view over the mangled input. Every
// consumer is non-panicking: on underflow or mismatch it leaves the
// cursor untouched and reports failure through its return value (spec
// §4.1). A Cursor is single-threaded and carries no other state.
type Cursor struct {
	data []byte
}

// NewCursor wraps data for parsing. The caller retains ownership of data;
// the Cursor never mutates it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// IsEmpty reports whether no bytes remain.
func (c *Cursor) IsEmpty() bool {
	return len(c.data) == 0
}

// Len returns the number of bytes remaining.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Peek returns the next byte without consuming it, and false if empty.
func (c *Cursor) Peek() (byte, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	return c.data[0], true
}

// PeekAt returns the byte n positions ahead without consuming anything.
func (c *Cursor) PeekAt(n int) (byte, bool) {
	if n < 0 || n >= len(c.data) {
		return 0, false
	}
	return c.data[n], true
}

// Consume removes and returns the first byte, or false on an empty cursor.
func (c *Cursor) Consume() (byte, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	b := c.data[0]
	c.data = c.data[1:]
	return b, true
}

// ConsumeIf removes and returns the first byte if pred accepts it.
func (c *Cursor) ConsumeIf(pred func(byte) bool) (byte, bool) {
	b, ok := c.Peek()
	if !ok || !pred(b) {
		return 0, false
	}
	c.data = c.data[1:]
	return b, true
}

// ConsumeByte removes the first byte iff it equals want.
func (c *Cursor) ConsumeByte(want byte) bool {
	b, ok := c.Peek()
	if !ok || b != want {
		return false
	}
	c.data = c.data[1:]
	return true
}

// StartsWith reports whether the remaining input begins with lit.
func (c *Cursor) StartsWith(lit string) bool {
	return bytes.HasPrefix(c.data, []byte(lit))
}

// ConsumeExact consumes lit iff the remaining input begins with it,
// returning the consumed slice.
func (c *Cursor) ConsumeExact(lit string) ([]byte, bool) {
	if !c.StartsWith(lit) {
		return nil, false
	}
	out := c.data[:len(lit)]
	c.data = c.data[len(lit):]
	return out, true
}

// ConsumeN consumes exactly n bytes, or fails if fewer remain.
func (c *Cursor) ConsumeN(n int) ([]byte, bool) {
	if n < 0 || n > len(c.data) {
		return nil, false
	}
	out := c.data[:n]
	c.data = c.data[n:]
	return out, true
}

// Find returns the index of the first occurrence of b within the
// remaining input, or false if absent.
func (c *Cursor) Find(b byte) (int, bool) {
	i := bytes.IndexByte(c.data, b)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Remaining returns the unconsumed tail without advancing the cursor.
func (c *Cursor) Remaining() []byte {
	return c.data
}

// Snapshot returns an opaque marker that Restore can rewind to. Parsing
// contexts that need backtracking (disambiguating a member-pointer
// lookahead, for instance) save and restore around a tentative parse.
func (c *Cursor) Snapshot() []byte {
	return c.data
}

// Restore rewinds the cursor to a previously taken Snapshot.
func (c *Cursor) Restore(mark []byte) {
	c.data = mark
}
