// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package demangle

import "testing"

func TestCursorConsume(t *testing.T) {
	c := NewCursor([]byte("ab"))

	b, ok := c.Consume()
	if !ok || b != 'a' {
		t.Fatalf("Consume() = (%q, %v), want ('a', true)", b, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}

	b, ok = c.Consume()
	if !ok || b != 'b' {
		t.Fatalf("Consume() = (%q, %v), want ('b', true)", b, ok)
	}

	if _, ok := c.Consume(); ok {
		t.Fatal("Consume() on an empty cursor returned ok=true")
	}
}

func TestCursorConsumeByte(t *testing.T) {
	c := NewCursor([]byte("xy"))
	if c.ConsumeByte('y') {
		t.Fatal("ConsumeByte('y') succeeded against leading 'x'")
	}
	if !c.ConsumeByte('x') {
		t.Fatal("ConsumeByte('x') failed")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after consuming one byte", c.Len())
	}
}

func TestCursorConsumeExact(t *testing.T) {
	c := NewCursor([]byte("??_C@hi"))
	if _, ok := c.ConsumeExact("??_R"); ok {
		t.Fatal("ConsumeExact matched a literal it does not start with")
	}
	out, ok := c.ConsumeExact("??_C@")
	if !ok {
		t.Fatal("ConsumeExact(\"??_C@\") failed")
	}
	if string(out) != "??_C@" {
		t.Errorf("ConsumeExact returned %q, want %q", out, "??_C@")
	}
	if string(c.Remaining()) != "hi" {
		t.Errorf("Remaining() = %q, want %q", c.Remaining(), "hi")
	}
}

func TestCursorFind(t *testing.T) {
	c := NewCursor([]byte("abc@def"))
	idx, ok := c.Find('@')
	if !ok || idx != 3 {
		t.Fatalf("Find('@') = (%d, %v), want (3, true)", idx, ok)
	}
	if _, ok := c.Find('z'); ok {
		t.Fatal("Find('z') reported a match that isn't there")
	}
}

func TestCursorSnapshotRestore(t *testing.T) {
	c := NewCursor([]byte("abcd"))
	c.Consume()
	mark := c.Snapshot()
	c.Consume()
	c.Consume()
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 before Restore", c.Len())
	}
	c.Restore(mark)
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 after Restore", c.Len())
	}
}

func TestCursorConsumeNOutOfBounds(t *testing.T) {
	c := NewCursor([]byte("ab"))
	if _, ok := c.ConsumeN(3); ok {
		t.Fatal("ConsumeN(3) succeeded against a 2-byte cursor")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (unconsumed after a failed ConsumeN)", c.Len())
	}
}
