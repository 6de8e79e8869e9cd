// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmio

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()

	f()
}

func TestMemoryReadWrite(t *testing.T) {
	m := New(0x10000000, 16)

	if m.Base() != 0x10000000 || m.Size() != 16 {
		t.Fatalf("unexpected geometry %#08x+%#x", m.Base(), m.Size())
	}

	m.Write32(0, 0x5aa55aa5)
	m.Write32(4, 0x12345678)
	m.Write32(12, 0xdeadbeef)

	if v := m.Read32(0); v != 0x5aa55aa5 {
		t.Errorf("word 0: got %#08x", v)
	}

	if v := m.Read32(4); v != 0x12345678 {
		t.Errorf("word 1: got %#08x", v)
	}

	if v := m.Read32(8); v != 0 {
		t.Errorf("word 2: got %#08x, expected zero initialized memory", v)
	}

	if v := m.Read32(12); v != 0xdeadbeef {
		t.Errorf("word 3: got %#08x", v)
	}
}

func TestMemoryBounds(t *testing.T) {
	m := New(0x10000000, 16)

	expectPanic(t, "negative", func() { m.Read32(-4) })
	expectPanic(t, "unaligned", func() { m.Read32(2) })
	expectPanic(t, "past end", func() { m.Write32(16, 0) })
	expectPanic(t, "straddling", func() { m.Write32(14, 0) })
	expectPanic(t, "size", func() { New(0, 6) })
}

func TestNewMemory(t *testing.T) {
	backing := New(0, 8)
	buf := backing.buf

	if _, err := NewMemory(0x20000000, buf[:6]); err == nil {
		t.Error("expected error for partial word buffer")
	}

	if _, err := NewMemory(0x20000002, buf); err == nil {
		t.Error("expected error for unaligned base")
	}

	if _, err := NewMemory(0x20000000, nil); err == nil {
		t.Error("expected error for empty buffer")
	}

	m, err := NewMemory(0x20000000, buf)

	if err != nil {
		t.Fatal(err)
	}

	m.Write32(4, 0xcafebabe)

	if v := backing.Read32(4); v != 0xcafebabe {
		t.Errorf("store not visible through backing memory, got %#08x", v)
	}
}

func TestSub(t *testing.T) {
	m := New(0x30000000, 32)
	w := Sub(m, 16, 16)

	if w.Base() != 0x30000010 || w.Size() != 16 {
		t.Fatalf("unexpected window geometry %#08x+%#x", w.Base(), w.Size())
	}

	w.Write32(4, 0x11223344)

	if v := m.Read32(20); v != 0x11223344 {
		t.Errorf("window store landed elsewhere, got %#08x", v)
	}

	expectPanic(t, "window past end", func() { w.Read32(16) })
	expectPanic(t, "window larger than region", func() { Sub(m, 16, 32) })
	expectPanic(t, "window unaligned", func() { Sub(m, 2, 4) })
}

func TestFillEqual(t *testing.T) {
	a := New(0x30000000, 32)
	b := New(0x40000000, 32)

	Fill(a, 0, 32, 0xff)
	Fill(b, 0, 32, 0xff)

	for i, v := range ReadWords(a, 0, 8) {
		if v != 0xffffffff {
			t.Errorf("word %d: got %#08x after fill", i, v)
		}
	}

	if !Equal(a, 0, b, 16, 16) {
		t.Error("filled ranges should compare equal")
	}

	a.Write32(12, 0xaabbccdd)

	if Equal(a, 0, b, 16, 16) {
		t.Error("modified range should not compare equal")
	}

	if !Equal(a, 16, b, 0, 16) {
		t.Error("untouched ranges should compare equal")
	}
}

type countingRegion struct {
	Region
	reads int
}

func (c *countingRegion) Read32(off int) uint32 {
	c.reads++
	return c.Region.Read32(off)
}

func TestEqualReadsEveryWord(t *testing.T) {
	a := &countingRegion{Region: New(0, 16)}
	b := &countingRegion{Region: New(0x100, 16)}

	a.Write32(0, 1)

	if Equal(a, 0, b, 0, 16) {
		t.Fatal("expected mismatch")
	}

	if a.reads != 4 || b.reads != 4 {
		t.Errorf("expected 4 reads per region, got %d and %d", a.reads, b.reads)
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer

	m := New(0xf0001000, 8)
	m.Write32(4, 0x12345678)

	Dump(log.New(&buf, "", 0), "cdma", m, 0, 8)

	expected := strings.Join([]string{
		"cdma dump:",
		"Address 0xf0001000 = 0x00000000",
		"Address 0xf0001004 = 0x12345678",
		"",
	}, "\n")

	if buf.String() != expected {
		t.Errorf("unexpected dump:\n%s", buf.String())
	}
}

func TestDevMemCloseEmpty(t *testing.T) {
	d := &DevMem{}

	if err := d.Close(); err != nil {
		t.Errorf("closing an unused DevMem: %v", err)
	}
}
