// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmio provides word level access to memory mapped hardware.
//
// Every access goes through a Region, which only exposes 32-bit reads and
// writes at aligned, bounds checked byte offsets. Callers never see raw
// pointers, which allows the same test logic to run against physical memory
// (see Map) and against simulated memory (see New).
package mmio

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// WORD is the access width, in bytes, of every Region.
const WORD = 4

// Region represents a window of memory mapped address space.
type Region interface {
	// Base returns the physical address of offset 0.
	Base() uint32
	// Size returns the region extent in bytes.
	Size() int
	// Read32 performs a volatile 32-bit load at byte offset off.
	Read32(off int) uint32
	// Write32 performs a volatile 32-bit store at byte offset off.
	Write32(off int, val uint32)
}

// Memory is a Region backed by a byte slice, either allocated on the Go heap
// or obtained from an mmap of physical memory.
//
// Loads and stores are performed with sync/atomic so that the compiler can
// neither elide, merge nor reorder them.
type Memory struct {
	base uint32
	buf  []byte
}

// New allocates size bytes of word aligned memory, presented at physical
// address base.
func New(base uint32, size int) *Memory {
	if size <= 0 || size%WORD != 0 {
		panic(fmt.Sprintf("mmio: invalid size %#x", size))
	}

	words := make([]uint32, size/WORD)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)

	return &Memory{
		base: base,
		buf:  buf,
	}
}

// NewMemory wraps an existing buffer, presented at physical address base.
func NewMemory(base uint32, buf []byte) (m *Memory, err error) {
	switch {
	case len(buf) == 0 || len(buf)%WORD != 0:
		return nil, fmt.Errorf("invalid buffer size %#x", len(buf))
	case base%WORD != 0:
		return nil, fmt.Errorf("unaligned base address %#08x", base)
	case uintptr(unsafe.Pointer(&buf[0]))%WORD != 0:
		return nil, fmt.Errorf("unaligned buffer for region at %#08x", base)
	}

	m = &Memory{
		base: base,
		buf:  buf,
	}

	return
}

// Base returns the physical address of offset 0.
func (m *Memory) Base() uint32 {
	return m.base
}

// Size returns the region extent in bytes.
func (m *Memory) Size() int {
	return len(m.buf)
}

func (m *Memory) word(off int) *uint32 {
	check(m, off)
	return (*uint32)(unsafe.Pointer(&m.buf[off]))
}

// Read32 performs a volatile 32-bit load at byte offset off.
func (m *Memory) Read32(off int) uint32 {
	return atomic.LoadUint32(m.word(off))
}

// Write32 performs a volatile 32-bit store at byte offset off.
func (m *Memory) Write32(off int, val uint32) {
	atomic.StoreUint32(m.word(off), val)
}

// check panics on misaligned or out of range offsets, an access outside of a
// mapped region is as fatal as dereferencing an unmapped address.
func check(r Region, off int) {
	if off < 0 || off%WORD != 0 || off+WORD > r.Size() {
		panic(fmt.Sprintf("mmio: invalid offset %#x for region at %#08x (size %#x)", off, r.Base(), r.Size()))
	}
}

type window struct {
	r    Region
	off  int
	size int
}

// Sub returns a Region presenting size bytes of r starting at off, rebased so
// that its offset 0 is r's offset off.
func Sub(r Region, off int, size int) Region {
	if off < 0 || off%WORD != 0 || size <= 0 || size%WORD != 0 || off+size > r.Size() {
		panic(fmt.Sprintf("mmio: invalid window %#x+%#x for region at %#08x (size %#x)", off, size, r.Base(), r.Size()))
	}

	return &window{
		r:    r,
		off:  off,
		size: size,
	}
}

func (w *window) Base() uint32 {
	return w.r.Base() + uint32(w.off)
}

func (w *window) Size() int {
	return w.size
}

func (w *window) Read32(off int) uint32 {
	check(w, off)
	return w.r.Read32(w.off + off)
}

func (w *window) Write32(off int, val uint32) {
	check(w, off)
	w.r.Write32(w.off+off, val)
}
