// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

import (
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// Test buffer layout, a source and a destination array of WORDS words each.
const (
	WORDS     = 4
	SIDE_SIZE = WORDS * mmio.WORD

	SRC_OFFSET = 0
	DST_OFFSET = SRC_OFFSET + SIDE_SIZE

	BUFFER_SIZE = DST_OFFSET + SIDE_SIZE
)

// Buffer represents a transfer test buffer located in engine visible memory.
type Buffer struct {
	// Name is the buffer name, for reporting only
	Name string
	// Mem covers BUFFER_SIZE bytes at the buffer base address
	Mem mmio.Region
}

// Source returns the source array.
func (b *Buffer) Source() mmio.Region {
	return mmio.Sub(b.Mem, SRC_OFFSET, SIDE_SIZE)
}

// Destination returns the destination array.
func (b *Buffer) Destination() mmio.Region {
	return mmio.Sub(b.Mem, DST_OFFSET, SIDE_SIZE)
}

// Src returns source word i.
func (b *Buffer) Src(i int) uint32 {
	return b.Source().Read32(i * mmio.WORD)
}

// SetSrc sets source word i.
func (b *Buffer) SetSrc(i int, val uint32) {
	b.Source().Write32(i*mmio.WORD, val)
}

// Dst returns destination word i.
func (b *Buffer) Dst(i int) uint32 {
	return b.Destination().Read32(i * mmio.WORD)
}

// Fill sets every byte of the buffer, source and destination, to v.
func (b *Buffer) Fill(v byte) {
	mmio.Fill(b.Mem, 0, BUFFER_SIZE, v)
}

// Overlaps reports whether two buffers share any physical address.
func Overlaps(a *Buffer, b *Buffer) bool {
	startA := uint64(a.Mem.Base())
	startB := uint64(b.Mem.Base())

	return startA < startB+BUFFER_SIZE && startB < startA+BUFFER_SIZE
}
