// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmio

import (
	"log"
)

// Fill sets every byte of size bytes at offset off to b, one word store at a
// time.
func Fill(r Region, off int, size int, b byte) {
	val := uint32(b) * 0x01010101

	for i := 0; i < size; i += WORD {
		r.Write32(off+i, val)
	}
}

// ReadWords returns n words read from offset off.
func ReadWords(r Region, off int, n int) (words []uint32) {
	words = make([]uint32, n)

	for i := range words {
		words[i] = r.Read32(off + i*WORD)
	}

	return
}

// Equal compares size bytes of a at offA against size bytes of b at offB.
//
// Every word of both ranges is read, regardless of earlier mismatches, so
// that the sequence of bus accesses does not depend on the memory contents.
func Equal(a Region, offA int, b Region, offB int, size int) bool {
	equal := true

	for i := 0; i < size; i += WORD {
		x := a.Read32(offA + i)
		y := b.Read32(offB + i)

		if x != y {
			equal = false
		}
	}

	return equal
}

// Dump logs size bytes at offset off, one word per line.
func Dump(l *log.Logger, name string, r Region, off int, size int) {
	l.Printf("%s dump:", name)

	for i := 0; i < size; i += WORD {
		l.Printf("Address 0x%08x = 0x%08x", r.Base()+uint32(off+i), r.Read32(off+i))
	}
}
