// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package selftest implements memory and DMA engine bring-up tests.
//
// Tests never abort on a mismatch: every check runs and each failure adds
// one to the error count reported at the end.
package selftest

import (
	"log"
	"time"

	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// RAM test patterns, every nibble holds both set and cleared bits and the two
// words differ so that aliased addresses are detected.
const (
	PATTERN_0 = 0x5aa55aa5
	PATTERN_1 = 0x12345678
)

// FILL is the sentinel byte written over transfer buffers.
const FILL = 0xff

// Result represents the outcome of a single test invocation.
type Result struct {
	Name   string
	Errors int
}

// Passed reports whether no check failed.
func (r Result) Passed() bool {
	return r.Errors == 0
}

// expect counts a failure when ok is false.
func (r *Result) expect(ok bool) {
	if !ok {
		r.Errors++
	}
}

// Tester runs tests and reports their progress.
type Tester struct {
	// Log receives test output, the standard logger is used when nil
	Log *log.Logger
	// Debug enables register and buffer dumps, which only read memory
	Debug bool
	// Settle is the delay between engine start and transfer verification
	Settle time.Duration
}

func (t *Tester) logger() *log.Logger {
	if t.Log != nil {
		return t.Log
	}

	return log.Default()
}

func (t *Tester) dump(name string, r mmio.Region) {
	if !t.Debug {
		return
	}

	mmio.Dump(t.logger(), name, r, 0, r.Size())
}

// RAM writes two patterns at the first two words of r and verifies their
// read back.
func (t *Tester) RAM(name string, r mmio.Region) (res Result) {
	l := t.logger()
	res.Name = name

	l.Printf("\nTesting %s at @0x%08x...", name, r.Base())

	r.Write32(0, PATTERN_0)
	r.Write32(mmio.WORD, PATTERN_1)

	res.expect(t.verify(r, 0, PATTERN_0))
	res.expect(t.verify(r, mmio.WORD, PATTERN_1))

	l.Printf("errors: %d", res.Errors)

	return
}

func (t *Tester) verify(r mmio.Region, off int, want uint32) bool {
	got := r.Read32(off)

	if got == want {
		return true
	}

	t.logger().Printf("mismatch at 0x%08x: wrote 0x%08x, read 0x%08x (%s)", r.Base()+uint32(off), want, got, diagnose(want, got))

	return false
}
