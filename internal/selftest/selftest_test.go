// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package selftest

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/usbarmory/axi-selftest/internal/board"
	"github.com/usbarmory/axi-selftest/internal/mmio"
	"github.com/usbarmory/axi-selftest/internal/sim"
)

func newTester(debug bool) (*Tester, *bytes.Buffer) {
	out := &bytes.Buffer{}

	return &Tester{
		Log:   log.New(out, "", 0),
		Debug: debug,
	}, out
}

func TestRAM(t *testing.T) {
	tester, out := newTester(false)
	m := mmio.New(0x10000000, 16)

	// prior contents must not matter
	m.Write32(0, PATTERN_1)
	m.Write32(4, PATTERN_0)

	res := tester.RAM("AXI RAM", m)

	if !res.Passed() || res.Name != "AXI RAM" {
		t.Errorf("unexpected result %+v", res)
	}

	if m.Read32(0) != PATTERN_0 || m.Read32(4) != PATTERN_1 {
		t.Error("patterns not written at the first two words")
	}

	if out.String() != "\nTesting AXI RAM at @0x10000000...\nerrors: 0\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRAMIdempotent(t *testing.T) {
	tester, _ := newTester(false)
	m := mmio.New(0x10000000, 8)

	for i := 0; i < 3; i++ {
		if res := tester.RAM("AXI RAM", m); !res.Passed() {
			t.Errorf("run %d: %d errors on good memory", i, res.Errors)
		}
	}
}

func TestRAMStuckBits(t *testing.T) {
	soc, err := sim.New(board.Default())

	if err != nil {
		t.Fatal(err)
	}

	// bit 0 stuck low at word 0, bits 31 and 30 stuck high at word 1
	soc.Stick(board.AXI_RAM_BASE, 0x00000001, 0)
	soc.Stick(board.AXI_RAM_BASE+4, 0xc0000000, 0xc0000000)

	r, err := soc.Region(board.AXI_RAM_BASE, board.RAM_SIZE)

	if err != nil {
		t.Fatal(err)
	}

	tester, out := newTester(false)
	res := tester.RAM("AXI RAM", r)

	if res.Errors != 2 {
		t.Errorf("expected 2 errors, got %d", res.Errors)
	}

	for _, s := range []string{
		"mismatch at 0x10000000: wrote 0x5aa55aa5, read 0x5aa55aa4 (bits 0 read low)",
		"mismatch at 0x10000004: wrote 0x12345678, read 0xd2345678 (bits 31,30 read high)",
		"errors: 2",
	} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("missing %q in output:\n%s", s, out.String())
		}
	}
}

// aliased models a stuck address line, both words decode to the same cell.
type aliased struct {
	*mmio.Memory
}

func (a *aliased) Read32(off int) uint32 {
	return a.Memory.Read32(0)
}

func (a *aliased) Write32(off int, val uint32) {
	a.Memory.Write32(0, val)
}

func TestRAMAddressAlias(t *testing.T) {
	tester, _ := newTester(false)
	res := tester.RAM("AXI RAM", &aliased{mmio.New(0x10000000, 8)})

	if res.Errors != 1 {
		t.Errorf("expected aliasing to fail word 0 only, got %d errors", res.Errors)
	}
}

func TestDiagnose(t *testing.T) {
	for _, c := range []struct {
		want, got uint32
		expected  string
	}{
		{0x5aa55aa5, 0x5aa55aa5, "no difference"},
		{0x5aa55aa5, 0x5aa55aa7, "bits 1 read high"},
		{0x5aa55aa5, 0x1aa55aa4, "bits 30,0 read low"},
		{0x5aa55aa5, 0xdaa55aa1, "bits 31 read high, bits 2 read low"},
	} {
		if s := diagnose(c.want, c.got); s != c.expected {
			t.Errorf("%#08x/%#08x: expected %q, got %q", c.want, c.got, c.expected, s)
		}
	}
}
