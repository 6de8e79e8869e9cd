// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim simulates the SoC under test, allowing the bring-up tests to
// run without hardware and hardware faults to be injected.
package sim

import (
	"fmt"

	"github.com/usbarmory/axi-selftest/internal/board"
	"github.com/usbarmory/axi-selftest/internal/dma"
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

type options struct {
	straight bool
}

// Option configures the simulated SoC.
type Option func(*options)

// Straight wires each engine to its own buffer, rather than across to the
// other engine's buffer as on the reference SoC.
func Straight() Option {
	return func(o *options) {
		o.straight = true
	}
}

type fault struct {
	addr uint32
	mask uint32
	val  uint32
}

// SoC represents a simulated SoC, its RAMs and its two DMA engines.
type SoC struct {
	CDMA *Engine
	DMA  *Engine

	mems   []*mmio.Memory
	faults []fault
}

// New builds a simulated SoC from a board memory map.
func New(b *board.Board, opts ...Option) (soc *SoC, err error) {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	if err = b.Validate(); err != nil {
		return
	}

	soc = &SoC{
		CDMA: newEngine("cdma", b.CDMA.CSR),
		DMA:  newEngine("dma", b.DMA.CSR),
	}

	for _, ram := range b.RAMs {
		soc.mems = append(soc.mems, mmio.New(ram.Base, ram.Size))
	}

	cdmaPort := soc.port(b.CDMA.Buffer)
	dmaPort := soc.port(b.DMA.Buffer)

	if o.straight {
		soc.CDMA.Read, soc.CDMA.Write = cdmaPort, cdmaPort
		soc.DMA.Read, soc.DMA.Write = dmaPort, dmaPort
	} else {
		soc.CDMA.Read, soc.CDMA.Write = dmaPort, cdmaPort
		soc.DMA.Read, soc.DMA.Write = cdmaPort, dmaPort
	}

	return
}

func (soc *SoC) find(base uint32, size int) (m *mmio.Memory, off int, ok bool) {
	for _, m = range soc.mems {
		start := uint64(m.Base())
		end := start + uint64(m.Size())

		if uint64(base) >= start && uint64(base)+uint64(size) <= end {
			return m, int(base - m.Base()), true
		}
	}

	return nil, 0, false
}

// port returns a window starting at addr and extending to the end of the
// memory holding it, allocating a buffer sized memory when addr is not
// part of any RAM.
func (soc *SoC) port(addr uint32) mmio.Region {
	m, off, ok := soc.find(addr, dma.BUFFER_SIZE)

	if !ok {
		m = mmio.New(addr, dma.BUFFER_SIZE)
		soc.mems = append(soc.mems, m)
	}

	return mmio.Sub(m, off, m.Size()-off)
}

// Stick forces the bits in mask of the word at addr to read back as the
// corresponding bits of val.
func (soc *SoC) Stick(addr uint32, mask uint32, val uint32) {
	soc.faults = append(soc.faults, fault{addr, mask, val})
}

// Region returns the simulated address range base to base+size, either an
// engine register block or memory as seen by the CPU.
func (soc *SoC) Region(base uint32, size int) (mmio.Region, error) {
	for _, e := range []*Engine{soc.CDMA, soc.DMA} {
		if base >= e.Base() && uint64(base)+uint64(size) <= uint64(e.Base())+uint64(e.Size()) {
			return mmio.Sub(e, int(base-e.Base()), size), nil
		}
	}

	m, off, ok := soc.find(base, size)

	if !ok {
		return nil, fmt.Errorf("no simulated memory at %#08x+%#x", base, size)
	}

	return &cpuView{
		Region: mmio.Sub(m, off, size),
		soc:    soc,
	}, nil
}

// Close releases the simulated SoC.
func (soc *SoC) Close() error {
	return nil
}

// cpuView applies stuck bit faults on CPU reads.
type cpuView struct {
	mmio.Region
	soc *SoC
}

func (v *cpuView) Read32(off int) uint32 {
	val := v.Region.Read32(off)
	addr := v.Base() + uint32(off)

	for _, f := range v.soc.faults {
		if f.addr == addr {
			val = val&^f.mask | f.val&f.mask
		}
	}

	return val
}
