// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"github.com/usbarmory/axi-selftest/internal/dma"
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// Engine models an AXI DMA engine control register block. Writing the VALID
// register copies LEN bytes from READ_ADDR of the read port to WRITE_ADDR of
// the write port, synchronously.
type Engine struct {
	Name string

	// Read and Write are the engine port windows, offset 0 of each maps to
	// the start of the memory the engine reaches through that port.
	Read  mmio.Region
	Write mmio.Region

	// Dead ignores start requests.
	Dead bool
	// Short is the number of trailing bytes left untransferred.
	Short int

	// Transfers counts completed transfers.
	Transfers int
	// Faults counts transfers rejected for exceeding a port window.
	Faults int

	regs *mmio.Memory
}

func newEngine(name string, csr uint32) *Engine {
	return &Engine{
		Name: name,
		regs: mmio.New(csr, dma.CSR_SIZE),
	}
}

// Base returns the register block address.
func (e *Engine) Base() uint32 {
	return e.regs.Base()
}

// Size returns the register block size.
func (e *Engine) Size() int {
	return e.regs.Size()
}

// Read32 returns the last value written to a register.
func (e *Engine) Read32(off int) uint32 {
	return e.regs.Read32(off)
}

// Write32 sets a register, a write to VALID starts the engine.
func (e *Engine) Write32(off int, val uint32) {
	e.regs.Write32(off, val)

	if off == dma.VALID && !e.Dead {
		e.run()
	}
}

func (e *Engine) run() {
	src := int(e.regs.Read32(dma.READ_ADDR))
	dst := int(e.regs.Read32(dma.WRITE_ADDR))
	n := int(e.regs.Read32(dma.LEN)) - e.Short

	switch {
	case e.Read == nil || e.Write == nil:
		e.Faults++
		return
	case src%mmio.WORD != 0 || dst%mmio.WORD != 0:
		e.Faults++
		return
	case src+n > e.Read.Size() || dst+n > e.Write.Size():
		e.Faults++
		return
	}

	for i := 0; i+mmio.WORD <= n; i += mmio.WORD {
		e.Write.Write32(dst+i, e.Read.Read32(src+i))
	}

	e.Transfers++
}
