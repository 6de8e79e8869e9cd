// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma drives the AXI DMA engines and describes the buffer layout used
// to exercise them.
package dma

import (
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// Engine control registers, LiteX CSRs with 32-bit data width.
const (
	READ_ADDR  = 0x00
	WRITE_ADDR = 0x04
	LEN        = 0x08
	VALID      = 0x0c

	CSR_SIZE = 0x10
)

// Engine represents a DMA engine control register block.
//
// All registers are write-only from the engine point of view, there is no
// busy or completion flag.
type Engine struct {
	// Name is the engine name, for reporting only
	Name string
	// Regs is the control register block
	Regs mmio.Region
}

// SetReadAddr sets the transfer source offset within the engine read port.
func (e *Engine) SetReadAddr(addr uint32) {
	e.Regs.Write32(READ_ADDR, addr)
}

// SetWriteAddr sets the transfer destination offset within the engine write
// port.
func (e *Engine) SetWriteAddr(addr uint32) {
	e.Regs.Write32(WRITE_ADDR, addr)
}

// SetLen sets the transfer length in bytes.
func (e *Engine) SetLen(n uint32) {
	e.Regs.Write32(LEN, n)
}

// Start launches the transfer, any written value starts the engine.
func (e *Engine) Start() {
	e.Regs.Write32(VALID, 1)
}

// Transfer programs and launches a transfer of n bytes from src to dst. It
// returns as soon as the start register is written, without waiting for
// completion.
func (e *Engine) Transfer(src uint32, dst uint32, n uint32) {
	e.SetReadAddr(src)
	e.SetWriteAddr(dst)
	e.SetLen(n)
	e.Start()
}
