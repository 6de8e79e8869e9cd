// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package selftest

import (
	"fmt"

	"github.com/usbarmory/axi-selftest/internal/board"
	"github.com/usbarmory/axi-selftest/internal/dma"
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// Bus gives access to physical address ranges.
type Bus interface {
	Region(base uint32, size int) (mmio.Region, error)
}

// Suite runs the tests described by a board memory map.
type Suite struct {
	Tester *Tester
	Board  *board.Board
	Bus    Bus
}

// NewSuite returns a Suite for board b, with test options taken from the
// board description.
func NewSuite(b *board.Board, bus Bus) *Suite {
	return &Suite{
		Tester: &Tester{
			Debug:  b.Debug,
			Settle: b.Settle,
		},
		Board: b,
		Bus:   bus,
	}
}

// RAM runs the pattern test on ram.
func (s *Suite) RAM(ram board.RAM) (res Result, err error) {
	r, err := s.Bus.Region(ram.Base, ram.Size)

	if err != nil {
		return res, fmt.Errorf("%s: %v", ram.Name, err)
	}

	return s.Tester.RAM(ram.Name, r), nil
}

func (s *Suite) channel(name string, c board.Channel) (ch *Channel, err error) {
	regs, err := s.Bus.Region(c.CSR, dma.CSR_SIZE)

	if err != nil {
		return nil, fmt.Errorf("%s registers: %v", name, err)
	}

	mem, err := s.Bus.Region(c.Buffer, dma.BUFFER_SIZE)

	if err != nil {
		return nil, fmt.Errorf("%s buffer: %v", name, err)
	}

	ch = &Channel{
		Engine: &dma.Engine{
			Name: name,
			Regs: regs,
		},
		Buffer: &dma.Buffer{
			Name: name,
			Mem:  mem,
		},
		Marker: c.Marker,
		Slot:   c.Slot,
	}

	return
}

// DMA runs the transfer test on both engines.
func (s *Suite) DMA() (res Result, err error) {
	cdma, err := s.channel("cdma", s.Board.CDMA)

	if err != nil {
		return
	}

	dmac, err := s.channel("dma", s.Board.DMA)

	if err != nil {
		return
	}

	return s.Tester.DMA("DMA", cdma, dmac)
}

// All runs the pattern test on every RAM, followed by the transfer test.
func (s *Suite) All() (results []Result, err error) {
	for _, ram := range s.Board.RAMs {
		res, err := s.RAM(ram)

		if err != nil {
			return results, err
		}

		results = append(results, res)
	}

	res, err := s.DMA()

	if err != nil {
		return
	}

	results = append(results, res)

	return
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, res := range results {
		if !res.Passed() {
			return false
		}
	}

	return true
}
