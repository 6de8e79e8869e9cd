// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package board describes the memory map of the SoC under test.
package board

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/usbarmory/axi-selftest/internal/dma"
)

// Reference LiteX AXI test SoC memory map.
const (
	AXI_RAM_BASE       = 0x10000000
	AXIL_RAM_BASE      = 0x20000000
	AXI_DP_RAM_1A_BASE = 0x30000000
	AXI_DP_RAM_2A_BASE = 0x40000000
	RAM_SIZE           = 0x1000

	CSR_AXI_CDMA_BASE = 0xf0001000
	CSR_AXI_DMA_BASE  = 0xf0001800
)

// Transfer test markers, which must never collide as a collision would mask an
// engine reading from the wrong buffer.
const (
	CDMA_MARKER = 0x12345678
	DMA_MARKER  = 0xaabbccdd
)

// RAM represents a memory region subject to the pattern test.
type RAM struct {
	Name string `yaml:"name"`
	Base uint32 `yaml:"base"`
	Size int    `yaml:"size"`
}

// Channel represents a DMA engine and its test buffer.
type Channel struct {
	// CSR is the engine control register block address
	CSR uint32 `yaml:"csr"`
	// Buffer is the test buffer address
	Buffer uint32 `yaml:"buffer"`
	// Marker is the value seeded in the source array
	Marker uint32 `yaml:"marker"`
	// Slot is the source word index holding the marker
	Slot int `yaml:"slot"`
}

// Board represents the SoC memory map and test options.
type Board struct {
	RAMs []RAM   `yaml:"rams"`
	CDMA Channel `yaml:"cdma"`
	DMA  Channel `yaml:"dma"`

	// Debug enables register and buffer dumps
	Debug bool `yaml:"debug"`
	// Settle is the delay between engine start and transfer verification,
	// zero verifies immediately.
	Settle time.Duration `yaml:"settle"`
}

// Default returns the reference SoC memory map.
func Default() *Board {
	return &Board{
		RAMs: []RAM{
			{"AXI RAM", AXI_RAM_BASE, RAM_SIZE},
			{"AXI-Lite RAM", AXIL_RAM_BASE, RAM_SIZE},
			{"AXI DP RAM 1A", AXI_DP_RAM_1A_BASE, RAM_SIZE},
			{"AXI DP RAM 2A", AXI_DP_RAM_2A_BASE, RAM_SIZE},
		},
		CDMA: Channel{
			CSR:    CSR_AXI_CDMA_BASE,
			Buffer: AXI_DP_RAM_1A_BASE,
			Marker: CDMA_MARKER,
			Slot:   1,
		},
		DMA: Channel{
			CSR:    CSR_AXI_DMA_BASE,
			Buffer: AXI_DP_RAM_2A_BASE,
			Marker: DMA_MARKER,
			Slot:   2,
		},
	}
}

// Load reads a YAML board description, any field it omits keeps its default
// value.
func Load(path string) (b *Board, err error) {
	buf, err := os.ReadFile(path)

	if err != nil {
		return
	}

	b = Default()

	if err = yaml.UnmarshalStrict(buf, b); err != nil {
		return nil, fmt.Errorf("invalid board description %s, %v", path, err)
	}

	if err = b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board description %s, %v", path, err)
	}

	return
}

func overlaps(a uint32, sizeA int, b uint32, sizeB int) bool {
	return uint64(a) < uint64(b)+uint64(sizeB) && uint64(b) < uint64(a)+uint64(sizeA)
}

func (c *Channel) validate(name string) error {
	switch {
	case c.CSR%4 != 0:
		return fmt.Errorf("%s: unaligned CSR address %#08x", name, c.CSR)
	case c.Buffer%4 != 0:
		return fmt.Errorf("%s: unaligned buffer address %#08x", name, c.Buffer)
	case c.Slot < 0 || c.Slot >= dma.WORDS:
		return fmt.Errorf("%s: marker slot %d out of range", name, c.Slot)
	case c.Marker == 0xffffffff:
		return fmt.Errorf("%s: marker %#08x matches the fill pattern", name, c.Marker)
	}

	return nil
}

// Validate checks the memory map for consistency.
func (b *Board) Validate() (err error) {
	for i, r := range b.RAMs {
		switch {
		case len(r.Name) == 0:
			return fmt.Errorf("RAM %d has no name", i)
		case r.Base%4 != 0:
			return fmt.Errorf("%s: unaligned base %#08x", r.Name, r.Base)
		case r.Size < 8 || r.Size%4 != 0:
			return fmt.Errorf("%s: invalid size %#x", r.Name, r.Size)
		case uint64(r.Base)+uint64(r.Size) > 1<<32:
			return fmt.Errorf("%s: region exceeds the address space", r.Name)
		}

		for _, o := range b.RAMs[:i] {
			if overlaps(r.Base, r.Size, o.Base, o.Size) {
				return fmt.Errorf("%s overlaps %s", r.Name, o.Name)
			}
		}
	}

	if err = b.CDMA.validate("cdma"); err != nil {
		return
	}

	if err = b.DMA.validate("dma"); err != nil {
		return
	}

	switch {
	case b.CDMA.Marker == b.DMA.Marker:
		return errors.New("cdma and dma markers must differ")
	case overlaps(b.CDMA.Buffer, dma.BUFFER_SIZE, b.DMA.Buffer, dma.BUFFER_SIZE):
		return errors.New("cdma and dma buffers overlap")
	case overlaps(b.CDMA.CSR, dma.CSR_SIZE, b.DMA.CSR, dma.CSR_SIZE):
		return errors.New("cdma and dma registers overlap")
	case b.Settle < 0:
		return errors.New("negative settle delay")
	}

	return
}

// Find returns the RAM named name.
func (b *Board) Find(name string) (r RAM, ok bool) {
	for _, r = range b.RAMs {
		if r.Name == name {
			return r, true
		}
	}

	return RAM{}, false
}
