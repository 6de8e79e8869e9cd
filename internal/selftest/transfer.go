// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package selftest

import (
	"errors"
	"fmt"
	"time"

	"github.com/usbarmory/axi-selftest/internal/dma"
	"github.com/usbarmory/axi-selftest/internal/mmio"
)

// Channel represents a DMA engine under test along with its buffer.
type Channel struct {
	Engine *dma.Engine
	Buffer *dma.Buffer

	// Marker is seeded at source word Slot, it must be unique across
	// channels.
	Marker uint32
	Slot   int
}

func (c *Channel) validate() error {
	switch {
	case c == nil || c.Engine == nil || c.Buffer == nil:
		return errors.New("incomplete channel")
	case c.Slot < 0 || c.Slot >= dma.WORDS:
		return fmt.Errorf("%s: marker slot %d out of range", c.Engine.Name, c.Slot)
	case c.Marker == FILL*0x01010101:
		return fmt.Errorf("%s: marker %#08x matches the fill pattern", c.Engine.Name, c.Marker)
	case c.Buffer.Mem.Size() < dma.BUFFER_SIZE:
		return fmt.Errorf("%s: buffer too small", c.Engine.Name)
	case c.Engine.Regs.Size() < dma.CSR_SIZE:
		return fmt.Errorf("%s: register block too small", c.Engine.Name)
	}

	return nil
}

func validate(cdma *Channel, dmac *Channel) (err error) {
	if err = cdma.validate(); err != nil {
		return
	}

	if err = dmac.validate(); err != nil {
		return
	}

	switch {
	case cdma.Marker == dmac.Marker:
		return fmt.Errorf("markers must differ, both are %#08x", cdma.Marker)
	case dma.Overlaps(cdma.Buffer, dmac.Buffer):
		return errors.New("transfer buffers overlap")
	}

	return
}

// program launches a whole source to destination transfer. Each engine
// reaches the other engine's buffer at offset 0 of its port windows.
func program(c *Channel) {
	c.Engine.Transfer(dma.SRC_OFFSET, dma.DST_OFFSET, dma.SIDE_SIZE)
}

func (t *Tester) dumpBuffers(state string, cdma *Channel, dmac *Channel) {
	if !t.Debug {
		return
	}

	t.logger().Printf("\n%s state:", state)

	t.dump("src_"+cdma.Engine.Name, cdma.Buffer.Source())
	t.dump("dst_"+cdma.Engine.Name, cdma.Buffer.Destination())
	t.dump("src_"+dmac.Engine.Name, dmac.Buffer.Source())
	t.dump("dst_"+dmac.Engine.Name, dmac.Buffer.Destination())
}

// DMA verifies that both engines move their buffer across to the other
// engine's buffer without interfering with each other.
//
// After filling both buffers and seeding the markers, each destination must
// differ from the other channel's source. Once both engines ran, each
// destination must match the other channel's source.
//
// Engines are started without waiting for completion, unless a Settle delay
// is configured. A transfer which did not complete in time is reported as
// mismatches.
//
// An error is returned, before any memory access, only for inconsistent
// channels.
func (t *Tester) DMA(name string, cdma *Channel, dmac *Channel) (res Result, err error) {
	if err = validate(cdma, dmac); err != nil {
		return
	}

	l := t.logger()
	res.Name = name

	l.Printf("\nTesting %s...", name)

	t.dump(cdma.Engine.Name+" initial config", cdma.Engine.Regs)
	t.dump(dmac.Engine.Name+" initial config", dmac.Engine.Regs)

	cdma.Buffer.Fill(FILL)
	dmac.Buffer.Fill(FILL)

	cdma.Buffer.SetSrc(cdma.Slot, cdma.Marker)
	dmac.Buffer.SetSrc(dmac.Slot, dmac.Marker)

	// stale data must not already match
	res.expect(!mmio.Equal(dmac.Buffer.Source(), 0, cdma.Buffer.Destination(), 0, dma.SIDE_SIZE))
	res.expect(!mmio.Equal(cdma.Buffer.Source(), 0, dmac.Buffer.Destination(), 0, dma.SIDE_SIZE))

	t.dumpBuffers("BEFORE", cdma, dmac)

	program(cdma)
	t.dump(cdma.Engine.Name+" configuration", cdma.Engine.Regs)

	program(dmac)
	t.dump(dmac.Engine.Name+" configuration", dmac.Engine.Regs)

	if t.Settle > 0 {
		l.Printf("waiting %v for transfer completion", t.Settle)
		time.Sleep(t.Settle)
	}

	t.dumpBuffers("AFTER", cdma, dmac)

	res.expect(mmio.Equal(dmac.Buffer.Source(), 0, cdma.Buffer.Destination(), 0, dma.SIDE_SIZE))
	res.expect(mmio.Equal(cdma.Buffer.Source(), 0, dmac.Buffer.Destination(), 0, dma.SIDE_SIZE))

	l.Printf("errors: %d", res.Errors)

	return
}
