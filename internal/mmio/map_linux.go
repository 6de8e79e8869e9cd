// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build linux

package mmio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const devMem = "/dev/mem"

// Mapping is a Region backed by a shared mapping of physical memory.
type Mapping struct {
	*Memory

	// page aligned mmap, to be released on Close
	mem []byte
}

// Map maps size bytes of physical memory at address base through /dev/mem.
//
// The device is opened with O_SYNC so that the kernel maps the range
// uncached, as required for device registers.
func Map(base uint32, size int) (m *Mapping, err error) {
	f, err := os.OpenFile(devMem, os.O_RDWR|os.O_SYNC, 0)

	if err != nil {
		return
	}
	defer f.Close()

	ps := int64(unix.Getpagesize())
	page := int64(base) &^ (ps - 1)
	delta := int(int64(base) - page)
	length := (int64(delta+size) + ps - 1) &^ (ps - 1)

	mem, err := unix.Mmap(int(f.Fd()), page, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)

	if err != nil {
		return nil, fmt.Errorf("could not map %#08x+%#x, %v", base, size, err)
	}

	m = &Mapping{
		mem: mem,
	}

	if m.Memory, err = NewMemory(base, mem[delta:delta+size]); err != nil {
		_ = unix.Munmap(mem)
		return nil, err
	}

	return
}

// Close releases the mapping, the Region must not be used afterwards.
func (m *Mapping) Close() error {
	return unix.Munmap(m.mem)
}
