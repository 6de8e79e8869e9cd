// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !linux

package mmio

import (
	"errors"
)

// Mapping is a Region backed by a shared mapping of physical memory.
type Mapping struct {
	*Memory
}

// Map is only supported on Linux.
func Map(base uint32, size int) (*Mapping, error) {
	return nil, errors.New("physical memory mapping is not supported on this platform")
}

// Close releases the mapping.
func (m *Mapping) Close() error {
	return nil
}
