// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmio

// DevMem hands out physical memory mappings and keeps track of them for
// release.
type DevMem struct {
	mappings []*Mapping
}

// Region maps size bytes of physical memory at address base.
func (d *DevMem) Region(base uint32, size int) (r Region, err error) {
	m, err := Map(base, size)

	if err != nil {
		return
	}

	d.mappings = append(d.mappings, m)

	return m, nil
}

// Close releases all mappings, returning the first error encountered.
func (d *DevMem) Close() (err error) {
	for _, m := range d.mappings {
		if e := m.Close(); e != nil && err == nil {
			err = e
		}
	}

	d.mappings = nil

	return
}
