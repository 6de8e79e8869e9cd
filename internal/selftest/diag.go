// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package selftest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/usbarmory/tamago/bits"
)

// flipped returns the bit positions which differ between want and got, split
// by the level they were read back at.
func flipped(want uint32, got uint32) (high []int, low []int) {
	diff := want ^ got

	for pos := 31; pos >= 0; pos-- {
		if !bits.IsSet(&diff, pos) {
			continue
		}

		if bits.IsSet(&got, pos) {
			high = append(high, pos)
		} else {
			low = append(low, pos)
		}
	}

	return
}

func join(pos []int) string {
	s := make([]string, len(pos))

	for i, p := range pos {
		s[i] = strconv.Itoa(p)
	}

	return strings.Join(s, ",")
}

// diagnose describes a read back mismatch as stuck data lines.
func diagnose(want uint32, got uint32) string {
	high, low := flipped(want, got)

	switch {
	case len(high) > 0 && len(low) > 0:
		return fmt.Sprintf("bits %s read high, bits %s read low", join(high), join(low))
	case len(high) > 0:
		return fmt.Sprintf("bits %s read high", join(high))
	case len(low) > 0:
		return fmt.Sprintf("bits %s read low", join(low))
	}

	return "no difference"
}
