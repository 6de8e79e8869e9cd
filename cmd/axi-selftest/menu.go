// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-tty"

	"github.com/usbarmory/axi-selftest/internal/selftest"
)

// at most 9 RAM regions get a menu key
const maxMenuRAMs = 9

func printMenu(w io.Writer, s *selftest.Suite) {
	fmt.Fprintln(w, "\nDiagnostics:")

	for i, ram := range s.Board.RAMs {
		if i == maxMenuRAMs {
			break
		}

		fmt.Fprintf(w, "  %d) %s test\n", i+1, ram.Name)
	}

	fmt.Fprintln(w, "  d) DMA test")
	fmt.Fprintln(w, "  a) all tests")
	fmt.Fprintln(w, "  q) quit")
	fmt.Fprint(w, "> ")
}

// choose runs the test selected by key.
func choose(s *selftest.Suite, key rune) (results []selftest.Result, quit bool, err error) {
	switch {
	case key == 'q' || key == 'Q':
		return nil, true, nil
	case key == 'd' || key == 'D':
		results, err = run(s, "dma")
	case key == 'a' || key == 'A':
		results, err = s.All()
	case key >= '1' && key <= '9':
		i := int(key - '1')

		if i >= len(s.Board.RAMs) {
			return nil, false, fmt.Errorf("no RAM at entry %c", key)
		}

		var res selftest.Result

		if res, err = s.RAM(s.Board.RAMs[i]); err == nil {
			results = []selftest.Result{res}
		}
	default:
		return nil, false, fmt.Errorf("invalid selection %q", key)
	}

	return
}

// menu offers the tests on the controlling terminal until quit, returning the
// results of every test run.
func menu(s *selftest.Suite) (results []selftest.Result, err error) {
	t, err := tty.Open()

	if err != nil {
		return
	}
	defer t.Close()

	out := t.Output()

	for {
		printMenu(out, s)

		key, err := t.ReadRune()

		if err != nil {
			return results, err
		}

		fmt.Fprintf(out, "%c\n", key)

		res, quit, err := choose(s, key)

		if quit {
			return results, nil
		}

		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		results = append(results, res...)
	}
}
