// Copyright (c) F-Secure Corporation
// https://foundry.f-secure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/usbarmory/axi-selftest/internal/board"
	"github.com/usbarmory/axi-selftest/internal/mmio"
	"github.com/usbarmory/axi-selftest/internal/selftest"
	"github.com/usbarmory/axi-selftest/internal/sim"
)

const usage = `axi-selftest - AXI memory and DMA bring-up tests

Usage: axi-selftest [OPTIONS]
  -c <path>   board description (YAML), reference SoC when omitted
  -s          run against a simulated SoC instead of /dev/mem
  -t <test>   test to run: ram, dma, all (default: all)
  -r <name>   restrict RAM tests to the named region
  -d          dump engine registers and transfer buffers
  -w <delay>  wait before verifying transfers (e.g. 1ms)
  -i          interactive diagnostics menu
`

type Config struct {
	board    string
	simulate bool
	test     string
	ram      string
	debug    bool
	settle   time.Duration
	menu     bool
}

var conf *Config

// bus is the address space the tests run against.
type bus interface {
	selftest.Bus
	Close() error
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stdout)

	conf = &Config{}

	flag.Usage = func() {
		fmt.Println(usage)
	}

	flag.StringVar(&conf.board, "c", "", "board description (YAML)")
	flag.BoolVar(&conf.simulate, "s", false, "simulate the SoC")
	flag.StringVar(&conf.test, "t", "all", "test to run (ram, dma, all)")
	flag.StringVar(&conf.ram, "r", "", "RAM region name")
	flag.BoolVar(&conf.debug, "d", false, "debug dumps")
	flag.DurationVar(&conf.settle, "w", 0, "transfer settle delay")
	flag.BoolVar(&conf.menu, "i", false, "interactive menu")
}

func loadBoard() (b *board.Board, err error) {
	if len(conf.board) == 0 {
		b = board.Default()
	} else if b, err = board.Load(conf.board); err != nil {
		return
	}

	if conf.debug {
		b.Debug = true
	}

	if conf.settle > 0 {
		b.Settle = conf.settle
	}

	return
}

func open(b *board.Board) (bus, error) {
	if !conf.simulate {
		return &mmio.DevMem{}, nil
	}

	soc, err := sim.New(b)

	if err != nil {
		return nil, err
	}

	return soc, nil
}

func rams(s *selftest.Suite) (results []selftest.Result, err error) {
	found := false

	for _, ram := range s.Board.RAMs {
		if len(conf.ram) > 0 && ram.Name != conf.ram {
			continue
		}

		found = true

		res, err := s.RAM(ram)

		if err != nil {
			return results, err
		}

		results = append(results, res)
	}

	if !found {
		return nil, fmt.Errorf("no RAM named %q", conf.ram)
	}

	return
}

func run(s *selftest.Suite, test string) (results []selftest.Result, err error) {
	switch test {
	case "ram":
		return rams(s)
	case "dma":
		res, err := s.DMA()

		if err != nil {
			return nil, err
		}

		return []selftest.Result{res}, nil
	case "all":
		if results, err = rams(s); err != nil {
			return
		}

		res, err := s.DMA()

		if err != nil {
			return results, err
		}

		return append(results, res), nil
	default:
		return nil, fmt.Errorf("unknown test %q", test)
	}
}

func summary(results []selftest.Result) {
	log.Println("\nSummary:")

	for _, res := range results {
		status := "PASS"

		if !res.Passed() {
			status = "FAIL"
		}

		log.Printf("  %-16s %s (errors: %d)", res.Name, status, res.Errors)
	}
}

func main() {
	var results []selftest.Result

	flag.Parse()

	log.Printf("axi-selftest %s (%s)", Revision, Build)

	b, err := loadBoard()

	if err != nil {
		log.Fatal(err)
	}

	mem, err := open(b)

	if err != nil {
		log.Fatal(err)
	}

	s := selftest.NewSuite(b, mem)

	if conf.menu {
		results, err = menu(s)
	} else {
		results, err = run(s, conf.test)
	}

	if e := mem.Close(); e != nil && err == nil {
		err = e
	}

	if err != nil {
		log.Fatal(err)
	}

	summary(results)

	if !selftest.Passed(results) {
		os.Exit(1)
	}
}
