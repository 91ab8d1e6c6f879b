// Command xc2par-demo generates a small synthetic Yosys-style netlist (one
// input pin feeding an AND/OR/XOR product term into one output pin) and,
// unless -netlist-only is given, runs it through the full PAR pipeline and
// prints the resulting JEDEC to stdout plus a placement summary to stderr.
// Grounded on xc2par/src/bin/demo-driver.rs (original_source), which reads
// a fixed synthetic netlist file and drives the PAR engine against it for
// integration testing and documentation; this version generates the
// netlist in-process instead of reading it from disk, since there is no
// fixture file to ship alongside the binary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/par"
	"github.com/azonenberg/xc2par/parreport"
)

const syntheticNetlist = `{
  "creator": "xc2par-demo",
  "modules": {
    "top": {
      "attributes": {"top": 1},
      "ports": {},
      "cells": {
        "ibuf0": {
          "hide_name": 0,
          "type": "IBUF",
          "parameters": {},
          "attributes": {},
          "port_directions": {"O": "output"},
          "connections": {"O": [1]}
        },
        "and0": {
          "hide_name": 0,
          "type": "ANDTERM",
          "parameters": {"TRUE_INP": 1, "COMP_INP": 0},
          "attributes": {},
          "port_directions": {"IN": "input", "IN_B": "input", "OUT": "output"},
          "connections": {"IN": [1], "IN_B": [], "OUT": [2]}
        },
        "or0": {
          "hide_name": 0,
          "type": "ORTERM",
          "parameters": {"WIDTH": 1},
          "attributes": {},
          "port_directions": {"IN": "input", "OUT": "output"},
          "connections": {"IN": [2], "OUT": [3]}
        },
        "xor0": {
          "hide_name": 0,
          "type": "MACROCELL_XOR",
          "parameters": {},
          "attributes": {},
          "port_directions": {"IN_ORTERM": "input", "OUT": "output"},
          "connections": {"IN_ORTERM": [3], "OUT": [4]}
        },
        "iobuf0": {
          "hide_name": 0,
          "type": "IOBUFE",
          "parameters": {},
          "attributes": {"LOC": "FB1_3"},
          "port_directions": {"I": "input", "E": "input"},
          "connections": {"I": [4], "E": ["1"]}
        }
      },
      "netnames": {
        "w_in":  {"hide_name": 0, "bits": [1], "attributes": {}},
        "w_and": {"hide_name": 0, "bits": [2], "attributes": {}},
        "w_or":  {"hide_name": 0, "bits": [3], "attributes": {}},
        "w_xor": {"hide_name": 0, "bits": [4], "attributes": {}}
      }
    }
  }
}`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("xc2par-demo", flag.ContinueOnError)
	part := fs.String("p", "XC2C32-6VQ44", "target part for the demo run")
	netlistOnly := fs.Bool("netlist-only", false, "print the generated netlist JSON and exit, without running PAR")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *netlistOnly {
		fmt.Println(syntheticNetlist)
		return 0
	}

	spec, err := device.ParsePartName(*part)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2par-demo: %v\n", err)
		return 1
	}

	res, err := par.Run([]byte(syntheticNetlist), par.NewRunOptions(spec))
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2par-demo: run failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(os.Stderr, parreport.New(spec.Device, res.OutGraph).WriteTable())
	fmt.Print(string(res.Output))
	return 0
}
