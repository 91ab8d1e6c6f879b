package par_test

import (
	"testing"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/par"
)

const minimalNetlist = `{
  "creator": "test",
  "modules": {
    "top": {
      "attributes": {"top": 1},
      "ports": {},
      "cells": {
        "io0": {
          "hide_name": 0,
          "type": "IOBUFE",
          "parameters": {},
          "attributes": {"LOC": "FB1_2"},
          "port_directions": {"O": "output"},
          "connections": {"O": [1], "E": ["1"]}
        }
      },
      "netnames": {}
    }
  }
}`

func TestRunProducesJEDEC(t *testing.T) {
	part, err := device.ParsePartName("XC2C32-6VQ44")
	if err != nil {
		t.Fatalf("ParsePartName() error = %v", err)
	}
	opts := par.NewRunOptions(part)

	res, err := par.Run([]byte(minimalNetlist), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Output) == 0 {
		t.Fatal("Run() produced no output bytes")
	}
}

func TestRunRejectsEmptyNetlist(t *testing.T) {
	part, err := device.ParsePartName("XC2C32-6VQ44")
	if err != nil {
		t.Fatalf("ParsePartName() error = %v", err)
	}
	opts := par.NewRunOptions(part)

	if _, err := par.Run([]byte(`{"modules":{}}`), opts); err == nil {
		t.Fatal("Run() succeeded on a netlist with no top module, want error")
	}
}
