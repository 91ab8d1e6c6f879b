package xc2netlist_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/xc2netlist"
)

func TestXC2Netlist(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "xc2netlist suite")
}

const minimalNetlist = `{
  "creator": "test",
  "modules": {
    "top": {
      "attributes": {"top": 1},
      "ports": {
        "led": {"direction": "output", "bits": [2]}
      },
      "cells": {
        "inbuf1": {
          "hide_name": 0,
          "type": "IBUF",
          "parameters": {},
          "attributes": {},
          "port_directions": {"O": "output"},
          "connections": {"O": [1]}
        },
        "iobuf1": {
          "hide_name": 0,
          "type": "IOBUFE",
          "parameters": {},
          "attributes": {"LOC": "FB1_2"},
          "port_directions": {"I": "input", "IO": "inout"},
          "connections": {"I": [1], "IO": [2]}
        }
      },
      "netnames": {
        "mynet": {"hide_name": 0, "bits": [1], "attributes": {}}
      }
    }
  }
}`

var _ = Describe("LoadFromJSON", func() {
	It("normalizes a minimal netlist without error", func() {
		g, err := xc2netlist.LoadFromJSON([]byte(minimalNetlist), xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())
		Expect(g).NotTo(BeNil())
		Expect(g.Nodes.Len()).To(Equal(2))
	})

	It("names the intermediate net from the netnames section", func() {
		g, err := xc2netlist.LoadFromJSON([]byte(minimalNetlist), xc2log.Discard())
		Expect(err).NotTo(HaveOccurred())
		found := false
		for _, h := range g.Nets.All() {
			if g.Nets.Get(h).Name == "mynet" {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("rejects a netlist with no top module", func() {
		_, err := xc2netlist.LoadFromJSON([]byte(`{"creator":"t","modules":{"m":{"attributes":{},"ports":{},"cells":{},"netnames":{}}}}`), xc2log.Discard())
		Expect(err).To(HaveOccurred())
		var xerr *xc2errs.Error
		Expect(errorsAs(err, &xerr)).To(BeTrue())
		Expect(xerr.Kind()).To(Equal(xc2errs.KindNoTopLevelModule))
	})

	It("rejects a netlist with two top modules", func() {
		both := `{"creator":"t","modules":{
			"a":{"attributes":{"top":1},"ports":{},"cells":{},"netnames":{}},
			"b":{"attributes":{"top":1},"ports":{},"cells":{},"netnames":{}}
		}}`
		_, err := xc2netlist.LoadFromJSON([]byte(both), xc2log.Discard())
		Expect(err).To(HaveOccurred())
		var xerr *xc2errs.Error
		Expect(errorsAs(err, &xerr)).To(BeTrue())
		Expect(xerr.Kind()).To(Equal(xc2errs.KindMultipleTopLevelModules))
	})
})

func errorsAs(err error, target **xc2errs.Error) bool {
	e, ok := err.(*xc2errs.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
