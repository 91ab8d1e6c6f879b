// Command xc2jed2json parses a JEDEC fuse file back into a JSON dump of
// its per-FB decoded bits, for inspecting PAR output without a vendor
// tool. Grounded on xc2bit/src/bin/xc2jed2json.rs (original_source), which
// walks the same device structure table to emit a Yosys-style netlist
// JSON; this version emits a flatter per-FB fuse dump instead, since the
// Go module has no reverse (bits -> logical netlist) decoder, only the
// forward assembler.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/azonenberg/xc2par/bitstream"
	"github.com/azonenberg/xc2par/device"
)

type fbDump struct {
	FB         int    `json:"fb"`
	ZIASelect  []bool `json:"zia_select_bits"`
	AndArray   []bool `json:"and_array_bits"`
	OrArray    []bool `json:"or_array_bits"`
	Macrocells []bool `json:"macrocell_bits"`
}

type dump struct {
	Device   string   `json:"device"`
	NumFuses int      `json:"num_fuses"`
	FBs      []fbDump `json:"fbs"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: xc2jed2json file.jed\n")
		return 2
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2jed2json: %v\n", err)
		return 1
	}
	bits, err := bitstream.ParseJEDEC(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2jed2json: %v\n", err)
		return 1
	}

	layout := device.LayoutFor(bits.Device)
	out := dump{Device: bits.Device.String(), NumFuses: bits.Logical.Len()}

	ziaBits := 40 * 3
	andBits := 56 * 40 * 2
	orBits := 56 * 16
	mcBits := 16 * device.MCFieldBits

	for fb := range layout.FBLogicalBase {
		base := layout.FBLogicalBase[fb]
		cursor := base
		read := func(n int) []bool {
			out := make([]bool, n)
			for i := 0; i < n; i++ {
				out[i] = bits.Logical.Get(cursor + i)
			}
			cursor += n
			return out
		}
		out.FBs = append(out.FBs, fbDump{
			FB:         fb,
			ZIASelect:  read(ziaBits),
			AndArray:   read(andBits),
			OrArray:    read(orBits),
			Macrocells: read(mcBits),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "xc2jed2json: %v\n", err)
		return 1
	}
	return 0
}
