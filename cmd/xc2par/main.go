// Command xc2par is the CLI driver for the PAR pipeline: it reads a
// Yosys-style netlist JSON file, runs stages A-H, and writes a framed
// bitstream (JEDEC by default, crbit on request). Grounded on the
// teacher's flag-parsing/entry-point style (stdlib flag, no cobra/viper
// dependency in the pack) and wires par.RunOptions's fluent builder.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/par"
	"github.com/azonenberg/xc2par/parreport"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2errs"
	"github.com/azonenberg/xc2par/xc2log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("xc2par", flag.ContinueOnError)
	part := fs.String("p", "", "target part, e.g. XC2C256-7TQ144 (required)")
	fs.StringVar(part, "part", "", "alias for -p")
	crbit := fs.Bool("crbit", false, "emit crbit output instead of JEDEC (default: JEDEC)")
	maxIter := fs.Int("max-iter", placer.DefaultMaxIter, "maximum placer iterations before failing")
	seedHex := fs.String("rng-seed", "", "128-bit RNG seed, as 32 hex characters (default: all-zero)")
	deviceDB := fs.String("device-db", "", "optional YAML file extending the built-in part table")
	out := fs.String("o", "", "output file path (default: stdout)")
	verbose := fs.Bool("v", false, "verbose (debug-level) logging to stderr")
	report := fs.Bool("report", false, "print a placement/routing summary table to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: xc2par -p <part> [flags] <netlist.json>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if *part == "" {
		fmt.Fprintln(os.Stderr, "xc2par: -p/--part is required")
		return 2
	}

	if *deviceDB != "" {
		if err := device.LoadOverrideFile(*deviceDB); err != nil {
			fmt.Fprintf(os.Stderr, "xc2par: %v\n", err)
			return 1
		}
	}

	spec, err := device.ParsePartName(*part)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2par: %v\n", err)
		return 1
	}
	if err := spec.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "xc2par: %v\n", err)
		return 1
	}

	netlist, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2par: reading %s: %v\n", fs.Arg(0), err)
		return 1
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := par.NewRunOptions(spec).
		WithMaxIter(*maxIter).
		WithLogger(xc2log.NewSlog(level, os.Stderr))

	if *seedHex != "" {
		seed, err := parseSeed(*seedHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xc2par: -rng-seed: %v\n", err)
			return 1
		}
		opts = opts.WithSeed(seed)
	}

	format := par.FormatJEDEC
	if *crbit {
		format = par.FormatCrbit
	}
	opts = opts.WithFormat(format)

	res, err := par.Run(netlist, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2par: run %s failed: %v\n", opts.RunID().String(), err)
		if xerr, ok := err.(*xc2errs.Error); ok && xerr.Report != nil {
			fmt.Fprintln(os.Stderr, parreport.NewFailed(spec.Device, xerr).WriteTable())
		}
		return 1
	}

	if *report {
		fmt.Fprintln(os.Stderr, parreport.New(spec.Device, res.OutGraph).WriteTable())
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xc2par: creating %s: %v\n", *out, err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(res.Output); err != nil {
		fmt.Fprintf(os.Stderr, "xc2par: writing output: %v\n", err)
		return 1
	}
	return 0
}

func parseSeed(s string) (placer.Seed, error) {
	var seed placer.Seed
	raw, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("not valid hex: %w", err)
	}
	if len(raw) != len(seed) {
		return seed, fmt.Errorf("want %d bytes (32 hex chars), got %d", len(seed), len(raw))
	}
	copy(seed[:], raw)
	return seed, nil
}
