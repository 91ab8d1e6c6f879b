// Package par orchestrates the whole pipeline (stages A-H) behind one
// entry point, wiring the loader, gatherer, input-graph builder, placer,
// ZIA router, output-graph builder, and bitstream assembler in sequence.
// Grounded on the teacher's top-level `core.Builder`/program-run pattern
// (sarchlab-zeonica/core), generalized from a CGRA simulation run to a
// single-pass batch PAR run.
package par

import (
	"github.com/azonenberg/xc2par/bitstream"
	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/outgraph"
	"github.com/azonenberg/xc2par/placer"
	"github.com/azonenberg/xc2par/xc2gather"
	"github.com/azonenberg/xc2par/xc2input"
	"github.com/azonenberg/xc2par/xc2log"
	"github.com/azonenberg/xc2par/xc2netlist"
	"github.com/azonenberg/xc2par/zia"

	"github.com/rs/xid"
)

// OutputFormat selects which of the two bitstream text encodings Run emits.
type OutputFormat int

const (
	FormatJEDEC OutputFormat = iota
	FormatCrbit
)

// RunOptions configures one end-to-end PAR run, built with the teacher's
// fluent `WithX(...) T` builder idiom (SPEC_FULL.md §A "Configuration").
type RunOptions struct {
	part     device.PartSpec
	maxIter  int
	seed     placer.Seed
	format   OutputFormat
	logger   xc2log.Logger
	runID    xid.ID
	provider device.Provider
}

// NewRunOptions seeds defaults: the spec's default max_iter, a zero RNG
// seed, JEDEC output, and a discard logger, plus a fresh run identifier
// used to correlate this run's log lines.
func NewRunOptions(part device.PartSpec) RunOptions {
	return RunOptions{
		part:     part,
		maxIter:  placer.DefaultMaxIter,
		format:   FormatJEDEC,
		logger:   xc2log.Discard(),
		runID:    xid.New(),
		provider: device.DefaultProvider,
	}
}

func (o RunOptions) WithMaxIter(n int) RunOptions {
	o.maxIter = n
	return o
}

func (o RunOptions) WithSeed(s placer.Seed) RunOptions {
	o.seed = s
	return o
}

func (o RunOptions) WithFormat(f OutputFormat) RunOptions {
	o.format = f
	return o
}

func (o RunOptions) WithLogger(l xc2log.Logger) RunOptions {
	o.logger = l
	return o
}

// WithProvider substitutes the source of the device facts Run hands to the
// placer, so a caller can inject device.NewMockProvider in a test instead
// of the compiled-in tables. Only that Facts lookup goes through the
// provider: the ZIA router, output-graph builder and assembler read the
// compiled-in tables directly, and Run never calls the provider's Layout.
func (o RunOptions) WithProvider(p device.Provider) RunOptions {
	o.provider = p
	return o
}

// RunID returns the identifier attached to this run's log lines; it is not
// written into the emitted bitstream.
func (o RunOptions) RunID() xid.ID {
	return o.runID
}

// Result is everything a caller might want back from a completed run: the
// final placement and routing (for parreport), and the framed output
// bytes in the requested format.
type Result struct {
	Placement *placer.Result
	Routing   zia.Routing
	OutGraph  *outgraph.Graph
	Bitstream *bitstream.Bitstream
	Output    []byte
}

// Run executes stages A through H against the given Yosys-style netlist
// JSON, in order, stopping at the first stage that returns an error (spec
// §5: single-threaded, synchronous, no suspension points beyond the
// loader's up-front read and the assembler's one-pass write).
func Run(netlistJSON []byte, opts RunOptions) (*Result, error) {
	log := xc2log.Stage(opts.logger, "par").WithValues("run", opts.runID.String(), "part", opts.part.String())

	stageA, err := xc2netlist.LoadFromJSON(netlistJSON, log)
	if err != nil {
		return nil, err
	}

	anchors, err := xc2gather.Gather(stageA, log)
	if err != nil {
		return nil, err
	}

	stageC, err := xc2input.Build(stageA, anchors, log)
	if err != nil {
		return nil, err
	}

	f := opts.provider.Facts(opts.part.Device)
	placed, err := placer.Place(stageC, f, placer.Options{MaxIter: opts.maxIter, Seed: opts.seed}, log)
	if err != nil {
		return nil, err
	}

	routing, err := zia.Route(stageC, placed, opts.part.Device, log)
	if err != nil {
		return nil, err
	}

	outGraph, err := outgraph.Build(stageC, placed, routing, opts.part.Device, log)
	if err != nil {
		return nil, err
	}

	bits, err := bitstream.Assemble(outGraph, log)
	if err != nil {
		return nil, err
	}

	var output []byte
	switch opts.format {
	case FormatCrbit:
		output = bitstream.EmitCrbit(bits)
	default:
		output = bitstream.EmitJEDEC(bits)
	}

	log.V(1).Info("run complete", "format", opts.format)
	return &Result{
		Placement: placed,
		Routing:   routing,
		OutGraph:  outGraph,
		Bitstream: bits,
		Output:    output,
	}, nil
}
