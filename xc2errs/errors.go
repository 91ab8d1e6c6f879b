// Package xc2errs defines the structured error kinds that cross stage
// boundaries in the PAR pipeline (spec §7). No stage panics; every fallible
// operation returns one of these kinds wrapped in the standard error
// interface so callers can use errors.As instead of string matching.
package xc2errs

import "fmt"

// Kind identifies which family of §7 error a Error value belongs to.
type Kind string

const (
	// Schema / parse (§4.1)
	KindMultipleTopLevelModules Kind = "multiple-toplevel-modules"
	KindNoTopLevelModule        Kind = "no-toplevel"
	KindUnsupportedCellType     Kind = "unsupported-cell-type"
	KindMultipleNetDrivers      Kind = "multiple-net-drivers"
	KindNoNetDriver             Kind = "no-net-driver"
	KindMalformedLOC            Kind = "malformed-LOC"
	KindIllegalBitValue         Kind = "illegal-bit-value"
	KindIllegalAttributeValue   Kind = "illegal-attribute-value"
	KindMissingRequiredConn     Kind = "missing-required-connection"
	KindTooManyConnections      Kind = "too-many-connections"
	KindMissingRequiredParam    Kind = "missing-required-parameter"
	KindMismatchedInputCount    Kind = "mismatched-input-count"
	KindNumericParse            Kind = "numeric-parse"

	// Normalization (§4.3)
	KindIllegalNodeDriver    Kind = "illegal-node-driver"
	KindIllegalNodeSink      Kind = "illegal-node-sink"
	KindWrongConnectionType  Kind = "wrong-connection-type"
	KindWrongTiedValue       Kind = "wrong-tied-value"
	KindWrongPtermInputs     Kind = "wrong-pterm-inputs"
	KindTooManyFeedbacksUsed Kind = "too-many-feedbacks-used"
	KindLOCMismatchedFB      Kind = "LOC-mismatched-FB"
	KindLOCMismatchedMC      Kind = "LOC-mismatched-MC"
	KindSanityCheck          Kind = "sanity-check"

	// PAR
	KindIterationsExceeded Kind = "iterations-exceeded"
	KindSanityCheckFailed  Kind = "sanity-check-failed"

	// Bitstream read (§7)
	KindMissingSTX                  Kind = "missing-STX"
	KindMissingETX                  Kind = "missing-ETX"
	KindUnexpectedEnd               Kind = "unexpected-end"
	KindBadFileChecksum             Kind = "bad-file-checksum"
	KindBadFuseChecksum             Kind = "bad-fuse-checksum"
	KindInvalidCharacter            Kind = "invalid-character"
	KindInvalidFuseIndex            Kind = "invalid-fuse-index"
	KindMissingQF                   Kind = "missing-QF"
	KindMissingF                    Kind = "missing-F"
	KindUnrecognizedField           Kind = "unrecognized-field"
	KindInvalidUTF8                 Kind = "invalid-utf8"
	KindWrongFuseCount              Kind = "wrong-fuse-count"
	KindBadDeviceName               Kind = "bad-device-name"
	KindUnsupportedOEConfiguration  Kind = "unsupported-OE-configuration"
	KindUnsupportedZIAConfiguration Kind = "unsupported-ZIA-configuration"
)

// Error is the single structured error type used throughout the pipeline.
// Entity names an offending netlist/bitstream entity (a cell name, net
// name, FB index string, byte offset, etc.) so the error message and any
// programmatic handling can locate the offending record.
type Error struct {
	K      Kind
	Entity string
	Msg    string
	// Report carries extra structured payload for KindSanityCheckFailed /
	// KindSanityCheck; nil for all other kinds.
	Report *SanityReport
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s", e.K, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.K, e.Entity, e.Msg)
}

// Kind implements the common interface used by callers that only care
// about the error family, not its message text.
func (e *Error) Kind() Kind { return e.K }

// New builds a plain structured error with no sanity report attached.
func New(k Kind, entity, format string, args ...any) *Error {
	return &Error{K: k, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// UnassignedMacrocell records a macrocell that PAR could not place.
type UnassignedMacrocell struct {
	Name   string
	Reason string
}

// UnassignedPTerm records a P-term that PAR could not place.
type UnassignedPTerm struct {
	Name   string
	Reason string
}

// UnroutableZIARow records an FB/row pair where no legal ZIA source could
// satisfy every P-term input demanding that row.
type UnroutableZIARow struct {
	FB      int
	Row     int
	Reason  string
	Demands []string
}

// SanityReport is the structured payload of KindSanityCheckFailed / the PAR
// sanity check of spec §4.4, enumerating exactly which macrocells, P-terms,
// and ZIA rows could not be given a legal assignment.
type SanityReport struct {
	Macrocells []UnassignedMacrocell
	PTerms     []UnassignedPTerm
	ZIARows    []UnroutableZIARow
}

func (r *SanityReport) Empty() bool {
	return r != nil && len(r.Macrocells) == 0 && len(r.PTerms) == 0 && len(r.ZIARows) == 0
}

// NewSanityCheckFailed wraps a SanityReport into the standard error kind
// used by the placer/router termination paths (spec §4.4 Failure (sanity)).
func NewSanityCheckFailed(report *SanityReport) *Error {
	return &Error{
		K:      KindSanityCheckFailed,
		Msg:    fmt.Sprintf("sanity check failed: %d macrocell(s), %d pterm(s), %d ZIA row(s) unassigned", len(report.Macrocells), len(report.PTerms), len(report.ZIARows)),
		Report: report,
	}
}

// NewIterationsExceeded reports PAR failing to converge within max_iter.
func NewIterationsExceeded(maxIter int) *Error {
	return &Error{K: KindIterationsExceeded, Msg: fmt.Sprintf("placer did not converge within %d iterations", maxIter)}
}
