package xc2netlist

import (
	"encoding/json"
	"fmt"

	"github.com/azonenberg/xc2par/xc2errs"
)

// Netlist is the root of the synthesis JSON schema (spec §6), grounded on
// the upstream Yosys netlist JSON format. Decoding uses encoding/json
// (stdlib): no library in the example corpus provides a JSON codec, and
// this schema is a fixed external contract rather than a domain-specific
// serialization concern, so no ecosystem library from the pack has a
// natural home here (see DESIGN.md).
type Netlist struct {
	Creator string            `json:"creator"`
	Modules map[string]Module `json:"modules"`
}

// Module is one Yosys module: ports, cells, netnames, plus a `top`
// attribute marking the single module the loader should normalize.
type Module struct {
	Attributes map[string]AttributeVal `json:"attributes"`
	Ports      map[string]Port         `json:"ports"`
	Cells      map[string]Cell         `json:"cells"`
	Netnames   map[string]Netname      `json:"netnames"`
}

// IsTop reports whether this module carries a truthy `top` attribute.
func (m Module) IsTop() bool {
	v, ok := m.Attributes["top"]
	if !ok {
		return false
	}
	n, ok := v.ToNumber()
	return ok && n != 0
}

// PortDirection is the direction of a module-level port.
type PortDirection string

const (
	DirInput  PortDirection = "input"
	DirOutput PortDirection = "output"
	DirInOut  PortDirection = "inout"
)

// Port is a module-level port: one or more bits, each either a net index
// or a special constant/unknown value.
type Port struct {
	Direction PortDirection `json:"direction"`
	Bits      []BitVal      `json:"bits"`
}

// Cell is one instantiated primitive (AND-term, register, IO buffer, ...).
type Cell struct {
	HideName        int                      `json:"hide_name"`
	CellType        string                   `json:"type"`
	Parameters      map[string]AttributeVal  `json:"parameters"`
	Attributes      map[string]AttributeVal  `json:"attributes"`
	PortDirections  map[string]PortDirection `json:"port_directions"`
	Connections     map[string][]BitVal      `json:"connections"`
}

// Netname names a set of bits; the loader gives that name to the bits'
// nets, allocating a net for any bit no cell connects.
type Netname struct {
	HideName   int                     `json:"hide_name"`
	Bits       []BitVal                `json:"bits"`
	Attributes map[string]AttributeVal `json:"attributes"`
}

// SpecialBit is a non-numeric bit value (spec §6: "0"|"1"|"x"|"z").
type SpecialBit string

const (
	Bit0       SpecialBit = "0"
	Bit1       SpecialBit = "1"
	BitX       SpecialBit = "x"
	BitZ       SpecialBit = "z"
)

// BitVal is either a net index (N) or one of the special constant values
// (S); exactly one is meaningful, selected by IsNet.
type BitVal struct {
	IsNet bool
	Net   int
	Special SpecialBit
}

func (b *BitVal) UnmarshalJSON(data []byte) error {
	var asNum int
	if err := json.Unmarshal(data, &asNum); err == nil {
		*b = BitVal{IsNet: true, Net: asNum}
		return nil
	}
	var asStr string
	if err := json.Unmarshal(data, &asStr); err != nil {
		return xc2errs.New(xc2errs.KindIllegalBitValue, "", "bit value is neither a number nor a string: %s", string(data))
	}
	switch SpecialBit(asStr) {
	case Bit0, Bit1, BitX, BitZ:
		*b = BitVal{IsNet: false, Special: SpecialBit(asStr)}
		return nil
	default:
		return xc2errs.New(xc2errs.KindIllegalBitValue, "", "unrecognized bit value %q", asStr)
	}
}

func (b BitVal) MarshalJSON() ([]byte, error) {
	if b.IsNet {
		return json.Marshal(b.Net)
	}
	return json.Marshal(string(b.Special))
}

func (b BitVal) String() string {
	if b.IsNet {
		return fmt.Sprintf("%d", b.Net)
	}
	return string(b.Special)
}

// AttributeVal is either a numeric or string attribute/parameter value
// (spec §6: "Attribute values are numeric or string; numbers may appear
// as bit-strings").
type AttributeVal struct {
	IsString bool
	Number   int
	Str      string
}

func (a *AttributeVal) UnmarshalJSON(data []byte) error {
	var asNum int
	if err := json.Unmarshal(data, &asNum); err == nil {
		*a = AttributeVal{IsString: false, Number: asNum}
		return nil
	}
	var asStr string
	if err := json.Unmarshal(data, &asStr); err != nil {
		return xc2errs.New(xc2errs.KindIllegalAttributeValue, "", "attribute value is neither number nor string: %s", string(data))
	}
	*a = AttributeVal{IsString: true, Str: asStr}
	return nil
}

func (a AttributeVal) MarshalJSON() ([]byte, error) {
	if a.IsString {
		return json.Marshal(a.Str)
	}
	return json.Marshal(a.Number)
}

// ToNumber mirrors the original AttributeVal::to_number: a numeric
// attribute is returned directly; a string attribute is parsed as binary
// ("" means 0, matching Yosys's convention for an all-zero-width value).
func (a AttributeVal) ToNumber() (int, bool) {
	if !a.IsString {
		return a.Number, true
	}
	if a.Str == "" {
		return 0, true
	}
	n := 0
	for _, c := range a.Str {
		if c != '0' && c != '1' {
			return 0, false
		}
		n = n<<1 | int(c-'0')
	}
	return n, true
}

// ToStringIfString mirrors to_string_if_string: a string attribute value
// that is not itself a binary digit string is treated as a real name
// (e.g. a device string or LOC), trimming one trailing space Yosys
// sometimes appends.
func (a AttributeVal) ToStringIfString() (string, bool) {
	if !a.IsString {
		return "", false
	}
	if a.Str == "" {
		return "", false
	}
	onlyBinary := true
	for _, c := range a.Str {
		if c != '0' && c != '1' && c != 'x' && c != 'z' {
			onlyBinary = false
			break
		}
	}
	if onlyBinary {
		return "", false
	}
	if a.Str[len(a.Str)-1] == ' ' {
		return a.Str[:len(a.Str)-1], true
	}
	return a.Str, true
}
