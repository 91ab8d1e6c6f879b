package bitstream

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/xc2errs"
)

const (
	stx = 0x02
	etx = 0x03
)

// EmitJEDEC writes b as a JEDEC-style ASCII fuse file (spec §4.7): STX,
// device-name comment, fuse-count field, a default-value field, one `L`
// field per contiguous default-deviating run, a checksum, and ETX.
func EmitJEDEC(b *Bitstream) []byte {
	var sb strings.Builder
	sb.WriteByte(stx)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "N DEVICE %s*\n", b.Device.String())

	n := b.Logical.Len()
	fmt.Fprintf(&sb, "QF%d*\n", n)
	sb.WriteString("F0*\n")

	for _, run := range defaultDeviatingRuns(b.Logical, false) {
		fmt.Fprintf(&sb, "L%06d ", run.start)
		for i := run.start; i < run.start+run.length; i++ {
			if b.Logical.Get(i) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteString("*\n")
	}

	checksum := fuseChecksum(b.Logical)
	fmt.Fprintf(&sb, "C%04X*\n", checksum)
	sb.WriteByte(etx)

	// File-level checksum disabled (spec §4.7): four ASCII zeros, not a
	// computed value.
	sb.WriteString("0000\n")
	return []byte(sb.String())
}

// run is a maximal span of fuses whose value differs from the declared
// default.
type run struct {
	start, length int
}

func defaultDeviatingRuns(f *LogicalFuses, deflt bool) []run {
	var runs []run
	i := 0
	for i < f.Len() {
		if f.Get(i) == deflt {
			i++
			continue
		}
		start := i
		for i < f.Len() && f.Get(i) != deflt {
			i++
		}
		runs = append(runs, run{start: start, length: i - start})
	}
	return runs
}

// fuseChecksum computes the 16-bit wrapping sum of spec §4.7: bit i
// contributes 1<<(i%8) iff the fuse is set.
func fuseChecksum(f *LogicalFuses) uint16 {
	var sum uint16
	for i := 0; i < f.Len(); i++ {
		if f.Get(i) {
			sum += 1 << uint(i%8)
		}
	}
	return sum
}

// ParseJEDEC parses a JEDEC file back into a Bitstream (spec §4.7), failing
// with the structured xc2errs kinds the spec names for read errors.
func ParseJEDEC(data []byte) (*Bitstream, error) {
	start := indexByte(data, stx)
	if start < 0 {
		return nil, xc2errs.New(xc2errs.KindMissingSTX, "", "no STX byte found")
	}
	end := indexByte(data[start+1:], etx)
	if end < 0 {
		return nil, xc2errs.New(xc2errs.KindMissingETX, "", "no ETX byte found")
	}
	end += start + 1
	body := string(data[start+1 : end])

	var deviceName string
	var fuseCount = -1
	var defaultVal *bool
	sets := map[int]bool{}
	var declaredChecksum *uint16

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Split(splitOnStar)
	for scanner.Scan() {
		field := strings.TrimSpace(scanner.Text())
		field = strings.TrimRight(field, "\n")
		if field == "" {
			continue
		}
		switch {
		case strings.HasPrefix(field, "N DEVICE"):
			deviceName = strings.TrimSpace(strings.TrimPrefix(field, "N DEVICE"))
		case strings.HasPrefix(field, "QF"):
			v, err := strconv.Atoi(strings.TrimSpace(field[2:]))
			if err != nil {
				return nil, xc2errs.New(xc2errs.KindUnrecognizedField, "", "malformed QF field")
			}
			fuseCount = v
		case strings.HasPrefix(field, "F"):
			v := strings.TrimSpace(field[1:])
			if v != "0" && v != "1" {
				return nil, xc2errs.New(xc2errs.KindInvalidCharacter, "", "F field must be 0 or 1")
			}
			b := v == "1"
			defaultVal = &b
		case strings.HasPrefix(field, "L"):
			rest := strings.TrimSpace(field[1:])
			parts := strings.SplitN(rest, " ", 2)
			if len(parts) != 2 {
				return nil, xc2errs.New(xc2errs.KindUnrecognizedField, "", "malformed L field")
			}
			offset, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, xc2errs.New(xc2errs.KindUnrecognizedField, "", "malformed L field offset")
			}
			bits := strings.TrimSpace(parts[1])
			for i, ch := range bits {
				switch ch {
				case '0':
					sets[offset+i] = false
				case '1':
					sets[offset+i] = true
				default:
					return nil, xc2errs.New(xc2errs.KindInvalidCharacter, "", "L field must contain only 0/1")
				}
			}
		case strings.HasPrefix(field, "C"):
			v := strings.TrimSpace(field[1:])
			parsed, err := strconv.ParseUint(v, 16, 16)
			if err != nil {
				return nil, xc2errs.New(xc2errs.KindUnrecognizedField, "", "malformed C field")
			}
			c := uint16(parsed)
			declaredChecksum = &c
		default:
			// reserved/unrecognized field prefixes are ignored per spec §4.7
		}
	}

	if fuseCount < 0 {
		return nil, xc2errs.New(xc2errs.KindMissingQF, "", "QF field not present")
	}
	if defaultVal == nil && len(sets) < fuseCount {
		return nil, xc2errs.New(xc2errs.KindMissingF, "", "no default fuse value declared and not every fuse is explicit")
	}

	logical := NewLogicalFuses(fuseCount)
	deflt := false
	if defaultVal != nil {
		deflt = *defaultVal
	}
	for i := 0; i < fuseCount; i++ {
		logical.Set(i, deflt)
	}
	for i, v := range sets {
		if i < 0 || i >= fuseCount {
			return nil, xc2errs.New(xc2errs.KindInvalidFuseIndex, "", "L field offset out of range")
		}
		logical.Set(i, v)
	}

	if declaredChecksum != nil {
		if got := fuseChecksum(logical); got != *declaredChecksum {
			return nil, xc2errs.New(xc2errs.KindBadFuseChecksum, "", "fuse checksum mismatch: got %04X want %04X", got, *declaredChecksum)
		}
	}

	d, err := parseDeviceName(deviceName)
	if err != nil {
		return nil, err
	}
	layout := device.LayoutFor(d)
	if layout.LogicalFuseCount != fuseCount {
		return nil, xc2errs.New(xc2errs.KindWrongFuseCount, "", "device %s expects %d fuses, file has %d", d, layout.LogicalFuseCount, fuseCount)
	}

	physical := NewFuseArray(layout.PhysicalWidth, layout.PhysicalHeight)
	fillPhysical(d, logical, layout, physical)

	return &Bitstream{Device: d, Logical: logical, Physical: physical}, nil
}

func parseDeviceName(name string) (device.Device, error) {
	for _, d := range device.All() {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, xc2errs.New(xc2errs.KindBadDeviceName, name, "unrecognized device name")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// splitOnStar is a bufio.SplitFunc that tokenizes on '*', the JEDEC field
// separator.
func splitOnStar(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '*' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
